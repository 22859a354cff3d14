package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/brk3/habitstats/pkg/habit"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show streaks and completion analytics",
}

var statsOverviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Dashboard totals across all active habits",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient().Overview(cmd.Context())
		if err != nil {
			return err
		}
		return writeOverview(cmd.OutOrStdout(), resp.Today, resp.Overview)
	},
}

var statsAllCmd = &cobra.Command{
	Use:   "all",
	Short: "One row of analytics per active habit",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient().Summaries(cmd.Context())
		if err != nil {
			return err
		}
		return writeSummaries(cmd.OutOrStdout(), resp.Analytics)
	},
}

var statsHabitCmd = &cobra.Command{
	Use:   "habit <habit-id>",
	Short: "Detailed analytics for one habit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient().HabitAnalytics(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writeHabitAnalytics(cmd.OutOrStdout(), resp.Analytics)
	},
}

func writeOverview(w io.Writer, today habit.Day, o habit.Overview) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Today\t%s\n", today)
	fmt.Fprintf(tw, "Habits\t%d\n", o.TotalHabits)
	fmt.Fprintf(tw, "Completed today\t%d/%d\n", o.CompletedToday, o.TotalHabits)
	fmt.Fprintf(tw, "Completion rate\t%d%%\n", o.CompletionRate)
	fmt.Fprintf(tw, "Best streak\t%d days\n", o.BestStreak)
	fmt.Fprintf(tw, "Avg current streak\t%d days\n", o.AvgCurrentStreak)
	fmt.Fprintf(tw, "Total check-ins\t%s\n", humanize.Comma(int64(o.TotalCompleted)))
	return tw.Flush()
}

func writeSummaries(w io.Writer, rows []habit.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HABIT\tCURRENT\tLONGEST\tRATE\tSTRENGTH\tTOTAL\tLAST")
	for _, s := range rows {
		last := string(s.LastCompleted)
		if last == "" {
			last = "-"
		}
		fmt.Fprintf(tw, "%s %s\t%d\t%d\t%d%%\t%d\t%s\t%s\n",
			s.Icon, s.Name, s.CurrentStreak, s.LongestStreak, s.CompletionRate,
			s.StrengthScore, humanize.Comma(int64(s.TotalCompleted)), last)
	}
	return tw.Flush()
}

func writeHabitAnalytics(w io.Writer, a habit.Analytics) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s %s\n", a.Habit.Icon, a.Habit.Name)
	fmt.Fprintf(tw, "Current streak\t%d days\n", a.CurrentStreak)
	fmt.Fprintf(tw, "Longest streak\t%d days\n", a.LongestStreak)
	fmt.Fprintf(tw, "Completion rate\t%d%%\n", a.CompletionRate)
	fmt.Fprintf(tw, "Strength\t%d/100 %s\n", a.StrengthScore, bar(a.StrengthScore, 20))
	fmt.Fprintf(tw, "Check-ins\t%s\n", humanize.Comma(int64(a.TotalCompleted)))
	fmt.Fprintf(tw, "Avg intensity\t%.1f\n", a.AvgIntensity)

	fmt.Fprintln(tw, "\nWEEK OF\tDONE\tRATE")
	for _, wk := range a.WeeklyTrend {
		fmt.Fprintf(tw, "%s\t%d/7\t%d%% %s\n", wk.Week, wk.Completed, wk.Rate, bar(wk.Rate, 10))
	}

	months := make([]string, 0, len(a.MonthlyBreakdown))
	for m := range a.MonthlyBreakdown {
		months = append(months, m)
	}
	slices.Sort(months)
	slices.Reverse(months)
	fmt.Fprintln(tw, "\nMONTH\tDONE")
	for _, m := range months {
		fmt.Fprintf(tw, "%s\t%d\n", m, a.MonthlyBreakdown[m])
	}
	return tw.Flush()
}

// bar renders pct (0-100) as a bar of width cells.
func bar(pct, width int) string {
	filled := min(max(pct*width/100, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func init() {
	statsCmd.AddCommand(statsOverviewCmd, statsAllCmd, statsHabitCmd)
	rootCmd.AddCommand(statsCmd)
}

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List unlocked streak milestones",
	RunE: func(cmd *cobra.Command, args []string) error {
		as, err := newClient().Achievements(cmd.Context())
		if err != nil {
			return err
		}
		if len(as) == 0 {
			cmd.Println("No achievements yet. Keep a habit going for 3 days to unlock the first.")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ACHIEVEMENT\tSTREAK\tHABIT\tUNLOCKED")
		for _, a := range as {
			fmt.Fprintf(tw, "%s %s\t%d\t%s\t%s\n", a.Icon, a.Name, a.Streak, a.HabitID, humanize.Time(a.UnlockedAt))
		}
		return tw.Flush()
	},
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show what has been logged today",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient().TodayLogs(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "%s\n", resp.Date)
		for _, l := range resp.Logs {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", l.HabitID, l.Status, l.Intensity, l.Notes)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(achievementsCmd, todayCmd)
}

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/brk3/habitstats/pkg/habit"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var habitCmd = &cobra.Command{
	Use:   "habit",
	Short: "Manage habits",
}

var (
	habitDescription string
	habitCategory    string
	habitColor       string
	habitIcon        string
	listArchived     bool
)

var habitAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a habit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h := habit.Habit{
			Name:        args[0],
			Description: habitDescription,
			Category:    habit.Category(habitCategory),
			Color:       habitColor,
			Icon:        habitIcon,
		}
		created, err := newClient().CreateHabit(cmd.Context(), h)
		if err != nil {
			return err
		}
		cmd.Printf("Created %s %s (%s)\n", created.Icon, created.Name, created.ID)
		return nil
	},
}

var habitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List habits",
	Long:  `The "list" command lets you list your tracked habits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		habits, err := newClient().ListHabits(cmd.Context(), listArchived)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tCREATED\tARCHIVED")
		for _, h := range habits {
			fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\t%t\n", h.ID, h.Icon, h.Name, h.Category, humanize.Time(h.CreatedAt), h.Archived)
		}
		return tw.Flush()
	},
}

var habitArchiveCmd = &cobra.Command{
	Use:   "archive <habit-id>",
	Short: "Archive a habit so it drops out of analytics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		undo, _ := cmd.Flags().GetBool("undo")
		h, err := newClient().UpdateHabit(cmd.Context(), args[0], map[string]any{"archived": !undo})
		if err != nil {
			return err
		}
		cmd.Printf("%s archived=%t\n", h.Name, h.Archived)
		return nil
	},
}

var habitDeleteCmd = &cobra.Command{
	Use:   "delete <habit-id>",
	Short: "Delete a habit and all of its logs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().DeleteHabit(cmd.Context(), args[0]); err != nil {
			return err
		}
		cmd.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	habitAddCmd.Flags().StringVar(&habitDescription, "description", "", "what the habit is about")
	habitAddCmd.Flags().StringVar(&habitCategory, "category", "", "health, fitness, learning, mindfulness, productivity, social, creativity, finance or other")
	habitAddCmd.Flags().StringVar(&habitColor, "color", "", "display color, e.g. #6366f1")
	habitAddCmd.Flags().StringVar(&habitIcon, "icon", "", "display icon")
	habitListCmd.Flags().BoolVar(&listArchived, "archived", false, "include archived habits")
	habitArchiveCmd.Flags().Bool("undo", false, "unarchive instead")

	habitCmd.AddCommand(habitAddCmd, habitListCmd, habitArchiveCmd, habitDeleteCmd)
	rootCmd.AddCommand(habitCmd)
}

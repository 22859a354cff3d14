package cmd

import (
	"github.com/brk3/habitstats/pkg/habit"
	"github.com/spf13/cobra"
)

var (
	logDay       string
	logStatus    string
	logIntensity int
	logNotes     string
	logMood      int
)

var logCmd = &cobra.Command{
	Use:   "log <habit-id>",
	Short: "Record a check-in for a habit",
	Long: `The "log" command records what happened with a habit on a day. Logging the
same day again replaces the earlier entry. Without --day the server uses today
in your timezone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := buildLog(args[0])
		if err != nil {
			return err
		}
		saved, err := newClient().PutLog(cmd.Context(), args[0], l)
		if err != nil {
			return err
		}
		cmd.Printf("Logged %s as %s on %s\n", saved.Log.HabitID, saved.Log.Status, saved.Log.Day)
		for _, a := range saved.Unlocked {
			cmd.Printf("%s Unlocked %s: %s\n", a.Icon, a.Name, a.Description)
		}
		return nil
	},
}

// buildLog validates flags locally so obvious mistakes fail before any
// request is made.
func buildLog(habitID string) (habit.Log, error) {
	l := habit.Log{
		HabitID:   habitID,
		Status:    habit.Status(logStatus),
		Intensity: logIntensity,
		Notes:     logNotes,
		Mood:      logMood,
	}
	check := l
	if logDay != "" {
		d, err := habit.ParseDay(logDay)
		if err != nil {
			return habit.Log{}, err
		}
		l.Day = d
		check.Day = d
	} else {
		// any valid day will do for the check; the server picks the real one
		check.Day = "2000-01-01"
	}
	if err := check.Validate(); err != nil {
		return habit.Log{}, err
	}
	return l, nil
}

func init() {
	logCmd.Flags().StringVar(&logDay, "day", "", "day in YYYY-MM-DD form (default today)")
	logCmd.Flags().StringVar(&logStatus, "status", string(habit.StatusCompleted), "completed, skipped or partial")
	logCmd.Flags().IntVar(&logIntensity, "intensity", 2, "effort from 0 to 4")
	logCmd.Flags().StringVar(&logNotes, "notes", "", "free-form notes")
	logCmd.Flags().IntVar(&logMood, "mood", 0, "mood from 1 to 5")
	rootCmd.AddCommand(logCmd)
}

package cmd

import (
	"fmt"

	"github.com/brk3/habitstats/internal/nudge"
	"github.com/brk3/habitstats/internal/nudge/resend"

	"github.com/spf13/cobra"
)

var nudgeCmd = &cobra.Command{
	Use:   "nudge",
	Short: "Email a reminder for streaks that end tonight",
	Long: `The "nudge" command finds habits with a live streak that haven't been
completed today and emails a reminder through Resend. Schedule it with cron
for an evening run.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Nudge.ResendAPIKey == "" {
			return fmt.Errorf("no Resend API key: set nudge.resend_api_key or HABITS_RESEND_API_KEY")
		}
		if cfg.Nudge.To == "" {
			return fmt.Errorf("no recipient: set nudge.to or HABITS_NOTIFY_EMAIL")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		n := &resend.Notifier{
			APIKey: cfg.Nudge.ResendAPIKey,
			From:   cfg.Nudge.From,
			To:     cfg.Nudge.To,
		}
		count, err := nudge.Run(cmd.Context(), newClient(), n)
		if err != nil {
			return err
		}
		cmd.Printf("%d streak(s) at risk\n", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(nudgeCmd)
}

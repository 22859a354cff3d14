package cmd

import (
	"fmt"

	"github.com/brk3/habitstats/internal/server"
	"github.com/brk3/habitstats/internal/storage/bolt"
	"github.com/spf13/cobra"
)

var apikeyUser string

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage API keys",
}

var apikeyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an API key for a user",
	Long: `The "apikey create" command writes a new key straight into the server's
database, so run it on the server host. The key is shown once.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := bolt.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open db %s: %w", cfg.DBPath, err)
		}
		defer store.Close()

		key, err := server.GenerateAPIKey(store, apikeyUser)
		if err != nil {
			return err
		}
		cmd.Println(key)
		return nil
	},
}

func init() {
	apikeyCreateCmd.Flags().StringVar(&apikeyUser, "user", "", "user id the key authenticates as")
	_ = apikeyCreateCmd.MarkFlagRequired("user")
	apikeyCmd.AddCommand(apikeyCreateCmd)
	rootCmd.AddCommand(apikeyCmd)
}

package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/brk3/habitstats/internal/apiclient"
	"github.com/brk3/habitstats/internal/config"
	"github.com/brk3/habitstats/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfg        *config.Config
	configPath string
	logLevel   string
	timezone   string
)

var rootCmd = &cobra.Command{
	Use:   "habits",
	Short: "Track daily habits and the streaks they build",
	Long: `
	Habits tracks recurring habits from a log of daily check-ins and reports
	streaks, completion rates, a 0-100 strength score and weekly and monthly
	trends. Run "habits server" to host the API, and the other commands to
	talk to it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cmd)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if timezone != "" {
			cfg.Timezone = timezone
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		level, err := cfg.SlogLevel()
		if err != nil {
			return err
		}
		logger.Init(level, cfg.LogFormat, cmd.ErrOrStderr())
		return nil
	},
}

// loadConfig reads an explicit --config or $HABITS_CONFIG strictly, and
// otherwise falls back to defaults when ./config.yaml doesn't exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if cmd.Flags().Changed("config") || os.Getenv("HABITS_CONFIG") != "" {
		return config.Load(configPath)
	}
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		return config.FromEnv()
	}
	return config.Load(configPath)
}

func newClient() *apiclient.Client {
	c := apiclient.New(cfg.APIBaseURL, cfg.APIKey)
	c.Timezone = cfg.Timezone
	return c
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&timezone, "tz", "", "IANA timezone that decides what \"today\" is")
}

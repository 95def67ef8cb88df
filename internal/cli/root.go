package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:          "quiz",
		Short:        "Console quiz with accounts, topic quizzes and a leaderboard",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, configPath, logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	cmd.AddCommand(NewPlayCmd(&configPath, &logLevel))
	cmd.AddCommand(NewHistoryCmd(&configPath, &logLevel))
	cmd.AddCommand(NewTopCmd(&configPath, &logLevel))
	cmd.AddCommand(NewCatalogCmd(&configPath, &logLevel))
	cmd.AddCommand(NewMigrateCmd(&configPath, &logLevel))
	return cmd
}

package cli

import (
	"context"
	"os/signal"
	"syscall"

	"quiz-console/internal/transport/console"

	"github.com/spf13/cobra"
)

// NewPlayCmd starts the interactive console. It is also the root command's default.
func NewPlayCmd(configPath, logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Start the interactive quiz console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, *configPath, *logLevel)
		},
	}
}

func runPlay(cmd *cobra.Command, configPath, logLevel string) error {
	ctx, stop := signal.NotifyContext(contextOf(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := build(ctx, configPath, logLevel)
	if err != nil {
		return err
	}
	defer rt.Close()

	c := console.New(cmd.InOrStdin(), cmd.OutOrStdout(), rt.accounts, rt.quizzes, console.Options{
		Topics: rt.cfg.Quiz.Topics,
		TopN:   rt.cfg.Quiz.TopScores,
	})
	rt.logger.Info("console started", "users", rt.cfg.Storage.Users, "catalog", rt.cfg.Storage.Catalog, "results", rt.cfg.Storage.Results)
	return c.Run(ctx)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

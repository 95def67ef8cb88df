package cli

import (
	"github.com/spf13/cobra"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath, logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run Postgres schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newEnv(*configPath, *logLevel)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.migratePostgres(contextOf(cmd)); err != nil {
				return err
			}
			rt.logger.Info("schema up to date")
			return nil
		},
	}
}

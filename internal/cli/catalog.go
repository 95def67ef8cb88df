package cli

import (
	"fmt"

	"quiz-console/internal/infra/file"
	"quiz-console/internal/infra/postgres"

	"github.com/spf13/cobra"
)

// NewCatalogCmd groups catalog maintenance commands.
func NewCatalogCmd(configPath, logLevel *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the question catalog",
	}
	cmd.AddCommand(newCatalogImportCmd(configPath, logLevel))
	return cmd
}

func newCatalogImportCmd(configPath, logLevel *string) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy the JSON catalog file into Postgres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := contextOf(cmd)
			rt, err := newEnv(*configPath, *logLevel)
			if err != nil {
				return err
			}
			defer rt.Close()

			if source == "" {
				source = rt.cfg.Files.Catalog
			}
			topics, err := file.NewCatalogLoader(source, rt.logger).LoadCatalog(ctx)
			if err != nil {
				return err
			}
			if len(topics) == 0 {
				return fmt.Errorf("no topics found in %s", source)
			}

			if err := rt.migratePostgres(ctx); err != nil {
				return err
			}
			pool, err := rt.pgxPool(ctx)
			if err != nil {
				return err
			}
			if err := postgres.NewCatalogLoader(pool, rt.logger).ImportCatalog(ctx, topics); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d topics from %s\n", len(topics), source)
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "file", "", "catalog JSON file (defaults to files.catalog)")
	return cmd
}

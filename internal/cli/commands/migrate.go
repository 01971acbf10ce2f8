package commands

import (
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the directory database schema",
		Example: `  # Migrate the default sqlite database
  arrivals migrate

  # Migrate a postgres database
  arrivals migrate --db-driver postgres --db-dsn postgres://localhost/arrivals`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			store, err := cmdCtx.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cmdCtx.Renderer.Success("database is up to date (" + string(store.Dialect()) + ")")
			return nil
		},
	}
}

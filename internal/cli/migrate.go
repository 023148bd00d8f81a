package cli

import (
	"fmt"

	"wedding-rsvp/internal/app"
	"wedding-rsvp/internal/config"
	"wedding-rsvp/internal/db"

	"github.com/spf13/cobra"
)

func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the rsvps schema",
		Long:  "Applies migrations/*.sql to postgres. The sqlite store creates its schema on open; the memory store has none.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.Log)
			if err != nil {
				return err
			}

			switch cfg.Store.Driver {
			case config.StoreDriverMemory:
				fmt.Fprintln(cmd.OutOrStdout(), "memory store has no schema to migrate")
				return nil
			case config.StoreDriverSQLite:
				_, dbConn, err := app.OpenRepository(cfg, opts.Log)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "sqlite schema is up to date")
				return app.CloseDB(dbConn)
			}

			dbConn, err := db.NewPostgres(cfg.DB, opts.Log)
			if err != nil {
				return err
			}
			defer func() { _ = app.CloseDB(dbConn) }()

			applied, err := db.Migrate(dbConn, opts.Log)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no pending migrations")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintln(cmd.OutOrStdout(), "applied", name)
			}
			return nil
		},
	}
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/adanyl0v/go-task-manager/internal/app"
)

var skipMigrations bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Apply pending migrations and serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		app.MustConnectPostgres()
		defer app.DisconnectPostgres()

		if !skipMigrations {
			err := app.Migrate(cmd.Context(), app.MigrateUp)
			if err != nil {
				return err
			}
		}

		app.MustListenAndServeHTTP()
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on start")
}

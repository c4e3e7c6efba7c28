package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/go-task-manager/internal/app"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Run database migrations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{app.MigrateUp, app.MigrateDown, app.MigrateStatus},
	RunE: func(cmd *cobra.Command, args []string) error {
		app.MustConnectPostgres()
		defer app.DisconnectPostgres()

		return app.Migrate(cmd.Context(), args[0])
	},
}

var flushExpiredTokensCmd = &cobra.Command{
	Use:   "flush-expired-tokens",
	Short: "Delete blacklisted refresh tokens that have already expired",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app.MustConnectPostgres()
		defer app.DisconnectPostgres()

		deleted, err := app.FlushExpiredTokens(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired tokens\n", deleted)
		return nil
	},
}

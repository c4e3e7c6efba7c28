package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/go-task-manager/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "taskmanager",
	Short: "Multi-user task tracking HTTP API",
	// Without a subcommand the API server is started.
	RunE: serveCmd.RunE,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		app.InitDefaultLogger()
		app.MustReadEnv()
		app.MustInitApplicationLogger()
	},
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(flushExpiredTokensCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

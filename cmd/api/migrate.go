package main

import (
	"github.com/spf13/cobra"

	"agora/internal/app/bootstrap"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the postgres record store schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap.BuildMigrate()
		if err != nil {
			return err
		}
		defer app.Close()
		return app.Run(cmd.Context())
	},
}

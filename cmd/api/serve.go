package main

import (
	"github.com/spf13/cobra"

	"agora/internal/app/bootstrap"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the poll program HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap.BuildAPI()
		if err != nil {
			return err
		}
		defer app.Close()
		return app.Run(cmd.Context())
	},
}

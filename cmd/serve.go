package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/fleetpool/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the compliance API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()
	return withService(ctx, func(svc *app.Service) error {
		return svc.Run(ctx)
	})
}

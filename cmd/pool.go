package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fleetpool/app"
	"github.com/kilianp07/fleetpool/pkg/export"
)

var (
	poolJSON      bool
	poolMax       int
	poolExclusive bool
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Pooling commands",
}

var poolSimulateCmd = &cobra.Command{
	Use:   "simulate VESSEL1 VESSEL2",
	Short: "Simulate pooling two vessels",
	Args:  cobra.ExactArgs(2),
	RunE:  runPoolSimulate,
}

var poolBestCmd = &cobra.Command{
	Use:   "best",
	Short: "Rank the best deficit and surplus pairs",
	RunE:  runPoolBest,
}

func init() {
	poolCmd.PersistentFlags().BoolVar(&poolJSON, "json", false, "print as JSON")
	poolBestCmd.Flags().IntVar(&poolMax, "max", 0, "maximum pools to list (default compliance.max_pools)")
	poolBestCmd.Flags().BoolVar(&poolExclusive, "exclusive", false, "use each vessel in at most one pool")
	poolCmd.AddCommand(poolSimulateCmd, poolBestCmd)
	rootCmd.AddCommand(poolCmd)
}

func runPoolSimulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()
	return withService(ctx, func(svc *app.Service) error {
		js, err := svc.Journeys(ctx)
		if err != nil {
			return err
		}
		p, err := svc.Engine.SimulatePool(js, args[0], args[1])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if poolJSON {
			return export.WriteJSON(out, p)
		}
		writePool(out, 1, p)
		fmt.Fprintf(out, "     Financial impact: %s\n", money(p.FinancialImpact))
		return nil
	})
}

func runPoolBest(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()
	return withService(ctx, func(svc *app.Service) error {
		js, err := svc.Journeys(ctx)
		if err != nil {
			return err
		}
		limit := poolMax
		if limit <= 0 {
			limit = svc.Engine.Config().MaxPools
		}
		exclusive := poolExclusive || svc.Engine.Config().Exclusive
		pools, err := svc.Engine.OptimalPools(js, limit, exclusive)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if poolJSON {
			return export.WriteJSON(out, pools)
		}
		if len(pools) == 0 {
			fmt.Fprintln(out, "No pooling opportunity found")
		}
		for i, p := range pools {
			writePool(out, i+1, p)
		}
		return nil
	})
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fleetpool/app"
	"github.com/kilianp07/fleetpool/core/anomaly"
	"github.com/kilianp07/fleetpool/pkg/export"
)

var (
	anomalyOpts = anomaly.DefaultOptions()
	anomalyJSON bool
)

var anomaliesCmd = &cobra.Command{
	Use:   "anomalies",
	Short: "Report statistical outliers and fuel deviations",
	RunE:  runAnomalies,
}

func init() {
	anomaliesCmd.Flags().Float64Var(&anomalyOpts.ZThreshold, "z", anomalyOpts.ZThreshold, "z-score threshold")
	anomaliesCmd.Flags().Float64Var(&anomalyOpts.DeviationPct, "deviation", anomalyOpts.DeviationPct, "fuel deviation threshold in percent")
	anomaliesCmd.Flags().IntVar(&anomalyOpts.PerTypeCap, "per-type", anomalyOpts.PerTypeCap, "fuel deviations kept per ship type")
	anomaliesCmd.Flags().BoolVar(&anomalyJSON, "json", false, "print as JSON")
	rootCmd.AddCommand(anomaliesCmd)
}

func runAnomalies(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()
	return withService(ctx, func(svc *app.Service) error {
		js, err := svc.Journeys(ctx)
		if err != nil {
			return err
		}
		res, err := anomaly.Detect(js, anomalyOpts)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if anomalyJSON {
			return export.WriteJSON(out, res)
		}

		fmt.Fprintf(out, "OUTLIERS (|z| > %.1f): %d\n", anomalyOpts.ZThreshold, len(res.Outliers))
		tw := newTable(out)
		for _, o := range res.Outliers {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%.2f\tz=%.2f\n", o.VesselID, o.VesselType, o.Period, o.Metric, o.Value, o.ZScore)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		fmt.Fprintf(out, "\nFUEL DEVIATIONS (> %.0f%%): %d\n", anomalyOpts.DeviationPct, len(res.FuelDeviations))
		tw = newTable(out)
		for _, d := range res.FuelDeviations {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%.2f\texpected %.2f\t%+.1f%%\n",
				d.VesselID, d.VesselType, d.Period, d.FuelConsumption, d.ExpectedFuel, d.DeviationPct)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if res.Top != nil {
			fmt.Fprintf(out, "\nLargest deviation: %s on %s in %s (%+.1f%%, weather %s)\n",
				res.Top.VesselID, res.Top.RouteID, res.Top.Period, res.Top.DeviationPct, res.Top.Weather)
		}
		return nil
	})
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fleetpool/app"
	"github.com/kilianp07/fleetpool/core/prediction"
	"github.com/kilianp07/fleetpool/pkg/export"
)

var predictJSON bool

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Run the configured CO2 predictor over the dataset",
	RunE:  runPredict,
}

func init() {
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "print as JSON")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()
	return withService(ctx, func(svc *app.Service) error {
		js, err := svc.Journeys(ctx)
		if err != nil {
			return err
		}
		rows := make([]prediction.Features, len(js))
		for i, j := range js {
			rows[i] = prediction.FeaturesOf(j)
		}
		preds, err := svc.Engine.Predict(rows)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if predictJSON {
			return export.WriteJSON(out, preds)
		}
		tw := newTable(out)
		fmt.Fprintln(tw, "SHIP\tMONTH\tACTUAL kg\tPREDICTED kg\tINTENSITY")
		for i, p := range preds {
			fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f\n", js[i].VesselID, js[i].Period, js[i].CO2KG, p.CO2KG, p.Intensity)
		}
		return tw.Flush()
	})
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fleetpool/app"
	"github.com/kilianp07/fleetpool/core/model"
	"github.com/kilianp07/fleetpool/pkg/export"
)

var vesselsJSON bool

var vesselsCmd = &cobra.Command{
	Use:   "vessels [id]",
	Short: "List vessel compliance summaries or show one vessel",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runVessels,
}

func init() {
	vesselsCmd.Flags().BoolVar(&vesselsJSON, "json", false, "print as JSON")
	rootCmd.AddCommand(vesselsCmd)
}

func runVessels(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()
	return withService(ctx, func(svc *app.Service) error {
		js, err := svc.Journeys(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			fleet, err := svc.Engine.Fleet(js)
			if err != nil {
				return err
			}
			if vesselsJSON {
				return export.WriteJSON(out, fleet.Vessels)
			}
			return writeVessels(out, fleet.Vessels)
		}

		v, own, err := svc.Engine.Vessel(js, args[0])
		if err != nil {
			return err
		}
		if vesselsJSON {
			return export.WriteJSON(out, map[string]any{"vessel": v, "journeys": own})
		}
		if err := writeVessels(out, []model.VesselSummary{v}); err != nil {
			return err
		}
		tw := newTable(out)
		fmt.Fprintln(tw, "\nROUTE\tMONTH\tDISTANCE\tFUEL\tCO2 kg")
		for _, j := range own {
			fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f\n", j.RouteID, j.Period, j.DistanceNM, j.FuelConsumption, j.CO2KG)
		}
		return tw.Flush()
	})
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fleetpool/app"
	"github.com/kilianp07/fleetpool/pkg/export"
)

var (
	reportJSON bool
	reportCSV  string
	reportHTML string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the fleet compliance report",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print the report as JSON")
	reportCmd.Flags().StringVar(&reportCSV, "csv", "", "write the per-vessel details to this CSV file")
	reportCmd.Flags().StringVar(&reportHTML, "html", "", "write an intensity chart to this HTML file")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()
	return withService(ctx, func(svc *app.Service) error {
		js, err := svc.Journeys(ctx)
		if err != nil {
			return err
		}
		r, err := svc.Engine.Report(js)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if reportCSV != "" {
			if err := writeFile(reportCSV, func(f *os.File) error { return export.WriteVesselsCSV(f, r.Vessels) }); err != nil {
				return fmt.Errorf("write %s: %w", reportCSV, err)
			}
		}
		if reportHTML != "" {
			if err := writeFile(reportHTML, func(f *os.File) error {
				return export.WriteIntensityChart(f, r.Vessels, r.TargetIntensity)
			}); err != nil {
				return fmt.Errorf("write %s: %w", reportHTML, err)
			}
		}
		if reportJSON {
			return export.WriteJSON(out, r)
		}

		fmt.Fprintf(out, "Dataset: %d journeys, %d vessels\n\n", len(js), r.TotalVessels)
		fmt.Fprintln(out, "FLEET SUMMARY")
		fmt.Fprintf(out, "  Surplus vessels:        %d\n", r.SurplusVessels)
		fmt.Fprintf(out, "  Deficit vessels:        %d\n", r.DeficitVessels)
		fmt.Fprintf(out, "  Fleet average:          %.2f gCO2/nm\n", r.FleetAvgIntensity)
		fmt.Fprintf(out, "  Target intensity:       %.2f gCO2/nm\n", r.TargetIntensity)
		fmt.Fprintf(out, "  Total financial impact: %s\n", money(r.TotalFinancialImpact))
		if r.ZeroDistanceJourneys > 0 {
			fmt.Fprintf(out, "  Zero-distance journeys: %d\n", r.ZeroDistanceJourneys)
		}

		fmt.Fprintf(out, "\nTOP %d PERFORMERS\n", len(r.TopPerformers))
		if err := writePerformers(out, r.TopPerformers); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nWORST %d PERFORMERS\n", len(r.WorstPerformers))
		if err := writePerformers(out, r.WorstPerformers); err != nil {
			return err
		}
		fmt.Fprintln(out, "\nPOOLING OPPORTUNITIES")
		if len(r.OptimalPools) == 0 {
			fmt.Fprintln(out, "  none")
		}
		for i, p := range r.OptimalPools {
			writePool(out, i+1, p)
		}
		if reportCSV != "" {
			fmt.Fprintf(out, "\nCompliance details saved to %s\n", reportCSV)
		}
		return nil
	})
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fleetpool/infra/archive"
	"github.com/kilianp07/fleetpool/pkg/export"
)

var (
	historyLimit  int
	historyVessel string
	historySince  time.Duration
	historyJSON   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived compliance runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum runs to list")
	historyCmd.Flags().StringVar(&historyVessel, "vessel", "", "only runs that classified this vessel")
	historyCmd.Flags().DurationVar(&historySince, "since", 0, "only runs newer than this duration")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Archive.Path == "" {
		return fmt.Errorf("archive.path is not configured")
	}
	q := archive.Query{VesselID: historyVessel, Limit: historyLimit}
	if historySince > 0 {
		q.Start = time.Now().Add(-historySince)
	}
	runs, err := archive.Read(ctx, cfg.Archive.Path, q)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if historyJSON {
		return export.WriteJSON(out, runs)
	}
	tw := newTable(out)
	fmt.Fprintln(tw, "TIME\tRUN\tVESSELS\tSURPLUS\tDEFICIT\tTARGET\tIMPACT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%.2f\t%s\n",
			r.Time.Format(time.RFC3339), r.RunID, r.TotalVessels, r.SurplusVessels, r.DeficitVessels,
			r.TargetIntensity, money(r.TotalFinancialImpact))
	}
	return tw.Flush()
}

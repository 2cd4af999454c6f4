package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/fleetpool/core/model"
)

// WriteIntensityChart renders an HTML bar chart of the vessel intensities
// with the target as a horizontal line.
func WriteIntensityChart(w io.Writer, vessels []model.VesselSummary, target float64) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "GHG intensity per vessel",
			Subtitle: fmt.Sprintf("target %.2f gCO2/nm", target),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Vessel"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "gCO2/nm"}),
	)

	ids := make([]string, len(vessels))
	var surplus, deficit []opts.BarData
	for i, v := range vessels {
		ids[i] = v.VesselID
		// One series per status keeps the colours apart; the other slot is empty.
		if v.Status == model.StatusSurplus {
			surplus = append(surplus, opts.BarData{Value: v.Intensity})
			deficit = append(deficit, opts.BarData{Value: "-"})
		} else {
			surplus = append(surplus, opts.BarData{Value: "-"})
			deficit = append(deficit, opts.BarData{Value: v.Intensity})
		}
	}
	stack := charts.WithBarChartOpts(opts.BarChart{Stack: "status"})
	bar.SetXAxis(ids).
		AddSeries("Surplus", surplus, stack).
		AddSeries("Deficit", deficit, stack, charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{
			Name:  "Target",
			YAxis: target,
		}))

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

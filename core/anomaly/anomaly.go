// Package anomaly flags journeys whose fuel or emission figures stand out
// from the rest of the fleet.
//
// Two passes run over the journey table. The first computes population
// z-scores for fuel efficiency, CO2 intensity and fuel consumption. The
// second fits fuel consumption against distance per ship type and keeps the
// journeys whose residual exceeds a percentage of the expected fuel.
package anomaly

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/fleetpool/core/compliance"
	"github.com/kilianp07/fleetpool/core/model"
)

// Metric names a per-journey quantity scored by the z-score pass.
type Metric string

const (
	MetricFuelEfficiency  Metric = "fuel_efficiency"  // nm per fuel unit
	MetricCO2Intensity    Metric = "co2_intensity"    // gCO2 per nm
	MetricFuelConsumption Metric = "fuel_consumption" // fuel units
)

// Metrics lists the scored metrics in report order.
var Metrics = []Metric{MetricFuelEfficiency, MetricCO2Intensity, MetricFuelConsumption}

// ErrInvalidOptions is returned for negative thresholds or caps.
var ErrInvalidOptions = errors.New("invalid anomaly options")

// Options tunes the detection passes.
type Options struct {
	// ZThreshold is the |z| above which a value is an outlier.
	ZThreshold float64 `json:"z_threshold"`
	// DeviationPct is the |residual| in percent of expected fuel above which
	// a journey is reported.
	DeviationPct float64 `json:"deviation_pct"`
	// PerTypeCap bounds the fuel deviations kept per ship type. The largest
	// deviations win.
	PerTypeCap int `json:"per_type_cap"`
}

// DefaultOptions returns the thresholds used by the CLI and the API.
func DefaultOptions() Options {
	return Options{ZThreshold: 3, DeviationPct: 50, PerTypeCap: 3}
}

func (o Options) validate() error {
	if o.ZThreshold < 0 || o.DeviationPct < 0 || o.PerTypeCap < 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidOptions, o)
	}
	return nil
}

// Outlier is a journey value whose z-score exceeds the threshold.
type Outlier struct {
	VesselID   string  `json:"ship_id"`
	VesselType string  `json:"ship_type"`
	RouteID    string  `json:"route_id"`
	Period     string  `json:"month"`
	Metric     Metric  `json:"metric"`
	Value      float64 `json:"value"`
	ZScore     float64 `json:"z_score"`
}

// FuelDeviation is a journey whose fuel consumption departs from the
// per-type linear fit on distance.
type FuelDeviation struct {
	VesselID         string  `json:"ship_id"`
	VesselType       string  `json:"ship_type"`
	RouteID          string  `json:"route_id"`
	Period           string  `json:"month"`
	DistanceNM       float64 `json:"distance"`
	FuelConsumption  float64 `json:"fuel_consumption"`
	ExpectedFuel     float64 `json:"expected_fuel"`
	DeviationPct     float64 `json:"deviation_pct"`
	Weather          string  `json:"weather_conditions"`
	EngineEfficiency float64 `json:"engine_efficiency"`
	CO2KG            float64 `json:"CO2_emissions"`
}

// Result groups the findings of both passes. Top is the fuel deviation with
// the largest magnitude, nil when there is none.
type Result struct {
	Outliers       []Outlier       `json:"outliers"`
	FuelDeviations []FuelDeviation `json:"fuel_deviations"`
	Top            *FuelDeviation  `json:"top,omitempty"`
}

// Detect runs both passes. The input is not modified.
func Detect(journeys []model.Journey, opts Options) (Result, error) {
	if err := opts.validate(); err != nil {
		return Result{}, err
	}
	res := Result{
		Outliers:       zScoreOutliers(journeys, opts.ZThreshold),
		FuelDeviations: fuelDeviations(journeys, opts.DeviationPct, opts.PerTypeCap),
	}
	for i := range res.FuelDeviations {
		d := &res.FuelDeviations[i]
		if res.Top == nil || math.Abs(d.DeviationPct) > math.Abs(res.Top.DeviationPct) {
			top := *d
			res.Top = &top
		}
	}
	return res, nil
}

// metricValue returns the metric of j and whether it is defined. Zero
// distance or zero fuel leaves the ratio metrics undefined.
func metricValue(j model.Journey, m Metric) (float64, bool) {
	switch m {
	case MetricFuelEfficiency:
		if j.FuelConsumption == 0 {
			return 0, false
		}
		return j.DistanceNM / j.FuelConsumption, true
	case MetricCO2Intensity:
		if j.DistanceNM == 0 {
			return 0, false
		}
		return compliance.Intensity(j.CO2KG, j.DistanceNM, 1), true
	case MetricFuelConsumption:
		return j.FuelConsumption, true
	}
	return 0, false
}

func zScoreOutliers(journeys []model.Journey, threshold float64) []Outlier {
	out := []Outlier{}
	for _, m := range Metrics {
		idx := make([]int, 0, len(journeys))
		vals := make([]float64, 0, len(journeys))
		for i, j := range journeys {
			if v, ok := metricValue(j, m); ok {
				idx = append(idx, i)
				vals = append(vals, v)
			}
		}
		if len(vals) < 2 {
			continue
		}
		mean, std := stat.PopMeanStdDev(vals, nil)
		if std == 0 || math.IsNaN(std) {
			continue
		}
		for k, v := range vals {
			z := stat.StdScore(v, mean, std)
			if math.Abs(z) <= threshold {
				continue
			}
			j := journeys[idx[k]]
			out = append(out, Outlier{
				VesselID:   j.VesselID,
				VesselType: j.VesselType,
				RouteID:    j.RouteID,
				Period:     j.Period,
				Metric:     m,
				Value:      v,
				ZScore:     z,
			})
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if c := compareKey(out[a].VesselType, out[a].VesselID, out[a].Period, out[b].VesselType, out[b].VesselID, out[b].Period); c != 0 {
			return c < 0
		}
		return metricRank(out[a].Metric) < metricRank(out[b].Metric)
	})
	return out
}

func metricRank(m Metric) int {
	for i, x := range Metrics {
		if x == m {
			return i
		}
	}
	return len(Metrics)
}

func fuelDeviations(journeys []model.Journey, thresholdPct float64, perTypeCap int) []FuelDeviation {
	byType := make(map[string][]model.Journey)
	var types []string
	for _, j := range journeys {
		if _, ok := byType[j.VesselType]; !ok {
			types = append(types, j.VesselType)
		}
		byType[j.VesselType] = append(byType[j.VesselType], j)
	}
	sort.Strings(types)

	out := []FuelDeviation{}
	for _, t := range types {
		group := byType[t]
		if len(group) < 2 {
			continue
		}
		xs := make([]float64, len(group))
		ys := make([]float64, len(group))
		for i, j := range group {
			xs[i] = j.DistanceNM
			ys[i] = j.FuelConsumption
		}
		if stat.Variance(xs, nil) == 0 {
			continue
		}
		alpha, beta := stat.LinearRegression(xs, ys, nil, false)

		var found []FuelDeviation
		for _, j := range group {
			expected := alpha + beta*j.DistanceNM
			if expected == 0 {
				continue
			}
			pct := (j.FuelConsumption - expected) / expected * 100
			if math.Abs(pct) <= thresholdPct {
				continue
			}
			found = append(found, FuelDeviation{
				VesselID:         j.VesselID,
				VesselType:       j.VesselType,
				RouteID:          j.RouteID,
				Period:           j.Period,
				DistanceNM:       j.DistanceNM,
				FuelConsumption:  j.FuelConsumption,
				ExpectedFuel:     expected,
				DeviationPct:     pct,
				Weather:          j.Weather,
				EngineEfficiency: j.EngineEfficiency,
				CO2KG:            j.CO2KG,
			})
		}
		if perTypeCap > 0 && len(found) > perTypeCap {
			sort.SliceStable(found, func(a, b int) bool {
				da, db := math.Abs(found[a].DeviationPct), math.Abs(found[b].DeviationPct)
				if da != db {
					return da > db
				}
				return compareKey("", found[a].VesselID, found[a].Period, "", found[b].VesselID, found[b].Period) < 0
			})
			found = found[:perTypeCap]
		}
		sort.SliceStable(found, func(a, b int) bool {
			return compareKey("", found[a].VesselID, found[a].Period, "", found[b].VesselID, found[b].Period) < 0
		})
		out = append(out, found...)
	}
	return out
}

// compareKey orders by ship type, vessel id, then period. Periods that are
// month names sort in calendar order.
func compareKey(typeA, idA, periodA, typeB, idB, periodB string) int {
	if typeA != typeB {
		return cmpString(typeA, typeB)
	}
	if idA != idB {
		return cmpString(idA, idB)
	}
	ma, okA := monthOf(periodA)
	mb, okB := monthOf(periodB)
	if okA && okB && ma != mb {
		if ma < mb {
			return -1
		}
		return 1
	}
	return cmpString(periodA, periodB)
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func monthOf(p string) (time.Month, bool) {
	t, err := time.Parse("January", p)
	if err != nil {
		return 0, false
	}
	return t.Month(), true
}

package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kilianp07/fleetpool/core/model"
)

// ErrMissingColumn is returned when a required CSV column is absent.
var ErrMissingColumn = errors.New("missing column")

var requiredColumns = []string{"ship_id", "distance", "fuel_consumption", "CO2_emissions"}

// ReadCSV parses a journey table with a header row. Columns are matched by
// name, so their order is free and unknown columns are ignored.
func ReadCSV(r io.Reader) ([]model.Journey, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty csv", model.ErrInvalidJourney)
		}
		return nil, err
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}

	var out []model.Journey
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, err
		}
		row := csvRow{rec: rec, idx: idx}
		j := model.Journey{
			VesselID:   row.str("ship_id"),
			VesselType: row.str("ship_type"),
			RouteID:    row.str("route_id"),
			Period:     row.str("month"),
			FuelType:   row.str("fuel_type"),
			Weather:    row.str("weather_conditions"),
		}
		for _, f := range []struct {
			col      string
			dst      *float64
			required bool
		}{
			{"distance", &j.DistanceNM, true},
			{"fuel_consumption", &j.FuelConsumption, true},
			{"engine_efficiency", &j.EngineEfficiency, false},
			{"CO2_emissions", &j.CO2KG, true},
		} {
			if f.required && row.str(f.col) == "" {
				return nil, fmt.Errorf("line %d: %w: %s is blank", line, model.ErrInvalidJourney, f.col)
			}
			if *f.dst, err = row.float(f.col); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		if err := j.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, j)
	}
	return out, nil
}

type csvRow struct {
	rec []string
	idx map[string]int
}

func (r csvRow) str(col string) string {
	i, ok := r.idx[col]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return strings.TrimSpace(r.rec[i])
}

// float parses a numeric column. Blank optional cells read as zero.
func (r csvRow) float(col string) (float64, error) {
	s := r.str(col)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", model.ErrInvalidJourney, col, s)
	}
	return v, nil
}

// WriteCSV writes journeys with the dataset header.
func WriteCSV(w io.Writer, journeys []model.Journey) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ship_id", "ship_type", "route_id", "month", "distance", "fuel_type",
		"fuel_consumption", "weather_conditions", "engine_efficiency", "CO2_emissions"}); err != nil {
		return err
	}
	ff := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for _, j := range journeys {
		rec := []string{j.VesselID, j.VesselType, j.RouteID, j.Period, ff(j.DistanceNM), j.FuelType,
			ff(j.FuelConsumption), j.Weather, ff(j.EngineEfficiency), ff(j.CO2KG)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

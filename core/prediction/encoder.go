package prediction

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Categorical column names, in feature order.
const (
	ColVesselType = "ship_type"
	ColRouteID    = "route_id"
	ColPeriod     = "month"
	ColFuelType   = "fuel_type"
	ColWeather    = "weather_conditions"
)

// CategoricalColumns lists the encoded columns in the order they enter the
// feature vector.
var CategoricalColumns = []string{ColVesselType, ColRouteID, ColPeriod, ColFuelType, ColWeather}

// Encoder maps the categories of one column to consecutive integer codes. The
// codes follow the sorted order of the categories seen at construction. An
// Encoder never learns new categories.
type Encoder struct {
	classes []string
	index   map[string]int
}

// NewEncoder builds an encoder from every value observed for a column.
func NewEncoder(values []string) *Encoder {
	seen := make(map[string]struct{}, len(values))
	classes := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		classes = append(classes, v)
	}
	sort.Strings(classes)
	return newEncoder(classes)
}

func newEncoder(classes []string) *Encoder {
	idx := make(map[string]int, len(classes))
	for i, c := range classes {
		idx[c] = i
	}
	return &Encoder{classes: classes, index: idx}
}

// Encode returns the code of v.
func (e *Encoder) Encode(v string) (int, error) {
	i, ok := e.index[v]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, v)
	}
	return i, nil
}

// Classes returns a copy of the known categories in code order.
func (e *Encoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

func (e *Encoder) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.classes)
}

func (e *Encoder) UnmarshalJSON(b []byte) error {
	var classes []string
	if err := json.Unmarshal(b, &classes); err != nil {
		return err
	}
	if !sort.StringsAreSorted(classes) {
		return fmt.Errorf("encoder classes must be sorted")
	}
	*e = *newEncoder(classes)
	return nil
}

func categoricalValue(f Features, col string) string {
	switch col {
	case ColVesselType:
		return f.VesselType
	case ColRouteID:
		return f.RouteID
	case ColPeriod:
		return f.Period
	case ColFuelType:
		return f.FuelType
	case ColWeather:
		return f.Weather
	}
	return ""
}

package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidJourney is returned when a journey row violates the input contract.
var ErrInvalidJourney = errors.New("invalid journey")

// Journey is one vessel trip as recorded in the fleet dataset. Distance is in
// nautical miles, CO2 in kilograms and engine efficiency in percent.
type Journey struct {
	VesselID         string  `json:"ship_id" yaml:"ship_id"`
	VesselType       string  `json:"ship_type" yaml:"ship_type"`
	RouteID          string  `json:"route_id" yaml:"route_id"`
	Period           string  `json:"month" yaml:"month"`
	DistanceNM       float64 `json:"distance" yaml:"distance"`
	FuelType         string  `json:"fuel_type" yaml:"fuel_type"`
	FuelConsumption  float64 `json:"fuel_consumption" yaml:"fuel_consumption"`
	Weather          string  `json:"weather_conditions" yaml:"weather_conditions"`
	EngineEfficiency float64 `json:"engine_efficiency" yaml:"engine_efficiency"`
	CO2KG            float64 `json:"CO2_emissions" yaml:"CO2_emissions"`
}

// Validate checks the fields the compliance pipeline relies on. A zero
// distance is accepted: the intensity calculation defines it as zero and
// flags the journey instead of rejecting it.
func (j Journey) Validate() error {
	if j.VesselID == "" {
		return fmt.Errorf("%w: empty vessel id", ErrInvalidJourney)
	}
	checks := []struct {
		name string
		v    float64
	}{
		{"distance", j.DistanceNM},
		{"fuel_consumption", j.FuelConsumption},
		{"CO2_emissions", j.CO2KG},
	}
	for _, c := range checks {
		if math.IsNaN(c.v) || math.IsInf(c.v, 0) {
			return fmt.Errorf("%w: vessel %s: %s is not a finite number", ErrInvalidJourney, j.VesselID, c.name)
		}
		if c.v < 0 {
			return fmt.Errorf("%w: vessel %s: %s must not be negative", ErrInvalidJourney, j.VesselID, c.name)
		}
	}
	return nil
}

package prediction

import (
	"errors"

	"github.com/kilianp07/fleetpool/core/model"
)

var (
	// ErrUnavailable is returned when no trained predictor is configured.
	ErrUnavailable = errors.New("prediction unavailable")
	// ErrUnknownCategory is returned when a categorical feature was not part
	// of the training corpus.
	ErrUnknownCategory = errors.New("unknown category")
)

// Predictor estimates the CO2 (kg) emitted on a journey.
type Predictor interface {
	Predict(f Features) (float64, error)
}

// Features is the input row of a prediction: the numeric journey columns and
// the raw categorical values. Encoding is left to the predictor.
type Features struct {
	VesselType       string  `json:"ship_type"`
	RouteID          string  `json:"route_id"`
	Period           string  `json:"month"`
	FuelType         string  `json:"fuel_type"`
	Weather          string  `json:"weather_conditions"`
	DistanceNM       float64 `json:"distance"`
	FuelConsumption  float64 `json:"fuel_consumption"`
	EngineEfficiency float64 `json:"engine_efficiency"`
}

// FeaturesOf extracts the prediction features of a journey.
func FeaturesOf(j model.Journey) Features {
	return Features{
		VesselType:       j.VesselType,
		RouteID:          j.RouteID,
		Period:           j.Period,
		FuelType:         j.FuelType,
		Weather:          j.Weather,
		DistanceNM:       j.DistanceNM,
		FuelConsumption:  j.FuelConsumption,
		EngineEfficiency: j.EngineEfficiency,
	}
}

// Unavailable is the predictor used when no model is loaded.
type Unavailable struct{}

func (Unavailable) Predict(Features) (float64, error) { return 0, ErrUnavailable }

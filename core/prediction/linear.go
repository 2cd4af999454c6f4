package prediction

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/fleetpool/core/model"
)

// DefaultRidge is the L2 penalty applied when fitting. It only keeps the
// normal equations solvable when a categorical column is constant.
const DefaultRidge = 1e-6

// NumericColumns lists the numeric features in the order they enter the
// feature vector, ahead of the encoded categorical columns.
var NumericColumns = []string{"distance", "fuel_consumption", "engine_efficiency"}

// Linear is a least-squares CO2 model over numeric and label-encoded features.
type Linear struct {
	Features     []string            `json:"features"`
	Encoders     map[string]*Encoder `json:"encoders"`
	Coefficients []float64           `json:"coefficients"`
	Intercept    float64             `json:"intercept"`
}

func featureNames() []string {
	names := append([]string{}, NumericColumns...)
	for _, c := range CategoricalColumns {
		names = append(names, c+"_encoded")
	}
	return names
}

// TrainLinear fits a Linear model on the journeys, predicting CO2_emissions.
// The encoders are built from the same journeys.
func TrainLinear(journeys []model.Journey, ridge float64) (*Linear, error) {
	if len(journeys) == 0 {
		return nil, fmt.Errorf("train: no journeys")
	}
	if ridge < 0 {
		return nil, fmt.Errorf("train: ridge must not be negative")
	}
	encoders := make(map[string]*Encoder, len(CategoricalColumns))
	for _, col := range CategoricalColumns {
		values := make([]string, len(journeys))
		for i, j := range journeys {
			values[i] = categoricalValue(FeaturesOf(j), col)
		}
		encoders[col] = NewEncoder(values)
	}
	m := &Linear{Features: featureNames(), Encoders: encoders}

	p := len(m.Features) + 1
	x := mat.NewDense(len(journeys), p, nil)
	y := mat.NewVecDense(len(journeys), nil)
	for i, j := range journeys {
		row, err := m.vector(FeaturesOf(j))
		if err != nil {
			return nil, err
		}
		x.Set(i, 0, 1)
		for k, v := range row {
			x.Set(i, k+1, v)
		}
		y.SetVec(i, j.CO2KG)
	}

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	for i := 0; i < p; i++ {
		xtx.Set(i, i, xtx.At(i, i)+ridge)
	}
	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	var beta mat.VecDense
	if err := beta.SolveVec(&xtx, &xty); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("train: %w", err)
		}
	}
	m.Intercept = beta.AtVec(0)
	m.Coefficients = make([]float64, p-1)
	for k := range m.Coefficients {
		m.Coefficients[k] = beta.AtVec(k + 1)
	}
	return m, nil
}

func (m *Linear) vector(f Features) ([]float64, error) {
	v := []float64{f.DistanceNM, f.FuelConsumption, f.EngineEfficiency}
	for _, col := range CategoricalColumns {
		enc, ok := m.Encoders[col]
		if !ok {
			return nil, fmt.Errorf("missing encoder for %s", col)
		}
		code, err := enc.Encode(categoricalValue(f, col))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", col, err)
		}
		v = append(v, float64(code))
	}
	return v, nil
}

// Predict returns the estimated CO2 in kg. Negative estimates are clamped to
// zero.
func (m *Linear) Predict(f Features) (float64, error) {
	v, err := m.vector(f)
	if err != nil {
		return 0, err
	}
	y := m.Intercept
	for k, x := range v {
		y += m.Coefficients[k] * x
	}
	if y < 0 {
		return 0, nil
	}
	return y, nil
}

func (m *Linear) validate() error {
	want := featureNames()
	if len(m.Features) != len(want) || len(m.Coefficients) != len(want) {
		return fmt.Errorf("model has %d features and %d coefficients, want %d",
			len(m.Features), len(m.Coefficients), len(want))
	}
	for i, n := range want {
		if m.Features[i] != n {
			return fmt.Errorf("feature %d is %q, want %q", i, m.Features[i], n)
		}
	}
	for _, col := range CategoricalColumns {
		if m.Encoders[col] == nil {
			return fmt.Errorf("missing encoder for %s", col)
		}
	}
	return nil
}

// Write serialises the model as JSON.
func (m *Linear) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// Save writes the model to path.
func (m *Linear) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadLinear decodes and validates a model written by Write.
func ReadLinear(r io.Reader) (*Linear, error) {
	var m Linear
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadLinear reads a model from path.
func LoadLinear(path string) (*Linear, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLinear(f)
}

package compliance

import "fmt"

// Config holds the regulatory and search parameters of a compliance run.
type Config struct {
	// ReductionFraction lowers the fleet mean intensity to obtain the target.
	ReductionFraction float64 `json:"reduction_fraction"`
	// PenaltyRatePerTon is the cost of one ton of excess CO2.
	PenaltyRatePerTon float64 `json:"penalty_rate_per_ton"`
	// MaxPools bounds the number of pooling opportunities returned.
	MaxPools int `json:"max_pools"`
	// Performers is the size of the top and worst performer lists.
	Performers int `json:"performers"`
	// Workers bounds the goroutines used to enumerate pairs. Values below 2
	// run the enumeration sequentially.
	Workers int `json:"workers"`
	// Exclusive keeps each vessel in at most one returned pool.
	Exclusive bool `json:"exclusive"`
	// MinSavings is the savings a pool must exceed to be reported.
	MinSavings float64 `json:"min_savings"`
}

// DefaultConfig returns the 2026 benchmark settings.
func DefaultConfig() Config {
	return Config{
		ReductionFraction: 0.05,
		PenaltyRatePerTon: 100,
		MaxPools:          10,
		Performers:        5,
		Workers:           1,
	}
}

// Validate checks the configuration bounds.
func (c Config) Validate() error {
	if c.ReductionFraction < 0 || c.ReductionFraction >= 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidReduction, c.ReductionFraction)
	}
	if c.PenaltyRatePerTon < 0 {
		return fmt.Errorf("penalty_rate_per_ton must not be negative")
	}
	if c.MaxPools < 0 {
		return fmt.Errorf("max_pools must not be negative")
	}
	if c.MinSavings < 0 {
		return fmt.Errorf("min_savings must not be negative")
	}
	if c.Performers < 0 {
		return fmt.Errorf("performers must not be negative")
	}
	return nil
}

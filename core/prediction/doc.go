// Package prediction estimates the CO2 emitted on a journey from its
// operational features. Predictions are optional: compliance classification
// only uses measured CO2, and every consumer must cope with ErrUnavailable.
package prediction

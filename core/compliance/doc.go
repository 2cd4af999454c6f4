// Package compliance evaluates a vessel fleet against a linear emissions
// intensity benchmark and searches for pairwise pooling arrangements.
//
// The pipeline is pure and synchronous: a journey snapshot is turned into
// per-journey intensities, aggregated per vessel, classified as Surplus or
// Deficit against the fleet target, and deficit × surplus pairs are simulated
// and ranked by savings. Engine wraps the pipeline with logging, metrics and
// the optional CO2 predictor.
//
// Vessels are always processed in ascending vessel id order, so every result
// is reproducible for a given journey set regardless of ingestion order.
package compliance

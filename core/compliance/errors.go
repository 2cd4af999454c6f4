package compliance

import "errors"

var (
	// ErrVesselNotFound is returned when a vessel id is absent from the current summaries.
	ErrVesselNotFound = errors.New("vessel not found")
	// ErrEmptyFleet is returned when no journey is available to aggregate.
	ErrEmptyFleet = errors.New("no journeys to aggregate")
	// ErrInvalidReduction is returned for a reduction fraction outside [0,1).
	ErrInvalidReduction = errors.New("reduction fraction must be in [0,1)")
	// ErrZeroCombinedDistance is returned when two pooled vessels logged no distance at all.
	ErrZeroCombinedDistance = errors.New("pooled vessels have zero combined distance")
	// ErrTargetMismatch is returned when pooling summaries from different runs.
	ErrTargetMismatch = errors.New("vessel summaries use different target intensities")
)

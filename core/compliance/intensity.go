package compliance

const (
	// GramsPerKilogram converts journey CO2 (kg) into intensity grams.
	GramsPerKilogram = 1000.0
	// GramsPerTon converts intensity-grams back into reportable tons.
	GramsPerTon = 1_000_000.0
)

// Intensity returns the GHG intensity in gCO2 per nautical mile and unit of
// capacity. A zero distance yields zero rather than an error; callers flag
// such journeys. A capacity that is not positive is treated as 1.
func Intensity(co2KG, distanceNM, capacity float64) float64 {
	if distanceNM == 0 {
		return 0
	}
	if capacity <= 0 {
		capacity = 1
	}
	return co2KG * GramsPerKilogram / (distanceNM * capacity)
}

// excessTons converts an intensity difference over a distance into tons of CO2.
func excessTons(difference, distanceNM float64) float64 {
	return difference * distanceNM / GramsPerTon
}

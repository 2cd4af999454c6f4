package prediction

// Mock predicts CO2 as a per-vessel-type rate times the distance.
type Mock struct {
	// KgPerNM maps a vessel type to its CO2 rate.
	KgPerNM map[string]float64 `json:"kg_per_nm"`
	// Default is used for types missing from KgPerNM.
	Default float64 `json:"default"`
}

func (m Mock) Predict(f Features) (float64, error) {
	rate, ok := m.KgPerNM[f.VesselType]
	if !ok {
		rate = m.Default
	}
	return rate * f.DistanceNM, nil
}

package compliance

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kilianp07/fleetpool/core/anomaly"
	corecompliance "github.com/kilianp07/fleetpool/core/compliance"
	"github.com/kilianp07/fleetpool/core/model"
	"github.com/kilianp07/fleetpool/core/monitoring"
	"github.com/kilianp07/fleetpool/core/prediction"
)

var errBadRequest = errors.New("bad request")

var badRequest = []error{
	errBadRequest,
	model.ErrInvalidJourney,
	prediction.ErrUnknownCategory,
	corecompliance.ErrZeroCombinedDistance,
	corecompliance.ErrTargetMismatch,
	corecompliance.ErrEmptyFleet,
	corecompliance.ErrInvalidReduction,
	anomaly.ErrInvalidOptions,
}

// statusOf maps an error onto an HTTP status code.
func statusOf(err error) int {
	switch {
	case errors.Is(err, corecompliance.ErrVesselNotFound):
		return http.StatusNotFound
	case errors.Is(err, prediction.ErrUnavailable), errors.Is(err, ErrNoData), errors.Is(err, ErrNoHistory):
		return http.StatusServiceUnavailable
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		h.log.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		monitoring.CaptureException(err, map[string]string{"module": "api", "path": r.URL.Path})
	}
	writeJSON(w, code, map[string]string{"detail": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

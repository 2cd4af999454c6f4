// Package compliance exposes the fleet compliance engine over HTTP.
package compliance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/kilianp07/fleetpool/core/anomaly"
	corecompliance "github.com/kilianp07/fleetpool/core/compliance"
	"github.com/kilianp07/fleetpool/core/model"
	"github.com/kilianp07/fleetpool/core/prediction"
	"github.com/kilianp07/fleetpool/infra/archive"
	"github.com/kilianp07/fleetpool/infra/logger"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Handler serves the compliance endpoints over a journey Source.
type Handler struct {
	engine  *corecompliance.Engine
	source  Source
	history History
	log     logger.Logger
}

// History reads archived compliance runs.
type History interface {
	Query(ctx context.Context, q archive.Query) ([]archive.Record, error)
}

// NewHandler creates a handler. A nil logger discards output.
func NewHandler(engine *corecompliance.Engine, source Source, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Handler{engine: engine, source: source, log: log}
}

// WithHistory serves the run archive under /api/compliance/history.
func (h *Handler) WithHistory(hist History) *Handler {
	h.history = hist
	return h
}

// Options configures the router middleware.
type Options struct {
	// AllowedOrigins lists the CORS origins; empty allows any origin.
	AllowedOrigins []string
	// AccessLog receives Apache-style access lines when set.
	AccessLog io.Writer
}

// NewRouter registers the routes of h and wraps them with CORS and access
// logging.
func NewRouter(h *Handler, opts Options) http.Handler {
	r := mux.NewRouter()
	h.Register(r)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	var out http.Handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(r)
	if opts.AccessLog != nil {
		out = handlers.LoggingHandler(opts.AccessLog, out)
	}
	return out
}

// Register adds the endpoints to r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/compliance", h.report).Methods(http.MethodGet)
	api.HandleFunc("/compliance/summary", h.summary).Methods(http.MethodGet)
	api.HandleFunc("/compliance/history", h.historyRuns).Methods(http.MethodGet)
	api.HandleFunc("/vessels", h.vessels).Methods(http.MethodGet)
	api.HandleFunc("/vessels/{id}", h.vessel).Methods(http.MethodGet)
	api.HandleFunc("/pooling", h.simulatePool).Methods(http.MethodPost)
	api.HandleFunc("/pooling/optimal", h.optimalPools).Methods(http.MethodGet)
	api.HandleFunc("/predict", h.predict).Methods(http.MethodPost)
	api.HandleFunc("/ship-types", h.shipTypes).Methods(http.MethodGet)
	api.HandleFunc("/routes", h.routes).Methods(http.MethodGet)
	api.HandleFunc("/anomalies", h.anomalies).Methods(http.MethodGet)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	_, err := h.source.Journeys(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"model_loaded": h.engine.PredictionAvailable(),
		"data_loaded":  err == nil,
	})
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	js, err := h.source.Journeys(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rep, err := h.engine.Report(js)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	js, err := h.source.Journeys(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	fleet, err := h.engine.Fleet(js)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, corecompliance.Summarize(fleet))
}

func (h *Handler) vessels(w http.ResponseWriter, r *http.Request) {
	js, err := h.source.Journeys(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	fleet, err := h.engine.Fleet(js)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vessels": fleet.Vessels})
}

type vesselDetail struct {
	VesselID      string              `json:"vessel_id"`
	Compliance    model.VesselSummary `json:"compliance"`
	Journeys      []model.Journey     `json:"journeys"`
	TotalJourneys int                 `json:"total_journeys"`
}

func (h *Handler) vessel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	js, err := h.source.Journeys(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	v, own, err := h.engine.Vessel(js, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vesselDetail{VesselID: id, Compliance: v, Journeys: own, TotalJourneys: len(own)})
}

type poolRequest struct {
	Vessel1ID string `json:"vessel1_id"`
	Vessel2ID string `json:"vessel2_id"`
}

func (h *Handler) simulatePool(w http.ResponseWriter, r *http.Request) {
	var req poolRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Vessel1ID == "" || req.Vessel2ID == "" {
		h.writeError(w, r, fmt.Errorf("%w: vessel1_id and vessel2_id are required", errBadRequest))
		return
	}
	js, err := h.source.Journeys(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := h.engine.SimulatePool(js, req.Vessel1ID, req.Vessel2ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) optimalPools(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	maxPools := h.engine.Config().MaxPools
	if s := q.Get("max_pools"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			h.writeError(w, r, fmt.Errorf("%w: max_pools must be a non-negative integer", errBadRequest))
			return
		}
		maxPools = n
	}
	exclusive := h.engine.Config().Exclusive
	if s := q.Get("exclusive"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: exclusive must be a boolean", errBadRequest))
			return
		}
		exclusive = b
	}
	js, err := h.source.Journeys(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	pools, err := h.engine.OptimalPools(js, maxPools, exclusive)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"optimal_pools": pools})
}

type predictRequest struct {
	Journeys []prediction.Features `json:"journeys"`
}

func (h *Handler) predict(w http.ResponseWriter, r *http.Request) {
	if !h.engine.PredictionAvailable() {
		h.writeError(w, r, fmt.Errorf("%w: train or configure a model first", prediction.ErrUnavailable))
		return
	}
	var req predictRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := h.engine.Predict(req.Journeys)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"predictions": out})
}

func (h *Handler) shipTypes(w http.ResponseWriter, r *http.Request) {
	h.distinct(w, r, "ship_types", func(j model.Journey) string { return j.VesselType })
}

func (h *Handler) routes(w http.ResponseWriter, r *http.Request) {
	h.distinct(w, r, "routes", func(j model.Journey) string { return j.RouteID })
}

// distinct lists the values of a journey column in first-seen order.
func (h *Handler) distinct(w http.ResponseWriter, r *http.Request, key string, col func(model.Journey) string) {
	js, err := h.source.Journeys(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	seen := make(map[string]bool)
	out := []string{}
	for _, j := range js {
		v := col(j)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{key: out})
}

func (h *Handler) anomalies(w http.ResponseWriter, r *http.Request) {
	opts := anomaly.DefaultOptions()
	q := r.URL.Query()
	if s := q.Get("z"); s != "" {
		z, err := strconv.ParseFloat(s, 64)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: z must be a number", errBadRequest))
			return
		}
		opts.ZThreshold = z
	}
	if s := q.Get("deviation_pct"); s != "" {
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: deviation_pct must be a number", errBadRequest))
			return
		}
		opts.DeviationPct = p
	}
	js, err := h.source.Journeys(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := anomaly.Detect(js, opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) historyRuns(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, r, ErrNoHistory)
		return
	}
	q := archive.Query{VesselID: r.URL.Query().Get("ship_id"), Limit: 50}
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			h.writeError(w, r, fmt.Errorf("%w: limit must be a non-negative integer", errBadRequest))
			return
		}
		q.Limit = n
	}
	if s := r.URL.Query().Get("since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: since must be RFC3339", errBadRequest))
			return
		}
		q.Start = t
	}
	runs, err := h.history.Query(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if runs == nil {
		runs = []archive.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

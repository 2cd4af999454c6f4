package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetpool/config"
	"github.com/kilianp07/fleetpool/core/factory"
	coremetrics "github.com/kilianp07/fleetpool/core/metrics"
)

const fleetCSV = `ship_id,ship_type,route_id,month,distance,fuel_type,fuel_consumption,CO2_emissions
A,Ferry,R1,January,100,HFO,20,300
B,Ferry,R1,January,100,HFO,30,500
C,Tanker,R2,February,200,Diesel,50,700
`

type captureSink struct {
	mu      sync.Mutex
	reports []coremetrics.ReportEvent
}

func (c *captureSink) RecordReport(ev coremetrics.ReportEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, ev)
	return nil
}

var (
	testSink     = &captureSink{}
	registerOnce sync.Once
)

func testConfig(t *testing.T, withData bool) *config.Config {
	t.Helper()
	registerOnce.Do(func() {
		require.NoError(t, coremetrics.RegisterMetricsSink("app-test", func(map[string]any) (coremetrics.ReportSink, error) {
			return testSink, nil
		}))
	})
	cfg := config.Default()
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "app-test"}}
	if withData {
		path := filepath.Join(t.TempDir(), "fleet.csv")
		require.NoError(t, os.WriteFile(path, []byte(fleetCSV), 0o644))
		cfg.Dataset.Path = path
	}
	return &cfg
}

func TestService_ReportDrainsToSinkOnClose(t *testing.T) {
	svc, err := New(context.Background(), testConfig(t, true))
	require.NoError(t, err)

	js, err := svc.Journeys(context.Background())
	require.NoError(t, err)
	require.Len(t, js, 3)

	r, err := svc.Engine.Report(js)
	require.NoError(t, err)
	assert.Equal(t, 3, r.TotalVessels)

	require.NoError(t, svc.Close())
	testSink.mu.Lock()
	defer testSink.mu.Unlock()
	require.NotEmpty(t, testSink.reports)
	assert.Equal(t, 3, testSink.reports[len(testSink.reports)-1].TotalVessels)
}

func TestService_Handler(t *testing.T) {
	svc, err := New(context.Background(), testConfig(t, true))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	rec := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["data_loaded"])
	assert.Equal(t, false, body["model_loaded"])
}

func TestService_NoDataset(t *testing.T) {
	svc, err := New(context.Background(), testConfig(t, false))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	_, err = svc.Journeys(context.Background())
	assert.ErrorIs(t, err, ErrNoDataset)

	rec := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/compliance", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestService_BadPredictor(t *testing.T) {
	cfg := testConfig(t, false)
	cfg.Prediction = factory.ModuleConfig{Type: "unknown"}
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestService_RunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t, false)
	cfg.Server.Addr = "127.0.0.1:0"
	svc, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, svc.Run(ctx))
}

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	api "github.com/kilianp07/fleetpool/api/compliance"
	"github.com/kilianp07/fleetpool/config"
	"github.com/kilianp07/fleetpool/core/compliance"
	coremetrics "github.com/kilianp07/fleetpool/core/metrics"
	coremon "github.com/kilianp07/fleetpool/core/monitoring"
	"github.com/kilianp07/fleetpool/core/model"
	"github.com/kilianp07/fleetpool/core/prediction"
	"github.com/kilianp07/fleetpool/infra/archive"
	"github.com/kilianp07/fleetpool/infra/dataset"
	"github.com/kilianp07/fleetpool/infra/logger"
	"github.com/kilianp07/fleetpool/infra/metrics"
	"github.com/kilianp07/fleetpool/infra/monitoring"
	"github.com/kilianp07/fleetpool/infra/mqtt"
	"github.com/kilianp07/fleetpool/internal/eventbus"
)

// ErrNoDataset is returned by Journeys when no dataset source is configured.
var ErrNoDataset = errors.New("dataset.path or dataset.url is not configured")

// Service wires the compliance engine to the dataset, the report sinks and
// the HTTP API.
type Service struct {
	Engine *compliance.Engine
	// Source holds the loaded journey table served by the API.
	Source *api.Snapshot

	// History is the run archive, nil when archive.path is empty.
	History *archive.Store

	cfg           *config.Config
	sink          coremetrics.ReportSink
	bus           *eventbus.TypedBus[coremetrics.ReportEvent]
	stopCollector context.CancelFunc
	collectorDone <-chan struct{}
	log           logger.Logger
}

// New creates a Service from the configuration. The dataset is loaded when a
// path is configured; otherwise the API answers 503 until data is set.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	pred, err := prediction.NewPredictor(cfg.Prediction)
	if err != nil {
		return nil, fmt.Errorf("predictor: %w", err)
	}

	source := api.NewSnapshot(nil)
	if cfg.Dataset.Configured() {
		journeys, err := dataset.Load(ctx, cfg.Dataset)
		if err != nil {
			return nil, fmt.Errorf("dataset: %w", err)
		}
		source.Set(journeys)
		logg.Infow("dataset loaded", map[string]any{"path": cfg.Dataset.Path, "url": cfg.Dataset.URL, "journeys": len(journeys)})
	}

	sink, err := newSink(cfg)
	if err != nil {
		return nil, err
	}
	var history *archive.Store
	if cfg.Archive.Path != "" {
		history, err = archive.Open(cfg.Archive)
		if err != nil {
			closeSink(sink)
			return nil, fmt.Errorf("archive: %w", err)
		}
		sink = coremetrics.NewMultiSink(sink, history)
	}

	bus := eventbus.NewTyped[coremetrics.ReportEvent]()
	engine, err := compliance.NewEngine(cfg.Compliance,
		compliance.WithPredictor(pred),
		compliance.WithLogger(logger.New("compliance")),
		compliance.WithSink(sink),
		compliance.WithBus(bus),
	)
	if err != nil {
		closeSink(sink)
		return nil, fmt.Errorf("engine: %w", err)
	}

	collectorCtx, stop := context.WithCancel(context.Background())
	done := metrics.StartReportCollector(collectorCtx, bus, sink, logger.New("report-collector"))

	return &Service{
		Engine:        engine,
		Source:        source,
		History:       history,
		cfg:           cfg,
		sink:          sink,
		bus:           bus,
		stopCollector: stop,
		collectorDone: done,
		log:           logg,
	}, nil
}

// newSink builds the configured metrics sinks and adds the MQTT publisher
// when a broker is set.
func newSink(cfg *config.Config) (coremetrics.ReportSink, error) {
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	if cfg.MQTT.Broker == "" {
		return sink, nil
	}
	client, err := mqtt.NewPahoClient(cfg.MQTT)
	if err != nil {
		closeSink(sink)
		return nil, fmt.Errorf("mqtt client: %w", err)
	}
	return coremetrics.NewMultiSink(sink, mqtt.NewReportPublisher(client, cfg.MQTT.TopicPrefix)), nil
}

func closeSink(s coremetrics.ReportSink) {
	if c, ok := s.(interface{ Close() }); ok {
		c.Close()
	}
}

// Journeys returns the loaded journey table.
func (s *Service) Journeys(ctx context.Context) ([]model.Journey, error) {
	if !s.cfg.Dataset.Configured() {
		return nil, ErrNoDataset
	}
	return s.Source.Journeys(ctx)
}

// Handler returns the HTTP API with its middleware.
func (s *Service) Handler() http.Handler {
	opts := api.Options{AllowedOrigins: s.cfg.Server.AllowedOrigins}
	if s.cfg.Logging.AccessLog {
		opts.AccessLog = os.Stdout
	}
	h := api.NewHandler(s.Engine, s.Source, logger.New("api"))
	if s.History != nil {
		h.WithHistory(s.History)
	}
	return api.NewRouter(h, opts)
}

// Run serves the API, and the Prometheus endpoint when configured, until the
// context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	promErr := make(chan error, 1)
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			promErr <- metrics.StartPromServer(ctx, addr)
		}()
	}

	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		s.log.Infof("serving compliance API on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		runErr = fmt.Errorf("api server: %w", err)
	case err := <-promErr:
		if err != nil {
			runErr = fmt.Errorf("prom server: %w", err)
		}
	}

	timeout := time.Duration(s.cfg.Server.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, stop := context.WithTimeout(context.Background(), timeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Errorf("api server shutdown: %v", err)
	}
	return runErr
}

// Close drains pending report events into the sinks, then releases them.
func (s *Service) Close() error {
	s.bus.Close()
	<-s.collectorDone
	s.stopCollector()
	closeSink(s.sink)
	coremon.Flush(2 * time.Second)
	return nil
}

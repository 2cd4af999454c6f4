// Package archive keeps a history of compliance runs in rotating JSONL files.
package archive

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	coremetrics "github.com/kilianp07/fleetpool/core/metrics"
	"github.com/kilianp07/fleetpool/core/model"
)

// Config locates the archive file. An empty Path disables the archive.
type Config struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 10
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = 5
	}
	if c.MaxAgeDays <= 0 {
		c.MaxAgeDays = 30
	}
}

// Record is the archived view of one compliance run.
type Record struct {
	RunID                string    `json:"run_id"`
	Time                 time.Time `json:"time"`
	FleetAvgIntensity    float64   `json:"fleet_avg_intensity"`
	TargetIntensity      float64   `json:"target_intensity"`
	TotalVessels         int       `json:"total_vessels"`
	SurplusVessels       int       `json:"surplus_vessels"`
	DeficitVessels       int       `json:"deficit_vessels"`
	TotalFinancialImpact float64   `json:"total_financial_impact"`
	ZeroDistanceJourneys int       `json:"zero_distance_journeys"`
	OptimalPools         int       `json:"optimal_pools"`
	Deficit              []string  `json:"deficit_ids"`
	Surplus              []string  `json:"surplus_ids"`
}

// RecordOf builds the archive record of a report event.
func RecordOf(ev coremetrics.ReportEvent) Record {
	r := Record{
		RunID:                ev.RunID,
		Time:                 ev.Time.UTC(),
		FleetAvgIntensity:    ev.FleetAvgIntensity,
		TargetIntensity:      ev.TargetIntensity,
		TotalVessels:         ev.TotalVessels,
		SurplusVessels:       ev.SurplusVessels,
		DeficitVessels:       ev.DeficitVessels,
		TotalFinancialImpact: ev.TotalFinancialImpact,
		ZeroDistanceJourneys: ev.ZeroDistanceJourneys,
		OptimalPools:         len(ev.Pools),
		Deficit:              []string{},
		Surplus:              []string{},
	}
	for _, v := range ev.Vessels {
		if v.Status == model.StatusSurplus {
			r.Surplus = append(r.Surplus, v.VesselID)
		} else {
			r.Deficit = append(r.Deficit, v.VesselID)
		}
	}
	return r
}

// Involves reports whether the vessel was classified in the run.
func (r Record) Involves(vesselID string) bool {
	return slices.Contains(r.Deficit, vesselID) || slices.Contains(r.Surplus, vesselID)
}

// Query filters archived runs. Zero fields match everything.
type Query struct {
	Start    time.Time
	End      time.Time
	VesselID string
	// Limit keeps the most recent runs.
	Limit int
}

// Store appends run records to a rotating JSONL file. It satisfies
// coremetrics.ReportSink.
type Store struct {
	mu  sync.Mutex
	out *lumberjack.Logger
	cfg Config
}

// Open creates the archive directory and returns a Store.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("archive path is required")
	}
	cfg.SetDefaults()
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &Store{
		cfg: cfg,
		out: &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		},
	}, nil
}

// RecordReport appends the run and triggers rotation if needed.
func (s *Store) RecordReport(ev coremetrics.ReportEvent) error {
	b, err := json.Marshal(RecordOf(ev))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.out.Write(append(b, '\n'))
	return err
}

// Query reads the current and rotated files and returns the matching runs,
// most recent first.
func (s *Store) Query(ctx context.Context, q Query) ([]Record, error) {
	return Read(ctx, s.cfg.Path, q)
}

// Close closes the current file.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.out.Close()
}

// Read queries the archive at path without opening it for writing. A missing
// archive yields no records.
func Read(ctx context.Context, path string, q Query) ([]Record, error) {
	ext := filepath.Ext(path)
	// Backups are named <name>-<timestamp><ext> next to the current file.
	files, err := filepath.Glob(strings.TrimSuffix(path, ext) + "*" + ext)
	if err != nil {
		return nil, err
	}
	var res []Record
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, err := readFile(f, q)
		if err != nil {
			return nil, err
		}
		res = append(res, recs...)
	}
	slices.SortStableFunc(res, func(a, b Record) int { return b.Time.Compare(a.Time) })
	if q.Limit > 0 && len(res) > q.Limit {
		res = res[:q.Limit]
	}
	return res, nil
}

func readFile(path string, q Query) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var res []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for sc.Scan() {
		var r Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			continue
		}
		if !q.Start.IsZero() && r.Time.Before(q.Start) {
			continue
		}
		if !q.End.IsZero() && r.Time.After(q.End) {
			continue
		}
		if q.VesselID != "" && !r.Involves(q.VesselID) {
			continue
		}
		res = append(res, r)
	}
	return res, sc.Err()
}

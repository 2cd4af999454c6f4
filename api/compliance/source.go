package compliance

import (
	"context"
	"errors"
	"sync"

	"github.com/kilianp07/fleetpool/core/model"
)

var (
	// ErrNoData is returned by a Source that has no journey table loaded.
	ErrNoData = errors.New("fleet data not loaded")
	// ErrNoHistory is returned when no run archive is configured.
	ErrNoHistory = errors.New("run history not configured")
)

// Source provides the journey snapshot a request works on.
type Source interface {
	Journeys(ctx context.Context) ([]model.Journey, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]model.Journey, error)

func (f SourceFunc) Journeys(ctx context.Context) ([]model.Journey, error) { return f(ctx) }

// Snapshot is an in-memory Source that can be replaced atomically.
type Snapshot struct {
	mu       sync.RWMutex
	journeys []model.Journey
	loaded   bool
}

// NewSnapshot returns a snapshot holding journeys. A nil slice means no
// data is loaded.
func NewSnapshot(journeys []model.Journey) *Snapshot {
	s := &Snapshot{}
	if journeys != nil {
		s.Set(journeys)
	}
	return s
}

// Set replaces the snapshot content.
func (s *Snapshot) Set(journeys []model.Journey) {
	cp := append([]model.Journey(nil), journeys...)
	s.mu.Lock()
	s.journeys = cp
	s.loaded = true
	s.mu.Unlock()
}

// Journeys returns the current snapshot or ErrNoData.
func (s *Snapshot) Journeys(context.Context) ([]model.Journey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrNoData
	}
	return s.journeys, nil
}

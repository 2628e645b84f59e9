package testutil

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"sentimentpulse/pkg/contracts/domain"
)

// StubSource is a dataprocessing.Source returning canned results
type StubSource struct {
	mu    sync.Mutex
	obs   []domain.Observation
	err   error
	delay time.Duration
	calls atomic.Int32
}

// NewStubSource returns a source that yields obs
func NewStubSource(obs []domain.Observation) *StubSource {
	return &StubSource{obs: obs}
}

// Set replaces the canned result
func (s *StubSource) Set(obs []domain.Observation, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.obs, s.err = obs, err
}

// SetDelay makes Load block for d
func (s *StubSource) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Calls reports how often Load ran
func (s *StubSource) Calls() int {
	return int(s.calls.Load())
}

// Load returns the result that was current when the call started
func (s *StubSource) Load(ctx context.Context) ([]domain.Observation, error) {
	s.calls.Add(1)
	s.mu.Lock()
	obs, err, delay := s.obs, s.err, s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return obs, err
}

func (s *StubSource) Name() string     { return "stub" }
func (s *StubSource) Location() string { return "/data/Sentiment_Analysis_Production.xlsx" }

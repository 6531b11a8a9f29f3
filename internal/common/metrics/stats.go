// internal/common/metrics/stats.go
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats is the process-wide counter sink. Increments are atomic and mirrored
// into the prometheus vectors so /metrics and the status report agree.
type Stats struct {
	startedAt time.Time

	messages atomic.Int64
	errors   atomic.Int64

	mu     sync.Mutex
	models map[string]*atomic.Int64
}

// Snapshot is a read-only copy of the counters.
type Snapshot struct {
	StartedAt         time.Time
	Uptime            time.Duration
	MessagesProcessed int64
	ModelRequests     map[string]int64
	Errors            int64
}

func NewStats() *Stats {
	return &Stats{
		startedAt: time.Now(),
		models:    make(map[string]*atomic.Int64),
	}
}

func (s *Stats) MessageProcessed() {
	s.messages.Add(1)
	MessagesProcessed.Inc()
}

func (s *Stats) ModelRequest(model string) {
	s.counter(model).Add(1)
	ModelRequests.WithLabelValues(model).Inc()
}

func (s *Stats) Error() {
	s.errors.Add(1)
	Errors.Inc()
}

func (s *Stats) counter(model string) *atomic.Int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.models[model]
	if !ok {
		c = &atomic.Int64{}
		s.models[model] = c
	}
	return c
}

func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	models := make(map[string]int64, len(s.models))
	for name, c := range s.models {
		models[name] = c.Load()
	}
	s.mu.Unlock()

	return Snapshot{
		StartedAt:         s.startedAt,
		Uptime:            time.Since(s.startedAt),
		MessagesProcessed: s.messages.Load(),
		ModelRequests:     models,
		Errors:            s.errors.Load(),
	}
}

// RecordProviderCall counts one outbound provider call. outcome is one of
// ok, empty, not_found or error.
func RecordProviderCall(provider, outcome string) {
	ProviderCalls.WithLabelValues(provider, outcome).Inc()
}

func RecordEnrichment(category string) {
	EnrichmentCategory.WithLabelValues(category).Inc()
}

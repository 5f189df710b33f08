package repo

import (
	"context"
	"sync"
	"time"
)

// InMemoryStatsRepository keeps counters in process memory.
type InMemoryStatsRepository struct {
	mu    sync.Mutex
	stats Stats
}

func NewInMemoryStatsRepository() *InMemoryStatsRepository {
	return &InMemoryStatsRepository{}
}

// Incr implements StatsRepository.
func (r *InMemoryStatsRepository) Incr(_ context.Context, key StatsKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.stats.counter(key)
	if c == nil {
		return ErrUnknownStatsKey
	}
	*c++
	return nil
}

// MarkSuccess implements StatsRepository.
func (r *InMemoryStatsRepository) MarkSuccess(_ context.Context, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at = at.UTC()
	r.stats.LastSuccessAt = &at
	return nil
}

// Snapshot implements StatsRepository.
func (r *InMemoryStatsRepository) Snapshot(_ context.Context) (Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.stats
	if s.LastSuccessAt != nil {
		at := *s.LastSuccessAt
		s.LastSuccessAt = &at
	}
	return s, nil
}

// Reset implements StatsRepository.
func (r *InMemoryStatsRepository) Reset(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats = Stats{}
	return nil
}

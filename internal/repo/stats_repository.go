package repo

import (
	"context"
	"errors"
	"time"
)

// StatsKey names one counter of the stats store.
type StatsKey string

const (
	StatProductListRequests StatsKey = "product_list_requests"
	StatProductItemRequests StatsKey = "product_item_requests"
	StatProductNotFound     StatsKey = "product_not_found"
	StatUpstreamAttempts    StatsKey = "upstream_attempts"
	StatUpstreamFailures    StatsKey = "upstream_failures"
	StatUpstreamFallbacks   StatsKey = "upstream_fallbacks"
)

// ErrUnknownStatsKey is returned when incrementing a counter the store does not track.
var ErrUnknownStatsKey = errors.New("unknown stats key")

// Stats is a point-in-time snapshot of the counters.
type Stats struct {
	ProductListRequests int64      `json:"product_list_requests"`
	ProductItemRequests int64      `json:"product_item_requests"`
	ProductNotFound     int64      `json:"product_not_found"`
	UpstreamAttempts    int64      `json:"upstream_attempts"`
	UpstreamFailures    int64      `json:"upstream_failures"`
	UpstreamFallbacks   int64      `json:"upstream_fallbacks"`
	LastSuccessAt       *time.Time `json:"last_success_at,omitempty"`
}

// StatsRepository records how the proxy and its upstream are doing.
type StatsRepository interface {
	Incr(ctx context.Context, key StatsKey) error
	MarkSuccess(ctx context.Context, at time.Time) error
	Snapshot(ctx context.Context) (Stats, error)
	Reset(ctx context.Context) error
}

func (s *Stats) counter(key StatsKey) *int64 {
	switch key {
	case StatProductListRequests:
		return &s.ProductListRequests
	case StatProductItemRequests:
		return &s.ProductItemRequests
	case StatProductNotFound:
		return &s.ProductNotFound
	case StatUpstreamAttempts:
		return &s.UpstreamAttempts
	case StatUpstreamFailures:
		return &s.UpstreamFailures
	case StatUpstreamFallbacks:
		return &s.UpstreamFallbacks
	}
	return nil
}

func validKey(key StatsKey) bool {
	var s Stats
	return s.counter(key) != nil
}

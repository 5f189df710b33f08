package repo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultStatsKey is the redis hash holding the counters.
const DefaultStatsKey = "catalog:stats"

const lastSuccessField = "last_success_at"

// RedisStatsRepository keeps counters in a single redis hash so several
// proxy instances can share them.
type RedisStatsRepository struct {
	rdb *redis.Client
	key string
}

func NewRedisStatsRepository(rdb *redis.Client, key string) *RedisStatsRepository {
	if key == "" {
		key = DefaultStatsKey
	}
	return &RedisStatsRepository{rdb: rdb, key: key}
}

func (r *RedisStatsRepository) Incr(ctx context.Context, key StatsKey) error {
	if !validKey(key) {
		return ErrUnknownStatsKey
	}
	if err := r.rdb.HIncrBy(ctx, r.key, string(key), 1).Err(); err != nil {
		return fmt.Errorf("incr %s: %w", key, err)
	}
	return nil
}

func (r *RedisStatsRepository) MarkSuccess(ctx context.Context, at time.Time) error {
	if err := r.rdb.HSet(ctx, r.key, lastSuccessField, at.UTC().Format(time.RFC3339Nano)).Err(); err != nil {
		return fmt.Errorf("mark success: %w", err)
	}
	return nil
}

func (r *RedisStatsRepository) Snapshot(ctx context.Context) (Stats, error) {
	fields, err := r.rdb.HGetAll(ctx, r.key).Result()
	if err != nil {
		return Stats{}, fmt.Errorf("read stats: %w", err)
	}

	var s Stats
	for name, raw := range fields {
		if name == lastSuccessField {
			if at, err := time.Parse(time.RFC3339Nano, raw); err == nil {
				s.LastSuccessAt = &at
			}
			continue
		}
		c := s.counter(StatsKey(name))
		if c == nil {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Stats{}, fmt.Errorf("parse %s: %w", name, err)
		}
		*c = n
	}
	return s, nil
}

func (r *RedisStatsRepository) Reset(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("reset stats: %w", err)
	}
	return nil
}

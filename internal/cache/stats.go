// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// stats.go provides a Valkey-backed cache for the dashboard statistics
// payload. The stats query aggregates the whole ledger, so the JSON is
// cached briefly and invalidated whenever a certificate is issued or
// downloaded.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// statsKey is the Valkey key for the cached stats JSON.
	statsKey = "stats:dashboard"

	// DefaultStatsTTL is how long the stats payload stays cached.
	DefaultStatsTTL = time.Minute
)

// StatsCache caches the serialized dashboard stats in Valkey. A nil
// client disables caching; every Get is then a miss.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache creates a stats cache backed by the given Valkey client.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl == 0 {
		ttl = DefaultStatsTTL
	}
	return &StatsCache{client: client, ttl: ttl}
}

// Get retrieves the cached stats JSON. Returns false on miss or when
// caching is disabled.
func (sc *StatsCache) Get(ctx context.Context) ([]byte, bool) {
	if sc.client == nil {
		return nil, false
	}
	val, err := sc.client.Get(ctx, statsKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("stats cache get error", "error", err)
		return nil, false
	}
	return val, true
}

// Set stores the stats JSON with the configured TTL.
func (sc *StatsCache) Set(ctx context.Context, payload []byte) {
	if sc.client == nil {
		return
	}
	if err := sc.client.Set(ctx, statsKey, payload, sc.ttl).Err(); err != nil {
		slog.Warn("stats cache set error", "error", err)
	}
}

// Invalidate drops the cached stats so the next read recomputes them.
func (sc *StatsCache) Invalidate(ctx context.Context) {
	if sc.client == nil {
		return
	}
	if err := sc.client.Del(ctx, statsKey).Err(); err != nil {
		slog.Warn("stats cache invalidate error", "error", err)
	}
}

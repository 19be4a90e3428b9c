// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package functions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limit is a maximum count per sliding window.
type Limit struct {
	Limit  int
	Window time.Duration
}

// Limiter admits or rejects a request for key in bucket.
type Limiter interface {
	Allow(ctx context.Context, bucket, key string) (bool, error)
}

// limitFor returns the limit of bucket. Unset or non-positive limits fall back
// to "default", then to 100 per minute.
func limitFor(limits map[string]Limit, bucket string) Limit {
	if v, ok := limits[bucket]; ok && v.Limit > 0 && v.Window > 0 {
		return v
	}
	if v, ok := limits["default"]; ok && v.Limit > 0 && v.Window > 0 {
		return v
	}
	return Limit{Limit: 100, Window: time.Minute}
}

// RedisLimiter is a sliding-window limiter over sorted sets, shared by every
// server instance pointing at the same Redis.
type RedisLimiter struct {
	rdb    *redis.Client
	limits map[string]Limit
}

func NewRedisLimiter(rdb *redis.Client, limits map[string]Limit) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limits: limits}
}

func (l *RedisLimiter) Allow(ctx context.Context, bucket, key string) (bool, error) {
	if bucket == "" || key == "" {
		return false, fmt.Errorf("bucket and key required")
	}
	lim := limitFor(l.limits, bucket)
	now := time.Now().UnixMilli()
	start := now - lim.Window.Milliseconds()
	k := fmt.Sprintf("arenatv:ratelimit:%s:%s", bucket, key)

	pipe := l.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, k, "0", fmt.Sprintf("%d", start))
	pipe.ZAdd(ctx, k, redis.Z{Score: float64(now), Member: now})
	count := pipe.ZCard(ctx, k)
	pipe.Expire(ctx, k, lim.Window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	if count.Val() > int64(lim.Limit) {
		l.rdb.ZRem(ctx, k, now)
		return false, nil
	}
	return true, nil
}

// MemoryLimiter is the single-instance fallback when Redis is not configured.
type MemoryLimiter struct {
	mu      sync.Mutex
	limits  map[string]Limit
	buckets map[string][]int64
	now     func() time.Time
}

func NewMemoryLimiter(limits map[string]Limit) *MemoryLimiter {
	return &MemoryLimiter{limits: limits, buckets: map[string][]int64{}, now: time.Now}
}

func (l *MemoryLimiter) Allow(ctx context.Context, bucket, key string) (bool, error) {
	if bucket == "" || key == "" {
		return false, fmt.Errorf("bucket and key required")
	}
	lim := limitFor(l.limits, bucket)
	now := l.now().UnixMilli()
	start := now - lim.Window.Milliseconds()
	k := bucket + ":" + key

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.buckets[k]
	i := 0
	for i < len(ts) && ts[i] <= start {
		i++
	}
	ts = ts[i:]
	if len(ts) >= lim.Limit {
		l.buckets[k] = ts
		return false, nil
	}
	l.buckets[k] = append(ts, now)
	return true, nil
}

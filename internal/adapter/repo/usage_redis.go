package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"filmflow/internal/domain"
)

const (
	defaultUsageKeyPrefix = "filmflow:usage:"
	// counters outlive their period so late readers still see the final value
	usageRetention = 48 * time.Hour
)

// UsageStoreRedis implements domain.UsageStore with one Redis string per
// counter key.
type UsageStoreRedis struct {
	client    goredis.Cmdable
	keyPrefix string
}

// RedisOption configures UsageStoreRedis.
type RedisOption func(*UsageStoreRedis)

// WithKeyPrefix sets the key prefix (default "filmflow:usage:").
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *UsageStoreRedis) { s.keyPrefix = prefix }
}

// NewUsageStoreRedis creates a Redis backed usage store.
func NewUsageStoreRedis(client goredis.Cmdable, opts ...RedisOption) *UsageStoreRedis {
	s := &UsageStoreRedis{client: client, keyPrefix: defaultUsageKeyPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *UsageStoreRedis) key(k domain.UsageKey) string {
	return s.keyPrefix + k.UserID + ":" + string(k.Service) + ":" + k.Period
}

func (s *UsageStoreRedis) Get(ctx context.Context, key domain.UsageKey) (int64, error) {
	n, err := s.client.Get(ctx, s.key(key)).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get usage: %w", err)
	}
	return n, nil
}

func (s *UsageStoreRedis) Increment(ctx context.Context, key domain.UsageKey, amount int64) (int64, error) {
	k := s.key(key)
	var incr *goredis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.IncrBy(ctx, k, amount)
		if exp, ok := expiryFor(key.Period); ok {
			pipe.ExpireAt(ctx, k, exp)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis increment usage: %w", err)
	}
	return incr.Val(), nil
}

// incrementWithinScript adds ARGV[1] to KEYS[1] unless the result would
// exceed ARGV[2]. ARGV[3] is the expiry as unix seconds, 0 for none.
//
// Returns {applied, count}.
var incrementWithinScript = goredis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
local amount = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])
if current + amount > limit then
    return {0, current}
end
local count = redis.call("INCRBY", KEYS[1], amount)
local expire_at = tonumber(ARGV[3])
if expire_at > 0 then
    redis.call("EXPIREAT", KEYS[1], expire_at)
end
return {1, count}
`)

func (s *UsageStoreRedis) IncrementWithin(ctx context.Context, key domain.UsageKey, amount, limit int64) (int64, bool, error) {
	var expireAt int64
	if exp, ok := expiryFor(key.Period); ok {
		expireAt = exp.Unix()
	}
	res, err := incrementWithinScript.Run(ctx, s.client, []string{s.key(key)}, amount, limit, expireAt).Int64Slice()
	if err != nil {
		return 0, false, fmt.Errorf("redis increment usage within limit: %w", err)
	}
	if len(res) != 2 {
		return 0, false, fmt.Errorf("redis increment usage within limit: unexpected reply %v", res)
	}
	return res[1], res[0] == 1, nil
}

// expiryFor derives when a counter can be dropped from its period key.
func expiryFor(period string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02", period); err == nil {
		return t.AddDate(0, 0, 1).Add(usageRetention), true
	}
	if t, err := time.Parse("2006-01", period); err == nil {
		return t.AddDate(0, 1, 0).Add(usageRetention), true
	}
	return time.Time{}, false
}

var _ domain.UsageStore = (*UsageStoreRedis)(nil)

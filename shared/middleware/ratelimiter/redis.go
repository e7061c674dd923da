package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucketScript refills and takes a token atomically.
// KEYS[1] bucket; ARGV: now ms, capacity, window ms. Returns 1 when allowed.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local window = tonumber(ARGV[3])

local bucket = redis.call("HMGET", key, "tokens", "ts")
local tokens = tonumber(bucket[1])
local ts = tonumber(bucket[2])

if tokens == nil or ts == nil then
  tokens = capacity
  ts = now
end

local delta = now - ts
if delta < 0 then delta = 0 end

tokens = math.min(capacity, tokens + (delta * capacity) / window)

local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call("HSET", key, "tokens", tostring(tokens), "ts", tostring(now))
redis.call("PEXPIRE", key, window)
return allowed
`)

// RedisLimiter shares its buckets between every instance of the server.
type RedisLimiter struct {
	client   redis.Scripter
	prefix   string
	capacity int
	window   time.Duration
	now      func() time.Time
}

// NewRedis allows capacity requests per window for each key, refilled linearly.
func NewRedis(client redis.Scripter, prefix string, capacity int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:   client,
		prefix:   prefix,
		capacity: capacity,
		window:   window,
		now:      time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := fmt.Sprintf("rl:%s:%s", l.prefix, key)
	allowed, err := tokenBucketScript.Run(ctx, l.client, []string{bucket},
		l.now().UnixMilli(), l.capacity, l.window.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit script: %w", err)
	}
	return allowed == 1, nil
}

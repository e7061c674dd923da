// Package ratelimiter implements per-key token buckets, in memory or in Redis.
package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether one more request for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimiter implements a token bucket rate limiter
type RateLimiter struct {
	tokens     float64
	capacity   float64
	rate       float64
	lastRefill time.Time
	mu         sync.Mutex
	timer      *time.Timer
	key        string           // Reference to key for cleanup
	parent     *UserRateLimiter // Reference to parent for cleanup
}

// UserRateLimiter manages rate limiting for multiple keys in memory
type UserRateLimiter struct {
	limiters       map[string]*RateLimiter
	mu             sync.RWMutex
	rate           float64
	capacity       float64
	expirationTime time.Duration
}

// New creates a limiter refilling rate tokens per second up to capacity. Idle buckets
// are dropped after expirationTime.
func New(rate float64, capacity float64, expirationTime time.Duration) *UserRateLimiter {
	return &UserRateLimiter{
		limiters:       make(map[string]*RateLimiter),
		rate:           rate,
		capacity:       capacity,
		expirationTime: expirationTime,
	}
}

// PerWindow allows limit requests per window, refilled linearly.
func PerWindow(limit int, window time.Duration) *UserRateLimiter {
	return New(float64(limit)/window.Seconds(), float64(limit), 2*window)
}

// cleanup removes a specific limiter
func (url *UserRateLimiter) cleanup(key string) {
	url.mu.Lock()
	delete(url.limiters, key)
	url.mu.Unlock()
}

// resetTimer resets the expiration timer for a limiter
func (rl *RateLimiter) resetTimer() {
	if rl.timer != nil {
		rl.timer.Stop()
	}

	rl.timer = time.AfterFunc(rl.parent.expirationTime, func() {
		rl.parent.cleanup(rl.key)
	})
}

// getLimiter gets or creates a rate limiter for a key
func (url *UserRateLimiter) getLimiter(key string) *RateLimiter {
	// First try read-only lookup
	url.mu.RLock()
	limiter, exists := url.limiters[key]
	url.mu.RUnlock()

	if exists {
		limiter.mu.Lock()
		limiter.resetTimer()
		limiter.mu.Unlock()
		return limiter
	}

	url.mu.Lock()
	defer url.mu.Unlock()

	// Double-check after acquiring write lock
	limiter, exists = url.limiters[key]
	if exists {
		limiter.mu.Lock()
		limiter.resetTimer()
		limiter.mu.Unlock()
		return limiter
	}

	limiter = &RateLimiter{
		tokens:     url.capacity,
		capacity:   url.capacity,
		rate:       url.rate,
		lastRefill: time.Now(),
		key:        key,
		parent:     url,
	}
	url.limiters[key] = limiter
	limiter.resetTimer()

	return limiter
}

func (rl *RateLimiter) allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()

	// Refill tokens based on elapsed time
	rl.tokens += elapsed * rl.rate
	if rl.tokens > rl.capacity {
		rl.tokens = rl.capacity
	}

	rl.lastRefill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}

	return false
}

// Allow checks if a request should be allowed for a given key. It never fails.
func (url *UserRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	return url.getLimiter(key).allow(), nil
}

// Len is the number of live buckets.
func (url *UserRateLimiter) Len() int {
	url.mu.RLock()
	defer url.mu.RUnlock()
	return len(url.limiters)
}

// Stop cleans up all timers
func (url *UserRateLimiter) Stop() {
	url.mu.Lock()
	defer url.mu.Unlock()

	for _, limiter := range url.limiters {
		limiter.mu.Lock()
		if limiter.timer != nil {
			limiter.timer.Stop()
		}
		limiter.mu.Unlock()
	}
}

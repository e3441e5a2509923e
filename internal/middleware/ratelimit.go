package middleware

import (
	"context"
	"log"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"clicktap-chat/internal/services"
)

// Counter counts hits for a key inside a fixed window. It returns the count
// including the current hit and the time left until the window resets.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, time.Duration, error)
}

type visitor struct {
	count       int64
	windowStart time.Time
}

// MemoryCounter keeps per-key windows in process memory. Counts are not
// shared between replicas; use RedisCounter for that.
type MemoryCounter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	window   time.Duration
	now      func() time.Time
	done     chan struct{}
	once     sync.Once
}

func NewMemoryCounter(window time.Duration) *MemoryCounter {
	c := &MemoryCounter{
		visitors: make(map[string]*visitor),
		window:   window,
		now:      time.Now,
		done:     make(chan struct{}),
	}

	// Cleanup goroutine
	go func() {
		ticker := time.NewTicker(window)
		defer ticker.Stop()
		for {
			select {
			case <-c.done:
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()

	return c
}

func (c *MemoryCounter) Incr(_ context.Context, key string) (int64, time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	v, exists := c.visitors[key]
	if !exists || now.Sub(v.windowStart) >= c.window {
		c.visitors[key] = &visitor{count: 1, windowStart: now}
		return 1, c.window, nil
	}

	v.count++
	return v.count, c.window - now.Sub(v.windowStart), nil
}

func (c *MemoryCounter) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, v := range c.visitors {
		if now.Sub(v.windowStart) >= c.window {
			delete(c.visitors, key)
		}
	}
}

// Close stops the cleanup goroutine.
func (c *MemoryCounter) Close() {
	c.once.Do(func() { close(c.done) })
}

type redisIncrementer interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

// RedisCounter implements a fixed window with INCR and an EXPIRE set when the
// window opens, so every proxy replica sees the same counts. A key found
// without a TTL gets one again; otherwise a lost EXPIRE would never close the
// window.
type RedisCounter struct {
	client redisIncrementer
	prefix string
	window time.Duration
}

func NewRedisCounter(client redisIncrementer, prefix string, window time.Duration) *RedisCounter {
	return &RedisCounter{client: client, prefix: prefix, window: window}
}

func (c *RedisCounter) Incr(ctx context.Context, key string) (int64, time.Duration, error) {
	redisKey := c.prefix + key
	n, err := c.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, 0, err
	}
	if n == 1 {
		if err := c.client.Expire(ctx, redisKey, c.window).Err(); err != nil {
			return n, 0, err
		}
		return n, c.window, nil
	}

	ttl, err := c.client.TTL(ctx, redisKey).Result()
	if err != nil {
		return n, 0, err
	}
	switch {
	case ttl == -1:
		// Key exists with no expiry.
		if err := c.client.Expire(ctx, redisKey, c.window).Err(); err != nil {
			return n, 0, err
		}
		return n, c.window, nil
	case ttl < 0:
		// Expired between INCR and TTL.
		return n, c.window, nil
	}
	return n, ttl, nil
}

type RateLimiter struct {
	counter Counter
	limit   int
	window  time.Duration
}

func NewRateLimiter(counter Counter, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{counter: counter, limit: limit, window: window}
}

// Middleware rejects requests over the limit with 429. Counter failures let
// the request through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		count, reset, err := rl.counter.Incr(r.Context(), clientIP(r))
		if err != nil {
			log.Printf("⚠ rate limiter unavailable, allowing request: %v", err)
			next.ServeHTTP(w, r)
			return
		}

		if count > int64(rl.limit) {
			w.Header().Set("Retry-After", retryAfter(reset, rl.window))
			writeError(w, http.StatusTooManyRequests, services.MsgRateLimited)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// retryAfter renders the time left in the window as whole seconds, rounded
// up and never below 1.
func retryAfter(reset, window time.Duration) string {
	if reset <= 0 || reset > window {
		reset = window
	}
	secs := int64(math.Ceil(reset.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}

// clientIP keys the limiter. RemoteAddr has already been rewritten by
// chi's RealIP from X-Forwarded-For / X-Real-IP, so the server must sit
// behind a proxy that sets those headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package middlewares

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/geocoder89/userhub/internal/http/handlers"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// WindowStore counts hits per key inside a fixed window.
type WindowStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, resetIn time.Duration, err error)
}

type RateLimiter struct {
	store  WindowStore
	window time.Duration
	limit  int64
	log    *slog.Logger
}

func NewRateLimiter(store WindowStore, limit int, window time.Duration, log *slog.Logger) *RateLimiter {
	if log == nil {
		log = slog.Default()
	}

	return &RateLimiter{
		store:  store,
		limit:  int64(limit),
		window: window,
		log:    log,
	}
}

// RateLimiterMiddleware enforces the limit for the key derived by keyFn. A store
// failure lets the request through.
func (rl *RateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.limit <= 0 {
			c.Next()
			return
		}

		key := keyFn(c)

		if key == "" {
			key = clientIP(c)
		}

		count, resetIn, err := rl.store.Hit(c.Request.Context(), key, rl.window)
		if err != nil {
			rl.log.WarnContext(c.Request.Context(), "rate limiter store failed, allowing request", "err", err)
			c.Next()
			return
		}

		remaining := rl.limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(rl.limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > rl.limit {
			retryAfter := int(resetIn.Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			handlers.AbortWithFailure(c, http.StatusTooManyRequests, "Too many requests. Please try again shortly.")
			return
		}

		c.Next()
	}
}

func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	// gin's ClientIP respects X-Forwarded-For / X-Real-IP if configured.
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}

type MemoryWindowStore struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	now     func() time.Time
}

type clientBucket struct {
	count     int64
	windowEnd time.Time
}

func NewMemoryWindowStore() *MemoryWindowStore {
	return &MemoryWindowStore{
		clients: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

func (s *MemoryWindowStore) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.clients[key]
	if !ok || !now.Before(b.windowEnd) {
		s.sweep(now)
		b = &clientBucket{windowEnd: now.Add(window)}
		s.clients[key] = b
	}

	b.count++

	return b.count, b.windowEnd.Sub(now), nil
}

// drops expired buckets so idle clients do not accumulate
func (s *MemoryWindowStore) sweep(now time.Time) {
	for k, b := range s.clients {
		if !now.Before(b.windowEnd) {
			delete(s.clients, k)
		}
	}
}

// RedisWindowStore keeps one INCR counter per key, expiring with the window, so
// every API instance shares the same limits.
type RedisWindowStore struct {
	rdb    redis.Cmdable
	prefix string
}

// NewRedisWindowStore stores counters under prefix (see redisclient.Client.Namespace).
func NewRedisWindowStore(rdb redis.Cmdable, prefix string) *RedisWindowStore {
	return &RedisWindowStore{rdb: rdb, prefix: prefix}
}

func (s *RedisWindowStore) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	k := s.prefix + key

	count, err := s.rdb.Incr(ctx, k).Result()
	if err != nil {
		return 0, 0, err
	}

	if count == 1 {
		if err := s.rdb.PExpire(ctx, k, window).Err(); err != nil {
			return 0, 0, err
		}
		return count, window, nil
	}

	ttl, err := s.rdb.PTTL(ctx, k).Result()
	if err != nil {
		return 0, 0, err
	}

	// key lost its expiry (e.g. PEXPIRE failed after INCR); restore it
	if ttl < 0 {
		if err := s.rdb.PExpire(ctx, k, window).Err(); err != nil {
			return 0, 0, err
		}
		ttl = window
	}

	return count, ttl, nil
}

// Package gateway provides API gateway functionality including rate limiting.
package gateway

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lvonguyen/incidentscope/internal/config"
)

// RateLimiter enforces a fixed per-minute request budget per client and
// endpoint. With a Redis client the window lives in Redis so multiple
// replicas share one budget; without one it falls back to local counters.
type RateLimiter struct {
	redis  *redis.Client
	logger *zap.Logger
	config config.RateLimitConfig

	mu      sync.Mutex
	windows map[string]*localWindow
}

type localWindow struct {
	count   int
	resetAt time.Time
}

// Result contains the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	Remaining  int
	Limit      int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// NewRateLimiter creates a rate limiter. redisClient may be nil.
func NewRateLimiter(redisClient *redis.Client, cfg config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 120
	}
	return &RateLimiter{
		redis:   redisClient,
		logger:  logger,
		config:  cfg,
		windows: make(map[string]*localWindow),
	}
}

// Check counts one request against the client's current minute window.
func (rl *RateLimiter) Check(ctx context.Context, clientID, endpoint string) Result {
	if rl.redis != nil {
		if res, ok := rl.checkRedis(ctx, clientID, endpoint); ok {
			return res
		}
		// Redis down: fall through to local counting rather than failing open.
	}
	return rl.checkLocal(clientID, endpoint)
}

func (rl *RateLimiter) checkRedis(ctx context.Context, clientID, endpoint string) (Result, bool) {
	key := fmt.Sprintf("incidentscope:ratelimit:%s:%s:minute", clientID, endpoint)

	script := redis.NewScript(`
		local current = redis.call('INCR', KEYS[1])
		if current == 1 then
			redis.call('PEXPIRE', KEYS[1], ARGV[1])
		end
		return current
	`)
	current, err := script.Run(ctx, rl.redis, []string{key}, 60000).Int()
	if err != nil {
		rl.logger.Warn("redis rate limit check failed, using local window", zap.Error(err))
		return Result{}, false
	}

	ttl, _ := rl.redis.TTL(ctx, key).Result()
	return rl.buildResult(current, time.Now().Add(ttl)), true
}

func (rl *RateLimiter) checkLocal(clientID, endpoint string) Result {
	key := clientID + ":" + endpoint
	now := time.Now()

	rl.mu.Lock()
	w := rl.windows[key]
	if w == nil || now.After(w.resetAt) {
		w = &localWindow{resetAt: now.Add(time.Minute)}
		rl.windows[key] = w
	}
	w.count++
	current, resetAt := w.count, w.resetAt
	rl.mu.Unlock()

	return rl.buildResult(current, resetAt)
}

func (rl *RateLimiter) buildResult(current int, resetAt time.Time) Result {
	limit := rl.config.RequestsPerMinute
	remaining := limit - current
	if remaining < 0 {
		remaining = 0
	}
	res := Result{
		Allowed:   current <= limit,
		Remaining: remaining,
		Limit:     limit,
		ResetAt:   resetAt,
	}
	if !res.Allowed {
		res.RetryAfter = time.Until(resetAt)
	}
	return res
}

// Middleware returns an HTTP middleware enforcing the limiter. Disabled
// limiters pass requests straight through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.config.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		result := rl.Check(r.Context(), clientIP(r), r.URL.Path)

		if rl.config.IncludeHeaders {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
		}

		if !result.Allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds()+0.5)))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package api

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Domenick1991/cargobooking/config"
	"github.com/Domenick1991/cargobooking/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	headerRequestID = "X-Request-ID"
	headerUserID    = "X-User-ID"
)

// RequestID propagates the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func AccessLog(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		} else if status >= http.StatusBadRequest {
			event = logger.Warn()
		}
		if len(c.Errors) > 0 {
			event = event.Err(c.Errors.Last())
		}
		event.
			Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(started)).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTP(route, c.Writer.Status(), time.Since(started))
	}
}

const defaultLimiterIdle = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// rateLimiter keeps one token bucket per client IP. Buckets untouched for
// idle are dropped on a later lookup.
type rateLimiter struct {
	limiters  sync.Map
	cfg       config.RateLimitConfig
	idle      time.Duration
	now       func() time.Time
	lastPrune atomic.Int64
}

func newRateLimiter(cfg config.RateLimitConfig) *rateLimiter {
	idle := time.Duration(cfg.IdleSeconds) * time.Second
	if idle <= 0 {
		idle = defaultLimiterIdle
	}
	l := &rateLimiter{cfg: cfg, idle: idle, now: time.Now}
	l.lastPrune.Store(l.now().UnixNano())
	return l
}

func (l *rateLimiter) getLimiter(key string) *rate.Limiter {
	now := l.now().UnixNano()
	l.prune(now)

	if v, ok := l.limiters.Load(key); ok {
		entry := v.(*limiterEntry)
		entry.lastSeen.Store(now)
		return entry.limiter
	}

	burst := l.cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	entry := &limiterEntry{limiter: rate.NewLimiter(rate.Limit(l.cfg.RPS), burst)}
	entry.lastSeen.Store(now)
	actual, _ := l.limiters.LoadOrStore(key, entry)
	return actual.(*limiterEntry).limiter
}

// prune runs at most once per idle period.
func (l *rateLimiter) prune(now int64) {
	last := l.lastPrune.Load()
	if now-last < int64(l.idle) || !l.lastPrune.CompareAndSwap(last, now) {
		return
	}
	l.limiters.Range(func(key, value any) bool {
		if now-value.(*limiterEntry).lastSeen.Load() >= int64(l.idle) {
			l.limiters.Delete(key)
		}
		return true
	})
}

func (l *rateLimiter) size() int {
	n := 0
	l.limiters.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// RateLimit throttles each client IP. X-User-ID is caller-supplied and is
// not used as a key.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	limiter := newRateLimiter(cfg)
	return func(c *gin.Context) {
		if !limiter.getLimiter(c.ClientIP()).Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded", Code: "rate_limited"})
			return
		}
		c.Next()
	}
}

// callerID reads the authenticated user id set by the upstream gateway.
func callerID(c *gin.Context) (int64, bool) {
	raw := c.GetHeader(headerUserID)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

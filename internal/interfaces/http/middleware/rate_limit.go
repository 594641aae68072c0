package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/turtacn/gridrisk/internal/application/dto"
	"github.com/turtacn/gridrisk/internal/config"
	"github.com/turtacn/gridrisk/internal/infrastructure/ratelimit"
	"github.com/turtacn/gridrisk/pkg/logger"
)

// idleClientTTL is how long an idle client's bucket is kept.
const idleClientTTL = 5 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientRateLimiter keeps one token bucket per client IP.
type ClientRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientBucket
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// NewClientRateLimiter creates a limiter allowing rps requests per second with the given burst.
func NewClientRateLimiter(rps float64, burst int) *ClientRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &ClientRateLimiter{
		clients: make(map[string]*clientBucket),
		limit:   rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

// Allow reports whether the client may proceed and, if not, how long to wait.
func (l *ClientRateLimiter) Allow(_ context.Context, client string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.clients[client]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = b
	}
	b.lastSeen = now

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Second
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (l *ClientRateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < idleClientTTL {
		return
	}
	for k, b := range l.clients {
		if now.Sub(b.lastSeen) > idleClientTTL {
			delete(l.clients, k)
		}
	}
	l.lastSweep = now
}

// RateLimit rejects requests over the per-client budget with 429. A nil
// limiter keeps the budget in this process.
// RateLimit 对超出单客户端配额的请求返回 429。
func RateLimit(cfg config.RateLimitConfig, limiter ratelimit.Limiter, log logger.Logger) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	if limiter == nil {
		limiter = NewClientRateLimiter(cfg.RequestsPerSecond, cfg.Burst)
	}

	return func(c *gin.Context) {
		client := c.ClientIP()
		allowed, wait := limiter.Allow(c.Request.Context(), client)
		if allowed {
			c.Next()
			return
		}

		retryAfter := int(math.Ceil(wait.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		log.Warn(c.Request.Context(), "rate limit exceeded", logger.Fields{
			"client_ip": client,
			"limit":     cfg.RequestsPerSecond,
		})
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.RateLimitExceededResponse(retryAfter, TraceID(c)))
	}
}

package ratelimit

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	appErrors "github.com/noah-isme/elan-api/pkg/errors"
	"github.com/noah-isme/elan-api/pkg/response"
)

const (
	defaultIdleTTL   = 10 * time.Minute
	sweepEveryNCalls = 1024
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per client key.
type Limiter struct {
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	keyFunc func(*gin.Context) string
	now     func() time.Time

	mu      sync.Mutex
	clients map[string]*client
	calls   int
}

// Option customises a Limiter.
type Option func(*Limiter)

// WithKeyFunc overrides how clients are identified (client IP by default).
func WithKeyFunc(fn func(*gin.Context) string) Option {
	return func(l *Limiter) { l.keyFunc = fn }
}

// WithIdleTTL sets how long an idle client bucket is kept.
func WithIdleTTL(ttl time.Duration) Option {
	return func(l *Limiter) { l.idleTTL = ttl }
}

// New builds a limiter allowing rps sustained requests with the given burst per client.
func New(rps float64, burst int, opts ...Option) *Limiter {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = int(math.Ceil(rps))
	}
	l := &Limiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: defaultIdleTTL,
		keyFunc: func(c *gin.Context) string { return c.ClientIP() },
		now:     time.Now,
		clients: make(map[string]*client),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Middleware rejects requests over the client's budget with 429.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lim := l.limiterFor(l.keyFunc(c))
		if !lim.Allow() {
			retryAfter := int(math.Ceil(1 / float64(l.rps)))
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			response.Abort(c, appErrors.ErrRateLimited)
			return
		}
		c.Next()
	}
}

func (l *Limiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.calls++
	if l.calls%sweepEveryNCalls == 0 {
		l.sweep(now)
	}

	cl, ok := l.clients[key]
	if !ok {
		cl = &client{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

func (l *Limiter) sweep(now time.Time) {
	for key, cl := range l.clients {
		if now.Sub(cl.lastSeen) > l.idleTTL {
			delete(l.clients, key)
		}
	}
}

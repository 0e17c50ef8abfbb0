package server

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// errTooManyRequests is returned when a client exceeds its upload rate.
var errTooManyRequests = &httpError{
	Status:  http.StatusTooManyRequests,
	Message: "too many requests",
}

// Client limiters idle longer than clientIdleTTL are dropped once the table
// grows past pruneThreshold.
const (
	clientIdleTTL  = 10 * time.Minute
	pruneThreshold = 1024
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiters holds one token bucket per client IP.
type clientLimiters struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

func newClientLimiters(rps float64, burst int) *clientLimiters {
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiters{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

// reserve takes a token for key. When none is available it returns false
// and the delay until the next one.
func (l *clientLimiters) reserve(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cl, ok := l.clients[key]
	if !ok {
		if len(l.clients) >= pruneThreshold {
			l.prune(now)
		}
		cl = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = cl
	}
	cl.lastSeen = now

	r := cl.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// prune must be called with mu held.
func (l *clientLimiters) prune(now time.Time) {
	for key, cl := range l.clients {
		if now.Sub(cl.lastSeen) > clientIdleTTL {
			delete(l.clients, key)
		}
	}
}

// rateLimit rejects requests from clients over their budget with 429.
func (s *Server) rateLimit(l *clientLimiters) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, delay := l.reserve(c.ClientIP())
		if !ok {
			secs := int(math.Ceil(delay.Seconds()))
			c.Header("Retry-After", strconv.Itoa(max(secs, 1)))
			s.logger.Warn("rate limited", "client", c.ClientIP(), "path", c.Request.URL.Path)
			s.respondError(c, errTooManyRequests)
			return
		}
		c.Next()
	}
}

package httpapi

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP. Buckets idle for longer
// than idleTimeout are dropped by a background sweep until Stop is called.
type RateLimiter struct {
	mu          sync.Mutex
	limit       rate.Limit
	burst       int
	idleTimeout time.Duration
	clients     map[string]*clientLimiter
	now         func() time.Time
	stop        chan struct{}
	stopOnce    sync.Once
}

func NewRateLimiter(requestsPerSecond float64, burst int, idleTimeout time.Duration) *RateLimiter {
	if idleTimeout <= 0 {
		idleTimeout = 10 * time.Minute
	}
	rl := &RateLimiter{
		limit:       rate.Limit(requestsPerSecond),
		burst:       burst,
		idleTimeout: idleTimeout,
		clients:     make(map[string]*clientLimiter),
		now:         time.Now,
		stop:        make(chan struct{}),
	}
	go rl.cleanupLoop(idleTimeout / 2)
	return rl
}

func (r *RateLimiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.cleanup()
		case <-r.stop:
			return
		}
	}
}

func (r *RateLimiter) cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for ip, c := range r.clients {
		if now.Sub(c.lastSeen) > r.idleTimeout {
			delete(r.clients, ip)
		}
	}
}

func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *RateLimiter) Allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	c, ok := r.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (r *RateLimiter) clientCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func RateLimitMiddleware(limiter *RateLimiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !limiter.Allow(ip) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

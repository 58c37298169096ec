package web

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JonMunkholm/roster/internal/web/middleware"
)

// limiterSweepInterval is how often idle visitors are dropped.
const limiterSweepInterval = 5 * time.Minute

// rateLimiter is a token bucket per client IP. Each visitor may burst up to
// perMinute requests and then refills at perMinute per minute.
type rateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	perMinute int
	idleTTL   time.Duration
	now       func() time.Time

	stopCh chan struct{}
	once   sync.Once
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newRateLimiter creates a limiter and starts its sweep goroutine.
// Call close to stop it.
func newRateLimiter(perMinute int) *rateLimiter {
	rl := &rateLimiter{
		visitors:  make(map[string]*visitor),
		perMinute: perMinute,
		idleTTL:   2 * time.Minute,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// allow reports whether key may make a request now and consumes a token.
func (rl *rateLimiter) allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rl.perMinute)), rl.perMinute),
		}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	rl.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

func (rl *rateLimiter) sweepLoop() {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup(rl.now())
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup drops visitors idle for longer than idleTTL. An idle visitor's
// bucket is full again, so forgetting it changes nothing.
func (rl *rateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.idleTTL {
			delete(rl.visitors, key)
		}
	}
}

func (rl *rateLimiter) close() {
	rl.once.Do(func() { close(rl.stopCh) })
}

// middleware rejects requests over the limit with 429. route labels the
// rate limit metric.
func (rl *rateLimiter) middleware(route string, m *httpMetrics) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int((time.Minute / time.Duration(rl.perMinute)).Seconds()) + 1)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(middleware.ClientIP(r)) {
				m.recordRateLimitHit(route)
				w.Header().Set("Retry-After", retryAfter)
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded", "RATE001")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

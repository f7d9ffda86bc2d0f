package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/smartnote/internal/utils"
)

// RateLimitConfig configures a per-client token bucket: Burst requests at
// once, then one more every RefillInterval.
type RateLimitConfig struct {
	Burst          int
	RefillInterval time.Duration
	MaxEntries     int           // sweep idle clients early once this many are tracked
	SweepInterval  time.Duration // how often idle clients are forgotten
	IdleTTL        time.Duration
	TrustProxy     bool             // resolve IP from proxy headers when true
	Now            func() time.Time // defaults to time.Now
}

func (c *RateLimitConfig) defaults() {
	if c.Burst < 1 {
		c.Burst = 1
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Minute
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = 15 * time.Minute
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

type bucket struct {
	tokens   float64
	updated  time.Time
	lastSeen time.Time
}

// tokenBuckets holds one bucket per client key behind a single mutex; the
// critical section is a few float operations.
type tokenBuckets struct {
	cfg       RateLimitConfig
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newTokenBuckets(cfg RateLimitConfig) *tokenBuckets {
	cfg.defaults()
	return &tokenBuckets{
		cfg:       cfg,
		buckets:   make(map[string]*bucket),
		lastSweep: cfg.Now(),
	}
}

// take consumes a token for key. When none is left it returns the wait until
// the next one.
func (tb *tokenBuckets) take(key string, now time.Time) (ok bool, remaining int, retryAfter time.Duration) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if now.Sub(tb.lastSweep) >= tb.cfg.SweepInterval ||
		(tb.cfg.MaxEntries > 0 && len(tb.buckets) >= tb.cfg.MaxEntries) {
		tb.sweep(now)
	}

	capacity := float64(tb.cfg.Burst)
	b, found := tb.buckets[key]
	if !found {
		b = &bucket{tokens: capacity, updated: now}
		tb.buckets[key] = b
	}
	b.lastSeen = now

	if elapsed := now.Sub(b.updated); elapsed > 0 {
		b.tokens = math.Min(capacity, b.tokens+float64(elapsed)/float64(tb.cfg.RefillInterval))
		b.updated = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return true, int(b.tokens), 0
	}
	missing := (1 - b.tokens) * float64(tb.cfg.RefillInterval)
	return false, 0, time.Duration(math.Ceil(missing))
}

func (tb *tokenBuckets) sweep(now time.Time) {
	for key, b := range tb.buckets {
		if now.Sub(b.lastSeen) > tb.cfg.IdleTTL {
			delete(tb.buckets, key)
		}
	}
	tb.lastSweep = now
}

// RateLimit rejects requests over budget with 429 and a Retry-After header
// in whole seconds.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	tb := newTokenBuckets(cfg)
	limit := strconv.Itoa(tb.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := utils.ClientIP(r, tb.cfg.TrustProxy)
			ok, remaining, retryAfter := tb.take(key, tb.cfg.Now())

			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				secs := max(int(math.Ceil(retryAfter.Seconds())), 1)
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"too many AI requests, retry later"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

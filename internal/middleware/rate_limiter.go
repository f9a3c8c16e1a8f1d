package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter controls how frequently a caller may perform an action.
type RateLimiter interface {
	Allow(key string) bool
}

// RateLimitOptions configures NewIPRateLimiter.
type RateLimitOptions struct {
	// Requests events are allowed per Window, plus Burst.
	Requests int
	Window   time.Duration
	Burst    int
	// TTL is how long an idle key is remembered.
	TTL time.Duration
	// OnReject, when set, is called with the key of every rejected event.
	OnReject func(key string)
}

// ipRateLimiter tracks request rates per key (typically scope:ip) with expiration.
type ipRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	lastGC   time.Time
	onReject func(string)
	now      func() time.Time
}

// NewIPRateLimiter constructs a per-key token bucket limiter.
func NewIPRateLimiter(opts RateLimitOptions) RateLimiter {
	return newIPRateLimiter(opts)
}

func newIPRateLimiter(opts RateLimitOptions) *ipRateLimiter {
	if opts.Requests <= 0 {
		opts.Requests = 1
	}
	if opts.Window <= 0 {
		opts.Window = time.Second
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}

	return &ipRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(opts.Window / time.Duration(opts.Requests)),
		burst:    opts.Burst,
		ttl:      opts.TTL,
		onReject: opts.OnReject,
		now:      time.Now,
	}
}

func (l *ipRateLimiter) Allow(key string) bool {
	if key == "" {
		key = "unknown"
	}

	l.mu.Lock()
	now := l.now()
	v := l.getVisitorLocked(key, now)
	if now.Sub(l.lastGC) > l.ttl {
		l.gcLocked(now)
		l.lastGC = now
	}
	l.mu.Unlock()

	if v.limiter.AllowN(now, 1) {
		return true
	}
	if l.onReject != nil {
		l.onReject(key)
	}
	return false
}

func (l *ipRateLimiter) getVisitorLocked(key string, now time.Time) *visitor {
	if v, ok := l.visitors[key]; ok {
		v.lastSeen = now
		return v
	}

	v := &visitor{limiter: rate.NewLimiter(l.limit, l.burst), lastSeen: now}
	l.visitors[key] = v
	return v
}

func (l *ipRateLimiter) gcLocked(now time.Time) {
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.ttl {
			delete(l.visitors, key)
		}
	}
}

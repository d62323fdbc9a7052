package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LocalLimiter is an in-process per-key token bucket. It backs the Redis limiters
// when Redis is not configured or fails.
type LocalLimiter struct {
	limiters sync.Map // key → *limiterEntry
	r        rate.Limit
	burst    int
}

type limiterEntry struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter allows maxRequests per window with a burst of maxRequests.
// maxRequests <= 0 disables the limiter.
func NewLocalLimiter(maxRequests int, window time.Duration) *LocalLimiter {
	l := &LocalLimiter{burst: maxRequests}
	if maxRequests > 0 && window > 0 {
		l.r = rate.Limit(float64(maxRequests) / window.Seconds())
		go l.sweepLoop()
	}
	return l
}

func (l *LocalLimiter) Allow(key string) bool {
	if l.r == 0 {
		return true
	}
	e := l.entry(key)
	e.mu.Lock()
	e.lastSeen = time.Now()
	e.mu.Unlock()
	return e.limiter.Allow()
}

func (l *LocalLimiter) entry(key string) *limiterEntry {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*limiterEntry)
	}
	e := &limiterEntry{
		limiter:  rate.NewLimiter(l.r, l.burst),
		lastSeen: time.Now(),
	}
	actual, _ := l.limiters.LoadOrStore(key, e)
	return actual.(*limiterEntry)
}

func (l *LocalLimiter) sweepLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for now := range ticker.C {
		l.Sweep(now.Add(-10 * time.Minute))
	}
}

// Sweep drops keys idle since before cutoff.
func (l *LocalLimiter) Sweep(cutoff time.Time) {
	l.limiters.Range(func(key, value any) bool {
		e := value.(*limiterEntry)
		e.mu.Lock()
		stale := e.lastSeen.Before(cutoff)
		e.mu.Unlock()
		if stale {
			l.limiters.Delete(key)
		}
		return true
	})
}

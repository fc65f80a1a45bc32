// ABOUTME: Per-sender token bucket rate limiting with idle entry eviction.

package chat

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// senderLimiter applies a token bucket per sender address.
type senderLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu    sync.Mutex
	byKey map[string]*limiterEntry
	hits  uint64
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newSenderLimiter creates a per-key limiter; nil if the rate is disabled.
func newSenderLimiter(rps float64, burst int) *senderLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	return &senderLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		byKey:   make(map[string]*limiterEntry),
	}
}

// allow reports whether sender may consume one token now. A nil limiter
// allows everything.
func (l *senderLimiter) allow(sender string) bool {
	if l == nil || sender == "" {
		return true
	}
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.byKey[sender]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byKey[sender] = e
	}
	e.lastSeen = now
	allowed := e.limiter.AllowN(now, 1)

	// Evict idle senders every so often instead of running a sweeper.
	l.hits++
	if l.hits%512 == 0 {
		cutoff := now.Add(-l.idleTTL)
		for k, v := range l.byKey {
			if v.lastSeen.Before(cutoff) {
				delete(l.byKey, k)
			}
		}
	}
	return allowed
}

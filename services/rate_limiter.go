package services

import (
	"sync"
	"time"
)

// RateLimiter bounds abuse from a single client key with two layers: a
// minimum spacing between consecutive requests and a sliding-window cap.
// It is deliberately not a precise token bucket; the requirement is bounded
// abuse, not exact fairness. State lives only in process memory and is
// replaced wholesale when a key's window has elapsed.
type RateLimiter struct {
	mu           sync.Mutex
	minSpacing   time.Duration
	window       time.Duration
	maxPerWindow int
	clients      map[string]*rateWindow

	now func() time.Time // injectable clock for tests
}

type rateWindow struct {
	count         int
	windowResetAt time.Time
	lastRequestAt time.Time
}

// NewRateLimiter creates a limiter scoped to the gateway's lifetime.
func NewRateLimiter(minSpacing, window time.Duration, maxPerWindow int) *RateLimiter {
	return &RateLimiter{
		minSpacing:   minSpacing,
		window:       window,
		maxPerWindow: maxPerWindow,
		clients:      make(map[string]*rateWindow),
		now:          time.Now,
	}
}

// Allow records a request from the given client key and reports whether it
// may proceed. When rejected, retryAfter tells the caller how long to wait.
func (r *RateLimiter) Allow(key string) (allowed bool, retryAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	w, ok := r.clients[key]
	if !ok || now.After(w.windowResetAt) {
		// A window reset only clears the per-window count; minimum spacing
		// still applies across the boundary.
		if ok {
			if since := now.Sub(w.lastRequestAt); since < r.minSpacing {
				return false, r.minSpacing - since
			}
		}
		r.clients[key] = &rateWindow{
			count:         1,
			windowResetAt: now.Add(r.window),
			lastRequestAt: now,
		}
		return true, 0
	}

	if since := now.Sub(w.lastRequestAt); since < r.minSpacing {
		return false, r.minSpacing - since
	}

	if w.count >= r.maxPerWindow {
		return false, w.windowResetAt.Sub(now)
	}

	w.count++
	w.lastRequestAt = now
	return true, 0
}

// Prune drops entries whose window has long expired. Called from the
// background cleanup loop to keep the map from growing unbounded.
func (r *RateLimiter) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for key, w := range r.clients {
		if now.After(w.windowResetAt) {
			delete(r.clients, key)
			removed++
		}
	}
	return removed
}

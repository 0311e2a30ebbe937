package bot

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// userLimiter tracks one user's command rate.
type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a per-user limit on /download invocations, since each
// accepted command ties up a download worker for up to several minutes.
type RateLimiter struct {
	perMinute int
	burst     int
	users     map[string]*userLimiter
	mu        sync.Mutex
	stopCh    chan struct{}
}

// NewRateLimiter creates a RateLimiter allowing perMinute requests per user
// with the given burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	if burst < 1 {
		burst = 1
	}

	rl := &RateLimiter{
		perMinute: perMinute,
		burst:     burst,
		users:     make(map[string]*userLimiter),
		stopCh:    make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow reports whether the user may issue another command now.
func (rl *RateLimiter) Allow(userID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	u, ok := rl.users[userID]
	if !ok {
		u = &userLimiter{
			limiter: rate.NewLimiter(rate.Limit(float64(rl.perMinute)/60.0), rl.burst),
		}
		rl.users[userID] = u
	}
	u.lastSeen = time.Now()
	return u.limiter.Allow()
}

// Stop stops the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup drops users that have been idle for a while.
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	threshold := time.Now().Add(-10 * time.Minute)
	deleted := 0
	for id, u := range rl.users {
		if u.lastSeen.Before(threshold) {
			delete(rl.users, id)
			deleted++
		}
	}
	if deleted > 0 {
		slog.Debug("Rate limiter cleanup", "deleted", deleted, "remaining", len(rl.users))
	}
}

package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_BurstThenBlocked(t *testing.T) {
	rl := NewRateLimiter(4, 2)
	defer rl.Stop()

	assert.True(t, rl.Allow("user1"))
	assert.True(t, rl.Allow("user1"))
	assert.False(t, rl.Allow("user1"), "third immediate request exceeds the burst")
}

func TestRateLimiter_UsersAreIndependent(t *testing.T) {
	rl := NewRateLimiter(4, 1)
	defer rl.Stop()

	assert.True(t, rl.Allow("user1"))
	assert.False(t, rl.Allow("user1"))
	assert.True(t, rl.Allow("user2"), "one user's limit must not affect another")
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(4, 1)
	defer rl.Stop()

	rl.Allow("user1")
	rl.Allow("user2")

	rl.mu.Lock()
	for _, u := range rl.users {
		u.lastSeen = u.lastSeen.Add(-time.Hour)
	}
	rl.mu.Unlock()

	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.users)
}

func TestRateLimiter_ClampsBadConfig(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	defer rl.Stop()

	assert.True(t, rl.Allow("user1"), "clamped limiter still allows one request")
}

package services

import (
	"context"
	"streamflix-api/pkg/logging"
	"sync"
	"time"
)

// MemoryRateLimiter keeps cool-down windows in process memory. It is used when
// Redis is not configured.
type MemoryRateLimiter struct {
	windows         map[string]time.Time
	mutex           sync.Mutex
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	now             func() time.Time
}

// NewMemoryRateLimiter creates a limiter and starts its cleanup routine
func NewMemoryRateLimiter() *MemoryRateLimiter {
	rl := &MemoryRateLimiter{
		windows:         make(map[string]time.Time),
		cleanupInterval: 10 * time.Minute,
		stopCleanup:     make(chan struct{}),
		now:             time.Now,
	}

	go rl.startCleanupRoutine()

	return rl
}

// CheckRateLimit implements RateLimiter
func (rl *MemoryRateLimiter) CheckRateLimit(_ context.Context, key string) (bool, error) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	until, exists := rl.windows[key]
	return exists && rl.now().Before(until), nil
}

// SetRateLimit implements RateLimiter
func (rl *MemoryRateLimiter) SetRateLimit(_ context.Context, key string, window time.Duration) error {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	rl.windows[key] = rl.now().Add(window)
	return nil
}

func (rl *MemoryRateLimiter) startCleanupRoutine() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *MemoryRateLimiter) cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	initialCount := len(rl.windows)
	for key, until := range rl.windows {
		if !now.Before(until) {
			delete(rl.windows, key)
		}
	}

	if cleaned := initialCount - len(rl.windows); cleaned > 0 {
		logging.Infof("Rate limiter cleanup: removed %d expired windows, remaining: %d", cleaned, len(rl.windows))
	}
}

// Stop stops the cleanup routine
func (rl *MemoryRateLimiter) Stop() {
	close(rl.stopCleanup)
}

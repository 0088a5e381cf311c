package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// UpstreamLimiter keeps one token bucket per upstream host so a burst of
// widening retries against one journey planner does not starve the other.
type UpstreamLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	defaults Config
}

type Config struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 20,
		BurstSize:         40,
	}
}

func NewUpstreamLimiter(config Config) *UpstreamLimiter {
	return &UpstreamLimiter{
		limiters: make(map[string]*rate.Limiter),
		defaults: config,
	}
}

func (u *UpstreamLimiter) limiter(upstream string) *rate.Limiter {
	u.mu.RLock()
	limiter, exists := u.limiters[upstream]
	u.mu.RUnlock()

	if exists {
		return limiter
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if limiter, exists = u.limiters[upstream]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(u.defaults.RequestsPerSecond), u.defaults.BurstSize)
	u.limiters[upstream] = limiter
	return limiter
}

// SetLimit overrides the bucket of one upstream.
func (u *UpstreamLimiter) SetLimit(upstream string, rps float64, burst int) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.limiters[upstream] = rate.NewLimiter(rate.Limit(rps), burst)
}

// Wait blocks until a request to upstream is allowed or ctx is done.
func (u *UpstreamLimiter) Wait(ctx context.Context, upstream string) error {
	return u.limiter(upstream).Wait(ctx)
}

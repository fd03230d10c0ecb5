package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RateLimitedProvider spaces calls to stay within a requests-per-minute
// quota. It starts with a full minute's allowance.
type RateLimitedProvider struct {
	provider Provider
	interval time.Duration
	burst    float64

	mu       sync.Mutex
	tokens   float64
	lastFill time.Time
	now      func() time.Time
}

// NewRateLimitedProvider allows at most rpm calls per minute through to
// provider. rpm <= 0 returns provider unchanged.
func NewRateLimitedProvider(provider Provider, rpm int) Provider {
	if rpm <= 0 {
		return provider
	}
	return &RateLimitedProvider{
		provider: provider,
		interval: time.Minute / time.Duration(rpm),
		burst:    float64(rpm),
		tokens:   float64(rpm),
		lastFill: time.Now(),
		now:      time.Now,
	}
}

func (r *RateLimitedProvider) Name() string {
	return r.provider.Name()
}

// Complete waits for quota, then calls the wrapped provider. A wait cut short
// by ctx is reported as ErrOracleUnavailable.
func (r *RateLimitedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := r.wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w: waiting for rate limit: %w", r.Name(), ErrOracleUnavailable, err)
	}
	return r.provider.Complete(ctx, req)
}

func (r *RateLimitedProvider) wait(ctx context.Context) error {
	for {
		delay := r.reserve()
		if delay == 0 {
			return nil
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// reserve takes a token and returns 0, or returns how long until one is due.
func (r *RateLimitedProvider) reserve() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.tokens += float64(now.Sub(r.lastFill)) / float64(r.interval)
	if r.tokens > r.burst {
		r.tokens = r.burst
	}
	r.lastFill = now

	if r.tokens >= 1 {
		r.tokens--
		return 0
	}
	if d := time.Duration((1 - r.tokens) * float64(r.interval)); d > 0 {
		return d
	}
	return time.Nanosecond
}

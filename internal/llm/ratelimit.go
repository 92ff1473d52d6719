package llm

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	// DefaultMaxConcurrent bounds in-flight completions.
	DefaultMaxConcurrent = 5
	// DefaultMinDelay spaces consecutive request starts.
	DefaultMinDelay = 100 * time.Millisecond
)

// RateLimiter bounds concurrent completions with a semaphore and enforces a
// minimum delay between request starts.
type RateLimiter struct {
	semaphore     chan struct{}
	maxConcurrent int
	minDelay      time.Duration
	lastRequest   time.Time
	mu            sync.Mutex
}

// NewRateLimiter builds a limiter. Non-positive maxConcurrent falls back to
// DefaultMaxConcurrent; a negative delay is treated as zero.
func NewRateLimiter(maxConcurrent int, minDelay time.Duration) *RateLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if minDelay < 0 {
		minDelay = 0
	}
	return &RateLimiter{
		semaphore:     make(chan struct{}, maxConcurrent),
		maxConcurrent: maxConcurrent,
		minDelay:      minDelay,
	}
}

// Acquire blocks until a slot is free and the minimum delay has passed, or
// ctx is done. The returned release must be called when the request ends.
func (r *RateLimiter) Acquire(ctx context.Context) (release func(), err error) {
	select {
	case r.semaphore <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	r.mu.Lock()
	if r.minDelay > 0 {
		if elapsed := time.Since(r.lastRequest); elapsed < r.minDelay {
			wait := r.minDelay - elapsed
			// reserve the start time so concurrent acquirers queue behind us
			r.lastRequest = time.Now().Add(wait)
			r.mu.Unlock()

			select {
			case <-time.After(wait):
			case <-ctx.Done():
				<-r.semaphore
				return nil, ctx.Err()
			}
			return func() { <-r.semaphore }, nil
		}
	}
	r.lastRequest = time.Now()
	r.mu.Unlock()

	return func() { <-r.semaphore }, nil
}

// CurrentUsage returns the number of slots in use, reported on /api/v1/stats.
func (r *RateLimiter) CurrentUsage() int {
	return len(r.semaphore)
}

// MaxConcurrent returns the slot count.
func (r *RateLimiter) MaxConcurrent() int {
	return r.maxConcurrent
}

// retryBackoff is the pause before the single retry of a throttled call.
var retryBackoff = time.Second

// RateLimited wraps c so every completion holds a limiter slot and runs under
// timeout (zero means no per-call deadline). A 429 or 5xx reply is retried
// once after retryBackoff.
func RateLimited(c Completer, rl *RateLimiter, timeout time.Duration) Completer {
	return CompleterFunc(func(ctx context.Context, system, user string) (string, error) {
		release, err := rl.Acquire(ctx)
		if err != nil {
			return "", err
		}
		defer release()

		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		out, err := c.Complete(ctx, system, user)
		var se *StatusError
		if err == nil || !errors.As(err, &se) || !se.Retryable() {
			return out, err
		}
		select {
		case <-ctx.Done():
			return "", err
		case <-time.After(retryBackoff):
		}
		return c.Complete(ctx, system, user)
	})
}

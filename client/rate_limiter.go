package client

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket that paces API requests. A nil limiter or a
// non-positive rate lets every request through.
type RateLimiter struct {
	mu     sync.Mutex
	rate   float64 // requests per second
	tokens float64 // current available tokens
	burst  float64
	last   time.Time
}

// NewRateLimiter allows rate requests per second with bursts of up to burst.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	if rate <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{rate: rate, tokens: float64(burst), burst: float64(burst), last: time.Now()}
}

// Wait blocks until a request may be sent or ctx is done.
func (l *RateLimiter) Wait(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}
	for {
		l.mu.Lock()
		l.refill(time.Now())
		if l.tokens >= 1 {
			l.tokens--
			l.mu.Unlock()
			return nil
		}
		// Need to wait for the next token
		wait := time.Duration((1 - l.tokens) / l.rate * float64(time.Second))
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// refill must be called with mu held.
func (l *RateLimiter) refill(now time.Time) {
	elapsed := now.Sub(l.last).Seconds()
	if elapsed > 0 {
		l.tokens += elapsed * l.rate
		if l.tokens > l.burst {
			l.tokens = l.burst
		}
		l.last = now
	}
}

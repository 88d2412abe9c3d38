package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces outgoing requests
type Limiter interface {
	// Wait blocks until the next request may proceed or ctx is done
	Wait(ctx context.Context) error
}

// RandomDelay sleeps a uniformly random duration in [min, max] on every
// call. It throttles listing pages the way a person scrolling would.
type RandomDelay struct {
	min, max time.Duration
	mu       sync.Mutex
	rnd      *rand.Rand
}

// NewRandomDelay creates a random delay throttle. max below min is
// treated as max == min.
func NewRandomDelay(min, max time.Duration) *RandomDelay {
	if max < min {
		max = min
	}
	return &RandomDelay{
		min: min,
		max: max,
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns the next delay without sleeping
func (d *RandomDelay) Next() time.Duration {
	if d.max == d.min {
		return d.min
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.min + time.Duration(d.rnd.Int63n(int64(d.max-d.min)+1))
}

func (d *RandomDelay) Wait(ctx context.Context) error {
	delay := d.Next()
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// TokenBucket allows a steady rate of requests with a small burst
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket allows perSecond requests per second with the given burst
func NewTokenBucket(perSecond float64, burst int) *TokenBucket {
	if burst < 1 {
		burst = 1
	}
	return &TokenBucket{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (tb *TokenBucket) Wait(ctx context.Context) error {
	return tb.limiter.Wait(ctx)
}

// Noop never waits
type Noop struct{}

func (Noop) Wait(ctx context.Context) error { return ctx.Err() }

// ForDownloads returns the download limiter for perSecond, or Noop when
// downloads are unlimited
func ForDownloads(perSecond float64) Limiter {
	if perSecond <= 0 {
		return Noop{}
	}
	return NewTokenBucket(perSecond, 1)
}

// Package ratelimit throttles requests to the web API.
//
// All limiters implement Limiter, whose Wait blocks until the next request
// may proceed or ctx is done.
//
// RandomDelay sleeps a uniformly random duration between two bounds and is
// used between listing pages:
//
//	throttle := ratelimit.NewRandomDelay(time.Second, 3*time.Second)
//	if err := throttle.Wait(ctx); err != nil {
//	    return err
//	}
//
// TokenBucket caps media downloads at a steady rate. ForDownloads returns
// Noop when no rate is configured.
package ratelimit

package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrInvalidRate marks a misconfigured bucket: a non-positive refill rate or
// a capacity below one token can never yield a token, so the caller's
// configuration is at fault and the error must surface.
var ErrInvalidRate = errors.New("rate limiter misconfigured")

type bucket struct {
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	last       time.Time
}

// Limiter is a keyed token bucket. Acquire blocks the caller until a token
// is available for the key, so the long-run rate per upstream stays bounded.
// Waiters are not served FIFO; only the aggregate rate is guaranteed.
type Limiter struct {
	mu    sync.Mutex
	m     map[string]*bucket
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func New() *Limiter {
	return &Limiter{
		m:     make(map[string]*bucket),
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// SetClock replaces the time source and sleep function. Used by tests to
// simulate waiting without real delays.
func (l *Limiter) SetClock(now func() time.Time, sleep func(context.Context, time.Duration) error) {
	l.now = now
	l.sleep = sleep
}

// Acquire consumes one token for key, blocking while the bucket is empty.
// Returns early when ctx is cancelled or the bucket parameters cannot
// produce a token at all.
func (l *Limiter) Acquire(ctx context.Context, key string, refillPerSec, capacity float64) error {
	if refillPerSec <= 0 {
		return fmt.Errorf("%w: refill rate %v for %q", ErrInvalidRate, refillPerSec, key)
	}
	if capacity < 1 {
		return fmt.Errorf("%w: capacity %v for %q", ErrInvalidRate, capacity, key)
	}
	for {
		wait, ok := l.tryTake(key, refillPerSec, capacity)
		if ok {
			return nil
		}
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// tryTake refills the bucket and either consumes a token or reports how long
// the caller should wait for one to accrue. The read-modify-write on bucket
// state happens under the lock.
func (l *Limiter) tryTake(key string, refillPerSec, capacity float64) (time.Duration, bool) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.m[key]
	if !ok {
		b = &bucket{tokens: capacity, capacity: capacity, refillRate: refillPerSec, last: now}
		l.m[key] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * b.refillRate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.last = now
	}

	if b.tokens >= 1 {
		b.tokens -= 1
		return 0, true
	}

	wait := time.Duration((1 - b.tokens) / b.refillRate * float64(time.Second))
	return wait, false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

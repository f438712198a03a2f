package pacing

import (
	"context"
	"math/rand/v2"
	"time"
)

// MinDelay is the floor applied to every jittered delay.
const MinDelay = 100 * time.Millisecond

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Gate computes randomized delays before network calls so request timing
// does not follow a fixed cadence. A Gate holds no mutable state and is
// safe for concurrent use.
type Gate struct {
	// random returns a float in [0, 1).
	random func() float64

	sleep SleepFunc
}

// Option configures a Gate.
type Option func(*Gate)

// WithRandom replaces the uniform [0, 1) source. The function must be
// safe for concurrent use.
func WithRandom(random func() float64) Option {
	return func(g *Gate) {
		if random != nil {
			g.random = random
		}
	}
}

// WithSleep replaces the sleeper, mainly so tests do not wait.
func WithSleep(sleep SleepFunc) Option {
	return func(g *Gate) {
		if sleep != nil {
			g.sleep = sleep
		}
	}
}

// New creates a Gate backed by math/rand/v2 and a context-aware timer.
func New(opts ...Option) *Gate {
	g := &Gate{
		random: rand.Float64,
		sleep:  Sleep,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// DelayFor returns max(MinDelay, base + base*jitter*u) where u is uniform
// in [-1, 1).
func (g *Gate) DelayFor(base time.Duration, jitter float64) time.Duration {
	u := g.random()*2 - 1
	d := base + time.Duration(float64(base)*jitter*u)
	if d < MinDelay {
		return MinDelay
	}
	return d
}

// Wait sleeps for DelayFor(base, jitter). It returns ctx.Err() if the
// context ends first.
func (g *Gate) Wait(ctx context.Context, base time.Duration, jitter float64) error {
	return g.sleep(ctx, g.DelayFor(base, jitter))
}

// Sleep waits for d, returning early with ctx.Err() on cancellation.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoSleep returns immediately unless ctx is already done.
func NoSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// Package pacing holds the deliberate pre-call delays used to stay under
// upstream rate limits.
package pacing

import (
	"context"
	"math/rand/v2"
	"time"
)

// Delay waits between Min and Max before a call. Min == Max gives a fixed delay,
// a zero Delay returns immediately.
type Delay struct {
	Min time.Duration
	Max time.Duration
}

func Fixed(d time.Duration) Delay { return Delay{Min: d, Max: d} }

func Jittered(min, max time.Duration) Delay { return Delay{Min: min, Max: max} }

// Duration picks the wait for one call.
func (d Delay) Duration() time.Duration {
	if d.Max <= d.Min {
		return max(d.Min, 0)
	}
	return d.Min + rand.N(d.Max-d.Min+1)
}

// Wait sleeps for Duration or until ctx is done.
func (d Delay) Wait(ctx context.Context) error {
	wait := d.Duration()
	if wait <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

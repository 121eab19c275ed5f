package main

import (
	"math"
	"sync"
	"time"
)

// stepSmoothing advances the displayed speed one tick toward the target.
//
// The step is frame-based, not time-integrated: each tick closes a fixed
// fraction of the remaining delta, and once the delta falls inside the snap
// window the value lands on the target exactly (otherwise the exponential
// approach never terminates). The result always lies between current and
// target, so the smoother can never overshoot.
func stepSmoothing(current, target float64) float64 {
	delta := target - current
	if math.Abs(delta) < snapEpsilon {
		return target
	}
	return current + delta*approachRate
}

// frameTicker is a cancellable repeating tick source for the smoothing loop.
// Stop is idempotent: the daemon defers it and main may also call it on
// shutdown paths, and a double stop must be a no-op.
type frameTicker struct {
	C <-chan time.Time

	ticker   *time.Ticker
	stopOnce sync.Once
}

// newFrameTicker creates a ticker firing hz times per second.
// hz must be positive; the config validator guarantees that.
func newFrameTicker(hz int) *frameTicker {
	t := time.NewTicker(time.Second / time.Duration(hz))
	return &frameTicker{C: t.C, ticker: t}
}

func (f *frameTicker) Stop() {
	f.stopOnce.Do(f.ticker.Stop)
}

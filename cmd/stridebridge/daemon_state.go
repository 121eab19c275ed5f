package main

import "time"

// DaemonState is the top-level, daemon-owned state container.
//
// All reducer-owned state lives here so the reducer can stay pure: it
// returns the next state without mutating anything external. The daemon
// goroutine is the single owner; other goroutines see state only through
// snapshots delivered via the event loop.
type DaemonState struct {
	// Pace is the reducer-owned speed controller state: target, smoothed
	// current speed, and the three user modifiers.
	Pace PaceState

	// Avatar caches what the external avatar controller last reported,
	// when the bridge is enabled. Observed state, never authoritative for
	// the preview computation.
	Avatar AvatarState

	// Intent holds pending desired changes applied by the effects stage.
	Intent DaemonIntent
}

// PaceState holds the speed engine's inputs and its derived output.
type PaceState struct {
	// TargetSpeed is the user-requested treadmill speed, [0, maxSpeed].
	TargetSpeed float64

	// CurrentSpeed eases toward TargetSpeed one tick at a time. Never set
	// directly by user input.
	CurrentSpeed float64

	// Multiplier scales the normalized base speed, [0, multiplierMax],
	// snapped to exactly 1.0 near unity. Edits are not accepted while an
	// override is active.
	Multiplier float64

	// Override is the preset ladder state.
	Override Override

	// NudgeDirection is -1, 0, or +1 while a hold-to-nudge gesture is
	// active. The momentary offset is NudgeDirection * nudgeOffset.
	NudgeDirection int

	// FinalSpeed is the derived [0, 1] output, recomputed by the reducer
	// after every state change. Cached only so change detection and
	// snapshots don't recompute it in multiple places.
	FinalSpeed float64
}

// Offset returns the momentary additive offset for the active hold gesture.
func (p PaceState) Offset() float64 {
	return float64(p.NudgeDirection) * nudgeOffset
}

// compose recomputes the final speed from the current pace state.
func (p PaceState) compose() float64 {
	return composeSpeed(composeInputs{
		CurrentSpeed: p.CurrentSpeed,
		TargetSpeed:  p.TargetSpeed,
		Multiplier:   p.Multiplier,
		Override:     p.Override,
		NudgeOffset:  p.Offset(),
	})
}

// defaultPaceState is the state a fresh daemon (or a full reset) starts in.
func defaultPaceState() PaceState {
	p := PaceState{
		TargetSpeed:  defaultTargetSpeed,
		CurrentSpeed: defaultTargetSpeed,
		Multiplier:   1.0,
		Override:     overrideOff,
	}
	p.FinalSpeed = p.compose()
	return p
}

// AvatarState is the daemon's cached view of the external avatar controller.
type AvatarState struct {
	// Speed is the last normalized speed the controller confirmed.
	Speed      float64
	SpeedKnown bool
	SpeedAt    time.Time

	// RequestedSpeed is the last speed the reducer asked the bridge to push.
	// Push gating compares against this, not against the previous tick's
	// value, so a slowly creeping final speed still crosses the threshold
	// eventually. Cleared when a push fails so the next tick retries.
	RequestedSpeed float64
	RequestedKnown bool
}

// DaemonIntent captures pending changes the effects stage should apply.
type DaemonIntent struct {
	// DesiredSpeed, if non-nil, is a final speed waiting to be pushed to
	// the avatar bridge. Coalesced latest-wins per tick.
	DesiredSpeed *float64
}

// SetDesiredSpeed records a pending bridge push.
// Called only by the daemon goroutine (single-owner).
func (s *DaemonState) SetDesiredSpeed(v float64) {
	s.Intent.DesiredSpeed = &v
}

// SetObservedSpeed updates the cached avatar speed after a confirmed push
// or query. Called only by the daemon goroutine (single-owner).
func (s *DaemonState) SetObservedSpeed(v float64, now time.Time) {
	s.Avatar.Speed = v
	s.Avatar.SpeedKnown = true
	s.Avatar.SpeedAt = now
}

// StateSnapshot is a coherent copy of the externally visible state, built
// by the reducer for snapshot requests (WS state_init and the like).
type StateSnapshot struct {
	TargetSpeed   float64
	CurrentSpeed  float64
	Multiplier    float64
	OverrideIndex int
	NudgeOffset   float64
	FinalSpeed    float64

	AvatarSpeed      float64
	AvatarSpeedKnown bool
	AvatarSpeedAt    time.Time
}

// Snapshot builds a StateSnapshot from the current state.
func (s *DaemonState) Snapshot() StateSnapshot {
	return StateSnapshot{
		TargetSpeed:   s.Pace.TargetSpeed,
		CurrentSpeed:  s.Pace.CurrentSpeed,
		Multiplier:    s.Pace.Multiplier,
		OverrideIndex: int(s.Pace.Override),
		NudgeOffset:   s.Pace.Offset(),
		FinalSpeed:    s.Pace.FinalSpeed,

		AvatarSpeed:      s.Avatar.Speed,
		AvatarSpeedKnown: s.Avatar.SpeedKnown,
		AvatarSpeedAt:    s.Avatar.SpeedAt,
	}
}

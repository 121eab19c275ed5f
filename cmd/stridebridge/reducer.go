package main

import (
	"math"
	"time"
)

// This file implements the reducer-style architecture building blocks:
//
//   - StateBroadcast: state-change notifications for the WS state feed
//   - Reduce(): computes next state + commands + broadcasts, without I/O
//
// The reducer must be pure. It must NOT mutate external controller objects.
// All engine state is embedded in DaemonState, and the smoothing integration
// is performed via the pure stepSmoothing function.
//
// The daemon loop is responsible for executing Commands and feeding
// observations back as Events.

// ==============================
// Broadcasts (state feed)
// ==============================

// StateBroadcast is the marker interface for reducer-emitted state changes
// consumed by the WebSocket broadcaster.
type StateBroadcast interface {
	broadcastMarker()
}

// BroadcastSpeedChanged reports a change of the final normalized speed.
// Speed is rounded to speedBroadcastPrecision; it is emitted only when the
// rounded value differs from the previous one.
type BroadcastSpeedChanged struct {
	Speed float64
	At    time.Time
}

func (BroadcastSpeedChanged) broadcastMarker() {}

// BroadcastControlsChanged reports a change of any user-facing control:
// target speed, multiplier, override or nudge.
type BroadcastControlsChanged struct {
	TargetSpeed   float64
	Multiplier    float64
	OverrideIndex int
	NudgeOffset   float64
	At            time.Time
}

func (BroadcastControlsChanged) broadcastMarker() {}

// ==============================
// Reducer input/output
// ==============================

// EngineConfig carries the daemon-level knobs the reducer needs.
type EngineConfig struct {
	// BridgeEnabled gates CmdPushSpeed emission. When the avatar bridge is
	// off, the daemon is a pure preview and never produces push commands.
	BridgeEnabled bool
}

// ReduceResult is the output of Reduce(): next state plus Commands to execute
// and Broadcasts to fan out to state-feed clients.
//
// Commands are coalesced by the reducer where appropriate: multiple desired
// speed updates in one tick result in a single CmdPushSpeed with the latest
// value.
type ReduceResult struct {
	State      *DaemonState
	Commands   []Command
	Broadcasts []StateBroadcast
}

// roundSpeed rounds a normalized speed to the broadcast precision.
func roundSpeed(v float64) float64 {
	return math.Round(v/speedBroadcastPrecision) * speedBroadcastPrecision
}

// Reduce is the pure reducer:
//
// Rules:
// - Must not perform I/O
// - Must not block
// - Must not mutate anything outside the returned state
//
// The daemon loop must:
// - execute Commands
// - translate responses into Events
// - feed those Events back into Reduce()
func Reduce(s *DaemonState, e Event, cfg EngineConfig) ReduceResult {
	if s == nil {
		s = &DaemonState{Pace: defaultPaceState()}
	}

	var cmds []Command
	var bcasts []StateBroadcast

	// recompute refreshes the derived final speed and emits a speed_changed
	// broadcast when the rounded value moves. Change detection uses the
	// rounded values so tiny smoothing steps stay quiet on the wire.
	recompute := func(at time.Time) {
		prev := s.Pace.FinalSpeed
		next := s.Pace.compose()
		s.Pace.FinalSpeed = next

		if roundSpeed(next) != roundSpeed(prev) {
			bcasts = append(bcasts, BroadcastSpeedChanged{Speed: roundSpeed(next), At: at})
		}
	}

	controlsChanged := func(at time.Time) {
		bcasts = append(bcasts, BroadcastControlsChanged{
			TargetSpeed:   s.Pace.TargetSpeed,
			Multiplier:    s.Pace.Multiplier,
			OverrideIndex: int(s.Pace.Override),
			NudgeOffset:   s.Pace.Offset(),
			At:            at,
		})
	}

	switch ev := e.(type) {
	case Tick:
		// Tick advances smoothing and flushes intents into Commands.
		s.Pace.CurrentSpeed = stepSmoothing(s.Pace.CurrentSpeed, s.Pace.TargetSpeed)
		recompute(ev.Now)

		// Push gating: compare against the last requested bridge speed so
		// the creeping smoother accumulates toward the threshold instead of
		// being compared tick-to-tick.
		if cfg.BridgeEnabled {
			final := s.Pace.FinalSpeed
			if !s.Avatar.RequestedKnown || math.Abs(final-s.Avatar.RequestedSpeed) >= speedPushThreshold {
				s.SetDesiredSpeed(final)
				s.Avatar.RequestedSpeed = final
				s.Avatar.RequestedKnown = true
			}
		}

		// Flush intents into commands (coalesced latest-wins).
		if s.Intent.DesiredSpeed != nil {
			v := *s.Intent.DesiredSpeed
			s.Intent.DesiredSpeed = nil
			cmds = append(cmds, CmdPushSpeed{Speed: v})
		}

	case TimedEvent:
		at := ev.At
		if at.IsZero() {
			at = time.Now()
		}

		switch p := ev.Event.(type) {
		case SetTargetSpeed:
			s.Pace.TargetSpeed = clamp(p.Speed, 0, maxSpeed)
			recompute(at)
			controlsChanged(at)

		case StepTargetSpeed:
			next := s.Pace.TargetSpeed + float64(p.Steps)*targetStep
			s.Pace.TargetSpeed = clamp(next, 0, maxSpeed)
			recompute(at)
			controlsChanged(at)

		case SetMultiplier:
			// Multiplier edits are rejected while an override pins the
			// output; accepting them silently would surprise the user when
			// the override releases.
			if s.Pace.Override.Active() {
				break
			}
			s.Pace.Multiplier = snapMultiplier(p.Value)
			recompute(at)
			controlsChanged(at)

		case CycleOverride:
			s.Pace.Override = s.Pace.Override.Next()
			recompute(at)
			controlsChanged(at)

		case SetOverride:
			s.Pace.Override = clampOverride(p.Index)
			recompute(at)
			controlsChanged(at)

		case NudgeHeld:
			dir := p.Direction
			if dir > 0 {
				dir = 1
			} else if dir < 0 {
				dir = -1
			}
			if dir == 0 {
				// Direction 0 is a release in disguise.
				s.Pace.NudgeDirection = 0
			} else {
				s.Pace.NudgeDirection = dir
			}
			recompute(at)
			controlsChanged(at)

		case NudgeRelease:
			if s.Pace.NudgeDirection != 0 {
				s.Pace.NudgeDirection = 0
				recompute(at)
				controlsChanged(at)
			}

		case ResetTargetSpeed:
			s.Pace.TargetSpeed = defaultTargetSpeed
			recompute(at)
			controlsChanged(at)

		case ResetModifiers:
			s.Pace.Multiplier = 1.0
			s.Pace.Override = overrideOff
			s.Pace.NudgeDirection = 0
			recompute(at)
			controlsChanged(at)

		case RequestStateSnapshot:
			cmds = append(cmds, CmdPublishStateSnapshot{
				Snapshot: s.Snapshot(),
				Reply:    p.Reply,
			})

		default:
			// no-op
		}

	case AvatarSpeedObserved:
		s.SetObservedSpeed(ev.Speed, ev.At)

	case AvatarCommandFailed:
		// Forget the last requested speed so the next tick re-pushes.
		// Connection recovery itself is the bridge client's problem.
		if _, ok := ev.Command.(CmdPushSpeed); ok {
			s.Avatar.RequestedKnown = false
		}

	default:
		// Unknown event type: no-op.
	}

	return ReduceResult{
		State:      s,
		Commands:   cmds,
		Broadcasts: bcasts,
	}
}

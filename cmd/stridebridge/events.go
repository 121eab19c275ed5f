package main

import (
	"encoding/json"
	"fmt"
	"time"
)

// ============================================================================
// Events - inputs to the reducer
// ============================================================================
// Events represent intent from various sources (IPC, input devices, the state
// WebSocket handler) plus observations fed back from the avatar bridge.
// The central daemon loop consumes them and applies policy via Reduce().
// ============================================================================

// Event is the marker interface for all reducer inputs.
type Event interface {
	eventMarker()
}

// Tick is emitted by the daemon loop at a fixed cadence.
// The smoothing step is per-tick, so Tick carries no wall-clock delta.
type Tick struct {
	Now time.Time
}

func (Tick) eventMarker() {}

// TimedEvent wraps a payload event with the time the daemon received it.
// Payload types stay clean; the daemon assigns timestamps centrally.
type TimedEvent struct {
	Event Event
	At    time.Time
}

func (TimedEvent) eventMarker() {}

// SetTargetSpeed requests an absolute treadmill target speed.
type SetTargetSpeed struct {
	Speed float64 `json:"speed"`
}

func (SetTargetSpeed) eventMarker() {}

// StepTargetSpeed adjusts the target speed by a number of fixed-size steps.
type StepTargetSpeed struct {
	Steps int `json:"steps"` // positive=faster, negative=slower
}

func (StepTargetSpeed) eventMarker() {}

// SetMultiplier requests a new speed multiplier.
// Ignored while an override preset is active.
type SetMultiplier struct {
	Value float64 `json:"value"`
}

func (SetMultiplier) eventMarker() {}

// CycleOverride advances the override ladder one step (off -> presets -> off).
type CycleOverride struct{}

func (CycleOverride) eventMarker() {}

// SetOverride selects an override preset by index, or -1 for off.
type SetOverride struct {
	Index int `json:"index"`
}

func (SetOverride) eventMarker() {}

// NudgeHeld indicates a nudge button is being held.
type NudgeHeld struct {
	Direction int `json:"direction"` // -1 for slower, +1 for faster
}

func (NudgeHeld) eventMarker() {}

// NudgeRelease indicates all nudge buttons have been released.
type NudgeRelease struct{}

func (NudgeRelease) eventMarker() {}

// ResetTargetSpeed restores the default target speed.
type ResetTargetSpeed struct{}

func (ResetTargetSpeed) eventMarker() {}

// ResetModifiers clears multiplier, override and any held nudge.
type ResetModifiers struct{}

func (ResetModifiers) eventMarker() {}

// RequestStateSnapshot asks the reducer for a coherent state copy.
// The snapshot is delivered through Reply by the effects layer; the reducer
// itself never touches the channel.
type RequestStateSnapshot struct {
	Reply chan StateSnapshot
}

func (RequestStateSnapshot) eventMarker() {}

// AvatarSpeedObserved is emitted after a successful bridge push or query.
type AvatarSpeedObserved struct {
	Speed float64
	At    time.Time
}

func (AvatarSpeedObserved) eventMarker() {}

// AvatarCommandFailed is emitted when executing a Command fails.
type AvatarCommandFailed struct {
	Command Command
	Err     error
	At      time.Time
}

func (AvatarCommandFailed) eventMarker() {}

// ============================================================================
// JSON Encoding/Decoding Support
// ============================================================================
// EventEnvelope wraps payload events for the IPC wire format. Since Go has no
// union types, a type discriminator selects the concrete payload.
//
// Only externally injectable events get wire names; Tick, snapshots and
// avatar observations are daemon-internal.
// ============================================================================

// EventEnvelope wraps an event with a type discriminator for JSON marshaling.
type EventEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// UnmarshalEvent deserializes a JSON event envelope into a concrete Event.
func UnmarshalEvent(data []byte) (Event, error) {
	var env EventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	switch env.Type {
	case "set_target_speed":
		var e SetTargetSpeed
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal SetTargetSpeed: %w", err)
		}
		return e, nil

	case "step_target_speed":
		var e StepTargetSpeed
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal StepTargetSpeed: %w", err)
		}
		return e, nil

	case "set_multiplier":
		var e SetMultiplier
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal SetMultiplier: %w", err)
		}
		return e, nil

	case "cycle_override":
		return CycleOverride{}, nil

	case "set_override":
		var e SetOverride
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal SetOverride: %w", err)
		}
		return e, nil

	case "nudge_held":
		var e NudgeHeld
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal NudgeHeld: %w", err)
		}
		return e, nil

	case "nudge_release":
		return NudgeRelease{}, nil

	case "reset_target_speed":
		return ResetTargetSpeed{}, nil

	case "reset_modifiers":
		return ResetModifiers{}, nil

	default:
		return nil, fmt.Errorf("unknown event type: %q", env.Type)
	}
}

// MarshalEvent serializes an Event into a JSON envelope with type discriminator.
func MarshalEvent(e Event) ([]byte, error) {
	var env EventEnvelope

	switch e := e.(type) {
	case SetTargetSpeed:
		env.Type = "set_target_speed"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal SetTargetSpeed: %w", err)
		}
		env.Data = data

	case StepTargetSpeed:
		env.Type = "step_target_speed"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal StepTargetSpeed: %w", err)
		}
		env.Data = data

	case SetMultiplier:
		env.Type = "set_multiplier"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal SetMultiplier: %w", err)
		}
		env.Data = data

	case CycleOverride:
		env.Type = "cycle_override"

	case SetOverride:
		env.Type = "set_override"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal SetOverride: %w", err)
		}
		env.Data = data

	case NudgeHeld:
		env.Type = "nudge_held"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal NudgeHeld: %w", err)
		}
		env.Data = data

	case NudgeRelease:
		env.Type = "nudge_release"

	case ResetTargetSpeed:
		env.Type = "reset_target_speed"

	case ResetModifiers:
		env.Type = "reset_modifiers"

	default:
		return nil, fmt.Errorf("unsupported event type: %T", e)
	}

	return json.Marshal(env)
}

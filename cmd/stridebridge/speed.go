package main

import "math"

// Override is the discrete override ladder: off, or one of four presets.
// The zero value is not meaningful; use overrideOff.
type Override int

const overrideOff Override = -1

// Active reports whether an override preset is selected.
func (o Override) Active() bool { return o >= 0 }

// Preset returns the fractional output value for an active override.
// Calling Preset on an inactive override is a caller bug; it returns 0.
func (o Override) Preset() float64 {
	if o < 0 || int(o) >= len(speedPresets) {
		return 0
	}
	return speedPresets[o]
}

// Next advances the ladder by one step: off -> 0 -> 1 -> 2 -> 3 -> off.
func (o Override) Next() Override {
	if o >= Override(len(speedPresets)-1) {
		return overrideOff
	}
	return o + 1
}

// clampOverride coerces an externally supplied index into the valid ladder.
// Anything below off is off; anything past the last preset sticks at the
// last preset rather than wrapping, so a malformed index can't skip states.
func clampOverride(idx int) Override {
	if idx < int(overrideOff) {
		return overrideOff
	}
	if idx >= len(speedPresets) {
		return Override(len(speedPresets) - 1)
	}
	return Override(idx)
}

// snapMultiplier coerces a proposed multiplier into [0, multiplierMax] and
// snaps values near 1.0 to exactly 1.0, so "neutral" is a crisp state.
//
// The snap window is inclusive at both edges. The comparison carries a tiny
// tolerance because the edge inputs themselves are not exactly representable:
// |1.08 - 1.0| rounds a hair above 0.08 in float64 and would otherwise fall
// outside the window, while 0.91 and 1.09 stay far beyond the tolerance.
func snapMultiplier(v float64) float64 {
	v = clamp(v, 0, multiplierMax)
	if math.Abs(v-1.0) <= multiplierSnap+1e-9 {
		return 1.0
	}
	return v
}

// composeInputs are the five inputs of the speed composition.
type composeInputs struct {
	CurrentSpeed float64 // smoothed speed, [0, maxSpeed]
	TargetSpeed  float64 // user-set speed, [0, maxSpeed]
	Multiplier   float64 // [0, multiplierMax], snapped to 1.0 near unity
	Override     Override
	NudgeOffset  float64 // -nudgeOffset, 0, or +nudgeOffset
}

// composeSpeed maps the current engine state onto the normalized [0, 1]
// movement speed consumed by the avatar controller.
//
// Evaluation order matters: the override bypasses the multiplier entirely,
// and the floor policy attenuates negative nudges before the final clamp.
func composeSpeed(in composeInputs) float64 {
	base := clamp(in.CurrentSpeed/maxSpeed, 0, 1)

	var post float64
	if in.Override.Active() {
		if in.TargetSpeed >= 0 {
			// Forward motion: the preset pins the output.
			post = in.Override.Preset()
		} else {
			// Reverse motion must not exceed the treadmill's actual
			// capability, so take the lesser of actual and preset. The
			// forward-only input domain never reaches this branch; it is
			// kept for parity with the backend's documented contract.
			post = math.Min(base, in.Override.Preset())
		}
	} else {
		post = base * in.Multiplier
	}

	offset := in.NudgeOffset
	if offset < 0 {
		if post >= minFinalSpeed {
			// Attenuate the slow-down nudge so the sum never drops below
			// the floor: the avatar must stay "moving", not snap to idle.
			offset = math.Max(offset, minFinalSpeed-post)
		} else {
			// Already below the floor: the nudge is inert rather than a
			// way to force an almost-stopped avatar to zero.
			offset = 0
		}
	}

	return clamp(post+offset, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

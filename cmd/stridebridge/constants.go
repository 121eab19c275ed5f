package main

// Linux input event types and codes (from <linux/input.h>)
const (
	EV_KEY = 0x01

	KEY_TAB   = 15
	KEY_R     = 19
	KEY_UP    = 103
	KEY_DOWN  = 108
	KEY_KPMIN = 74
	KEY_KPPLS = 78
)

// Input event value constants
const (
	evValueRelease = 0
	evValuePress   = 1
	evValueRepeat  = 2
)

// Speed engine constants. These mirror the avatar-controller backend's
// mapping rules and are fixed at build time, not configurable.
const (
	maxSpeed           = 10.0 // upper bound for target/current speed (km/h-equivalent)
	defaultTargetSpeed = 5.0  // target speed after reset

	approachRate = 0.01 // fraction of remaining delta applied per tick
	snapEpsilon  = 0.05 // below this delta, current snaps to target exactly

	minFinalSpeed  = 0.1  // floor a negative nudge may not push an above-floor value under
	nudgeOffset    = 0.25 // magnitude of the momentary hold-to-nudge offset
	multiplierSnap = 0.08 // multiplier values within this of 1.0 are stored as exactly 1.0
	multiplierMax  = 2.0

	targetStep = 0.5 // target speed change per step key press
)

// Daemon defaults
const (
	defaultUpdateHz      = 60  // tick loop frequency (Hz), ~display refresh
	defaultReadTimeoutMS = 500 // avatar bridge websocket read timeout (ms)

	// Minimum final-speed difference before pushing an update to the
	// avatar bridge. Keeps the wire quiet while the smoother crawls.
	speedPushThreshold = 0.002

	// Broadcast precision: speed_changed is only emitted when the final
	// speed changes at this granularity.
	speedBroadcastPrecision = 0.001
)

// speedPresets are the override ladder values, ascending. overrideOff (-1)
// cycles to index 0; index 3 cycles back to overrideOff.
var speedPresets = [4]float64{0.25, 0.50, 0.75, 1.00}

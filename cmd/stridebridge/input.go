package main

// inputEvent represents a Linux input event structure
// struct input_event { struct timeval time; __u16 type; __u16 code; __s32 value; };
type inputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// translateKeyEvent maps a raw input event onto a daemon Event.
//
// Key layout:
//   - Up/Down arrows: hold-to-nudge (press and autorepeat keep the nudge held,
//     release ends it)
//   - Tab: cycle the override ladder
//   - R: reset modifiers
//   - Keypad +/-: step the target speed
func translateKeyEvent(ev inputEvent) (Event, bool) {
	if ev.Type != EV_KEY {
		return nil, false
	}

	switch ev.Code {
	case KEY_UP:
		if ev.Value == evValuePress || ev.Value == evValueRepeat {
			return NudgeHeld{Direction: 1}, true
		}
		if ev.Value == evValueRelease {
			return NudgeRelease{}, true
		}

	case KEY_DOWN:
		if ev.Value == evValuePress || ev.Value == evValueRepeat {
			return NudgeHeld{Direction: -1}, true
		}
		if ev.Value == evValueRelease {
			return NudgeRelease{}, true
		}

	case KEY_TAB:
		if ev.Value == evValuePress {
			return CycleOverride{}, true
		}

	case KEY_R:
		if ev.Value == evValuePress {
			return ResetModifiers{}, true
		}

	case KEY_KPPLS:
		if ev.Value == evValuePress || ev.Value == evValueRepeat {
			return StepTargetSpeed{Steps: 1}, true
		}

	case KEY_KPMIN:
		if ev.Value == evValuePress || ev.Value == evValueRepeat {
			return StepTargetSpeed{Steps: -1}, true
		}
	}

	return nil, false
}

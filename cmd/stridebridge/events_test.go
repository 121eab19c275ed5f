package main

import (
	"testing"
)

func TestEventEnvelope_RoundTrip(t *testing.T) {
	data, err := MarshalEvent(NudgeHeld{Direction: -1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	ev, err := UnmarshalEvent(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	held, ok := ev.(NudgeHeld)
	if !ok {
		t.Fatalf("expected NudgeHeld, got %T", ev)
	}
	if held.Direction != -1 {
		t.Fatalf("expected direction -1, got %d", held.Direction)
	}
}

func TestEventEnvelope_PayloadlessEvents(t *testing.T) {
	data, err := MarshalEvent(CycleOverride{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	ev, err := UnmarshalEvent(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := ev.(CycleOverride); !ok {
		t.Fatalf("expected CycleOverride, got %T", ev)
	}
}

func TestUnmarshalEvent_UnknownType(t *testing.T) {
	_, err := UnmarshalEvent([]byte(`{"type":"warp_drive"}`))
	if err == nil {
		t.Fatalf("expected error for unknown event type")
	}
}

func TestUnmarshalEvent_MalformedJSON(t *testing.T) {
	_, err := UnmarshalEvent([]byte(`{not json`))
	if err == nil {
		t.Fatalf("expected error for malformed JSON")
	}
}

func TestMarshalEvent_RejectsInternalEvents(t *testing.T) {
	// Daemon-internal events have no wire representation.
	if _, err := MarshalEvent(AvatarSpeedObserved{}); err == nil {
		t.Fatalf("expected error for internal event type")
	}
}

func TestTranslateKeyEvent(t *testing.T) {
	cases := []struct {
		name string
		ev   inputEvent
		want Event
		ok   bool
	}{
		{"up_press", inputEvent{Type: EV_KEY, Code: KEY_UP, Value: evValuePress}, NudgeHeld{Direction: 1}, true},
		{"up_repeat", inputEvent{Type: EV_KEY, Code: KEY_UP, Value: evValueRepeat}, NudgeHeld{Direction: 1}, true},
		{"up_release", inputEvent{Type: EV_KEY, Code: KEY_UP, Value: evValueRelease}, NudgeRelease{}, true},
		{"down_press", inputEvent{Type: EV_KEY, Code: KEY_DOWN, Value: evValuePress}, NudgeHeld{Direction: -1}, true},
		{"down_release", inputEvent{Type: EV_KEY, Code: KEY_DOWN, Value: evValueRelease}, NudgeRelease{}, true},
		{"tab_press", inputEvent{Type: EV_KEY, Code: KEY_TAB, Value: evValuePress}, CycleOverride{}, true},
		{"tab_release_ignored", inputEvent{Type: EV_KEY, Code: KEY_TAB, Value: evValueRelease}, nil, false},
		{"r_press", inputEvent{Type: EV_KEY, Code: KEY_R, Value: evValuePress}, ResetModifiers{}, true},
		{"kpplus_press", inputEvent{Type: EV_KEY, Code: KEY_KPPLS, Value: evValuePress}, StepTargetSpeed{Steps: 1}, true},
		{"kpminus_press", inputEvent{Type: EV_KEY, Code: KEY_KPMIN, Value: evValuePress}, StepTargetSpeed{Steps: -1}, true},
		{"non_key_ignored", inputEvent{Type: 0x02, Code: KEY_UP, Value: evValuePress}, nil, false},
		{"unmapped_key_ignored", inputEvent{Type: EV_KEY, Code: 999, Value: evValuePress}, nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := translateKeyEvent(tc.ev)
			if ok != tc.ok {
				t.Fatalf("expected ok=%v, got %v", tc.ok, ok)
			}
			if ok && got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

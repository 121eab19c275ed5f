package main

import (
	"math"
	"testing"
)

func TestStepSmoothing_MovesFractionOfDelta(t *testing.T) {
	got := stepSmoothing(5.0, 6.0)
	if !almostEqual(got, 5.01) {
		t.Fatalf("expected 5.01, got %v", got)
	}

	got = stepSmoothing(6.0, 5.0)
	if !almostEqual(got, 5.99) {
		t.Fatalf("expected 5.99, got %v", got)
	}
}

func TestStepSmoothing_SnapsInsideWindow(t *testing.T) {
	// Power-of-two deltas keep the window comparison away from decimal
	// rounding: 0.03125 is strictly inside snapEpsilon, 0.0625 strictly
	// outside, and both subtract exactly in float64.
	if got := stepSmoothing(6.0-0.03125, 6.0); got != 6.0 {
		t.Fatalf("expected exact snap to 6.0, got %v", got)
	}
	if got := stepSmoothing(6.0+0.03125, 6.0); got != 6.0 {
		t.Fatalf("expected exact snap to 6.0, got %v", got)
	}

	// A delta past the window keeps easing instead of snapping.
	if got := stepSmoothing(6.0-0.0625, 6.0); got == 6.0 {
		t.Fatalf("expected no snap outside the window, got exact target")
	}
}

func TestStepSmoothing_ConvergesWithoutOvershoot(t *testing.T) {
	current := 0.0
	target := 10.0

	for i := 0; i < 100000; i++ {
		next := stepSmoothing(current, target)
		if next < current || next > target {
			t.Fatalf("iteration %d: overshoot or reversal (current=%v next=%v)", i, current, next)
		}
		current = next
		if current == target {
			break
		}
	}

	if current != target {
		t.Fatalf("did not converge to target: %v", current)
	}
}

func TestStepSmoothing_ConvergesDownward(t *testing.T) {
	current := 10.0
	target := 2.5

	for i := 0; i < 100000; i++ {
		next := stepSmoothing(current, target)
		if next > current || next < target {
			t.Fatalf("iteration %d: overshoot or reversal (current=%v next=%v)", i, current, next)
		}
		current = next
		if current == target {
			break
		}
	}

	if current != target {
		t.Fatalf("did not converge to target: %v", current)
	}
}

func TestStepSmoothing_RetargetMidFlight(t *testing.T) {
	current := 0.0

	// Head toward 10 for a while, then retarget to 1: the smoother must
	// immediately reverse direction without any discontinuity.
	for i := 0; i < 50; i++ {
		current = stepSmoothing(current, 10.0)
	}
	mid := current
	if mid <= 0 || mid >= 10 {
		t.Fatalf("unexpected mid-flight value %v", mid)
	}

	next := stepSmoothing(current, 1.0)
	if math.Abs(next-current) > math.Abs(1.0-current) {
		t.Fatalf("retarget step overshot: current=%v next=%v", current, next)
	}
	if next >= current {
		t.Fatalf("expected downward movement after retarget, got %v -> %v", current, next)
	}
}

func TestFrameTicker_StopIsIdempotent(t *testing.T) {
	ticker := newFrameTicker(60)
	ticker.Stop()
	// Second stop must be a no-op, not a panic.
	ticker.Stop()
}

package main

import (
	"context"
	"testing"
)

func TestRunDaemon_QueriesAvatarSpeedOnStart(t *testing.T) {
	client := newMockAvatarClient(0.44)
	state := &DaemonState{Pace: defaultPaceState()}
	events := make(chan Event)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		// 1 Hz keeps ticks out of the way; the startup query happens
		// before the loop regardless.
		runDaemon(ctx, events, client, EngineConfig{BridgeEnabled: true}, state, 1, nil, testLogger())
	}()

	cancel()
	<-done

	if client.getSpeedCalls != 1 {
		t.Fatalf("expected one startup GetSpeed call, got %d", client.getSpeedCalls)
	}
	if !state.Avatar.SpeedKnown {
		t.Fatalf("expected avatar speed to be cached after startup query")
	}
	if !almostEqual(state.Avatar.Speed, 0.44) {
		t.Fatalf("expected cached avatar speed 0.44, got %v", state.Avatar.Speed)
	}
}

func TestRunDaemon_NoClientNoStartupQuery(t *testing.T) {
	state := &DaemonState{Pace: defaultPaceState()}
	events := make(chan Event)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		runDaemon(ctx, events, nil, EngineConfig{}, state, 1, nil, testLogger())
	}()

	cancel()
	<-done

	if state.Avatar.SpeedKnown {
		t.Fatalf("preview-only daemon should not cache an avatar speed")
	}
}

package main

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"
)

// mockAvatarClient is a test double for AvatarClient
type mockAvatarClient struct {
	speed         float64
	setSpeedCalls []float64
	getSpeedCalls int
	failNext      error
}

func newMockAvatarClient(initialSpeed float64) *mockAvatarClient {
	return &mockAvatarClient{
		speed:         initialSpeed,
		setSpeedCalls: make([]float64, 0),
	}
}

func (m *mockAvatarClient) SetSpeed(speed float64) (float64, error) {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return 0, err
	}
	m.setSpeedCalls = append(m.setSpeedCalls, speed)
	m.speed = speed
	return speed, nil
}

func (m *mockAvatarClient) GetSpeed() (float64, error) {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return 0, err
	}
	m.getSpeedCalls++
	return m.speed, nil
}

func (m *mockAvatarClient) Close() error {
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRunEffect_PushSpeedEmitsObservation(t *testing.T) {
	client := newMockAvatarClient(0.0)
	logger := testLogger()

	var got []Event
	runEffect(client, CmdPushSpeed{Speed: 0.62}, logger, func(ev Event) {
		got = append(got, ev)
	})

	if len(client.setSpeedCalls) != 1 || !almostEqual(client.setSpeedCalls[0], 0.62) {
		t.Fatalf("expected one SetSpeed(0.62) call, got %v", client.setSpeedCalls)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 observation event, got %d", len(got))
	}
	obs, ok := got[0].(AvatarSpeedObserved)
	if !ok {
		t.Fatalf("expected AvatarSpeedObserved, got %T", got[0])
	}
	if !almostEqual(obs.Speed, 0.62) {
		t.Fatalf("expected observed speed 0.62, got %v", obs.Speed)
	}
}

func TestRunEffect_PushSpeedFailureEmitsCommandFailed(t *testing.T) {
	client := newMockAvatarClient(0.0)
	client.failNext = errors.New("connection reset")
	logger := testLogger()

	var got []Event
	runEffect(client, CmdPushSpeed{Speed: 0.5}, logger, func(ev Event) {
		got = append(got, ev)
	})

	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	failed, ok := got[0].(AvatarCommandFailed)
	if !ok {
		t.Fatalf("expected AvatarCommandFailed, got %T", got[0])
	}
	if failed.Err == nil {
		t.Fatalf("expected non-nil error in failure event")
	}
}

func TestRunEffect_QuerySpeed(t *testing.T) {
	client := newMockAvatarClient(0.33)
	logger := testLogger()

	var got []Event
	runEffect(client, CmdQuerySpeed{}, logger, func(ev Event) {
		got = append(got, ev)
	})

	if client.getSpeedCalls != 1 {
		t.Fatalf("expected 1 GetSpeed call, got %d", client.getSpeedCalls)
	}
	obs, ok := got[0].(AvatarSpeedObserved)
	if !ok {
		t.Fatalf("expected AvatarSpeedObserved, got %T", got[0])
	}
	if !almostEqual(obs.Speed, 0.33) {
		t.Fatalf("expected observed speed 0.33, got %v", obs.Speed)
	}
}

func TestRunEffect_NilClientFailsBridgeCommands(t *testing.T) {
	logger := testLogger()

	var got []Event
	runEffect(nil, CmdPushSpeed{Speed: 0.5}, logger, func(ev Event) {
		got = append(got, ev)
	})

	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	failed, ok := got[0].(AvatarCommandFailed)
	if !ok {
		t.Fatalf("expected AvatarCommandFailed, got %T", got[0])
	}
	if _, ok := failed.Err.(errNoClient); !ok {
		t.Fatalf("expected errNoClient, got %v", failed.Err)
	}
}

func TestRunEffect_SnapshotDeliveredWithoutClient(t *testing.T) {
	// Preview-only daemons have no bridge client; snapshot delivery must
	// still work.
	logger := testLogger()
	reply := make(chan StateSnapshot, 1)

	snap := StateSnapshot{FinalSpeed: 0.5, OverrideIndex: -1}
	runEffect(nil, CmdPublishStateSnapshot{Snapshot: snap, Reply: reply}, logger, func(Event) {
		t.Fatalf("snapshot delivery should not emit events")
	})

	select {
	case got := <-reply:
		if !almostEqual(got.FinalSpeed, 0.5) {
			t.Fatalf("expected snapshot final speed 0.5, got %v", got.FinalSpeed)
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for snapshot delivery")
	}
}

func TestRunEffect_SnapshotWithFullReplyChannelIsDropped(t *testing.T) {
	logger := testLogger()
	reply := make(chan StateSnapshot) // unbuffered, nobody reading

	// Must not block or panic; the snapshot is dropped.
	runEffect(nil, CmdPublishStateSnapshot{Snapshot: StateSnapshot{}, Reply: reply}, logger, func(Event) {})
}

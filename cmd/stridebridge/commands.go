package main

import "fmt"

// ==============================
// Commands (side effects)
// ==============================

// Command represents an external side effect to be executed by the daemon loop.
// In this codebase, those are primarily avatar bridge websocket commands.
type Command interface {
	commandMarker()
	String() string
}

// CmdPushSpeed requests pushing a normalized speed to the avatar controller.
type CmdPushSpeed struct {
	Speed float64
}

func (CmdPushSpeed) commandMarker() {}
func (c CmdPushSpeed) String() string {
	return fmt.Sprintf("CmdPushSpeed(speed=%.4f)", c.Speed)
}

// CmdQuerySpeed requests the current speed from the avatar controller.
type CmdQuerySpeed struct{}

func (CmdQuerySpeed) commandMarker() {}
func (CmdQuerySpeed) String() string { return "CmdQuerySpeed()" }

// CmdPublishStateSnapshot delivers a reducer-built snapshot to a requester.
// The channel send lives in the effects layer so the reducer stays pure.
type CmdPublishStateSnapshot struct {
	Snapshot StateSnapshot
	Reply    chan StateSnapshot
}

func (CmdPublishStateSnapshot) commandMarker() {}
func (CmdPublishStateSnapshot) String() string { return "CmdPublishStateSnapshot()" }

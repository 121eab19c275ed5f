package main

import (
	"log/slog"
	"time"
)

// runEffect executes a single reducer-emitted Command (side effect) against
// external systems (currently the avatar bridge) and emits an observation
// Event via onEvent.
//
// Design rules:
// - This function is allowed to perform I/O.
// - It must never call Reduce() directly; it only emits Events to be reduced
//   by the daemon loop.
// - The daemon loop is responsible for sequencing:
//   Reduce -> Commands -> runEffect -> Events -> Reduce.
func runEffect(
	client AvatarClientInterface,
	cmd Command,
	logger *slog.Logger,
	onEvent func(Event),
) {
	if onEvent == nil {
		// No place to report observations/errors; nothing sensible to do.
		return
	}

	now := time.Now()

	// Snapshot delivery needs no bridge; handle it before the client guard
	// so preview-only daemons (bridge disabled) still serve state_init.
	if c, ok := cmd.(CmdPublishStateSnapshot); ok {
		if c.Reply == nil {
			logger.Warn("state snapshot requested with nil reply channel")
			return
		}

		// Never block the effects worker indefinitely.
		select {
		case c.Reply <- c.Snapshot:
			// delivered
		default:
			logger.Warn("state snapshot reply channel not ready; dropping snapshot")
		}
		return
	}

	if client == nil {
		onEvent(AvatarCommandFailed{
			Command: cmd,
			Err:     errNoClient{},
			At:      now,
		})
		return
	}

	switch c := cmd.(type) {
	case CmdPushSpeed:
		speed, err := client.SetSpeed(c.Speed)
		if err != nil {
			logger.Error("avatar SetSpeed failed", "error", err, "speed", c.Speed)
			onEvent(AvatarCommandFailed{Command: cmd, Err: err, At: now})
			return
		}
		onEvent(AvatarSpeedObserved{Speed: speed, At: now})

	case CmdQuerySpeed:
		speed, err := client.GetSpeed()
		if err != nil {
			logger.Error("avatar GetSpeed failed", "error", err)
			onEvent(AvatarCommandFailed{Command: cmd, Err: err, At: now})
			return
		}
		onEvent(AvatarSpeedObserved{Speed: speed, At: now})

	default:
		// Unknown command: record failure so the reducer can react.
		logger.Warn("unknown command type", "command", cmd.String())
		onEvent(AvatarCommandFailed{
			Command: cmd,
			Err:     errUnknownCommand{cmd: cmd},
			At:      now,
		})
	}
}

// errNoClient indicates the daemon was asked to execute a command without an
// avatar bridge client.
type errNoClient struct{}

func (errNoClient) Error() string { return "no avatar bridge client" }

type errUnknownCommand struct {
	cmd Command
}

func (e errUnknownCommand) Error() string { return "unknown command: " + e.cmd.String() }

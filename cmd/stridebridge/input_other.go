//go:build !linux

package main

import (
	"context"
	"errors"
	"log/slog"
)

// Physical input devices are evdev-based and only supported on Linux.
// The IPC and WebSocket surfaces work everywhere.
func runInputReader(ctx context.Context, devices []string, events chan<- Event, logger *slog.Logger) error {
	return errors.New("input devices are only supported on linux")
}

package main

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
)

// ============================================================================
// stridectl - Command-line IPC Client
// ============================================================================
// This tool sends events to the stridebridge daemon via IPC.
//
// Usage:
//   stridectl set-target 6.5
//   stridectl faster
//   stridectl multiplier 1.5
//   stridectl cycle-override
//   stridectl nudge-up
//   stridectl release
//
// Options:
//   -socket PATH    Unix domain socket path (default: /tmp/stridebridge.sock)
// ============================================================================

// Event types (duplicated from the daemon package for a standalone binary)
type Event interface{}

type SetTargetSpeed struct {
	Speed float64 `json:"speed"`
}

type StepTargetSpeed struct {
	Steps int `json:"steps"`
}

type SetMultiplier struct {
	Value float64 `json:"value"`
}

type CycleOverride struct{}

type SetOverride struct {
	Index int `json:"index"`
}

type NudgeHeld struct {
	Direction int `json:"direction"`
}

type NudgeRelease struct{}

type ResetTargetSpeed struct{}

type ResetModifiers struct{}

// EventEnvelope wraps events for JSON
type EventEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// IPCResponse represents the daemon's response
type IPCResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func main() {
	socketPath := "/tmp/stridebridge.sock"

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	// Check for -socket flag
	if args[0] == "-socket" || args[0] == "--socket" {
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "error: -socket requires an argument\n")
			os.Exit(1)
		}
		socketPath = args[1]
		args = args[2:]
	}

	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	// Parse command
	var event Event

	switch args[0] {
	case "set-target", "target":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "error: set-target requires a speed value\n")
			os.Exit(1)
		}
		var speed float64
		if _, err := fmt.Sscanf(args[1], "%f", &speed); err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid speed value: %v\n", err)
			os.Exit(1)
		}
		event = SetTargetSpeed{Speed: speed}

	case "faster":
		event = StepTargetSpeed{Steps: 1}

	case "slower":
		event = StepTargetSpeed{Steps: -1}

	case "step":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "error: step requires a step count\n")
			os.Exit(1)
		}
		var steps int
		if _, err := fmt.Sscanf(args[1], "%d", &steps); err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid step count: %v\n", err)
			os.Exit(1)
		}
		event = StepTargetSpeed{Steps: steps}

	case "multiplier", "mult":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "error: multiplier requires a value\n")
			os.Exit(1)
		}
		var value float64
		if _, err := fmt.Sscanf(args[1], "%f", &value); err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid multiplier value: %v\n", err)
			os.Exit(1)
		}
		event = SetMultiplier{Value: value}

	case "cycle-override", "cycle":
		event = CycleOverride{}

	case "override":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "error: override requires an index (-1 for off)\n")
			os.Exit(1)
		}
		var index int
		if _, err := fmt.Sscanf(args[1], "%d", &index); err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid override index: %v\n", err)
			os.Exit(1)
		}
		event = SetOverride{Index: index}

	case "nudge-up", "up":
		if err := runNudgeHold(socketPath, 1); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("ok")
		return

	case "nudge-down", "down":
		if err := runNudgeHold(socketPath, -1); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("ok")
		return

	case "release":
		event = NudgeRelease{}

	case "reset-target":
		event = ResetTargetSpeed{}

	case "reset-mods", "reset-modifiers":
		event = ResetModifiers{}

	case "help", "-h", "--help":
		printUsage()
		os.Exit(0)

	default:
		fmt.Fprintf(os.Stderr, "error: unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}

	if err := sendEvent(socketPath, event); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("ok")
}

// runNudgeHold keeps the IPC connection open for the duration of the hold:
// the nudge starts immediately and ends on Ctrl+C. The daemon also releases
// a held nudge when the connection drops, so even an abrupt exit cannot
// leave the offset stuck.
func runNudgeHold(socketPath string, direction int) error {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", socketPath, err)
	}
	defer conn.Close()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)

	release := make(chan struct{})
	go func() {
		<-sigc
		close(release)
	}()

	fmt.Println("holding nudge (press Ctrl+C to release)")
	return holdNudge(conn, direction, release)
}

// holdNudge sends nudge_held, waits for release to fire, then sends
// nudge_release over the same connection.
func holdNudge(conn net.Conn, direction int, release <-chan struct{}) error {
	decoder := json.NewDecoder(conn)

	send := func(event Event) error {
		data, err := marshalEvent(event)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		if _, err := fmt.Fprintf(conn, "%s\n", data); err != nil {
			return fmt.Errorf("send event: %w", err)
		}
		var response IPCResponse
		if err := decoder.Decode(&response); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		if response.Status == "error" {
			return fmt.Errorf("daemon error: %s", response.Error)
		}
		return nil
	}

	if err := send(NudgeHeld{Direction: direction}); err != nil {
		return err
	}

	<-release

	return send(NudgeRelease{})
}

func sendEvent(socketPath string, event Event) error {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", socketPath, err)
	}
	defer conn.Close()

	data, err := marshalEvent(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	// Send event (line-delimited JSON)
	if _, err := fmt.Fprintf(conn, "%s\n", data); err != nil {
		return fmt.Errorf("send event: %w", err)
	}

	var response IPCResponse
	decoder := json.NewDecoder(conn)
	if err := decoder.Decode(&response); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if response.Status == "error" {
		return fmt.Errorf("daemon error: %s", response.Error)
	}

	return nil
}

func marshalEvent(event Event) ([]byte, error) {
	var env EventEnvelope

	switch e := event.(type) {
	case SetTargetSpeed:
		env.Type = "set_target_speed"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal SetTargetSpeed: %w", err)
		}
		env.Data = data

	case StepTargetSpeed:
		env.Type = "step_target_speed"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal StepTargetSpeed: %w", err)
		}
		env.Data = data

	case SetMultiplier:
		env.Type = "set_multiplier"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal SetMultiplier: %w", err)
		}
		env.Data = data

	case CycleOverride:
		env.Type = "cycle_override"

	case SetOverride:
		env.Type = "set_override"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal SetOverride: %w", err)
		}
		env.Data = data

	case NudgeHeld:
		env.Type = "nudge_held"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal NudgeHeld: %w", err)
		}
		env.Data = data

	case NudgeRelease:
		env.Type = "nudge_release"

	case ResetTargetSpeed:
		env.Type = "reset_target_speed"

	case ResetModifiers:
		env.Type = "reset_modifiers"

	default:
		return nil, fmt.Errorf("unknown event type: %T", event)
	}

	return json.Marshal(env)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `stridectl - Control the stridebridge daemon via IPC

Usage:
  stridectl [options] <command> [args]

Options:
  -socket PATH    Unix domain socket path (default: /tmp/stridebridge.sock)

Commands:
  set-target, target <speed>   Set absolute target speed (e.g. 6.5)
  faster                       Step target speed up
  slower                       Step target speed down
  step <n>                     Step target speed by n steps (negative = slower)
  multiplier, mult <value>     Set speed multiplier (e.g. 1.5)
  cycle-override, cycle        Advance the override ladder
  override <idx>               Select override preset by index (-1 = off)
  nudge-up, up                 Hold the speed-up nudge until Ctrl+C
  nudge-down, down             Hold the slow-down nudge until Ctrl+C
  release                      Release a nudge left held by another client
  reset-target                 Restore the default target speed
  reset-mods                   Clear multiplier, override and nudge
  help, -h, --help             Show this help message

Examples:
  stridectl set-target 6.5
  stridectl multiplier 0.8
  stridectl -socket /var/run/stridebridge.sock cycle-override
`)
}

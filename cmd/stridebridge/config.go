package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration for the stridebridge daemon.
//
// This is intentionally user-facing and stable-ish. Keep defaults and
// validation centralized so the rest of the code can assume a well-formed
// config.
//
// Design goals:
// - Make the config file the primary configuration surface.
// - Keep flags for small overrides and for environments where a file is awkward.
type Config struct {
	// Physical input devices (optional; the IPC surface always works)
	Input InputConfig `yaml:"input"`

	// Engine loop configuration
	Engine EngineFileConfig `yaml:"engine"`

	// Avatar bridge configuration
	Bridge BridgeConfig `yaml:"bridge"`

	// IPC configuration
	IPC IPCConfig `yaml:"ipc"`

	// State feed HTTP/WebSocket server
	State StateServerConfig `yaml:"state"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

type InputConfig struct {
	Enabled bool     `yaml:"enabled"`
	Devices []string `yaml:"devices,omitempty"` // List of input devices to monitor
}

type EngineFileConfig struct {
	UpdateHz int `yaml:"update_hz"`
}

type BridgeConfig struct {
	Enabled   bool   `yaml:"enabled"`
	WsURL     string `yaml:"ws_url"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

type IPCConfig struct {
	SocketPath string `yaml:"socket_path"`
}

type StateServerConfig struct {
	Addr string `yaml:"addr"` // host:port for the state feed HTTP server
	Path string `yaml:"path"` // WebSocket endpoint path
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a fully-populated Config with defaults.
// Keep this aligned with constants.go defaults and current CLI defaults.
func DefaultConfig() Config {
	return Config{
		Input: InputConfig{
			Enabled: false,
			Devices: nil,
		},
		Engine: EngineFileConfig{
			UpdateHz: defaultUpdateHz,
		},
		Bridge: BridgeConfig{
			Enabled:   false,
			WsURL:     "ws://127.0.0.1:7733",
			TimeoutMS: defaultReadTimeoutMS,
		},
		IPC: IPCConfig{
			SocketPath: "/tmp/stridebridge.sock",
		},
		State: StateServerConfig{
			Addr: "127.0.0.1:7780",
			Path: "/ws/state",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfigFile reads and parses a YAML config file.
//
// Notes:
//   - The file must be valid YAML.
//   - Unknown fields are rejected (helps catch typos) via KnownFields(true).
func LoadConfigFile(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path is empty")
	}
	b, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}

	// Ensure there's no trailing garbage (only whitespace/comments are allowed
	// after the document).
	if err := dec.Decode(&struct{}{}); err == nil {
		return Config{}, fmt.Errorf("decode config yaml: unexpected trailing document")
	}

	return cfg, nil
}

// FlagOverrides applies overrides from flags on top of a loaded config.
//
// Flags should pass pointers; each override is only applied if the pointer is
// non-nil (even if it points at a zero value). This keeps the config file the
// primary source while still allowing ad-hoc debugging/systemd overrides.
type FlagOverrides struct {
	InputDevice *string

	UpdateHz *int

	BridgeEnabled   *bool
	BridgeWsURL     *string
	BridgeTimeoutMS *int

	IPCSocketPath *string

	StateAddr *string
	StatePath *string

	LogLevel *string
}

// Apply merges the overrides into cfg. If an override pointer is nil, it is ignored.
func (o FlagOverrides) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if o.InputDevice != nil {
		cfg.Input.Enabled = true
		cfg.Input.Devices = []string{*o.InputDevice}
	}

	if o.UpdateHz != nil {
		cfg.Engine.UpdateHz = *o.UpdateHz
	}

	if o.BridgeEnabled != nil {
		cfg.Bridge.Enabled = *o.BridgeEnabled
	}
	if o.BridgeWsURL != nil {
		cfg.Bridge.WsURL = *o.BridgeWsURL
	}
	if o.BridgeTimeoutMS != nil {
		cfg.Bridge.TimeoutMS = *o.BridgeTimeoutMS
	}

	if o.IPCSocketPath != nil {
		cfg.IPC.SocketPath = *o.IPCSocketPath
	}

	if o.StateAddr != nil {
		cfg.State.Addr = *o.StateAddr
	}
	if o.StatePath != nil {
		cfg.State.Path = *o.StatePath
	}

	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
}

// Validate checks config invariants and returns a user-friendly error.
// This is intended to be called after defaults + file + overrides are applied.
func (c *Config) Validate() error {
	// Input
	if c.Input.Enabled {
		if len(c.Input.Devices) == 0 {
			return errors.New("input.enabled is true but input.devices is empty")
		}
		for i, dev := range c.Input.Devices {
			if dev == "" {
				return fmt.Errorf("input.devices[%d] is empty", i)
			}
		}
	}

	// Engine
	if c.Engine.UpdateHz <= 0 || c.Engine.UpdateHz > 1000 {
		return errors.New("engine.update_hz must be between 1 and 1000")
	}

	// Bridge
	if c.Bridge.Enabled {
		if c.Bridge.WsURL == "" {
			return errors.New("bridge.enabled is true but bridge.ws_url is empty")
		}
		if c.Bridge.TimeoutMS <= 0 {
			return errors.New("bridge.timeout_ms must be > 0")
		}
	}

	// IPC
	if c.IPC.SocketPath == "" {
		return errors.New("ipc.socket_path must not be empty")
	}

	// State server
	if c.State.Addr == "" {
		return errors.New("state.addr must not be empty")
	}
	if c.State.Path == "" {
		return errors.New("state.path must not be empty")
	}

	// Logging
	if c.Logging.Level == "" {
		return errors.New("logging.level must not be empty")
	}

	return nil
}

// ToEngineConfig converts file config into the reducer's engine config.
func (c *Config) ToEngineConfig() EngineConfig {
	return EngineConfig{
		BridgeEnabled: c.Bridge.Enabled,
	}
}

// ExpandPath expands a leading "~" in a path using $HOME.
func ExpandPath(p string) string {
	if p == "" {
		return p
	}
	if p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	if len(p) >= 2 && (p[1] == '/' || p[1] == '\\') {
		return filepath.Join(home, p[2:])
	}
	return p
}

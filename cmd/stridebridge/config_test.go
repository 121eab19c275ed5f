package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestLoadConfigFile_RejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
engine:
  update_hz: 30
  turbo_boost: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := LoadConfigFile(path)
	if err == nil {
		t.Fatalf("expected error for unknown field, got nil")
	}
	if !strings.Contains(err.Error(), "decode config yaml") {
		t.Fatalf("expected decode error, got: %v", err)
	}
}

func TestLoadConfigFile_MergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
engine:
  update_hz: 30
bridge:
  enabled: true
  ws_url: ws://avatar.local:7733
  timeout_ms: 250
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Engine.UpdateHz != 30 {
		t.Errorf("expected update_hz 30, got %d", cfg.Engine.UpdateHz)
	}
	if !cfg.Bridge.Enabled || cfg.Bridge.WsURL != "ws://avatar.local:7733" {
		t.Errorf("expected bridge settings from file, got %+v", cfg.Bridge)
	}
	// Untouched sections keep defaults.
	if cfg.IPC.SocketPath != "/tmp/stridebridge.sock" {
		t.Errorf("expected default ipc socket, got %q", cfg.IPC.SocketPath)
	}
	if cfg.State.Path != "/ws/state" {
		t.Errorf("expected default state path, got %q", cfg.State.Path)
	}
}

func TestFlagOverrides_Apply(t *testing.T) {
	cfg := DefaultConfig()

	device := "/dev/input/event4"
	hz := 120
	enabled := true

	overrides := FlagOverrides{
		InputDevice:   &device,
		UpdateHz:      &hz,
		BridgeEnabled: &enabled,
	}
	overrides.Apply(&cfg)

	if !cfg.Input.Enabled || len(cfg.Input.Devices) != 1 || cfg.Input.Devices[0] != device {
		t.Errorf("expected input device override, got %+v", cfg.Input)
	}
	if cfg.Engine.UpdateHz != 120 {
		t.Errorf("expected update_hz 120, got %d", cfg.Engine.UpdateHz)
	}
	if !cfg.Bridge.Enabled {
		t.Errorf("expected bridge enabled")
	}
	// Nil overrides leave values alone.
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level, got %q", cfg.Logging.Level)
	}
}

func TestConfigValidate_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad_update_hz", func(c *Config) { c.Engine.UpdateHz = 0 }},
		{"update_hz_too_high", func(c *Config) { c.Engine.UpdateHz = 5000 }},
		{"input_enabled_no_devices", func(c *Config) { c.Input.Enabled = true }},
		{"bridge_enabled_no_url", func(c *Config) { c.Bridge.Enabled = true; c.Bridge.WsURL = "" }},
		{"bridge_bad_timeout", func(c *Config) { c.Bridge.Enabled = true; c.Bridge.TimeoutMS = 0 }},
		{"empty_ipc_socket", func(c *Config) { c.IPC.SocketPath = "" }},
		{"empty_state_addr", func(c *Config) { c.State.Addr = "" }},
		{"empty_log_level", func(c *Config) { c.Logging.Level = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

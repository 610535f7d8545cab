package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("missing file must not fail: %v", err)
	}
	if cfg.Practice.ShowName != nil || cfg.Gamepad.Devices != nil {
		t.Fatalf("expected unset fields, got %+v", cfg)
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[practice]
show-keybind = false
error-behavior = "restart"
timeout = 2.5

[capture]
cancel-key = "KeyX"
blacklist-mouse = []

[gamepad]
poll-ms = 8
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Practice.ShowKeybind == nil || *cfg.Practice.ShowKeybind {
		t.Fatalf("expected show-keybind=false")
	}
	if cfg.Practice.ErrorBehavior == nil || *cfg.Practice.ErrorBehavior != "restart" {
		t.Fatalf("unexpected error-behavior")
	}
	if cfg.Practice.Timeout == nil || *cfg.Practice.Timeout != 2.5 {
		t.Fatalf("unexpected timeout")
	}
	if cfg.Capture.CancelKey == nil || *cfg.Capture.CancelKey != "KeyX" {
		t.Fatalf("unexpected cancel-key")
	}
	if cfg.Capture.BlacklistMouse == nil || len(cfg.Capture.BlacklistMouse) != 0 {
		t.Fatalf("explicit empty list must stay non-nil, got %v", cfg.Capture.BlacklistMouse)
	}
	if cfg.Capture.BlacklistKeys != nil {
		t.Fatalf("absent list must stay nil")
	}
	if cfg.Gamepad.PollMs == nil || *cfg.Gamepad.PollMs != 8 {
		t.Fatalf("unexpected poll-ms")
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[practice]\nwords = 10\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "practice.words") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestWriteTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twirl", "config.toml")
	if err := WriteTemplate(path); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if _, err := LoadConfig(path); err != nil {
		t.Fatalf("template must decode: %v", err)
	}
	if err := os.WriteFile(path, []byte("[gamepad]\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WriteTemplate(path); err != nil {
		t.Fatalf("second write: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "[gamepad]\n" {
		t.Fatalf("existing config must not be overwritten")
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "twirl", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "twirl", "twirl.db") {
		t.Fatalf("unexpected db path %q", got)
	}
}

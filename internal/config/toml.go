// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Capture  CaptureConfig  `toml:"capture"`
	Gamepad  GamepadConfig  `toml:"gamepad"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	ShowName      *bool    `toml:"show-name"`
	ShowKeybind   *bool    `toml:"show-keybind"`
	PlaySounds    *bool    `toml:"play-sounds"`
	ErrorBehavior *string  `toml:"error-behavior"`
	Timeout       *float64 `toml:"timeout"`
	WeakTop       *int     `toml:"drill-weak-top"`
	WeakFactor    *float64 `toml:"drill-weak-factor"`
	WeakWindow    *int     `toml:"drill-weak-window"`
}

// CaptureConfig maps input capture settings.
type CaptureConfig struct {
	EmitImmediately  *bool    `toml:"emit-immediately"`
	CancelKey        *string  `toml:"cancel-key"`
	CancelButton     *int     `toml:"cancel-button"`
	BlacklistKeys    []string `toml:"blacklist-keys"`
	BlacklistButtons []int    `toml:"blacklist-buttons"`
	BlacklistMouse   []int    `toml:"blacklist-mouse"`
}

// GamepadConfig maps joystick device settings.
type GamepadConfig struct {
	Devices *string `toml:"devices"`
	PollMs  *int    `toml:"poll-ms"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Template is written by `twirl config` when no file exists yet.
const Template = `# twirl configuration

[practice]
# show-name = true
# show-keybind = true
# play-sounds = true
# error-behavior = "stay"   # stay | continue | restart
# timeout = 0               # seconds per step, 0 disables
# drill-weak-top = 5
# drill-weak-factor = 1.0
# drill-weak-window = 10

[capture]
# emit-immediately = true
# cancel-key = "Escape"
# cancel-button = 9
# blacklist-keys = ["Enter", "F5"]
# blacklist-buttons = [8]
# blacklist-mouse = [0]

[gamepad]
# devices = "/dev/input/js*"
# poll-ms = 16
`

// WriteTemplate creates path with Template unless it already exists.
func WriteTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := EnsureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(Template), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

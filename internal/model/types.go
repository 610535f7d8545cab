// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// ErrorBehavior decides what a practice run does after a wrong input.
type ErrorBehavior string

const (
	ErrorStay     ErrorBehavior = "stay"
	ErrorContinue ErrorBehavior = "continue"
	ErrorRestart  ErrorBehavior = "restart"
)

// ParseErrorBehavior validates a behaviour name.
func ParseErrorBehavior(s string) (ErrorBehavior, error) {
	switch b := ErrorBehavior(strings.ToLower(strings.TrimSpace(s))); b {
	case ErrorStay, ErrorContinue, ErrorRestart:
		return b, nil
	default:
		return "", fmt.Errorf("invalid error behavior %q (want stay, continue or restart)", s)
	}
}

// Settings defines practice options.
type Settings struct {
	ShowName      bool
	ShowKeybind   bool
	PlaySounds    bool
	ErrorBehavior ErrorBehavior
	// Timeout per step; zero disables it.
	Timeout time.Duration

	Drill      int
	FocusWeak  bool
	WeakTop    int
	WeakFactor float64
	WeakWindow int
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		ShowName:      true,
		ShowKeybind:   true,
		PlaySounds:    true,
		ErrorBehavior: ErrorStay,
		WeakTop:       5,
		WeakFactor:    1.0,
		WeakWindow:    10,
	}
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Rotation    string
	Since       *time.Time
	Last        int
	CurveWindow int
	Steps       string
}

// SessionStats captures a completed practice run.
type SessionStats struct {
	StartedAt  time.Time
	EndedAt    time.Time
	Rotation   string
	Drill      bool
	Correct    int
	Incorrect  int
	Timeouts   int
	DurationMs int64
}

// StepStats stores per-step results for a session.
type StepStats struct {
	Step         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// StepAggregate aggregates step stats across sessions.
type StepAggregate struct {
	Step         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID  int64
	Rotation   string
	EndedAt    time.Time
	Correct    int
	Incorrect  int
	DurationMs int64
}

package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/twirl/internal/capture"
)

// DefaultPollInterval is one frame at roughly 60Hz.
const DefaultPollInterval = 16 * time.Millisecond

// PadSource supplies per-frame gamepad snapshots.
type PadSource interface {
	Gamepads() []capture.Gamepad
}

type pollMsg struct{}

// Host adapts Bubble Tea messages to the capture engine. Terminals report no
// key releases, so every key press is delivered as a press followed by a release.
type Host struct {
	listener capture.Listener
	poll     func()
	pads     PadSource
	interval time.Duration
	ticking  bool
	mouse    map[int]struct{}
}

// NewHost returns a Host; pads may be nil when no gamepad source exists.
func NewHost(pads PadSource, interval time.Duration) *Host {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Host{pads: pads, interval: interval, mouse: map[int]struct{}{}}
}

// Attach implements capture.Host.
func (h *Host) Attach(l capture.Listener) func() {
	h.listener = l
	return func() {
		if h.listener == l {
			h.listener = nil
		}
	}
}

// Schedule implements capture.Host.
func (h *Host) Schedule(poll func()) func() {
	h.poll = poll
	return func() {
		h.poll = nil
	}
}

// Gamepads implements capture.Host.
func (h *Host) Gamepads() []capture.Gamepad {
	if h.pads == nil {
		return nil
	}
	return h.pads.Gamepads()
}

// Cmd starts the poll loop if a poll is scheduled and the loop is not running.
func (h *Host) Cmd() tea.Cmd {
	if h.poll == nil || h.pads == nil || h.ticking {
		return nil
	}
	h.ticking = true
	return tea.Tick(h.interval, func(time.Time) tea.Msg {
		return pollMsg{}
	})
}

// Handle delivers msg to the attached listener. It reports whether msg was an
// input or poll message and returns the follow-up command.
func (h *Host) Handle(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case pollMsg:
		h.ticking = false
		if h.poll != nil {
			h.poll()
		}
		return true, h.Cmd()
	case tea.KeyMsg:
		ev, ok := keyEvent(msg)
		if !ok || h.listener == nil {
			return ok, nil
		}
		h.listener.HandleKey(ev)
		if h.listener != nil {
			up := ev
			up.Action = capture.KeyUp
			up.Shift, up.Ctrl, up.Alt = false, false, false
			h.listener.HandleKey(up)
		}
		return true, nil
	case tea.MouseMsg:
		return h.handleMouse(msg), nil
	}
	return false, nil
}

func (h *Host) handleMouse(msg tea.MouseMsg) bool {
	switch msg.Action {
	case tea.MouseActionPress:
		button, ok := mouseButton(msg.Button)
		if !ok {
			return false
		}
		h.mouse[button] = struct{}{}
		if h.listener != nil {
			h.listener.HandleMouse(capture.MouseEvent{
				Action: capture.MouseDown, Button: button,
				Shift: msg.Shift, Ctrl: msg.Ctrl, Alt: msg.Alt,
			})
		}
		return true
	case tea.MouseActionRelease:
		buttons := []int{}
		if button, ok := mouseButton(msg.Button); ok {
			buttons = append(buttons, button)
		} else {
			// X10 mouse mode does not say which button was released.
			for b := range h.mouse {
				buttons = append(buttons, b)
			}
		}
		for _, b := range buttons {
			delete(h.mouse, b)
			if h.listener != nil {
				h.listener.HandleMouse(capture.MouseEvent{Action: capture.MouseUp, Button: b})
			}
		}
		return len(buttons) > 0
	}
	return false
}

func mouseButton(b tea.MouseButton) (int, bool) {
	switch b {
	case tea.MouseButtonLeft:
		return 0, true
	case tea.MouseButtonMiddle:
		return 1, true
	case tea.MouseButtonRight:
		return 2, true
	case tea.MouseButtonBackward:
		return 3, true
	case tea.MouseButtonForward:
		return 4, true
	}
	return 0, false
}

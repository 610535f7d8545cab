package capture

import (
	"strconv"
	"strings"
)

// EventControl suppresses the platform's handling of a consumed event.
type EventControl interface {
	PreventDefault()
	StopPropagation()
}

// KeyAction distinguishes key presses from releases.
type KeyAction uint8

const (
	KeyDown KeyAction = iota
	KeyUp
)

// KeyEvent is a raw keyboard event as delivered by the host.
type KeyEvent struct {
	Action KeyAction
	// Code is the physical key identifier ("KeyA", "ShiftLeft", "Escape").
	Code string
	// Key is the layout-dependent key value ("a", "Shift", "Escape").
	Key   string
	Shift bool
	Ctrl  bool
	Alt   bool

	Control EventControl
}

// MouseAction distinguishes button presses from releases.
type MouseAction uint8

const (
	MouseDown MouseAction = iota
	MouseUp
)

// MouseEvent is a raw mouse button event as delivered by the host.
type MouseEvent struct {
	Action MouseAction
	// Button uses browser numbering: 0 primary, 1 middle, 2 secondary, 3 back, 4 forward.
	Button int
	Shift  bool
	Ctrl   bool
	Alt    bool

	Control EventControl
}

// Gamepad is one connected pad as seen by a single poll.
type Gamepad struct {
	Index     int
	Connected bool
	Buttons   []bool
}

// AnyPressed reports whether at least one button of the pad is held.
func (g Gamepad) AnyPressed() bool {
	for _, pressed := range g.Buttons {
		if pressed {
			return true
		}
	}
	return false
}

var modifierKeys = map[string]struct{}{
	"Control":  {},
	"Shift":    {},
	"Alt":      {},
	"AltGraph": {},
}

// IsModifierKey reports whether key is a modifier key value.
func IsModifierKey(key string) bool {
	_, ok := modifierKeys[key]
	return ok
}

var keyNameByCode = map[string]string{
	"Backquote": "^",
	"Equal":     "´",
	"Comma":     ",",
	"Slash":     "-",
	"Period":    ".",
	"Space":     "Space",
}

// DeriveKeyName returns the user-visible label for a key.
// Letter keys follow the layout, digit keys use the digit and a few punctuation
// keys use a fixed label; everything else falls back to the key value.
func DeriveKeyName(key, code string) string {
	if strings.HasPrefix(code, "Key") {
		return strings.ToUpper(key)
	}
	if strings.HasPrefix(code, "Digit") {
		return strings.TrimPrefix(code, "Digit")
	}
	if name, ok := keyNameByCode[code]; ok {
		return name
	}
	return key
}

// NormalizeKey converts a raw keyboard event into an input fragment.
// It returns false for blacklisted codes. Modifier keys only contribute flags.
func NormalizeKey(ev KeyEvent, blacklist map[string]struct{}) (Input, bool) {
	suppress(ev.Control)
	if _, ok := blacklist[ev.Code]; ok {
		return Input{}, false
	}
	in := Input{Shift: ev.Shift, Ctrl: ev.Ctrl, Alt: ev.Alt}
	if ev.Action == KeyDown && !IsModifierKey(ev.Key) {
		in.KeyCode = ev.Code
		in.KeyName = DeriveKeyName(ev.Key, ev.Code)
	}
	return in, true
}

// NormalizeMouse converts a raw mouse event into an input fragment.
// It returns false for blacklisted buttons.
func NormalizeMouse(ev MouseEvent, blacklist map[int]struct{}) (Input, bool) {
	suppress(ev.Control)
	if _, ok := blacklist[ev.Button]; ok {
		return Input{}, false
	}
	in := Input{Shift: ev.Shift, Ctrl: ev.Ctrl, Alt: ev.Alt}
	if ev.Action == MouseDown {
		in.MouseButton = Idx(ev.Button)
	}
	return in, true
}

func mouseToken(button int) string {
	return "Mouse" + strconv.Itoa(button)
}

func suppress(ctl EventControl) {
	if ctl == nil {
		return
	}
	ctl.PreventDefault()
	ctl.StopPropagation()
}

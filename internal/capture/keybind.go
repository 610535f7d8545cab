package capture

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Keybind parse errors.
var (
	ErrEmptyKeybind   = errors.New("empty keybind")
	ErrInvalidKeybind = errors.New("invalid keybind")
)

// PadPrefix marks gamepad keybinds in text form.
const PadPrefix = "pad:"

var padButtonNames = map[int]string{
	0:  "A/Cross",
	1:  "B/Circle",
	2:  "X/Square",
	3:  "Y/Triangle",
	4:  "L1/LB",
	5:  "R1/RB",
	6:  "L2/LT",
	7:  "R2/RT",
	8:  "Select",
	9:  "Start",
	10: "L3",
	11: "R3",
	12: "D-Up",
	13: "D-Down",
	14: "D-Left",
	15: "D-Right",
	16: "Home",
}

// PadButtonName returns the display name of a standard-mapping pad button.
func PadButtonName(button int) string {
	if name, ok := padButtonNames[button]; ok {
		return name
	}
	return "Btn" + strconv.Itoa(button)
}

// String renders the keybind as shown to users, e.g. "Ctrl+Shift+Q" or "L2/LT+X/Square".
func (in Input) String() string {
	var parts []string
	if in.IsGamepad() {
		if in.GamepadTrigger != nil {
			parts = append(parts, PadButtonName(*in.GamepadTrigger))
		}
		if in.GamepadButton != nil {
			parts = append(parts, PadButtonName(*in.GamepadButton))
		}
		return strings.Join(parts, "+")
	}
	if in.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if in.Shift {
		parts = append(parts, "Shift")
	}
	if in.Alt {
		parts = append(parts, "Alt")
	}
	if in.MouseButton != nil {
		parts = append(parts, "Mouse"+strconv.Itoa(*in.MouseButton+1))
	}
	if in.KeyName != "" {
		parts = append(parts, in.KeyName)
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "+")
}

// Text renders the keybind in the form accepted by ParseKeybind. Keys whose
// label does not parse back to the same code are written by code instead.
func (in Input) Text() string {
	if in.IsGamepad() {
		return PadPrefix + in.String()
	}
	if in.IsEmpty() {
		return ""
	}
	if in.KeyCode != "" && !keyTokenMatches(in.KeyName, in) && keyTokenMatches(in.KeyCode, in) {
		out := in
		out.KeyName = in.KeyCode
		return out.String()
	}
	return in.String()
}

func keyTokenMatches(token string, in Input) bool {
	if token == "" || strings.Contains(token, "+") {
		return false
	}
	code, name, ok := keyFromName(token)
	return ok && code == in.KeyCode && name == in.KeyName
}

var namedKeys = []string{
	"Tab", "Backspace", "Escape", "Enter", "Delete", "Insert", "Home", "End",
	"PageUp", "PageDown", "ArrowUp", "ArrowDown", "ArrowLeft", "ArrowRight",
}

// US layout punctuation by code: unshifted then shifted key value.
var punctuationKeys = map[string][2]string{
	"Backquote":    {"`", "~"},
	"Minus":        {"-", "_"},
	"Equal":        {"=", "+"},
	"BracketLeft":  {"[", "{"},
	"BracketRight": {"]", "}"},
	"Backslash":    {"\\", "|"},
	"Semicolon":    {";", ":"},
	"Quote":        {"'", "\""},
	"Comma":        {",", "<"},
	"Period":       {".", ">"},
	"Slash":        {"/", "?"},
}

// ParseKeybind parses keybind text.
//
// Supported formats:
//   - Keyboard: "Q", "Ctrl+1", "Shift+Alt+F3", "Space"
//   - Mouse: "Mouse4", "Ctrl+Mouse5" (1-based like the rendered form)
//   - Gamepad: "pad:X", "pad:L2+Square", "pad:LT/L2+X/Square", "pad:Btn17"
func ParseKeybind(spec string) (Input, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Input{}, ErrEmptyKeybind
	}
	if len(spec) >= len(PadPrefix) && strings.EqualFold(spec[:len(PadPrefix)], PadPrefix) {
		return parsePadKeybind(strings.TrimSpace(spec[len(PadPrefix):]))
	}

	parts := strings.Split(spec, "+")
	var in Input
	for i, raw := range parts {
		part := strings.TrimSpace(raw)
		if part == "" {
			return Input{}, fmt.Errorf("%w: empty part in %q", ErrInvalidKeybind, spec)
		}
		last := i == len(parts)-1
		switch strings.ToLower(part) {
		case "ctrl", "control":
			in.Ctrl = true
			continue
		case "shift":
			in.Shift = true
			continue
		case "alt":
			in.Alt = true
			continue
		}
		if button, ok := parseMouse(part); ok {
			if in.MouseButton != nil {
				return Input{}, fmt.Errorf("%w: more than one mouse button in %q", ErrInvalidKeybind, spec)
			}
			in.MouseButton = Idx(button)
			continue
		}
		if !last {
			return Input{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidKeybind, part)
		}
		code, name, ok := keyFromName(part)
		if !ok {
			return Input{}, fmt.Errorf("%w: unknown key %q", ErrInvalidKeybind, part)
		}
		in.KeyCode = code
		in.KeyName = name
	}
	if !in.IsComplete() {
		return Input{}, fmt.Errorf("%w: %q has no key or button", ErrInvalidKeybind, spec)
	}
	return in, nil
}

func parsePadKeybind(spec string) (Input, error) {
	parts := strings.Split(spec, "+")
	if len(parts) == 0 || len(parts) > 2 {
		return Input{}, fmt.Errorf("%w: pad keybind %q", ErrInvalidKeybind, spec)
	}
	buttons := make([]int, 0, len(parts))
	for _, part := range parts {
		button, ok := padButtonFromName(strings.TrimSpace(part))
		if !ok {
			return Input{}, fmt.Errorf("%w: unknown pad button %q", ErrInvalidKeybind, part)
		}
		buttons = append(buttons, button)
	}
	in := Input{GamepadButton: Idx(buttons[len(buttons)-1])}
	if len(buttons) == 2 {
		trigger := buttons[0]
		if !IsComboButton(trigger) || trigger == buttons[1] {
			return Input{}, fmt.Errorf("%w: %q cannot be held as trigger", ErrInvalidKeybind, parts[0])
		}
		in.GamepadTrigger = Idx(trigger)
	}
	return in, nil
}

func padButtonFromName(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	if rest, ok := cutPrefixFold(name, "btn"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			return 0, false
		}
		return n, true
	}
	for button, full := range padButtonNames {
		if strings.EqualFold(full, name) {
			return button, true
		}
		for _, alias := range strings.Split(full, "/") {
			if strings.EqualFold(alias, name) {
				return button, true
			}
		}
	}
	return 0, false
}

func parseMouse(part string) (int, bool) {
	rest, ok := cutPrefixFold(part, "mouse")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}

func keyFromName(name string) (code, keyName string, ok bool) {
	if len(name) == 1 {
		ch := name[0]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
			upper := strings.ToUpper(name)
			return "Key" + upper, upper, true
		case ch >= '0' && ch <= '9':
			return "Digit" + name, name, true
		}
	}
	for c, keys := range punctuationKeys {
		if keys[0] == name || keys[1] == name {
			return c, DeriveKeyName(name, c), true
		}
	}
	for c, keys := range punctuationKeys {
		if strings.EqualFold(c, name) {
			return c, DeriveKeyName(keys[0], c), true
		}
	}
	for c, label := range keyNameByCode {
		if label == name || strings.EqualFold(c, name) {
			return c, label, true
		}
	}
	if rest, found := cutPrefixFold(name, "f"); found {
		if n, err := strconv.Atoi(rest); err == nil && n >= 1 && n <= 24 {
			fkey := "F" + strconv.Itoa(n)
			return fkey, fkey, true
		}
	}
	for _, key := range namedKeys {
		if strings.EqualFold(key, name) {
			return key, key, true
		}
	}
	return "", "", false
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return s[len(prefix):], true
}

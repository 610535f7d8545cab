package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/twirl/internal/capture"
)

type keySpec struct {
	code  string
	key   string
	shift bool
	ctrl  bool
}

var specialKeys = map[tea.KeyType]keySpec{
	tea.KeySpace:      {code: "Space", key: " "},
	tea.KeyTab:        {code: "Tab", key: "Tab"},
	tea.KeyShiftTab:   {code: "Tab", key: "Tab", shift: true},
	tea.KeyEnter:      {code: "Enter", key: "Enter"},
	tea.KeyEsc:        {code: "Escape", key: "Escape"},
	tea.KeyBackspace:  {code: "Backspace", key: "Backspace"},
	tea.KeyDelete:     {code: "Delete", key: "Delete"},
	tea.KeyInsert:     {code: "Insert", key: "Insert"},
	tea.KeyHome:       {code: "Home", key: "Home"},
	tea.KeyEnd:        {code: "End", key: "End"},
	tea.KeyPgUp:       {code: "PageUp", key: "PageUp"},
	tea.KeyPgDown:     {code: "PageDown", key: "PageDown"},
	tea.KeyUp:         {code: "ArrowUp", key: "ArrowUp"},
	tea.KeyDown:       {code: "ArrowDown", key: "ArrowDown"},
	tea.KeyLeft:       {code: "ArrowLeft", key: "ArrowLeft"},
	tea.KeyRight:      {code: "ArrowRight", key: "ArrowRight"},
	tea.KeyShiftUp:    {code: "ArrowUp", key: "ArrowUp", shift: true},
	tea.KeyShiftDown:  {code: "ArrowDown", key: "ArrowDown", shift: true},
	tea.KeyShiftLeft:  {code: "ArrowLeft", key: "ArrowLeft", shift: true},
	tea.KeyShiftRight: {code: "ArrowRight", key: "ArrowRight", shift: true},
	tea.KeyCtrlUp:     {code: "ArrowUp", key: "ArrowUp", ctrl: true},
	tea.KeyCtrlDown:   {code: "ArrowDown", key: "ArrowDown", ctrl: true},
	tea.KeyCtrlLeft:   {code: "ArrowLeft", key: "ArrowLeft", ctrl: true},
	tea.KeyCtrlRight:  {code: "ArrowRight", key: "ArrowRight", ctrl: true},
	tea.KeyF1:         {code: "F1", key: "F1"},
	tea.KeyF2:         {code: "F2", key: "F2"},
	tea.KeyF3:         {code: "F3", key: "F3"},
	tea.KeyF4:         {code: "F4", key: "F4"},
	tea.KeyF5:         {code: "F5", key: "F5"},
	tea.KeyF6:         {code: "F6", key: "F6"},
	tea.KeyF7:         {code: "F7", key: "F7"},
	tea.KeyF8:         {code: "F8", key: "F8"},
	tea.KeyF9:         {code: "F9", key: "F9"},
	tea.KeyF10:        {code: "F10", key: "F10"},
	tea.KeyF11:        {code: "F11", key: "F11"},
	tea.KeyF12:        {code: "F12", key: "F12"},
}

// US layout: shifted symbol -> unshifted key code.
var symbolCodes = map[rune]keySpec{
	'`': {code: "Backquote"}, '~': {code: "Backquote", shift: true},
	'-': {code: "Minus"}, '_': {code: "Minus", shift: true},
	'=': {code: "Equal"}, '+': {code: "Equal", shift: true},
	'[': {code: "BracketLeft"}, '{': {code: "BracketLeft", shift: true},
	']': {code: "BracketRight"}, '}': {code: "BracketRight", shift: true},
	'\\': {code: "Backslash"}, '|': {code: "Backslash", shift: true},
	';': {code: "Semicolon"}, ':': {code: "Semicolon", shift: true},
	'\'': {code: "Quote"}, '"': {code: "Quote", shift: true},
	',': {code: "Comma"}, '<': {code: "Comma", shift: true},
	'.': {code: "Period"}, '>': {code: "Period", shift: true},
	'/': {code: "Slash"}, '?': {code: "Slash", shift: true},
	'!': {code: "Digit1", shift: true}, '@': {code: "Digit2", shift: true},
	'#': {code: "Digit3", shift: true}, '$': {code: "Digit4", shift: true},
	'%': {code: "Digit5", shift: true}, '^': {code: "Digit6", shift: true},
	'&': {code: "Digit7", shift: true}, '*': {code: "Digit8", shift: true},
	'(': {code: "Digit9", shift: true}, ')': {code: "Digit0", shift: true},
}

// keyEvent converts a terminal key press into a raw key-down event.
func keyEvent(msg tea.KeyMsg) (capture.KeyEvent, bool) {
	ev := capture.KeyEvent{Action: capture.KeyDown, Alt: msg.Alt}
	if spec, ok := specialKeys[msg.Type]; ok {
		ev.Code, ev.Key, ev.Shift, ev.Ctrl = spec.code, spec.key, spec.shift, spec.ctrl
		return ev, true
	}
	if msg.Type >= tea.KeyCtrlA && msg.Type <= tea.KeyCtrlZ {
		letter := string(rune('a' + int(msg.Type-tea.KeyCtrlA)))
		ev.Code = "Key" + strings.ToUpper(letter)
		ev.Key = letter
		ev.Ctrl = true
		return ev, true
	}
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 || msg.Paste {
		return capture.KeyEvent{}, false
	}
	r := msg.Runes[0]
	ev.Key = string(r)
	switch {
	case r >= 'a' && r <= 'z':
		ev.Code = "Key" + strings.ToUpper(ev.Key)
	case r >= 'A' && r <= 'Z':
		ev.Code = "Key" + ev.Key
		ev.Shift = true
	case r >= '0' && r <= '9':
		ev.Code = "Digit" + ev.Key
	default:
		spec, ok := symbolCodes[r]
		if !ok {
			return capture.KeyEvent{}, false
		}
		ev.Code, ev.Shift = spec.code, spec.shift
	}
	return ev, true
}

package capture

import (
	"errors"
	"testing"
)

func TestParseKeybind(t *testing.T) {
	tests := []struct {
		spec string
		want Input
	}{
		{"q", Input{KeyCode: "KeyQ", KeyName: "Q"}},
		{"Ctrl+1", Input{Ctrl: true, KeyCode: "Digit1", KeyName: "1"}},
		{"shift+alt+F3", Input{Shift: true, Alt: true, KeyCode: "F3", KeyName: "F3"}},
		{"Space", Input{KeyCode: "Space", KeyName: "Space"}},
		{"Ctrl+^", Input{Ctrl: true, KeyCode: "Backquote", KeyName: "^"}},
		{"Mouse4", Input{MouseButton: Idx(3)}},
		{"Shift+Mouse5", Input{Shift: true, MouseButton: Idx(4)}},
		{"Tab", Input{KeyCode: "Tab", KeyName: "Tab"}},
		{"pad:X", Input{GamepadButton: Idx(2)}},
		{"pad:L2+Square", Input{GamepadButton: Idx(2), GamepadTrigger: Idx(6)}},
		{"PAD:L1/LB+A/Cross", Input{GamepadButton: Idx(0), GamepadTrigger: Idx(4)}},
		{"pad:Btn17", Input{GamepadButton: Idx(17)}},
		{"-", Input{KeyCode: "Minus", KeyName: "-"}},
		{"Slash", Input{KeyCode: "Slash", KeyName: "-"}},
		{"[", Input{KeyCode: "BracketLeft", KeyName: "["}},
		{"Ctrl+;", Input{Ctrl: true, KeyCode: "Semicolon", KeyName: ";"}},
		{"Shift+_", Input{Shift: true, KeyCode: "Minus", KeyName: "_"}},
	}
	for _, tt := range tests {
		got, err := ParseKeybind(tt.spec)
		if err != nil {
			t.Errorf("ParseKeybind(%q) error = %v", tt.spec, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseKeybind(%q) = %#v, want %#v", tt.spec, got, tt.want)
		}
	}
}

func TestParseKeybindErrors(t *testing.T) {
	if _, err := ParseKeybind("  "); !errors.Is(err, ErrEmptyKeybind) {
		t.Fatalf("expected ErrEmptyKeybind, got %v", err)
	}
	for _, spec := range []string{"Ctrl", "Hyper+Q", "Ctrl++", "NoSuchKey", "Mouse0", "pad:Jump", "pad:X+A", "pad:L1+R1+A"} {
		if _, err := ParseKeybind(spec); !errors.Is(err, ErrInvalidKeybind) {
			t.Errorf("ParseKeybind(%q) error = %v, want ErrInvalidKeybind", spec, err)
		}
	}
}

func TestKeybindString(t *testing.T) {
	tests := []struct {
		in   Input
		want string
	}{
		{Input{}, "None"},
		{Input{Ctrl: true, Shift: true, Alt: true, KeyCode: "KeyQ", KeyName: "Q"}, "Ctrl+Shift+Alt+Q"},
		{Input{Ctrl: true, MouseButton: Idx(2)}, "Ctrl+Mouse3"},
		{Input{GamepadButton: Idx(2), GamepadTrigger: Idx(6)}, "L2/LT+X/Square"},
		{Input{GamepadButton: Idx(20)}, "Btn20"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestKeybindTextUsesCodeForAmbiguousLabels(t *testing.T) {
	tests := []struct {
		in   Input
		want string
	}{
		{Input{KeyCode: "Slash", KeyName: "-"}, "Slash"},
		{Input{Shift: true, KeyCode: "Slash", KeyName: "-"}, "Shift+Slash"},
		{Input{KeyCode: "Minus", KeyName: "-"}, "-"},
		{Input{KeyCode: "BracketLeft", KeyName: "["}, "["},
		{Input{KeyCode: "Equal", KeyName: "´"}, "´"},
	}
	for _, tt := range tests {
		if got := tt.in.Text(); got != tt.want {
			t.Errorf("Text() = %q, want %q", got, tt.want)
		}
	}
}

func TestKeybindTextParsesBack(t *testing.T) {
	inputs := []Input{
		{Ctrl: true, KeyCode: "Digit4", KeyName: "4"},
		{Alt: true, MouseButton: Idx(1)},
		{GamepadButton: Idx(3), GamepadTrigger: Idx(7)},
		{KeyCode: "Period", KeyName: "."},
		{KeyCode: "Minus", KeyName: "-"},
		{KeyCode: "Slash", KeyName: "-"},
		{Shift: true, KeyCode: "Slash", KeyName: "-"},
		{KeyCode: "Backquote", KeyName: "^"},
		{KeyCode: "Space", KeyName: "Space"},
		{Ctrl: true, KeyCode: "Enter", KeyName: "Enter"},
	}
	for code, keys := range punctuationKeys {
		inputs = append(inputs,
			Input{KeyCode: code, KeyName: DeriveKeyName(keys[0], code)},
			Input{Shift: true, KeyCode: code, KeyName: DeriveKeyName(keys[1], code)},
		)
	}
	for _, in := range inputs {
		got, err := ParseKeybind(in.Text())
		if err != nil {
			t.Fatalf("ParseKeybind(%q) error = %v", in.Text(), err)
		}
		if !got.Equal(in) {
			t.Fatalf("ParseKeybind(%q) = %v, want %v", in.Text(), got, in)
		}
	}
}

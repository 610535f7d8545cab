// Package capture turns raw keyboard, mouse and gamepad events into canonical inputs.
package capture

// Input is the normalized description of a held input combination.
// Keyboard/mouse fields and gamepad fields describe different physical devices;
// a complete input uses one family or the other.
type Input struct {
	Shift bool
	Ctrl  bool
	Alt   bool

	// KeyCode is the physical key identifier, e.g. "KeyQ" or "Digit1".
	KeyCode string
	// KeyName is the layout-aware label shown to the user.
	KeyName string

	MouseButton    *int
	GamepadButton  *int
	GamepadTrigger *int
}

// Idx returns a pointer to n for the optional index fields of Input.
func Idx(n int) *int {
	return &n
}

// IsEmpty reports whether no field is set.
func (in Input) IsEmpty() bool {
	return !in.Shift && !in.Ctrl && !in.Alt &&
		in.KeyCode == "" && in.KeyName == "" &&
		in.MouseButton == nil && in.GamepadButton == nil && in.GamepadTrigger == nil
}

// IsComplete reports whether the input names an actual key, mouse button or pad
// button rather than modifiers alone.
func (in Input) IsComplete() bool {
	return in.KeyCode != "" || in.MouseButton != nil || in.GamepadButton != nil
}

// IsGamepad reports whether the input belongs to the gamepad family.
func (in Input) IsGamepad() bool {
	return in.GamepadButton != nil || in.GamepadTrigger != nil
}

// Equal compares field by field. An absent field only equals an absent field.
func (in Input) Equal(other Input) bool {
	return in.Shift == other.Shift &&
		in.Ctrl == other.Ctrl &&
		in.Alt == other.Alt &&
		in.KeyCode == other.KeyCode &&
		in.KeyName == other.KeyName &&
		equalIdx(in.MouseButton, other.MouseButton) &&
		equalIdx(in.GamepadButton, other.GamepadButton) &&
		equalIdx(in.GamepadTrigger, other.GamepadTrigger)
}

// Clone returns a copy that shares no pointers with in.
func (in Input) Clone() Input {
	out := in
	out.MouseButton = cloneIdx(in.MouseButton)
	out.GamepadButton = cloneIdx(in.GamepadButton)
	out.GamepadTrigger = cloneIdx(in.GamepadTrigger)
	return out
}

// Merge overlays the set fields of other onto in. Modifier flags are OR-ed.
func (in Input) Merge(other Input) Input {
	out := in.Clone()
	out.Shift = out.Shift || other.Shift
	out.Ctrl = out.Ctrl || other.Ctrl
	out.Alt = out.Alt || other.Alt
	if other.KeyCode != "" {
		out.KeyCode = other.KeyCode
	}
	if other.KeyName != "" {
		out.KeyName = other.KeyName
	}
	if other.MouseButton != nil {
		out.MouseButton = cloneIdx(other.MouseButton)
	}
	if other.GamepadButton != nil {
		out.GamepadButton = cloneIdx(other.GamepadButton)
	}
	if other.GamepadTrigger != nil {
		out.GamepadTrigger = cloneIdx(other.GamepadTrigger)
	}
	return out
}

// Matches reports whether actual is exactly the expected input.
func Matches(expected, actual Input) bool {
	return expected.Equal(actual)
}

func equalIdx(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func cloneIdx(p *int) *int {
	if p == nil {
		return nil
	}
	return Idx(*p)
}

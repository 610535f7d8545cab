package capture

import "sort"

// Combo-eligible pad buttons in standard mapping: L1, R1, L2, R2.
var comboButtons = map[int]struct{}{4: {}, 5: {}, 6: {}, 7: {}}

// IsComboButton reports whether a pad button may act as a held trigger.
func IsComboButton(button int) bool {
	_, ok := comboButtons[button]
	return ok
}

// Frame is the outcome of one gamepad poll.
type Frame struct {
	// Pressed lists the held, non-blacklisted buttons in index order.
	Pressed    []int
	NewPresses []int
	Released   []int

	// Press is set on the frame the main button of a sequence goes down.
	Press *Input
	// Release is set when a lone combo button is let go with nothing else held.
	Release *Input
}

// ComboTracker resolves main/trigger button pairs from per-frame pressed sets.
// The first button of an unbroken press sequence decides whether a combo
// button counts as trigger: it has to be pressed before the main button.
type ComboTracker struct {
	blacklist map[int]struct{}

	pad      int
	pressed  map[int]struct{}
	first    *int
	mainSeen bool
}

// NewComboTracker returns a tracker that ignores the blacklisted buttons.
func NewComboTracker(blacklist map[int]struct{}) *ComboTracker {
	t := &ComboTracker{blacklist: blacklist}
	t.Reset()
	return t
}

// Reset forgets the pinned pad and all press history.
func (t *ComboTracker) Reset() {
	t.pad = -1
	t.pressed = map[int]struct{}{}
	t.first = nil
	t.mainSeen = false
}

// Pad returns the index of the pad being tracked, or -1.
func (t *ComboTracker) Pad() int {
	return t.pad
}

// Held reports whether any tracked button is down.
func (t *ComboTracker) Held() bool {
	return len(t.pressed) > 0
}

// FirstPressed returns the first button of the current press sequence.
func (t *ComboTracker) FirstPressed() (int, bool) {
	if t.first == nil {
		return 0, false
	}
	return *t.first, true
}

// Update consumes one poll of connected pads.
func (t *ComboTracker) Update(pads []Gamepad) Frame {
	current := map[int]struct{}{}
	if pad := t.selectPad(pads); pad != nil {
		for i, down := range pad.Buttons {
			if !down {
				continue
			}
			if _, ok := t.blacklist[i]; ok {
				continue
			}
			current[i] = struct{}{}
		}
	}

	frame := Frame{
		Pressed:    sortedButtons(current),
		NewPresses: difference(current, t.pressed),
		Released:   difference(t.pressed, current),
	}

	if t.first == nil && len(frame.NewPresses) > 0 {
		t.first = Idx(frame.NewPresses[0])
		t.mainSeen = false
	}

	if !t.mainSeen {
		for _, b := range frame.NewPresses {
			if IsComboButton(b) {
				continue
			}
			t.mainSeen = true
			in := Input{GamepadButton: Idx(b)}
			if trigger, ok := t.trigger(current); ok && trigger != b {
				in.GamepadTrigger = Idx(trigger)
			}
			frame.Press = &in
			break
		}
	}

	if !t.mainSeen && t.first != nil && len(current) == 0 && containsButton(frame.Released, *t.first) {
		frame.Release = &Input{GamepadButton: Idx(*t.first)}
	}

	if len(current) == 0 {
		t.first = nil
		t.mainSeen = false
	}
	t.pressed = current
	return frame
}

// Live describes the currently held pad combination. A combo button held alone
// yields a trigger-only partial input.
func (t *ComboTracker) Live() Input {
	if len(t.pressed) == 0 {
		return Input{}
	}
	var in Input
	if t.first != nil && !IsComboButton(*t.first) {
		if _, ok := t.pressed[*t.first]; ok {
			in.GamepadButton = Idx(*t.first)
		}
	}
	if in.GamepadButton == nil {
		for _, b := range sortedButtons(t.pressed) {
			if !IsComboButton(b) {
				in.GamepadButton = Idx(b)
				break
			}
		}
	}
	if trigger, ok := t.trigger(t.pressed); ok {
		if in.GamepadButton == nil || *in.GamepadButton != trigger {
			in.GamepadTrigger = Idx(trigger)
		}
	}
	return in
}

// trigger returns the first pressed button when it is a combo button still held.
func (t *ComboTracker) trigger(held map[int]struct{}) (int, bool) {
	if t.first == nil || !IsComboButton(*t.first) {
		return 0, false
	}
	if _, ok := held[*t.first]; !ok {
		return 0, false
	}
	return *t.first, true
}

// selectPad pins tracking to one pad. Another pad takes over only once the
// pinned one has nothing held and the other registers a press.
func (t *ComboTracker) selectPad(pads []Gamepad) *Gamepad {
	var pinned *Gamepad
	if t.pad >= 0 {
		pinned = findPad(pads, t.pad)
		if pinned != nil && (len(t.pressed) > 0 || pinned.AnyPressed()) {
			return pinned
		}
	}
	for i := range pads {
		pad := &pads[i]
		if !pad.Connected || !pad.AnyPressed() {
			continue
		}
		if pad.Index != t.pad {
			t.pad = pad.Index
			t.pressed = map[int]struct{}{}
			t.first = nil
			t.mainSeen = false
		}
		return pad
	}
	return pinned
}

func findPad(pads []Gamepad, index int) *Gamepad {
	for i := range pads {
		if pads[i].Index == index && pads[i].Connected {
			return &pads[i]
		}
	}
	return nil
}

func sortedButtons(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for b := range set {
		out = append(out, b)
	}
	sort.Ints(out)
	return out
}

// difference returns a - b in index order.
func difference(a, b map[int]struct{}) []int {
	var out []int
	for v := range a {
		if _, ok := b[v]; !ok {
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

func containsButton(list []int, button int) bool {
	for _, b := range list {
		if b == button {
			return true
		}
	}
	return false
}

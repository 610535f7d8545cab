package capture

import "testing"

func update(t *ComboTracker, buttons ...int) Frame {
	return t.Update([]Gamepad{padWith(0, buttons...)})
}

func TestComboSameFrameUsesIndexOrder(t *testing.T) {
	tests := []struct {
		name    string
		pressed []int
		want    Input
	}{
		{"main below combo index", []int{2, 6}, Input{GamepadButton: Idx(2)}},
		{"combo below main index", []int{4, 12}, Input{GamepadButton: Idx(12), GamepadTrigger: Idx(4)}},
	}
	for _, tt := range tests {
		tracker := NewComboTracker(nil)
		frame := update(tracker, tt.pressed...)
		if frame.Press == nil {
			t.Fatalf("%s: expected press emission", tt.name)
		}
		if !frame.Press.Equal(tt.want) {
			t.Fatalf("%s: got %v, want %v", tt.name, *frame.Press, tt.want)
		}
	}
}

func TestComboSecondTriggerDoesNotUpgrade(t *testing.T) {
	tracker := NewComboTracker(nil)
	update(tracker, 6)
	update(tracker, 6, 4)
	frame := update(tracker, 6, 4, 0)

	want := Input{GamepadButton: Idx(0), GamepadTrigger: Idx(6)}
	if frame.Press == nil || !frame.Press.Equal(want) {
		t.Fatalf("expected %v, got %v", want, frame.Press)
	}
}

func TestComboTriggerMustStillBeHeld(t *testing.T) {
	tracker := NewComboTracker(nil)
	update(tracker, 6)
	update(tracker, 6, 5)
	update(tracker, 5)
	frame := update(tracker, 5, 1)

	want := Input{GamepadButton: Idx(1)}
	if frame.Press == nil || !frame.Press.Equal(want) {
		t.Fatalf("expected %v, got %v", want, frame.Press)
	}
}

func TestComboFirstPressedResetsOnEmpty(t *testing.T) {
	tracker := NewComboTracker(nil)
	update(tracker, 3)
	if first, ok := tracker.FirstPressed(); !ok || first != 3 {
		t.Fatalf("expected first pressed 3, got %d %v", first, ok)
	}
	update(tracker)
	if _, ok := tracker.FirstPressed(); ok {
		t.Fatalf("expected first pressed to reset")
	}
}

func TestComboReleaseOnlyForLoneCombo(t *testing.T) {
	tracker := NewComboTracker(nil)
	update(tracker, 5)
	update(tracker, 5, 7)
	frame := update(tracker, 7)
	if frame.Release != nil {
		t.Fatalf("release with buttons still held must not emit: %v", *frame.Release)
	}
	frame = update(tracker)
	if frame.Release != nil {
		t.Fatalf("only the first pressed combo button may emit on release")
	}

	update(tracker, 5)
	update(tracker, 5, 7)
	update(tracker, 5)
	frame = update(tracker)
	if frame.Release == nil || !frame.Release.Equal(Input{GamepadButton: Idx(5)}) {
		t.Fatalf("expected lone combo release of 5, got %v", frame.Release)
	}
}

func TestComboBlacklist(t *testing.T) {
	tracker := NewComboTracker(map[int]struct{}{8: {}, 9: {}})
	frame := update(tracker, 8, 9)
	if len(frame.Pressed) != 0 || frame.Press != nil {
		t.Fatalf("blacklisted buttons must be ignored: %+v", frame)
	}
}

func TestComboPinsActivePad(t *testing.T) {
	tracker := NewComboTracker(nil)
	tracker.Update([]Gamepad{padWith(0, 2), padWith(1)})
	if tracker.Pad() != 0 {
		t.Fatalf("expected pad 0, got %d", tracker.Pad())
	}
	frame := tracker.Update([]Gamepad{padWith(0, 2), padWith(1, 3)})
	if tracker.Pad() != 0 || len(frame.NewPresses) != 0 {
		t.Fatalf("pad 1 must not take over while pad 0 is held")
	}
	frame = tracker.Update([]Gamepad{padWith(0), padWith(1, 3)})
	if tracker.Pad() != 0 || len(frame.Released) != 1 {
		t.Fatalf("expected pad 0 release to be reported first, got pad %d %+v", tracker.Pad(), frame)
	}
	tracker.Update([]Gamepad{padWith(0), padWith(1, 3)})
	if tracker.Pad() != 1 {
		t.Fatalf("expected switch to pad 1 after pad 0 released, got %d", tracker.Pad())
	}
}

func TestComboDisconnectReleases(t *testing.T) {
	tracker := NewComboTracker(nil)
	update(tracker, 4)
	frame := tracker.Update(nil)
	if len(frame.Released) != 1 || frame.Released[0] != 4 {
		t.Fatalf("expected 4 released on disconnect, got %v", frame.Released)
	}
	if tracker.Held() {
		t.Fatalf("expected nothing held")
	}
}

func TestComboLive(t *testing.T) {
	tracker := NewComboTracker(nil)
	if !tracker.Live().IsEmpty() {
		t.Fatalf("expected empty live input")
	}
	update(tracker, 6)
	if got := tracker.Live(); !got.Equal(Input{GamepadTrigger: Idx(6)}) || got.IsComplete() {
		t.Fatalf("expected trigger-only partial, got %v", got)
	}
	update(tracker, 6, 3)
	if got := tracker.Live(); !got.Equal(Input{GamepadButton: Idx(3), GamepadTrigger: Idx(6)}) {
		t.Fatalf("expected 6+3, got %v", got)
	}
}

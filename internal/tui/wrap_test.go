package tui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/twirl/internal/capture"
	"github.com/verte-zerg/twirl/internal/model"
)

func plainChips(labels ...string) []chip {
	out := make([]chip, len(labels))
	for i, l := range labels {
		out[i] = chip{s: l, width: len(l)}
	}
	return out
}

func TestWrapChipsBreaksAtWidth(t *testing.T) {
	got := wrapChips(plainChips("aaa", "bbb", "ccc"), 8)
	if got != "aaa  bbb\nccc" {
		t.Fatalf("unexpected wrap %q", got)
	}
}

func TestWrapChipsOversizedChip(t *testing.T) {
	got := wrapChips(plainChips("a", "overlong", "b"), 4)
	if got != "a\noverlong\nb" {
		t.Fatalf("unexpected wrap %q", got)
	}
}

func TestWrapChipsNoWidth(t *testing.T) {
	if got := wrapChips(plainChips("a", "b"), 0); got != "a  b" {
		t.Fatalf("unexpected wrap %q", got)
	}
	if wrapChips(nil, 10) != "" {
		t.Fatalf("expected empty output")
	}
}

func TestStepLabelFollowsSettings(t *testing.T) {
	key := capture.Input{Ctrl: true, KeyCode: "Digit1", KeyName: "1"}
	step := model.Step{Name: "Fire", Key: &key}
	settings := model.DefaultSettings()
	if got := stepLabel(step, settings); got != "Fire [Ctrl+1]" {
		t.Fatalf("unexpected label %q", got)
	}
	settings.ShowKeybind = false
	if got := stepLabel(step, settings); got != "Fire" {
		t.Fatalf("unexpected label %q", got)
	}
	settings.ShowName = false
	if got := stepLabel(step, settings); got != "?" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestBuildChipsWidthIgnoresStyling(t *testing.T) {
	chips := buildChips([]model.Step{{Name: "火"}}, model.Settings{ShowName: true})
	if len(chips) != 1 || chips[0].width != 2 || !strings.Contains(chips[0].s, "火") {
		t.Fatalf("unexpected chip %+v", chips)
	}
}

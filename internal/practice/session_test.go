package practice

import (
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/twirl/internal/capture"
	"github.com/verte-zerg/twirl/internal/model"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func key(code, name string) *capture.Input {
	return &capture.Input{KeyCode: code, KeyName: name}
}

func testSteps() []model.Step {
	return []model.Step{
		{Name: "Fire", Key: key("Digit1", "1")},
		{Name: "Unbound"},
		{Name: "Blizzard", Key: key("Digit2", "2")},
		{Name: "Thunder", Key: key("Digit3", "3")},
	}
}

func newTestSession(t *testing.T, behavior model.ErrorBehavior, timeout time.Duration) (*Session, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1000, 0)}
	settings := model.DefaultSettings()
	settings.ErrorBehavior = behavior
	settings.Timeout = timeout
	s, err := NewSession(testSteps(), Options{Rotation: "Opener", Settings: settings, Now: clock.Now})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s, clock
}

func TestNewSessionSkipsUnboundSteps(t *testing.T) {
	s, _ := newTestSession(t, model.ErrorStay, 0)
	if _, total := s.Position(); total != 3 {
		t.Fatalf("expected 3 bound steps, got %d", total)
	}
	if _, err := NewSession([]model.Step{{Name: "x"}}, Options{}); !errors.Is(err, ErrNoSteps) {
		t.Fatalf("expected ErrNoSteps, got %v", err)
	}
}

func TestSubmitWalksRotation(t *testing.T) {
	s, clock := newTestSession(t, model.ErrorStay, 0)
	inputs := []*capture.Input{key("Digit1", "1"), key("Digit2", "2"), key("Digit3", "3")}
	for i, in := range inputs {
		clock.advance(250 * time.Millisecond)
		res := s.Submit(*in)
		if res.Outcome != OutcomeHit {
			t.Fatalf("step %d: expected hit, got %v", i, res.Outcome)
		}
		if res.Done != (i == len(inputs)-1) {
			t.Fatalf("step %d: unexpected done %v", i, res.Done)
		}
	}
	stats, steps := s.Finish()
	if stats.Correct != 3 || stats.Incorrect != 0 || stats.DurationMs != 750 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if len(steps) != 3 || steps[0].Step != "Fire" || steps[0].LatencySumMs != 250 {
		t.Fatalf("unexpected step stats %+v", steps)
	}
}

func TestMissBehaviors(t *testing.T) {
	wrong := capture.Input{KeyCode: "KeyX", KeyName: "X"}
	tests := []struct {
		behavior model.ErrorBehavior
		wantPos  int
	}{
		{model.ErrorStay, 1},
		{model.ErrorContinue, 2},
		{model.ErrorRestart, 0},
	}
	for _, tt := range tests {
		s, _ := newTestSession(t, tt.behavior, 0)
		s.Submit(*key("Digit1", "1"))
		res := s.Submit(wrong)
		if res.Outcome != OutcomeMiss || res.Step.Name != "Blizzard" {
			t.Fatalf("%s: unexpected result %+v", tt.behavior, res)
		}
		if pos, _ := s.Position(); pos != tt.wantPos {
			t.Fatalf("%s: expected position %d, got %d", tt.behavior, tt.wantPos, pos)
		}
	}
}

func TestModifierMismatchIsMiss(t *testing.T) {
	s, _ := newTestSession(t, model.ErrorStay, 0)
	res := s.Submit(capture.Input{Shift: true, KeyCode: "Digit1", KeyName: "1"})
	if res.Outcome != OutcomeMiss {
		t.Fatalf("extra modifier must not match, got %v", res.Outcome)
	}
}

func TestTickTimeout(t *testing.T) {
	s, clock := newTestSession(t, model.ErrorContinue, time.Second)
	clock.advance(900 * time.Millisecond)
	if res := s.Tick(); res.Outcome != OutcomeNone {
		t.Fatalf("expected no timeout yet, got %v", res.Outcome)
	}
	if got := s.Remaining(); got != 100*time.Millisecond {
		t.Fatalf("unexpected remaining %v", got)
	}
	clock.advance(100 * time.Millisecond)
	res := s.Tick()
	if res.Outcome != OutcomeTimeout || res.Step.Name != "Fire" {
		t.Fatalf("expected timeout on Fire, got %+v", res)
	}
	if step, _ := s.Current(); step.Name != "Blizzard" {
		t.Fatalf("continue must advance after timeout, got %s", step.Name)
	}
	if res := s.Tick(); res.Outcome != OutcomeNone {
		t.Fatalf("timer must restart for the next step")
	}
	stats, _ := s.Finish()
	if stats.Timeouts != 1 || stats.Incorrect != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestContinueOnLastStepCompletes(t *testing.T) {
	s, _ := newTestSession(t, model.ErrorContinue, 0)
	s.Submit(*key("Digit1", "1"))
	s.Submit(*key("Digit2", "2"))
	res := s.Submit(*key("Digit9", "9"))
	if !res.Done || !s.Done() {
		t.Fatalf("expected run to finish")
	}
	if res := s.Submit(*key("Digit3", "3")); res.Outcome != OutcomeNone {
		t.Fatalf("submissions after the end must be ignored")
	}
	if got := s.Accuracy(); got < 0.66 || got > 0.67 {
		t.Fatalf("unexpected accuracy %v", got)
	}
}

func TestUpcoming(t *testing.T) {
	s, _ := newTestSession(t, model.ErrorStay, 0)
	next := s.Upcoming(5)
	if len(next) != 2 || next[0].Name != "Blizzard" {
		t.Fatalf("unexpected upcoming %+v", next)
	}
}

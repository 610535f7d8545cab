package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/twirl/internal/capture"
	"github.com/verte-zerg/twirl/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "twirl.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestRotationLifecycle(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	created, err := st.CreateRotation(ctx, "  BLM Opener ", "blm")
	if err != nil {
		t.Fatalf("create rotation: %v", err)
	}
	if created.Name != "BLM Opener" || created.Slug != "blm-opener" || created.Job != "blm" {
		t.Fatalf("unexpected rotation %+v", created)
	}
	if _, err := st.CreateRotation(ctx, "BLM Opener", ""); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if _, err := st.CreateRotation(ctx, "Other", "xyz"); err == nil {
		t.Fatalf("expected unknown job error")
	}

	fire := capture.Input{KeyCode: "Digit1", KeyName: "1"}
	if _, err := st.AddStep(ctx, "BLM Opener", model.Step{Name: "Fire", Key: &fire}); err != nil {
		t.Fatalf("add step: %v", err)
	}
	if _, err := st.AddStep(ctx, "blm-opener", model.Step{Name: "Blizzard", Duration: 2.5}); err != nil {
		t.Fatalf("add step by slug: %v", err)
	}

	got, err := st.GetRotation(ctx, "BLM Opener")
	if err != nil {
		t.Fatalf("get rotation: %v", err)
	}
	if len(got.Steps) != 2 || got.Steps[0].Name != "Fire" || got.Steps[1].Name != "Blizzard" {
		t.Fatalf("unexpected steps %+v", got.Steps)
	}
	if got.Steps[0].Key == nil || !got.Steps[0].Key.Equal(fire) {
		t.Fatalf("keybind not persisted: %+v", got.Steps[0].Key)
	}
	if got.Steps[1].Key != nil || got.Steps[1].Duration != 2.5 {
		t.Fatalf("unexpected second step %+v", got.Steps[1])
	}

	if err := st.DeleteRotation(ctx, "BLM Opener"); err != nil {
		t.Fatalf("delete rotation: %v", err)
	}
	if _, err := st.GetRotation(ctx, "BLM Opener"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := st.DeleteRotation(ctx, "BLM Opener"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSetStepKeyRoundTripsAllFamilies(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if _, err := st.CreateRotation(ctx, "Keys", ""); err != nil {
		t.Fatalf("create rotation: %v", err)
	}
	names := []string{"Keyboard", "Mouse", "Pad"}
	for _, name := range names {
		if _, err := st.AddStep(ctx, "Keys", model.Step{Name: name}); err != nil {
			t.Fatalf("add step: %v", err)
		}
	}
	keys := []capture.Input{
		{Ctrl: true, Shift: true, KeyCode: "KeyQ", KeyName: "Q"},
		{Alt: true, MouseButton: capture.Idx(4)},
		{GamepadButton: capture.Idx(0), GamepadTrigger: capture.Idx(6)},
	}
	for i, name := range names {
		key := keys[i]
		if err := st.SetStepKey(ctx, "Keys", name, &key); err != nil {
			t.Fatalf("set key: %v", err)
		}
	}
	got, err := st.GetRotation(ctx, "Keys")
	if err != nil {
		t.Fatalf("get rotation: %v", err)
	}
	for i, step := range got.Steps {
		if step.Key == nil || !step.Key.Equal(keys[i]) {
			t.Fatalf("step %s: got %+v, want %+v", step.Name, step.Key, keys[i])
		}
	}

	if err := st.SetStepKey(ctx, "Keys", "Mouse", nil); err != nil {
		t.Fatalf("clear key: %v", err)
	}
	got, _ = st.GetRotation(ctx, "Keys")
	if got.Steps[1].Key != nil {
		t.Fatalf("expected cleared key")
	}
	if err := st.SetStepKey(ctx, "Keys", "Missing", &keys[0]); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReplaceSteps(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if _, err := st.CreateRotation(ctx, "Swap", ""); err != nil {
		t.Fatalf("create rotation: %v", err)
	}
	if _, err := st.AddStep(ctx, "Swap", model.Step{Name: "Old"}); err != nil {
		t.Fatalf("add step: %v", err)
	}
	if err := st.ReplaceSteps(ctx, "Swap", []model.Step{{Name: "A"}, {Name: "B"}}); err != nil {
		t.Fatalf("replace steps: %v", err)
	}
	rotations, err := st.ListRotations(ctx)
	if err != nil {
		t.Fatalf("list rotations: %v", err)
	}
	if len(rotations) != 1 || len(rotations[0].Steps) != 2 || rotations[0].Steps[0].Name != "A" {
		t.Fatalf("unexpected rotations %+v", rotations)
	}
}

func TestSessionsAndWeakSteps(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		stats := model.SessionStats{
			StartedAt:  start,
			EndedAt:    start.Add(20 * time.Second),
			Rotation:   "Opener",
			Correct:    8,
			Incorrect:  2,
			DurationMs: 20000,
		}
		steps := []model.StepStats{
			{Step: "Fire", Correct: 5, LatencySumMs: 900, LatencyCount: 4},
			{Step: "Blizzard", Correct: 3, Incorrect: 2},
		}
		if _, err := st.InsertSession(ctx, stats, steps); err != nil {
			t.Fatalf("insert session: %v", err)
		}
	}
	if _, err := st.InsertSession(ctx, model.SessionStats{Rotation: "Other", EndedAt: time.Unix(500, 0)}, nil); err != nil {
		t.Fatalf("insert other: %v", err)
	}

	sessions, err := st.ListSessions(ctx, model.StatsConfig{Rotation: "Opener"})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 3 || sessions[0].Rotation != "Opener" {
		t.Fatalf("unexpected sessions %+v", sessions)
	}
	if !sessions[0].EndedAt.Before(sessions[2].EndedAt) {
		t.Fatalf("sessions must be ordered by end time")
	}

	weak, err := st.GetWeakSteps(ctx, 2, "Opener")
	if err != nil {
		t.Fatalf("weak steps: %v", err)
	}
	totals := map[string]model.StepAggregate{}
	for _, agg := range weak {
		totals[agg.Step] = agg
	}
	if totals["Blizzard"].Incorrect != 4 || totals["Fire"].LatencyCount != 8 {
		t.Fatalf("unexpected aggregates %+v", totals)
	}

	aggs, err := st.ListStepAggregatesForSessions(ctx, []int64{sessions[0].SessionID})
	if err != nil {
		t.Fatalf("aggregates: %v", err)
	}
	if len(aggs) != 2 {
		t.Fatalf("expected 2 aggregates, got %d", len(aggs))
	}
}

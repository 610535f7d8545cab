package stats

import (
	"testing"

	"github.com/verte-zerg/twirl/internal/model"
)

func TestTopStepsByFrequency(t *testing.T) {
	aggs := []model.StepAggregate{
		{Step: "Blizzard", Correct: 3, Incorrect: 1},
		{Step: "Aero", Correct: 2, Incorrect: 2},
		{Step: "Cure", Correct: 1, Incorrect: 0},
	}
	top := TopStepsByFrequency(aggs, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(top))
	}
	if top[0] != "Aero" || top[1] != "Blizzard" {
		t.Fatalf("unexpected order: %v", top)
	}
}

func TestSelectWeakSteps(t *testing.T) {
	aggs := []model.StepAggregate{
		{Step: "Fire", Correct: 9, Incorrect: 1},
		{Step: "Blizzard", Correct: 1, Incorrect: 1},
		{Step: "Thunder", Correct: 5},
		{Step: "Aero", Correct: 3, Incorrect: 1},
	}
	weak := SelectWeakSteps(aggs, 2)
	if len(weak) != 2 {
		t.Fatalf("expected 2 weak steps, got %v", weak)
	}
	for _, name := range []string{"Blizzard", "Aero"} {
		if _, ok := weak[name]; !ok {
			t.Fatalf("expected %s to be weak, got %v", name, weak)
		}
	}
	if all := SelectWeakSteps(aggs, 0); len(all) != 3 {
		t.Fatalf("steps without misses are never weak, got %v", all)
	}
}

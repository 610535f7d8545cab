package generator

import (
	"testing"

	"github.com/verte-zerg/twirl/internal/model"
)

func steps(names ...string) []model.Step {
	out := make([]model.Step, len(names))
	for i, n := range names {
		out[i] = model.Step{Name: n}
	}
	return out
}

func TestGenerateNoImmediateRepeats(t *testing.T) {
	g := NewWithSeed(1)
	seq := g.Generate(steps("a", "b", "c"), 200)
	if len(seq) != 200 {
		t.Fatalf("expected 200 steps, got %d", len(seq))
	}
	for i := 1; i < len(seq); i++ {
		if seq[i].Name == seq[i-1].Name {
			t.Fatalf("repeat at %d: %s", i, seq[i].Name)
		}
	}
}

func TestGenerateSingleStep(t *testing.T) {
	seq := NewWithSeed(1).Generate(steps("only"), 3)
	if len(seq) != 3 || seq[2].Name != "only" {
		t.Fatalf("unexpected sequence %+v", seq)
	}
	if NewWithSeed(1).Generate(nil, 3) != nil {
		t.Fatalf("expected nil for no steps")
	}
}

func TestGenerateWeightedFavorsWeakSteps(t *testing.T) {
	g := NewWithSeed(7)
	weak := map[string]struct{}{"c": {}}
	seq := g.GenerateWeighted(steps("a", "b", "c", "d"), 2000, weak, 10)
	counts := map[string]int{}
	for _, s := range seq {
		counts[s.Name]++
	}
	if counts["c"] <= counts["a"]*2 {
		t.Fatalf("weak step should dominate, got %v", counts)
	}
}

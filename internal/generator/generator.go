// Package generator builds drill sequences from rotation steps.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/twirl/internal/model"
)

// Generator produces randomized drill sequences.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate picks count steps uniformly. The same step is never drawn twice in a
// row when there is more than one step to choose from.
func (g *Generator) Generate(steps []model.Step, count int) []model.Step {
	weights := make([]float64, len(steps))
	for i := range weights {
		weights[i] = 1
	}
	return g.pick(steps, weights, count)
}

// GenerateWeighted picks count steps with weight 1+factor for steps named in weak.
func (g *Generator) GenerateWeighted(steps []model.Step, count int, weak map[string]struct{}, factor float64) []model.Step {
	weights := make([]float64, len(steps))
	for i, s := range steps {
		weights[i] = 1
		if _, ok := weak[s.Name]; ok {
			weights[i] += factor
		}
	}
	return g.pick(steps, weights, count)
}

func (g *Generator) pick(steps []model.Step, weights []float64, count int) []model.Step {
	if len(steps) == 0 || count <= 0 {
		return nil
	}
	result := make([]model.Step, 0, count)
	prev := -1
	for i := 0; i < count; i++ {
		idx := g.draw(weights, prev)
		result = append(result, steps[idx])
		prev = idx
	}
	return result
}

// draw returns a weighted random index, excluding skip when another index exists.
func (g *Generator) draw(weights []float64, skip int) int {
	if len(weights) == 1 {
		return 0
	}
	total := 0.0
	for i, w := range weights {
		if i != skip {
			total += w
		}
	}
	r := g.rnd.Float64() * total
	acc := 0.0
	last := 0
	for i, w := range weights {
		if i == skip {
			continue
		}
		acc += w
		last = i
		if r < acc {
			return i
		}
	}
	return last
}

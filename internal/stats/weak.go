package stats

import (
	"sort"

	"github.com/verte-zerg/twirl/internal/model"
)

// SelectWeakSteps selects the lowest-accuracy steps from aggregates.
// Steps that were never missed are not considered weak.
func SelectWeakSteps(aggs []model.StepAggregate, top int) map[string]struct{} {
	weak := map[string]struct{}{}
	candidates := make([]model.StepAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Incorrect > 0 {
			candidates = append(candidates, agg)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai, aj := accuracy(candidates[i]), accuracy(candidates[j])
		if ai == aj {
			return candidates[i].Step < candidates[j].Step
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	for _, c := range candidates[:top] {
		weak[c.Step] = struct{}{}
	}
	return weak
}

func accuracy(agg model.StepAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}

package stats

import (
	"sort"

	"github.com/verte-zerg/twirl/internal/model"
)

// TopStepsByFrequency returns the top N steps by total attempts.
func TopStepsByFrequency(aggs []model.StepAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	sorted := make([]model.StepAggregate, len(aggs))
	copy(sorted, aggs)
	sort.Slice(sorted, func(i, j int) bool {
		ti := sorted[i].Correct + sorted[i].Incorrect
		tj := sorted[j].Correct + sorted[j].Incorrect
		if ti == tj {
			return sorted[i].Step < sorted[j].Step
		}
		return ti > tj
	})
	n = min(n, len(sorted))
	out := make([]string, n)
	for i := range out {
		out[i] = sorted[i].Step
	}
	return out
}

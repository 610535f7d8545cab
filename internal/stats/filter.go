package stats

import (
	"strings"

	"github.com/verte-zerg/twirl/internal/model"
)

// ParseStepFilter splits a comma-separated list of step names.
func ParseStepFilter(input string) []string {
	var names []string
	seen := map[string]struct{}{}
	for _, part := range strings.Split(input, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}
	return names
}

// filterSteps keeps aggregates whose step is named in filter, case-insensitively.
// An empty filter keeps everything.
func filterSteps(aggs []model.StepAggregate, filter string) []model.StepAggregate {
	names := ParseStepFilter(filter)
	if len(names) == 0 {
		return aggs
	}
	keep := make(map[string]struct{}, len(names))
	for _, n := range names {
		keep[strings.ToLower(n)] = struct{}{}
	}
	out := make([]model.StepAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if _, ok := keep[strings.ToLower(agg.Step)]; ok {
			out = append(out, agg)
		}
	}
	return out
}

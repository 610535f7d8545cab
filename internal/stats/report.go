package stats

import (
	"context"

	"github.com/verte-zerg/twirl/internal/model"
	"github.com/verte-zerg/twirl/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions         []model.SessionAggregate
	WindowSessionIDs []int64
	StepAggsAll      []model.StepAggregate
	StepAggsWindow   []model.StepAggregate
	// Keybinds maps step names of the filtered rotation to their labels.
	Keybinds map[string]string
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}

	allIDs := sessionIDs(sessions)
	windowIDs := lastSessionIDs(sessions, cfg.CurveWindow)
	stepAggsAll, err := st.ListStepAggregatesForSessions(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}
	stepAggsWindow, err := st.ListStepAggregatesForSessions(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}

	keybinds := map[string]string{}
	if cfg.Rotation != "" {
		// A deleted rotation still has history; it just has no keybinds to show.
		if rot, err := st.GetRotation(ctx, cfg.Rotation); err == nil {
			for _, s := range rot.Steps {
				keybinds[s.Name] = s.Keybind()
			}
		}
	}

	return Report{
		Sessions:         sessions,
		WindowSessionIDs: windowIDs,
		StepAggsAll:      filterSteps(stepAggsAll, cfg.Steps),
		StepAggsWindow:   filterSteps(stepAggsWindow, cfg.Steps),
		Keybinds:         keybinds,
	}, nil
}

func sessionIDs(sessions []model.SessionAggregate) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

func lastSessionIDs(sessions []model.SessionAggregate, window int) []int64 {
	if window <= 0 || len(sessions) <= window {
		return sessionIDs(sessions)
	}
	return sessionIDs(sessions[len(sessions)-window:])
}

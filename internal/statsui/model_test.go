package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/twirl/internal/model"
	"github.com/verte-zerg/twirl/internal/stats"
)

func fixedReport() stats.Report {
	ended := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return stats.Report{
		Sessions: []model.SessionAggregate{
			{SessionID: 1, Rotation: "Opener", EndedAt: ended, Correct: 18, Incorrect: 2, DurationMs: 20000},
			{SessionID: 2, Rotation: "Opener", EndedAt: ended.Add(time.Hour), Correct: 20, Incorrect: 0, DurationMs: 15000},
		},
		StepAggsAll: []model.StepAggregate{
			{Step: "Fire", Correct: 10, Incorrect: 2, LatencySumMs: 3000, LatencyCount: 10},
			{Step: "Blizzard", Correct: 28, Incorrect: 0, LatencySumMs: 5600, LatencyCount: 28},
		},
		Keybinds: map[string]string{"Fire": "1"},
	}
}

func TestModelRendersTabs(t *testing.T) {
	var got model.StatsConfig
	m := newModel(func(_ context.Context, cfg model.StatsConfig) (stats.Report, error) {
		got = cfg
		return fixedReport(), nil
	}, model.StatsConfig{Rotation: "Opener", CurveWindow: 5})
	if got.Rotation != "Opener" {
		t.Fatalf("expected config to reach the loader, got %+v", got)
	}
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	view := m.View()
	if !strings.Contains(view, "Avg APM") || !strings.Contains(view, "rotation=Opener") {
		t.Fatalf("overview missing expected content:\n%s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	view = m.View()
	if !strings.Contains(view, "Fire") || !strings.Contains(view, "83.33%") {
		t.Fatalf("step table missing expected rows:\n%s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if !strings.Contains(m.View(), "Ended") {
		t.Fatalf("sessions tab missing header:\n%s", m.View())
	}
}

func TestModelShowsLoadError(t *testing.T) {
	m := newModel(func(context.Context, model.StatsConfig) (stats.Report, error) {
		return stats.Report{}, errors.New("boom")
	}, model.StatsConfig{CurveWindow: 1})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	if !strings.Contains(m.View(), "boom") {
		t.Fatalf("expected error in footer:\n%s", m.View())
	}
}

func TestParseFilter(t *testing.T) {
	cfg, err := parseFilter([]string{"Opener", "2026-01-02", "10", "7", "fire, ice,fire"})
	if err != nil {
		t.Fatalf("parseFilter: %v", err)
	}
	if cfg.Rotation != "Opener" || cfg.Last != 10 || cfg.CurveWindow != 7 || cfg.Steps != "fire,ice" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Since == nil || cfg.Since.Format("2006-01-02") != "2026-01-02" {
		t.Fatalf("unexpected since: %v", cfg.Since)
	}

	bad := [][]string{
		{"", "01/02/2026", "", "", ""},
		{"", "", "-1", "", ""},
		{"", "", "", "0", ""},
	}
	for _, values := range bad {
		if _, err := parseFilter(values); err == nil {
			t.Fatalf("expected error for %v", values)
		}
	}
}

func TestCurveWindowSteps(t *testing.T) {
	tests := []struct{ in, next, prev int }{
		{1, 5, 1},
		{5, 10, 1},
		{7, 10, 5},
		{10, 15, 5},
	}
	for _, tt := range tests {
		if got := nextCurveWindow(tt.in); got != tt.next {
			t.Fatalf("nextCurveWindow(%d) = %d, want %d", tt.in, got, tt.next)
		}
		if got := prevCurveWindow(tt.in); got != tt.prev {
			t.Fatalf("prevCurveWindow(%d) = %d, want %d", tt.in, got, tt.prev)
		}
	}
}

package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/twirl/internal/model"
)

func TestSessionMetrics(t *testing.T) {
	apm, acc := SessionMetrics(30, 10, 30000)
	if apm != 60 || acc != 0.75 {
		t.Fatalf("got apm=%v acc=%v", apm, acc)
	}
	apm, acc = SessionMetrics(3, 1, 0)
	if apm != 0 || acc != 0.75 {
		t.Fatalf("zero duration keeps accuracy, got apm=%v acc=%v", apm, acc)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{5, 5, 5}); got != "+++" {
		t.Fatalf("flat series must render mid level, got %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline")
	}
}

func TestRelativeAge(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "just now"},
		{42 * time.Second, "42s ago"},
		{5 * time.Minute, "5min ago"},
		{3 * time.Hour, "3h ago"},
		{48 * time.Hour, "2d ago"},
		{31 * 24 * time.Hour, "1 month ago"},
		{95 * 24 * time.Hour, "3 months ago"},
	}
	for _, tt := range tests {
		if got := RelativeAge(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("RelativeAge(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestRenderStepTableSortsByAccuracy(t *testing.T) {
	aggs := []model.StepAggregate{
		{Step: "Fire", Correct: 10, LatencySumMs: 5000, LatencyCount: 10},
		{Step: "Blizzard", Correct: 1, Incorrect: 1},
	}
	var buf bytes.Buffer
	if err := RenderStepTable(&buf, aggs, map[string]string{"Fire": "1"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if !strings.HasPrefix(lines[2], "Blizzard -") {
		t.Fatalf("lowest accuracy first, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "500.0") {
		t.Fatalf("expected average latency, got %q", lines[3])
	}
}

func TestRenderSummary(t *testing.T) {
	nowFunc = func() time.Time { return time.Unix(3600, 0) }
	t.Cleanup(func() { nowFunc = time.Now })

	sessions := []model.SessionAggregate{
		{Correct: 30, Incorrect: 10, DurationMs: 30000, EndedAt: time.Unix(0, 0)},
		{Correct: 20, DurationMs: 60000, EndedAt: time.Unix(1800, 0)},
	}
	var buf bytes.Buffer
	if err := RenderSummary(&buf, sessions); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Sessions: 2", "Actions: 60", "Avg APM: 40.00", "Best APM: 60.00", "Avg Accuracy: 87.50%", "Last: 30min ago"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

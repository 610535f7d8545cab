// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/twirl/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes actions per minute and accuracy for a session.
func SessionMetrics(correct, incorrect int, durationMs int64) (apm, accuracy float64) {
	den := float64(correct + incorrect)
	if den > 0 {
		accuracy = float64(correct) / den
	}
	if durationMs <= 0 {
		return 0, accuracy
	}
	minutes := float64(durationMs) / 60000.0
	apm = float64(correct) / minutes
	return apm, accuracy
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	last := len(sparkChars) - 1
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(last)))
		idx = max(0, min(idx, last))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Curves holds the per-session APM and accuracy series after smoothing.
type Curves struct {
	APM      []float64
	Accuracy []float64
}

// BuildCurves computes smoothed APM and accuracy (in percent) per session.
func BuildCurves(sessions []model.SessionAggregate, window int) Curves {
	apms := make([]float64, len(sessions))
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		apm, acc := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		apms[i] = apm
		accs[i] = acc * 100
	}
	return Curves{APM: MovingAverage(apms, window), Accuracy: MovingAverage(accs, window)}
}

// RenderSummary prints a summary block for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalAPM, totalAcc, bestAPM float64
	actions := 0
	for _, s := range sessions {
		apm, acc := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		totalAPM += apm
		totalAcc += acc
		bestAPM = math.Max(bestAPM, apm)
		actions += s.Correct + s.Incorrect
	}
	count := float64(len(sessions))
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Actions: %d", actions),
		fmt.Sprintf("Avg APM: %.2f", totalAPM/count),
		fmt.Sprintf("Best APM: %.2f", bestAPM),
		fmt.Sprintf("Avg Accuracy: %.2f%%", totalAcc/count*100),
		fmt.Sprintf("Last: %s", RelativeAge(sessions[len(sessions)-1].EndedAt, nowFunc())),
		"",
	}
	return writeLines(w, lines)
}

// RenderCurves prints sparkline learning curves for APM and accuracy.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window int) error {
	if len(sessions) == 0 {
		return nil
	}
	curves := BuildCurves(sessions, window)
	lines := []string{
		fmt.Sprintf("Learning Curves (window %d)", max(window, 1)),
		fmt.Sprintf("APM      %s  %s", Sparkline(curves.APM), rangeLabel(curves.APM, "%.1f")),
		fmt.Sprintf("Accuracy %s  %s", Sparkline(curves.Accuracy), rangeLabel(curves.Accuracy, "%.1f%%")),
		"",
	}
	return writeLines(w, lines)
}

func rangeLabel(values []float64, format string) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return fmt.Sprintf("min="+format+" max="+format, lo, hi)
}

// StepRow is one rendered line of the per-step table.
type StepRow struct {
	Step      string
	Keybind   string
	Accuracy  float64
	LatencyMs float64
	Correct   int
	Incorrect int
}

// BuildStepRows converts aggregates into rows sorted by lowest accuracy.
// keybinds maps step names to their keybind label; missing entries render as "-".
func BuildStepRows(aggs []model.StepAggregate, keybinds map[string]string) []StepRow {
	rows := make([]StepRow, 0, len(aggs))
	for _, agg := range aggs {
		label, ok := keybinds[agg.Step]
		if !ok {
			label = "-"
		}
		lat := 0.0
		if agg.LatencyCount > 0 {
			lat = float64(agg.LatencySumMs) / float64(agg.LatencyCount)
		}
		rows = append(rows, StepRow{
			Step:      agg.Step,
			Keybind:   label,
			Accuracy:  accuracy(agg),
			LatencyMs: lat,
			Correct:   agg.Correct,
			Incorrect: agg.Incorrect,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Accuracy == rows[j].Accuracy {
			return rows[i].Step < rows[j].Step
		}
		return rows[i].Accuracy < rows[j].Accuracy
	})
	return rows
}

// RenderStepTable prints per-step aggregates.
func RenderStepTable(w io.Writer, aggs []model.StepAggregate, keybinds map[string]string) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No step stats found.")
		return err
	}
	rows := BuildStepRows(aggs, keybinds)
	headers := []string{"Step", "Keybind", "Accuracy", "Avg Latency (ms)", "Correct", "Incorrect"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.Step,
			r.Keybind,
			fmt.Sprintf("%.2f%%", r.Accuracy*100),
			fmt.Sprintf("%.1f", r.LatencyMs),
			fmt.Sprintf("%d", r.Correct),
			fmt.Sprintf("%d", r.Incorrect),
		})
	}
	lines := append([]string{"Per-Step (Windowed)"}, formatTable(headers, tableRows, map[int]bool{2: true, 3: true, 4: true, 5: true})...)
	return writeLines(w, append(lines, ""))
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/twirl/internal/model"
)

// chip is a pre-rendered label with its display width.
type chip struct {
	s     string
	width int
}

const chipGap = "  "

// stepLabel is the plain text shown for a step under the given settings.
func stepLabel(step model.Step, settings model.Settings) string {
	var parts []string
	if settings.ShowName {
		parts = append(parts, step.Name)
	}
	if settings.ShowKeybind {
		parts = append(parts, "["+step.Keybind()+"]")
	}
	if len(parts) == 0 {
		return "?"
	}
	return strings.Join(parts, " ")
}

func buildChips(steps []model.Step, settings model.Settings) []chip {
	out := make([]chip, 0, len(steps))
	for _, s := range steps {
		label := stepLabel(s, settings)
		out = append(out, chip{
			s:     upcomingStyle.Render(label),
			width: runewidth.StringWidth(label),
		})
	}
	return out
}

// wrapChips lays chips out in lines no wider than width. A chip wider than
// width gets a line of its own.
func wrapChips(chips []chip, width int) string {
	gap := runewidth.StringWidth(chipGap)
	var lines []string
	var line strings.Builder
	lineWidth := 0
	for _, c := range chips {
		if lineWidth > 0 && width > 0 && lineWidth+gap+c.width > width {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			line.WriteString(chipGap)
			lineWidth += gap
		}
		line.WriteString(c.s)
		lineWidth += c.width
	}
	if lineWidth > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

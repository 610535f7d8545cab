// Package steplist loads rotation steps from plain-text files.
//
// Each non-empty line has the form "Name = Keybind". The keybind may be left
// empty to import an unbound step. Lines starting with '#' are comments.
package steplist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/verte-zerg/twirl/internal/capture"
	"github.com/verte-zerg/twirl/internal/model"
)

// LoadSteps reads steps from the provided file path.
func LoadSteps(path string) ([]model.Step, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only step list.
			_ = cerr
		}
	}()
	return ParseSteps(file, path)
}

// ParseSteps reads steps from r; name is used in error messages.
func ParseSteps(r io.Reader, name string) ([]model.Step, error) {
	var steps []model.Step
	seen := map[string]int{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		stepName, keybind, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%s:%d: expected \"Name = Keybind\"", name, lineNo)
		}
		stepName = strings.TrimSpace(stepName)
		if stepName == "" {
			return nil, fmt.Errorf("%s:%d: step name is empty", name, lineNo)
		}
		if prev, dup := seen[stepName]; dup {
			return nil, fmt.Errorf("%s:%d: step %q already defined on line %d", name, lineNo, stepName, prev)
		}
		seen[stepName] = lineNo

		step := model.Step{Name: stepName}
		if keybind = strings.TrimSpace(keybind); keybind != "" {
			in, err := capture.ParseKeybind(keybind)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", name, lineNo, err)
			}
			step.Key = &in
		}
		steps = append(steps, step)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("step list is empty")
	}
	return steps, nil
}

// Format renders steps in the form accepted by ParseSteps.
func Format(w io.Writer, steps []model.Step) error {
	for _, s := range steps {
		keybind := ""
		if s.Key != nil {
			keybind = s.Key.Text()
		}
		if _, err := fmt.Fprintf(w, "%s = %s\n", s.Name, keybind); err != nil {
			return err
		}
	}
	return nil
}

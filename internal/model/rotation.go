package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/twirl/internal/capture"
)

// MaxNameLength bounds rotation names and slugs.
const MaxNameLength = 50

// ErrInvalidName is returned for empty or overlong rotation names.
var ErrInvalidName = errors.New("invalid rotation name")

// Step is one action of a rotation.
type Step struct {
	ID       int64
	Name     string
	Icon     string
	Duration float64
	Key      *capture.Input
}

// Bound reports whether the step has a keybind.
func (s Step) Bound() bool {
	return s.Key != nil && s.Key.IsComplete()
}

// Keybind renders the step's keybind.
func (s Step) Keybind() string {
	if s.Key == nil {
		return "None"
	}
	return s.Key.String()
}

// Rotation is an ordered list of steps practiced together.
type Rotation struct {
	ID    int64
	Name  string
	Slug  string
	Job   string
	Steps []Step
}

// BoundSteps returns the steps that have a keybind, in order.
func (r Rotation) BoundSteps() []Step {
	out := make([]Step, 0, len(r.Steps))
	for _, s := range r.Steps {
		if s.Bound() {
			out = append(out, s)
		}
	}
	return out
}

// ValidateRotationName trims name and checks its length.
func ValidateRotationName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return "", fmt.Errorf("%w: name cannot be longer than %d characters", ErrInvalidName, MaxNameLength)
	}
	return trimmed, nil
}

// Slug derives the URL-safe identifier of a rotation name.
func Slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r == ' ':
			b.WriteByte('-')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > MaxNameLength {
		slug = slug[:MaxNameLength]
	}
	return slug
}

// Package practice runs a rotation: it walks the expected steps, matches captured
// inputs against them and accumulates per-step statistics.
package practice

import (
	"errors"
	"time"

	"github.com/verte-zerg/twirl/internal/capture"
	"github.com/verte-zerg/twirl/internal/model"
)

// ErrNoSteps is returned when a rotation has no bound step to practice.
var ErrNoSteps = errors.New("rotation has no steps with a keybind")

// Outcome classifies a submitted input or a timeout.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomeHit
	OutcomeMiss
	OutcomeTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeMiss:
		return "miss"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "none"
	}
}

// Result describes what happened to the step that was current.
type Result struct {
	Outcome Outcome
	Step    model.Step
	// Done is set once the last step has been left.
	Done bool
}

// Options configures a Session.
type Options struct {
	Rotation string
	Drill    bool
	Settings model.Settings
	Now      func() time.Time
}

// Session is a single practice run. It is not safe for concurrent use.
type Session struct {
	opts  Options
	steps []model.Step
	now   func() time.Time

	pos         int
	done        bool
	started     time.Time
	ended       time.Time
	stepStarted time.Time

	correct   int
	incorrect int
	timeouts  int
	perStep   map[string]*model.StepStats
	order     []string
}

// NewSession starts a run over steps. Steps without a keybind are skipped.
func NewSession(steps []model.Step, opts Options) (*Session, error) {
	bound := make([]model.Step, 0, len(steps))
	for _, s := range steps {
		if s.Bound() {
			bound = append(bound, s)
		}
	}
	if len(bound) == 0 {
		return nil, ErrNoSteps
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Settings.ErrorBehavior == "" {
		opts.Settings.ErrorBehavior = model.ErrorStay
	}
	now := opts.Now()
	return &Session{
		opts:        opts,
		steps:       bound,
		now:         opts.Now,
		started:     now,
		stepStarted: now,
		perStep:     map[string]*model.StepStats{},
	}, nil
}

// Steps returns the practiced steps in order.
func (s *Session) Steps() []model.Step {
	return s.steps
}

// Current returns the expected step.
func (s *Session) Current() (model.Step, bool) {
	if s.done {
		return model.Step{}, false
	}
	return s.steps[s.pos], true
}

// Upcoming returns up to n steps after the current one.
func (s *Session) Upcoming(n int) []model.Step {
	if s.done || n <= 0 {
		return nil
	}
	start := s.pos + 1
	end := start + n
	if end > len(s.steps) {
		end = len(s.steps)
	}
	if start >= end {
		return nil
	}
	return s.steps[start:end]
}

// Position returns the zero-based index of the current step and the step count.
func (s *Session) Position() (int, int) {
	return s.pos, len(s.steps)
}

// Done reports whether every step has been left.
func (s *Session) Done() bool {
	return s.done
}

// Submit compares a captured input with the current step.
func (s *Session) Submit(in capture.Input) Result {
	step, ok := s.Current()
	if !ok {
		return Result{Done: true}
	}
	now := s.now()
	stats := s.statsFor(step.Name)
	if capture.Matches(*step.Key, in) {
		s.correct++
		stats.Correct++
		stats.LatencySumMs += now.Sub(s.stepStarted).Milliseconds()
		stats.LatencyCount++
		s.advance(now)
		return Result{Outcome: OutcomeHit, Step: step, Done: s.done}
	}
	s.incorrect++
	stats.Incorrect++
	s.applyError(now)
	return Result{Outcome: OutcomeMiss, Step: step, Done: s.done}
}

// Tick turns a step that has been current for longer than the configured
// timeout into a miss.
func (s *Session) Tick() Result {
	timeout := s.opts.Settings.Timeout
	step, ok := s.Current()
	if !ok || timeout <= 0 {
		return Result{Done: s.done}
	}
	now := s.now()
	if now.Sub(s.stepStarted) < timeout {
		return Result{}
	}
	s.incorrect++
	s.timeouts++
	s.statsFor(step.Name).Incorrect++
	s.applyError(now)
	return Result{Outcome: OutcomeTimeout, Step: step, Done: s.done}
}

// Remaining returns the time left for the current step, or zero without a timeout.
func (s *Session) Remaining() time.Duration {
	timeout := s.opts.Settings.Timeout
	if timeout <= 0 || s.done {
		return 0
	}
	left := timeout - s.now().Sub(s.stepStarted)
	if left < 0 {
		return 0
	}
	return left
}

// Accuracy returns the hit ratio so far.
func (s *Session) Accuracy() float64 {
	total := s.correct + s.incorrect
	if total == 0 {
		return 0
	}
	return float64(s.correct) / float64(total)
}

// Counts returns the hits and misses so far.
func (s *Session) Counts() (correct, incorrect int) {
	return s.correct, s.incorrect
}

// Finish stops the run and returns its statistics.
func (s *Session) Finish() (model.SessionStats, []model.StepStats) {
	if s.ended.IsZero() {
		s.ended = s.now()
	}
	s.done = true
	stats := model.SessionStats{
		StartedAt:  s.started,
		EndedAt:    s.ended,
		Rotation:   s.opts.Rotation,
		Drill:      s.opts.Drill,
		Correct:    s.correct,
		Incorrect:  s.incorrect,
		Timeouts:   s.timeouts,
		DurationMs: s.ended.Sub(s.started).Milliseconds(),
	}
	steps := make([]model.StepStats, 0, len(s.order))
	for _, name := range s.order {
		steps = append(steps, *s.perStep[name])
	}
	return stats, steps
}

func (s *Session) applyError(now time.Time) {
	switch s.opts.Settings.ErrorBehavior {
	case model.ErrorContinue:
		s.advance(now)
	case model.ErrorRestart:
		s.pos = 0
		s.stepStarted = now
	default:
		s.stepStarted = now
	}
}

func (s *Session) advance(now time.Time) {
	s.pos++
	s.stepStarted = now
	if s.pos >= len(s.steps) {
		s.pos = len(s.steps) - 1
		s.done = true
		s.ended = now
	}
}

func (s *Session) statsFor(name string) *model.StepStats {
	if st, ok := s.perStep[name]; ok {
		return st
	}
	st := &model.StepStats{Step: name}
	s.perStep[name] = st
	s.order = append(s.order, name)
	return st
}

// Package tui provides the Bubble Tea practice and keybind recorder interfaces.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/twirl/internal/capture"
	"github.com/verte-zerg/twirl/internal/model"
	"github.com/verte-zerg/twirl/internal/practice"
	statsPkg "github.com/verte-zerg/twirl/internal/stats"
	"github.com/verte-zerg/twirl/internal/store"
)

// Sounds plays practice feedback.
type Sounds interface {
	Success()
	Error()
}

// SessionFactory builds the step sequence for a new run.
type SessionFactory func() (*practice.Session, error)

// Options configures the practice UI.
type Options struct {
	Rotation model.Rotation
	Settings model.Settings
	// Capture is usually in immediate mode; a deferred capture reports each
	// input once it has been released.
	Capture capture.Options
	Store   *store.Store
	Sounds  Sounds
	Host    *Host
	// NewSession starts each run; it is called again after a run completes.
	NewSession SessionFactory
}

type timeoutTickMsg struct {
	run int
}

const timeoutTickInterval = 50 * time.Millisecond

// Model implements the Bubble Tea practice UI.
type Model struct {
	opts    Options
	session *practice.Session
	capture *capture.Capture
	host    *Host

	width  int
	height int

	run      int
	last     practice.Result
	lastGot  capture.Input
	finished bool
	quitting bool
	err      error

	lastAPM float64
	lastAcc float64
	hasLast bool

	allAPM       float64
	allAcc       float64
	allCorrect   int
	allIncorrect int
	allDuration  int64
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	currentStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A")).Padding(0, 2).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#C89A3A"))
	upcomingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	hitStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	missStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a practice TUI model.
func NewModel(opts Options) (*Model, error) {
	if opts.NewSession == nil {
		return nil, fmt.Errorf("session factory is required")
	}
	if opts.Host == nil {
		opts.Host = NewHost(nil, 0)
	}
	m := &Model{opts: opts, host: opts.Host}

	capOpts := opts.Capture
	capOpts.Cancellable = true
	capOpts.Continuous = true
	capOpts.OnInput = m.onInput
	capOpts.OnCancel = m.onCancel
	m.capture = capture.New(capOpts)

	if err := m.startRun(); err != nil {
		return nil, err
	}
	m.loadFooterStats()
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.host.Cmd(), m.timeoutTick())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case timeoutTickMsg:
		if msg.run != m.run || m.finished || m.quitting {
			return m, nil
		}
		res := m.session.Tick()
		if res.Outcome == practice.OutcomeTimeout {
			m.last = res
			m.lastGot = capture.Input{}
			m.feedback(false)
			if res.Done {
				m.completeRun()
			}
		}
		return m, m.timeoutTick()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.abort()
			return m, tea.Quit
		}
		if m.finished {
			return m.updateFinished(msg)
		}
	}

	handled, cmd := m.host.Handle(msg)
	if !handled {
		return m, nil
	}
	if m.quitting {
		return m, tea.Quit
	}
	return m, cmd
}

func (m *Model) updateFinished(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeySpace:
		if err := m.startRun(); err != nil {
			m.err = err
			return m, tea.Quit
		}
		return m, tea.Batch(m.host.Cmd(), m.timeoutTick())
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyRunes:
		if string(msg.Runes) == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

// Err returns the error that ended the UI, if any.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) startRun() error {
	session, err := m.opts.NewSession()
	if err != nil {
		return err
	}
	m.session = session
	m.run++
	m.finished = false
	m.last = practice.Result{}
	m.lastGot = capture.Input{}
	m.capture.Start(m.host)
	return nil
}

func (m *Model) onInput(in capture.Input) {
	if m.finished {
		return
	}
	res := m.session.Submit(in)
	if res.Outcome == practice.OutcomeNone {
		return
	}
	m.last = res
	m.lastGot = in
	m.feedback(res.Outcome == practice.OutcomeHit)
	if res.Done {
		m.completeRun()
	}
}

func (m *Model) onCancel() {
	m.abort()
	m.quitting = true
}

func (m *Model) feedback(ok bool) {
	if m.opts.Sounds == nil || !m.opts.Settings.PlaySounds {
		return
	}
	if ok {
		m.opts.Sounds.Success()
	} else {
		m.opts.Sounds.Error()
	}
}

// abort ends the current run without saving partial progress.
func (m *Model) abort() {
	m.capture.Stop()
	m.finished = true
}

func (m *Model) completeRun() {
	m.capture.Stop()
	m.finished = true
	stats, steps := m.session.Finish()
	if m.opts.Store != nil {
		if _, err := m.opts.Store.InsertSession(context.Background(), stats, steps); err != nil {
			logErrf("failed to save session: %v\n", err)
		}
	}
	m.lastAPM, m.lastAcc = statsPkg.SessionMetrics(stats.Correct, stats.Incorrect, stats.DurationMs)
	m.hasLast = true
	m.allCorrect += stats.Correct
	m.allIncorrect += stats.Incorrect
	m.allDuration += stats.DurationMs
	m.recomputeAllTime()
}

func (m *Model) timeoutTick() tea.Cmd {
	if m.opts.Settings.Timeout <= 0 {
		return nil
	}
	run := m.run
	return tea.Tick(timeoutTickInterval, func(time.Time) tea.Msg {
		return timeoutTickMsg{run: run}
	})
}

func (m *Model) loadFooterStats() {
	if m.opts.Store == nil {
		return
	}
	sessions, err := m.opts.Store.ListSessions(context.Background(), model.StatsConfig{Rotation: m.opts.Rotation.Name})
	if err != nil {
		logErrf("failed to load session stats: %v\n", err)
		return
	}
	if len(sessions) == 0 {
		return
	}
	last := sessions[len(sessions)-1]
	m.lastAPM, m.lastAcc = statsPkg.SessionMetrics(last.Correct, last.Incorrect, last.DurationMs)
	m.hasLast = true
	for _, s := range sessions {
		m.allCorrect += s.Correct
		m.allIncorrect += s.Incorrect
		m.allDuration += s.DurationMs
	}
	m.recomputeAllTime()
}

func (m *Model) recomputeAllTime() {
	m.allAPM, m.allAcc = statsPkg.SessionMetrics(m.allCorrect, m.allIncorrect, m.allDuration)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.session == nil {
		return ""
	}
	contentWidth := int(float64(m.width) * 0.70)
	var content string
	if m.finished {
		content = m.renderFinished()
	} else {
		content = m.renderRun(contentWidth)
	}
	if m.width == 0 || m.height == 0 {
		return content + "\n" + m.renderFooter()
	}
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderRun(width int) string {
	title := m.opts.Rotation.Name
	if job, ok := model.JobByID(m.opts.Rotation.Job); ok {
		title += " · " + job.Name
	}
	current, _ := m.session.Current()
	lines := []string{
		titleStyle.Render(title),
		"",
		currentStyle.Render(stepLabel(current, m.opts.Settings)),
	}
	if next := wrapChips(buildChips(m.session.Upcoming(8), m.opts.Settings), width); next != "" {
		lines = append(lines, next)
	}
	lines = append(lines, "", m.renderFeedback())
	if m.opts.Settings.Timeout > 0 {
		lines = append(lines, renderTimer(m.session.Remaining(), m.opts.Settings.Timeout, 20))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) renderFeedback() string {
	switch m.last.Outcome {
	case practice.OutcomeHit:
		return hitStyle.Render("✓ " + m.last.Step.Name)
	case practice.OutcomeMiss:
		return missStyle.Render(fmt.Sprintf("✗ %s: expected %s, got %s", m.last.Step.Name, m.last.Step.Keybind(), m.lastGot.String()))
	case practice.OutcomeTimeout:
		return missStyle.Render("✗ " + m.last.Step.Name + ": too slow")
	}
	return footerStyle.Render("esc: stop")
}

func (m *Model) renderFinished() string {
	correct, incorrect := m.session.Counts()
	lines := []string{
		titleStyle.Render("Run complete"),
		"",
		fmt.Sprintf("%d hits · %d misses · %.1f%%", correct, incorrect, m.session.Accuracy()*100),
		"",
		footerStyle.Render("enter: again · esc/q: quit"),
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func renderTimer(left, total time.Duration, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := int(float64(width) * float64(left) / float64(total))
	filled = max(0, min(filled, width))
	return footerStyle.Render(strings.Repeat("█", filled) + strings.Repeat("░", width-filled))
}

func (m *Model) renderFooter() string {
	pos, total := m.session.Position()
	progress := 0
	if total > 0 {
		progress = int(float64(pos) / float64(total) * 100)
	}
	if m.finished {
		progress = 100
	}
	segments := []string{fmt.Sprintf("Step %d/%d (%d%%)", min(pos+1, total), total, progress)}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f APM · %.1f%%", m.lastAPM, m.lastAcc*100))
	}
	segments = append(segments, fmt.Sprintf("All-time %.1f APM · %.1f%%", m.allAPM, m.allAcc*100))
	return footerStyle.Render(strings.Join(segments, "  "))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

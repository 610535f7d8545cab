package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/twirl/internal/capture"
)

type recorderKeys struct {
	Retry key.Binding
	Save  key.Binding
	Quit  key.Binding
}

func (k recorderKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Retry, k.Quit}
}

func (k recorderKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultRecorderKeys = recorderKeys{
	Retry: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "record again")),
	Save:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
	Quit:  key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "discard")),
}

// Recorder captures a single keybind for a step. Capture is deferred: the
// combination is reported once every key and button has been released.
type Recorder struct {
	step    string
	capture *capture.Capture
	host    *Host
	keys    recorderKeys
	help    help.Model

	live     capture.Input
	result   capture.Input
	recorded bool
	saved    bool
	quitting bool

	width  int
	height int
}

// NewRecorder constructs a recorder for the named step.
func NewRecorder(step string, opts capture.Options, host *Host) *Recorder {
	if host == nil {
		host = NewHost(nil, 0)
	}
	r := &Recorder{step: step, host: host, keys: defaultRecorderKeys, help: help.New()}
	opts.EmitImmediately = false
	opts.Continuous = false
	opts.Cancellable = true
	opts.OnInput = r.onInput
	opts.OnProcessed = r.onProcessed
	opts.OnCancel = r.onCancel
	r.capture = capture.New(opts)
	r.capture.Start(host)
	return r
}

// Result returns the recorded keybind if the user saved it.
func (r *Recorder) Result() (capture.Input, bool) {
	if !r.saved {
		return capture.Input{}, false
	}
	return r.result, true
}

// Init implements tea.Model.
func (r *Recorder) Init() tea.Cmd {
	return r.host.Cmd()
}

// Update implements tea.Model.
func (r *Recorder) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height
		r.help.Width = msg.Width
		return r, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			r.capture.Stop()
			return r, tea.Quit
		}
		if r.recorded {
			switch {
			case key.Matches(msg, r.keys.Save):
				r.saved = true
				return r, tea.Quit
			case key.Matches(msg, r.keys.Retry):
				r.recorded = false
				r.live = capture.Input{}
				r.capture.Start(r.host)
				return r, r.host.Cmd()
			case key.Matches(msg, r.keys.Quit):
				return r, tea.Quit
			}
			return r, nil
		}
	}
	handled, cmd := r.host.Handle(msg)
	if !handled {
		return r, nil
	}
	if r.quitting {
		return r, tea.Quit
	}
	return r, cmd
}

func (r *Recorder) onInput(in capture.Input) {
	r.result = in
	r.live = in
	r.recorded = true
}

func (r *Recorder) onProcessed(in capture.Input) {
	r.live = in
}

func (r *Recorder) onCancel() {
	r.quitting = true
}

// View implements tea.Model.
func (r *Recorder) View() string {
	lines := []string{titleStyle.Render(fmt.Sprintf("Keybind for %s", r.step)), ""}
	switch {
	case r.recorded:
		lines = append(lines, currentStyle.Render(r.result.String()), "", r.help.View(r.keys))
	case r.live.IsEmpty():
		lines = append(lines, upcomingStyle.Render("press a key, mouse button or pad combination"), "", footerStyle.Render("esc: cancel"))
	default:
		lines = append(lines, currentStyle.Render(r.live.String()), "", footerStyle.Render("release to confirm"))
	}
	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	if r.width == 0 || r.height == 0 {
		return content
	}
	return lipgloss.Place(r.width, r.height, lipgloss.Center, lipgloss.Center, content)
}

package capture

import "fmt"

// State is the lifecycle state of a capture session.
type State uint8

const (
	StateIdle State = iota
	StateWaitingForInput
	StateWaitingForRelease
	StateIgnoringUntilRelease
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaitingForInput:
		return "waiting-for-input"
	case StateWaitingForRelease:
		return "waiting-for-release"
	case StateIgnoringUntilRelease:
		return "ignoring-until-release"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

const (
	DefaultCancelKey    = "Escape"
	DefaultCancelButton = 9
	selectButton        = 8
)

// Options configures a Capture. Nil blacklists take defaults that depend on
// Cancellable; a non-nil slice, even empty, replaces the default.
type Options struct {
	// OnInput receives each emitted snapshot.
	OnInput func(Input)
	// OnCancel runs after the session has been torn down by the cancel key or button.
	OnCancel func()
	// OnProcessed observes non-empty live combinations that are not complete yet.
	OnProcessed func(Input)
	// OnRelease observes a live combination returning to empty; it receives the
	// combination that was released.
	OnRelease func(Input)

	Cancellable bool
	// EmitImmediately reports on press instead of after full release.
	EmitImmediately bool
	// Continuous keeps a deferred session running after an emission.
	Continuous bool

	CancelKey    string
	CancelButton *int

	BlacklistedKeyboardCodes  []string
	BlacklistedGamepadButtons []int
	BlacklistedMouseButtons   []int
}

func (o Options) withDefaults() Options {
	if o.CancelKey == "" {
		o.CancelKey = DefaultCancelKey
	}
	if o.CancelButton == nil {
		o.CancelButton = Idx(DefaultCancelButton)
	}
	if o.BlacklistedKeyboardCodes == nil {
		o.BlacklistedKeyboardCodes = []string{"Enter", "F5"}
		if !o.Cancellable {
			o.BlacklistedKeyboardCodes = append(o.BlacklistedKeyboardCodes, o.CancelKey)
		}
	}
	if o.BlacklistedGamepadButtons == nil {
		switch {
		case !o.Cancellable:
			o.BlacklistedGamepadButtons = []int{selectButton}
			if *o.CancelButton != selectButton {
				o.BlacklistedGamepadButtons = append(o.BlacklistedGamepadButtons, *o.CancelButton)
			}
		case *o.CancelButton == selectButton:
			o.BlacklistedGamepadButtons = []int{}
		default:
			o.BlacklistedGamepadButtons = []int{selectButton}
		}
	}
	if o.BlacklistedMouseButtons == nil {
		o.BlacklistedMouseButtons = []int{0}
	}
	return o
}

// Capture is the input recognition state machine. It merges normalized
// fragments, debounces them against physical release and reports lifecycle
// callbacks. A Capture is driven from a single goroutine.
type Capture struct {
	opts Options

	blockedKeys    map[string]struct{}
	blockedMouse   map[int]struct{}
	blockedButtons map[int]struct{}

	host   Host
	detach func()
	cancel func()

	active bool
	state  State

	activeKeys map[string]struct{}
	modifiers  Input
	heldKey    Input
	lastMouse  *int
	combo      *ComboTracker
	pending    *Input
	lastLive   Input
}

// New returns an idle Capture.
func New(opts Options) *Capture {
	opts = opts.withDefaults()
	c := &Capture{
		opts:           opts,
		blockedKeys:    stringSet(opts.BlacklistedKeyboardCodes),
		blockedMouse:   intSet(opts.BlacklistedMouseButtons),
		blockedButtons: intSet(opts.BlacklistedGamepadButtons),
	}
	c.combo = NewComboTracker(c.blockedButtons)
	c.reset()
	return c
}

// State returns the current lifecycle state.
func (c *Capture) State() State {
	return c.state
}

// Active reports whether a session is running.
func (c *Capture) Active() bool {
	return c.active
}

// Pending returns the captured snapshot awaiting release, if any.
func (c *Capture) Pending() (Input, bool) {
	if c.pending == nil {
		return Input{}, false
	}
	return c.pending.Clone(), true
}

// Start begins a session. Starting an active session is a no-op.
// With a nil host, events are fed through HandleKey, HandleMouse and HandleGamepads.
func (c *Capture) Start(host Host) {
	if c.active {
		return
	}
	c.reset()
	c.active = true
	c.state = StateWaitingForInput
	c.host = host
	if host != nil {
		c.detach = host.Attach(c)
		c.cancel = host.Schedule(c.Poll)
	}
}

// Stop ends the session and releases the host registrations. It is idempotent
// and fires no callbacks.
func (c *Capture) Stop() {
	if !c.active {
		return
	}
	c.teardown()
	c.state = StateIdle
}

// HandleKey implements Listener.
func (c *Capture) HandleKey(ev KeyEvent) {
	if !c.active {
		return
	}
	if ev.Action == KeyDown && c.opts.Cancellable && ev.Code == c.opts.CancelKey {
		suppress(ev.Control)
		c.cancelSession()
		return
	}
	// Blacklisted keys still count as held.
	if ev.Action == KeyDown {
		c.activeKeys[ev.Code] = struct{}{}
	} else {
		delete(c.activeKeys, ev.Code)
	}
	frag, ok := NormalizeKey(ev, c.blockedKeys)
	if !ok {
		if ev.Action == KeyUp {
			c.checkRelease()
		}
		return
	}
	c.modifiers = Input{Shift: frag.Shift, Ctrl: frag.Ctrl, Alt: frag.Alt}

	switch ev.Action {
	case KeyDown:
		if frag.KeyCode != "" {
			c.heldKey = Input{KeyCode: frag.KeyCode, KeyName: frag.KeyName}
		}
		c.observe()
		if frag.KeyCode != "" {
			c.capture(frag)
		}
	case KeyUp:
		if c.heldKey.KeyCode == ev.Code {
			c.heldKey = Input{}
		}
		c.observe()
		c.checkRelease()
	}
}

// HandleMouse implements Listener.
func (c *Capture) HandleMouse(ev MouseEvent) {
	if !c.active {
		return
	}
	frag, ok := NormalizeMouse(ev, c.blockedMouse)
	if !ok {
		return
	}
	c.modifiers = Input{Shift: frag.Shift, Ctrl: frag.Ctrl, Alt: frag.Alt}

	switch ev.Action {
	case MouseDown:
		c.activeKeys[mouseToken(ev.Button)] = struct{}{}
		c.lastMouse = Idx(ev.Button)
		c.observe()
		c.capture(frag)
	case MouseUp:
		delete(c.activeKeys, mouseToken(ev.Button))
		if c.lastMouse != nil && *c.lastMouse == ev.Button {
			c.lastMouse = nil
		}
		c.observe()
		c.checkRelease()
	}
}

// Poll reads the host's pads once. It is the function handed to Host.Schedule.
func (c *Capture) Poll() {
	if !c.active || c.host == nil {
		return
	}
	c.HandleGamepads(c.host.Gamepads())
}

// HandleGamepads processes one frame of pad state.
func (c *Capture) HandleGamepads(pads []Gamepad) {
	if !c.active {
		return
	}
	frame := c.combo.Update(pads)

	if c.opts.Cancellable {
		button := *c.opts.CancelButton
		if containsButton(frame.NewPresses, button) || containsButton(frame.Released, button) {
			c.cancelSession()
			return
		}
	}

	if len(frame.NewPresses) == 0 && len(frame.Released) == 0 {
		return
	}
	c.observe()
	if frame.Press != nil {
		c.capture(*frame.Press)
	}
	if frame.Release != nil {
		c.capture(*frame.Release)
	}
	if len(frame.Released) > 0 {
		c.checkRelease()
	}
}

// capture stores or emits a complete fragment according to the emission policy.
func (c *Capture) capture(frag Input) {
	switch c.state {
	case StateWaitingForInput:
	case StateWaitingForRelease:
		if !c.opts.EmitImmediately {
			return
		}
	default:
		return
	}

	snapshot := frag.Clone()
	if !c.opts.EmitImmediately {
		c.pending = &snapshot
		c.state = StateWaitingForRelease
		return
	}
	c.pending = nil
	c.state = StateIgnoringUntilRelease
	if c.opts.OnInput != nil {
		c.opts.OnInput(snapshot.Clone())
	}
}

// checkRelease finishes a hold once every key, mouse button and pad button is up.
func (c *Capture) checkRelease() {
	if !c.allReleased() {
		return
	}
	switch c.state {
	case StateIgnoringUntilRelease:
		c.state = StateWaitingForInput
	case StateWaitingForRelease:
		if c.pending == nil || c.opts.EmitImmediately {
			c.state = StateWaitingForInput
			return
		}
		snapshot := *c.pending
		c.pending = nil
		if c.opts.Continuous {
			c.state = StateWaitingForInput
		} else {
			c.Stop()
		}
		if c.opts.OnInput != nil {
			c.opts.OnInput(snapshot)
		}
	}
}

// observe reports changes of the live held combination. A snapshot equal to
// the last one reported is dropped.
func (c *Capture) observe() {
	live := c.live()
	if live.Equal(c.lastLive) {
		return
	}
	previous := c.lastLive
	c.lastLive = live
	switch {
	case live.IsEmpty():
		if !previous.IsEmpty() && c.opts.OnRelease != nil {
			c.opts.OnRelease(previous)
		}
	case !live.IsComplete():
		if c.opts.OnProcessed != nil {
			c.opts.OnProcessed(live.Clone())
		}
	}
}

func (c *Capture) live() Input {
	in := c.modifiers.Merge(c.heldKey)
	if c.lastMouse != nil {
		in.MouseButton = Idx(*c.lastMouse)
	}
	return in.Merge(c.combo.Live())
}

func (c *Capture) allReleased() bool {
	return len(c.activeKeys) == 0 && !c.combo.Held()
}

// cancelSession tears everything down before the cancel callback runs.
func (c *Capture) cancelSession() {
	c.teardown()
	c.state = StateCancelled
	if c.opts.OnCancel != nil {
		c.opts.OnCancel()
	}
}

func (c *Capture) teardown() {
	if c.detach != nil {
		c.detach()
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.reset()
}

func (c *Capture) reset() {
	c.active = false
	c.host = nil
	c.detach = nil
	c.cancel = nil
	c.activeKeys = map[string]struct{}{}
	c.lastMouse = nil
	c.modifiers = Input{}
	c.heldKey = Input{}
	c.pending = nil
	c.lastLive = Input{}
	c.combo.Reset()
}

func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func intSet(values []int) map[int]struct{} {
	set := make(map[int]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

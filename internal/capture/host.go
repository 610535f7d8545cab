package capture

// Listener receives raw keyboard and mouse events.
type Listener interface {
	HandleKey(ev KeyEvent)
	HandleMouse(ev MouseEvent)
}

// Host delivers device events and schedules the gamepad poll.
// The returned release functions must be safe to call once.
type Host interface {
	// Attach registers l for keyboard and mouse events until detach is called.
	Attach(l Listener) (detach func())
	// Schedule runs poll once per frame until cancel is called.
	Schedule(poll func()) (cancel func())
	// Gamepads returns the pads connected right now.
	Gamepads() []Gamepad
}

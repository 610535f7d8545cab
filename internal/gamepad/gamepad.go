// Package gamepad reads Linux joystick devices and exposes their button state
// as per-frame snapshots for the capture engine.
package gamepad

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/verte-zerg/twirl/internal/capture"
)

// DefaultPattern matches the joystick API device nodes.
const DefaultPattern = "/dev/input/js*"

const (
	eventSize = 8

	typeButton = 0x01
	typeAxis   = 0x02
	typeInit   = 0x80
)

// event is one js_event record.
type event struct {
	Time   uint32
	Value  int16
	Type   uint8
	Number uint8
}

// Reader keeps the live button state of every opened device.
type Reader struct {
	mu      sync.Mutex
	pads    []*pad
	closers []io.Closer
	wg      sync.WaitGroup
}

type pad struct {
	index     int
	path      string
	connected bool
	buttons   []bool
}

// Open opens every device matching pattern and starts one reader goroutine per
// device. Devices that cannot be opened are skipped; no matching device gives
// an empty Reader.
func Open(ctx context.Context, pattern string) (*Reader, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to match gamepad devices: %w", err)
	}
	sort.Strings(paths)

	r := &Reader{}
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		r.attach(ctx, path, f)
	}
	return r, nil
}

// attach registers a device stream and starts reading it.
func (r *Reader) attach(ctx context.Context, path string, rc io.ReadCloser) {
	r.mu.Lock()
	p := &pad{index: len(r.pads), path: path, connected: true}
	r.pads = append(r.pads, p)
	r.closers = append(r.closers, rc)
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		_ = r.readEvents(ctx, p, rc)
		r.mu.Lock()
		p.connected = false
		r.mu.Unlock()
	}()
}

// readEvents decodes records until the stream fails or ctx is done.
func (r *Reader) readEvents(ctx context.Context, p *pad, src io.Reader) error {
	buf := make([]byte, eventSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := io.ReadFull(src, buf); err != nil {
			return err
		}
		r.apply(p, decodeEvent(buf))
	}
}

func decodeEvent(buf []byte) event {
	return event{
		Time:   binary.LittleEndian.Uint32(buf[0:4]),
		Value:  int16(binary.LittleEndian.Uint16(buf[4:6])),
		Type:   buf[6],
		Number: buf[7],
	}
}

func (r *Reader) apply(p *pad, ev event) {
	if ev.Type&^typeInit != typeButton {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int(ev.Number)
	if n >= len(p.buttons) {
		grown := make([]bool, n+1)
		copy(grown, p.buttons)
		p.buttons = grown
	}
	p.buttons[n] = ev.Value != 0
}

// Gamepads returns a copy of the current state of every opened device.
func (r *Reader) Gamepads() []capture.Gamepad {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]capture.Gamepad, 0, len(r.pads))
	for _, p := range r.pads {
		buttons := make([]bool, len(p.buttons))
		copy(buttons, p.buttons)
		out = append(out, capture.Gamepad{Index: p.index, Connected: p.connected, Buttons: buttons})
	}
	return out
}

// Devices lists the device paths that were opened.
func (r *Reader) Devices() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	paths := make([]string, 0, len(r.pads))
	for _, p := range r.pads {
		paths = append(paths, p.path)
	}
	return paths
}

// Close closes every device and waits for the readers to exit.
func (r *Reader) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	closers := r.closers
	r.closers = nil
	r.mu.Unlock()

	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			errs = append(errs, err)
		}
	}
	r.wg.Wait()
	return errors.Join(errs...)
}

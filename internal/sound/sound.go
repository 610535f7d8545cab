// Package sound plays short feedback tones for practice runs.
package sound

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Player mixes feedback tones onto the speaker. The zero value is a disabled
// player whose methods do nothing.
type Player struct {
	mu      sync.Mutex
	mixer   *beep.Mixer
	enabled bool
}

// NewPlayer returns a Player; Init must be called to enable output.
func NewPlayer() *Player {
	return &Player{mixer: &beep.Mixer{}}
}

// Init opens the audio device. On failure the player stays disabled.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.enabled {
		return nil
	}
	if p.mixer == nil {
		p.mixer = &beep.Mixer{}
	}
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return fmt.Errorf("failed to open audio device: %w", err)
	}
	speaker.Play(p.mixer)
	p.enabled = true
	return nil
}

// Enabled reports whether tones reach the speaker.
func (p *Player) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Success plays a short rising two-note chime.
func (p *Player) Success() {
	p.play(SuccessTone(sampleRate))
}

// Error plays a short low buzz.
func (p *Player) Error() {
	p.play(ErrorTone(sampleRate))
}

func (p *Player) play(s beep.Streamer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return
	}
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

// Close stops playback and releases the audio device.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.enabled = false
}

// SuccessTone is 60ms of A5 followed by 90ms of E6.
func SuccessTone(sr beep.SampleRate) beep.Streamer {
	return beep.Seq(
		beep.Take(sr.N(60*time.Millisecond), newTone(sr, 880, waveSine)),
		beep.Take(sr.N(90*time.Millisecond), newTone(sr, 1318.5, waveSine)),
	)
}

// ErrorTone is 150ms of a 140Hz square wave.
func ErrorTone(sr beep.SampleRate) beep.Streamer {
	return beep.Take(sr.N(150*time.Millisecond), newTone(sr, 140, waveSquare))
}

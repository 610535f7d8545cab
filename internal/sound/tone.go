package sound

import (
	"math"

	"github.com/gopxl/beep"
)

type waveform uint8

const (
	waveSine waveform = iota
	waveSquare
)

const (
	toneGain = 0.2
	// attack ramps the first samples in to avoid clicks.
	attackSeconds = 0.005
)

// tone is an endless oscillator; callers bound it with beep.Take.
type tone struct {
	sr   beep.SampleRate
	freq float64
	wave waveform
	pos  int
}

func newTone(sr beep.SampleRate, freq float64, wave waveform) *tone {
	return &tone{sr: sr, freq: freq, wave: wave}
}

func (t *tone) Stream(samples [][2]float64) (int, bool) {
	rate := float64(t.sr)
	for i := range samples {
		secs := float64(t.pos) / rate
		v := math.Sin(2 * math.Pi * t.freq * secs)
		if t.wave == waveSquare {
			if v >= 0 {
				v = 0.5
			} else {
				v = -0.5
			}
		}
		v *= toneGain * math.Min(secs/attackSeconds, 1)
		samples[i][0] = v
		samples[i][1] = v
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error {
	return nil
}

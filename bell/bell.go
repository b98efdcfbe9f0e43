package bell

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// SampleRate is the output rate of the speaker
const SampleRate = beep.SampleRate(44100)

// Config selects the tone played by Ring
type Config struct {
	Enabled   bool
	Frequency float64
	Duration  time.Duration
	Volume    float64
}

// Bell plays a tone on Ring. A disabled Bell ignores Ring
type Bell struct {
	cfg     Config
	play    func(beep.Streamer)
	close   func()
	enabled atomic.Bool
	rings   atomic.Int64
}

// New opens the speaker when cfg.Enabled is set.
// On failure the error is returned with a disabled Bell, so callers can continue silently.
func New(cfg Config) (*Bell, error) {
	if !cfg.Enabled {
		return newBell(cfg, nil, nil), nil
	}

	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
		return newBell(Config{}, nil, nil), fmt.Errorf("bell: speaker init: %w", err)
	}
	return newBell(cfg, func(s beep.Streamer) { speaker.Play(s) }, speaker.Close), nil
}

// NewWithSink creates an enabled Bell that hands tones to play instead of the speaker
func NewWithSink(cfg Config, play func(beep.Streamer)) *Bell {
	cfg.Enabled = true
	return newBell(cfg, play, nil)
}

func newBell(cfg Config, play func(beep.Streamer), closeFn func()) *Bell {
	b := &Bell{cfg: cfg, play: play, close: closeFn}
	b.enabled.Store(cfg.Enabled && play != nil)
	return b
}

// Enabled reports whether Ring produces sound
func (b *Bell) Enabled() bool {
	return b.enabled.Load()
}

// Toggle flips muting on a bell that has an output; returns the new state
func (b *Bell) Toggle() bool {
	if b.play == nil {
		return false
	}
	for {
		old := b.enabled.Load()
		if b.enabled.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Ring plays one tone without blocking
func (b *Bell) Ring() {
	if !b.enabled.Load() {
		return
	}
	b.rings.Add(1)
	b.play(Tone(b.cfg.Frequency, b.cfg.Duration, b.cfg.Volume, SampleRate))
}

// Rings returns how many tones were played
func (b *Bell) Rings() int64 {
	return b.rings.Load()
}

// Close releases the speaker
func (b *Bell) Close() {
	b.enabled.Store(false)
	if b.close != nil {
		b.close()
		b.close = nil
	}
}

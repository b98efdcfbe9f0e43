// Package bell plays a short audible tone for input feedback.
package bell

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// sineWave generates a fixed-length sine tone
type sineWave struct {
	freq     float64
	phase    float64
	length   int
	position int
	rate     beep.SampleRate
}

func newSineWave(freq float64, duration time.Duration, rate beep.SampleRate) *sineWave {
	return &sineWave{freq: freq, length: rate.N(duration), rate: rate}
}

func (s *sineWave) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if s.position >= s.length {
			return i, i > 0
		}

		val := math.Sin(2 * math.Pi * s.phase)
		samples[i][0] = val
		samples[i][1] = val

		s.phase += s.freq / float64(s.rate)
		s.phase -= math.Floor(s.phase) // Keep in [0, 1)
		s.position++
	}
	return len(samples), true
}

func (s *sineWave) Err() error { return nil }

// fade applies a linear attack and release to avoid clicks at tone edges
type fade struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func newFade(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) *fade {
	total := rate.N(duration)
	att := min(rate.N(attack), total)
	rel := min(rate.N(release), total-att)
	return &fade{streamer: s, attack: att, release: rel, total: total}
}

func (f *fade) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = f.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		vol := 1.0
		if f.position < f.attack {
			vol = float64(f.position) / float64(f.attack)
		}
		if releaseStart := f.total - f.release; f.position >= releaseStart && f.release > 0 {
			vol = float64(f.total-f.position) / float64(f.release)
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		f.position++
	}
	return n, ok
}

func (f *fade) Err() error { return f.streamer.Err() }

// withVolume scales a stream linearly; math.Log2(0) is -Inf, so zero volume is silent
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// Tone builds a faded sine tone of the given length and linear volume
func Tone(freq float64, duration time.Duration, vol float64, rate beep.SampleRate) beep.Streamer {
	edge := duration / 5
	return withVolume(newFade(newSineWave(freq, duration, rate), duration, edge, edge, rate), vol)
}

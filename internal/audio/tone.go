// Package audio plays short cues when a sequence becomes ready or fails.
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

const SampleRate = beep.SampleRate(44100)

// Tone is a decaying sine whose pitch glides from Freq to Freq+Bend.
type Tone struct {
	Freq     float64
	Bend     float64
	Duration time.Duration
	Decay    float64 // envelope exponent; larger dies faster
}

type toneStream struct {
	t     Tone
	rate  beep.SampleRate
	i, n  int
	phase float64
}

// Stream returns the tone as a finite streamer.
func (t Tone) Stream(rate beep.SampleRate) beep.Streamer {
	return &toneStream{t: t, rate: rate, n: rate.N(t.Duration)}
}

func (s *toneStream) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if s.i >= s.n {
			return i, i > 0
		}
		pos := float64(s.i) / float64(s.n)
		freq := s.t.Freq + s.t.Bend*pos
		s.phase += 2 * math.Pi * freq / float64(s.rate)
		v := math.Sin(s.phase) * math.Exp(-s.t.Decay*pos)
		samples[i][0] = v
		samples[i][1] = v
		s.i++
	}
	return len(samples), true
}

func (s *toneStream) Err() error { return nil }

type Cue int

const (
	CueReady Cue = iota
	CueFailed
)

func (c Cue) String() string {
	switch c {
	case CueReady:
		return "ready"
	case CueFailed:
		return "failed"
	}
	return "unknown"
}

// Sound builds the streamer for c at volume (0..1).
func (c Cue) Sound(rate beep.SampleRate, volume float64) beep.Streamer {
	var s beep.Streamer
	switch c {
	case CueReady:
		// Two rising notes, an octave apart.
		first := Tone{Freq: 660, Bend: 220, Duration: 120 * time.Millisecond, Decay: 3}
		second := Tone{Freq: 1320, Duration: 220 * time.Millisecond, Decay: 4}
		s = beep.Seq(first.Stream(rate), second.Stream(rate))
	default:
		low := Tone{Freq: 220, Bend: -110, Duration: 350 * time.Millisecond, Decay: 5}
		s = low.Stream(rate)
	}
	return withVolume(s, volume)
}

func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

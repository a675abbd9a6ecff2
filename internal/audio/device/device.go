// Package device opens the system speaker for audio cues.
package device

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/ingyamilmolinar/seqplayer/internal/audio"
)

var (
	once    sync.Once
	initErr error
)

// Open initializes the speaker at rate with a 100ms buffer and returns a
// sink that plays on it. Later calls reuse the first initialization.
func Open(rate beep.SampleRate) (audio.Sink, error) {
	once.Do(func() {
		initErr = speaker.Init(rate, rate.N(100*time.Millisecond))
	})
	if initErr != nil {
		return nil, initErr
	}
	return func(s beep.Streamer) { speaker.Play(s) }, nil
}

// Close stops playback and releases the device.
func Close() {
	if initErr == nil {
		speaker.Clear()
	}
}

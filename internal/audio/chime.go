package audio

import (
	"github.com/gopxl/beep"

	"github.com/ingyamilmolinar/seqplayer/core/loader"
	game_log "github.com/ingyamilmolinar/seqplayer/internal/log"
)

// Sink plays a streamer without blocking.
type Sink func(beep.Streamer)

// Chime is a loader observer that plays CueReady when a sequence goes live
// and CueFailed when it times out.
type Chime struct {
	sink   Sink
	rate   beep.SampleRate
	volume float64
	logger *game_log.Logger
}

func NewChime(sink Sink, rate beep.SampleRate, volume float64, logger *game_log.Logger) *Chime {
	if logger == nil {
		logger = game_log.Discard()
	}
	return &Chime{sink: sink, rate: rate, volume: volume, logger: logger}
}

func (c *Chime) Play(cue Cue) {
	if c.sink == nil {
		return
	}
	c.logger.Debugf("[AUDIO] cue %v", cue)
	c.sink(cue.Sound(c.rate, c.volume))
}

func (c *Chime) LoadStarted(loader.Request)            {}
func (c *Chime) LoadProgress(loader.Request, int, int) {}

func (c *Chime) LoadReady(loader.Request, loader.Summary) { c.Play(CueReady) }

func (c *Chime) LoadFailed(loader.Request, error) { c.Play(CueFailed) }

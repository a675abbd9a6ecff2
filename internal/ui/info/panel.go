// Package info keeps the text shown above the frames: the human names of the
// current sequence, typed out a few runes per tick, and a load status line.
package info

import (
	"fmt"

	"github.com/ingyamilmolinar/seqplayer/core/loader"
)

// Names resolves ids to display text. *config.Catalog satisfies it.
type Names interface {
	StyleName(id string) string
	WordName(id string) string
	Prompt(style, word string, variant int) string
}

const DefaultRunesPerTick = 2

type Panel struct {
	names        Names
	RunesPerTick int

	lines  [][]rune
	total  int
	shown  int
	status string
}

func NewPanel(names Names) *Panel {
	return &Panel{names: names, RunesPerTick: DefaultRunesPerTick, status: "Waiting for content"}
}

func (p *Panel) LoadStarted(req loader.Request) {
	p.lines = [][]rune{
		[]rune(p.names.StyleName(req.Style) + " / " + p.names.WordName(req.Word)),
		[]rune(p.names.Prompt(req.Style, req.Word, req.Variant)),
	}
	p.total = 0
	for _, l := range p.lines {
		p.total += len(l)
	}
	p.shown = 0
	p.status = "Loading"
}

func (p *Panel) LoadProgress(_ loader.Request, done, failed int) {
	p.status = fmt.Sprintf("Loading %d", done)
	if failed > 0 {
		p.status += fmt.Sprintf(" (%d missing)", failed)
	}
}

func (p *Panel) LoadReady(_ loader.Request, sum loader.Summary) {
	p.status = "Ready"
	if sum.Failed > 0 {
		p.status = fmt.Sprintf("Ready, %d of %d frames missing", sum.Failed, sum.Frames)
	}
}

func (p *Panel) LoadFailed(_ loader.Request, err error) {
	p.status = "Failed: " + err.Error()
}

// Tick reveals the next runes.
func (p *Panel) Tick() {
	p.shown = min(p.total, p.shown+max(1, p.RunesPerTick))
}

// Typing reports whether text is still being revealed.
func (p *Panel) Typing() bool { return p.shown < p.total }

// Lines returns the revealed text. Later lines stay empty until earlier ones
// are complete.
func (p *Panel) Lines() []string {
	out := make([]string, 0, len(p.lines))
	left := p.shown
	for _, l := range p.lines {
		n := min(left, len(l))
		out = append(out, string(l[:n]))
		left -= n
	}
	return out
}

func (p *Panel) Status() string { return p.status }

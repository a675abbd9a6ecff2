//go:build js && !test

package ui

import "syscall/js"

// initJS exposes helper functions for browser-based tests and for pages that
// drive the player without a host frame.
func (g *Game) initJS() {
	js.Global().Set("seqplayerSimulate", js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) < 2 {
			return nil
		}
		style, word := args[0].String(), args[1].String()
		g.player.Post(func() { g.player.Simulate(style, word) })
		return nil
	}))
	js.Global().Set("seqplayerFinish", js.FuncOf(func(js.Value, []js.Value) any {
		g.player.Post(g.player.Finish)
		return nil
	}))
	js.Global().Set("seqplayerReset", js.FuncOf(func(js.Value, []js.Value) any {
		g.player.Post(g.player.Reset)
		return nil
	}))
}

// reportStateJS publishes the visible frame and load status.
func (g *Game) reportStateJS() {
	_, idx, ok := g.player.Frame()
	if !ok {
		idx = -1
	}
	js.Global().Set("__seqFrame", js.ValueOf(idx))
	js.Global().Set("__seqStatus", js.ValueOf(g.player.Status().String()))
}

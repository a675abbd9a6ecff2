//go:build js && wasm

package host

import (
	"context"
	"syscall/js"

	game_log "github.com/ingyamilmolinar/seqplayer/internal/log"
)

// Window talks to the embedding page: inbound "message" events are
// stringified and delivered, outbound messages are parsed and posted to the
// parent window.
type Window struct {
	logger *game_log.Logger
}

func NewWindow(logger *game_log.Logger) *Window {
	if logger == nil {
		logger = game_log.Discard()
	}
	return &Window{logger: logger}
}

func (w *Window) Send(msg []byte) error {
	global := js.Global()
	obj := global.Get("JSON").Call("parse", string(msg))
	target := global.Get("parent")
	if target.IsUndefined() || target.IsNull() {
		target = global
	}
	target.Call("postMessage", obj, "*")
	return nil
}

func (w *Window) Serve(ctx context.Context, deliver func([]byte)) error {
	global := js.Global()
	handler := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		data := args[0].Get("data")
		if data.IsUndefined() || data.IsNull() {
			return nil
		}
		var raw string
		if data.Type() == js.TypeString {
			raw = data.String()
		} else {
			raw = global.Get("JSON").Call("stringify", data).String()
		}
		deliver([]byte(raw))
		return nil
	})
	global.Call("addEventListener", "message", handler)
	w.logger.Infof("[HOST] listening for window messages")
	<-ctx.Done()
	global.Call("removeEventListener", "message", handler)
	handler.Release()
	return ctx.Err()
}

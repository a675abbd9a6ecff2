//go:build !(js && wasm)

package main

import (
	"errors"

	"github.com/ingyamilmolinar/seqplayer/core/loader"
	"github.com/ingyamilmolinar/seqplayer/internal/host"
	game_log "github.com/ingyamilmolinar/seqplayer/internal/log"
	"github.com/ingyamilmolinar/seqplayer/internal/store"
)

const allowQuit = true

var errNoBrowser = errors.New("the window host needs a browser build (GOOS=js GOARCH=wasm)")

func windowHost(*game_log.Logger) (host.Transport, error) {
	return nil, errNoBrowser
}

func platformCounter(*game_log.Logger) loader.Counter {
	return store.NewMemory()
}

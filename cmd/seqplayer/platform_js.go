//go:build js && wasm

package main

import (
	"github.com/ingyamilmolinar/seqplayer/core/loader"
	"github.com/ingyamilmolinar/seqplayer/internal/host"
	game_log "github.com/ingyamilmolinar/seqplayer/internal/log"
	"github.com/ingyamilmolinar/seqplayer/internal/store"
)

const allowQuit = false

func windowHost(logger *game_log.Logger) (host.Transport, error) {
	return host.NewWindow(logger), nil
}

func platformCounter(logger *game_log.Logger) loader.Counter {
	ls, err := store.NewLocalStorage()
	if err != nil {
		logger.Warnf("[MAIN] localStorage unavailable, counts kept in memory: %v", err)
		return store.NewMemory()
	}
	return ls
}

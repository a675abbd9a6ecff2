package main

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ingyamilmolinar/seqplayer/core/loader"
	"github.com/ingyamilmolinar/seqplayer/internal/assets"
	"github.com/ingyamilmolinar/seqplayer/internal/audio"
	"github.com/ingyamilmolinar/seqplayer/internal/audio/device"
	"github.com/ingyamilmolinar/seqplayer/internal/config"
	"github.com/ingyamilmolinar/seqplayer/internal/host"
	game_log "github.com/ingyamilmolinar/seqplayer/internal/log"
	"github.com/ingyamilmolinar/seqplayer/internal/player"
	"github.com/ingyamilmolinar/seqplayer/internal/store"
)

const chimeVolume = 0.4

// env is everything resolved from flags and files before a display starts.
type env struct {
	cfg     config.Config
	catalog *config.Catalog
	logger  *game_log.Logger
	logOut  io.Closer
}

func (e *env) Close() error {
	if e.logOut != nil {
		return e.logOut.Close()
	}
	return nil
}

// loadEnv reads the config file, applies flags the user set and validates
// the result.
func loadEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(opts.config)
	if err != nil {
		return nil, err
	}
	f := cmd.Flags()
	if f.Changed("display") {
		cfg.Display.Kind = opts.display
	}
	if f.Changed("host") {
		cfg.Host.Kind = opts.host
	}
	if f.Changed("host-url") {
		cfg.Host.URL = opts.hostURL
	}
	if f.Changed("debug") {
		cfg.Debug = opts.debug
	}
	if f.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &env{cfg: cfg}
	var out io.Writer = os.Stderr
	switch {
	case opts.logFile != "":
		file, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out, e.logOut = file, file
	case cfg.Display.Kind == config.DisplayTerminal:
		// stderr shares the terminal with the frames.
		out = io.Discard
	}
	e.logger = game_log.New(out, game_log.LevelFromString(cfg.LogLevel))

	if opts.catalog != "" {
		e.catalog, err = config.LoadCatalog(opts.catalog)
		if err != nil {
			e.Close()
			return nil, err
		}
	} else {
		e.catalog = config.DefaultCatalog()
	}
	return e, nil
}

func newTransport(cfg config.Config, logger *game_log.Logger) (host.Transport, error) {
	switch cfg.Host.Kind {
	case config.HostStdio:
		return host.NewStdio(os.Stdin, os.Stdout, logger), nil
	case config.HostWebSocket:
		return host.NewWebSocket(cfg.Host.URL, logger), nil
	case config.HostWindow:
		return windowHost(logger)
	case config.HostNone:
		return host.Null{}, nil
	}
	return nil, fmt.Errorf("%w: host %q", config.ErrInvalid, cfg.Host.Kind)
}

// newCounter picks where variant counts live: the configured JSON file, the
// browser's localStorage, or memory.
func newCounter(cfg config.Config, logger *game_log.Logger) loader.Counter {
	if cfg.Variants.Store != "" {
		return store.NewJSONFile(cfg.Variants.Store)
	}
	return platformCounter(logger)
}

// newFetcher reads frames over HTTP when the asset base is a URL and from
// the local directory otherwise.
func newFetcher[H any](cfg config.Config, convert assets.Convert[H], logger *game_log.Logger) (loader.Fetcher[H], loader.PathTemplate) {
	if assets.IsRemote(cfg.Assets.Base) {
		return assets.NewHTTP[H](nil, cfg.Assets.Parallel, cfg.Assets.FetchTimeout.D(), convert, logger), cfg.Paths()
	}
	fsys := os.DirFS(cfg.Assets.Base)
	return assets.NewFS[H](fsys, cfg.Assets.Parallel, convert), loader.PathTemplate{Ext: cfg.Assets.Ext}
}

func newPlayer[H any](e *env, tr host.Transport, convert assets.Convert[H], fallback H) *player.Player[H] {
	cfg := e.cfg
	fetcher, paths := newFetcher(cfg, convert, e.logger)
	p := player.New[H](player.Options[H]{
		Motion:       cfg.MotionParams(),
		Loader:       cfg.LoaderParams(),
		Paths:        paths,
		Variants:     cfg.VariantStrategy(newCounter(cfg, e.logger)),
		Fetcher:      fetcher,
		Fallback:     fallback,
		Commands:     cfg.Commands(),
		DefaultStyle: cfg.Host.DefaultStyle,
		DefaultWord:  cfg.Host.DefaultWord,
		Host:         tr,
		Logger:       e.logger,
	})
	if ws, ok := tr.(*host.WebSocket); ok {
		ws.OnConnect = p.Connected
	}
	p.Observe(loader.ObserverFuncs{
		OnReady: func(req loader.Request, sum loader.Summary) {
			e.logger.Infof("[MAIN] %v ready in %v, %d of %d frames missing", req, sum.Elapsed, sum.Failed, sum.Frames)
		},
		OnFailed: func(req loader.Request, err error) {
			e.logger.Warnf("[MAIN] %v failed: %v", req, err)
		},
	})
	if cfg.Display.Chime {
		sink, err := device.Open(audio.SampleRate)
		if err != nil {
			e.logger.Warnf("[MAIN] audio unavailable, chime disabled: %v", err)
		} else {
			p.Observe(audio.NewChime(sink, audio.SampleRate, chimeVolume, e.logger))
		}
	}
	return p
}

func identity(img image.Image) image.Image { return img }

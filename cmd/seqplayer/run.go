package main

import (
	"context"
	"errors"
	"image"
	"io"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ingyamilmolinar/seqplayer/internal/assets"
	"github.com/ingyamilmolinar/seqplayer/internal/config"
	"github.com/ingyamilmolinar/seqplayer/internal/host"
	"github.com/ingyamilmolinar/seqplayer/internal/termview"
	"github.com/ingyamilmolinar/seqplayer/internal/ui"
)

func runPlayer(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	tr, err := newTransport(e.cfg, e.logger)
	if err != nil {
		return err
	}
	if c, ok := tr.(io.Closer); ok {
		defer c.Close()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	e.logger.Infof("[MAIN] display=%s host=%s assets=%s debug=%t",
		e.cfg.Display.Kind, e.cfg.Host.Kind, e.cfg.Assets.Base, e.cfg.Debug)
	switch e.cfg.Display.Kind {
	case config.DisplayWindow:
		err = runWindow(ctx, e, tr)
	case config.DisplayTerminal:
		err = runTerminal(ctx, e, tr)
	default:
		err = runHeadless(ctx, e, tr)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// serve feeds inbound host messages to receive until ctx ends.
func serve(ctx context.Context, e *env, tr host.Transport, receive func([]byte)) error {
	err := tr.Serve(ctx, receive)
	if err != nil && !errors.Is(err, context.Canceled) {
		e.logger.Errorf("[MAIN] host transport: %v", err)
		return err
	}
	return nil
}

func runWindow(ctx context.Context, e *env, tr host.Transport) error {
	w, h := e.cfg.Display.Width, e.cfg.Display.Height
	fallback := ebiten.NewImageFromImage(assets.Placeholder(w, h))
	p := newPlayer[*ebiten.Image](e, tr, func(img image.Image) *ebiten.Image {
		return ebiten.NewImageFromImage(img)
	}, fallback)

	// RunGame stays on the calling goroutine; a transport failure cancels
	// ctx, which ends the game.
	grp, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	g := ui.New(p, ui.Options{
		Catalog:   e.catalog,
		Debug:     e.cfg.Debug,
		AllowQuit: allowQuit,
		Done:      ctx.Done(),
		Logger:    e.logger,
	})
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(e.cfg.Display.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	grp.Go(func() error { return serve(ctx, e, tr, p.Receive) })
	p.Start()
	runErr := ebiten.RunGame(g)
	cancel()
	if err := grp.Wait(); err != nil {
		return err
	}
	return runErr
}

func runTerminal(ctx context.Context, e *env, tr host.Transport) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	p := newPlayer[image.Image](e, tr, identity, image.Image(assets.Placeholder(64, 64)))
	v := termview.New(screen, p, termview.Options{
		Catalog: e.catalog,
		Debug:   e.cfg.Debug,
		Logger:  e.logger,
	})
	p.Start()

	g, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	g.Go(func() error { return serve(ctx, e, tr, p.Receive) })
	g.Go(func() error {
		defer cancel()
		return v.Run(ctx)
	})
	return g.Wait()
}

func runHeadless(ctx context.Context, e *env, tr host.Transport) error {
	p := newPlayer[image.Image](e, tr, identity, image.Image(assets.Placeholder(64, 64)))
	p.OnFrame = func(idx int) {
		e.logger.Debugf("[MAIN] frame %02d state=%v", idx+1, p.Motion())
	}
	p.Start()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return serve(ctx, e, tr, p.Receive) })
	g.Go(func() error { return p.Run(ctx) })
	return g.Wait()
}

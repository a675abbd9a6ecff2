// Package assets fetches and decodes sequence frames for the loader.
package assets

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	_ "golang.org/x/image/webp"
	"golang.org/x/sync/semaphore"

	game_log "github.com/ingyamilmolinar/seqplayer/internal/log"
)

var ErrStatus = errors.New("unexpected status")

// maxFrameBytes caps a single frame download.
const maxFrameBytes = 16 << 20

// Convert turns a decoded frame into the renderer's handle type.
type Convert[H any] func(image.Image) H

// HTTP fetches frames over HTTP. At most Parallel requests are in flight.
type HTTP[H any] struct {
	client  *http.Client
	sem     *semaphore.Weighted
	convert Convert[H]
	logger  *game_log.Logger
}

func NewHTTP[H any](client *http.Client, parallel int, timeout time.Duration, convert Convert[H], logger *game_log.Logger) *HTTP[H] {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if parallel < 1 {
		parallel = 1
	}
	if logger == nil {
		logger = game_log.Discard()
	}
	return &HTTP[H]{
		client:  client,
		sem:     semaphore.NewWeighted(int64(parallel)),
		convert: convert,
		logger:  logger,
	}
}

// Fetch downloads url in a new goroutine and calls done exactly once.
func (h *HTTP[H]) Fetch(ctx context.Context, url string, done func(H, error)) {
	go func() {
		img, err := h.get(ctx, url)
		var zero H
		if err != nil {
			done(zero, err)
			return
		}
		done(h.convert(img), nil)
	}()
}

func (h *HTTP[H]) get(ctx context.Context, url string) (image.Image, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer h.sem.Release(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s: %s", ErrStatus, url, resp.Status)
	}
	img, format, err := image.Decode(io.LimitReader(resp.Body, maxFrameBytes))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	h.logger.Debugf("[ASSETS] %s (%s) in %s", url, format, time.Since(start))
	return img, nil
}

// Exists issues a HEAD request and reports whether url answers 200.
func (h *HTTP[H]) Exists(ctx context.Context, url string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

// FS fetches frames from a file system, e.g. os.DirFS over an asset folder.
type FS[H any] struct {
	fsys    fs.FS
	sem     *semaphore.Weighted
	convert Convert[H]
}

func NewFS[H any](fsys fs.FS, parallel int, convert Convert[H]) *FS[H] {
	if parallel < 1 {
		parallel = 1
	}
	return &FS[H]{fsys: fsys, sem: semaphore.NewWeighted(int64(parallel)), convert: convert}
}

func (f *FS[H]) Fetch(ctx context.Context, name string, done func(H, error)) {
	go func() {
		img, err := f.open(ctx, name)
		var zero H
		if err != nil {
			done(zero, err)
			return
		}
		done(f.convert(img), nil)
	}()
}

func (f *FS[H]) open(ctx context.Context, name string) (image.Image, error) {
	if err := f.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer f.sem.Release(1)
	file, err := f.fsys.Open(fsName(name))
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return img, nil
}

// Exists reports whether name can be opened.
func (f *FS[H]) Exists(_ context.Context, name string) (bool, error) {
	_, err := fs.Stat(f.fsys, fsName(name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// fsName maps a frame path, escaped for URLs, onto an fs.FS name.
func fsName(p string) string {
	p = strings.TrimPrefix(p, "/")
	if u, err := url.PathUnescape(p); err == nil {
		return u
	}
	return p
}

// IsRemote reports whether base addresses an HTTP server.
func IsRemote(base string) bool {
	return strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://")
}

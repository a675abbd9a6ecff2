// Package host carries bridge messages between the player and the process
// embedding it.
package host

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	game_log "github.com/ingyamilmolinar/seqplayer/internal/log"
)

var ErrClosed = errors.New("host connection closed")

// Transport is a bidirectional message channel. Serve blocks, handing every
// inbound message to deliver, until ctx ends or the channel closes. Send may
// be called from any goroutine.
type Transport interface {
	Send(msg []byte) error
	Serve(ctx context.Context, deliver func([]byte)) error
}

// maxLine bounds one inbound stdio message.
const maxLine = 1 << 20

// Stdio speaks newline-delimited JSON.
type Stdio struct {
	in     io.Reader
	mu     sync.Mutex
	out    io.Writer
	logger *game_log.Logger
	closed bool
}

func NewStdio(in io.Reader, out io.Writer, logger *game_log.Logger) *Stdio {
	if logger == nil {
		logger = game_log.Discard()
	}
	return &Stdio{in: in, out: out, logger: logger}
}

func (s *Stdio) Send(msg []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	line := append(append([]byte(nil), bytes.TrimSpace(msg)...), '\n')
	if _, err := s.out.Write(line); err != nil {
		return fmt.Errorf("stdio send: %w", err)
	}
	return nil
}

// Close makes further sends fail with ErrClosed.
func (s *Stdio) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Serve reads lines until EOF, which returns nil. Sends keep working after
// stdin ends.
func (s *Stdio) Serve(ctx context.Context, deliver func([]byte)) error {
	lines := make(chan []byte)
	errc := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(s.in)
		sc.Buffer(make([]byte, 0, 64*1024), maxLine)
		for sc.Scan() {
			line := bytes.TrimSpace(sc.Bytes())
			if len(line) == 0 {
				continue
			}
			select {
			case lines <- append([]byte(nil), line...):
			case <-ctx.Done():
				return
			}
		}
		errc <- sc.Err()
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line := <-lines:
			deliver(line)
		case err := <-errc:
			if err != nil {
				return fmt.Errorf("stdio read: %w", err)
			}
			s.logger.Infof("[HOST] stdin closed")
			return nil
		}
	}
}

// Null drops outbound messages and never delivers any.
type Null struct{}

func (Null) Send([]byte) error { return nil }

func (Null) Serve(ctx context.Context, _ func([]byte)) error {
	<-ctx.Done()
	return ctx.Err()
}

// Recorder is a Transport that keeps outbound messages and delivers what is
// pushed to it. Tests drive the player through it.
type Recorder struct {
	mu   sync.Mutex
	sent [][]byte
	in   chan []byte
}

func NewRecorder() *Recorder { return &Recorder{in: make(chan []byte, 16)} }

func (r *Recorder) Send(msg []byte) error {
	r.mu.Lock()
	r.sent = append(r.sent, append([]byte(nil), msg...))
	r.mu.Unlock()
	return nil
}

// Sent returns a copy of every outbound message so far.
func (r *Recorder) Sent() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.sent...)
}

// Push queues an inbound message.
func (r *Recorder) Push(msg []byte) { r.in <- msg }

func (r *Recorder) Serve(ctx context.Context, deliver func([]byte)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-r.in:
			deliver(msg)
		}
	}
}

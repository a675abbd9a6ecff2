package host

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	game_log "github.com/ingyamilmolinar/seqplayer/internal/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// WebSocket dials the host and reconnects after RetryDelay when the
// connection drops. Messages are text frames holding one JSON document.
type WebSocket struct {
	URL        string
	Header     http.Header
	Dialer     *websocket.Dialer
	RetryDelay time.Duration

	logger *game_log.Logger

	mu   sync.Mutex // guards conn and serializes writes
	conn *websocket.Conn

	// OnConnect runs after every successful dial, once Send can reach the
	// new connection.
	OnConnect func()
}

func NewWebSocket(url string, logger *game_log.Logger) *WebSocket {
	if logger == nil {
		logger = game_log.Discard()
	}
	return &WebSocket{
		URL:        url,
		Dialer:     websocket.DefaultDialer,
		RetryDelay: 5 * time.Second,
		logger:     logger,
	}
}

// Connected reports whether a connection is up.
func (w *WebSocket) Connected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn != nil
}

func (w *WebSocket) Send(msg []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return ErrClosed
	}
	w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := w.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		return fmt.Errorf("websocket send: %w", err)
	}
	return nil
}

func (w *WebSocket) Serve(ctx context.Context, deliver func([]byte)) error {
	for {
		conn, _, err := w.Dialer.DialContext(ctx, w.URL, w.Header)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Warnf("[HOST] dial %s: %v; retrying in %s", w.URL, err, w.RetryDelay)
		} else {
			w.logger.Infof("[HOST] connected to %s", w.URL)
			w.serveConn(ctx, conn, deliver)
			w.logger.Infof("[HOST] disconnected from %s", w.URL)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.RetryDelay):
		}
	}
}

func (w *WebSocket) serveConn(ctx context.Context, conn *websocket.Conn, deliver func([]byte)) {
	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()
	if w.OnConnect != nil {
		w.OnConnect()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					w.logger.Warnf("[HOST] read: %v", err)
				}
				return
			}
			deliver(msg)
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
loop:
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "player shutting down"))
			w.mu.Unlock()
			break loop
		case <-done:
			break loop
		case <-ping.C:
			w.mu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			w.mu.Unlock()
			if err != nil {
				w.logger.Warnf("[HOST] ping: %v", err)
			}
		}
	}

	w.mu.Lock()
	w.conn = nil
	w.mu.Unlock()
	conn.Close()
	<-done
}

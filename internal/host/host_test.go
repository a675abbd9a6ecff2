package host

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStdioRoundTrip(t *testing.T) {
	in := strings.NewReader("{\"cmd\":\"close\"}\n\n  {\"cmd\":\"py_btc_ai2_3_3\",\"content\":{}}  \n")
	out := &lockedBuffer{}
	s := NewStdio(in, out, nil)
	var got []string
	err := s.Serve(context.Background(), func(msg []byte) { got = append(got, string(msg)) })
	if err != nil {
		t.Fatalf("serve: %v", err)
	}
	if len(got) != 2 || got[0] != `{"cmd":"close"}` || !strings.HasPrefix(got[1], `{"cmd":"py_btc`) {
		t.Fatalf("delivered %q", got)
	}
	if err := s.Send([]byte(`{"cmd":"ready"}`)); err != nil {
		t.Fatalf("send after EOF: %v", err)
	}
	s.Close()
	if err := s.Send([]byte(`{"cmd":"ready"}`)); !errors.Is(err, ErrClosed) {
		t.Fatalf("send after Close err=%v want ErrClosed", err)
	}
	if out.String() != "{\"cmd\":\"ready\"}\n" {
		t.Fatalf("out=%q", out.String())
	}
}

func TestStdioSend(t *testing.T) {
	out := &lockedBuffer{}
	s := NewStdio(strings.NewReader(""), out, nil)
	s.Send([]byte("{\"cmd\":\"ready\"}\n"))
	s.Send([]byte(`{"cmd":"result"}`))
	if out.String() != "{\"cmd\":\"ready\"}\n{\"cmd\":\"result\"}\n" {
		t.Fatalf("out=%q", out.String())
	}
}

func TestStdioServeStopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	s := NewStdio(pr, io.Discard, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ctx, func([]byte) {}) }()
	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err=%v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("serve did not stop")
	}
}

func TestWebSocketRoundTrip(t *testing.T) {
	upgrader := websocket.Upgrader{}
	fromPlayer := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`{"cmd":"close"}`))
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			fromPlayer <- string(msg)
		}
	}))
	defer srv.Close()

	ws := NewWebSocket("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	ws.RetryDelay = 10 * time.Millisecond
	if err := ws.Send([]byte("x")); !errors.Is(err, ErrClosed) {
		t.Fatalf("send before connect err=%v want ErrClosed", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	delivered := make(chan string, 4)
	errc := make(chan error, 1)
	go func() {
		errc <- ws.Serve(ctx, func(msg []byte) { delivered <- string(msg) })
	}()

	select {
	case msg := <-delivered:
		if msg != `{"cmd":"close"}` {
			t.Fatalf("delivered %q", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no inbound message")
	}
	if err := ws.Send([]byte(`{"cmd":"ready"}`)); err != nil {
		t.Fatalf("send: %v", err)
	}
	select {
	case msg := <-fromPlayer:
		if msg != `{"cmd":"ready"}` {
			t.Fatalf("host got %q", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("host received nothing")
	}

	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("serve err=%v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("serve did not stop")
	}
	if ws.Connected() {
		t.Fatalf("still connected after shutdown")
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.Send([]byte("a"))
	r.Push([]byte("b"))
	ctx, cancel := context.WithCancel(context.Background())
	var got string
	r.Serve(ctx, func(msg []byte) { got = string(msg); cancel() })
	if got != "b" || len(r.Sent()) != 1 {
		t.Fatalf("got=%q sent=%d", got, len(r.Sent()))
	}
}

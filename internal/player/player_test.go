package player

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/ingyamilmolinar/seqplayer/core/bridge"
	"github.com/ingyamilmolinar/seqplayer/core/loader"
	"github.com/ingyamilmolinar/seqplayer/core/motion"
	"github.com/ingyamilmolinar/seqplayer/internal/host"
	"github.com/ingyamilmolinar/seqplayer/internal/store"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// instantFetcher answers every path at once; paths containing a fail marker
// error out.
func instantFetcher(fail ...string) loader.Fetcher[string] {
	return loader.FetchFunc[string](func(ctx context.Context, path string, done func(string, error)) {
		for _, f := range fail {
			if strings.Contains(path, f) {
				done("", errors.New("404"))
				return
			}
		}
		done(path, nil)
	})
}

func newTestPlayer(fetcher loader.Fetcher[string]) (*Player[string], *fakeClock, *host.Recorder) {
	rec := host.NewRecorder()
	p, clk := newPlayerWithHost(fetcher, rec)
	return p, clk, rec
}

func newPlayerWithHost(fetcher loader.Fetcher[string], h bridge.Host) (*Player[string], *fakeClock) {
	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	p := New[string](Options[string]{
		Motion:       motion.DefaultParams(),
		Loader:       loader.DefaultParams(),
		Paths:        loader.PathTemplate{Base: "seq", Ext: "jpg"},
		Variants:     loader.CountingVariant{Store: store.NewMemory(), Max: 3},
		Fetcher:      fetcher,
		Fallback:     "missing",
		DefaultStyle: "Style1",
		DefaultWord:  "Word1",
		Host:         h,
		Now:          clk.now,
	})
	return p, clk
}

func content(style, word string) []byte {
	return []byte(`{"cmd":"py_btc_ai2_3_3","content":{"style":"` + style + `","word":"` + word + `"}}`)
}

func TestEndToEnd(t *testing.T) {
	p, clk, rec := newTestPlayer(instantFetcher("/07.jpg"))
	p.Start()
	p.Receive(content("Style2", "Word2"))
	p.Tick()
	if got := rec.Sent(); len(got) != 1 || string(got[0]) != `{"cmd":"ready"}` {
		t.Fatalf("sent=%q", got)
	}
	if p.Status() != loader.StatusLoading {
		t.Fatalf("status=%v", p.Status())
	}
	p.Tick()
	if done, failed, total := p.Progress(); done != 24 || failed != 1 || total != 24 {
		t.Fatalf("progress=%d/%d/%d", done, failed, total)
	}
	if _, _, ok := p.Frame(); ok {
		t.Fatalf("frame visible before min-visible elapsed")
	}
	if _, ok := p.Motion().(motion.Manual); !ok {
		t.Fatalf("motion=%v before ready", p.Motion())
	}

	clk.advance(3 * time.Second)
	p.Tick()
	if p.Status() != loader.StatusReady {
		t.Fatalf("status=%v want ready", p.Status())
	}
	if _, ok := p.Motion().(motion.Auto); !ok {
		t.Fatalf("motion=%v want Auto", p.Motion())
	}
	h, idx, ok := p.Frame()
	if !ok || idx != 0 || h != "seq/Style2/Word2/v1/01.jpg" {
		t.Fatalf("frame=%q idx=%d ok=%v", h, idx, ok)
	}
	for i := 0; i < 30; i++ {
		p.Tick()
	}
	h, idx, _ = p.Frame()
	if idx != 6 || h != "missing" {
		t.Fatalf("after 31 ticks frame=%q idx=%d", h, idx)
	}

	p.Finish()
	res := gjson.ParseBytes(rec.Sent()[1])
	if res.Get("content.finished").Raw != "true" || res.Get("content.frame").Int() != 7 || res.Get("content.style").Str != "Style2" {
		t.Fatalf("result=%s", res.Raw)
	}
}

func TestSecondVisitLoadsNextVariant(t *testing.T) {
	p, clk, _ := newTestPlayer(instantFetcher())
	p.Receive(content("S", "W"))
	p.Tick()
	p.Tick()
	clk.advance(3 * time.Second)
	p.Tick()
	p.Receive(content("S", "X"))
	p.Receive(content("S", "W"))
	p.Tick()
	if req, _ := p.Latest(); req.Word != "W" || req.Variant != 2 {
		t.Fatalf("latest=%v want W v2", req)
	}
	held := p.Position()
	p.Tick()
	if p.Position() != held {
		t.Fatalf("position moved from %v to %v while reloading", held, p.Position())
	}
	// The previous sequence stays on screen until the new one is ready.
	if h, _, ok := p.Frame(); !ok || !strings.Contains(h, "/v1/") {
		t.Fatalf("frame=%q ok=%v", h, ok)
	}
}

func TestCloseWhileLoading(t *testing.T) {
	pending := loader.FetchFunc[string](func(context.Context, string, func(string, error)) {})
	p, _, rec := newTestPlayer(pending)
	p.Receive(content("S", "W"))
	p.Receive([]byte(`{"cmd":"close"}`))
	p.Tick()
	sent := rec.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent=%q", sent)
	}
	c := gjson.GetBytes(sent[0], "content")
	if c.Get("success").Raw != "false" || c.Get("closed").Raw != "true" {
		t.Fatalf("result=%s", c.Raw)
	}
	if !p.Closed() || p.Status() != loader.StatusLoading {
		t.Fatalf("closed=%v status=%v", p.Closed(), p.Status())
	}
}

func TestWatchdogStopsMotion(t *testing.T) {
	pending := loader.FetchFunc[string](func(context.Context, string, func(string, error)) {})
	p, clk, _ := newTestPlayer(pending)
	p.Receive(content("S", "W"))
	p.Tick()
	clk.advance(30 * time.Second)
	p.Tick()
	if p.Status() != loader.StatusFailed || !errors.Is(p.Err(), loader.ErrSequenceTimeout) {
		t.Fatalf("status=%v err=%v", p.Status(), p.Err())
	}
	// A repeat of the same content retries.
	p.Receive(content("S", "W"))
	p.Tick()
	if p.Status() != loader.StatusLoading {
		t.Fatalf("status=%v want loading on retry", p.Status())
	}
}

func TestSimulate(t *testing.T) {
	p, _, _ := newTestPlayer(instantFetcher())
	p.Post(func() { p.Simulate("Style2", "Word1") })
	p.Tick()
	if req, ok := p.Latest(); !ok || req.Style != "Style2" || req.Word != "Word1" {
		t.Fatalf("latest=%v ok=%v", req, ok)
	}
}

func TestDragThroughPlayer(t *testing.T) {
	p, clk, _ := newTestPlayer(instantFetcher())
	p.Receive(content("S", "W"))
	p.Tick()
	p.Tick()
	clk.advance(3 * time.Second)
	p.Tick()
	p.BeginDrag(100)
	p.DragTo(150)
	if p.Position() < 5 || p.Position() > 5.3 {
		t.Fatalf("position=%v want about 5", p.Position())
	}
	p.EndDrag()
	if _, ok := p.Motion().(motion.Inertia); !ok {
		t.Fatalf("motion=%v want Inertia", p.Motion())
	}
	p.Reset()
	if _, ok := p.Motion().(motion.Resetting); !ok {
		t.Fatalf("motion=%v want Resetting", p.Motion())
	}
}

func TestOnFrame(t *testing.T) {
	p, clk, _ := newTestPlayer(instantFetcher())
	var seen []int
	p.OnFrame = func(idx int) { seen = append(seen, idx) }
	p.Receive(content("S", "W"))
	p.Tick()
	p.Tick()
	if len(seen) != 0 {
		t.Fatalf("frames reported before ready: %v", seen)
	}
	clk.advance(3 * time.Second)
	for i := 0; i < 11; i++ {
		p.Tick()
	}
	// At 0.2 frames per tick, eleven ticks cover frames 0 through 2.
	if len(seen) != 3 || seen[0] != 0 || seen[1] != 1 || seen[2] != 2 {
		t.Fatalf("seen=%v want [0 1 2]", seen)
	}
}

// pending reads the bridge outbox size on the loop.
func pending(t *testing.T, p *Player[string]) int {
	t.Helper()
	c := make(chan int, 1)
	p.Post(func() { c <- p.bridge.Pending() })
	select {
	case n := <-c:
		return n
	case <-time.After(2 * time.Second):
		t.Fatalf("loop not running")
		return 0
	}
}

func waitMessage(t *testing.T, c <-chan string) string {
	t.Helper()
	select {
	case msg := <-c:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatalf("host received nothing")
		return ""
	}
}

// runOverWebSocket starts a player and a websocket transport to url the way
// the headless display does.
func runOverWebSocket(t *testing.T, url string) (*Player[string], *host.WebSocket) {
	t.Helper()
	ws := host.NewWebSocket("ws"+strings.TrimPrefix(url, "http"), nil)
	ws.RetryDelay = 20 * time.Millisecond
	p, _ := newPlayerWithHost(instantFetcher(), ws)
	ws.OnConnect = p.Connected
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	p.Start()
	wg.Add(2)
	go func() { defer wg.Done(); ws.Serve(ctx, p.Receive) }()
	go func() { defer wg.Done(); p.Run(ctx) }()
	return p, ws
}

func TestReadyReachesSlowHost(t *testing.T) {
	upgrader := websocket.Upgrader{}
	got := make(chan string, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			got <- string(msg)
		}
	}))
	defer srv.Close()

	p, _ := runOverWebSocket(t, srv.URL)

	if msg := waitMessage(t, got); msg != `{"cmd":"ready"}` {
		t.Fatalf("first message %q", msg)
	}
	if n := pending(t, p); n != 0 {
		t.Fatalf("pending=%d after ready went out", n)
	}
	select {
	case msg := <-got:
		t.Fatalf("unexpected %q", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestResultHeldAcrossReconnect(t *testing.T) {
	upgrader := websocket.Upgrader{}
	got := make(chan string, 8)
	release := make(chan struct{})
	var releaseOnce sync.Once
	var mu sync.Mutex
	conns := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		conns++
		n := conns
		mu.Unlock()
		if n > 1 {
			<-release
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			got <- string(msg)
			if n == 1 {
				// Drop the first connection once the player said hello.
				return
			}
		}
	}))
	defer srv.Close()
	defer releaseOnce.Do(func() { close(release) })

	p, ws := runOverWebSocket(t, srv.URL)

	if msg := waitMessage(t, got); msg != `{"cmd":"ready"}` {
		t.Fatalf("first message %q", msg)
	}
	deadline := time.Now().Add(5 * time.Second)
	for ws.Connected() {
		if time.Now().After(deadline) {
			t.Fatalf("first connection never dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}

	p.Post(p.Finish)
	if n := pending(t, p); n != 1 {
		t.Fatalf("pending=%d want the result held while disconnected", n)
	}
	releaseOnce.Do(func() { close(release) })

	res := gjson.Parse(waitMessage(t, got))
	if res.Get("cmd").Str != "result" || res.Get("content.finished").Raw != "true" {
		t.Fatalf("after reconnect got %s", res.Raw)
	}
	if n := pending(t, p); n != 0 {
		t.Fatalf("pending=%d after reconnect", n)
	}
}

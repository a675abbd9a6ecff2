package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"
)

type result struct {
	bounds image.Rectangle
	err    error
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func bounds(img image.Image) image.Rectangle { return img.Bounds() }

func wait(t *testing.T, ch <-chan result) result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatalf("fetch never completed")
	}
	return result{}
}

func TestHTTPFetch(t *testing.T) {
	frame := encodePNG(t, 4, 3)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/S/W/v1/01.png" {
			w.Write(frame)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	h := NewHTTP[image.Rectangle](srv.Client(), 2, time.Second, bounds, nil)
	ch := make(chan result, 1)
	h.Fetch(context.Background(), srv.URL+"/S/W/v1/01.png", func(b image.Rectangle, err error) {
		ch <- result{b, err}
	})
	if r := wait(t, ch); r.err != nil || r.bounds.Dx() != 4 || r.bounds.Dy() != 3 {
		t.Fatalf("got %v, %v", r.bounds, r.err)
	}

	h.Fetch(context.Background(), srv.URL+"/S/W/v1/02.png", func(b image.Rectangle, err error) {
		ch <- result{b, err}
	})
	if r := wait(t, ch); !errors.Is(r.err, ErrStatus) {
		t.Fatalf("err=%v want ErrStatus", r.err)
	}

	ok, err := h.Exists(context.Background(), srv.URL+"/S/W/v1/01.png")
	if err != nil || !ok {
		t.Fatalf("exists=%v err=%v", ok, err)
	}
	if ok, _ := h.Exists(context.Background(), srv.URL+"/missing"); ok {
		t.Fatalf("missing frame reported present")
	}
}

func TestHTTPBoundsConcurrency(t *testing.T) {
	frame := encodePNG(t, 1, 1)
	var inFlight, peak atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		inFlight.Add(-1)
		w.Write(frame)
	}))
	defer srv.Close()

	h := NewHTTP[image.Rectangle](srv.Client(), 2, 5*time.Second, bounds, nil)
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		h.Fetch(context.Background(), srv.URL, func(image.Rectangle, error) { wg.Done() })
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()
	if p := peak.Load(); p > 2 {
		t.Fatalf("peak concurrency %d exceeds 2", p)
	}
}

func TestHTTPCancelledContext(t *testing.T) {
	h := NewHTTP[image.Rectangle](nil, 1, time.Second, bounds, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ch := make(chan result, 1)
	h.Fetch(ctx, "http://127.0.0.1:1/never", func(b image.Rectangle, err error) { ch <- result{b, err} })
	if r := wait(t, ch); !errors.Is(r.err, context.Canceled) {
		t.Fatalf("err=%v want context.Canceled", r.err)
	}
}

func TestFSFetch(t *testing.T) {
	fsys := fstest.MapFS{
		"seq/S/W/v2/01.png": {Data: encodePNG(t, 2, 2)},
		"seq/S/W/v2/02.png": {Data: []byte("not an image")},
	}
	f := NewFS[image.Rectangle](fsys, 4, bounds)
	ch := make(chan result, 1)
	for _, c := range []struct {
		name    string
		wantErr bool
	}{
		{"seq/S/W/v2/01.png", false},
		{"/seq/S/W/v2/01.png", false},
		{"seq/S/W/v2/02.png", true},
		{"seq/S/W/v2/03.png", true},
	} {
		f.Fetch(context.Background(), c.name, func(b image.Rectangle, err error) { ch <- result{b, err} })
		r := wait(t, ch)
		if (r.err != nil) != c.wantErr {
			t.Fatalf("%s: err=%v wantErr=%v", c.name, r.err, c.wantErr)
		}
	}
	if ok, err := f.Exists(context.Background(), "seq/S/W/v2/03.png"); ok || err != nil {
		t.Fatalf("exists=%v err=%v", ok, err)
	}
}

func TestPlaceholder(t *testing.T) {
	img := Placeholder(10, 6)
	if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 6 {
		t.Fatalf("bounds=%v", img.Bounds())
	}
	if img.RGBAAt(0, 0) != placeholderCross || img.RGBAAt(9, 5) != placeholderCross {
		t.Fatalf("cross missing at corners")
	}
	if img.RGBAAt(5, 0) != placeholderFill {
		t.Fatalf("fill missing")
	}
	if Placeholder(0, 0).Bounds().Dx() != 1 {
		t.Fatalf("degenerate size not clamped")
	}
}

func TestIsRemote(t *testing.T) {
	if !IsRemote("https://cdn/x") || IsRemote("assets/seq") {
		t.Fatalf("IsRemote misclassified")
	}
}

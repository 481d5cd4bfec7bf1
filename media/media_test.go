package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waozixyz/paywall/uierr"
	"github.com/waozixyz/paywall/uithread"
	"github.com/waozixyz/paywall/viewconfig"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type imageServer struct {
	*httptest.Server
	hits    atomic.Int64
	release chan struct{}
}

func newImageServer(t *testing.T, body []byte) *imageServer {
	t.Helper()
	s := &imageServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		if s.release != nil {
			<-s.release
		}
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	t.Cleanup(s.Close)
	return s
}

func newService(t *testing.T, loop *uithread.Loop) *Service {
	t.Helper()
	if loop == nil {
		loop = uithread.New(nil)
	}
	s, err := NewService(Options{Loop: loop, Client: http.DefaultClient, Timeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestNewServiceNeedsLoop(t *testing.T) {
	_, err := NewService(Options{})
	assert.ErrorIs(t, err, uierr.ErrWrongParameter)
}

func TestFetchIsSingleFlightPerURL(t *testing.T) {
	srv := newImageServer(t, pngBytes(t, 2, 2))
	srv.release = make(chan struct{})
	s := newService(t, nil)

	var wg sync.WaitGroup
	results := make([]image.Image, 5)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := s.Fetch(context.Background(), srv.URL+"/hero.png")
			assert.NoError(t, err)
			results[i] = img
		}()
	}
	require.Eventually(t, func() bool { return srv.hits.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(srv.release)
	wg.Wait()

	assert.Equal(t, int64(1), srv.hits.Load())
	assert.Equal(t, int64(1), s.Fetches())
	for _, img := range results {
		require.NotNil(t, img)
		assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
	}

	_, err := s.Fetch(context.Background(), srv.URL+"/hero.png")
	require.NoError(t, err)
	assert.Equal(t, int64(1), srv.hits.Load(), "served from cache")
}

func TestFetchReportsHTTPErrors(t *testing.T) {
	srv := newImageServer(t, pngBytes(t, 1, 1))
	s := newService(t, nil)
	_, err := s.Fetch(context.Background(), srv.URL+"/missing.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestPreviewArrivesBeforeFinal(t *testing.T) {
	srv := newImageServer(t, pngBytes(t, 4, 4))
	loop := uithread.New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)
	s := newService(t, loop)

	got := make(chan string, 2)
	preview := viewconfig.ImageAsset{Source: viewconfig.ImageBase64, Data: pngBytes(t, 1, 1)}
	ref := viewconfig.ImageAsset{Source: viewconfig.ImageRemote, URL: srv.URL + "/hero.png", Preview: &preview}
	s.LoadImage(ref,
		func(img image.Image) { got <- "preview " + img.Bounds().String() },
		func(img image.Image) { got <- "final " + img.Bounds().String() },
	)
	var order []string
	for range 2 {
		select {
		case v := <-got:
			order = append(order, v)
		case <-time.After(2 * time.Second):
			t.Fatal("delivery timed out")
		}
	}
	assert.Equal(t, []string{"preview (0,0)-(1,1)", "final (0,0)-(4,4)"}, order)
}

func TestLoadsFileImages(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "icon.png"), pngBytes(t, 3, 3), 0o644))
	s, err := NewService(Options{Loop: uithread.New(nil), BaseDir: dir})
	require.NoError(t, err)
	defer s.Close()

	img, err := s.load(context.Background(), viewconfig.ImageAsset{Source: viewconfig.ImageFile, Path: "icon.png"})
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())

	_, err = s.load(context.Background(), viewconfig.ImageAsset{})
	assert.ErrorIs(t, err, uierr.ErrUnsupportedData)
}

func TestClosedServiceDropsDeliveries(t *testing.T) {
	loop := uithread.New(nil)
	s := newService(t, loop)
	called := false
	s.deliver(func(image.Image) { called = true }, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	s.Close()
	assert.Equal(t, 1, loop.RunPending())
	assert.False(t, called)
}

func TestPrefetchWarmsCache(t *testing.T) {
	srv := newImageServer(t, pngBytes(t, 1, 1))
	s := newService(t, nil)
	urls := []string{srv.URL + "/a.png", srv.URL + "/b.png", srv.URL + "/a.png", srv.URL + "/missing.png"}
	require.NoError(t, s.Prefetch(context.Background(), "pw", urls))
	_, ok := s.cached(srv.URL + "/a.png")
	assert.True(t, ok)
	_, ok = s.cached(srv.URL + "/b.png")
	assert.True(t, ok)
	_, ok = s.cached(srv.URL + "/missing.png")
	assert.False(t, ok)
	assert.LessOrEqual(t, srv.hits.Load(), int64(4))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(nil)
	assert.Error(t, err)
	_, err = Decode([]byte("not an image"))
	assert.Error(t, err)
}

func TestWaitCoversPendingLoads(t *testing.T) {
	loop := uithread.New(nil)
	s := newService(t, loop)
	var got image.Image
	s.LoadImage(viewconfig.ImageAsset{Source: viewconfig.ImageBase64, Data: pngBytes(t, 5, 5)}, nil,
		func(img image.Image) { got = img })
	s.Wait()
	assert.Equal(t, 1, loop.RunPending())
	require.NotNil(t, got)
	assert.Equal(t, 5, got.Bounds().Dx())
}

// Package media fetches, decodes and caches paywall images. Every remote URL
// is fetched at most once at a time and results are delivered on the UI
// loop.
package media

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/waozixyz/paywall/uierr"
	"github.com/waozixyz/paywall/uithread"
	"github.com/waozixyz/paywall/viewconfig"
)

// Loader is what the screen needs from a media service. onPreview, when
// the image has one, runs before onFinal. Both run on the UI loop.
type Loader interface {
	LoadImage(ref viewconfig.ImageAsset, onPreview, onFinal func(image.Image))
	Preload(configID string, urls []string)
}

const (
	DefaultTimeout        = 15 * time.Second
	DefaultPreloadWorkers = 4
	maxImageBytes         = 20 << 20
)

type Options struct {
	Loop    *uithread.Loop // required
	Client  *http.Client   // defaults to NewHTTPClient(Timeout, false)
	Timeout time.Duration
	// RatePerSecond caps outbound fetches. Zero is unlimited.
	RatePerSecond  float64
	PreloadWorkers int
	BaseDir        string // resolves relative file images
}

// Service is the shared Loader. It is safe for concurrent use.
type Service struct {
	loop    *uithread.Loop
	client  *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	workers int
	baseDir string

	group   singleflight.Group
	loads   sync.WaitGroup
	mu      sync.Mutex
	cache   map[string]image.Image
	fetches atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool
}

var _ Loader = (*Service)(nil)

func NewService(opts Options) (*Service, error) {
	if opts.Loop == nil {
		return nil, uierr.WrongParameter("loop", "media service needs a UI loop")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Client == nil {
		opts.Client = NewHTTPClient(opts.Timeout, false)
	}
	if opts.PreloadWorkers <= 0 {
		opts.PreloadWorkers = DefaultPreloadWorkers
	}
	s := &Service{
		loop:    opts.Loop,
		client:  opts.Client,
		timeout: opts.Timeout,
		workers: opts.PreloadWorkers,
		baseDir: opts.BaseDir,
		cache:   make(map[string]image.Image),
	}
	if opts.RatePerSecond > 0 {
		burst := int(opts.RatePerSecond)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s, nil
}

// LoadImage resolves ref off the UI thread. Failures are logged and drop
// the delivery.
func (s *Service) LoadImage(ref viewconfig.ImageAsset, onPreview, onFinal func(image.Image)) {
	s.loads.Add(1)
	go func() {
		defer s.loads.Done()
		if ref.Preview != nil && onPreview != nil {
			img, err := s.load(s.ctx, *ref.Preview)
			if err != nil {
				logger().Warn("Service: preview failed", "image", describe(*ref.Preview), "error", err)
			} else {
				s.deliver(onPreview, img)
			}
		}
		img, err := s.load(s.ctx, ref)
		if err != nil {
			logger().Warn("Service: image failed", "image", describe(ref), "error", err)
			return
		}
		if onFinal != nil {
			s.deliver(onFinal, img)
		}
	}()
}

// Preload warms the cache in the background.
func (s *Service) Preload(configID string, urls []string) {
	go func() {
		if err := s.Prefetch(s.ctx, configID, urls); err != nil {
			logger().Debug("Service: preload stopped", "config", configID, "error", err)
		}
	}()
}

// Prefetch fetches urls with a bounded number of workers and returns when
// all are cached or failed. Individual failures are logged, not returned.
func (s *Service) Prefetch(ctx context.Context, configID string, urls []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, u := range urls {
		g.Go(func() error {
			if _, err := s.Fetch(ctx, u); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger().Warn("Service: preload fetch failed", "config", configID, "url", u, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logger().Debug("Service: preloaded", "config", configID, "urls", len(urls))
	return nil
}

// Fetch returns the decoded image at url. Concurrent callers share one
// request; a cancelled caller leaves the shared request running.
func (s *Service) Fetch(ctx context.Context, url string) (image.Image, error) {
	if img, ok := s.cached(url); ok {
		return img, nil
	}
	ch := s.group.DoChan(url, func() (any, error) {
		if img, ok := s.cached(url); ok {
			return img, nil
		}
		fctx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()
		data, err := s.get(fctx, url)
		if err != nil {
			return nil, err
		}
		img, err := Decode(data)
		if err != nil {
			return nil, fmt.Errorf("media: %s: %w", url, err)
		}
		s.mu.Lock()
		s.cache[url] = img
		s.mu.Unlock()
		return img, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(image.Image), nil
	}
}

func (s *Service) cached(url string) (image.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, ok := s.cache[url]
	return img, ok
}

func (s *Service) get(ctx context.Context, url string) ([]byte, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("media: rate limit: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("media: request %s: %w", url, err)
	}
	s.fetches.Add(1)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media: GET %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media: GET %s: unexpected status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("media: read %s: %w", url, err)
	}
	logger().Debug("Service: fetched", "url", url, "bytes", len(data))
	return data, nil
}

func (s *Service) load(ctx context.Context, ref viewconfig.ImageAsset) (image.Image, error) {
	switch ref.Source {
	case viewconfig.ImageBase64:
		return Decode(ref.Data)
	case viewconfig.ImageFile:
		path := ref.Path
		if !filepath.IsAbs(path) && s.baseDir != "" {
			path = filepath.Join(s.baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("media: %w", err)
		}
		return Decode(data)
	case viewconfig.ImageRemote:
		return s.Fetch(ctx, ref.URL)
	}
	return nil, uierr.UnsupportedData("image.source", fmt.Sprint(ref.Source))
}

// deliver posts fn to the UI loop unless the service was closed.
func (s *Service) deliver(fn func(image.Image), img image.Image) {
	s.loop.Post(func() {
		if s.closed.Load() {
			return
		}
		fn(img)
	})
}

// Wait blocks until every LoadImage call so far has posted its deliveries.
func (s *Service) Wait() { s.loads.Wait() }

// Fetches counts HTTP requests issued.
func (s *Service) Fetches() int64 { return s.fetches.Load() }

// Close cancels in-flight fetches and drops pending deliveries.
func (s *Service) Close() {
	s.closed.Store(true)
	s.cancel()
}

func describe(ref viewconfig.ImageAsset) string {
	switch ref.Source {
	case viewconfig.ImageBase64:
		return fmt.Sprintf("embedded(%d bytes)", len(ref.Data))
	case viewconfig.ImageFile:
		return ref.Path
	}
	return ref.URL
}

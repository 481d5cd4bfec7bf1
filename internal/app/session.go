package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/waozixyz/paywall/commerce"
	"github.com/waozixyz/paywall/examples"
	"github.com/waozixyz/paywall/internal/config"
	"github.com/waozixyz/paywall/media"
	"github.com/waozixyz/paywall/render"
	"github.com/waozixyz/paywall/screen"
	"github.com/waozixyz/paywall/uithread"
	"github.com/waozixyz/paywall/viewconfig"
)

// LoadDocument reads a paywall document from path, or the embedded example
// of that name when path is empty.
func LoadDocument(path, example string) ([]byte, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("app: read document: %w", err)
		}
		return data, nil
	}
	if example == "" {
		return nil, fmt.Errorf("app: no document given")
	}
	return examples.Document(example)
}

const settlePoll = 10 * time.Millisecond

type SessionOptions struct {
	Config   config.Config
	Provider commerce.Provider // defaults to a mock with sample products
	Listener screen.EventListener
	Measurer render.Measurer
	Clock    uithread.Clock
	// Media replaces the HTTP media service, mostly for tests.
	Media media.Loader
}

// Session is one UI loop with a screen and the services it uses.
type Session struct {
	Loop   *uithread.Loop
	Screen *screen.Screen
	Media  *media.Service // nil when SessionOptions.Media was set

	config config.Config
}

func NewSession(opts SessionOptions) (*Session, error) {
	cfg := opts.Config
	loop := uithread.New(opts.Clock)
	s := &Session{Loop: loop, config: cfg}

	loader := opts.Media
	if loader == nil {
		svc, err := media.NewService(media.Options{
			Loop:          loop,
			Client:        media.NewHTTPClient(cfg.MediaTimeout, cfg.BrowserTLS),
			Timeout:       cfg.MediaTimeout,
			RatePerSecond: cfg.MediaRate,
			BaseDir:       cfg.AssetDir,
		})
		if err != nil {
			return nil, err
		}
		s.Media = svc
		loader = svc
	}
	provider := opts.Provider
	if provider == nil {
		provider = &commerce.Mock{Products: commerce.SampleProducts()}
	}
	listener := opts.Listener
	if listener == nil {
		listener = &LogListener{MaxRetries: 3}
	}
	scr, err := screen.New(screen.Options{
		Loop:       loop,
		Provider:   provider,
		Listener:   listener,
		Media:      loader,
		Backend:    cfg.Backend,
		Locale:     cfg.Locale,
		Viewport:   cfg.Viewport,
		Measurer:   opts.Measurer,
		Host:       "preview",
		RetryDelay: cfg.RetryDelay,
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Screen = scr
	return s, nil
}

// Present maps raw and presents it. Products are fetched from the provider.
func (s *Session) Present(raw []byte, paywallID string) (*viewconfig.ViewConfiguration, error) {
	cfg, err := viewconfig.Map(raw, viewconfig.PaywallContext{PaywallID: paywallID, Locale: s.config.Locale})
	if err != nil {
		return nil, err
	}
	if err := s.Screen.Present(cfg, nil); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PresentSample maps raw and presents it bound to sample products, as many
// as the default style's product block declares.
func (s *Session) PresentSample(raw []byte, paywallID string) (*viewconfig.ViewConfiguration, error) {
	cfg, err := viewconfig.Map(raw, viewconfig.PaywallContext{PaywallID: paywallID, Locale: s.config.Locale})
	if err != nil {
		return nil, err
	}
	if err := s.Screen.Present(cfg, SampleProductsFor(cfg)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SampleProductsFor trims commerce.SampleProducts to the product count of
// cfg's default style.
func SampleProductsFor(cfg *viewconfig.ViewConfiguration) []commerce.Product {
	products := commerce.SampleProducts()
	if st := cfg.DefaultStyle(); st != nil && len(st.ProductBlock.Products) < len(products) {
		products = products[:len(st.ProductBlock.Products)]
	}
	return products
}

// Settle drains the loop until products are bound and every image load
// requested so far has been applied.
func (s *Session) Settle(ctx context.Context) error {
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.Media != nil {
			s.Media.Wait()
		}
		if s.Loop.RunPending() > 0 {
			continue
		}
		if s.Screen.Phase() != screen.PhaseProductsPending {
			slog.Debug("App: settled", "rounds", i)
			return nil
		}
		time.Sleep(settlePoll)
	}
}

func (s *Session) Close() {
	if s.Screen != nil {
		s.Screen.Dispose()
	}
	if s.Media != nil {
		s.Media.Close()
	}
}

// Window is the window config for the session viewport.
func (s *Session) Window(title string) render.WindowConfig {
	w := render.DefaultWindowConfig()
	w.Width = int(s.config.Viewport.W)
	w.Height = int(s.config.Viewport.H)
	if title != "" {
		w.Title = title
	}
	return w
}

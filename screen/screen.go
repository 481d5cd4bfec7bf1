// Package screen drives one paywall presentation: it builds the surface for
// a configuration, loads and binds products and runs purchase and restore
// through the commerce provider. Every method must be called on the UI loop.
package screen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/waozixyz/paywall/commerce"
	"github.com/waozixyz/paywall/element"
	"github.com/waozixyz/paywall/layout"
	"github.com/waozixyz/paywall/media"
	"github.com/waozixyz/paywall/render"
	"github.com/waozixyz/paywall/resolve"
	"github.com/waozixyz/paywall/surface"
	"github.com/waozixyz/paywall/uierr"
	"github.com/waozixyz/paywall/uithread"
	"github.com/waozixyz/paywall/viewconfig"
)

// DefaultRetryDelay separates a failed product fetch from its retry.
const DefaultRetryDelay = 2000 * time.Millisecond

// ErrBusy rejects a purchase or restore while another one is in flight.
var ErrBusy = errors.New("screen: commerce call in flight")

// Surface is the built paywall as both layout backends expose it.
type Surface interface {
	Root() *render.View
	Props() *surface.Props
	ProductSlots() int
	Reversed() bool
	BindProduct(slot int, t surface.ProductTexts) error
	HideProductSlot(slot int)
	SelectProduct(slot int)
	Selected() int
	SetLoading(on bool)
	Relayout() error
}

var (
	_ Surface = (*layout.Surface)(nil)
	_ Surface = (*element.Surface)(nil)
)

type Backend uint8

const (
	// BackendConstraint is the anchor and constraint-set builder.
	BackendConstraint Backend = iota
	// BackendDeclarative is the element tree.
	BackendDeclarative
)

func (b Backend) String() string {
	if b == BackendDeclarative {
		return "declarative"
	}
	return "constraint"
}

func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "constraint", "layout":
		return BackendConstraint, nil
	case "declarative", "element":
		return BackendDeclarative, nil
	}
	return 0, fmt.Errorf("screen: unknown backend %q (must be constraint or declarative)", s)
}

type Options struct {
	Loop     *uithread.Loop    // required
	Provider commerce.Provider // required
	Listener EventListener
	Media    media.Loader // images stay blank without one

	Backend  Backend
	Locale   string
	Viewport render.Size
	Insets   render.Insets
	Measurer render.Measurer
	Resolve  resolve.Options

	// Host is passed to the provider with every purchase.
	Host       any
	RetryDelay time.Duration

	// OnInvalidate runs after the view tree changed outside a Present call.
	OnInvalidate func()

	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Screen is one paywall presentation slot. Present may be called again
// with a new configuration; the previous tree and its pending callbacks are
// dropped.
type Screen struct {
	opts Options
	tel  *telemetry
	log  *slog.Logger

	phase    Phase
	disposed bool
	// gen identifies the current presentation; callbacks carrying an older
	// value are stale.
	gen uint64
	id  string

	cfg      *viewconfig.ViewConfiguration
	res      *resolve.Resolver
	surf     Surface
	block    *viewconfig.ProductBlock
	products []commerce.Product
	selected int

	ctx    context.Context
	cancel context.CancelFunc
	retry  *uithread.Timer

	requested map[any]bool
}

func New(opts Options) (*Screen, error) {
	if opts.Loop == nil {
		return nil, uierr.WrongParameter("loop", "screen needs a UI loop")
	}
	if opts.Provider == nil {
		return nil, uierr.WrongParameter("provider", "screen needs a commerce provider")
	}
	if opts.Listener == nil {
		opts.Listener = BaseListener{}
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Measurer == nil {
		opts.Measurer = render.MonospaceMeasurer{}
	}
	tel, err := newTelemetry(opts.TracerProvider, opts.MeterProvider)
	if err != nil {
		return nil, fmt.Errorf("screen: telemetry: %w", err)
	}
	return &Screen{opts: opts, tel: tel, log: logger(), selected: -1}, nil
}

func (s *Screen) Phase() Phase { return s.phase }

// Root is the current view tree, nil before the first Present.
func (s *Screen) Root() *render.View {
	if s.surf == nil {
		return nil
	}
	return s.surf.Root()
}

// Surface is the current built surface.
func (s *Screen) Surface() Surface { return s.surf }

// PresentationID identifies the current presentation in logs.
func (s *Screen) PresentationID() string { return s.id }

// Products are the bound products in block order.
func (s *Screen) Products() []commerce.Product { return s.products }

// Selected is the index of the selected product, -1 when none is.
func (s *Screen) Selected() int { return s.selected }

// Present builds cfg and binds products. A nil products slice fetches them
// from the provider. Structural errors abort the presentation and are
// returned; runtime failures go to the listener.
func (s *Screen) Present(cfg *viewconfig.ViewConfiguration, products []commerce.Product) error {
	if s.disposed {
		return uierr.WrongParameter("screen", "screen is disposed")
	}
	if cfg == nil {
		return uierr.WrongParameter("cfg", "configuration is nil")
	}
	s.detach()
	s.gen++
	s.id = uuid.NewString()
	s.log = logger().With("presentation", s.id, "paywall", cfg.ID)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.cfg = cfg
	s.products = nil
	s.selected = -1
	s.requested = make(map[any]bool)
	s.setPhase(PhaseBuilding)

	if err := s.build(); err != nil {
		s.surf = nil
		s.setPhase(PhaseIdle)
		s.opts.Listener.OnRenderingError(err)
		return err
	}
	if s.opts.Media != nil {
		if urls := cfg.RemoteImageURLs(); len(urls) > 0 {
			s.opts.Media.Preload(cfg.ID, urls)
		}
	}
	s.loadImages()

	if products != nil {
		if err := s.bind(products); err != nil {
			s.setPhase(PhaseIdle)
			s.opts.Listener.OnRenderingError(err)
			return err
		}
		s.setPhase(PhaseReady)
		return nil
	}
	s.setPhase(PhaseProductsPending)
	s.surf.SetLoading(true)
	s.fetchProducts()
	return nil
}

func (s *Screen) build() error {
	s.res = resolve.NewResolver(s.cfg, s.opts.Locale, s.opts.Resolve)
	style := s.cfg.DefaultStyle()
	if style == nil {
		return uierr.DecodingFailed("styles.default", "required style is missing")
	}
	s.block = &style.ProductBlock
	opts := surface.Options{
		Viewport: s.opts.Viewport,
		Insets:   s.opts.Insets,
		Measurer: s.opts.Measurer,
		Hooks: surface.Hooks{
			OnProductTap: s.tapProduct,
			OnPurchase:   s.tapPurchase,
			OnAction:     func(a viewconfig.Action) { s.PerformAction(a) },
		},
		OnSettled: func() { s.log.Debug("Screen: layout settled") },
	}
	var err error
	switch s.opts.Backend {
	case BackendDeclarative:
		s.surf, err = element.Build(s.cfg, s.res, opts)
	default:
		s.surf, err = layout.Build(s.cfg, s.res, opts)
	}
	if err != nil {
		return fmt.Errorf("screen: build %s: %w", s.cfg.TemplateID, err)
	}
	s.log.Info("Screen: built", "backend", s.opts.Backend.String(), "template", s.cfg.TemplateID.String(),
		"slots", s.surf.ProductSlots(), "locale", s.res.Locale())
	return nil
}

// Dispose tears the presentation down. Pending timers are cancelled and
// late callbacks are dropped.
func (s *Screen) Dispose() {
	if s.disposed {
		return
	}
	s.detach()
	s.gen++
	s.disposed = true
	s.setPhase(PhaseClosed)
	s.surf = nil
}

// detach stops everything bound to the current presentation.
func (s *Screen) detach() {
	if s.retry != nil {
		s.retry.Cancel()
		s.retry = nil
	}
	if s.cancel != nil {
		s.cancel()
	}
	if c, ok := s.surf.(interface{ Close() }); ok {
		c.Close()
	}
}

// attached returns a guard that reports whether gen is still current.
func (s *Screen) attached(gen uint64) bool { return !s.disposed && s.gen == gen }

// post resumes fn on the UI loop if the presentation is still attached.
func (s *Screen) post(gen uint64, fn func()) {
	s.opts.Loop.Post(func() {
		if !s.attached(gen) {
			s.log.Debug("Screen: dropped stale callback")
			return
		}
		fn()
	})
}

func (s *Screen) setPhase(p Phase) {
	if s.phase == p {
		return
	}
	s.log.Debug("Screen: phase", "from", s.phase.String(), "to", p.String())
	s.phase = p
}

func (s *Screen) invalidate() {
	if s.opts.OnInvalidate != nil {
		s.opts.OnInvalidate()
	}
}

func (s *Screen) setLoading(on bool) {
	if s.surf != nil {
		s.surf.SetLoading(on)
		s.invalidate()
	}
}

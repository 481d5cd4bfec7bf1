package screen

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/waozixyz/paywall/commerce"
	"github.com/waozixyz/paywall/render"
	"github.com/waozixyz/paywall/surface"
	"github.com/waozixyz/paywall/uierr"
	"github.com/waozixyz/paywall/viewconfig"
)

func (s *Screen) fetchProducts() {
	gen := s.gen
	ctx, span := s.tel.start(s.ctx, "paywall.fetch_products", attribute.String("paywall.id", s.cfg.ID))
	s.log.Debug("Screen: fetching products")
	s.opts.Provider.FetchProducts(ctx, s.cfg.ID, func(products []commerce.Product, err error) {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		s.tel.end(context.Background(), span, s.tel.fetches, outcome, err)
		s.post(gen, func() { s.productsLoaded(products, err) })
	})
}

func (s *Screen) productsLoaded(products []commerce.Product, err error) {
	if s.phase == PhaseClosed {
		return
	}
	if err != nil {
		s.log.Warn("Screen: product fetch failed", "error", err)
		if s.opts.Listener.OnLoadingProductsFailed(err) {
			s.scheduleRetry()
			return
		}
		s.setLoading(false)
		s.setPhase(PhaseReady)
		return
	}
	s.setLoading(false)
	if err := s.bind(products); err != nil {
		s.log.Error("Screen: product binding failed", "error", err)
		s.setPhase(PhaseReady)
		s.opts.Listener.OnRenderingError(err)
		return
	}
	s.setPhase(PhaseReady)
	s.invalidate()
}

// scheduleRetry keeps at most one retry timer pending.
func (s *Screen) scheduleRetry() {
	if s.retry != nil && s.retry.Active() {
		return
	}
	gen := s.gen
	s.log.Info("Screen: retrying product fetch", "delay", s.opts.RetryDelay)
	s.retry = s.opts.Loop.PostDelayed(s.opts.RetryDelay, func() {
		s.retry = nil
		if !s.attached(gen) {
			return
		}
		s.fetchProducts()
	})
}

// RetryPending reports whether a product fetch retry is scheduled.
func (s *Screen) RetryPending() bool { return s.retry != nil && s.retry.Active() }

// slotFor maps a product index onto its visual slot. Surfaces that stack
// bottom-up number their slots from the last product.
func (s *Screen) slotFor(index int) int {
	if s.surf.Reversed() {
		return s.surf.ProductSlots() - 1 - index
	}
	return index
}

// bind fills one cell per product in block order, hides the cells left
// over and selects the main product.
func (s *Screen) bind(products []commerce.Product) error {
	slots := s.surf.ProductSlots()
	if len(products) > slots {
		return uierr.WrongParameter("products", "%d products for %d product slots", len(products), slots)
	}
	infos := s.block.Products
	for i := range products {
		texts, err := s.productTexts(&infos[i], &products[i])
		if err != nil {
			return err
		}
		if err := s.surf.BindProduct(s.slotFor(i), texts); err != nil {
			return err
		}
	}
	for i := len(products); i < slots; i++ {
		s.surf.HideProductSlot(s.slotFor(i))
	}
	s.products = products
	s.selected = -1
	if len(products) > 0 {
		main := s.block.MainProductIndex
		if main < 0 || main >= len(products) {
			main = 0
		}
		s.surf.SelectProduct(s.slotFor(main))
		s.selected = main
	}
	if err := s.surf.Relayout(); err != nil {
		return err
	}
	s.loadImages()
	s.log.Info("Screen: products bound", "products", len(products), "slots", slots, "selected", s.selected)
	return nil
}

func (s *Screen) productTexts(info *viewconfig.ProductInfo, p *commerce.Product) (surface.ProductTexts, error) {
	var out surface.ProductTexts
	fields := []struct {
		src *viewconfig.Text
		dst **render.TextContent
	}{
		{info.Title, &out.Title},
		{info.SubtitleFor(p.PaymentMode()), &out.Subtitle},
		{info.SecondTitle, &out.SecondTitle},
		{info.SecondSubtitle, &out.SecondSubtitle},
		{info.TagText, &out.Tag},
	}
	for _, f := range fields {
		if f.src == nil {
			continue
		}
		tc, err := s.res.Text(f.src, p)
		if err != nil {
			return surface.ProductTexts{}, err
		}
		*f.dst = tc
	}
	return out, nil
}

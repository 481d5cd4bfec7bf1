package screen

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"github.com/waozixyz/paywall/commerce"
	"github.com/waozixyz/paywall/uierr"
	"github.com/waozixyz/paywall/viewconfig"
)

// productIndex maps a visual slot back onto the product bound to it.
func (s *Screen) productIndex(slot int) int {
	if s.surf.Reversed() {
		return s.surf.ProductSlots() - 1 - slot
	}
	return slot
}

func (s *Screen) tapProduct(slot int) {
	i := s.productIndex(slot)
	if err := s.SelectProduct(i); err != nil {
		s.log.Debug("Screen: product tap ignored", "slot", slot, "error", err)
		return
	}
	if s.block.InitiatePurchaseOnTap {
		s.tapPurchase()
	}
}

func (s *Screen) tapPurchase() {
	if err := s.Purchase(); err != nil {
		s.log.Warn("Screen: purchase tap rejected", "error", err)
	}
}

// SelectProduct selects the product at index i in block order.
func (s *Screen) SelectProduct(i int) error {
	if !s.phase.canInteract() {
		return uierr.WrongParameter("phase", "cannot select a product while %s", s.phase)
	}
	if i < 0 || i >= len(s.products) {
		return uierr.WrongParameter("index", "product %d out of range [0,%d)", i, len(s.products))
	}
	s.surf.SelectProduct(s.slotFor(i))
	s.selected = i
	s.setPhase(PhaseInteracting)
	s.invalidate()
	s.opts.Listener.OnProductSelected(s.products[i])
	return nil
}

// Purchase buys the selected product. The result is reported to the
// listener; the returned error only covers calls that never reached the
// provider.
func (s *Screen) Purchase() error {
	if s.phase == PhasePurchaseInFlight || s.phase == PhaseRestoreInFlight {
		return ErrBusy
	}
	if !s.phase.canInteract() {
		return uierr.WrongParameter("phase", "cannot purchase while %s", s.phase)
	}
	if s.selected < 0 || s.selected >= len(s.products) {
		return uierr.WrongParameter("product", "no product selected")
	}
	if s.opts.Host == nil {
		return uierr.WrongParameter("host", "purchase needs a host reference")
	}
	p := s.products[s.selected]
	gen := s.gen
	s.setPhase(PhasePurchaseInFlight)
	s.setLoading(true)
	s.opts.Listener.OnPurchaseStarted(p)
	s.log.Info("Screen: purchase started", "product", p.VendorProductID)

	ctx, span := s.tel.start(s.ctx, "paywall.purchase",
		attribute.String("paywall.id", s.cfg.ID),
		attribute.String("paywall.product", p.VendorProductID),
	)
	params := commerce.PurchaseParams{Host: s.opts.Host}
	s.opts.Provider.Purchase(ctx, p, params, s.res.Personalized(p), func(info *commerce.PurchaseInfo, err error) {
		outcome := "ok"
		switch {
		case errors.Is(err, uierr.ErrUserCanceled):
			outcome = "canceled"
			err = nil
		case err != nil:
			outcome = "error"
		}
		s.tel.end(context.Background(), span, s.tel.purchases, outcome, err)
		s.post(gen, func() { s.purchased(p, info, outcome, err) })
	})
	return nil
}

func (s *Screen) purchased(p commerce.Product, info *commerce.PurchaseInfo, outcome string, err error) {
	s.setLoading(false)
	s.settle()
	s.log.Info("Screen: purchase finished", "product", p.VendorProductID, "outcome", outcome)
	switch outcome {
	case "canceled":
		s.opts.Listener.OnPurchaseCanceled(p)
	case "error":
		s.opts.Listener.OnPurchaseFailed(p, err)
	default:
		s.opts.Listener.OnPurchaseFinished(p, info)
	}
}

// Restore restores previous purchases.
func (s *Screen) Restore() error {
	if s.phase == PhasePurchaseInFlight || s.phase == PhaseRestoreInFlight {
		return ErrBusy
	}
	if !s.phase.canInteract() {
		return uierr.WrongParameter("phase", "cannot restore while %s", s.phase)
	}
	gen := s.gen
	s.setPhase(PhaseRestoreInFlight)
	s.setLoading(true)
	s.opts.Listener.OnRestoreStarted()
	s.log.Info("Screen: restore started")

	ctx, span := s.tel.start(s.ctx, "paywall.restore", attribute.String("paywall.id", s.cfg.ID))
	s.opts.Provider.Restore(ctx, func(profile *commerce.Profile, err error) {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		s.tel.end(context.Background(), span, s.tel.restores, outcome, err)
		s.post(gen, func() {
			s.setLoading(false)
			s.settle()
			if err != nil {
				s.log.Warn("Screen: restore failed", "error", err)
				s.opts.Listener.OnRestoreFailed(err)
				return
			}
			s.log.Info("Screen: restore finished")
			s.opts.Listener.OnRestoreFinished(profile)
		})
	})
	return nil
}

// settle returns the screen to Ready after a commerce call unless it was
// closed meanwhile.
func (s *Screen) settle() {
	if s.phase != PhaseClosed {
		s.setPhase(PhaseReady)
	}
}

// Close reports the close action and stops accepting interactions.
func (s *Screen) Close() {
	if s.phase == PhaseClosed {
		return
	}
	if s.retry != nil {
		s.retry.Cancel()
		s.retry = nil
	}
	s.setPhase(PhaseClosed)
	s.opts.Listener.OnAction(viewconfig.Action{Type: viewconfig.ActionClose})
}

// PerformAction runs a button action. Restore, purchase and close are
// handled here; open-url and custom actions go to the listener.
func (s *Screen) PerformAction(a viewconfig.Action) {
	switch a.Type {
	case viewconfig.ActionClose:
		s.Close()
	case viewconfig.ActionRestore:
		if err := s.Restore(); err != nil {
			s.log.Warn("Screen: restore rejected", "error", err)
		}
	case viewconfig.ActionPurchase:
		s.tapPurchase()
	default:
		s.log.Debug("Screen: action", "type", a.Type.String(), "url", a.URL, "custom", a.CustomID)
		s.opts.Listener.OnAction(a)
	}
}

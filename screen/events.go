package screen

import (
	"github.com/waozixyz/paywall/commerce"
	"github.com/waozixyz/paywall/viewconfig"
)

// Phase is the state of one presentation.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseBuilding
	PhaseProductsPending
	PhaseReady
	PhaseInteracting
	PhasePurchaseInFlight
	PhaseRestoreInFlight
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseBuilding:
		return "building"
	case PhaseProductsPending:
		return "products_pending"
	case PhaseReady:
		return "ready"
	case PhaseInteracting:
		return "interacting"
	case PhasePurchaseInFlight:
		return "purchase_in_flight"
	case PhaseRestoreInFlight:
		return "restore_in_flight"
	case PhaseClosed:
		return "closed"
	}
	return "unknown"
}

// canInteract reports whether taps and commerce calls are accepted.
func (p Phase) canInteract() bool { return p == PhaseReady || p == PhaseInteracting }

// EventListener receives everything the integrator reacts to. All methods
// run on the UI loop.
type EventListener interface {
	// OnAction reports close, open-url and custom actions.
	OnAction(a viewconfig.Action)
	OnProductSelected(p commerce.Product)

	OnPurchaseStarted(p commerce.Product)
	OnPurchaseFinished(p commerce.Product, info *commerce.PurchaseInfo)
	OnPurchaseCanceled(p commerce.Product)
	OnPurchaseFailed(p commerce.Product, err error)

	OnRestoreStarted()
	OnRestoreFinished(profile *commerce.Profile)
	OnRestoreFailed(err error)

	OnRenderingError(err error)
	// OnLoadingProductsFailed decides whether the fetch is retried after
	// the retry delay.
	OnLoadingProductsFailed(err error) bool
}

// BaseListener ignores every event and never retries. Embed it to handle a
// subset.
type BaseListener struct{}

var _ EventListener = BaseListener{}

func (BaseListener) OnAction(viewconfig.Action) {}
func (BaseListener) OnProductSelected(commerce.Product) {}
func (BaseListener) OnPurchaseStarted(commerce.Product) {}
func (BaseListener) OnPurchaseFinished(commerce.Product, *commerce.PurchaseInfo) {}
func (BaseListener) OnPurchaseCanceled(commerce.Product) {}
func (BaseListener) OnPurchaseFailed(commerce.Product, error) {}
func (BaseListener) OnRestoreStarted() {}
func (BaseListener) OnRestoreFinished(*commerce.Profile) {}
func (BaseListener) OnRestoreFailed(error) {}
func (BaseListener) OnRenderingError(error) {}
func (BaseListener) OnLoadingProductsFailed(error) bool { return false }

package app

import (
	"log/slog"

	"github.com/waozixyz/paywall/commerce"
	"github.com/waozixyz/paywall/screen"
	"github.com/waozixyz/paywall/viewconfig"
)

// LogListener logs every paywall event and retries failed product fetches
// up to MaxRetries times.
type LogListener struct {
	MaxRetries int

	retries int
	actions []viewconfig.Action
}

var _ screen.EventListener = (*LogListener)(nil)

func (l *LogListener) OnAction(a viewconfig.Action) {
	l.actions = append(l.actions, a)
	slog.Info("Paywall: action", "type", a.Type.String(), "url", a.URL, "custom", a.CustomID)
}

// Actions returns the actions seen so far.
func (l *LogListener) Actions() []viewconfig.Action { return l.actions }

func (l *LogListener) OnProductSelected(p commerce.Product) {
	slog.Info("Paywall: product selected", "product", p.VendorProductID)
}

func (l *LogListener) OnPurchaseStarted(p commerce.Product) {
	slog.Info("Paywall: purchase started", "product", p.VendorProductID)
}

func (l *LogListener) OnPurchaseFinished(p commerce.Product, info *commerce.PurchaseInfo) {
	slog.Info("Paywall: purchase finished", "product", p.VendorProductID, "transaction", info.TransactionID)
}

func (l *LogListener) OnPurchaseCanceled(p commerce.Product) {
	slog.Info("Paywall: purchase canceled", "product", p.VendorProductID)
}

func (l *LogListener) OnPurchaseFailed(p commerce.Product, err error) {
	slog.Error("Paywall: purchase failed", "product", p.VendorProductID, "error", err)
}

func (l *LogListener) OnRestoreStarted() { slog.Info("Paywall: restore started") }

func (l *LogListener) OnRestoreFinished(profile *commerce.Profile) {
	slog.Info("Paywall: restore finished", "profile", profile.ProfileID, "access_levels", len(profile.AccessLevels))
}

func (l *LogListener) OnRestoreFailed(err error) { slog.Error("Paywall: restore failed", "error", err) }

func (l *LogListener) OnRenderingError(err error) { slog.Error("Paywall: rendering error", "error", err) }

func (l *LogListener) OnLoadingProductsFailed(err error) bool {
	retry := l.retries < l.MaxRetries
	if retry {
		l.retries++
	}
	slog.Warn("Paywall: loading products failed", "error", err, "retry", retry, "attempt", l.retries)
	return retry
}

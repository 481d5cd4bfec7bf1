// Package commerce holds the store-side collaborator contract consumed by the
// paywall screen: products, discount phases and the async Provider.
package commerce

import (
	"context"
	"fmt"
	"math"
)

type PaymentMode uint8

const (
	PaymentNone PaymentMode = iota
	PaymentFreeTrial
	PaymentPayAsYouGo
	PaymentPayUpfront
)

func (m PaymentMode) String() string {
	switch m {
	case PaymentFreeTrial:
		return "free_trial"
	case PaymentPayAsYouGo:
		return "pay_as_you_go"
	case PaymentPayUpfront:
		return "pay_upfront"
	}
	return "none"
}

type PeriodUnit uint8

const (
	UnitDay PeriodUnit = iota + 1
	UnitWeek
	UnitMonth
	UnitYear
)

func (u PeriodUnit) String() string {
	switch u {
	case UnitDay:
		return "day"
	case UnitWeek:
		return "week"
	case UnitMonth:
		return "month"
	case UnitYear:
		return "year"
	}
	return "unknown"
}

// days is the nominal length used for per-period price conversions.
func (u PeriodUnit) days() float64 {
	switch u {
	case UnitDay:
		return 1
	case UnitWeek:
		return 7
	case UnitMonth:
		return 30
	case UnitYear:
		return 365
	}
	return 0
}

type Period struct {
	Unit  PeriodUnit
	Count int
}

func (p Period) Days() float64 { return p.Unit.days() * float64(p.Count) }

func (p Period) String() string {
	if p.Count == 1 {
		return p.Unit.String()
	}
	return fmt.Sprintf("%d %ss", p.Count, p.Unit)
}

// DiscountPhase is one introductory or promotional pricing step.
type DiscountPhase struct {
	Mode            PaymentMode
	Price           float64
	LocalizedPrice  string
	Period          Period
	NumberOfPeriods int
	Eligible        bool
}

// Product is a store product as returned by Provider.FetchProducts.
type Product struct {
	VendorProductID    string
	Title              string
	Price              float64
	LocalizedPrice     string
	CurrencyCode       string
	CurrencySymbol     string
	SubscriptionPeriod *Period
	DiscountPhases     []DiscountPhase
}

// FirstDiscount returns the first phase the user is eligible for.
func (p *Product) FirstDiscount() (DiscountPhase, bool) {
	for _, d := range p.DiscountPhases {
		if d.Eligible {
			return d, true
		}
	}
	return DiscountPhase{}, false
}

// PaymentMode is the mode of the first eligible discount phase.
func (p *Product) PaymentMode() PaymentMode {
	if d, ok := p.FirstDiscount(); ok {
		return d.Mode
	}
	return PaymentNone
}

// PricePer converts the subscription price to a per-unit price. It reports
// false for non-subscription products.
func (p *Product) PricePer(unit PeriodUnit) (string, bool) {
	if p.SubscriptionPeriod == nil || p.SubscriptionPeriod.Days() == 0 {
		return "", false
	}
	v := p.Price * unit.days() / p.SubscriptionPeriod.Days()
	return p.FormatPrice(v), true
}

// FormatPrice renders an amount with the product currency symbol.
func (p *Product) FormatPrice(v float64) string {
	v = math.Round(v*100) / 100
	sym := p.CurrencySymbol
	if sym == "" {
		sym = p.CurrencyCode + " "
	}
	return fmt.Sprintf("%s%.2f", sym, v)
}

type PurchaseParams struct {
	Host        any // platform activity or window handle, required
	OfferID     string
	Replacement string
}

type PurchaseInfo struct {
	ProductID     string
	TransactionID string
	Profile       *Profile
}

type AccessLevel struct {
	ID       string
	IsActive bool
}

type Profile struct {
	ProfileID    string
	AccessLevels map[string]AccessLevel
}

// Provider performs store operations. Every done callback fires exactly once
// and may run on any goroutine. A dismissed purchase reports an error that
// matches uierr.ErrUserCanceled.
type Provider interface {
	FetchProducts(ctx context.Context, paywallID string, done func([]Product, error))
	Purchase(ctx context.Context, product Product, params PurchaseParams, personalized bool, done func(*PurchaseInfo, error))
	Restore(ctx context.Context, done func(*Profile, error))
}

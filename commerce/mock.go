package commerce

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/waozixyz/paywall/uierr"
)

// Mock is an in-memory Provider for previews and tests. FetchErrs are
// consumed one per FetchProducts call before Products are returned.
type Mock struct {
	Products    []Product
	FetchErrs   []error
	PurchaseErr error
	RestoreErr  error
	// Async delivers callbacks on a new goroutine instead of inline.
	Async bool

	mu        sync.Mutex
	fetches   int
	purchases []string
	restores  int
}

var _ Provider = (*Mock)(nil)

func (m *Mock) deliver(fn func()) {
	if m.Async {
		go fn()
		return
	}
	fn()
}

func (m *Mock) FetchProducts(ctx context.Context, paywallID string, done func([]Product, error)) {
	m.mu.Lock()
	m.fetches++
	var err error
	if len(m.FetchErrs) > 0 {
		err, m.FetchErrs = m.FetchErrs[0], m.FetchErrs[1:]
	}
	products := append([]Product(nil), m.Products...)
	m.mu.Unlock()

	m.deliver(func() {
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			done(nil, fmt.Errorf("fetch products %s: %w", paywallID, err))
			return
		}
		done(products, nil)
	})
}

func (m *Mock) Purchase(ctx context.Context, product Product, params PurchaseParams, personalized bool, done func(*PurchaseInfo, error)) {
	m.mu.Lock()
	m.purchases = append(m.purchases, product.VendorProductID)
	err := m.PurchaseErr
	m.mu.Unlock()

	m.deliver(func() {
		if err == nil && params.Host == nil {
			err = uierr.WrongParameter("host", "purchase needs a host reference")
		}
		if err != nil {
			done(nil, err)
			return
		}
		done(&PurchaseInfo{
			ProductID:     product.VendorProductID,
			TransactionID: uuid.NewString(),
			Profile:       mockProfile(product.VendorProductID),
		}, nil)
	})
}

func (m *Mock) Restore(ctx context.Context, done func(*Profile, error)) {
	m.mu.Lock()
	m.restores++
	err := m.RestoreErr
	m.mu.Unlock()

	m.deliver(func() {
		if err != nil {
			done(nil, err)
			return
		}
		done(mockProfile(""), nil)
	})
}

func mockProfile(productID string) *Profile {
	p := &Profile{ProfileID: "mock-profile", AccessLevels: map[string]AccessLevel{}}
	if productID != "" {
		p.AccessLevels["premium"] = AccessLevel{ID: "premium", IsActive: true}
	}
	return p
}

// Fetches returns how many FetchProducts calls were made.
func (m *Mock) Fetches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches
}

// Purchases returns the product ids passed to Purchase, in call order.
func (m *Mock) Purchases() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.purchases...)
}

func (m *Mock) Restores() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restores
}

// SampleProducts returns a monthly and an annual subscription, the annual
// one with a free trial.
func SampleProducts() []Product {
	return []Product{
		{
			VendorProductID:    "premium.annual",
			Title:              "Annual",
			Price:              59.99,
			LocalizedPrice:     "$59.99",
			CurrencyCode:       "USD",
			CurrencySymbol:     "$",
			SubscriptionPeriod: &Period{Unit: UnitYear, Count: 1},
			DiscountPhases: []DiscountPhase{{
				Mode:            PaymentFreeTrial,
				LocalizedPrice:  "$0.00",
				Period:          Period{Unit: UnitWeek, Count: 1},
				NumberOfPeriods: 1,
				Eligible:        true,
			}},
		},
		{
			VendorProductID:    "premium.monthly",
			Title:              "Monthly",
			Price:              9.99,
			LocalizedPrice:     "$9.99",
			CurrencyCode:       "USD",
			CurrencySymbol:     "$",
			SubscriptionPeriod: &Period{Unit: UnitMonth, Count: 1},
		},
	}
}

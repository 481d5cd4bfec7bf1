package commerce

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waozixyz/paywall/uierr"
)

func TestPaymentModeUsesFirstEligiblePhase(t *testing.T) {
	p := Product{DiscountPhases: []DiscountPhase{
		{Mode: PaymentFreeTrial, Eligible: false},
		{Mode: PaymentPayUpfront, Eligible: true},
	}}
	assert.Equal(t, PaymentPayUpfront, p.PaymentMode())

	assert.Equal(t, PaymentNone, (&Product{}).PaymentMode())
}

func TestPricePer(t *testing.T) {
	p := Product{Price: 36.5, CurrencySymbol: "$", SubscriptionPeriod: &Period{Unit: UnitYear, Count: 1}}
	day, ok := p.PricePer(UnitDay)
	require.True(t, ok)
	assert.Equal(t, "$0.10", day)
	week, _ := p.PricePer(UnitWeek)
	assert.Equal(t, "$0.70", week)

	_, ok = (&Product{Price: 1}).PricePer(UnitDay)
	assert.False(t, ok)
}

func TestFormatPriceFallsBackToCode(t *testing.T) {
	p := Product{CurrencyCode: "EUR"}
	assert.Equal(t, "EUR 4.50", p.FormatPrice(4.5))
}

func TestMockFetchConsumesErrors(t *testing.T) {
	m := &Mock{Products: SampleProducts(), FetchErrs: []error{errors.New("offline")}}

	var gotErr error
	m.FetchProducts(context.Background(), "pw", func(_ []Product, err error) { gotErr = err })
	assert.ErrorContains(t, gotErr, "offline")

	var got []Product
	m.FetchProducts(context.Background(), "pw", func(p []Product, err error) {
		require.NoError(t, err)
		got = p
	})
	assert.Len(t, got, 2)
	assert.Equal(t, 2, m.Fetches())
}

func TestMockPurchaseNeedsHost(t *testing.T) {
	m := &Mock{}
	var gotErr error
	m.Purchase(context.Background(), Product{VendorProductID: "x"}, PurchaseParams{}, false, func(_ *PurchaseInfo, err error) {
		gotErr = err
	})
	assert.ErrorIs(t, gotErr, uierr.ErrWrongParameter)

	var info *PurchaseInfo
	m.Purchase(context.Background(), Product{VendorProductID: "x"}, PurchaseParams{Host: struct{}{}}, false, func(i *PurchaseInfo, err error) {
		require.NoError(t, err)
		info = i
	})
	require.NotNil(t, info)
	assert.Equal(t, "x", info.ProductID)
	assert.True(t, info.Profile.AccessLevels["premium"].IsActive)
	assert.Equal(t, []string{"x", "x"}, m.Purchases())
}

package element

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/waozixyz/paywall/render"
	"github.com/waozixyz/paywall/surface"
)

func TestStateNotifiesAfterMutation(t *testing.T) {
	s := NewState()
	var seen []int
	var keys [][]string
	s.Subscribe(func(k []string) {
		keys = append(keys, k)
		seen = append(seen, s.Int(keySelected, -1))
	})
	s.Set(keySelected, 2)
	assert.Equal(t, []int{2}, seen)
	assert.Equal(t, [][]string{{keySelected}}, keys)
}

func TestStateBatchNotifiesOnce(t *testing.T) {
	s := NewState()
	var calls [][]string
	s.Subscribe(func(k []string) { calls = append(calls, k) })
	s.Batch(func() {
		s.Set(keyLoading, true)
		s.Batch(func() { s.Set(hiddenKey(0), true) })
		s.Set(keyLoading, false)
	})
	assert.Equal(t, [][]string{{keyLoading, "hidden.0"}}, calls)
	assert.False(t, s.Bool(keyLoading))

	s.Batch(func() {})
	assert.Len(t, calls, 1, "no keys, no notification")
}

func TestStateUnsubscribe(t *testing.T) {
	s := NewState()
	n := 0
	stop := s.Subscribe(func([]string) { n++ })
	s.Set("a", 1)
	stop()
	s.Set("a", 2)
	assert.Equal(t, 1, n)
	v, ok := s.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestStateTypedGetters(t *testing.T) {
	s := NewState()
	assert.Equal(t, 7, s.Int("missing", 7))
	assert.False(t, s.Bool("missing"))
	assert.Equal(t, surface.ProductTexts{}, s.Texts(productKey(0)))

	title := &render.TextContent{}
	s.Set(productKey(1), surface.ProductTexts{Title: title})
	assert.Same(t, title, s.Texts("product.1").Title)
}

package element

import (
	"slices"
	"strconv"

	"github.com/waozixyz/paywall/surface"
)

const (
	keySelected = "selected"
	keyLoading  = "loading"
)

func productKey(slot int) string { return "product." + strconv.Itoa(slot) }
func hiddenKey(slot int) string  { return "hidden." + strconv.Itoa(slot) }

// State is the observable model the declarative tree is recomposed from.
// Observers see the keys that changed, after the change. It is confined to
// the UI thread.
type State struct {
	values    map[string]any
	observers map[int]func(keys []string)
	nextID    int

	batching bool
	dirty    []string
}

func NewState() *State {
	return &State{values: map[string]any{}, observers: map[int]func([]string){}}
}

// Set stores v under key and notifies observers.
func (s *State) Set(key string, v any) {
	s.values[key] = v
	if s.batching {
		if !slices.Contains(s.dirty, key) {
			s.dirty = append(s.dirty, key)
		}
		return
	}
	s.notify([]string{key})
}

// Batch applies several mutations and notifies once with every key that
// changed.
func (s *State) Batch(fn func()) {
	if s.batching {
		fn()
		return
	}
	s.batching = true
	fn()
	s.batching = false
	keys := s.dirty
	s.dirty = nil
	if len(keys) > 0 {
		s.notify(keys)
	}
}

// Subscribe registers fn and returns a function that removes it.
func (s *State) Subscribe(fn func(keys []string)) func() {
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	return func() { delete(s.observers, id) }
}

func (s *State) notify(keys []string) {
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if fn, ok := s.observers[id]; ok {
			fn(keys)
		}
	}
}

func (s *State) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *State) Bool(key string) bool {
	v, _ := s.values[key].(bool)
	return v
}

// Int returns def when key is unset.
func (s *State) Int(key string, def int) int {
	if v, ok := s.values[key].(int); ok {
		return v
	}
	return def
}

func (s *State) Texts(key string) surface.ProductTexts {
	v, _ := s.values[key].(surface.ProductTexts)
	return v
}

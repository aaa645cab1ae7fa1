package learning

import (
	"fmt"
	"iter"
)

// Keys yields the stored keys in insertion order. This is how interior nodes are iterated: it exposes structure, not values. At a leaf it yields stored keys only, never default keys.
//
// The key set is captured when iteration starts, so the table may be modified from inside the loop.
func (s *Storage[K]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		keys := make([]K, 0, s.entries.Len())
		for p := s.entries.Oldest(); p != nil; p = p.Next() {
			keys = append(keys, p.Key)
		}
		for _, k := range keys {
			if !yield(k) {
				return
			}
		}
	}
}

// Pairs yields the key/value pairs of a leaf: first every stored pair in insertion order, then every missing default key with a freshly drawn value. Default values are not cached; each iteration draws again.
func (s *Storage[K]) Pairs() (iter.Seq2[K, float64], error) {
	if s.dimensions > 1 {
		return nil, fmt.Errorf("pairs of %d-dimensional node: %w", s.dimensions, ErrInvalidOperation)
	}
	return func(yield func(K, float64) bool) {
		keys := make([]K, 0, s.entries.Len())
		vals := make([]float64, 0, s.entries.Len())
		for p := s.entries.Oldest(); p != nil; p = p.Next() {
			keys = append(keys, p.Key)
			vals = append(vals, p.Value.Value)
		}
		missing := s.DefaultKeys()

		for i, k := range keys {
			if !yield(k, vals[i]) {
				return
			}
		}
		for _, k := range missing {
			if !yield(k, s.draw()) {
				return
			}
		}
	}, nil
}

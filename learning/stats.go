package learning

import (
	"fmt"
	"math"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// distributions whose probabilities sum within this distance of 1 are used as given
const distTolerance = 1e-9

// Max returns the largest value of a leaf, including freshly drawn values for missing default keys.
func (s *Storage[K]) Max() (float64, error) {
	_, v, err := s.extreme("max", greater)
	return v, err
}

// Argmax returns the key holding the value Max would return. Ties go to the first pair in Pairs order: stored keys before default keys, each in insertion order.
func (s *Storage[K]) Argmax() (K, error) {
	k, _, err := s.extreme("argmax", greater)
	return k, err
}

// Min returns the smallest value of a leaf, including freshly drawn values for missing default keys.
func (s *Storage[K]) Min() (float64, error) {
	_, v, err := s.extreme("min", less)
	return v, err
}

// Argmin is the counterpart of Argmax, with the same tie-break.
func (s *Storage[K]) Argmin() (K, error) {
	k, _, err := s.extreme("argmin", less)
	return k, err
}

func greater(a, b float64) bool { return a > b }

func less(a, b float64) bool { return a < b }

// single pass over Pairs; a candidate replaces the best only when strictly better
func (s *Storage[K]) extreme(op string, better func(candidate, best float64) bool) (K, float64, error) {
	var bestKey K
	var best float64

	pairs, err := s.Pairs()
	if err != nil {
		return bestKey, 0, fmt.Errorf("%s: %w", op, err)
	}

	found := false
	for k, v := range pairs {
		if !found || better(v, best) {
			bestKey, best, found = k, v, true
		}
	}
	if !found {
		return bestKey, 0, fmt.Errorf("%s: %w", op, ErrEmpty)
	}
	return bestKey, best, nil
}

// Expectation computes the expected value of a leaf under the belief distribution dist.
//
// dist is walked in insertion order, so a seeded table draws the same defaults for the same keys on every run.
// If dist is nil, empty, or its probabilities do not sum to 1, a uniform distribution over the stored keys is used instead; with nothing stored, a single freshly drawn default is returned. Keys of dist which are not stored contribute a freshly drawn default and are not materialized.
func (s *Storage[K]) Expectation(dist *orderedmap.OrderedMap[K, float64]) (float64, error) {
	if s.dimensions > 1 {
		return 0, fmt.Errorf("expectation of %d-dimensional node: %w", s.dimensions, ErrInvalidOperation)
	}

	if !isDistribution(dist) {
		if s.entries.Len() == 0 {
			return s.draw(), nil
		}
		p := 1 / float64(s.entries.Len())
		total := 0.0
		for pair := s.entries.Oldest(); pair != nil; pair = pair.Next() {
			total += p * pair.Value.Value
		}
		return total, nil
	}

	total := 0.0
	for pair := dist.Oldest(); pair != nil; pair = pair.Next() {
		if e, ok := s.entries.Get(pair.Key); ok {
			total += pair.Value * e.Value
		} else {
			total += pair.Value * s.draw()
		}
	}
	return total, nil
}

func isDistribution[K comparable](dist *orderedmap.OrderedMap[K, float64]) bool {
	if dist == nil || dist.Len() == 0 {
		return false
	}
	sum := 0.0
	for pair := dist.Oldest(); pair != nil; pair = pair.Next() {
		sum += pair.Value
	}
	return math.Abs(sum-1) <= distTolerance
}

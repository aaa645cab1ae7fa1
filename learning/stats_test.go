package learning

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func beliefs(keys []string, probs ...float64) *orderedmap.OrderedMap[string, float64] {
	dist := orderedmap.New[string, float64]()
	for i, k := range keys {
		dist.Set(k, probs[i])
	}
	return dist
}

func TestExpectation(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	leaf := testStorage[string](t, WithDimensions(1), WithRange(10, 10))
	require.NoError(leaf.Set("a", 1))
	require.NoError(leaf.Set("b", 3))

	v, err := leaf.Expectation(beliefs([]string{"a", "b"}, 0.5, 0.5))
	require.NoError(err)
	assert.Equal(2.0, v)

	v, err = leaf.Expectation(beliefs([]string{"a", "b"}, 1.0, 0.0))
	require.NoError(err)
	assert.Equal(1.0, v)

	// no distribution: uniform over stored keys
	v, err = leaf.Expectation(nil)
	require.NoError(err)
	assert.Equal(2.0, v)

	// not normalized: also uniform
	v, err = leaf.Expectation(beliefs([]string{"a", "b"}, 1, 1))
	require.NoError(err)
	assert.Equal(2.0, v)

	// keys which are not stored contribute a default draw and are not kept
	v, err = leaf.Expectation(beliefs([]string{"a", "z"}, 0.5, 0.5))
	require.NoError(err)
	assert.Equal(5.5, v)
	assert.Equal(2, leaf.Len())
	assert.Equal([]string{"a", "b"}, collect(leaf.Keys()))
}

func TestExpectationEmpty(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	leaf := testStorage[string](t, WithDimensions(1), WithRange(4, 4))
	v, err := leaf.Expectation(nil)
	require.NoError(err)
	assert.Equal(4.0, v)
	assert.Equal(0, leaf.Len())

	s := testStorage[string](t)
	_, err = s.Expectation(nil)
	assert.ErrorIs(err, ErrInvalidOperation)
}

func TestExpectationSeeded(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	expect := func() float64 {
		leaf := New[string](WithDimensions(1), WithRand(rand.New(rand.NewPCG(1, 2))), WithLogger(slogForTest(t)))
		require.NoError(leaf.Set("w", 0.25))
		v, err := leaf.Expectation(beliefs([]string{"x", "y", "w", "z"}, 0.1, 0.2, 0.3, 0.4))
		require.NoError(err)
		return v
	}

	first := expect()
	for range 20 {
		assert.Equal(first, expect())
	}

	// missing keys take draws in dist order
	rng := rand.New(rand.NewPCG(1, 2))
	x, y, z := rng.Float64(), rng.Float64(), rng.Float64()
	assert.InDelta(0.1*x+0.2*y+0.3*0.25+0.4*z, first, 1e-12)
}

func TestMaxArgmax(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	leaf := testStorage[string](t, WithDimensions(1))
	require.NoError(leaf.Set("a", 2))
	require.NoError(leaf.Set("b", 5))
	require.NoError(leaf.Set("c", 5))

	m, err := leaf.Max()
	require.NoError(err)
	assert.Equal(5.0, m)

	k, err := leaf.Argmax()
	require.NoError(err)
	assert.Equal("b", k)

	// insertion order, not key order, breaks ties
	other := testStorage[string](t, WithDimensions(1))
	require.NoError(other.Set("c", 5))
	require.NoError(other.Set("b", 5))
	k, err = other.Argmax()
	require.NoError(err)
	assert.Equal("c", k)

	lo, err := leaf.Min()
	require.NoError(err)
	assert.Equal(2.0, lo)
	k, err = leaf.Argmin()
	require.NoError(err)
	assert.Equal("a", k)
}

func TestMaxWithDefaultKeys(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	leaf := testStorage[string](t, WithDimensions(1), WithRange(0, 1))
	leaf.SetDefaultKeys("x", "y")
	require.NoError(leaf.Set("a", -1))

	k, err := leaf.Argmax()
	require.NoError(err)
	assert.Contains([]string{"x", "y"}, k)

	k, err = leaf.Argmin()
	require.NoError(err)
	assert.Equal("a", k)

	// stored values win ties against defaults
	tied := testStorage[string](t, WithDimensions(1), WithRange(1, 1))
	tied.SetDefaultKeys("x")
	require.NoError(tied.Set("a", 1))
	k, err = tied.Argmax()
	require.NoError(err)
	assert.Equal("a", k)
}

func TestLeafOnlyQueries(t *testing.T) {
	assert := assert.New(t)

	s := testStorage[string](t)
	_, err := s.Max()
	assert.ErrorIs(err, ErrInvalidOperation)
	_, err = s.Argmax()
	assert.ErrorIs(err, ErrInvalidOperation)
	_, err = s.Min()
	assert.ErrorIs(err, ErrInvalidOperation)
	_, err = s.Argmin()
	assert.ErrorIs(err, ErrInvalidOperation)

	empty := testStorage[string](t, WithDimensions(1))
	_, err = empty.Max()
	assert.ErrorIs(err, ErrEmpty)
	_, err = empty.Argmin()
	assert.ErrorIs(err, ErrEmpty)
}

package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombinations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		weights Weights
		combos  float64
		pct     float64
	}{
		{name: "empty", weights: Weights{}, combos: 0, pct: 0},
		{name: "full pair", weights: Weights{"AA": 100}, combos: 6, pct: 0.5},
		{name: "partial offsuit", weights: Weights{"AKo": 25}, combos: 3, pct: 0.2},
		{name: "mixed", weights: Weights{"AA": 100, "KK": 100, "AKs": 50, "AKo": 100}, combos: 26, pct: 2},
		{name: "unknown hands ignored", weights: Weights{"ZZ": 100, "QQ": 50}, combos: 3, pct: 0.2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tc.combos, Combinations(tc.weights), 1e-9)
			assert.InDelta(t, tc.pct, Percentage(tc.weights), 1e-9)
		})
	}
}

func TestShapeOf(t *testing.T) {
	t.Parallel()

	s := ShapeOf(Weights{"AA": 100, "22": 10, "AKs": 50, "T9s": 100, "KQo": 100, "72o": 0})
	assert.Equal(t, Shape{Pairs: 2, Suited: 2, Offsuit: 1}, s)
}

func TestClean(t *testing.T) {
	t.Parallel()

	out, err := Clean(Weights{"AA": 100, "KK": 0})
	require.NoError(t, err)
	assert.Equal(t, Weights{"AA": 100}, out)

	_, err = Clean(Weights{"AK": 50})
	assert.ErrorIs(t, err, ErrInvalidWeights)
	_, err = Clean(Weights{"AA": -1})
	assert.ErrorIs(t, err, ErrInvalidWeights)
}

func TestPaint(t *testing.T) {
	t.Parallel()

	base := Weights{"22": 100}
	out, err := Paint(base, "QQ+,AKs", 75)
	require.NoError(t, err)
	assert.Equal(t, Weights{"22": 100, "QQ": 75, "KK": 75, "AA": 75, "AKs": 75}, out)
	assert.Equal(t, Weights{"22": 100}, base)

	out, err = Paint(out, "KK+", 0)
	require.NoError(t, err)
	assert.Equal(t, Weights{"22": 100, "QQ": 75, "AKs": 75}, out)

	out, err = Paint(nil, "AhKh", 40)
	require.NoError(t, err)
	assert.Equal(t, Weights{"AKs": 40}, out)

	_, err = Paint(base, "AA", 120)
	assert.ErrorIs(t, err, ErrInvalidWeights)
	_, err = Paint(base, "XX", 50)
	assert.Error(t, err)
}

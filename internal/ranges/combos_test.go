package ranges

import (
	"testing"

	"github.com/lox/rangebook/internal/cash"
	"github.com/lox/rangebook/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandCombos(t *testing.T) {
	t.Parallel()

	m := Matrix{
		"AA":  {{Action: cash.OR4BetAllIn, Percentage: 100}},
		"AKs": {{Action: cash.OR4BetAllIn, Percentage: 50}, {Action: cash.ORCall3Bet, Percentage: 50}},
		"72o": {},
	}

	combos := ExpandCombos(m, 0)
	require.Len(t, combos, 10)
	assert.Equal(t, poker.HandLabel("AA"), combos[0].Hand)
	assert.Equal(t, poker.HandLabel("AKs"), combos[9].Hand)
	assert.Equal(t, m["AKs"], combos[9].Actions)

	dead, err := poker.ParseCards("As")
	require.NoError(t, err)
	combos = ExpandCombos(m, dead)
	assert.Len(t, combos, 6, "three aces and three suited AK remain")
	for _, c := range combos {
		assert.NotContains(t, c.Cards, "As")
	}
}

func TestLiveCombinations(t *testing.T) {
	t.Parallel()

	m := Matrix{
		"AA":  {{Action: cash.OR4BetAllIn, Percentage: 100}},
		"KQo": {{Action: cash.ORCall3Bet, Percentage: 50}},
	}
	assert.InDelta(t, WeightedCombinations(m), LiveCombinations(m, 0), 1e-9)

	tests := []struct {
		dead string
		want float64
	}{
		{"As", 3 + 6},
		{"AsAh", 1 + 6},
		{"Kd", 6 + 4.5},
		{"2c3d", 6 + 6},
	}
	for _, tc := range tests {
		t.Run(tc.dead, func(t *testing.T) {
			t.Parallel()
			dead, err := poker.ParseCards(tc.dead)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, LiveCombinations(m, dead), 1e-9)
		})
	}
}

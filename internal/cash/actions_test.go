package cash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 100, PriorityOf(OR4BetAllIn))
	assert.Equal(t, 100, PriorityOf(FourBetCall))
	assert.Equal(t, 90, PriorityOf(ThreeBetCall4Bet))
	assert.Equal(t, 80, PriorityOf(ORCall3Bet))
	assert.Equal(t, 70, PriorityOf(ORFold))
	assert.Equal(t, DefaultPriority, PriorityOf(Action("LIMP")))
}

func TestColorOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Red, ColorOf(SqueezeAllIn))
	assert.Equal(t, Orange, ColorOf(ROL4BetFold))
	assert.Equal(t, Green, ColorOf(ColdCall))
	assert.Equal(t, Cyan, ColorOf(ThreeBetFold))
	assert.Equal(t, Gray, ColorOf(Action("LIMP")))
}

func TestEveryActionMapped(t *testing.T) {
	t.Parallel()

	seen := map[Action]Sequence{}
	for _, seq := range Sequences {
		actions := seq.Actions()
		require.NotEmpty(t, actions)
		for i, a := range actions {
			assert.True(t, a.Known(), "%s has no priority", a)
			assert.NotEqual(t, Gray, ColorOf(a), "%s has no colour", a)
			assert.True(t, seq.Allows(a))
			if prev, dup := seen[a]; dup {
				t.Errorf("%s belongs to both %s and %s", a, prev, seq)
			}
			seen[a] = seq
			if i > 0 {
				assert.LessOrEqual(t, PriorityOf(a), PriorityOf(actions[i-1]), "actions of %s not ordered by aggression", seq)
			}
		}
	}
	assert.Len(t, seen, 16)
}

func TestParseAction(t *testing.T) {
	t.Parallel()

	a, err := ParseAction(OpenRaise, "OR-CALL 3BET")
	require.NoError(t, err)
	assert.Equal(t, ORCall3Bet, a)

	_, err = ParseAction(OpenRaise, "3BET-FOLD")
	assert.Error(t, err)
}

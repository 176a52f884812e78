package display

import (
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/rangebook/internal/cash"
	"github.com/lox/rangebook/internal/ranges"
	"github.com/lox/rangebook/poker"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func TestBlendEmpty(t *testing.T) {
	t.Parallel()

	cell := Blend("72o", ranges.Matrix{})
	assert.True(t, cell.Empty())
	assert.Equal(t, Muted, cell.Primary)
	assert.Zero(t, cell.Total)
}

func TestBlendSingleAction(t *testing.T) {
	t.Parallel()

	m := ranges.Matrix{
		"AA":  {{Action: cash.OR4BetAllIn, Percentage: 100}},
		"KQs": {{Action: cash.ORFold, Percentage: 40}},
	}

	full := Blend("AA", m)
	assert.Equal(t, cash.Red, full.Primary)
	assert.Equal(t, 1.0, full.Opacity)
	assert.False(t, full.Split())

	partial := Blend("KQs", m)
	assert.Equal(t, cash.Cyan, partial.Primary)
	assert.Equal(t, 0.4, partial.Opacity)
	assert.Equal(t, 40, partial.Total)
}

func TestBlendOrdersByPriority(t *testing.T) {
	t.Parallel()

	m := ranges.Matrix{"77": {
		{Action: cash.ORCall3Bet, Percentage: 60},
		{Action: cash.OR4BetAllIn, Percentage: 40},
	}}

	cell := Blend("77", m)
	require.Len(t, cell.Segments, 2)
	assert.Equal(t, cash.Red, cell.Primary)
	assert.Equal(t, 100, cell.Total)
	assert.Equal(t, Segment{Action: cash.OR4BetAllIn, Color: cash.Red, Percentage: 40, Start: 0, End: 40}, cell.Segments[0])
	assert.Equal(t, Segment{Action: cash.ORCall3Bet, Color: cash.Green, Percentage: 60, Start: 40, End: 100}, cell.Segments[1])
}

func TestBlendAll(t *testing.T) {
	t.Parallel()

	cells := BlendAll(ranges.Matrix{"AA": {{Action: cash.ORFold, Percentage: 100}}})
	require.Len(t, cells, 169)
	assert.Equal(t, cash.Cyan, cells[0].Primary)
	assert.True(t, cells[1].Empty())
}

func TestFade(t *testing.T) {
	t.Parallel()

	assert.Equal(t, cash.Red.Hex, fade(cash.Red.Hex, 1))
	assert.Equal(t, background, fade(cash.Red.Hex, 0))
	assert.Equal(t, "nope", fade("nope", 0.5))
}

func TestRenderGrid(t *testing.T) {
	t.Parallel()

	m := ranges.Matrix{
		"AA": {{Action: cash.OR4BetAllIn, Percentage: 100}},
		"77": {{Action: cash.OR4BetAllIn, Percentage: 40}, {Action: cash.ORCall3Bet, Percentage: 60}},
	}
	out := RenderGrid(m)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 13)
	assert.True(t, strings.HasPrefix(lines[0], "AA    AKs   AQs"))
	assert.True(t, strings.HasPrefix(lines[12], "A2o   K2o"))
	assert.Contains(t, lines[7], "77   ")
	for _, line := range lines {
		assert.Equal(t, 13*cellWidth+12, lipgloss.Width(line))
	}
}

func TestRenderLegend(t *testing.T) {
	t.Parallel()

	out := RenderLegend(cash.Squeeze)
	assert.Contains(t, out, "SQZ-ALL-IN")
	assert.Contains(t, out, "COLD-CALL")
	assert.Less(t, strings.Index(out, "SQZ-ALL-IN"), strings.Index(out, "COLD-CALL"))
}

func TestRenderStats(t *testing.T) {
	t.Parallel()

	m := ranges.Matrix{
		"AA":  {{Action: cash.OR4BetAllIn, Percentage: 100}},
		"KQo": {{Action: cash.ORFold, Percentage: 50}, {Action: cash.ORCall3Bet, Percentage: 60}},
	}
	out := RenderStats(ranges.ComputeStats(m, cash.OpenRaise.Actions()))

	assert.Contains(t, out, "2 hands, 19.2 combos, 1.4%")
	assert.Contains(t, out, "OR-4BET-ALL-IN")
	assert.Contains(t, out, "1 hands exceed 100%")
	assert.Less(t, strings.Index(out, "OR-FOLD"), strings.Index(out, "OR-4BET-ALL-IN"))
}

func TestWeightColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hand   poker.HandLabel
		weight int
		want   string
	}{
		{"AA", 100, "#60A5FA"},
		{"AKs", 100, "#FACC15"},
		{"AKo", 100, "#FCA5A5"},
		{"AA", 50, fade("#93C5FD", partialOpacity)},
		{"72o", 1, fade("#FECACA", partialOpacity)},
		{"AA", 0, ""},
		{"ZZ", 100, ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, WeightColor(tc.hand, tc.weight), "%s@%d", tc.hand, tc.weight)
	}
}

func TestRenderWeightGrid(t *testing.T) {
	t.Parallel()

	out := RenderWeightGrid(map[poker.HandLabel]int{"AA": 100, "72o": 30})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 13)
	assert.True(t, strings.HasPrefix(lines[0], "AA    AKs"))
	for _, line := range lines {
		assert.Equal(t, 13*cellWidth+12, lipgloss.Width(line))
	}
}

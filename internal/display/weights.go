package display

import (
	"fmt"
	"strings"

	"github.com/lox/rangebook/poker"
)

// Category colours for weighted ranges. Partly played hands use the
// lighter shade at partialOpacity.
var categoryColors = map[poker.Category]struct{ full, partial string }{
	poker.Pair:    {full: "#60A5FA", partial: "#93C5FD"},
	poker.Suited:  {full: "#FACC15", partial: "#FDE047"},
	poker.Offsuit: {full: "#FCA5A5", partial: "#FECACA"},
}

const partialOpacity = 0.6

// WeightColor returns the fill of a weighted hand, or "" when the hand is
// not played.
func WeightColor(hand poker.HandLabel, weight int) string {
	if !hand.Valid() || weight <= 0 {
		return ""
	}
	c := categoryColors[hand.Category()]
	if weight >= 100 {
		return c.full
	}
	return fade(c.partial, partialOpacity)
}

// RenderWeightGrid draws the 13x13 matrix of a weighted range, coloured by
// hand category.
func RenderWeightGrid(weights map[poker.HandLabel]int) string {
	grid := poker.Grid()
	rows := make([]string, 0, len(grid))
	for _, row := range grid {
		var b strings.Builder
		for col, hand := range row {
			if col > 0 {
				b.WriteString(" ")
			}
			label := fmt.Sprintf("%-*s", cellWidth, hand)
			if hex := WeightColor(hand, weights[hand]); hex != "" {
				b.WriteString(swatch(hex, label))
			} else {
				b.WriteString(EmptyStyle.Render(label))
			}
		}
		rows = append(rows, b.String())
	}
	return strings.Join(rows, "\n")
}

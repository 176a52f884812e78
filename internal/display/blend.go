// Package display turns action matrices into coloured cells and renders
// them for the terminal.
package display

import (
	"github.com/lox/rangebook/internal/cash"
	"github.com/lox/rangebook/internal/ranges"
	"github.com/lox/rangebook/poker"
)

// Muted is the token for a hand with no actions.
var Muted = cash.Color{Name: "muted", Hex: "#374151"}

// Segment is one action's slice of a cell, in percent of the cell width.
type Segment struct {
	Action     cash.Action `json:"action"`
	Color      cash.Color  `json:"color"`
	Percentage int         `json:"percentage"`
	Start      int         `json:"start"`
	End        int         `json:"end"`
}

// Cell is the blended appearance of one hand.
type Cell struct {
	Hand     poker.HandLabel `json:"hand"`
	Primary  cash.Color      `json:"primary"`
	Opacity  float64         `json:"opacity"`
	Total    int             `json:"total"`
	Segments []Segment       `json:"segments"`
}

// Empty reports whether the hand carries no action.
func (c Cell) Empty() bool {
	return len(c.Segments) == 0
}

// Split reports whether several actions share the cell.
func (c Cell) Split() bool {
	return len(c.Segments) > 1
}

// Blend orders the hand's actions by priority, most aggressive first, and
// lays them out left to right. A single action is drawn in its colour at
// pct/100 opacity. Several actions are drawn as consecutive segments at
// full opacity, each as wide as its percentage.
func Blend(hand poker.HandLabel, m ranges.Matrix) Cell {
	cell := Cell{Hand: hand, Primary: Muted, Opacity: 0.2}

	actions := ranges.ByPriority(m[hand])
	if len(actions) == 0 {
		return cell
	}

	pos := 0
	for _, aw := range actions {
		cell.Segments = append(cell.Segments, Segment{
			Action:     aw.Action,
			Color:      cash.ColorOf(aw.Action),
			Percentage: aw.Percentage,
			Start:      pos,
			End:        pos + aw.Percentage,
		})
		pos += aw.Percentage
	}

	cell.Total = pos
	cell.Primary = cell.Segments[0].Color
	cell.Opacity = 1
	if len(actions) == 1 {
		cell.Opacity = min(float64(actions[0].Percentage)/100, 1)
	}
	return cell
}

// BlendAll returns the cells of the whole grid in row-major order.
func BlendAll(m ranges.Matrix) []Cell {
	labels := poker.Labels()
	cells := make([]Cell, 0, len(labels))
	for _, hand := range labels {
		cells = append(cells, Blend(hand, m))
	}
	return cells
}

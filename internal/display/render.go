package display

import (
	"fmt"
	"strings"

	"github.com/lox/rangebook/internal/cash"
	"github.com/lox/rangebook/internal/ranges"
	"github.com/lox/rangebook/poker"
)

const cellWidth = 5

// RenderGrid draws the 13x13 matrix. Single-action cells are filled with
// the action colour faded by its weight; split cells are divided into
// coloured runs proportional to each action's share.
func RenderGrid(m ranges.Matrix) string {
	grid := poker.Grid()
	rows := make([]string, 0, len(grid))
	for _, row := range grid {
		var b strings.Builder
		for col, hand := range row {
			if col > 0 {
				b.WriteString(" ")
			}
			b.WriteString(renderCell(Blend(hand, m)))
		}
		rows = append(rows, b.String())
	}
	return strings.Join(rows, "\n")
}

func renderCell(c Cell) string {
	label := fmt.Sprintf("%-*s", cellWidth, c.Hand)
	if c.Empty() {
		return EmptyStyle.Render(label)
	}
	if !c.Split() {
		return swatch(fade(c.Primary.Hex, c.Opacity), label)
	}

	// Split the label into runs, one per segment, by character width.
	var b strings.Builder
	runes := []rune(label)
	start := 0
	for i, seg := range c.Segments {
		end := seg.End * cellWidth / 100
		if i == len(c.Segments)-1 {
			end = cellWidth
		}
		end = max(start, min(end, cellWidth))
		if end > start {
			b.WriteString(swatch(seg.Color.Hex, string(runes[start:end])))
		}
		start = end
	}
	return b.String()
}

// RenderLegend lists the actions of seq, most aggressive first.
func RenderLegend(seq cash.Sequence) string {
	actions := seq.Actions()
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		parts = append(parts, swatch(cash.ColorOf(a).Hex, "  ")+" "+LabelStyle.Render(string(a)))
	}
	return strings.Join(parts, "   ")
}

// RenderStats prints the statistics panel.
func RenderStats(s ranges.Stats) string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(" Range "))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %d hands, %.1f combos, %.1f%%\n",
		LabelStyle.Render("Total:"), s.Hands, s.Combinations, s.Percentage)
	fmt.Fprintf(&b, "%s pairs %.1f  suited %.1f  offsuit %.1f\n",
		LabelStyle.Render("Shape:"), s.Pairs, s.Suited, s.Offsuit)

	for _, t := range s.Tiers {
		if t.Hands == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %-8s %3d hands %7.1f combos\n", t.Tier, t.Hands, t.Combinations)
	}

	if len(s.Actions) > 0 {
		b.WriteString(HeaderStyle.Render(" Actions "))
		b.WriteString("\n")
	}
	for _, a := range s.Actions {
		fmt.Fprintf(&b, "%s %-16s %3d hands %7.1f combos %5.1f%%\n",
			swatch(a.Color, "  "), a.Action, a.Hands, a.Combinations, a.Percentage)
	}

	if s.Overflowing > 0 {
		b.WriteString(WarningStyle.Render(fmt.Sprintf("%d hands exceed 100%%", s.Overflowing)))
		b.WriteString("\n")
	}
	return BorderStyle.Render(strings.TrimRight(b.String(), "\n"))
}

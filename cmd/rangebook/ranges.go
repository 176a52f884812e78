package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lox/rangebook/internal/cash"
	"github.com/lox/rangebook/internal/display"
	"github.com/lox/rangebook/internal/ranges"
	"github.com/lox/rangebook/poker"
)

// ListCmd prints every saved range, most recently updated first
type ListCmd struct {
	JSON bool `help:"Print JSON instead of a table"`
}

func (c *ListCmd) Run(g *Globals) error {
	return withApp(g, func(ctx context.Context, a *app) error {
		list, err := a.repo.List(ctx)
		if err != nil {
			return err
		}
		if c.JSON {
			return printJSON(list)
		}
		if len(list) == 0 {
			fmt.Println(display.InfoStyle.Render("No saved ranges"))
			return nil
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("NAME", "SEQUENCE", "COMBOS", "RANGE", "UPDATED")
		for _, cr := range list {
			t.Row(cr.Name, string(cr.Sequence),
				fmt.Sprintf("%.1f", cr.Combinations),
				fmt.Sprintf("%.1f%%", cr.TotalPercentage),
				cr.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		fmt.Println(t.String())
		return nil
	})
}

// ShowCmd renders a range
type ShowCmd struct {
	RangeArgs
	JSON   bool   `help:"Print the stored JSON instead of the grid"`
	Combos bool   `help:"List concrete card combinations instead of the grid"`
	Dead   string `help:"Known cards removed from the combination list, e.g. AsKd"`
}

func (c *ShowCmd) Run(g *Globals) error {
	cfg, err := c.Config()
	if err != nil {
		return err
	}
	return withApp(g, func(ctx context.Context, a *app) error {
		cr, err := a.repo.LoadOrEmpty(ctx, cfg)
		if err != nil {
			return err
		}
		if c.Combos || c.Dead != "" {
			dead, err := poker.ParseCards(c.Dead)
			if err != nil {
				return err
			}
			fmt.Println(display.HeaderStyle.Render(cr.Name))
			fmt.Println(formatCombos(cr.Hands, dead))
			return nil
		}
		if c.JSON {
			return printJSON(cr)
		}
		fmt.Println(display.HeaderStyle.Render(cr.Name))
		fmt.Println(display.RenderGrid(cr.Hands))
		fmt.Println(display.RenderLegend(cr.Sequence))
		fmt.Println(display.RenderStats(ranges.ComputeStats(cr.Hands, cr.Sequence.Actions())))
		return nil
	})
}

// PaintCmd assigns an action percentage to a set of hands
type PaintCmd struct {
	RangeArgs
	Hands  string `short:"H" required:"" help:"Hands in range notation, e.g. 'TT+,AQs+,KQo'"`
	Action string `short:"a" required:"" help:"Action to assign"`
	Pct    int    `short:"p" default:"100" help:"Percentage 0-100; 0 removes the action"`
	Cap    bool   `help:"Cap each hand at its remaining headroom instead of failing on overflow"`
	Name   string `help:"Range name (defaults to the derived name)"`
}

func (c *PaintCmd) Run(g *Globals) error {
	cfg, err := c.Config()
	if err != nil {
		return err
	}
	action, err := cash.ParseAction(cfg.Sequence, c.Action)
	if err != nil {
		return err
	}
	return withApp(g, func(ctx context.Context, a *app) error {
		cr, err := a.repo.LoadOrEmpty(ctx, cfg)
		if err != nil {
			return err
		}

		hands := cr.Hands
		if c.Cap {
			hands, err = paintCapped(hands, c.Hands, action, c.Pct)
		} else {
			hands, err = ranges.Paint(hands, c.Hands, action, c.Pct)
		}
		if err != nil {
			return err
		}
		if !c.Cap {
			if err := ranges.ValidateCapacity(hands); err != nil {
				a.logger.Warn("Range has hands over 100%", "hands", ranges.Overflowing(hands))
			}
		}

		name := c.Name
		if name == "" && cr.ID != "" {
			name = cr.Name
		}
		saved, err := a.repo.Save(ctx, cfg, name, hands)
		if err != nil {
			return err
		}
		fmt.Println(display.RenderGrid(saved.Hands))
		fmt.Println(display.RenderStats(ranges.ComputeStats(saved.Hands, saved.Sequence.Actions())))
		return nil
	})
}

// formatCombos tables the live holdings of m, one row per hand.
func formatCombos(m ranges.Matrix, dead poker.Hand) string {
	combos := ranges.ExpandCombos(m, dead)
	if len(combos) == 0 {
		return display.InfoStyle.Render("No live combinations")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("HAND", "LIVE", "CARDS")
	for i := 0; i < len(combos); {
		j := i
		var cards []string
		for ; j < len(combos) && combos[j].Hand == combos[i].Hand; j++ {
			cards = append(cards, combos[j].Cards)
		}
		t.Row(string(combos[i].Hand), fmt.Sprintf("%d/%d", j-i, combos[i].Hand.Combinations()), strings.Join(cards, " "))
		i = j
	}
	return fmt.Sprintf("%s\n%.1f live combinations", t.String(), ranges.LiveCombinations(m, dead))
}

func paintCapped(m ranges.Matrix, notation string, action cash.Action, pct int) (ranges.Matrix, error) {
	hands, err := poker.ParseNotation(notation)
	if err != nil {
		return m, err
	}
	for _, hand := range hands {
		if m, err = ranges.SetActionCapped(m, hand, action, pct); err != nil {
			return m, err
		}
	}
	return m, nil
}

// ClearCmd removes one action, or every action, from a range
type ClearCmd struct {
	RangeArgs
	Action string `short:"a" help:"Action to remove; omit to empty the range"`
}

func (c *ClearCmd) Run(g *Globals) error {
	cfg, err := c.Config()
	if err != nil {
		return err
	}
	return withApp(g, func(ctx context.Context, a *app) error {
		cr, err := a.repo.LoadOrEmpty(ctx, cfg)
		if err != nil {
			return err
		}
		if cr.ID == "" {
			fmt.Println(display.InfoStyle.Render("Nothing saved for " + cr.Name))
			return nil
		}

		hands := ranges.Matrix{}
		if c.Action != "" {
			action, err := cash.ParseAction(cfg.Sequence, c.Action)
			if err != nil {
				return err
			}
			hands = ranges.Clear(cr.Hands, action)
		}
		saved, err := a.repo.Save(ctx, cfg, cr.Name, hands)
		if err != nil {
			return err
		}
		fmt.Println(display.RenderStats(ranges.ComputeStats(saved.Hands, saved.Sequence.Actions())))
		return nil
	})
}

// DeleteCmd removes a saved range
type DeleteCmd struct {
	RangeArgs
}

func (c *DeleteCmd) Run(g *Globals) error {
	cfg, err := c.Config()
	if err != nil {
		return err
	}
	return withApp(g, func(ctx context.Context, a *app) error {
		existed, err := a.repo.Delete(ctx, cfg)
		if err != nil {
			return err
		}
		if !existed {
			fmt.Println(display.WarningStyle.Render("No saved range for " + cash.DeriveKey(cfg)))
			return nil
		}
		fmt.Println("Deleted " + cash.DeriveKey(cfg))
		return nil
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"fmt"
	"strings"

	"github.com/lox/rangebook/internal/cash"
	"github.com/lox/rangebook/internal/display"
)

// OptionsCmd lists legal seats for a role. It does not touch storage.
type OptionsCmd struct {
	RangeArgs
	Role string `short:"r" required:"" help:"Role to list positions for"`
}

func (c *OptionsCmd) Run(g *Globals) error {
	cfg, err := c.Config()
	if err != nil {
		return err
	}
	cfg, err = cash.Normalize(cfg)
	if err != nil {
		return err
	}
	role := cfg.Sequence.ResolveRole(c.Role)

	opts, err := cash.Options(cfg.Sequence, role, cfg.Positions)
	if err != nil {
		return err
	}
	fmt.Println(formatOptions(role, cash.Optional(cfg.Sequence, role), opts))
	return nil
}

func formatOptions(role cash.Role, optional bool, opts []cash.Position) string {
	names := make([]string, 0, len(opts)+1)
	for _, p := range opts {
		names = append(names, string(p))
	}
	if optional {
		names = append(names, "none")
	}
	if len(names) == 0 {
		return display.WarningStyle.Render(fmt.Sprintf("%s: no legal position", role))
	}
	return fmt.Sprintf("%s: %s", role, strings.Join(names, " "))
}

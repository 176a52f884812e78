package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/rangebook/internal/cash"
	"github.com/lox/rangebook/internal/library"
	"github.com/lox/rangebook/internal/ranges"
	"github.com/lox/rangebook/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeArgsConfig(t *testing.T) {
	t.Parallel()

	cfg, err := RangeArgs{Sequence: "three_bet", Seats: []string{"villain=co", "hero=BTN"}}.Config()
	require.NoError(t, err)
	assert.Equal(t, cash.ThreeBet, cfg.Sequence)

	norm, err := cash.Normalize(cfg)
	require.NoError(t, err)
	require.NoError(t, norm.Validate())
	assert.Equal(t, "cash-range:3BET:hero:BTN|opponent:CO", cash.DeriveKey(norm))
}

func TestRangeArgsErrors(t *testing.T) {
	t.Parallel()

	tests := []RangeArgs{
		{Sequence: "FIVE_BET"},
		{Sequence: "3BET", Seats: []string{"hero"}},
		{Sequence: "3BET", Seats: []string{"=BTN"}},
		{Sequence: "3BET", Seats: []string{"hero=BTN", "hero=SB"}},
	}
	for _, args := range tests {
		_, err := args.Config()
		assert.Error(t, err, "%+v", args)
	}
}

func TestFormatOptions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hero: BTN SB BB", formatOptions(cash.Hero, false, []cash.Position{cash.BTN, cash.SB, cash.BB}))
	assert.Equal(t, "limper2: MP none", formatOptions(cash.Limper2, true, []cash.Position{cash.MP}))
	assert.Contains(t, formatOptions(cash.Hero, false, nil), "no legal position")
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "rangebook.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "warn"

storage {
  backend = "memory"
}
`), 0o644))

	g := &Globals{Config: path}
	cfg, err := g.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "memory", cfg.Storage.Backend)

	g = &Globals{Config: path, LogLevel: "debug", Backend: "sqlite", DB: filepath.Join(dir, "ranges.db")}
	cfg, err = g.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(dir, "ranges.db"), cfg.Storage.Path)

	g = &Globals{Config: path, Backend: "etcd"}
	_, err = g.loadConfig()
	assert.Error(t, err)
}

func TestOpenMemoryStore(t *testing.T) {
	t.Parallel()

	g := &Globals{Config: filepath.Join(t.TempDir(), "missing.hcl"), Backend: "memory", LogLevel: "error"}
	err := withApp(g, func(ctx context.Context, a *app) error {
		assert.True(t, a.repo.Ready())
		saved, err := a.repo.Save(ctx, cash.NewConfig(cash.OpenRaise, cash.Seat{Role: cash.Hero, Position: cash.CO}), "", nil)
		require.NoError(t, err)
		assert.Equal(t, "OR CO", saved.Name)
		return nil
	})
	require.NoError(t, err)
}

func TestOpenAppSharesLogger(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	g := &Globals{Config: filepath.Join(t.TempDir(), "missing.hcl"), Backend: "memory", LogLevel: "error"}
	cfg, logger, err := g.setup()
	require.NoError(t, err)
	assert.Equal(t, log.ErrorLevel, logger.GetLevel())

	clock := quartz.NewMock(t)
	a, err := openApp(ctx, cfg, logger, clock)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Same(t, logger, a.logger)
	assert.Same(t, cfg, a.cfg)
	assert.True(t, a.repo.Ready())
}

func TestFormatCombos(t *testing.T) {
	t.Parallel()

	m := ranges.Matrix{
		"AA":  {{Action: cash.ORFold, Percentage: 100}},
		"AKs": {{Action: cash.ORFold, Percentage: 50}},
	}
	dead, err := poker.ParseCards("AsKh")
	require.NoError(t, err)

	out := formatCombos(m, dead)
	assert.Contains(t, out, "3/6")
	assert.Contains(t, out, "2/4")
	assert.Contains(t, out, "AdAc")
	assert.NotContains(t, out, "AsAh")
	assert.Contains(t, out, "4.0 live combinations")

	assert.Contains(t, formatCombos(ranges.Matrix{}, 0), "No live combinations")
}

func TestFormatLibrary(t *testing.T) {
	t.Parallel()

	folders := []library.Folder{
		{ID: "default-1", Name: "My Ranges", IsExpanded: true, Ranges: []library.Range{
			{ID: "range-1", Name: "UTG open", Combinations: 8, TotalPercentage: 0.6},
		}},
		{ID: "default-2", Name: "Position Ranges", Ranges: []library.Range{
			{ID: "range-2", Name: "Hidden"},
		}},
	}

	out := formatLibrary(folders, false)
	assert.Contains(t, out, "- My Ranges")
	assert.Contains(t, out, "UTG open  8.0 combos 0.6%")
	assert.Contains(t, out, "+ Position Ranges")
	assert.Contains(t, out, "1 ranges")
	assert.NotContains(t, out, "Hidden")

	assert.Contains(t, formatLibrary(folders, true), "Hidden")
}

func TestLibraryThroughApp(t *testing.T) {
	t.Parallel()

	g := &Globals{Config: filepath.Join(t.TempDir(), "missing.hcl"), Backend: "memory", LogLevel: "error"}
	err := withApp(g, func(ctx context.Context, a *app) error {
		r, err := a.lib.AddRange(ctx, "default-1", "CO open")
		require.NoError(t, err)
		hands, err := library.Paint(r.Hands, "22+,AKs", 100)
		require.NoError(t, err)
		saved, err := a.lib.UpdateRange(ctx, r.ID, library.RangeUpdate{Hands: &hands})
		require.NoError(t, err)
		assert.Equal(t, "82.0 combos, 6.2%  pairs 13  suited 1  offsuit 0", formatShape(saved))
		return nil
	})
	require.NoError(t, err)
}

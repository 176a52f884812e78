package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lox/rangebook/internal/display"
	"github.com/lox/rangebook/internal/fileutil"
	"github.com/lox/rangebook/internal/rangestore"
	"github.com/lox/rangebook/internal/storage"
)

// ExportCmd writes every range as a JSON array
type ExportCmd struct {
	Output string `short:"o" help:"Write to file instead of stdout" type:"path"`
}

func (c *ExportCmd) Run(g *Globals) error {
	return withApp(g, func(ctx context.Context, a *app) error {
		data, err := a.repo.Export(ctx)
		if err != nil {
			return err
		}
		if c.Output == "" {
			_, err = os.Stdout.Write(append(data, '\n'))
			return err
		}
		if err := fileutil.WriteFileAtomic(c.Output, data, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		a.logger.Info("Exported ranges", "file", c.Output)
		return nil
	})
}

// ImportCmd loads ranges from an export file
type ImportCmd struct {
	File string `arg:"" help:"Export file to import" type:"existingfile"`
}

func (c *ImportCmd) Run(g *Globals) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}
	return withApp(g, func(ctx context.Context, a *app) error {
		n, err := a.repo.Import(ctx, data)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d ranges\n", n)
		return nil
	})
}

// MigrateCmd converts a legacy single-key blob into per-range entries and
// repairs the index. Init performs the migration; Reconcile repairs.
type MigrateCmd struct {
	LegacyDB string `help:"Read legacy data from this SQLite database instead of the main store" type:"existingfile"`
}

func (c *MigrateCmd) Run(g *Globals) error {
	var opts []rangestore.Option
	if c.LegacyDB != "" {
		legacy, err := storage.OpenSQLite(context.Background(), c.LegacyDB)
		if err != nil {
			return fmt.Errorf("open legacy store: %w", err)
		}
		defer func() { _ = legacy.Close() }()
		opts = append(opts, rangestore.WithLegacyStore(legacy))
	}

	return withApp(g, func(ctx context.Context, a *app) error {
		report, err := a.repo.Reconcile(ctx)
		if err != nil {
			return err
		}
		for _, key := range report.Added {
			fmt.Println("indexed  " + key)
		}
		for _, key := range report.Removed {
			fmt.Println("pruned   " + key)
		}
		if !report.Listed {
			fmt.Println(display.WarningStyle.Render("Store cannot list keys; orphaned entries were not checked"))
		}
		fmt.Println(display.InfoStyle.Render(fmt.Sprintf("%d added, %d removed", len(report.Added), len(report.Removed))))
		return nil
	}, opts...)
}

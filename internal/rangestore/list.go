package rangestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/lox/rangebook/internal/cash"
	"github.com/lox/rangebook/internal/storage"
	"golang.org/x/sync/errgroup"
)

// List returns every indexed range, most recently updated first. Entries
// that fail to load are logged and skipped; keys whose entries are gone
// are pruned from the index.
func (r *Repository) List(ctx context.Context) ([]CashRange, error) {
	if err := r.checkReady(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	idx, err := r.readIndex(ctx)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	loaded := make([]*CashRange, len(idx.Keys))
	missing := make([]bool, len(idx.Keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, key := range idx.Keys {
		g.Go(func() error {
			cr, err := r.get(gctx, key)
			switch {
			case errors.Is(err, storage.ErrNotFound):
				missing[i] = true
			case err != nil:
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				r.logger.Error("Failed to load range", "key", key, "error", err)
			default:
				loaded[i] = &cr
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var stale []string
	for i, key := range idx.Keys {
		if missing[i] {
			stale = append(stale, key)
		}
	}
	out := make([]CashRange, 0, len(loaded))
	for _, cr := range loaded {
		if cr != nil {
			out = append(out, *cr)
		}
	}
	if len(stale) > 0 {
		out = append(out, r.pruneStale(ctx, stale)...)
	}
	slices.SortStableFunc(out, func(a, b CashRange) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out, nil
}

// pruneStale removes index keys whose entry was missing when List read it.
// A Save may have written one of them since, so each key is read again under
// mu and only keys that are still absent are dropped. Ranges that appeared
// in the meantime are returned.
func (r *Repository) pruneStale(ctx context.Context, stale []string) []CashRange {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		gone    []string
		revived []CashRange
	)
	for _, key := range stale {
		cr, err := r.get(ctx, key)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			gone = append(gone, key)
		case err != nil:
			r.logger.Error("Failed to load range", "key", key, "error", err)
		default:
			revived = append(revived, cr)
		}
	}
	if len(gone) == 0 {
		return revived
	}

	r.logger.Warn("Pruning stale index keys", "count", len(gone))
	if err := r.removeFromIndex(ctx, gone...); err != nil {
		r.logger.Error("Failed to prune index", "error", err)
	}
	return revived
}

// Export returns every range as an indented JSON array.
func (r *Repository) Export(ctx context.Context) ([]byte, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(list, "", "  ")
}

// Import saves each range of an exported JSON array and returns how many
// were stored. Entries with an invalid config or hands are logged and
// skipped; malformed JSON fails the whole import.
func (r *Repository) Import(ctx context.Context, data []byte) (int, error) {
	if err := r.checkReady(); err != nil {
		return 0, err
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, fmt.Errorf("parse import: %w", err)
	}

	imported := 0
	for i, raw := range entries {
		var cr CashRange
		if err := json.Unmarshal(raw, &cr); err != nil {
			r.logger.Warn("Skipping unreadable import entry", "index", i, "error", err)
			continue
		}
		if _, err := r.Save(ctx, cr.Config(), cr.Name, cr.Hands); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return imported, ctxErr
			}
			r.logger.Warn("Skipping import entry", "index", i, "name", cr.Name, "error", err)
			continue
		}
		imported++
	}

	r.logger.Info("Imported ranges", "imported", imported, "total", len(entries))
	return imported, nil
}

// Reconcile repairs the index after partial writes: range entries missing
// from the index are added and index keys without an entry are removed.
// Stores that cannot list keys only get the second half.
func (r *Repository) Reconcile(ctx context.Context) (ReconcileReport, error) {
	if err := r.checkReady(); err != nil {
		return ReconcileReport{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.readIndex(ctx)
	if err != nil {
		return ReconcileReport{}, err
	}

	report := ReconcileReport{Listed: true}
	stored, err := r.store.List(ctx, cash.RangeKeyPrefix())
	if errors.Is(err, storage.ErrListUnsupported) {
		report.Listed = false
	} else if err != nil {
		return ReconcileReport{}, fmt.Errorf("list keys: %w", err)
	}

	keys := make([]string, 0, len(idx.Keys))
	for _, key := range idx.Keys {
		if slices.Contains(keys, key) {
			report.Removed = append(report.Removed, key)
			continue
		}
		exists := slices.Contains(stored, key)
		if !report.Listed {
			_, err := r.store.Get(ctx, key)
			switch {
			case errors.Is(err, storage.ErrNotFound):
			case err != nil:
				return ReconcileReport{}, err
			default:
				exists = true
			}
		}
		if !exists {
			report.Removed = append(report.Removed, key)
			continue
		}
		keys = append(keys, key)
	}

	for _, key := range stored {
		if !slices.Contains(keys, key) {
			report.Added = append(report.Added, key)
			keys = append(keys, key)
		}
	}

	if len(report.Added) == 0 && len(report.Removed) == 0 {
		return report, nil
	}
	r.logger.Info("Reconciled index", "added", len(report.Added), "removed", len(report.Removed))
	return report, r.writeIndex(ctx, keys)
}

package rangestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lox/rangebook/internal/cash"
	"github.com/lox/rangebook/internal/ranges"
	"github.com/lox/rangebook/internal/storage"
)

// migrate moves ranges from the legacy single-key list into one entry per
// range. Entries that cannot be read or re-keyed are skipped. The legacy
// key is removed once the index has been updated.
func (r *Repository) migrate(ctx context.Context) error {
	raw, err := r.legacy.Get(ctx, cash.LegacyKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read legacy ranges: %w", err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		// Left in place so the data is not lost.
		r.logger.Error("Legacy ranges are unreadable, skipping migration", "error", err)
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var keys []string
	for i, entry := range entries {
		var cr CashRange
		if err := json.Unmarshal(entry, &cr); err != nil {
			r.logger.Warn("Skipping unreadable legacy range", "index", i, "error", err)
			continue
		}
		cfg, err := cash.Normalize(cr.Config())
		if err != nil {
			r.logger.Warn("Skipping legacy range", "index", i, "name", cr.Name, "error", err)
			continue
		}

		cr.Sequence, cr.Positions = cfg.Sequence, cfg.Positions
		if cr.ID == "" {
			cr.ID = uuid.NewString()
		}
		if cr.Hands == nil {
			cr.Hands = ranges.Matrix{}
		}
		if cr.Name == "" {
			cr.Name = cash.DeriveName(cfg)
		}
		now := r.clock.Now().UTC()
		if cr.CreatedAt.IsZero() {
			cr.CreatedAt = now
		}
		if cr.UpdatedAt.IsZero() {
			cr.UpdatedAt = cr.CreatedAt
		}
		cr.TotalPercentage = ranges.Percentage(cr.Hands)
		cr.Combinations = ranges.WeightedCombinations(cr.Hands)

		key := cash.DeriveKey(cfg)
		if err := r.put(ctx, key, cr); err != nil {
			r.logger.Warn("Failed to migrate range", "name", cr.Name, "error", err)
			continue
		}
		keys = append(keys, key)
	}

	if err := r.addToIndex(ctx, keys...); err != nil {
		return err
	}
	if _, err := r.legacy.Delete(ctx, cash.LegacyKey); err != nil {
		return fmt.Errorf("remove legacy ranges: %w", err)
	}

	r.logger.Info("Migrated legacy ranges", "migrated", len(keys), "total", len(entries))
	return nil
}

package rangestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/lox/rangebook/internal/cash"
	"github.com/lox/rangebook/internal/ranges"
	"github.com/lox/rangebook/internal/storage"
	"golang.org/x/sync/singleflight"
)

// Option configures a Repository.
type Option func(*Repository)

// WithListener registers a change listener.
func WithListener(l Listener) Option {
	return func(r *Repository) { r.listener = l }
}

// WithLegacyStore reads the legacy range list from a different store than
// the one ranges are written to.
func WithLegacyStore(s storage.Store) Option {
	return func(r *Repository) { r.legacy = s }
}

// WithConcurrency bounds how many entries List loads at once.
func WithConcurrency(n int) Option {
	return func(r *Repository) { r.concurrency = max(1, n) }
}

// Repository reads and writes ranges and keeps the index in step.
type Repository struct {
	store       storage.Store
	legacy      storage.Store
	clock       quartz.Clock
	logger      *log.Logger
	listener    Listener
	concurrency int

	// mu serialises every read-modify-write of the index.
	mu sync.Mutex

	initGroup singleflight.Group
	ready     atomic.Bool
}

// New creates a repository over store. Init must be called before use.
func New(store storage.Store, logger *log.Logger, clock quartz.Clock, opts ...Option) *Repository {
	r := &Repository{
		store:       store,
		legacy:      store,
		clock:       clock,
		logger:      logger.WithPrefix("rangestore"),
		concurrency: 8,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Init runs the one-time migration of legacy data. Concurrent callers share
// a single run and later calls return immediately.
func (r *Repository) Init(ctx context.Context) error {
	if r.ready.Load() {
		return nil
	}
	_, err, _ := r.initGroup.Do("init", func() (any, error) {
		if r.ready.Load() {
			return nil, nil
		}
		if err := r.migrate(ctx); err != nil {
			return nil, err
		}
		r.ready.Store(true)
		return nil, nil
	})
	return err
}

// Ready reports whether Init has completed.
func (r *Repository) Ready() bool {
	return r.ready.Load()
}

func (r *Repository) checkReady() error {
	if !r.ready.Load() {
		return ErrNotInitialized
	}
	return nil
}

// normalize resolves aliases and checks legality.
func normalize(cfg cash.Config) (cash.Config, error) {
	cfg, err := cash.Normalize(cfg)
	if err != nil {
		return cash.Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return cash.Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Save writes hands for cfg. An existing range under the same key keeps its
// id and creation time; only new keys are added to the index.
func (r *Repository) Save(ctx context.Context, cfg cash.Config, name string, hands ranges.Matrix) (CashRange, error) {
	if err := r.checkReady(); err != nil {
		return CashRange{}, err
	}
	cfg, err := normalize(cfg)
	if err != nil {
		return CashRange{}, err
	}
	if err := ranges.Validate(hands, cfg.Sequence); err != nil {
		return CashRange{}, fmt.Errorf("%w: %w", ErrInvalidHands, err)
	}
	if hands == nil {
		hands = ranges.Matrix{}
	}
	if name == "" {
		name = cash.DeriveName(cfg)
	}

	key := cash.DeriveKey(cfg)

	r.mu.Lock()
	saved, err := r.save(ctx, key, cfg, name, hands)
	r.mu.Unlock()
	if err != nil {
		return CashRange{}, err
	}

	r.logger.Debug("Saved range", "key", key, "hands", len(hands), "combos", saved.Combinations)
	if r.listener != nil {
		r.listener.OnRangeSaved(saved)
	}
	return saved, nil
}

func (r *Repository) save(ctx context.Context, key string, cfg cash.Config, name string, hands ranges.Matrix) (CashRange, error) {
	existing, err := r.get(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case errors.Is(err, errUnreadable):
		r.logger.Warn("Overwriting unreadable range", "key", key, "error", err)
		err = storage.ErrNotFound
	case err != nil:
		return CashRange{}, err
	}
	isNew := err != nil

	now := r.clock.Now().UTC()
	saved := CashRange{
		ID:              uuid.NewString(),
		Name:            name,
		Sequence:        cfg.Sequence,
		Hands:           hands,
		Positions:       cfg.Positions,
		TotalPercentage: ranges.Percentage(hands),
		Combinations:    ranges.WeightedCombinations(hands),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if !isNew {
		if existing.ID != "" {
			saved.ID = existing.ID
		}
		if !existing.CreatedAt.IsZero() {
			saved.CreatedAt = existing.CreatedAt
		}
	}

	if err := r.put(ctx, key, saved); err != nil {
		return CashRange{}, err
	}
	if isNew {
		if err := r.addToIndex(ctx, key); err != nil {
			return CashRange{}, err
		}
	}
	return saved, nil
}

// Load returns the range saved for cfg. A missing range yields an error
// wrapping storage.ErrNotFound.
func (r *Repository) Load(ctx context.Context, cfg cash.Config) (CashRange, error) {
	if err := r.checkReady(); err != nil {
		return CashRange{}, err
	}
	cfg, err := normalize(cfg)
	if err != nil {
		return CashRange{}, err
	}
	key := cash.DeriveKey(cfg)
	cr, err := r.get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return CashRange{}, fmt.Errorf("no saved range for %s: %w", key, err)
	}
	return cr, err
}

// LoadOrEmpty is Load with a missing or unreadable range replaced by an
// empty one. Saving over an unreadable range replaces it.
func (r *Repository) LoadOrEmpty(ctx context.Context, cfg cash.Config) (CashRange, error) {
	cr, err := r.Load(ctx, cfg)
	switch {
	case errors.Is(err, errUnreadable):
		r.logger.Warn("Ignoring unreadable range", "error", err)
	case !errors.Is(err, storage.ErrNotFound):
		return cr, err
	}
	cfg, _ = cash.Normalize(cfg)
	return CashRange{
		Name:      cash.DeriveName(cfg),
		Sequence:  cfg.Sequence,
		Hands:     ranges.Matrix{},
		Positions: cfg.Positions,
	}, nil
}

// Delete removes the range for cfg and its index entry. It reports whether
// a range was stored. The config only needs to normalise, not be legal, so
// ranges saved under rules that have since changed can still be removed.
func (r *Repository) Delete(ctx context.Context, cfg cash.Config) (bool, error) {
	if err := r.checkReady(); err != nil {
		return false, err
	}
	cfg, err := cash.Normalize(cfg)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	key := cash.DeriveKey(cfg)

	r.mu.Lock()
	existed, err := r.store.Delete(ctx, key)
	if err == nil {
		err = r.removeFromIndex(ctx, key)
	}
	r.mu.Unlock()
	if err != nil {
		return existed, fmt.Errorf("delete %s: %w", key, err)
	}

	r.logger.Debug("Deleted range", "key", key, "existed", existed)
	if existed && r.listener != nil {
		r.listener.OnRangeDeleted(key, cfg)
	}
	return existed, nil
}

func (r *Repository) get(ctx context.Context, key string) (CashRange, error) {
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		return CashRange{}, err
	}
	var cr CashRange
	if err := json.Unmarshal([]byte(raw), &cr); err != nil {
		return CashRange{}, fmt.Errorf("%w %s: %w", errUnreadable, key, err)
	}
	return cr, nil
}

func (r *Repository) put(ctx context.Context, key string, cr CashRange) error {
	data, err := json.Marshal(cr)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// readIndex returns the stored index. A missing or unreadable index reads
// as empty.
func (r *Repository) readIndex(ctx context.Context) (RangeIndex, error) {
	raw, err := r.store.Get(ctx, cash.IndexKey)
	if errors.Is(err, storage.ErrNotFound) {
		return RangeIndex{}, nil
	}
	if err != nil {
		return RangeIndex{}, fmt.Errorf("read index: %w", err)
	}
	var idx RangeIndex
	if err := json.Unmarshal([]byte(raw), &idx); err != nil {
		r.logger.Warn("Ignoring unreadable index", "error", err)
		return RangeIndex{}, nil
	}
	return idx, nil
}

func (r *Repository) writeIndex(ctx context.Context, keys []string) error {
	if keys == nil {
		keys = []string{}
	}
	data, err := json.Marshal(RangeIndex{Keys: keys, LastUpdated: r.clock.Now().UTC()})
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, cash.IndexKey, string(data)); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// addToIndex appends keys that are not yet indexed. Callers hold mu.
func (r *Repository) addToIndex(ctx context.Context, keys ...string) error {
	idx, err := r.readIndex(ctx)
	if err != nil {
		return err
	}
	out := idx.Keys
	for _, k := range keys {
		if !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	if len(out) == len(idx.Keys) {
		return nil
	}
	return r.writeIndex(ctx, out)
}

// removeFromIndex drops keys from the index. Callers hold mu.
func (r *Repository) removeFromIndex(ctx context.Context, keys ...string) error {
	idx, err := r.readIndex(ctx)
	if err != nil {
		return err
	}
	out := slices.DeleteFunc(slices.Clone(idx.Keys), func(k string) bool {
		return slices.Contains(keys, k)
	})
	if len(out) == len(idx.Keys) {
		return nil
	}
	return r.writeIndex(ctx, out)
}

package rangestore

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/rangebook/internal/cash"
	"github.com/lox/rangebook/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyRanges = `[
  {
    "id": "1718000000000",
    "name": "3B BTN-CO",
    "sequence": "3BET",
    "hands": {"AA": [{"action": "3BET-ALL-IN", "percentage": 100}]},
    "positions": {"hero": "BTN", "villain": "CO"},
    "totalPercentage": 0.5,
    "combinations": 6,
    "createdAt": "2024-06-10T08:00:00.000Z",
    "updatedAt": "2024-06-11T09:30:00.000Z"
  },
  {
    "id": "1718000000001",
    "name": "ROL",
    "sequence": "RAISE_OVER_LIMP",
    "hands": {"KK": [{"action": "ROL-4BET-ALL-IN", "percentage": 100}]},
    "positions": {"limper": "MP", "limper2": null, "hero": "BTN"},
    "totalPercentage": 0.5,
    "combinations": 6,
    "createdAt": "2024-06-10T08:00:00.000Z",
    "updatedAt": "2024-06-10T08:00:00.000Z"
  },
  {
    "id": "1718000000002",
    "name": "broken",
    "sequence": "FIVE_BET",
    "hands": {},
    "positions": {"hero": "BTN"},
    "createdAt": "2024-06-10T08:00:00.000Z",
    "updatedAt": "2024-06-10T08:00:00.000Z"
  }
]`

func TestMigrateLegacyRanges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := storage.NewMemory()

	existing := cash.DeriveKey(cash.NewConfig(cash.OpenRaise, cash.Seat{Role: cash.Hero, Position: cash.CO}))
	require.NoError(t, store.Set(ctx, existing, `{"name":"OR CO","sequence":"OPEN_RAISE","positions":{"hero":"CO"},"hands":{}}`))
	require.NoError(t, store.Set(ctx, cash.IndexKey, `{"keys":["`+existing+`"],"lastUpdated":"2024-01-01T00:00:00Z"}`))
	require.NoError(t, store.Set(ctx, cash.LegacyKey, legacyRanges))

	repo, _ := newTestRepository(t, store)

	_, err := store.Get(ctx, cash.LegacyKey)
	assert.ErrorIs(t, err, storage.ErrNotFound, "legacy key should be removed")

	threeBetKey := "cash-range:3BET:hero:BTN|opponent:CO"
	rolKey := "cash-range:RAISE_OVER_LIMP:hero:BTN|limper:MP"
	assert.Equal(t, []string{existing, threeBetKey, rolKey}, readIndex(t, store).Keys)

	got, err := repo.Load(ctx, threeBet(cash.BTN, cash.CO))
	require.NoError(t, err)
	assert.Equal(t, "1718000000000", got.ID)
	assert.Equal(t, "3B BTN-CO", got.Name)
	assert.Equal(t, 100, got.Hands.Percentage("AA", cash.ThreeBetAllIn))
	assert.Equal(t, 2024, got.CreatedAt.Year())
	opp, ok := got.Positions.Get(cash.Opponent)
	assert.True(t, ok)
	assert.Equal(t, cash.CO, opp)

	rol, err := repo.Load(ctx, cash.NewConfig(cash.RaiseOverLimp,
		cash.Seat{Role: cash.Limper, Position: cash.MP},
		cash.Seat{Role: cash.Hero, Position: cash.BTN},
	))
	require.NoError(t, err)
	_, ok = rol.Positions.Get(cash.Limper2)
	assert.False(t, ok)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestMigrateFromSeparateLegacyStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, legacy := storage.NewMemory(), storage.NewMemory()
	require.NoError(t, legacy.Set(ctx, cash.LegacyKey, legacyRanges))

	_, _ = newTestRepository(t, store, WithLegacyStore(legacy))

	keys, err := store.List(ctx, cash.RangeKeyPrefix())
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	_, err = legacy.Get(ctx, cash.LegacyKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMigrateKeepsUnreadableLegacyData(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, store.Set(ctx, cash.LegacyKey, "{oops"))

	repo, _ := newTestRepository(t, store)
	assert.True(t, repo.Ready())

	v, err := store.Get(ctx, cash.LegacyKey)
	require.NoError(t, err)
	assert.Equal(t, "{oops", v)
}

// countingStore counts reads of the legacy key.
type countingStore struct {
	storage.Store
	mu    sync.Mutex
	reads int
}

func (c *countingStore) Get(ctx context.Context, key string) (string, error) {
	if key == cash.LegacyKey {
		c.mu.Lock()
		c.reads++
		c.mu.Unlock()
	}
	return c.Store.Get(ctx, key)
}

func TestInitRunsOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := &countingStore{Store: storage.NewMemory()}
	require.NoError(t, store.Set(ctx, cash.LegacyKey, legacyRanges))
	repo := New(store, log.New(io.Discard), quartz.NewMock(t))

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Init(ctx))
		}()
	}
	wg.Wait()
	require.NoError(t, repo.Init(ctx))

	assert.True(t, repo.Ready())
	assert.LessOrEqual(t, store.reads, 1)
	assert.Len(t, readIndex(t, store).Keys, 2)
}

package library

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/rangebook/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLibrary(t *testing.T) (*Library, storage.Store, *quartz.Mock) {
	t.Helper()
	store := storage.NewMemory()
	clock := quartz.NewMock(t)
	return New(store, log.New(io.Discard), clock), store, clock
}

func ptr[T any](v T) *T { return &v }

func TestDefaultFolders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	lib, store, _ := newTestLibrary(t)

	tree, err := lib.Folders(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "default-1", tree[0].ID)
	assert.Equal(t, "My Ranges", tree[0].Name)
	assert.True(t, tree[0].IsExpanded)
	assert.Equal(t, "Position Ranges", tree[1].Name)
	assert.False(t, tree[1].IsExpanded)

	_, err = store.Get(ctx, Key)
	assert.ErrorIs(t, err, storage.ErrNotFound, "reading does not write the defaults")
}

func TestUnreadableTreeReadsAsDefaults(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	lib, store, _ := newTestLibrary(t)

	require.NoError(t, store.Set(ctx, Key, "{not json"))
	tree, err := lib.Folders(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultFolders(), tree)

	_, err = lib.AddFolder(ctx, "", "Recovered")
	require.NoError(t, err)
	tree, err = lib.Folders(ctx)
	require.NoError(t, err)
	assert.Len(t, tree, 3)
}

func TestFolderLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	lib, _, _ := newTestLibrary(t)

	folder, err := lib.AddFolder(ctx, "", "  Blind defence ")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(folder.ID, "folder-"))
	assert.Equal(t, "Blind defence", folder.Name)

	sub, err := lib.AddFolder(ctx, folder.ID, "SB")
	require.NoError(t, err)

	_, err = lib.AddFolder(ctx, "missing", "x")
	assert.ErrorIs(t, err, ErrFolderNotFound)
	_, err = lib.AddFolder(ctx, "", "   ")
	assert.ErrorIs(t, err, ErrInvalidName)

	toggled, err := lib.ToggleFolder(ctx, sub.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsExpanded)

	tree, err := lib.Folders(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 3)
	require.Len(t, tree[2].Subfolders, 1)
	assert.True(t, tree[2].Subfolders[0].IsExpanded)

	deleted, err := lib.DeleteFolder(ctx, sub.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = lib.DeleteFolder(ctx, sub.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = lib.DeleteFolder(ctx, "default-2")
	require.NoError(t, err)
	assert.True(t, deleted)
	tree, err = lib.Folders(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"default-1", folder.ID}, []string{tree[0].ID, tree[1].ID})
	assert.Empty(t, tree[1].Subfolders)
}

func TestRangeLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	lib, store, clock := newTestLibrary(t)

	created, err := lib.AddRange(ctx, "default-2", "UTG open")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.ID, "range-"))
	assert.Empty(t, created.Hands)

	_, err = lib.AddRange(ctx, "missing", "x")
	assert.ErrorIs(t, err, ErrFolderNotFound)

	clock.Advance(time.Minute)
	updated, err := lib.UpdateRange(ctx, created.ID, RangeUpdate{
		Hands:    &Weights{"AA": 100, "AKs": 50, "72o": 0},
		Position: ptr(" UTG "),
	})
	require.NoError(t, err)
	assert.Equal(t, Weights{"AA": 100, "AKs": 50}, updated.Hands)
	assert.Equal(t, "UTG", updated.Position)
	assert.Equal(t, "UTG open", updated.Name)
	assert.Equal(t, 8.0, updated.Combinations)
	assert.Equal(t, 0.6, updated.TotalPercentage)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	_, err = lib.UpdateRange(ctx, created.ID, RangeUpdate{Hands: &Weights{"AA": 101}})
	assert.ErrorIs(t, err, ErrInvalidWeights)
	_, err = lib.UpdateRange(ctx, created.ID, RangeUpdate{Name: ptr("")})
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = lib.UpdateRange(ctx, "missing", RangeUpdate{})
	assert.ErrorIs(t, err, ErrRangeNotFound)

	found, err := lib.FindRange(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, found)

	exported, err := lib.ExportRange(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, Export{Name: "UTG open", Hands: updated.Hands, TotalPercentage: 0.6, Combinations: 8}, exported)

	raw, err := store.Get(ctx, Key)
	require.NoError(t, err)
	var tree []Folder
	require.NoError(t, json.Unmarshal([]byte(raw), &tree))
	require.Len(t, tree[1].Ranges, 1)
	assert.Equal(t, 100, tree[1].Ranges[0].Hands["AA"])

	deleted, err := lib.DeleteRange(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = lib.DeleteRange(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
	_, err = lib.FindRange(ctx, created.ID)
	assert.ErrorIs(t, err, ErrRangeNotFound)
}

func TestRangesInSubfolders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	lib, _, _ := newTestLibrary(t)

	sub, err := lib.AddFolder(ctx, "default-1", "Nested")
	require.NoError(t, err)
	r, err := lib.AddRange(ctx, sub.ID, "Deep")
	require.NoError(t, err)

	found, err := lib.FindRange(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Deep", found.Name)

	deleted, err := lib.DeleteRange(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}

package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/lox/rangebook/internal/storage"
)

// Library reads and writes the folder tree.
type Library struct {
	store  storage.Store
	clock  quartz.Clock
	logger *log.Logger

	// mu serialises every read-modify-write of the tree.
	mu sync.Mutex
}

// New creates a library over store.
func New(store storage.Store, logger *log.Logger, clock quartz.Clock) *Library {
	return &Library{
		store:  store,
		clock:  clock,
		logger: logger.WithPrefix("library"),
	}
}

// Folders returns the tree. A missing or unreadable tree reads as the
// default folders.
func (l *Library) Folders(ctx context.Context) ([]Folder, error) {
	return l.load(ctx)
}

// AddFolder creates an empty folder under parentID, or at the top level
// when parentID is empty.
func (l *Library) AddFolder(ctx context.Context, parentID, name string) (Folder, error) {
	name, err := cleanName(name)
	if err != nil {
		return Folder{}, err
	}
	folder := Folder{ID: "folder-" + uuid.NewString(), Name: name, Ranges: []Range{}}

	err = l.update(ctx, func(tree []Folder) ([]Folder, error) {
		if parentID == "" {
			return append(tree, folder), nil
		}
		parent := findFolder(tree, parentID)
		if parent == nil {
			return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, parentID)
		}
		parent.Subfolders = append(parent.Subfolders, folder)
		return tree, nil
	})
	return folder, err
}

// DeleteFolder removes a folder with its ranges and subfolders and reports
// whether it existed.
func (l *Library) DeleteFolder(ctx context.Context, id string) (bool, error) {
	var found bool
	err := l.update(ctx, func(tree []Folder) ([]Folder, error) {
		tree, found = removeFolder(tree, id)
		return tree, nil
	})
	return found, err
}

// ToggleFolder flips whether a folder is shown expanded.
func (l *Library) ToggleFolder(ctx context.Context, id string) (Folder, error) {
	var out Folder
	err := l.update(ctx, func(tree []Folder) ([]Folder, error) {
		f := findFolder(tree, id)
		if f == nil {
			return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, id)
		}
		f.IsExpanded = !f.IsExpanded
		out = *f
		return tree, nil
	})
	return out, err
}

// AddRange creates an empty range in a folder.
func (l *Library) AddRange(ctx context.Context, folderID, name string) (Range, error) {
	name, err := cleanName(name)
	if err != nil {
		return Range{}, err
	}
	now := l.clock.Now().UTC()
	r := Range{
		ID:        "range-" + uuid.NewString(),
		Name:      name,
		Hands:     Weights{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = l.update(ctx, func(tree []Folder) ([]Folder, error) {
		f := findFolder(tree, folderID)
		if f == nil {
			return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, folderID)
		}
		f.Ranges = append(f.Ranges, r)
		return tree, nil
	})
	return r, err
}

// RangeUpdate carries the fields UpdateRange changes. Nil fields are kept.
type RangeUpdate struct {
	Name      *string  `json:"name,omitempty"`
	Hands     *Weights `json:"hands,omitempty"`
	Position  *string  `json:"position,omitempty"`
	Situation *string  `json:"situation,omitempty"`
}

// UpdateRange applies u to a range and recomputes its totals.
func (l *Library) UpdateRange(ctx context.Context, id string, u RangeUpdate) (Range, error) {
	var name string
	if u.Name != nil {
		var err error
		if name, err = cleanName(*u.Name); err != nil {
			return Range{}, err
		}
	}
	var hands Weights
	if u.Hands != nil {
		var err error
		if hands, err = Clean(*u.Hands); err != nil {
			return Range{}, err
		}
	}

	var out Range
	err := l.update(ctx, func(tree []Folder) ([]Folder, error) {
		r := findRange(tree, id)
		if r == nil {
			return nil, fmt.Errorf("%w: %s", ErrRangeNotFound, id)
		}
		if u.Name != nil {
			r.Name = name
		}
		if u.Hands != nil {
			r.Hands = hands
		}
		if u.Position != nil {
			r.Position = strings.TrimSpace(*u.Position)
		}
		if u.Situation != nil {
			r.Situation = strings.TrimSpace(*u.Situation)
		}
		r.Combinations = Combinations(r.Hands)
		r.TotalPercentage = Percentage(r.Hands)
		r.UpdatedAt = l.clock.Now().UTC()
		out = *r
		return tree, nil
	})
	return out, err
}

// DeleteRange removes a range from whichever folder holds it and reports
// whether it existed.
func (l *Library) DeleteRange(ctx context.Context, id string) (bool, error) {
	var found bool
	err := l.update(ctx, func(tree []Folder) ([]Folder, error) {
		found = removeRange(tree, id)
		return tree, nil
	})
	return found, err
}

// FindRange returns a range by id from any folder.
func (l *Library) FindRange(ctx context.Context, id string) (Range, error) {
	tree, err := l.load(ctx)
	if err != nil {
		return Range{}, err
	}
	r := findRange(tree, id)
	if r == nil {
		return Range{}, fmt.Errorf("%w: %s", ErrRangeNotFound, id)
	}
	return *r, nil
}

// ExportRange returns the portable form of a range.
func (l *Library) ExportRange(ctx context.Context, id string) (Export, error) {
	r, err := l.FindRange(ctx, id)
	if err != nil {
		return Export{}, err
	}
	return Export{
		Name:            r.Name,
		Hands:           r.Hands,
		TotalPercentage: r.TotalPercentage,
		Combinations:    r.Combinations,
	}, nil
}

// update runs fn on the stored tree under the lock and writes the result.
// Nothing is written when fn fails.
func (l *Library) update(ctx context.Context, fn func([]Folder) ([]Folder, error)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tree, err := l.load(ctx)
	if err != nil {
		return err
	}
	tree, err = fn(tree)
	if err != nil {
		return err
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	if err := l.store.Set(ctx, Key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", Key, err)
	}
	return nil
}

func (l *Library) load(ctx context.Context) ([]Folder, error) {
	raw, err := l.store.Get(ctx, Key)
	if errors.Is(err, storage.ErrNotFound) {
		return DefaultFolders(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", Key, err)
	}
	var tree []Folder
	if err := json.Unmarshal([]byte(raw), &tree); err != nil {
		l.logger.Warn("Ignoring unreadable library", "key", Key, "error", err)
		return DefaultFolders(), nil
	}
	return tree, nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}

func findFolder(tree []Folder, id string) *Folder {
	for i := range tree {
		if tree[i].ID == id {
			return &tree[i]
		}
		if f := findFolder(tree[i].Subfolders, id); f != nil {
			return f
		}
	}
	return nil
}

func findRange(tree []Folder, id string) *Range {
	for i := range tree {
		for j := range tree[i].Ranges {
			if tree[i].Ranges[j].ID == id {
				return &tree[i].Ranges[j]
			}
		}
		if r := findRange(tree[i].Subfolders, id); r != nil {
			return r
		}
	}
	return nil
}

func removeFolder(tree []Folder, id string) ([]Folder, bool) {
	for i := range tree {
		if tree[i].ID == id {
			return slices.Delete(tree, i, i+1), true
		}
		if sub, ok := removeFolder(tree[i].Subfolders, id); ok {
			tree[i].Subfolders = sub
			return tree, true
		}
	}
	return tree, false
}

func removeRange(tree []Folder, id string) bool {
	for i := range tree {
		if n := len(tree[i].Ranges); n > 0 {
			tree[i].Ranges = slices.DeleteFunc(tree[i].Ranges, func(r Range) bool { return r.ID == id })
			if len(tree[i].Ranges) != n {
				return true
			}
		}
		if removeRange(tree[i].Subfolders, id) {
			return true
		}
	}
	return false
}

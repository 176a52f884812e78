// Package storage provides the key/value stores ranges are persisted in.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

var (
	// ErrNotFound is returned by Get for a missing key.
	ErrNotFound = errors.New("key not found")

	// ErrListUnsupported is returned by stores that cannot enumerate keys.
	ErrListUnsupported = errors.New("store cannot list keys")
)

// Store is a string key/value store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key and reports whether it existed.
	Delete(ctx context.Context, key string) (bool, error)
	// List returns the keys starting with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Backend names a store implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendSQLite Backend = "sqlite"
	BackendRedis  Backend = "redis"
)

// Options configures Open.
type Options struct {
	Backend       Backend
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// DisableList wraps the store in Unlisted, for hosts whose ACL
	// forbids key scans. The repository then relies on its index alone.
	DisableList bool
}

// Select picks the host store when one is provided and the local fallback
// otherwise. The choice is made once and logged.
func Select(host, fallback Store, logger *log.Logger) Store {
	if host != nil {
		logger.Info("Using host store", "type", fmt.Sprintf("%T", host))
		return host
	}
	logger.Info("Using local store", "type", fmt.Sprintf("%T", fallback))
	return fallback
}

// Open builds the store described by opts. A redis backend is treated as
// the host store: when it cannot be reached Open falls back to SQLite at
// opts.Path, or to memory when no path is set.
func Open(ctx context.Context, opts Options, logger *log.Logger) (Store, error) {
	logger = logger.WithPrefix("storage")

	s, err := open(ctx, opts, logger)
	if err != nil || !opts.DisableList {
		return s, err
	}
	logger.Info("Key listing disabled")
	return Unlisted{Store: s}, nil
}

func open(ctx context.Context, opts Options, logger *log.Logger) (Store, error) {

	local := func() (Store, error) {
		if opts.Path == "" {
			return NewMemory(), nil
		}
		return OpenSQLite(ctx, opts.Path)
	}

	switch opts.Backend {
	case BackendMemory, "":
		return Select(nil, NewMemory(), logger), nil
	case BackendSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite backend needs a path")
		}
		fallback, err := OpenSQLite(ctx, opts.Path)
		if err != nil {
			return nil, err
		}
		return Select(nil, fallback, logger), nil
	case BackendRedis:
		host, err := OpenRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
		if err != nil {
			logger.Warn("Host store unavailable", "addr", opts.RedisAddr, "error", err)
			fallback, ferr := local()
			if ferr != nil {
				return nil, errors.Join(err, ferr)
			}
			return Select(nil, fallback, logger), nil
		}
		return Select(host, nil, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

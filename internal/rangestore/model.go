// Package rangestore persists cash-game ranges in a key/value store: one
// entry per range plus an index of every range key.
package rangestore

import (
	"errors"
	"time"

	"github.com/lox/rangebook/internal/cash"
	"github.com/lox/rangebook/internal/ranges"
)

var (
	// ErrNotInitialized is returned by every operation before Init succeeds.
	ErrNotInitialized = errors.New("range store not initialized")

	// ErrInvalidConfig wraps config normalisation and legality failures.
	ErrInvalidConfig = errors.New("invalid range config")

	// ErrInvalidHands wraps matrix validation failures.
	ErrInvalidHands = errors.New("invalid hands")

	// errUnreadable marks a stored range that exists but does not decode.
	errUnreadable = errors.New("unreadable range")
)

// CashRange is a saved range. Field names match the persisted JSON.
type CashRange struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Sequence        cash.Sequence  `json:"sequence"`
	Hands           ranges.Matrix  `json:"hands"`
	Positions       cash.Positions `json:"positions"`
	TotalPercentage float64        `json:"totalPercentage"`
	Combinations    float64        `json:"combinations"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// Config returns the identity of the range.
func (r CashRange) Config() cash.Config {
	return cash.Config{Sequence: r.Sequence, Positions: r.Positions}
}

// Key returns the storage key of the range.
func (r CashRange) Key() string {
	return cash.DeriveKey(r.Config())
}

// RangeIndex lists every saved range key.
type RangeIndex struct {
	Keys        []string  `json:"keys"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Listener is told about changes after they are written.
type Listener interface {
	OnRangeSaved(r CashRange)
	OnRangeDeleted(key string, cfg cash.Config)
}

// ReconcileReport describes what a reconciliation pass changed.
type ReconcileReport struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
	// Listed is false when the store cannot enumerate keys, in which case
	// orphaned entries could not be looked for.
	Listed bool `json:"listed"`
}

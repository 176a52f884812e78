package cash

import (
	"fmt"
	"slices"
	"strings"
)

// Well-known storage keys.
const (
	KeyPrefix = "cash-range"
	IndexKey  = "cash-range-index"
	LegacyKey = "poker-cash-ranges"
)

// DeriveKey returns the storage key of cfg. Roles are sorted by name before
// joining, so the key does not depend on the order roles were assigned.
func DeriveKey(cfg Config) string {
	seats := make([]Seat, 0, len(cfg.Positions))
	for _, s := range cfg.Positions {
		if s.Position != NoPosition {
			seats = append(seats, s)
		}
	}
	slices.SortFunc(seats, func(a, b Seat) int { return strings.Compare(string(a.Role), string(b.Role)) })

	parts := make([]string, len(seats))
	for i, s := range seats {
		parts[i] = string(s.Role) + ":" + string(s.Position)
	}
	return KeyPrefix + ":" + string(cfg.Sequence) + ":" + strings.Join(parts, "|")
}

// DeriveName returns a display name such as "3B CO-BTN", positions in
// assignment order.
func DeriveName(cfg Config) string {
	parts := make([]string, 0, len(cfg.Positions))
	for _, s := range cfg.Positions {
		if s.Position != NoPosition {
			parts = append(parts, string(s.Position))
		}
	}
	return cfg.Sequence.Abbrev() + " " + strings.Join(parts, "-")
}

// RangeKeyPrefix is the prefix shared by every range entity key.
func RangeKeyPrefix() string {
	return KeyPrefix + ":"
}

// ParseKey reverses DeriveKey. The result has roles in key (sorted) order.
func ParseKey(key string) (Config, error) {
	rest, ok := strings.CutPrefix(key, RangeKeyPrefix())
	if !ok {
		return Config{}, fmt.Errorf("key %q lacks the %s prefix", key, KeyPrefix)
	}
	seqPart, posPart, ok := strings.Cut(rest, ":")
	if !ok {
		return Config{}, fmt.Errorf("key %q has no position part", key)
	}
	seq, err := ParseSequence(seqPart)
	if err != nil {
		return Config{}, fmt.Errorf("key %q: %w", key, err)
	}

	cfg := Config{Sequence: seq}
	if posPart == "" {
		return cfg, nil
	}
	for pair := range strings.SplitSeq(posPart, "|") {
		role, pos, ok := strings.Cut(pair, ":")
		if !ok {
			return Config{}, fmt.Errorf("key %q: malformed seat %q", key, pair)
		}
		p, err := ParsePosition(pos)
		if err != nil {
			return Config{}, fmt.Errorf("key %q: %w", key, err)
		}
		cfg.Positions = cfg.Positions.With(Role(role), p)
	}
	return cfg, nil
}

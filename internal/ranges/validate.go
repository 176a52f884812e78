package ranges

import (
	"errors"
	"fmt"
	"slices"

	"github.com/lox/rangebook/internal/cash"
	"github.com/lox/rangebook/poker"
)

// ErrOverCapacity marks a hand whose action percentages sum above 100.
var ErrOverCapacity = errors.New("action percentages exceed 100")

// Validate checks m at a system boundary: every hand is one of the 169
// labels, every action belongs to seq, percentages are within 0..100 and
// no action appears twice for a hand. Totals above 100 are allowed here;
// see ValidateCapacity.
func Validate(m Matrix, seq cash.Sequence) error {
	var errs []error
	for _, hand := range sortedKeys(m) {
		if !hand.Valid() {
			errs = append(errs, fmt.Errorf("unknown hand %q", hand))
			continue
		}
		seen := make(map[cash.Action]bool, len(m[hand]))
		for _, aw := range m[hand] {
			switch {
			case !seq.Allows(aw.Action):
				errs = append(errs, fmt.Errorf("%s: action %q is not valid for %s", hand, aw.Action, seq))
			case seen[aw.Action]:
				errs = append(errs, fmt.Errorf("%s: action %q listed twice", hand, aw.Action))
			case aw.Percentage < 0 || aw.Percentage > 100:
				errs = append(errs, fmt.Errorf("%s %s: %w (got %d)", hand, aw.Action, ErrPercentageRange, aw.Percentage))
			}
			seen[aw.Action] = true
		}
	}
	return errors.Join(errs...)
}

// Overflowing returns the hands whose totals exceed 100, in grid order.
func Overflowing(m Matrix) []poker.HandLabel {
	var out []poker.HandLabel
	for _, hand := range m.Hands() {
		if TotalForHand(m, hand) > 100 {
			out = append(out, hand)
		}
	}
	return out
}

// ValidateCapacity is the opt-in strict check that no hand exceeds 100%.
func ValidateCapacity(m Matrix) error {
	var errs []error
	for _, hand := range Overflowing(m) {
		errs = append(errs, fmt.Errorf("%s totals %d%%: %w", hand, TotalForHand(m, hand), ErrOverCapacity))
	}
	return errors.Join(errs...)
}

// Clamp returns a copy of m in which every hand totals at most 100. The most
// aggressive actions keep their share; lower priority actions are trimmed
// and dropped once nothing is left for them.
func Clamp(m Matrix) Matrix {
	out := m.Clone()
	for hand, actions := range out {
		if TotalForHand(out, hand) <= 100 {
			continue
		}
		ordered := ByPriority(actions)
		left := 100
		kept := make([]ActionWeight, 0, len(ordered))
		for _, aw := range ordered {
			aw.Percentage = min(aw.Percentage, left)
			left -= aw.Percentage
			if aw.Percentage > 0 {
				kept = append(kept, aw)
			}
		}
		out[hand] = kept
	}
	return out
}

// ByPriority returns a copy of actions sorted most aggressive first. Ties
// keep their original order.
func ByPriority(actions []ActionWeight) []ActionWeight {
	out := slices.Clone(actions)
	slices.SortStableFunc(out, func(a, b ActionWeight) int {
		return cash.PriorityOf(b.Action) - cash.PriorityOf(a.Action)
	})
	return out
}

func sortedKeys(m Matrix) []poker.HandLabel {
	keys := make([]poker.HandLabel, 0, len(m))
	for hand := range m {
		keys = append(keys, hand)
	}
	slices.Sort(keys)
	return keys
}

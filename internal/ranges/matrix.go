// Package ranges holds the per-hand action matrix and the combinatorics
// computed from it.
package ranges

import (
	"errors"
	"fmt"
	"slices"

	"github.com/lox/rangebook/internal/cash"
	"github.com/lox/rangebook/poker"
)

// ActionWeight is the share of a hand assigned to one action.
type ActionWeight struct {
	Action     cash.Action `json:"action"`
	Percentage int         `json:"percentage"`
}

// Matrix maps hands to their action weights. Absent hands are 0%.
// Insertion order within a hand carries no meaning.
type Matrix map[poker.HandLabel][]ActionWeight

// ErrPercentageRange is returned for percentages outside 0..100.
var ErrPercentageRange = errors.New("percentage must be between 0 and 100")

// Clone returns a deep copy of m.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for hand, actions := range m {
		out[hand] = slices.Clone(actions)
	}
	return out
}

// Hands returns the hands that carry at least one action, in grid order.
func (m Matrix) Hands() []poker.HandLabel {
	out := make([]poker.HandLabel, 0, len(m))
	for hand, actions := range m {
		if len(actions) > 0 {
			out = append(out, hand)
		}
	}
	slices.SortFunc(out, func(a, b poker.HandLabel) int {
		ia, ib := a.Index(), b.Index()
		if ia != ib {
			return ia - ib
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	return out
}

// Percentage returns the weight of action for hand.
func (m Matrix) Percentage(hand poker.HandLabel, action cash.Action) int {
	for _, aw := range m[hand] {
		if aw.Action == action {
			return aw.Percentage
		}
	}
	return 0
}

// Equal reports whether two matrices assign the same weights, ignoring
// action order and empty hands.
func Equal(a, b Matrix) bool {
	if len(a.Hands()) != len(b.Hands()) {
		return false
	}
	for hand, actions := range a {
		if len(actions) != len(b[hand]) {
			return false
		}
		for _, aw := range actions {
			if b.Percentage(hand, aw.Action) != aw.Percentage {
				return false
			}
		}
	}
	return true
}

// SetAction returns a copy of m with hand's action set to pct. A pct of 0
// removes the action entry, and a hand left without actions is pruned.
// The input matrix is never modified.
func SetAction(m Matrix, hand poker.HandLabel, action cash.Action, pct int) (Matrix, error) {
	if pct < 0 || pct > 100 {
		return m, fmt.Errorf("%s %s: %w (got %d)", hand, action, ErrPercentageRange, pct)
	}
	if !hand.Valid() {
		return m, fmt.Errorf("unknown hand %q", hand)
	}

	out := make(Matrix, len(m)+1)
	for h, actions := range m {
		if h != hand {
			out[h] = actions
		}
	}

	current := m[hand]
	updated := make([]ActionWeight, 0, len(current)+1)
	found := false
	for _, aw := range current {
		if aw.Action == action {
			found = true
			if pct == 0 {
				continue
			}
			aw.Percentage = pct
		}
		updated = append(updated, aw)
	}
	if !found && pct > 0 {
		updated = append(updated, ActionWeight{Action: action, Percentage: pct})
	}

	if len(updated) > 0 {
		out[hand] = updated
	}
	return out, nil
}

// SetActionCapped is SetAction with pct clamped to the hand's headroom for
// action, the way the hand editor slider behaves.
func SetActionCapped(m Matrix, hand poker.HandLabel, action cash.Action, pct int) (Matrix, error) {
	return SetAction(m, hand, action, min(max(pct, 0), Headroom(m, hand, action)))
}

// TotalForHand sums the hand's action percentages. The sum is not capped.
func TotalForHand(m Matrix, hand poker.HandLabel) int {
	total := 0
	for _, aw := range m[hand] {
		total += aw.Percentage
	}
	return total
}

// Headroom returns how much action may take for hand: 100 minus every
// other action's percentage, never below zero.
func Headroom(m Matrix, hand poker.HandLabel, action cash.Action) int {
	others := 0
	for _, aw := range m[hand] {
		if aw.Action != action {
			others += aw.Percentage
		}
	}
	return max(0, 100-others)
}

// Paint sets action to pct on every hand in a range notation such as "TT+,AKs".
func Paint(m Matrix, notation string, action cash.Action, pct int) (Matrix, error) {
	hands, err := poker.ParseNotation(notation)
	if err != nil {
		return m, err
	}
	out := m
	for _, hand := range hands {
		if out, err = SetAction(out, hand, action, pct); err != nil {
			return m, err
		}
	}
	return out, nil
}

// Clear returns a copy of m with every weight for action removed.
func Clear(m Matrix, action cash.Action) Matrix {
	out := make(Matrix, len(m))
	for hand, actions := range m {
		kept := make([]ActionWeight, 0, len(actions))
		for _, aw := range actions {
			if aw.Action != action {
				kept = append(kept, aw)
			}
		}
		if len(kept) > 0 {
			out[hand] = kept
		}
	}
	return out
}

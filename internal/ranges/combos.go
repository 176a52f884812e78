package ranges

import (
	"slices"

	"github.com/lox/rangebook/poker"
)

// Combo is one concrete two-card holding in a range and the action
// weights inherited from its hand.
type Combo struct {
	Hand    poker.HandLabel `json:"hand"`
	Cards   string          `json:"cards"`
	Actions []ActionWeight  `json:"actions"`
}

// ExpandCombos lists every concrete holding m covers, in grid order.
// Holdings that use a card from dead are removed, as when the hero's cards
// or the board are known.
func ExpandCombos(m Matrix, dead poker.Hand) []Combo {
	var out []Combo
	for _, hand := range m.Hands() {
		if !hand.Valid() || TotalForHand(m, hand) == 0 {
			continue
		}
		for _, combo := range hand.Combos() {
			if blocked(combo, dead) {
				continue
			}
			out = append(out, Combo{
				Hand:    hand,
				Cards:   combo.String(),
				Actions: slices.Clone(m[hand]),
			})
		}
	}
	return out
}

// LiveCombinations is WeightedCombinations counting only holdings that
// avoid dead.
func LiveCombinations(m Matrix, dead poker.Hand) float64 {
	var sum float64
	for hand := range m {
		if !hand.Valid() {
			continue
		}
		live := 0
		for _, combo := range hand.Combos() {
			if !blocked(combo, dead) {
				live++
			}
		}
		sum += float64(TotalForHand(m, hand)*live) / 100
	}
	return round1(sum)
}

func blocked(combo, dead poker.Hand) bool {
	for _, c := range combo.Cards() {
		if dead.HasCard(c) {
			return true
		}
	}
	return false
}

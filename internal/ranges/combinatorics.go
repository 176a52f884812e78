package ranges

import (
	"math"
	"slices"

	"github.com/lox/rangebook/internal/cash"
	"github.com/lox/rangebook/poker"
)

// WeightedCombinations returns the number of card combinations m covers,
// weighting each hand by its total action percentage. Totals above 100 are
// counted as is. The result is rounded to one decimal place.
func WeightedCombinations(m Matrix) float64 {
	return round1(weighted(m))
}

// Percentage returns the share of all 1326 combinations that m covers,
// rounded to one decimal place. It is derived from the already rounded
// WeightedCombinations so the two figures shown together always agree.
func Percentage(m Matrix) float64 {
	return shareOf(WeightedCombinations(m))
}

func shareOf(combos float64) float64 {
	return round1(combos / poker.TotalCombinations * 100)
}

func weighted(m Matrix) float64 {
	var sum float64
	for hand := range m {
		if !hand.Valid() {
			continue
		}
		sum += float64(TotalForHand(m, hand)*hand.Combinations()) / 100
	}
	return sum
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// ActionStat is the coverage of a single action.
type ActionStat struct {
	Action       cash.Action `json:"action"`
	Priority     int         `json:"priority"`
	Color        string      `json:"color"`
	Hands        int         `json:"hands"`
	Combinations float64     `json:"combinations"`
	Percentage   float64     `json:"percentage"`
}

// TierStat is the coverage of one strength tier.
type TierStat struct {
	Tier         poker.Tier `json:"tier"`
	Hands        int        `json:"hands"`
	Combinations float64    `json:"combinations"`
}

// Stats summarises a matrix for the statistics panel.
type Stats struct {
	Hands        int          `json:"hands"`
	Combinations float64      `json:"combinations"`
	Percentage   float64      `json:"percentage"`
	Pairs        float64      `json:"pairs"`
	Suited       float64      `json:"suited"`
	Offsuit      float64      `json:"offsuit"`
	Tiers        []TierStat   `json:"tiers"`
	Actions      []ActionStat `json:"actions"`
	Overflowing  int          `json:"overflowing"`
}

// ComputeStats totals m by category, tier and action. Every action in
// actions gets an entry even when unused, and actions found in m but not
// listed are appended. Action entries run from least to most aggressive.
func ComputeStats(m Matrix, actions []cash.Action) Stats {
	var s Stats

	perAction := make(map[cash.Action]*ActionStat, len(actions))
	order := make([]cash.Action, 0, len(actions))
	track := func(a cash.Action) *ActionStat {
		if st, ok := perAction[a]; ok {
			return st
		}
		color := cash.ColorOf(a)
		st := &ActionStat{Action: a, Priority: cash.PriorityOf(a), Color: color.Hex}
		perAction[a] = st
		order = append(order, a)
		return st
	}
	for _, a := range actions {
		track(a)
	}

	tiers := make(map[poker.Tier]*TierStat, len(poker.Tiers))
	for _, t := range poker.Tiers {
		tiers[t] = &TierStat{Tier: t}
	}

	for _, hand := range m.Hands() {
		if !hand.Valid() {
			continue
		}
		total := TotalForHand(m, hand)
		if total == 0 {
			continue
		}
		if total > 100 {
			s.Overflowing++
		}
		combos := float64(total*hand.Combinations()) / 100

		s.Hands++
		switch hand.Category() {
		case poker.Pair:
			s.Pairs += combos
		case poker.Suited:
			s.Suited += combos
		default:
			s.Offsuit += combos
		}
		if ts, ok := tiers[poker.TierOf(hand)]; ok {
			ts.Hands++
			ts.Combinations += combos
		}

		for _, aw := range m[hand] {
			if aw.Percentage <= 0 {
				continue
			}
			st := track(aw.Action)
			st.Hands++
			st.Combinations += float64(aw.Percentage*hand.Combinations()) / 100
		}
	}

	s.Combinations = WeightedCombinations(m)
	s.Percentage = Percentage(m)
	s.Pairs, s.Suited, s.Offsuit = round1(s.Pairs), round1(s.Suited), round1(s.Offsuit)

	for _, t := range poker.Tiers {
		ts := *tiers[t]
		ts.Combinations = round1(ts.Combinations)
		s.Tiers = append(s.Tiers, ts)
	}

	for _, a := range order {
		st := *perAction[a]
		st.Combinations = round1(st.Combinations)
		st.Percentage = shareOf(st.Combinations)
		s.Actions = append(s.Actions, st)
	}
	slices.SortStableFunc(s.Actions, func(a, b ActionStat) int {
		return a.Priority - b.Priority
	})

	return s
}

package poker

// Tier is a coarse strength bucket for a starting hand.
type Tier string

const (
	TierPremium Tier = "Premium"
	TierStrong  Tier = "Strong"
	TierMedium  Tier = "Medium"
	TierWeak    Tier = "Weak"
	TierTrash   Tier = "Trash"
	TierUnknown Tier = "Unknown"
)

// Tiers lists every tier from strongest to weakest.
var Tiers = []Tier{TierPremium, TierStrong, TierMedium, TierWeak, TierTrash}

// TierOf provides a simple preflop categorization.
// Premium (JJ+, AK), Strong (TT, AQ/AJ), Medium (77-99, suited broadway),
// Weak (small pairs, suited connectors), Trash (everything else).
func TierOf(h HandLabel) Tier {
	if !h.Valid() {
		return TierUnknown
	}

	high, low := h.Ranks()
	big, small := rankToValue(high), rankToValue(low)
	isPair := big == small
	suited := h.Category() == Suited

	switch {
	case isPair && small >= 11, small == 13 && big == 14:
		return TierPremium
	case isPair && small == 10, big == 14 && (small == 12 || small == 11):
		return TierStrong
	case isPair && small >= 7 && small <= 9, suited && small >= 10 && big >= 10:
		return TierMedium
	case isPair && small <= 6, suited && big-small <= 2:
		return TierWeak
	default:
		return TierTrash
	}
}

// rankToValue converts the 0-12 rank system to 2-14.
func rankToValue(rank uint8) int {
	return int(rank) + 2
}

package poker

import (
	"fmt"
	"strings"
)

// HandLabel is one of the 169 canonical starting-hand notations, e.g. "AKs",
// "77" or "T9o". The high rank always comes first.
type HandLabel string

// Category classifies a starting hand by how its two cards relate.
type Category uint8

const (
	Pair Category = iota
	Suited
	Offsuit
)

func (c Category) String() string {
	switch c {
	case Pair:
		return "pair"
	case Suited:
		return "suited"
	case Offsuit:
		return "offsuit"
	default:
		return "unknown"
	}
}

// TotalCombinations is the number of distinct two-card dealings from a 52-card deck.
const TotalCombinations = 1326

// Combinations per category.
const (
	PairCombinations    = 6
	SuitedCombinations  = 4
	OffsuitCombinations = 12
)

var (
	grid       [13][13]HandLabel
	labels     []HandLabel
	labelIndex map[HandLabel]int
)

func init() {
	labels = make([]HandLabel, 0, 169)
	labelIndex = make(map[HandLabel]int, 169)

	// Rows and columns run from Ace down to Two.
	for row := range 13 {
		for col := range 13 {
			rowRank := Ace - uint8(row)
			colRank := Ace - uint8(col)

			var label HandLabel
			switch {
			case row == col:
				label = HandLabel([]byte{rankChars[rowRank], rankChars[rowRank]})
			case col > row:
				label = HandLabel([]byte{rankChars[rowRank], rankChars[colRank], 's'})
			default:
				label = HandLabel([]byte{rankChars[colRank], rankChars[rowRank], 'o'})
			}

			grid[row][col] = label
			labelIndex[label] = len(labels)
			labels = append(labels, label)
		}
	}
}

// Grid returns the 13x13 display layout: pairs on the diagonal, suited hands
// above it and offsuit hands below it.
func Grid() [13][13]HandLabel {
	return grid
}

// Labels returns all 169 labels in grid row-major order.
func Labels() []HandLabel {
	out := make([]HandLabel, len(labels))
	copy(out, labels)
	return out
}

// ParseHandLabel validates and normalises a starting-hand notation.
// Rank case and order are normalised ("kas" becomes "AKs").
func ParseHandLabel(s string) (HandLabel, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || len(s) > 3 {
		return "", fmt.Errorf("invalid hand label %q: want 2 or 3 characters", s)
	}

	r1, ok1 := parseRank(s[0])
	r2, ok2 := parseRank(s[1])
	if !ok1 || !ok2 {
		return "", fmt.Errorf("invalid rank in hand label %q", s)
	}
	if r1 < r2 {
		r1, r2 = r2, r1
	}

	if r1 == r2 {
		if len(s) == 3 {
			return "", fmt.Errorf("pocket pair %q cannot have a suited/offsuit modifier", s)
		}
		return HandLabel([]byte{rankChars[r1], rankChars[r2]}), nil
	}

	if len(s) == 2 {
		return "", fmt.Errorf("hand label %q needs an s or o modifier", s)
	}

	switch s[2] {
	case 's', 'S':
		return HandLabel([]byte{rankChars[r1], rankChars[r2], 's'}), nil
	case 'o', 'O':
		return HandLabel([]byte{rankChars[r1], rankChars[r2], 'o'}), nil
	default:
		return "", fmt.Errorf("invalid modifier %q in hand label %q", s[2], s)
	}
}

// Valid reports whether h is one of the 169 canonical labels.
func (h HandLabel) Valid() bool {
	_, ok := labelIndex[h]
	return ok
}

// Index returns the position of h in Labels(), or -1.
func (h HandLabel) Index() int {
	if i, ok := labelIndex[h]; ok {
		return i
	}
	return -1
}

// Ranks returns the high and low ranks (0-12).
func (h HandLabel) Ranks() (high, low uint8) {
	if len(h) < 2 {
		return 255, 255
	}
	high, _ = parseRank(h[0])
	low, _ = parseRank(h[1])
	return high, low
}

// Category derives pair/suited/offsuit from the notation.
func (h HandLabel) Category() Category {
	if len(h) == 2 && h[0] == h[1] {
		return Pair
	}
	if len(h) == 3 && h[2] == 's' {
		return Suited
	}
	return Offsuit
}

// Combinations returns the raw number of card combinations: 6 for a pair,
// 4 for suited and 12 for offsuit.
func (h HandLabel) Combinations() int {
	switch h.Category() {
	case Pair:
		return PairCombinations
	case Suited:
		return SuitedCombinations
	default:
		return OffsuitCombinations
	}
}

// Combos expands the label into its concrete two-card hands.
func (h HandLabel) Combos() []Hand {
	if !h.Valid() {
		return nil
	}
	high, low := h.Ranks()
	combos := make([]Hand, 0, h.Combinations())

	switch h.Category() {
	case Pair:
		for suit1 := range uint8(4) {
			for suit2 := suit1 + 1; suit2 < 4; suit2++ {
				combos = append(combos, NewHand(NewCard(high, suit1), NewCard(low, suit2)))
			}
		}
	case Suited:
		for suit := range uint8(4) {
			combos = append(combos, NewHand(NewCard(high, suit), NewCard(low, suit)))
		}
	default:
		for suit1 := range uint8(4) {
			for suit2 := range uint8(4) {
				if suit1 != suit2 {
					combos = append(combos, NewHand(NewCard(high, suit1), NewCard(low, suit2)))
				}
			}
		}
	}

	return combos
}

// GridPosition returns the row and column of h in Grid(), or (-1, -1).
func (h HandLabel) GridPosition() (row, col int) {
	i := h.Index()
	if i < 0 {
		return -1, -1
	}
	return i / 13, i % 13
}

// LabelFor returns the label two hole cards belong to.
func LabelFor(c1, c2 Card) HandLabel {
	r1, r2 := c1.Rank(), c2.Rank()
	if r1 > 12 || r2 > 12 {
		return ""
	}
	if r1 < r2 {
		r1, r2 = r2, r1
	}
	switch {
	case r1 == r2:
		return HandLabel([]byte{rankChars[r1], rankChars[r2]})
	case c1.Suit() == c2.Suit():
		return HandLabel([]byte{rankChars[r1], rankChars[r2], 's'})
	default:
		return HandLabel([]byte{rankChars[r1], rankChars[r2], 'o'})
	}
}

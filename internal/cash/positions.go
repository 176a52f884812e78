package cash

import (
	"fmt"
	"strings"
)

// Position is a seat at a six-handed cash table.
type Position string

const (
	EP  Position = "EP"
	MP  Position = "MP"
	CO  Position = "CO"
	BTN Position = "BTN"
	SB  Position = "SB"
	BB  Position = "BB"

	// NoPosition marks an unassigned optional role.
	NoPosition Position = ""
)

// TableOrder is the preflop acting order.
var TableOrder = []Position{EP, MP, CO, BTN, SB, BB}

// ParsePosition validates a position name (case-insensitive).
func ParsePosition(s string) (Position, error) {
	p := Position(strings.ToUpper(strings.TrimSpace(s)))
	if p.Index() < 0 {
		return NoPosition, fmt.Errorf("unknown position %q", s)
	}
	return p, nil
}

// Index returns the table-order index of p, or -1.
func (p Position) Index() int {
	for i, q := range TableOrder {
		if q == p {
			return i
		}
	}
	return -1
}

// Valid reports whether p is a real seat.
func (p Position) Valid() bool {
	return p.Index() >= 0
}

func (p Position) String() string {
	if p == NoPosition {
		return "none"
	}
	return string(p)
}

// PositionsAfter returns every position strictly later than p in table order.
// It is empty for BB and for NoPosition.
func PositionsAfter(p Position) []Position {
	i := p.Index()
	if i < 0 {
		return []Position{}
	}
	out := make([]Position, len(TableOrder)-i-1)
	copy(out, TableOrder[i+1:])
	return out
}

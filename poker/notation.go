package poker

import (
	"fmt"
	"slices"
	"strings"
)

// ParseNotation expands standard range shorthand into hand labels.
// Examples: "AA,KK", "AKs,AKo", "AK", "TT+", "ATs+", "A5s-A2s", "22-66".
// Two concrete cards such as "AhKh" select the label they belong to.
// Duplicates are removed and the result is returned in grid order.
func ParseNotation(notation string) ([]HandLabel, error) {
	seen := make(map[HandLabel]bool)

	for part := range strings.SplitSeq(notation, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		hands, err := parseNotationPart(part)
		if err != nil {
			return nil, fmt.Errorf("invalid range part %q: %w", part, err)
		}
		for _, h := range hands {
			seen[h] = true
		}
	}

	out := make([]HandLabel, 0, len(seen))
	for h := range seen {
		out = append(out, h)
	}
	slices.SortFunc(out, func(a, b HandLabel) int { return a.Index() - b.Index() })
	return out, nil
}

func parseNotationPart(part string) ([]HandLabel, error) {
	if strings.HasSuffix(part, "+") {
		return parsePlus(strings.TrimSuffix(part, "+"))
	}
	if strings.Contains(part, "-") {
		return parseDash(part)
	}
	return parseSingle(part)
}

// notationBase holds the ranks and modifiers of one notation token.
type notationBase struct {
	high, low uint8
	suited    bool
	offsuit   bool
}

func parseBase(s string) (notationBase, error) {
	if len(s) < 2 || len(s) > 3 {
		return notationBase{}, fmt.Errorf("invalid notation length: %s", s)
	}

	r1, ok1 := parseRank(s[0])
	r2, ok2 := parseRank(s[1])
	if !ok1 || !ok2 {
		return notationBase{}, fmt.Errorf("invalid rank in: %s", s)
	}
	if r1 < r2 {
		r1, r2 = r2, r1
	}
	b := notationBase{high: r1, low: r2}

	if r1 == r2 {
		if len(s) == 3 {
			return notationBase{}, fmt.Errorf("pocket pairs cannot have suited/offsuit modifier: %s", s)
		}
		return b, nil
	}

	if len(s) == 2 {
		b.suited, b.offsuit = true, true
		return b, nil
	}

	switch s[2] {
	case 's', 'S':
		b.suited = true
	case 'o', 'O':
		b.offsuit = true
	default:
		return notationBase{}, fmt.Errorf("invalid modifier: %c", s[2])
	}
	return b, nil
}

func (b notationBase) labels(low uint8) []HandLabel {
	if b.high == low {
		return []HandLabel{HandLabel([]byte{rankChars[low], rankChars[low]})}
	}
	var out []HandLabel
	if b.suited {
		out = append(out, HandLabel([]byte{rankChars[b.high], rankChars[low], 's'}))
	}
	if b.offsuit {
		out = append(out, HandLabel([]byte{rankChars[b.high], rankChars[low], 'o'}))
	}
	return out
}

func parseSingle(s string) ([]HandLabel, error) {
	if len(s) == 4 {
		return parseHoleCards(s)
	}
	b, err := parseBase(s)
	if err != nil {
		return nil, err
	}
	return b.labels(b.low), nil
}

func parseHoleCards(s string) ([]HandLabel, error) {
	h, err := ParseCards(s)
	if err != nil {
		return nil, err
	}
	cards := h.Cards()
	return []HandLabel{LabelFor(cards[0], cards[1])}, nil
}

// parsePlus handles "TT+" (TT and every higher pair) and "KTs+" (the kicker
// climbs up to one below the high card).
func parsePlus(s string) ([]HandLabel, error) {
	b, err := parseBase(s)
	if err != nil {
		return nil, err
	}

	var out []HandLabel
	if b.high == b.low {
		for rank := b.low; rank <= Ace; rank++ {
			out = append(out, HandLabel([]byte{rankChars[rank], rankChars[rank]}))
		}
		return out, nil
	}

	for rank := b.low; rank < b.high; rank++ {
		out = append(out, b.labels(rank)...)
	}
	return out, nil
}

// parseDash handles "22-66" and "A5s-A2s".
func parseDash(s string) ([]HandLabel, error) {
	start, end, ok := strings.Cut(s, "-")
	if !ok || strings.Contains(end, "-") {
		return nil, fmt.Errorf("invalid dash range format")
	}

	from, err := parseBase(strings.TrimSpace(start))
	if err != nil {
		return nil, err
	}
	to, err := parseBase(strings.TrimSpace(end))
	if err != nil {
		return nil, err
	}

	lower, upper := min(from.low, to.low), max(from.low, to.low)

	var out []HandLabel
	switch {
	case from.high == from.low && to.high == to.low:
		for rank := lower; rank <= upper; rank++ {
			out = append(out, HandLabel([]byte{rankChars[rank], rankChars[rank]}))
		}
	case from.high == to.high && from.suited == to.suited && from.offsuit == to.offsuit:
		for rank := lower; rank <= upper; rank++ {
			out = append(out, from.labels(rank)...)
		}
	default:
		return nil, fmt.Errorf("unsupported range format: %s", s)
	}
	return out, nil
}

package cash

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Seat assigns a table position to a role.
type Seat struct {
	Role     Role
	Position Position
}

// Positions is an ordered role assignment. The order is insertion order and
// only matters for display names; identity ignores it.
type Positions []Seat

// Get returns the position assigned to role.
func (p Positions) Get(role Role) (Position, bool) {
	for _, s := range p {
		if s.Role == role {
			return s.Position, true
		}
	}
	return NoPosition, false
}

// With returns a copy of p with role set to pos. An existing role keeps its
// place; a new role is appended. Setting NoPosition removes the role.
func (p Positions) With(role Role, pos Position) Positions {
	if pos == NoPosition {
		return p.Without(role)
	}
	out := make(Positions, 0, len(p)+1)
	found := false
	for _, s := range p {
		if s.Role == role {
			s.Position = pos
			found = true
		}
		out = append(out, s)
	}
	if !found {
		out = append(out, Seat{Role: role, Position: pos})
	}
	return out
}

// Without returns a copy of p with role removed.
func (p Positions) Without(role Role) Positions {
	out := make(Positions, 0, len(p))
	for _, s := range p {
		if s.Role != role {
			out = append(out, s)
		}
	}
	return out
}

// Map returns the assignment as an unordered map.
func (p Positions) Map() map[Role]Position {
	m := make(map[Role]Position, len(p))
	for _, s := range p {
		m[s.Role] = s.Position
	}
	return m
}

// MarshalJSON encodes the assignment as an object in insertion order.
func (p Positions) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(string(s.Role))
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(string(s.Position))
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keeping key order. Null values are
// dropped so legacy documents with unset optional roles load cleanly.
func (p *Positions) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("positions: expected object, got %v", tok)
	}

	var out Positions
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("positions: expected string key, got %v", keyTok)
		}

		var value *string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("positions: role %q: %w", key, err)
		}
		if value == nil {
			continue
		}
		out = out.With(Role(key), Position(*value))
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = out
	return nil
}

// Config identifies a range: a sequence and the positions of its roles.
type Config struct {
	Sequence  Sequence  `json:"sequence"`
	Positions Positions `json:"positions"`
}

// NewConfig builds a config from role/position pairs in order.
func NewConfig(seq Sequence, seats ...Seat) Config {
	var p Positions
	for _, s := range seats {
		p = p.With(s.Role, s.Position)
	}
	return Config{Sequence: seq, Positions: p}
}

// ValidationError describes a position assignment that breaks the legality rules.
type ValidationError struct {
	Sequence Sequence
	Role     Role
	Position Position
	Reason   string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Role == "":
		return fmt.Sprintf("%s: %s", e.Sequence, e.Reason)
	case e.Position == NoPosition:
		return fmt.Sprintf("%s: role %s: %s", e.Sequence, e.Role, e.Reason)
	default:
		return fmt.Sprintf("%s: role %s at %s: %s", e.Sequence, e.Role, e.Position, e.Reason)
	}
}

// Normalize maps legacy role aliases onto the sequence's role names,
// upper-cases positions and drops unassigned seats. It does not check
// legality; call Validate for that.
func Normalize(cfg Config) (Config, error) {
	seq, err := ParseSequence(string(cfg.Sequence))
	if err != nil {
		return Config{}, err
	}

	out := Config{Sequence: seq}
	for _, s := range cfg.Positions {
		role := seq.ResolveRole(string(s.Role))
		if strings.TrimSpace(string(s.Position)) == "" {
			continue
		}
		pos, err := ParsePosition(string(s.Position))
		if err != nil {
			return Config{}, &ValidationError{Sequence: seq, Role: role, Reason: err.Error()}
		}
		if _, dup := out.Positions.Get(role); dup {
			return Config{}, &ValidationError{Sequence: seq, Role: role, Reason: "assigned more than once"}
		}
		out.Positions = out.Positions.With(role, pos)
	}
	return out, nil
}

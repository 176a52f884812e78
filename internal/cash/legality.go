package cash

import (
	"fmt"
	"slices"
)

// openers can start the action; BB never opens in this model.
var openers = []Position{EP, MP, CO, BTN, SB}

func (r sequenceRule) stepIndex(role Role) int {
	for i, step := range r.chain {
		if step.role == role {
			return i
		}
	}
	return -1
}

// upstream restricts assigned to the roles before step k.
func (r sequenceRule) upstream(k int, assigned Positions) Positions {
	var out Positions
	for _, step := range r.chain[:k] {
		if pos, ok := assigned.Get(step.role); ok {
			out = out.With(step.role, pos)
		}
	}
	return out
}

// candidates applies the table-order rule for step k without looking downstream.
func (r sequenceRule) candidates(k int, assigned Positions) []Position {
	step := r.chain[k]

	var base []Position
	if len(step.after) == 0 {
		base = openers
	} else {
		bound := NoPosition
		for _, role := range step.after {
			if pos, ok := assigned.Get(role); ok && pos.Index() > bound.Index() {
				bound = pos
			}
		}
		base = PositionsAfter(bound)
	}

	taken := assigned.Map()
	out := make([]Position, 0, len(base))
	for _, pos := range base {
		used := false
		for role, p := range taken {
			if role != step.role && p == pos {
				used = true
				break
			}
		}
		if !used {
			out = append(out, pos)
		}
	}
	return out
}

// completable reports whether the chain from step k onwards can still be
// filled given assigned.
func (r sequenceRule) completable(k int, assigned Positions) bool {
	if k >= len(r.chain) {
		return true
	}
	step := r.chain[k]
	if step.optional {
		return r.completable(k+1, assigned.Without(step.role))
	}
	for _, pos := range r.candidates(k, assigned) {
		if r.completable(k+1, assigned.With(step.role, pos)) {
			return true
		}
	}
	return false
}

// options returns the legal positions for step k given the upstream roles.
func (r sequenceRule) options(k int, assigned Positions) []Position {
	up := r.upstream(k, assigned)
	var out []Position
	for _, pos := range r.candidates(k, up) {
		if r.completable(k+1, up.With(r.chain[k].role, pos)) {
			out = append(out, pos)
		}
	}
	return out
}

// Options returns the legal positions for role given the roles assigned
// upstream of it. Downstream assignments are ignored. Positions that would
// leave a later mandatory role without a seat are excluded. Optional roles
// may additionally be left unassigned.
func Options(seq Sequence, role Role, assigned Positions) ([]Position, error) {
	rule, ok := sequenceRules[seq]
	if !ok {
		return nil, fmt.Errorf("unknown sequence %q", seq)
	}
	k := rule.stepIndex(role)
	if k < 0 {
		return nil, &ValidationError{Sequence: seq, Role: role, Reason: "role not part of sequence"}
	}
	return rule.options(k, assigned), nil
}

// Optional reports whether role may be left unassigned in seq.
func Optional(seq Sequence, role Role) bool {
	rule, ok := sequenceRules[seq]
	if !ok {
		return false
	}
	k := rule.stepIndex(role)
	return k >= 0 && rule.chain[k].optional
}

// Validate checks the assignment against the sequence's role chain.
func (c Config) Validate() error {
	rule, ok := sequenceRules[c.Sequence]
	if !ok {
		return &ValidationError{Sequence: c.Sequence, Reason: "unknown sequence"}
	}

	seen := make(map[Role]bool, len(c.Positions))
	for _, s := range c.Positions {
		if seen[s.Role] {
			return &ValidationError{Sequence: c.Sequence, Role: s.Role, Reason: "assigned more than once"}
		}
		seen[s.Role] = true
		if rule.stepIndex(s.Role) < 0 {
			return &ValidationError{Sequence: c.Sequence, Role: s.Role, Reason: "role not part of sequence"}
		}
		if !s.Position.Valid() {
			return &ValidationError{Sequence: c.Sequence, Role: s.Role, Position: s.Position, Reason: "unknown position"}
		}
	}

	for k, step := range rule.chain {
		pos, assigned := c.Positions.Get(step.role)
		if !assigned {
			if step.optional {
				continue
			}
			return &ValidationError{Sequence: c.Sequence, Role: step.role, Reason: "missing"}
		}
		if !slices.Contains(rule.options(k, c.Positions), pos) {
			return &ValidationError{Sequence: c.Sequence, Role: step.role, Position: pos, Reason: "not a legal choice after the earlier roles"}
		}
	}
	return nil
}

// SetRole assigns pos to role and then walks the downstream roles: any
// mandatory role whose choice became illegal (or is missing) is reset to its
// first legal option, and any optional role that became illegal is cleared.
func SetRole(c Config, role Role, pos Position) (Config, error) {
	rule, ok := sequenceRules[c.Sequence]
	if !ok {
		return c, &ValidationError{Sequence: c.Sequence, Reason: "unknown sequence"}
	}
	k := rule.stepIndex(role)
	if k < 0 {
		return c, &ValidationError{Sequence: c.Sequence, Role: role, Reason: "role not part of sequence"}
	}

	if pos == NoPosition {
		if !rule.chain[k].optional {
			return c, &ValidationError{Sequence: c.Sequence, Role: role, Reason: "role is required"}
		}
	} else if !slices.Contains(rule.options(k, c.Positions), pos) {
		return c, &ValidationError{Sequence: c.Sequence, Role: role, Position: pos, Reason: "not a legal choice after the earlier roles"}
	}

	out := Config{Sequence: c.Sequence, Positions: c.Positions.With(role, pos)}
	for j := k + 1; j < len(rule.chain); j++ {
		step := rule.chain[j]
		opts := rule.options(j, out.Positions)
		cur, assigned := out.Positions.Get(step.role)

		switch {
		case assigned && slices.Contains(opts, cur):
		case step.optional:
			out.Positions = out.Positions.Without(step.role)
		case len(opts) > 0:
			out.Positions = out.Positions.With(step.role, opts[0])
		default:
			out.Positions = out.Positions.Without(step.role)
		}
	}
	return out, nil
}

// DefaultConfig fills every mandatory role with its first legal option and
// leaves optional roles unassigned.
func DefaultConfig(seq Sequence) (Config, error) {
	rule, ok := sequenceRules[seq]
	if !ok {
		return Config{}, fmt.Errorf("unknown sequence %q", seq)
	}
	cfg := Config{Sequence: seq}
	for k, step := range rule.chain {
		if step.optional {
			continue
		}
		opts := rule.options(k, cfg.Positions)
		if len(opts) == 0 {
			return Config{}, &ValidationError{Sequence: seq, Role: step.role, Reason: "no legal position"}
		}
		cfg.Positions = cfg.Positions.With(step.role, opts[0])
	}
	return cfg, nil
}

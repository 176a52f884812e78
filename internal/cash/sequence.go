package cash

import (
	"fmt"
	"strings"
)

// Sequence is a preflop betting template.
type Sequence string

const (
	OpenRaise     Sequence = "OPEN_RAISE"
	RaiseOverLimp Sequence = "RAISE_OVER_LIMP"
	ThreeBet      Sequence = "3BET"
	Squeeze       Sequence = "SQUEEZE"
	Cold4Bet      Sequence = "COLD_4BET"
)

// Sequences lists every sequence in menu order.
var Sequences = []Sequence{OpenRaise, RaiseOverLimp, ThreeBet, Squeeze, Cold4Bet}

// ParseSequence validates a sequence name. THREE_BET is accepted for 3BET.
func ParseSequence(s string) (Sequence, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "THREE_BET" {
		return ThreeBet, nil
	}
	for _, seq := range Sequences {
		if string(seq) == v {
			return seq, nil
		}
	}
	return "", fmt.Errorf("unknown sequence %q", s)
}

// Valid reports whether s is a known sequence.
func (s Sequence) Valid() bool {
	_, ok := sequenceRules[s]
	return ok
}

// Abbrev is the short label used in range names.
func (s Sequence) Abbrev() string {
	if r, ok := sequenceRules[s]; ok {
		return r.abbrev
	}
	return string(s)
}

// Title is a human readable sequence name.
func (s Sequence) Title() string {
	if r, ok := sequenceRules[s]; ok {
		return r.title
	}
	return string(s)
}

// Actions returns the closed action set for s, most aggressive first.
func (s Sequence) Actions() []Action {
	r, ok := sequenceRules[s]
	if !ok {
		return nil
	}
	out := make([]Action, len(r.actions))
	copy(out, r.actions)
	return out
}

// Allows reports whether action belongs to the action set of s.
func (s Sequence) Allows(action Action) bool {
	r, ok := sequenceRules[s]
	if !ok {
		return false
	}
	for _, a := range r.actions {
		if a == action {
			return true
		}
	}
	return false
}

// Roles returns the role chain of s in acting order.
func (s Sequence) Roles() []Role {
	r, ok := sequenceRules[s]
	if !ok {
		return nil
	}
	out := make([]Role, len(r.chain))
	for i, step := range r.chain {
		out[i] = step.role
	}
	return out
}

// RequiredRoles returns the roles that must be assigned for s.
func (s Sequence) RequiredRoles() []Role {
	r, ok := sequenceRules[s]
	if !ok {
		return nil
	}
	var out []Role
	for _, step := range r.chain {
		if !step.optional {
			out = append(out, step.role)
		}
	}
	return out
}

// Role names a participant of a betting sequence.
type Role string

const (
	Hero        Role = "hero"
	Opponent    Role = "opponent"
	Raiser      Role = "raiser"
	Caller      Role = "caller"
	Opener      Role = "opener"
	ThreeBettor Role = "threeBettor"
	Limper      Role = "limper"
	Limper2     Role = "limper2"
)

// roleStep is one link of a sequence's role chain.
type roleStep struct {
	role     Role
	optional bool
	// after lists the upstream roles whose latest assigned seat bounds this
	// role's choices. Empty means the role opens the action.
	after []Role
}

type sequenceRule struct {
	abbrev  string
	title   string
	actions []Action
	chain   []roleStep
	// aliases maps legacy role names onto chain roles.
	aliases map[string]Role
}

var sequenceRules = map[Sequence]sequenceRule{
	OpenRaise: {
		abbrev:  "OR",
		title:   "Open Raise",
		actions: []Action{OR4BetAllIn, OR4BetFold, ORCall3Bet, ORFold},
		chain: []roleStep{
			{role: Hero},
		},
	},
	RaiseOverLimp: {
		abbrev:  "ROL",
		title:   "Raise Over Limp",
		actions: []Action{ROL4BetAllIn, ROL4BetFold, ROLCall3Bet, ROLFold},
		chain: []roleStep{
			{role: Limper},
			{role: Limper2, optional: true, after: []Role{Limper}},
			{role: Hero, after: []Role{Limper, Limper2}},
		},
	},
	ThreeBet: {
		abbrev:  "3B",
		title:   "3-Bet",
		actions: []Action{ThreeBetAllIn, ThreeBetCall4Bet, ThreeBetFold},
		chain: []roleStep{
			{role: Opponent},
			{role: Hero, after: []Role{Opponent}},
		},
		aliases: map[string]Role{"villain": Opponent},
	},
	Squeeze: {
		abbrev:  "SQZ",
		title:   "Squeeze",
		actions: []Action{SqueezeAllIn, SqueezeFold, ColdCall},
		chain: []roleStep{
			{role: Raiser},
			{role: Caller, after: []Role{Raiser}},
			{role: Hero, after: []Role{Caller}},
		},
		aliases: map[string]Role{"villain": Raiser},
	},
	Cold4Bet: {
		abbrev:  "C4B",
		title:   "Cold 4-Bet",
		actions: []Action{FourBetCall, FourBetFold},
		chain: []roleStep{
			{role: Opener},
			{role: ThreeBettor, after: []Role{Opener}},
			{role: Hero, after: []Role{ThreeBettor}},
		},
		aliases: map[string]Role{"villain": Opener, "threeBetter": ThreeBettor},
	},
}

// ResolveRole maps a legacy role name such as "villain" onto the role it
// stands for in s. Other names are returned unchanged.
func (s Sequence) ResolveRole(name string) Role {
	if r, ok := sequenceRules[s]; ok {
		if alias, ok := r.aliases[name]; ok {
			return alias
		}
	}
	return Role(name)
}

package cash

import "fmt"

// Action tags one preflop decision branch, e.g. "OR-FOLD".
type Action string

const (
	OR4BetAllIn Action = "OR-4BET-ALL-IN"
	OR4BetFold  Action = "OR-4BET-FOLD"
	ORCall3Bet  Action = "OR-CALL 3BET"
	ORFold      Action = "OR-FOLD"

	ThreeBetAllIn    Action = "3BET-ALL-IN"
	ThreeBetCall4Bet Action = "3BET-CALL 4BET"
	ThreeBetFold     Action = "3BET-FOLD"

	FourBetCall Action = "4BET-CALL"
	FourBetFold Action = "4BET-FOLD"

	SqueezeAllIn Action = "SQZ-ALL-IN"
	SqueezeFold  Action = "SQZ-FOLD"
	ColdCall     Action = "COLD-CALL"

	ROL4BetAllIn Action = "ROL-4BET-ALL-IN"
	ROL4BetFold  Action = "ROL-4BET-FOLD"
	ROLCall3Bet  Action = "ROL-CALL 3BET"
	ROLFold      Action = "ROL-FOLD"
)

// DefaultPriority is used for actions missing from the priority table.
const DefaultPriority = 50

// Higher is more aggressive.
var actionPriority = map[Action]int{
	OR4BetAllIn: 100, ROL4BetAllIn: 100, ThreeBetAllIn: 100, SqueezeAllIn: 100, FourBetCall: 100,
	OR4BetFold: 90, ROL4BetFold: 90, ThreeBetCall4Bet: 90, FourBetFold: 90,
	ORCall3Bet: 80, ROLCall3Bet: 80, ThreeBetFold: 80, SqueezeFold: 80,
	ORFold: 70, ROLFold: 70, ColdCall: 70,
}

// PriorityOf returns the aggression rank of an action.
func PriorityOf(action Action) int {
	if p, ok := actionPriority[action]; ok {
		return p
	}
	return DefaultPriority
}

// Color is a display colour token.
type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

var (
	Red    = Color{Name: "red-500", Hex: "#ef4444"}
	Orange = Color{Name: "orange-500", Hex: "#f97316"}
	Green  = Color{Name: "green-500", Hex: "#22c55e"}
	Cyan   = Color{Name: "cyan-500", Hex: "#06b6d4"}
	Gray   = Color{Name: "gray-500", Hex: "#6b7280"}
)

var actionColor = map[Action]Color{
	OR4BetAllIn: Red, OR4BetFold: Orange, ORCall3Bet: Green, ORFold: Cyan,
	ThreeBetAllIn: Red, ThreeBetCall4Bet: Green, ThreeBetFold: Cyan,
	FourBetCall: Red, FourBetFold: Cyan,
	SqueezeAllIn: Red, SqueezeFold: Cyan, ColdCall: Green,
	ROL4BetAllIn: Red, ROL4BetFold: Orange, ROLCall3Bet: Green, ROLFold: Cyan,
}

// ColorOf returns the display colour of an action; unknown actions are gray.
func ColorOf(action Action) Color {
	if c, ok := actionColor[action]; ok {
		return c
	}
	return Gray
}

// Known reports whether action belongs to any sequence.
func (a Action) Known() bool {
	_, ok := actionPriority[a]
	return ok
}

// ParseAction validates an action tag against the action set of seq.
func ParseAction(seq Sequence, s string) (Action, error) {
	a := Action(s)
	if !seq.Allows(a) {
		return "", fmt.Errorf("action %q is not valid for %s", s, seq)
	}
	return a, nil
}

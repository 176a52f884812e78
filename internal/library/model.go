// Package library keeps free-form hand ranges organised in folders. The
// whole tree is stored as one JSON document.
package library

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"time"

	"github.com/lox/rangebook/poker"
)

// Key is the storage key of the folder tree.
const Key = "poker-ranges"

var (
	ErrFolderNotFound = errors.New("folder not found")
	ErrRangeNotFound  = errors.New("range not found")
	ErrInvalidName    = errors.New("name must not be empty")
	ErrInvalidWeights = errors.New("invalid hand weights")
)

// Weights maps hands to a 0-100 weight. Absent hands are 0.
type Weights map[poker.HandLabel]int

// Range is one named range in a folder.
type Range struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Hands           Weights   `json:"hands"`
	Position        string    `json:"position,omitempty"`
	Situation       string    `json:"situation,omitempty"`
	TotalPercentage float64   `json:"totalPercentage"`
	Combinations    float64   `json:"combinations"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Folder groups ranges and nested folders.
type Folder struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Ranges     []Range  `json:"ranges"`
	Subfolders []Folder `json:"subfolders,omitempty"`
	IsExpanded bool     `json:"isExpanded"`
}

// Export is the portable form of a range.
type Export struct {
	Name            string  `json:"name"`
	Hands           Weights `json:"hands"`
	TotalPercentage float64 `json:"totalPercentage"`
	Combinations    float64 `json:"combinations"`
}

// Shape counts the hands a range plays by category.
type Shape struct {
	Pairs   int `json:"pairs"`
	Suited  int `json:"suited"`
	Offsuit int `json:"offsuit"`
}

// DefaultFolders is the tree a fresh library starts with.
func DefaultFolders() []Folder {
	return []Folder{
		{ID: "default-1", Name: "My Ranges", Ranges: []Range{}, IsExpanded: true},
		{ID: "default-2", Name: "Position Ranges", Ranges: []Range{}},
	}
}

// Combinations weights each hand's card combinations by its weight,
// rounded to one decimal place.
func Combinations(w Weights) float64 {
	var sum float64
	for hand, weight := range w {
		if hand.Valid() {
			sum += float64(hand.Combinations()*weight) / 100
		}
	}
	return math.Round(sum*10) / 10
}

// Percentage is the share of all starting combinations w covers, rounded
// to one decimal place.
func Percentage(w Weights) float64 {
	return math.Round(Combinations(w)/poker.TotalCombinations*1000) / 10
}

// ShapeOf counts the hands with a non-zero weight.
func ShapeOf(w Weights) Shape {
	var s Shape
	for hand, weight := range w {
		if weight <= 0 || !hand.Valid() {
			continue
		}
		switch hand.Category() {
		case poker.Pair:
			s.Pairs++
		case poker.Suited:
			s.Suited++
		default:
			s.Offsuit++
		}
	}
	return s
}

// Clean checks every hand and weight and drops zero weights.
func Clean(w Weights) (Weights, error) {
	out := make(Weights, len(w))
	for hand, weight := range w {
		if !hand.Valid() {
			return nil, fmt.Errorf("%w: unknown hand %q", ErrInvalidWeights, hand)
		}
		if weight < 0 || weight > 100 {
			return nil, fmt.Errorf("%w: %s weight %d outside 0-100", ErrInvalidWeights, hand, weight)
		}
		if weight > 0 {
			out[hand] = weight
		}
	}
	return out, nil
}

// Paint sets weight on every hand in a range notation such as "TT+,AKs".
// A weight of 0 removes the hands. The input is not modified.
func Paint(w Weights, notation string, weight int) (Weights, error) {
	if weight < 0 || weight > 100 {
		return w, fmt.Errorf("%w: weight %d outside 0-100", ErrInvalidWeights, weight)
	}
	hands, err := poker.ParseNotation(notation)
	if err != nil {
		return w, err
	}
	out := maps.Clone(w)
	if out == nil {
		out = Weights{}
	}
	for _, hand := range hands {
		if weight == 0 {
			delete(out, hand)
			continue
		}
		out[hand] = weight
	}
	return out, nil
}

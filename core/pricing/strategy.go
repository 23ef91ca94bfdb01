package pricing

import (
	"fmt"
	"strings"
)

// Strategy selects which negative reduced cost routes a search returns.
type Strategy int

const (
	// AllPaths finishes the search and returns every sink label.
	AllPaths Strategy = iota
	// BestPaths finishes the search and returns the k cheapest sink labels.
	BestPaths
	// FirstPaths stops as soon as k sink labels have been found.
	FirstPaths
)

func (s Strategy) String() string {
	switch s {
	case AllPaths:
		return "ALL_PATHS"
	case BestPaths:
		return "BEST_PATHS"
	case FirstPaths:
		return "FIRST_PATHS"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy reads a strategy name.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToUpper(name) {
	case "ALL_PATHS":
		return AllPaths, nil
	case "BEST_PATHS":
		return BestPaths, nil
	case "FIRST_PATHS":
		return FirstPaths, nil
	}
	return 0, fmt.Errorf("unknown pricing strategy %q", name)
}

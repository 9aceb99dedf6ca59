package opt

import (
	"fmt"
	"strings"
	"time"
)

// Algorithm names a construction heuristic.
type Algorithm string

const (
	NearestNeighbourAlgorithm Algorithm = "nearest-neighbour"
	SavingsAlgorithm          Algorithm = "savings"
)

// Algorithms lists every registered heuristic in a stable order.
func Algorithms() []Algorithm {
	return []Algorithm{NearestNeighbourAlgorithm, SavingsAlgorithm}
}

// ParseAlgorithm accepts the canonical names and a few common aliases.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nearest-neighbour", "nearest-neighbor", "nearest", "nn", "greedy":
		return NearestNeighbourAlgorithm, nil
	case "savings", "clarke-wright", "cw":
		return SavingsAlgorithm, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// Stats describes one construction run. Pairs, Merges and Rejected are only
// filled by the savings heuristic.
type Stats struct {
	Vehicles  int `json:"vehicles"`
	Customers int `json:"customers"`
	Pairs     int `json:"pairs,omitempty"`
	Merges    int `json:"merges,omitempty"`
	Rejected  int `json:"rejected,omitempty"`
}

// Result bundles a constructed solution with its score.
type Result struct {
	Algorithm Algorithm     `json:"algorithm"`
	Solution  Solution      `json:"solution"`
	Distance  float64       `json:"distance"`
	Stats     Stats         `json:"stats"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Construct runs the named heuristic on p and scores the outcome.
func Construct(algo Algorithm, p *Problem, opts Options) (Result, error) {
	var build func(*Problem, Options) (Solution, Stats, error)
	switch algo {
	case NearestNeighbourAlgorithm:
		build = nearestNeighbour
	case SavingsAlgorithm:
		build = savings
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algo)
	}
	start := time.Now()
	sol, st, err := build(p, opts)
	if err != nil {
		return Result{}, err
	}
	dist, err := TotalDistance(sol, p)
	if err != nil {
		return Result{}, err
	}
	return Result{Algorithm: algo, Solution: sol, Distance: dist, Stats: st, Elapsed: time.Since(start)}, nil
}

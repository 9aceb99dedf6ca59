// Package opt builds capacitated vehicle routes from a single depot with
// greedy construction heuristics (nearest-neighbour and savings) and scores
// the result by total Euclidean distance.
//
// The package is pure: it performs no I/O, does not log, and keeps all
// construction state local to each call.
package opt

import (
	"fmt"
	"math"
)

// Node is a point in the plane with a delivery demand.
type Node struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Demand int     `json:"demand"`
}

// Problem is a single-depot instance shared by an unbounded, uniform fleet.
type Problem struct {
	Name     string
	Nodes    []Node
	Depot    int
	Capacity float64
}

// NewProblem assembles a Problem from parallel coordinate and demand arrays,
// the shape an external loader usually hands over.
func NewProblem(xs, ys []float64, demands []int, capacity float64, depot int) (*Problem, error) {
	if len(xs) != len(ys) || len(xs) != len(demands) {
		return nil, fmt.Errorf("%w: %d x, %d y and %d demand values", ErrInvalidInstance, len(xs), len(ys), len(demands))
	}
	nodes := make([]Node, len(xs))
	for i := range xs {
		nodes[i] = Node{X: xs[i], Y: ys[i], Demand: demands[i]}
	}
	p := &Problem{Nodes: nodes, Depot: depot, Capacity: capacity}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate reports structural problems that make the instance unusable.
// It does not check demand against capacity; see CheckDemands.
func (p *Problem) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil problem", ErrInvalidInstance)
	}
	n := len(p.Nodes)
	if n == 0 {
		return fmt.Errorf("%w: no depot node", ErrInvalidInstance)
	}
	if p.Depot < 0 || p.Depot >= n {
		return fmt.Errorf("%w: depot index %d outside [0,%d)", ErrInvalidInstance, p.Depot, n)
	}
	if !(p.Capacity > 0) || math.IsInf(p.Capacity, 0) {
		return fmt.Errorf("%w: capacity must be positive and finite, got %v", ErrInvalidInstance, p.Capacity)
	}
	for i, nd := range p.Nodes {
		if math.IsNaN(nd.X) || math.IsNaN(nd.Y) || math.IsInf(nd.X, 0) || math.IsInf(nd.Y, 0) {
			return fmt.Errorf("%w: node %d has non-finite coordinates", ErrInvalidInstance, i)
		}
		if i != p.Depot && nd.Demand < 0 {
			return fmt.Errorf("%w: node %d has negative demand %d", ErrInvalidInstance, i, nd.Demand)
		}
	}
	return nil
}

// CheckDemands returns an *InfeasibleDemandError for the lowest-indexed
// customer whose demand alone exceeds capacity.
func (p *Problem) CheckDemands() error {
	for _, c := range p.Customers() {
		if float64(p.Nodes[c].Demand) > p.Capacity {
			return &InfeasibleDemandError{Node: c, Demand: p.Nodes[c].Demand, Capacity: p.Capacity}
		}
	}
	return nil
}

// Customers lists every node index except the depot, ascending.
func (p *Problem) Customers() []int {
	out := make([]int, 0, len(p.Nodes))
	for i := range p.Nodes {
		if i != p.Depot {
			out = append(out, i)
		}
	}
	return out
}

// NumCustomers is len(p.Nodes) minus the depot.
func (p *Problem) NumCustomers() int {
	if len(p.Nodes) == 0 {
		return 0
	}
	return len(p.Nodes) - 1
}

func (p *Problem) inRange(i int) bool { return i >= 0 && i < len(p.Nodes) }

// fits reports whether load plus the demand of node c stays within capacity.
func (p *Problem) fits(load, c int) bool {
	return float64(load+p.Nodes[c].Demand) <= p.Capacity
}

// prepare runs the checks every constructor needs before it starts.
func (p *Problem) prepare() error {
	if err := p.Validate(); err != nil {
		return err
	}
	return p.CheckDemands()
}

package opt

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInstance marks a Problem that is malformed before any routing starts.
	ErrInvalidInstance = errors.New("opt: invalid instance")
	// ErrInfeasibleDemand marks a customer no vehicle can ever carry.
	ErrInfeasibleDemand = errors.New("opt: customer demand exceeds vehicle capacity")
	// ErrNodeOutOfRange is returned by the evaluator for route entries outside the node set.
	ErrNodeOutOfRange = errors.New("opt: node index out of range")
	// ErrInfeasibleSolution is matched by *ViolationError.
	ErrInfeasibleSolution = errors.New("opt: infeasible solution")
	// ErrUnknownAlgorithm is returned by ParseAlgorithm and Construct.
	ErrUnknownAlgorithm = errors.New("opt: unknown algorithm")
)

// InfeasibleDemandError names the customer that cannot be served.
type InfeasibleDemandError struct {
	Node     int
	Demand   int
	Capacity float64
}

func (e *InfeasibleDemandError) Error() string {
	return fmt.Sprintf("opt: customer %d demand %d exceeds vehicle capacity %v", e.Node, e.Demand, e.Capacity)
}

func (e *InfeasibleDemandError) Is(target error) bool { return target == ErrInfeasibleDemand }

// ViolationKind classifies a broken solution invariant.
type ViolationKind string

const (
	ViolationMissing    ViolationKind = "missing"
	ViolationDuplicate  ViolationKind = "duplicate"
	ViolationDepot      ViolationKind = "depot_in_route"
	ViolationOverload   ViolationKind = "overload"
	ViolationOutOfRange ViolationKind = "out_of_range"
)

// Violation is one broken invariant. Route is -1 for missing customers.
type Violation struct {
	Kind  ViolationKind `json:"kind"`
	Route int           `json:"route"`
	Node  int           `json:"node,omitempty"`
	Load  int           `json:"load,omitempty"`
}

func (v Violation) String() string {
	switch v.Kind {
	case ViolationMissing:
		return fmt.Sprintf("customer %d not served", v.Node)
	case ViolationOverload:
		return fmt.Sprintf("route %d load %d over capacity", v.Route, v.Load)
	default:
		return fmt.Sprintf("route %d: %s node %d", v.Route, v.Kind, v.Node)
	}
}

// ViolationError collects every invariant a solution breaks.
type ViolationError struct {
	Violations []Violation
}

func (e *ViolationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return "opt: infeasible solution: " + strings.Join(parts, "; ")
}

func (e *ViolationError) Is(target error) bool { return target == ErrInfeasibleSolution }

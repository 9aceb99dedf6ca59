package model

import (
	"time"

	"routebuilder/internal/opt"
)

// InstanceIn is a problem instance as posted by clients.
type InstanceIn struct {
	Name     string     `json:"name,omitempty"`
	Nodes    []opt.Node `json:"nodes"`
	Depot    int        `json:"depot"`
	Capacity float64    `json:"capacity"`
}

// Problem converts the payload into a validated opt.Problem.
func (in InstanceIn) Problem() (*opt.Problem, error) {
	p := &opt.Problem{Name: in.Name, Nodes: in.Nodes, Depot: in.Depot, Capacity: in.Capacity}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Instance is a stored problem instance.
type Instance struct {
	ID        string     `json:"id"`
	Name      string     `json:"name,omitempty"`
	Nodes     []opt.Node `json:"nodes"`
	Depot     int        `json:"depot"`
	Capacity  float64    `json:"capacity"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (i Instance) Problem() *opt.Problem {
	return &opt.Problem{Name: i.Name, Nodes: i.Nodes, Depot: i.Depot, Capacity: i.Capacity}
}

// InstanceSummary is the list view of an instance; nodes are omitted.
type InstanceSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Customers int       `json:"customers"`
	Capacity  float64   `json:"capacity"`
	CreatedAt time.Time `json:"createdAt"`
}

func (i Instance) Summary() InstanceSummary {
	return InstanceSummary{ID: i.ID, Name: i.Name, Customers: i.Problem().NumCustomers(), Capacity: i.Capacity, CreatedAt: i.CreatedAt}
}

// SolveRequest names an instance either by ID or inline.
type SolveRequest struct {
	InstanceID string      `json:"instanceId,omitempty"`
	Instance   *InstanceIn `json:"instance,omitempty"`
	Algorithm  string      `json:"algorithm"`
}

type EvaluateRequest struct {
	InstanceID string      `json:"instanceId,omitempty"`
	Instance   *InstanceIn `json:"instance,omitempty"`
	Routes     [][]int     `json:"routes"`
}

type EvaluateResponse struct {
	Distance       float64         `json:"distance"`
	RouteDistances []float64       `json:"routeDistances"`
	Vehicles       int             `json:"vehicles"`
	Feasible       bool            `json:"feasible"`
	Violations     []opt.Violation `json:"violations,omitempty"`
}

type CompareRequest struct {
	InstanceID string      `json:"instanceId,omitempty"`
	Instance   *InstanceIn `json:"instance,omitempty"`
	Reference  [][]int     `json:"reference,omitempty"`
}

// SolutionRecord is a constructed solution as persisted and returned by the API.
type SolutionRecord struct {
	ID         string    `json:"id"`
	InstanceID string    `json:"instanceId,omitempty"`
	Algorithm  string    `json:"algorithm"`
	Routes     [][]int   `json:"routes"`
	Distance   float64   `json:"distance"`
	Vehicles   int       `json:"vehicles"`
	Stats      opt.Stats `json:"stats"`
	ElapsedMs  float64   `json:"elapsedMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewSolutionRecord flattens a construction result. ID and CreatedAt are
// assigned by the store.
func NewSolutionRecord(instanceID string, res opt.Result) SolutionRecord {
	return SolutionRecord{
		InstanceID: instanceID,
		Algorithm:  string(res.Algorithm),
		Routes:     res.Solution.Lists(),
		Distance:   res.Distance,
		Vehicles:   res.Solution.Vehicles(),
		Stats:      res.Stats,
		ElapsedMs:  float64(res.Elapsed.Microseconds()) / 1000,
	}
}

// Page is one page of a cursor-paginated listing.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

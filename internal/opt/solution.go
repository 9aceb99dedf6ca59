package opt

import "encoding/json"

// Route is one vehicle tour. The depot is implicit at both ends and never
// stored. A Route cannot be modified after construction: accessors copy.
type Route struct {
	stops []int
}

// NewRoute copies customers into a Route.
func NewRoute(customers ...int) Route {
	return Route{stops: append([]int(nil), customers...)}
}

// Customers returns the visiting order.
func (r Route) Customers() []int { return append([]int(nil), r.stops...) }

// Len is the number of customers served.
func (r Route) Len() int { return len(r.stops) }

// At returns the k-th customer.
func (r Route) At(k int) int { return r.stops[k] }

// Tour returns the closed tour depot → customers → depot.
func (r Route) Tour(depot int) []int {
	out := make([]int, 0, len(r.stops)+2)
	out = append(out, depot)
	out = append(out, r.stops...)
	return append(out, depot)
}

// Load sums the customer demands of r in p. Out-of-range entries count as zero.
func (r Route) Load(p *Problem) int {
	load := 0
	for _, c := range r.stops {
		if p.inRange(c) {
			load += p.Nodes[c].Demand
		}
	}
	return load
}

func (r Route) MarshalJSON() ([]byte, error) {
	if r.stops == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.stops)
}

func (r *Route) UnmarshalJSON(b []byte) error {
	var stops []int
	if err := json.Unmarshal(b, &stops); err != nil {
		return err
	}
	r.stops = stops
	return nil
}

// Solution is the set of routes produced for one Problem.
type Solution struct {
	Routes []Route `json:"routes"`
}

// NewSolution copies plain index lists into a Solution. Lists are taken as
// customer sequences without the depot, the format loaders and clients use.
func NewSolution(routes [][]int) Solution {
	out := Solution{Routes: make([]Route, len(routes))}
	for i, r := range routes {
		out.Routes[i] = NewRoute(r...)
	}
	return out
}

// Lists returns the routes as plain index slices.
func (s Solution) Lists() [][]int {
	out := make([][]int, len(s.Routes))
	for i, r := range s.Routes {
		out[i] = r.Customers()
	}
	return out
}

// Vehicles is the number of routes.
func (s Solution) Vehicles() int { return len(s.Routes) }

// Served counts customer visits across all routes.
func (s Solution) Served() int {
	total := 0
	for _, r := range s.Routes {
		total += r.Len()
	}
	return total
}

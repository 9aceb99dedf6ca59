package opt

import "fmt"

// TotalDistance is the objective: for every route, depot → first customer,
// each consecutive leg, and last customer → depot, summed over the solution.
// It fails if any route references a node outside p.
func TotalDistance(sol Solution, p *Problem) (float64, error) {
	return totalDistance(sol, p, euclid{p: p})
}

// RouteDistance is the closed-tour length of a single route.
func RouteDistance(r Route, p *Problem) (float64, error) {
	return routeDistance(r, p, euclid{p: p})
}

func totalDistance(sol Solution, p *Problem, m Metric) (float64, error) {
	total := 0.0
	for k, r := range sol.Routes {
		d, err := routeDistance(r, p, m)
		if err != nil {
			return 0, fmt.Errorf("route %d: %w", k, err)
		}
		total += d
	}
	return total, nil
}

func routeDistance(r Route, p *Problem, m Metric) (float64, error) {
	if !p.inRange(p.Depot) {
		return 0, fmt.Errorf("%w: depot %d", ErrNodeOutOfRange, p.Depot)
	}
	total := 0.0
	cur := p.Depot
	for _, next := range r.stops {
		if !p.inRange(next) {
			return 0, fmt.Errorf("%w: %d not in [0,%d)", ErrNodeOutOfRange, next, len(p.Nodes))
		}
		total += m.Distance(cur, next)
		cur = next
	}
	return total + m.Distance(cur, p.Depot), nil
}

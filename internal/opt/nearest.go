package opt

// NearestNeighbour builds routes vehicle by vehicle. Each vehicle leaves the
// depot and keeps driving to the closest unvisited customer it still has room
// for; when nobody fits it returns to the depot and the next vehicle starts.
// Among equally close candidates the lowest node index is taken.
func NearestNeighbour(p *Problem, opts Options) (Solution, error) {
	sol, _, err := nearestNeighbour(p, opts)
	return sol, err
}

func nearestNeighbour(p *Problem, opts Options) (Solution, Stats, error) {
	if err := p.prepare(); err != nil {
		return Solution{}, Stats{}, err
	}
	customers := p.Customers()
	if len(customers) == 0 {
		return Solution{Routes: []Route{}}, Stats{}, nil
	}
	m := metricFor(p, opts)

	visited := make([]bool, len(p.Nodes))
	remaining := len(customers)
	routes := []Route{}
	for remaining > 0 {
		var stops []int
		load, cur := 0, p.Depot
		for {
			next, best := -1, 0.0
			// customers is ascending and the comparison strict, so the
			// first candidate found at the minimum distance is kept.
			for _, c := range customers {
				if visited[c] || !p.fits(load, c) {
					continue
				}
				if d := m.Distance(cur, c); next < 0 || d < best {
					next, best = c, d
				}
			}
			if next < 0 {
				break
			}
			stops = append(stops, next)
			visited[next] = true
			load += p.Nodes[next].Demand
			cur = next
			remaining--
		}
		if len(stops) == 0 {
			// An empty vehicle means nobody left fits; CheckDemands rules
			// this out, but never loop on it.
			for _, c := range customers {
				if !visited[c] {
					return Solution{}, Stats{}, &InfeasibleDemandError{Node: c, Demand: p.Nodes[c].Demand, Capacity: p.Capacity}
				}
			}
		}
		routes = append(routes, Route{stops: stops})
	}
	st := Stats{Vehicles: len(routes), Customers: len(customers)}
	return Solution{Routes: routes}, st, nil
}

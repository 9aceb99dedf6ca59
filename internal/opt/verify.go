package opt

// Verify checks a solution against p: every customer served exactly once,
// no depot inside a route, no route over capacity, no unknown node. It
// returns nil or a *ViolationError listing every problem found.
func Verify(sol Solution, p *Problem) error {
	if err := p.Validate(); err != nil {
		return err
	}
	seen := make([]bool, len(p.Nodes))
	var vs []Violation
	for k, r := range sol.Routes {
		load := 0
		for _, c := range r.stops {
			switch {
			case !p.inRange(c):
				vs = append(vs, Violation{Kind: ViolationOutOfRange, Route: k, Node: c})
				continue
			case c == p.Depot:
				vs = append(vs, Violation{Kind: ViolationDepot, Route: k, Node: c})
				continue
			case seen[c]:
				vs = append(vs, Violation{Kind: ViolationDuplicate, Route: k, Node: c})
			}
			seen[c] = true
			load += p.Nodes[c].Demand
		}
		if float64(load) > p.Capacity {
			vs = append(vs, Violation{Kind: ViolationOverload, Route: k, Load: load})
		}
	}
	for _, c := range p.Customers() {
		if !seen[c] {
			vs = append(vs, Violation{Kind: ViolationMissing, Route: -1, Node: c})
		}
	}
	if len(vs) > 0 {
		return &ViolationError{Violations: vs}
	}
	return nil
}

package opt

import (
	"cmp"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Saving is the distance saved by serving I and J on one tour instead of two
// separate depot round trips: d(depot,I) + d(depot,J) - d(I,J). I < J.
type Saving struct {
	I     int     `json:"i"`
	J     int     `json:"j"`
	Value float64 `json:"value"`
}

// ComputeSavings returns the saving of every unordered customer pair sorted
// by value, largest first. Pairs with equal value keep generation order
// (I ascending, then J ascending).
func ComputeSavings(p *Problem, opts Options) ([]Saving, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return sortedSavings(p, metricFor(p, opts), opts), nil
}

func sortedSavings(p *Problem, m Metric, opts Options) []Saving {
	cs := p.Customers()
	k := len(cs)
	if k < 2 {
		return []Saving{}
	}
	d0 := make([]float64, k)
	for a, c := range cs {
		d0[a] = m.Distance(p.Depot, c)
	}

	out := make([]Saving, k*(k-1)/2)
	// row a owns out[rowStart(a) : rowStart(a)+k-a-1]
	rowStart := func(a int) int { return a*k - a*(a+1)/2 }
	row := func(a int) {
		off := rowStart(a)
		for b := a + 1; b < k; b++ {
			out[off] = Saving{I: cs[a], J: cs[b], Value: d0[a] + d0[b] - m.Distance(cs[a], cs[b])}
			off++
		}
	}
	if opts.ParallelMin > 0 && k >= opts.ParallelMin {
		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		for a := 0; a < k-1; a++ {
			g.Go(func() error {
				row(a)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for a := 0; a < k-1; a++ {
			row(a)
		}
	}

	slices.SortStableFunc(out, func(x, y Saving) int { return cmp.Compare(y.Value, x.Value) })
	return out
}

// Savings starts with one route per customer and walks the savings list from
// the largest saving down. When the two customers of a pair sit on different
// routes whose combined demand fits one vehicle, the route holding J is
// appended in full to the route holding I. Merging does not require I or J
// to be route endpoints.
func Savings(p *Problem, opts Options) (Solution, error) {
	sol, _, err := savings(p, opts)
	return sol, err
}

func savings(p *Problem, opts Options) (Solution, Stats, error) {
	if err := p.prepare(); err != nil {
		return Solution{}, Stats{}, err
	}
	cs := p.Customers()
	if len(cs) == 0 {
		return Solution{Routes: []Route{}}, Stats{}, nil
	}
	list := sortedSavings(p, metricFor(p, opts), opts)

	rs := newRouteSet(p, cs)
	st := Stats{Customers: len(cs), Pairs: len(list)}
	for _, s := range list {
		ri, rj := rs.find(rs.pos[s.I]), rs.find(rs.pos[s.J])
		if ri == rj {
			continue
		}
		if float64(rs.load[ri]+rs.load[rj]) > p.Capacity {
			st.Rejected++
			continue
		}
		rs.concat(ri, rj)
		st.Merges++
	}
	routes := rs.routes()
	st.Vehicles = len(routes)
	return Solution{Routes: routes}, st, nil
}

// routeSet tracks which route each customer is on (union-find over customer
// positions) and the visiting order of each route (linked list per root).
type routeSet struct {
	cs     []int
	pos    []int // node index -> position in cs
	parent []int
	size   []int
	next   []int // position -> following position on its route, -1 at the tail
	head   []int // valid for roots only
	tail   []int
	load   []int
	stamp  []int // creation order of the route a root currently represents
	clock  int
}

func newRouteSet(p *Problem, cs []int) *routeSet {
	k := len(cs)
	rs := &routeSet{
		cs:     cs,
		pos:    make([]int, len(p.Nodes)),
		parent: make([]int, k),
		size:   make([]int, k),
		next:   make([]int, k),
		head:   make([]int, k),
		tail:   make([]int, k),
		load:   make([]int, k),
		stamp:  make([]int, k),
		clock:  k,
	}
	for a, c := range cs {
		rs.pos[c] = a
		rs.parent[a] = a
		rs.size[a] = 1
		rs.next[a] = -1
		rs.head[a] = a
		rs.tail[a] = a
		rs.load[a] = p.Nodes[c].Demand
		rs.stamp[a] = a
	}
	return rs
}

func (rs *routeSet) find(x int) int {
	for rs.parent[x] != x {
		rs.parent[x] = rs.parent[rs.parent[x]]
		x = rs.parent[x]
	}
	return x
}

// concat appends route b to route a. The merged route counts as newly
// created, so it sorts after every route that already exists.
func (rs *routeSet) concat(a, b int) {
	rs.next[rs.tail[a]] = rs.head[b]
	head, tail, load := rs.head[a], rs.tail[b], rs.load[a]+rs.load[b]

	root, child := a, b
	if rs.size[a] < rs.size[b] {
		root, child = b, a
	}
	rs.parent[child] = root
	rs.size[root] += rs.size[child]
	rs.head[root], rs.tail[root], rs.load[root] = head, tail, load
	rs.stamp[root] = rs.clock
	rs.clock++
}

// routes materialises the surviving routes in creation order.
func (rs *routeSet) routes() []Route {
	var roots []int
	for a := range rs.parent {
		if rs.find(a) == a {
			roots = append(roots, a)
		}
	}
	slices.SortFunc(roots, func(x, y int) int { return cmp.Compare(rs.stamp[x], rs.stamp[y]) })

	out := make([]Route, 0, len(roots))
	for _, r := range roots {
		stops := make([]int, 0, rs.size[r])
		for at := rs.head[r]; at >= 0; at = rs.next[at] {
			stops = append(stops, rs.cs[at])
		}
		out = append(out, Route{stops: stops})
	}
	return out
}

package opt

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Metric answers pairwise node distances for one Problem.
type Metric interface {
	Distance(i, j int) float64
}

// Distance is the Euclidean distance between nodes i and j of p.
func Distance(p *Problem, i, j int) float64 {
	a, b := p.Nodes[i], p.Nodes[j]
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// euclid computes distances on demand.
type euclid struct{ p *Problem }

func (e euclid) Distance(i, j int) float64 { return Distance(e.p, i, j) }

// DistanceTable is a precomputed, row-major n×n distance matrix.
type DistanceTable struct {
	n int
	d []float64
}

// parallelRowsMin is the node count from which table rows are filled by
// several goroutines.
const parallelRowsMin = 256

// NewDistanceTable precomputes every pairwise distance of p. Each unordered
// pair is computed once and mirrored so the table is exactly symmetric.
func NewDistanceTable(p *Problem) *DistanceTable {
	n := len(p.Nodes)
	t := &DistanceTable{n: n, d: make([]float64, n*n)}
	fill := func(i int) {
		for j := i + 1; j < n; j++ {
			v := Distance(p, i, j)
			t.d[i*n+j] = v
			t.d[j*n+i] = v
		}
	}
	if n < parallelRowsMin {
		for i := 0; i < n; i++ {
			fill(i)
		}
		return t
	}
	// Row i writes only cells (i,j) and (j,i) with j > i, so rows never overlap.
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fill(i)
			return nil
		})
	}
	_ = g.Wait()
	return t
}

func (t *DistanceTable) Distance(i, j int) float64 { return t.d[i*t.n+j] }

// Size is the matrix order.
func (t *DistanceTable) Size() int { return t.n }

// Options tunes the constructors without changing their results.
type Options struct {
	// TableMin is the node count from which a DistanceTable is built up front.
	// Zero or negative disables the table.
	TableMin int
	// ParallelMin is the customer count from which savings pairs are
	// generated concurrently. Zero or negative disables it.
	ParallelMin int
}

// DefaultOptions precomputes distances for anything beyond toy instances and
// parallelises savings generation for a few hundred customers.
func DefaultOptions() Options {
	return Options{TableMin: 32, ParallelMin: 400}
}

// metricFor picks the distance source for p under opts.
func metricFor(p *Problem, opts Options) Metric {
	if opts.TableMin > 0 && len(p.Nodes) >= opts.TableMin {
		return NewDistanceTable(p)
	}
	return euclid{p: p}
}

// NewMetric exposes the metric selection to callers outside the constructors.
func NewMetric(p *Problem, opts Options) Metric { return metricFor(p, opts) }

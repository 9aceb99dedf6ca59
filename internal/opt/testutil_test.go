package opt

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// lineProblem is four unit-demand customers at x = 1..4 on the x-axis,
// capacity 2, depot at the origin.
func lineProblem(t *testing.T) *Problem {
	t.Helper()
	p, err := NewProblem(
		[]float64{0, 1, 2, 3, 4},
		[]float64{0, 0, 0, 0, 0},
		[]int{0, 1, 1, 1, 1},
		2, 0,
	)
	require.NoError(t, err)
	return p
}

// randomProblem scatters n customers over a 100x100 square around a
// central depot; demands are 1..20.
func randomProblem(seed int64, n int, capacity float64) *Problem {
	rng := rand.New(rand.NewSource(seed))
	nodes := make([]Node, n+1)
	nodes[0] = Node{X: 50, Y: 50}
	for i := 1; i <= n; i++ {
		nodes[i] = Node{X: rng.Float64() * 100, Y: rng.Float64() * 100, Demand: 1 + rng.Intn(20)}
	}
	return &Problem{Name: "random", Nodes: nodes, Depot: 0, Capacity: capacity}
}

func requireFeasible(t *testing.T, sol Solution, p *Problem) {
	t.Helper()
	require.NoError(t, Verify(sol, p))
	for _, r := range sol.Routes {
		require.LessOrEqual(t, float64(r.Load(p)), p.Capacity)
		require.NotContains(t, r.Customers(), p.Depot)
	}
}

type constructor func(*Problem, Options) (Solution, error)

var constructors = map[string]constructor{
	"nearest-neighbour": NearestNeighbour,
	"savings":           Savings,
}

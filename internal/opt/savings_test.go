package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSavings_Line(t *testing.T) {
	p := lineProblem(t)
	list, err := ComputeSavings(p, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []Saving{
		{I: 3, J: 4, Value: 6},
		{I: 2, J: 3, Value: 4},
		{I: 2, J: 4, Value: 4},
		{I: 1, J: 2, Value: 2},
		{I: 1, J: 3, Value: 2},
		{I: 1, J: 4, Value: 2},
	}, list)
}

func TestComputeSavings_OrderAndCount(t *testing.T) {
	p := randomProblem(3, 50, 100)
	list, err := ComputeSavings(p, DefaultOptions())
	require.NoError(t, err)

	k := p.NumCustomers()
	require.Len(t, list, k*(k-1)/2)
	for i := 1; i < len(list); i++ {
		require.GreaterOrEqual(t, list[i-1].Value, list[i].Value)
	}
	for _, s := range list {
		require.Less(t, s.I, s.J)
		assert.InDelta(t, Distance(p, 0, s.I)+Distance(p, 0, s.J)-Distance(p, s.I, s.J), s.Value, 1e-9)
	}
}

func TestComputeSavings_ParallelMatchesSequential(t *testing.T) {
	p := randomProblem(11, 150, 100)
	seq, err := ComputeSavings(p, Options{})
	require.NoError(t, err)
	par, err := ComputeSavings(p, Options{ParallelMin: 2, TableMin: 1})
	require.NoError(t, err)
	assert.Equal(t, seq, par)
}

func TestComputeSavings_FewCustomers(t *testing.T) {
	p := &Problem{Nodes: []Node{{}, {X: 1, Demand: 1}}, Capacity: 1}
	list, err := ComputeSavings(p, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSavings_Line(t *testing.T) {
	p := lineProblem(t)
	res, err := Construct(SavingsAlgorithm, p, DefaultOptions())
	require.NoError(t, err)

	// the pair merged first keeps its place ahead of later merges
	assert.Equal(t, [][]int{{3, 4}, {1, 2}}, res.Solution.Lists())
	assert.Equal(t, 12.0, res.Distance)
	assert.Equal(t, Stats{Vehicles: 2, Customers: 4, Pairs: 6, Merges: 2, Rejected: 4}, res.Stats)
}

func TestSavings_NothingMerges(t *testing.T) {
	p := &Problem{
		Nodes:    []Node{{X: 0, Y: 1, Demand: 1}, {X: 1, Y: 0, Demand: 1}, {}, {X: -1, Y: 0, Demand: 1}},
		Depot:    2,
		Capacity: 1,
	}
	sol, err := Savings(p, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0}, {1}, {3}}, sol.Lists())
}

func TestSavings_AppendsWholeRoute(t *testing.T) {
	// (2,3) merges first; the later pair (1,2) then appends all of [2 3]
	// behind 1 rather than inserting 1 next to 2.
	p := &Problem{
		Nodes:    []Node{{}, {X: 1, Demand: 1}, {X: 10, Demand: 1}, {X: 11, Demand: 1}},
		Capacity: 10,
	}
	sol, err := Savings(p, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2, 3}}, sol.Lists())
}

func TestRouteSet_Concat(t *testing.T) {
	p := &Problem{Nodes: make([]Node, 6), Capacity: 1}
	cs := p.Customers()
	rs := newRouteSet(p, cs)

	rs.concat(rs.find(rs.pos[4]), rs.find(rs.pos[5]))
	rs.concat(rs.find(rs.pos[2]), rs.find(rs.pos[1]))
	rs.concat(rs.find(rs.pos[5]), rs.find(rs.pos[1]))

	assert.Equal(t, rs.find(rs.pos[4]), rs.find(rs.pos[2]))
	got := Solution{Routes: rs.routes()}
	assert.Equal(t, [][]int{{3}, {4, 5, 2, 1}}, got.Lists())
}

func TestSavings_InfeasibleDemand(t *testing.T) {
	p := lineProblem(t)
	p.Nodes[1].Demand = 5
	_, err := Savings(p, DefaultOptions())
	require.ErrorIs(t, err, ErrInfeasibleDemand)
}

func TestSavings_DepotOnly(t *testing.T) {
	p := &Problem{Nodes: []Node{{}}, Capacity: 1}
	sol, err := Savings(p, DefaultOptions())
	require.NoError(t, err)
	require.NotNil(t, sol.Routes)
	assert.Empty(t, sol.Routes)
}

func TestSavings_OptionsDoNotChangeResult(t *testing.T) {
	p := randomProblem(9, 120, 80)
	plain, err := Savings(p, Options{})
	require.NoError(t, err)
	tuned, err := Savings(p, Options{TableMin: 1, ParallelMin: 2})
	require.NoError(t, err)
	assert.Equal(t, plain.Lists(), tuned.Lists())
}

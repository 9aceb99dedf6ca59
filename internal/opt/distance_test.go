package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance_SymmetricAndZeroOnSelf(t *testing.T) {
	p := randomProblem(7, 40, 100)
	for i := range p.Nodes {
		assert.Equal(t, 0.0, Distance(p, i, i))
		for j := range p.Nodes {
			assert.Equal(t, Distance(p, i, j), Distance(p, j, i))
		}
	}
}

func TestDistance_Pythagorean(t *testing.T) {
	p := &Problem{Nodes: []Node{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 3, Y: 4}}, Capacity: 1}
	assert.Equal(t, 5.0, Distance(p, 0, 1))
	// coincident nodes are allowed and sit at distance zero
	assert.Equal(t, 0.0, Distance(p, 1, 2))
}

func TestDistanceTable_MatchesDirect(t *testing.T) {
	for _, n := range []int{5, parallelRowsMin + 20} {
		p := randomProblem(int64(n), n, 100)
		tab := NewDistanceTable(p)
		require.Equal(t, len(p.Nodes), tab.Size())
		for i := range p.Nodes {
			for j := range p.Nodes {
				require.Equal(t, Distance(p, i, j), tab.Distance(i, j))
				require.Equal(t, tab.Distance(i, j), tab.Distance(j, i))
			}
		}
	}
}

func TestNewMetric_TableThreshold(t *testing.T) {
	p := randomProblem(1, 10, 100)

	_, isTable := NewMetric(p, Options{TableMin: 5}).(*DistanceTable)
	assert.True(t, isTable)

	_, isTable = NewMetric(p, Options{TableMin: 50}).(*DistanceTable)
	assert.False(t, isTable)

	_, isTable = NewMetric(p, Options{}).(*DistanceTable)
	assert.False(t, isTable)
}

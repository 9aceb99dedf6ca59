package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routebuilder/internal/opt"
)

func TestInstanceInProblem(t *testing.T) {
	in := InstanceIn{Name: "tiny", Nodes: []opt.Node{{}, {X: 1, Demand: 1}}, Capacity: 1}
	p, err := in.Problem()
	require.NoError(t, err)
	assert.Equal(t, "tiny", p.Name)
	assert.Equal(t, 1, p.NumCustomers())

	in.Capacity = 0
	_, err = in.Problem()
	require.ErrorIs(t, err, opt.ErrInvalidInstance)
}

func TestNewSolutionRecord(t *testing.T) {
	res := opt.Result{
		Algorithm: opt.SavingsAlgorithm,
		Solution:  opt.NewSolution([][]int{{3, 4}, {1, 2}}),
		Distance:  12,
		Stats:     opt.Stats{Vehicles: 2, Customers: 4},
		Elapsed:   1500 * time.Microsecond,
	}
	rec := NewSolutionRecord("inst-1", res)
	assert.Equal(t, "inst-1", rec.InstanceID)
	assert.Equal(t, "savings", rec.Algorithm)
	assert.Equal(t, [][]int{{3, 4}, {1, 2}}, rec.Routes)
	assert.Equal(t, 2, rec.Vehicles)
	assert.Equal(t, 1.5, rec.ElapsedMs)
}

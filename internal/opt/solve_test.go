package opt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlgorithm(t *testing.T) {
	for in, want := range map[string]Algorithm{
		"nearest-neighbour": NearestNeighbourAlgorithm,
		"Nearest-Neighbor":  NearestNeighbourAlgorithm,
		" nn ":              NearestNeighbourAlgorithm,
		"greedy":            NearestNeighbourAlgorithm,
		"savings":           SavingsAlgorithm,
		"CW":                SavingsAlgorithm,
		"clarke-wright":     SavingsAlgorithm,
	} {
		got, err := ParseAlgorithm(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseAlgorithm("alns")
	require.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestConstruct(t *testing.T) {
	p := lineProblem(t)

	res, err := Construct(NearestNeighbourAlgorithm, p, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, NearestNeighbourAlgorithm, res.Algorithm)
	assert.Equal(t, 12.0, res.Distance)
	assert.Equal(t, Stats{Vehicles: 2, Customers: 4}, res.Stats)

	_, err = Construct("tabu", p, DefaultOptions())
	require.ErrorIs(t, err, ErrUnknownAlgorithm)

	bad := lineProblem(t)
	bad.Capacity = 0
	_, err = Construct(SavingsAlgorithm, bad, DefaultOptions())
	require.ErrorIs(t, err, ErrInvalidInstance)
}

func TestCompare(t *testing.T) {
	p := lineProblem(t)

	rep, err := Compare(p, nil, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, rep.Heuristics, 2)
	assert.Nil(t, rep.Reference)
	for _, c := range rep.Heuristics {
		assert.Equal(t, 12.0, c.Distance)
		assert.Zero(t, c.GapPct)
	}

	ref := NewSolution([][]int{{1}, {2}, {3}, {4}})
	rep, err = Compare(p, &ref, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 20.0, rep.ReferenceDistance)
	assert.Equal(t, NearestNeighbourAlgorithm, rep.Heuristics[0].Algorithm)
	assert.Equal(t, SavingsAlgorithm, rep.Heuristics[1].Algorithm)
	for _, c := range rep.Heuristics {
		assert.InDelta(t, -40.0, c.GapPct, 1e-9)
		assert.Equal(t, 2, c.Vehicles)
	}
	assert.Equal(t, [][]int{{1, 2}, {3, 4}}, rep.Heuristics[0].Routes)
	assert.Equal(t, [][]int{{3, 4}, {1, 2}}, rep.Heuristics[1].Routes)

	overloaded := NewSolution([][]int{{1, 2, 3, 4}})
	_, err = Compare(p, &overloaded, DefaultOptions())
	require.ErrorIs(t, err, ErrInfeasibleSolution)
}

func TestVerify(t *testing.T) {
	p := lineProblem(t)
	require.NoError(t, Verify(NewSolution([][]int{{1, 2}, {3, 4}}), p))

	err := Verify(NewSolution([][]int{{1, 2, 3}, {0}, {9}, {1}}), p)
	require.ErrorIs(t, err, ErrInfeasibleSolution)

	var ve *ViolationError
	require.True(t, errors.As(err, &ve))
	kinds := make([]ViolationKind, 0, len(ve.Violations))
	for _, v := range ve.Violations {
		kinds = append(kinds, v.Kind)
	}
	assert.Equal(t, []ViolationKind{
		ViolationOverload,
		ViolationDepot,
		ViolationOutOfRange,
		ViolationDuplicate,
		ViolationMissing,
	}, kinds)
	assert.Equal(t, 4, ve.Violations[4].Node)
	assert.Equal(t, 3, ve.Violations[0].Load)
}

func TestRouteJSON(t *testing.T) {
	sol := NewSolution([][]int{{2, 1}, {}})
	b, err := sol.Routes[0].MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[2,1]`, string(b))

	b, err = Route{}.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(b))

	var r Route
	require.NoError(t, r.UnmarshalJSON([]byte(`[4,3]`)))
	assert.Equal(t, []int{4, 3}, r.Customers())
}

func TestCompareAlgorithms_Subset(t *testing.T) {
	p := lineProblem(t)
	rep, err := CompareAlgorithms(p, nil, DefaultOptions(), []Algorithm{SavingsAlgorithm})
	require.NoError(t, err)
	require.Len(t, rep.Heuristics, 1)
	assert.Equal(t, SavingsAlgorithm, rep.Heuristics[0].Algorithm)
	assert.Equal(t, [][]int{{3, 4}, {1, 2}}, rep.Heuristics[0].Result.Solution.Lists())

	_, err = CompareAlgorithms(p, nil, DefaultOptions(), []Algorithm{"alns"})
	require.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestReport_AddExternalResults(t *testing.T) {
	p := lineProblem(t)
	ref := NewSolution([][]int{{1}, {2}, {3}, {4}})
	rep, err := NewReport(p, &ref)
	require.NoError(t, err)
	assert.Empty(t, rep.Heuristics)

	res, err := Construct(NearestNeighbourAlgorithm, p, DefaultOptions())
	require.NoError(t, err)
	rep.Add(res)

	require.Len(t, rep.Heuristics, 1)
	c := rep.Heuristics[0]
	assert.Equal(t, NearestNeighbourAlgorithm, c.Algorithm)
	assert.Equal(t, res.Solution.Lists(), c.Routes)
	assert.InDelta(t, -40.0, c.GapPct, 1e-9)

	overloaded := NewSolution([][]int{{1, 2, 3, 4}})
	_, err = NewReport(p, &overloaded)
	require.ErrorIs(t, err, ErrInfeasibleSolution)
}

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routebuilder/internal/model"
	"routebuilder/internal/opt"
)

func lineInstance() model.InstanceIn {
	return model.InstanceIn{
		Name:     "line",
		Nodes:    []opt.Node{{}, {X: 1, Demand: 1}, {X: 2, Demand: 1}, {X: 3, Demand: 1}, {X: 4, Demand: 1}},
		Capacity: 2,
	}
}

// testStore runs the behaviour every Store implementation shares.
func testStore(t *testing.T, s Store) {
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))

	inst, err := s.CreateInstance(ctx, lineInstance())
	require.NoError(t, err)
	require.NotEmpty(t, inst.ID)

	got, err := s.GetInstance(ctx, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, inst.Nodes, got.Nodes)
	assert.Equal(t, 2.0, got.Capacity)
	assert.Equal(t, "line", got.Name)

	_, err = s.GetInstance(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)

	second, err := s.CreateInstance(ctx, lineInstance())
	require.NoError(t, err)

	page, next, err := s.ListInstances(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, inst.ID, page[0].ID)
	assert.Equal(t, 4, page[0].Customers)
	require.NotEmpty(t, next)

	page, _, err = s.ListInstances(ctx, next, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, second.ID, page[0].ID)

	res, err := opt.Construct(opt.SavingsAlgorithm, got.Problem(), opt.DefaultOptions())
	require.NoError(t, err)
	rec, err := s.SaveSolution(ctx, model.NewSolutionRecord(inst.ID, res))
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)

	loaded, err := s.GetSolution(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{3, 4}, {1, 2}}, loaded.Routes)
	assert.Equal(t, 12.0, loaded.Distance)
	assert.Equal(t, res.Stats, loaded.Stats)
	assert.Equal(t, inst.ID, loaded.InstanceID)

	inline, err := s.SaveSolution(ctx, model.SolutionRecord{Algorithm: "nearest-neighbour", Routes: [][]int{{1}}, Distance: 2, Vehicles: 1})
	require.NoError(t, err)

	sols, _, err := s.ListSolutions(ctx, inst.ID, "", 0)
	require.NoError(t, err)
	require.Len(t, sols, 1)
	assert.Equal(t, rec.ID, sols[0].ID)

	sols, _, err = s.ListSolutions(ctx, "", "", 0)
	require.NoError(t, err)
	require.Len(t, sols, 2)
	assert.Equal(t, inline.ID, sols[1].ID)
	assert.Empty(t, sols[1].InstanceID)

	require.NoError(t, s.DeleteInstance(ctx, inst.ID))
	require.ErrorIs(t, s.DeleteInstance(ctx, inst.ID), ErrNotFound)
	_, err = s.GetSolution(ctx, rec.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetSolution(ctx, inline.ID)
	require.NoError(t, err)
}

func TestMemory(t *testing.T) {
	testStore(t, NewMemory())
}

func TestMemory_CopiesOnRead(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	rec, err := m.SaveSolution(ctx, model.SolutionRecord{Routes: [][]int{{1, 2}}})
	require.NoError(t, err)

	got, err := m.GetSolution(ctx, rec.ID)
	require.NoError(t, err)
	got.Routes[0][0] = 99

	again, err := m.GetSolution(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2}}, again.Routes)
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "routebuilder.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(ctx))
	// migrating twice is harmless
	require.NoError(t, s.Migrate(ctx))
	testStore(t, s)
}

func TestSQLite_InMemory(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(ctx))
	testStore(t, s)
}

func TestRebind(t *testing.T) {
	pg := &SQL{dialect: Postgres}
	assert.Equal(t, `SELECT a FROM t WHERE x=$1 AND y > $2 LIMIT $3`, pg.q(`SELECT a FROM t WHERE x=? AND y > ? LIMIT ?`))
	lite := &SQL{dialect: SQLite}
	assert.Equal(t, `x=?`, lite.q(`x=?`))
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routebuilder/internal/opt"
)

const lineVRP = `NAME : line-5
TYPE : CVRP
DIMENSION : 5
EDGE_WEIGHT_TYPE : EUC_2D
CAPACITY : 2
NODE_COORD_SECTION
1 0 0
2 1 0
3 2 0
4 3 0
5 4 0
DEMAND_SECTION
1 0
2 1
3 1
4 1
5 1
DEPOT_SECTION
1
-1
EOF
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSolve_AllHeuristics(t *testing.T) {
	vrp := writeFile(t, "line.vrp", lineVRP)

	out, err := run(t, "solve", vrp)
	require.NoError(t, err)
	assert.Equal(t, "Nearest Neighbour VRP Heuristic Distance: 12\nSaving VRP Heuristic Distance: 12\n", out)
}

func TestSolve_WithReference(t *testing.T) {
	vrp := writeFile(t, "line.vrp", lineVRP)
	ref := writeFile(t, "line.sol", "Route #1: 1\nRoute #2: 2\nRoute #3: 3\nRoute #4: 4\nCost 20\n")

	out, err := run(t, "solve", vrp, "--reference", ref)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Best VRP Distance: 20", lines[0])

	bad := writeFile(t, "bad.sol", "Route #1: 1 2 3 4\n")
	_, err = run(t, "solve", vrp, "--reference", bad)
	require.ErrorIs(t, err, opt.ErrInfeasibleSolution)
}

func TestSolve_SingleAlgorithmWritesSolution(t *testing.T) {
	vrp := writeFile(t, "line.vrp", lineVRP)
	sol := filepath.Join(t.TempDir(), "nn.sol")

	out, err := run(t, "solve", vrp, "-a", "nn", "--out", sol)
	require.NoError(t, err)
	assert.Equal(t, "Nearest Neighbour VRP Heuristic Distance: 12\n", out)

	b, err := os.ReadFile(sol)
	require.NoError(t, err)
	assert.Equal(t, "Route #1: 1 2\nRoute #2: 3 4\nCost 12\n", string(b))

	out, err = run(t, "solve", vrp, "-a", "savings", "-o", "-")
	require.NoError(t, err)
	assert.Equal(t, "Saving VRP Heuristic Distance: 12\nRoute #1: 3 4\nRoute #2: 1 2\nCost 12\n", out)
}

func TestSolve_JSON(t *testing.T) {
	vrp := writeFile(t, "line.vrp", lineVRP)

	out, err := run(t, "solve", vrp, "--json")
	require.NoError(t, err)
	var rep opt.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.Heuristics, 2)
	assert.Equal(t, opt.SavingsAlgorithm, rep.Heuristics[1].Algorithm)
	assert.Equal(t, 2, rep.Heuristics[1].Vehicles)
	assert.Equal(t, [][]int{{1, 2}, {3, 4}}, rep.Heuristics[0].Routes)
	assert.Equal(t, [][]int{{3, 4}, {1, 2}}, rep.Heuristics[1].Routes)
}

func TestSolve_CSVInstance(t *testing.T) {
	csv := writeFile(t, "line.csv", "x,y,demand\n0,0,0\n1,0,1\n2,0,1\n3,0,1\n4,0,1\n")

	_, err := run(t, "solve", csv)
	require.ErrorContains(t, err, "--capacity")

	out, err := run(t, "solve", csv, "--capacity", "2", "-a", "savings")
	require.NoError(t, err)
	assert.Equal(t, "Saving VRP Heuristic Distance: 12\n", out)
}

func TestSolve_Errors(t *testing.T) {
	vrp := writeFile(t, "line.vrp", lineVRP)

	_, err := run(t, "solve", vrp, "-a", "alns")
	require.ErrorIs(t, err, opt.ErrUnknownAlgorithm)

	_, err = run(t, "solve", filepath.Join(t.TempDir(), "missing.vrp"))
	require.Error(t, err)

	_, err = run(t, "solve")
	require.Error(t, err)

	_, err = run(t, "solve", vrp, "--log-level", "loud")
	require.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	vrp := writeFile(t, "line.vrp", lineVRP)

	good := writeFile(t, "good.sol", "Route #1: 1 2\nRoute #2: 3 4\nCost 12\n")
	out, err := run(t, "evaluate", vrp, good)
	require.NoError(t, err)
	assert.Equal(t, "Distance: 12\nVehicles: 2\nFeasible: true\n", out)

	stale := writeFile(t, "stale.sol", "Route #1: 1 2\nRoute #2: 3 4\nCost 15\n")
	out, err = run(t, "evaluate", vrp, stale)
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded cost: 15\n")

	bad := writeFile(t, "bad.sol", "Route #1: 1 2 3\n")
	out, err = run(t, "evaluate", vrp, bad)
	require.ErrorIs(t, err, opt.ErrInfeasibleSolution)
	assert.Contains(t, out, "Feasible: false\n")
	assert.Contains(t, out, "route 0 load 3 over capacity")
	assert.Contains(t, out, "customer 4 not served")

	unknown := writeFile(t, "unknown.sol", "Route #1: 1 9\n")
	_, err = run(t, "evaluate", vrp, unknown)
	require.ErrorIs(t, err, opt.ErrNodeOutOfRange)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "vrpsolve "), out)
}

func TestWatch(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		for {
			var m wsMessage
			if err := c.ReadJSON(&m); err != nil {
				return
			}
			switch m.Type {
			case "connection_init":
				_ = c.WriteJSON(wsMessage{Type: "connection_ack"})
			case "subscribe":
				var sub struct {
					InstanceID string `json:"instanceId"`
				}
				_ = json.Unmarshal(m.Payload, &sub)
				for _, d := range []float64{12, 14} {
					payload, _ := json.Marshal(map[string]any{
						"type": "solution.created",
						"data": map[string]any{"instanceId": sub.InstanceID, "distance": d},
					})
					_ = c.WriteJSON(wsMessage{Type: "next", ID: m.ID, Payload: payload})
				}
			}
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	out, err := run(t, "watch", "--url", url, "--instance", "i1", "-n", "2", "--timeout", "5s")
	require.NoError(t, err)
	assert.Equal(t,
		"solution.created {\"distance\":12,\"instanceId\":\"i1\"}\n"+
			"solution.created {\"distance\":14,\"instanceId\":\"i1\"}\n", out)

	_, err = run(t, "watch", "--url", srv.URL)
	require.ErrorContains(t, err, "ws://")
}

package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"routebuilder/internal/model"
)

// Memory is a simple in-memory store used when no database is configured.
type Memory struct {
	mu        sync.Mutex
	instances map[string]model.Instance
	instIDs   []string // creation order
	solutions map[string]model.SolutionRecord
	solIDs    []string
}

func NewMemory() *Memory {
	return &Memory{
		instances: map[string]model.Instance{},
		solutions: map[string]model.SolutionRecord{},
	}
}

// newID returns a time-ordered UUID so that ID order is creation order.
func newID() string { return uuid.Must(uuid.NewV7()).String() }

func (m *Memory) CreateInstance(ctx context.Context, in model.InstanceIn) (model.Instance, error) {
	inst := model.Instance{
		ID:        newID(),
		Name:      in.Name,
		Nodes:     slices.Clone(in.Nodes),
		Depot:     in.Depot,
		Capacity:  in.Capacity,
		CreatedAt: time.Now().UTC(),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instances[inst.ID] = inst
	m.instIDs = append(m.instIDs, inst.ID)
	return inst, nil
}

func (m *Memory) GetInstance(ctx context.Context, id string) (model.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.instances[id]
	if !ok {
		return model.Instance{}, ErrNotFound
	}
	inst.Nodes = slices.Clone(inst.Nodes)
	return inst, nil
}

func (m *Memory) ListInstances(ctx context.Context, cursor string, limit int) ([]model.InstanceSummary, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	limit = clampLimit(limit)
	out := []model.InstanceSummary{}
	var last string
	for _, id := range m.instIDs {
		if cursor != "" && id <= cursor {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, m.instances[id].Summary())
		last = id
	}
	next := ""
	if len(out) == limit {
		next = last
	}
	return out, next, nil
}

func (m *Memory) DeleteInstance(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.instances[id]; !ok {
		return ErrNotFound
	}
	delete(m.instances, id)
	m.instIDs = slices.DeleteFunc(m.instIDs, func(x string) bool { return x == id })
	m.solIDs = slices.DeleteFunc(m.solIDs, func(x string) bool {
		if m.solutions[x].InstanceID == id {
			delete(m.solutions, x)
			return true
		}
		return false
	})
	return nil
}

func (m *Memory) SaveSolution(ctx context.Context, rec model.SolutionRecord) (model.SolutionRecord, error) {
	rec.ID = newID()
	rec.CreatedAt = time.Now().UTC()
	rec.Routes = cloneRoutes(rec.Routes)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.solutions[rec.ID] = rec
	m.solIDs = append(m.solIDs, rec.ID)
	return rec, nil
}

func (m *Memory) GetSolution(ctx context.Context, id string) (model.SolutionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.solutions[id]
	if !ok {
		return model.SolutionRecord{}, ErrNotFound
	}
	rec.Routes = cloneRoutes(rec.Routes)
	return rec, nil
}

func (m *Memory) ListSolutions(ctx context.Context, instanceID, cursor string, limit int) ([]model.SolutionRecord, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	limit = clampLimit(limit)
	out := []model.SolutionRecord{}
	var last string
	for _, id := range m.solIDs {
		if cursor != "" && id <= cursor {
			continue
		}
		rec := m.solutions[id]
		if instanceID != "" && rec.InstanceID != instanceID {
			continue
		}
		if len(out) == limit {
			break
		}
		rec.Routes = cloneRoutes(rec.Routes)
		out = append(out, rec)
		last = id
	}
	next := ""
	if len(out) == limit {
		next = last
	}
	return out, next, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

func cloneRoutes(rs [][]int) [][]int {
	out := make([][]int, len(rs))
	for i, r := range rs {
		out[i] = slices.Clone(r)
		if out[i] == nil {
			out[i] = []int{}
		}
	}
	return out
}

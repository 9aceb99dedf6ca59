package store

import (
	"context"
	"errors"

	"routebuilder/internal/model"
)

// Store is the persistence interface used by the API server.
type Store interface {
	// Instances
	CreateInstance(ctx context.Context, in model.InstanceIn) (model.Instance, error)
	GetInstance(ctx context.Context, id string) (model.Instance, error)
	ListInstances(ctx context.Context, cursor string, limit int) ([]model.InstanceSummary, string, error)
	// DeleteInstance removes the instance and every solution stored for it.
	DeleteInstance(ctx context.Context, id string) error

	// Solutions
	SaveSolution(ctx context.Context, rec model.SolutionRecord) (model.SolutionRecord, error)
	GetSolution(ctx context.Context, id string) (model.SolutionRecord, error)
	// ListSolutions filters by instance when instanceID is non-empty.
	ListSolutions(ctx context.Context, instanceID, cursor string, limit int) ([]model.SolutionRecord, string, error)

	Ping(ctx context.Context) error
	Close() error
}

var ErrNotFound = errors.New("store: not found")

const (
	defaultLimit = 100
	maxLimit     = 500
)

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxLimit {
		return defaultLimit
	}
	return limit
}

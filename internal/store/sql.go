package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"routebuilder/internal/model"
)

// Dialect selects placeholder syntax and connection setup.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// SQL is a Store over database/sql. The same schema and queries serve
// Postgres (pgx) and SQLite (modernc); queries are written with '?'
// placeholders and rebound for Postgres.
type SQL struct {
	db      *sql.DB
	dialect Dialect
}

// OpenPostgres connects to dsn through the pgx stdlib driver.
func OpenPostgres(ctx context.Context, dsn string) (*SQL, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQL{db: db, dialect: Postgres}, nil
}

// OpenSQLite opens (or creates) the database file at path; ":memory:" gives
// a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQL, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection: keeps ":memory:" a single database and serialises writers
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}
	return &SQL{db: db, dialect: SQLite}, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS instances (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		depot      INTEGER NOT NULL,
		capacity   DOUBLE PRECISION NOT NULL,
		nodes      TEXT NOT NULL,
		customers  INTEGER NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS solutions (
		id          TEXT PRIMARY KEY,
		instance_id TEXT,
		algorithm   TEXT NOT NULL,
		routes      TEXT NOT NULL,
		distance    DOUBLE PRECISION NOT NULL,
		vehicles    INTEGER NOT NULL,
		stats       TEXT NOT NULL,
		elapsed_ms  DOUBLE PRECISION NOT NULL,
		created_at  BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS solutions_instance_idx ON solutions (instance_id, id)`,
}

// Migrate creates the tables if they do not exist yet.
func (s *SQL) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

// q rewrites '?' placeholders to $1..$n for Postgres.
func (s *SQL) q(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQL) CreateInstance(ctx context.Context, in model.InstanceIn) (model.Instance, error) {
	inst := model.Instance{
		ID:        newID(),
		Name:      in.Name,
		Nodes:     in.Nodes,
		Depot:     in.Depot,
		Capacity:  in.Capacity,
		CreatedAt: time.Now().UTC(),
	}
	nodes, err := json.Marshal(inst.Nodes)
	if err != nil {
		return model.Instance{}, err
	}
	_, err = s.db.ExecContext(ctx, s.q(`INSERT INTO instances (id, name, depot, capacity, nodes, customers, created_at) VALUES (?,?,?,?,?,?,?)`),
		inst.ID, inst.Name, inst.Depot, inst.Capacity, string(nodes), inst.Problem().NumCustomers(), inst.CreatedAt.UnixNano())
	if err != nil {
		return model.Instance{}, fmt.Errorf("store: create instance: %w", err)
	}
	return inst, nil
}

func (s *SQL) GetInstance(ctx context.Context, id string) (model.Instance, error) {
	var (
		inst  model.Instance
		nodes string
		ts    int64
	)
	err := s.db.QueryRowContext(ctx, s.q(`SELECT id, name, depot, capacity, nodes, created_at FROM instances WHERE id=?`), id).
		Scan(&inst.ID, &inst.Name, &inst.Depot, &inst.Capacity, &nodes, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Instance{}, ErrNotFound
	}
	if err != nil {
		return model.Instance{}, fmt.Errorf("store: get instance: %w", err)
	}
	if err := json.Unmarshal([]byte(nodes), &inst.Nodes); err != nil {
		return model.Instance{}, fmt.Errorf("store: decode nodes of %s: %w", id, err)
	}
	inst.CreatedAt = time.Unix(0, ts).UTC()
	return inst, nil
}

func (s *SQL) ListInstances(ctx context.Context, cursor string, limit int) ([]model.InstanceSummary, string, error) {
	limit = clampLimit(limit)
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT id, name, customers, capacity, created_at FROM instances WHERE id > ? ORDER BY id LIMIT ?`), cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("store: list instances: %w", err)
	}
	defer rows.Close()
	out := []model.InstanceSummary{}
	var last string
	for rows.Next() {
		var (
			it model.InstanceSummary
			ts int64
		)
		if err := rows.Scan(&it.ID, &it.Name, &it.Customers, &it.Capacity, &ts); err != nil {
			return nil, "", fmt.Errorf("store: scan instance: %w", err)
		}
		it.CreatedAt = time.Unix(0, ts).UTC()
		out = append(out, it)
		last = it.ID
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("store: list instances: %w", err)
	}
	next := ""
	if len(out) == limit {
		next = last
	}
	return out, next, nil
}

func (s *SQL) DeleteInstance(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM solutions WHERE instance_id=?`), id); err != nil {
		return fmt.Errorf("store: delete solutions: %w", err)
	}
	res, err := tx.ExecContext(ctx, s.q(`DELETE FROM instances WHERE id=?`), id)
	if err != nil {
		return fmt.Errorf("store: delete instance: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (s *SQL) SaveSolution(ctx context.Context, rec model.SolutionRecord) (model.SolutionRecord, error) {
	rec.ID = newID()
	rec.CreatedAt = time.Now().UTC()
	rec.Routes = cloneRoutes(rec.Routes)
	routes, err := json.Marshal(rec.Routes)
	if err != nil {
		return model.SolutionRecord{}, err
	}
	stats, err := json.Marshal(rec.Stats)
	if err != nil {
		return model.SolutionRecord{}, err
	}
	var instanceID any
	if rec.InstanceID != "" {
		instanceID = rec.InstanceID
	}
	_, err = s.db.ExecContext(ctx, s.q(`INSERT INTO solutions (id, instance_id, algorithm, routes, distance, vehicles, stats, elapsed_ms, created_at) VALUES (?,?,?,?,?,?,?,?,?)`),
		rec.ID, instanceID, rec.Algorithm, string(routes), rec.Distance, rec.Vehicles, string(stats), rec.ElapsedMs, rec.CreatedAt.UnixNano())
	if err != nil {
		return model.SolutionRecord{}, fmt.Errorf("store: save solution: %w", err)
	}
	return rec, nil
}

const solutionColumns = `id, instance_id, algorithm, routes, distance, vehicles, stats, elapsed_ms, created_at`

type scanner interface{ Scan(dest ...any) error }

func scanSolution(sc scanner) (model.SolutionRecord, error) {
	var (
		rec           model.SolutionRecord
		instanceID    sql.NullString
		routes, stats string
		ts            int64
	)
	if err := sc.Scan(&rec.ID, &instanceID, &rec.Algorithm, &routes, &rec.Distance, &rec.Vehicles, &stats, &rec.ElapsedMs, &ts); err != nil {
		return rec, err
	}
	rec.InstanceID = instanceID.String
	rec.CreatedAt = time.Unix(0, ts).UTC()
	if err := json.Unmarshal([]byte(routes), &rec.Routes); err != nil {
		return rec, fmt.Errorf("store: decode routes of %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(stats), &rec.Stats); err != nil {
		return rec, fmt.Errorf("store: decode stats of %s: %w", rec.ID, err)
	}
	return rec, nil
}

func (s *SQL) GetSolution(ctx context.Context, id string) (model.SolutionRecord, error) {
	rec, err := scanSolution(s.db.QueryRowContext(ctx, s.q(`SELECT `+solutionColumns+` FROM solutions WHERE id=?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.SolutionRecord{}, ErrNotFound
	}
	if err != nil {
		return model.SolutionRecord{}, fmt.Errorf("store: get solution: %w", err)
	}
	return rec, nil
}

func (s *SQL) ListSolutions(ctx context.Context, instanceID, cursor string, limit int) ([]model.SolutionRecord, string, error) {
	limit = clampLimit(limit)
	var (
		rows *sql.Rows
		err  error
	)
	if instanceID != "" {
		rows, err = s.db.QueryContext(ctx, s.q(`SELECT `+solutionColumns+` FROM solutions WHERE instance_id=? AND id > ? ORDER BY id LIMIT ?`), instanceID, cursor, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, s.q(`SELECT `+solutionColumns+` FROM solutions WHERE id > ? ORDER BY id LIMIT ?`), cursor, limit)
	}
	if err != nil {
		return nil, "", fmt.Errorf("store: list solutions: %w", err)
	}
	defer rows.Close()
	out := []model.SolutionRecord{}
	var last string
	for rows.Next() {
		rec, err := scanSolution(rows)
		if err != nil {
			return nil, "", err
		}
		out = append(out, rec)
		last = rec.ID
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("store: list solutions: %w", err)
	}
	next := ""
	if len(out) == limit {
		next = last
	}
	return out, next, nil
}

func (s *SQL) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQL) Close() error { return s.db.Close() }

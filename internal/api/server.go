package api

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/tevino/abool"
	"golang.org/x/time/rate"

	"routebuilder/internal/config"
	"routebuilder/internal/metrics"
	"routebuilder/internal/opt"
	"routebuilder/internal/store"
)

type Server struct {
	Store  store.Store
	Broker EventBroker
	Opts   opt.Options
	Log    zerolog.Logger

	cfg     config.Config
	limiter *rate.Limiter // nil when unlimited
	ready   *abool.AtomicBool

	draining  chan struct{} // closed by Drain
	drainOnce sync.Once
}

// NewServer wires a Server from cfg. Without DATABASE_URL or SQLITE_PATH it
// uses the in-memory store; without REDIS_URL (or when Redis is unreachable)
// the in-process broker.
func NewServer(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Server, error) {
	var st store.Store
	switch {
	case cfg.DatabaseURL != "":
		sp, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		st = sp
		if cfg.Migrate {
			if err := sp.Migrate(ctx); err != nil {
				_ = sp.Close()
				return nil, err
			}
		}
	case cfg.SQLitePath != "":
		sl, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		// SQLite files are local and private, so the schema is always ensured.
		if err := sl.Migrate(ctx); err != nil {
			_ = sl.Close()
			return nil, err
		}
		st = sl
	default:
		st = store.NewMemory()
	}

	var broker EventBroker = NewBroker()
	if cfg.RedisURL != "" {
		rb, err := NewRedisBroker(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, using in-process event broker")
		} else {
			broker = rb
		}
	}

	s := &Server{
		Store:  st,
		Broker: broker,
		Opts:   cfg.OptimizerOptions(),
		Log:    log,
		cfg:    cfg,
		ready:  abool.New(),

		draining: make(chan struct{}),
	}
	if cfg.RateRPS > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateRPS), cfg.RateBurst)
	}
	metrics.RegisterDefault()
	return s, nil
}

// Routes returns the complete HTTP handler including middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/instances", s.CreateInstanceHandler)
	mux.HandleFunc("GET /v1/instances", s.ListInstancesHandler)
	mux.HandleFunc("POST /v1/instances/import", s.ImportInstanceHandler)
	mux.HandleFunc("GET /v1/instances/{id}", s.GetInstanceHandler)
	mux.HandleFunc("DELETE /v1/instances/{id}", s.DeleteInstanceHandler)

	mux.Handle("POST /v1/solve", s.rateLimit(http.HandlerFunc(s.SolveHandler)))
	mux.Handle("POST /v1/compare", s.rateLimit(http.HandlerFunc(s.CompareHandler)))
	mux.HandleFunc("POST /v1/evaluate", s.EvaluateHandler)
	mux.HandleFunc("GET /v1/algorithms", s.AlgorithmsHandler)

	mux.HandleFunc("GET /v1/solutions", s.ListSolutionsHandler)
	mux.HandleFunc("GET /v1/solutions/{id}", s.GetSolutionHandler)

	mux.HandleFunc("GET /v1/events/stream", s.EventStreamHandler)
	mux.HandleFunc("GET /v1/events/ws", s.EventWSHandler)

	mux.HandleFunc("GET /healthz", s.HealthHandler)
	mux.HandleFunc("GET /readyz", s.ReadyHandler)
	mux.HandleFunc("GET /debug/info", s.DebugJSON)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return s.logMiddleware(s.metricsMiddleware(mux))
}

// SetReady flips the readiness reported by /readyz.
func (s *Server) SetReady(v bool) { s.ready.SetTo(v) }

// Drain marks the server not ready and ends every open event stream so that
// http.Server.Shutdown does not wait on them. Register it with
// RegisterOnShutdown. Safe to call more than once.
func (s *Server) Drain() {
	s.drainOnce.Do(func() {
		s.SetReady(false)
		close(s.draining)
	})
}

// Close releases the store and broker.
func (s *Server) Close() error {
	return errors.Join(s.Broker.Close(), s.Store.Close())
}

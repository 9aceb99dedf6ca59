package api

import (
	"net/http"
	"time"

	"routebuilder/internal/buildinfo"
	"routebuilder/internal/opt"
)

func (s *Server) DebugJSON(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{
		"build":      buildinfo.Info(),
		"time":       time.Now().UTC().Format(time.RFC3339),
		"algorithms": opt.Algorithms(),
		"config": map[string]any{
			"PORT":                 s.cfg.Port,
			"RATE_RPS":             s.cfg.RateRPS,
			"RATE_BURST":           s.cfg.RateBurst,
			"DISTANCE_TABLE_MIN":   s.Opts.TableMin,
			"PARALLEL_SAVINGS_MIN": s.Opts.ParallelMin,
			"MAX_CUSTOMERS":        s.cfg.MaxCustomers,
			"HAS_DATABASE_URL":     s.cfg.DatabaseURL != "",
			"HAS_SQLITE_PATH":      s.cfg.SQLitePath != "",
			"HAS_REDIS_URL":        s.cfg.RedisURL != "",
		},
	}
	writeJSON(w, http.StatusOK, info)
}

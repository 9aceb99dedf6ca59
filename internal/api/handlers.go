package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"routebuilder/internal/integrations"
	"routebuilder/internal/integrations/csvnodes"
	"routebuilder/internal/integrations/cvrplib"
	"routebuilder/internal/metrics"
	"routebuilder/internal/model"
	"routebuilder/internal/opt"
)

// Instances

func (s *Server) CreateInstanceHandler(w http.ResponseWriter, r *http.Request) {
	var in model.InstanceIn
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := in.Problem()
	if err == nil {
		err = s.checkSize(p)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	inst, err := s.Store.CreateInstance(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inst)
}

func (s *Server) ListInstancesHandler(w http.ResponseWriter, r *http.Request) {
	cursor, limit, err := pageParams(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid query", err.Error(), r.URL.Path)
		return
	}
	items, next, err := s.Store.ListInstances(r.Context(), cursor, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.Page[model.InstanceSummary]{Items: items, NextCursor: next})
}

func (s *Server) GetInstanceHandler(w http.ResponseWriter, r *http.Request) {
	inst, err := s.Store.GetInstance(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

func (s *Server) DeleteInstanceHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.Store.DeleteInstance(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.Broker.Publish(id, Event{Type: EventInstanceDeleted, Data: map[string]any{"instanceId": id}})
	w.WriteHeader(http.StatusNoContent)
}

// ImportInstanceHandler stores an instance sent in an external file format:
// ?format=cvrplib (default) or ?format=csv&capacity=C[&depot=D][&name=N].
func (s *Server) ImportInstanceHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var reader integrations.InstanceReader
	switch strings.ToLower(q.Get("format")) {
	case "", "cvrplib", "vrp":
		reader = cvrplib.Format{}
	case "csv":
		capacity, err := strconv.ParseFloat(q.Get("capacity"), 64)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid query", "csv import needs a numeric capacity", r.URL.Path)
			return
		}
		depot := 0
		if v := q.Get("depot"); v != "" {
			if depot, err = strconv.Atoi(v); err != nil {
				writeProblem(w, http.StatusBadRequest, "Invalid query", "depot must be an integer", r.URL.Path)
				return
			}
		}
		reader = csvnodes.Reader{InstanceName: q.Get("name"), Capacity: capacity, Depot: depot}
	default:
		writeProblem(w, http.StatusBadRequest, "Invalid query", "format must be cvrplib or csv", r.URL.Path)
		return
	}
	p, err := reader.ReadInstance(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err == nil {
		err = s.checkSize(p)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if name := q.Get("name"); name != "" {
		p.Name = name
	}
	inst, err := s.Store.CreateInstance(r.Context(), model.InstanceIn{Name: p.Name, Nodes: p.Nodes, Depot: p.Depot, Capacity: p.Capacity})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.Log.Info().Str("instance", inst.ID).Str("format", reader.Name()).Int("customers", p.NumCustomers()).Msg("instance imported")
	writeJSON(w, http.StatusCreated, inst)
}

// resolveProblem loads the referenced instance or validates the inline one.
// Exactly one of id and inline must be set.
func (s *Server) resolveProblem(ctx context.Context, id string, inline *model.InstanceIn) (*opt.Problem, error) {
	var p *opt.Problem
	switch {
	case id != "" && inline != nil:
		return nil, errBadRequest("give either instanceId or instance, not both")
	case id != "":
		inst, err := s.Store.GetInstance(ctx, id)
		if err != nil {
			return nil, err
		}
		p = inst.Problem()
	case inline != nil:
		var err error
		if p, err = inline.Problem(); err != nil {
			return nil, err
		}
	default:
		return nil, errBadRequest("instanceId or instance is required")
	}
	// stored instances are checked again in case the limit was lowered
	if err := s.checkSize(p); err != nil {
		return nil, err
	}
	return p, nil
}

// tooLargeError reports an instance above the MAX_CUSTOMERS limit.
type tooLargeError struct {
	customers, limit int
}

func (e tooLargeError) Error() string {
	return fmt.Sprintf("instance has %d customers, the limit is %d", e.customers, e.limit)
}

func (s *Server) checkSize(p *opt.Problem) error {
	if n := p.NumCustomers(); s.cfg.MaxCustomers > 0 && n > s.cfg.MaxCustomers {
		return tooLargeError{customers: n, limit: s.cfg.MaxCustomers}
	}
	return nil
}

type badRequestError string

func errBadRequest(msg string) error { return badRequestError(msg) }

func (e badRequestError) Error() string { return string(e) }

func (s *Server) writeResolveError(w http.ResponseWriter, r *http.Request, err error) {
	var br badRequestError
	if errors.As(err, &br) {
		writeProblem(w, http.StatusBadRequest, "Invalid request", br.Error(), r.URL.Path)
		return
	}
	writeError(w, r, err)
}

// Construction

// construct runs one heuristic and records metrics for it.
func (s *Server) construct(algo opt.Algorithm, p *opt.Problem) (opt.Result, error) {
	res, err := opt.Construct(algo, p, s.Opts)
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, opt.ErrInvalidInstance):
		outcome = "invalid"
	case errors.Is(err, opt.ErrInfeasibleDemand):
		outcome = "infeasible"
	default:
		outcome = "error"
	}
	metrics.Constructions.WithLabelValues(string(algo), outcome).Inc()
	if err != nil {
		return res, err
	}
	metrics.ConstructionSeconds.WithLabelValues(string(algo)).Observe(res.Elapsed.Seconds())
	metrics.SolutionDistance.WithLabelValues(string(algo)).Observe(res.Distance)
	metrics.SolutionVehicles.WithLabelValues(string(algo)).Observe(float64(res.Solution.Vehicles()))
	metrics.InstanceCustomers.Observe(float64(p.NumCustomers()))
	return res, nil
}

func (s *Server) SolveHandler(w http.ResponseWriter, r *http.Request) {
	var req model.SolveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	algoName := req.Algorithm
	if algoName == "" {
		algoName = string(opt.SavingsAlgorithm)
	}
	algo, err := opt.ParseAlgorithm(algoName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.resolveProblem(r.Context(), req.InstanceID, req.Instance)
	if err != nil {
		s.writeResolveError(w, r, err)
		return
	}
	res, err := s.construct(algo, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := s.Store.SaveSolution(r.Context(), model.NewSolutionRecord(req.InstanceID, res))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.Log.Info().
		Str("solution", rec.ID).
		Str("instance", req.InstanceID).
		Str("algorithm", rec.Algorithm).
		Float64("distance", rec.Distance).
		Int("vehicles", rec.Vehicles).
		Dur("elapsed", res.Elapsed).
		Msg("solution constructed")
	topic := req.InstanceID
	if topic == "" {
		topic = AllTopic
	}
	s.Broker.Publish(topic, Event{Type: EventSolutionCreated, Data: map[string]any{
		"solutionId": rec.ID,
		"instanceId": rec.InstanceID,
		"algorithm":  rec.Algorithm,
		"distance":   rec.Distance,
		"vehicles":   rec.Vehicles,
	}})
	writeJSON(w, http.StatusCreated, rec)
}

// EvaluateHandler scores a client-supplied solution and lists every broken
// invariant. Routes naming unknown nodes cannot be scored and get a 422.
func (s *Server) EvaluateHandler(w http.ResponseWriter, r *http.Request) {
	var req model.EvaluateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.resolveProblem(r.Context(), req.InstanceID, req.Instance)
	if err != nil {
		s.writeResolveError(w, r, err)
		return
	}
	sol := opt.NewSolution(req.Routes)
	resp := model.EvaluateResponse{RouteDistances: make([]float64, 0, len(sol.Routes)), Vehicles: sol.Vehicles()}
	for _, rt := range sol.Routes {
		d, err := opt.RouteDistance(rt, p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.RouteDistances = append(resp.RouteDistances, d)
		resp.Distance += d
	}
	var ve *opt.ViolationError
	switch err := opt.Verify(sol, p); {
	case err == nil:
		resp.Feasible = true
	case errors.As(err, &ve):
		resp.Violations = ve.Violations
	default:
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) CompareHandler(w http.ResponseWriter, r *http.Request) {
	var req model.CompareRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.resolveProblem(r.Context(), req.InstanceID, req.Instance)
	if err != nil {
		s.writeResolveError(w, r, err)
		return
	}
	var ref *opt.Solution
	if req.Reference != nil {
		sol := opt.NewSolution(req.Reference)
		ref = &sol
	}
	rep, err := opt.NewReport(p, ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	for _, algo := range opt.Algorithms() {
		res, err := s.construct(algo, p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		rep.Add(res)
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) AlgorithmsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"algorithms": opt.Algorithms()})
}

// Solutions

func (s *Server) ListSolutionsHandler(w http.ResponseWriter, r *http.Request) {
	cursor, limit, err := pageParams(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid query", err.Error(), r.URL.Path)
		return
	}
	items, next, err := s.Store.ListSolutions(r.Context(), r.URL.Query().Get("instanceId"), cursor, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.Page[model.SolutionRecord]{Items: items, NextCursor: next})
}

func (s *Server) GetSolutionHandler(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Store.GetSolution(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Health

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	if !s.ready.IsSet() {
		writeProblem(w, http.StatusServiceUnavailable, "Not Ready", "server is starting or shutting down", r.URL.Path)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
	defer cancel()
	if err := s.Store.Ping(ctx); err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "Not Ready", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"routebuilder/internal/integrations/csvnodes"
	"routebuilder/internal/integrations/cvrplib"
	"routebuilder/internal/opt"
	"routebuilder/internal/store"
)

// Problem represents an RFC7807 problem details response body.
type Problem struct {
	Type       string          `json:"type"`
	Title      string          `json:"title"`
	Status     int             `json:"status"`
	Detail     string          `json:"detail,omitempty"`
	Instance   string          `json:"instance,omitempty"`
	Violations []opt.Violation `json:"violations,omitempty"`
}

const maxBodyBytes = 32 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, status int, title, detail, instance string) {
	writeJSON(w, status, Problem{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	})
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *opt.ViolationError
		tl tooLargeError
	)
	switch {
	case errors.As(err, &tl):
		writeProblem(w, http.StatusRequestEntityTooLarge, "Instance too large", err.Error(), r.URL.Path)
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, Problem{
			Type: "about:blank", Title: "Infeasible solution", Status: http.StatusUnprocessableEntity,
			Detail: err.Error(), Instance: r.URL.Path, Violations: ve.Violations,
		})
	case errors.Is(err, store.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error(), r.URL.Path)
	case errors.Is(err, opt.ErrInvalidInstance):
		writeProblem(w, http.StatusBadRequest, "Invalid instance", err.Error(), r.URL.Path)
	case errors.Is(err, opt.ErrUnknownAlgorithm):
		writeProblem(w, http.StatusBadRequest, "Unknown algorithm", err.Error(), r.URL.Path)
	case errors.Is(err, cvrplib.ErrMalformed), errors.Is(err, cvrplib.ErrUnsupported), errors.Is(err, csvnodes.ErrMalformed):
		writeProblem(w, http.StatusBadRequest, "Unreadable instance", err.Error(), r.URL.Path)
	case errors.Is(err, opt.ErrInfeasibleDemand):
		writeProblem(w, http.StatusUnprocessableEntity, "Infeasible demand", err.Error(), r.URL.Path)
	case errors.Is(err, opt.ErrNodeOutOfRange):
		writeProblem(w, http.StatusUnprocessableEntity, "Node out of range", err.Error(), r.URL.Path)
	default:
		writeProblem(w, http.StatusInternalServerError, "Internal error", err.Error(), r.URL.Path)
	}
}

// decodeJSON reads a bounded JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return false
	}
	return true
}

// pageParams reads ?cursor= and ?limit=.
func pageParams(r *http.Request) (cursor string, limit int, err error) {
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			return "", 0, fmt.Errorf("limit must be a non-negative integer")
		}
	}
	return q.Get("cursor"), limit, nil
}

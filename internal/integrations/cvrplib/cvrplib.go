// Package cvrplib reads and writes the CVRPLIB instance (.vrp) and solution
// (.sol) text formats.
//
// Node ids in a .vrp file are 1-based and become 0-based indices. Customer
// numbers in a .sol file are already 0-based with the depot as 0, which
// holds for every instance whose depot is node 1.
package cvrplib

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"routebuilder/internal/integrations"
	"routebuilder/internal/opt"
)

var (
	ErrMalformed   = errors.New("cvrplib: malformed input")
	ErrUnsupported = errors.New("cvrplib: unsupported instance")
)

// Format implements the integration interfaces for CVRPLIB files.
type Format struct{}

var (
	_ integrations.InstanceReader = Format{}
	_ integrations.SolutionReader = Format{}
	_ integrations.SolutionWriter = Format{}
)

func (Format) Name() string { return "cvrplib" }

func (Format) ReadInstance(r io.Reader) (*opt.Problem, error) { return ParseInstance(r) }

func (Format) ReadSolution(r io.Reader) (opt.Solution, float64, bool, error) {
	return ParseSolution(r)
}

func (Format) WriteSolution(w io.Writer, sol opt.Solution, cost float64) error {
	return WriteSolution(w, sol, cost)
}

type section int

const (
	secHeader section = iota
	secCoords
	secDemands
	secDepots
)

// ParseInstance reads a .vrp file. Only EUC_2D instances with a single
// depot are accepted.
func ParseInstance(r io.Reader) (*opt.Problem, error) {
	var (
		name     string
		dim      = -1
		capacity = -1.0
		coords   = map[int][2]float64{}
		demands  = map[int]int{}
		depots   []int
		sec      = secHeader
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		switch upper := strings.ToUpper(text); {
		case upper == "EOF":
			sec = -1
		case upper == "NODE_COORD_SECTION":
			sec = secCoords
			continue
		case upper == "DEMAND_SECTION":
			sec = secDemands
			continue
		case upper == "DEPOT_SECTION":
			sec = secDepots
			continue
		case strings.HasSuffix(upper, "_SECTION"):
			return nil, fmt.Errorf("%w: section %s", ErrUnsupported, text)
		}
		if sec < 0 {
			break
		}

		if key, val, ok := strings.Cut(text, ":"); ok && sec == secHeader || ok && isKeyword(key) {
			key = strings.ToUpper(strings.TrimSpace(key))
			val = strings.TrimSpace(val)
			switch key {
			case "NAME":
				name = val
			case "DIMENSION":
				n, err := strconv.Atoi(val)
				if err != nil || n < 1 {
					return nil, fmt.Errorf("%w: line %d: bad DIMENSION %q", ErrMalformed, line, val)
				}
				dim = n
			case "CAPACITY":
				c, err := strconv.ParseFloat(val, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: bad CAPACITY %q", ErrMalformed, line, val)
				}
				capacity = c
			case "EDGE_WEIGHT_TYPE":
				if !strings.EqualFold(val, "EUC_2D") {
					return nil, fmt.Errorf("%w: edge weight type %s", ErrUnsupported, val)
				}
			case "TYPE":
				if !strings.EqualFold(val, "CVRP") {
					return nil, fmt.Errorf("%w: type %s", ErrUnsupported, val)
				}
			}
			sec = secHeader
			continue
		}

		f := strings.Fields(text)
		switch sec {
		case secCoords:
			if len(f) != 3 {
				return nil, fmt.Errorf("%w: line %d: want \"id x y\"", ErrMalformed, line)
			}
			id, err := strconv.Atoi(f[0])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
			}
			x, err1 := strconv.ParseFloat(f[1], 64)
			y, err2 := strconv.ParseFloat(f[2], 64)
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("%w: line %d: bad coordinates", ErrMalformed, line)
			}
			coords[id] = [2]float64{x, y}
		case secDemands:
			if len(f) != 2 {
				return nil, fmt.Errorf("%w: line %d: want \"id demand\"", ErrMalformed, line)
			}
			id, err1 := strconv.Atoi(f[0])
			d, err2 := strconv.Atoi(f[1])
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("%w: line %d: bad demand entry", ErrMalformed, line)
			}
			demands[id] = d
		case secDepots:
			for _, tok := range f {
				id, err := strconv.Atoi(tok)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: bad depot %q", ErrMalformed, line, tok)
				}
				if id != -1 {
					depots = append(depots, id)
				}
			}
		default:
			return nil, fmt.Errorf("%w: line %d: unexpected %q", ErrMalformed, line, text)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("cvrplib: read: %w", err)
	}

	switch {
	case dim < 0:
		return nil, fmt.Errorf("%w: missing DIMENSION", ErrMalformed)
	case capacity < 0:
		return nil, fmt.Errorf("%w: missing CAPACITY", ErrMalformed)
	case len(coords) != dim:
		return nil, fmt.Errorf("%w: %d coordinates for DIMENSION %d", ErrMalformed, len(coords), dim)
	case len(demands) != 0 && len(demands) != dim:
		return nil, fmt.Errorf("%w: %d demands for DIMENSION %d", ErrMalformed, len(demands), dim)
	case len(depots) > 1:
		return nil, fmt.Errorf("%w: %d depots", ErrUnsupported, len(depots))
	}
	depot := 1
	if len(depots) == 1 {
		depot = depots[0]
	}

	nodes := make([]opt.Node, dim)
	for id := 1; id <= dim; id++ {
		c, ok := coords[id]
		if !ok {
			return nil, fmt.Errorf("%w: no coordinates for node %d", ErrMalformed, id)
		}
		nodes[id-1] = opt.Node{X: c[0], Y: c[1], Demand: demands[id]}
	}
	p := &opt.Problem{Name: name, Nodes: nodes, Depot: depot - 1, Capacity: capacity}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func isKeyword(key string) bool {
	switch strings.ToUpper(strings.TrimSpace(key)) {
	case "NAME", "COMMENT", "TYPE", "DIMENSION", "CAPACITY", "EDGE_WEIGHT_TYPE":
		return true
	}
	return false
}

// ParseSolution reads a .sol file. hasCost reports whether a Cost line was
// present.
func ParseSolution(r io.Reader) (sol opt.Solution, cost float64, hasCost bool, err error) {
	var routes [][]int
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		switch {
		case text == "":
		case strings.HasPrefix(strings.ToLower(text), "route"):
			_, rest, ok := strings.Cut(text, ":")
			if !ok {
				return opt.Solution{}, 0, false, fmt.Errorf("%w: line %d: route without ':'", ErrMalformed, line)
			}
			stops := []int{}
			for _, tok := range strings.Fields(rest) {
				c, err := strconv.Atoi(tok)
				if err != nil {
					return opt.Solution{}, 0, false, fmt.Errorf("%w: line %d: bad customer %q", ErrMalformed, line, tok)
				}
				stops = append(stops, c)
			}
			routes = append(routes, stops)
		case strings.HasPrefix(strings.ToLower(text), "cost"):
			f := strings.Fields(text)
			if len(f) != 2 {
				return opt.Solution{}, 0, false, fmt.Errorf("%w: line %d: bad cost line", ErrMalformed, line)
			}
			c, err := strconv.ParseFloat(f[1], 64)
			if err != nil {
				return opt.Solution{}, 0, false, fmt.Errorf("%w: line %d: bad cost %q", ErrMalformed, line, f[1])
			}
			cost, hasCost = c, true
		default:
			return opt.Solution{}, 0, false, fmt.Errorf("%w: line %d: unexpected %q", ErrMalformed, line, text)
		}
	}
	if err := sc.Err(); err != nil {
		return opt.Solution{}, 0, false, fmt.Errorf("cvrplib: read: %w", err)
	}
	if routes == nil {
		routes = [][]int{}
	}
	return opt.NewSolution(routes), cost, hasCost, nil
}

// WriteSolution renders sol in .sol format, routes numbered from 1.
func WriteSolution(w io.Writer, sol opt.Solution, cost float64) error {
	bw := bufio.NewWriter(w)
	for k, r := range sol.Routes {
		fmt.Fprintf(bw, "Route #%d:", k+1)
		for _, c := range r.Customers() {
			fmt.Fprintf(bw, " %d", c)
		}
		bw.WriteByte('\n')
	}
	fmt.Fprintf(bw, "Cost %s\n", strconv.FormatFloat(cost, 'f', -1, 64))
	return bw.Flush()
}

// LoadInstance parses the .vrp file at path.
func LoadInstance(path string) (*opt.Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseInstance(f)
}

// LoadSolution parses the .sol file at path.
func LoadSolution(path string) (opt.Solution, float64, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return opt.Solution{}, 0, false, err
	}
	defer f.Close()
	return ParseSolution(f)
}

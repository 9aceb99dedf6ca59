// Package csvnodes loads instances from plain CSV node lists.
package csvnodes

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"routebuilder/internal/integrations"
	"routebuilder/internal/opt"
)

var ErrMalformed = errors.New("csvnodes: malformed input")

// Reader parses "x,y,demand" rows, one node per row in index order. A first
// row whose x column is not a number is taken as a header. Lines starting
// with '#' are skipped.
type Reader struct {
	InstanceName string
	Capacity     float64
	Depot        int
}

var _ integrations.InstanceReader = Reader{}

func (r Reader) ReadInstance(in io.Reader) (*opt.Problem, error) {
	cr := csv.NewReader(in)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var nodes []opt.Node
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if len(rec) != 3 {
			return nil, fmt.Errorf("%w: row %d has %d columns, want 3", ErrMalformed, row, len(rec))
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil && row == 1 {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: bad x %q", ErrMalformed, row, rec[0])
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: bad y %q", ErrMalformed, row, rec[1])
		}
		d, err := strconv.Atoi(strings.TrimSpace(rec[2]))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: bad demand %q", ErrMalformed, row, rec[2])
		}
		nodes = append(nodes, opt.Node{X: x, Y: y, Demand: d})
	}
	p := &opt.Problem{Name: r.InstanceName, Nodes: nodes, Depot: r.Depot, Capacity: r.Capacity}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Name identifies the format.
func (r Reader) Name() string { return "csv" }

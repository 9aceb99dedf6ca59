package integrations

import (
	"io"

	"routebuilder/internal/opt"
)

// InstanceReader turns an external problem description into an opt.Problem.
// Implementations validate what they return.
type InstanceReader interface {
	Name() string
	ReadInstance(r io.Reader) (*opt.Problem, error)
}

// SolutionReader loads a reference solution, along with the cost the file
// claims for it when one is given.
type SolutionReader interface {
	ReadSolution(r io.Reader) (sol opt.Solution, cost float64, hasCost bool, err error)
}

// SolutionWriter renders a solution in the integration's file format.
type SolutionWriter interface {
	WriteSolution(w io.Writer, sol opt.Solution, cost float64) error
}

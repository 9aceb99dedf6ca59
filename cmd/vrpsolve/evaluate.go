package main

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"

	"routebuilder/internal/integrations/cvrplib"
	"routebuilder/internal/opt"
)

func (a *app) newEvaluateCmd() *cobra.Command {
	var f instanceFlags
	cmd := &cobra.Command{
		Use:   "evaluate <instance> <solution.sol>",
		Short: "Score a solution file and check it for feasibility",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := f.load(args[0])
			if err != nil {
				return err
			}
			sol, cost, hasCost, err := cvrplib.LoadSolution(args[1])
			if err != nil {
				return err
			}
			return a.runEvaluate(cmd.OutOrStdout(), p, sol, cost, hasCost)
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) runEvaluate(out io.Writer, p *opt.Problem, sol opt.Solution, cost float64, hasCost bool) error {
	d, err := opt.TotalDistance(sol, p)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Distance:", formatDistance(d))
	fmt.Fprintln(out, "Vehicles:", sol.Vehicles())
	if hasCost && math.Abs(cost-d) > 1e-6*math.Max(1, d) {
		fmt.Fprintln(out, "Recorded cost:", formatDistance(cost))
		a.log.Warn().Float64("recorded", cost).Float64("computed", d).Msg("recorded cost differs")
	}

	err = opt.Verify(sol, p)
	var ve *opt.ViolationError
	if errors.As(err, &ve) {
		fmt.Fprintln(out, "Feasible: false")
		for _, v := range ve.Violations {
			fmt.Fprintln(out, "  -", v.String())
		}
		return err
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Feasible: true")
	return nil
}

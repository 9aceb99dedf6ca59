package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"routebuilder/internal/integrations/cvrplib"
	"routebuilder/internal/opt"
)

var distanceLabels = map[opt.Algorithm]string{
	opt.NearestNeighbourAlgorithm: "Nearest Neighbour VRP Heuristic Distance:",
	opt.SavingsAlgorithm:          "Saving VRP Heuristic Distance:",
}

type solveOptions struct {
	instanceFlags
	algorithm   string
	reference   string
	out         string
	asJSON      bool
	tableMin    int
	parallelMin int
}

func (a *app) newSolveCmd() *cobra.Command {
	defaults := opt.DefaultOptions()
	o := &solveOptions{}
	cmd := &cobra.Command{
		Use:   "solve <instance>",
		Short: "Run the construction heuristics on an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSolve(cmd.OutOrStdout(), args[0], o)
		},
	}
	o.register(cmd)
	cmd.Flags().StringVarP(&o.algorithm, "algorithm", "a", "all", "nn, savings or all")
	cmd.Flags().StringVar(&o.reference, "reference", "", "reference .sol file to compare against")
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "write the shortest constructed solution to this .sol file (- for stdout)")
	cmd.Flags().BoolVar(&o.asJSON, "json", false, "print the report as JSON")
	cmd.Flags().IntVar(&o.tableMin, "table-min", defaults.TableMin, "precompute distances from this many nodes (0 disables)")
	cmd.Flags().IntVar(&o.parallelMin, "parallel-min", defaults.ParallelMin, "parallel savings from this many customers (0 disables)")
	return cmd
}

func (a *app) runSolve(out io.Writer, path string, o *solveOptions) error {
	p, err := o.load(path)
	if err != nil {
		return err
	}
	opts := opt.Options{TableMin: o.tableMin, ParallelMin: o.parallelMin}
	a.log.Info().Str("instance", p.Name).Int("customers", p.NumCustomers()).Float64("capacity", p.Capacity).Msg("instance loaded")

	var ref *opt.Solution
	if o.reference != "" {
		sol, _, _, err := cvrplib.LoadSolution(o.reference)
		if err != nil {
			return err
		}
		ref = &sol
	}

	algos := opt.Algorithms()
	if o.algorithm != "all" {
		algo, err := opt.ParseAlgorithm(o.algorithm)
		if err != nil {
			return err
		}
		algos = []opt.Algorithm{algo}
	}
	rep, err := opt.CompareAlgorithms(p, ref, opts, algos)
	if err != nil {
		return err
	}
	for _, c := range rep.Heuristics {
		a.log.Debug().Str("algorithm", string(c.Algorithm)).Dur("elapsed", c.Result.Elapsed).Interface("stats", c.Result.Stats).Msg("constructed")
	}

	if o.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
	} else {
		if ref != nil {
			fmt.Fprintln(out, "Best VRP Distance:", formatDistance(rep.ReferenceDistance))
		}
		for _, c := range rep.Heuristics {
			fmt.Fprintln(out, distanceLabels[c.Algorithm], formatDistance(c.Distance))
		}
	}

	if o.out == "" {
		return nil
	}
	best := rep.Heuristics[0]
	for _, c := range rep.Heuristics[1:] {
		if c.Distance < best.Distance {
			best = c
		}
	}
	if o.out == "-" {
		return cvrplib.WriteSolution(out, best.Result.Solution, best.Distance)
	}
	f, err := os.Create(o.out)
	if err != nil {
		return err
	}
	if err := cvrplib.WriteSolution(f, best.Result.Solution, best.Distance); err != nil {
		_ = f.Close()
		return err
	}
	a.log.Info().Str("file", o.out).Str("algorithm", string(best.Algorithm)).Msg("solution written")
	return f.Close()
}

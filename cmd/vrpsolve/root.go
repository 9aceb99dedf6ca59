package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"routebuilder/internal/integrations/csvnodes"
	"routebuilder/internal/integrations/cvrplib"
	"routebuilder/internal/opt"
)

type app struct {
	logLevel string
	log      zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: zerolog.Nop()}
	root := &cobra.Command{
		Use:          "vrpsolve",
		Short:        "Construct and score capacitated vehicle routes",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			lvl, err := zerolog.ParseLevel(a.logLevel)
			if err != nil {
				return fmt.Errorf("invalid --log-level %q", a.logLevel)
			}
			a.log = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}).
				Level(lvl).With().Timestamp().Logger()
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		a.newSolveCmd(),
		a.newEvaluateCmd(),
		a.newWatchCmd(),
		newVersionCmd(),
	)
	return root
}

// instanceFlags select how an instance file is read. CVRPLIB is assumed
// unless the file ends in .csv.
type instanceFlags struct {
	capacity float64
	depot    int
}

func (f *instanceFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.capacity, "capacity", 0, "vehicle capacity (csv instances only)")
	cmd.Flags().IntVar(&f.depot, "depot", 0, "depot node index (csv instances only)")
}

func (f *instanceFlags) load(path string) (*opt.Problem, error) {
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return cvrplib.LoadInstance(path)
	}
	if f.capacity <= 0 {
		return nil, fmt.Errorf("%s: csv instances need --capacity", path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	p, err := csvnodes.Reader{InstanceName: name, Capacity: f.capacity, Depot: f.depot}.ReadInstance(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func formatDistance(d float64) string {
	return strconv.FormatFloat(d, 'f', -1, 64)
}

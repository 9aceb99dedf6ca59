package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"routebuilder/internal/buildinfo"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := buildinfo.Info()
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "vrpsolve %s (commit %s, built %s)\n", info["version"], info["commit"], info["builtAt"])
			return err
		},
	}
}

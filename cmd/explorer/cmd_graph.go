package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bayleafwalker/bindery-explorer/internal/graph"
)

func newGraphCmd(opts *rootOptions) *cobra.Command {
	var sel selectionFlags
	var format string
	var stats bool
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the dependency graph of a selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, snap, err := opts.load(cmd)
			if err != nil {
				return err
			}
			f, err := sel.filter(cfg, snap)
			if err != nil {
				return err
			}
			g := graph.Build(snap, f, graph.WithCategories(cfg.Graph.Categories...))

			out := cmd.OutOrStdout()
			if stats {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(g.Stats())
			}
			switch format {
			case "dot":
				return graph.WriteDOT(out, g)
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(g)
			default:
				return fmt.Errorf("unknown graph format %q (want dot or json)", format)
			}
		},
	}
	sel.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot or json")
	cmd.Flags().BoolVar(&stats, "stats", false, "print node and edge counts instead of the graph")
	return cmd
}

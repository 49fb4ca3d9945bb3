package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bayleafwalker/bindery-explorer/internal/model"
	"github.com/bayleafwalker/bindery-explorer/internal/queryserver"
)

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <type> [id]",
		Short: "Print one artifact as YAML",
		Long: "Print the fields of one artifact. The id may be omitted for the " +
			"Distribution type. Type names: Distribution, BundleGroup, Bundle, " +
			"Component, Service, ExtensionPoint, Extension, Operation, Package.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, ok := model.ParseType(args[0])
			if !ok {
				return fmt.Errorf("unknown artifact type %q", args[0])
			}
			_, snap, err := opts.load(cmd)
			if err != nil {
				return err
			}
			id := ""
			if len(args) == 2 {
				id = args[1]
			}
			if id == "" && t == model.TypeDistribution {
				id = snap.Key()
			}
			a, ok := snap.Lookup(model.Ref{Type: t, ID: id})
			if !ok {
				return fmt.Errorf("%s %q not found in %s", t, id, snap.Key())
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(queryserver.Fields(a)); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bayleafwalker/bindery-explorer/internal/filter"
)

func newSelectCmd(opts *rootOptions) *cobra.Command {
	var sel selectionFlags
	var output string
	cmd := &cobra.Command{
		Use:   "select",
		Short: "List the artifacts a filter accepts",
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
			res := filter.Select(snap, f)

			switch output {
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(selectionDoc(res)); err != nil {
					return err
				}
				return enc.Close()
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			default:
				return fmt.Errorf("unknown output format %q (want yaml or json)", output)
			}
		},
	}
	sel.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml or json")
	return cmd
}

// selectionDoc keys the selection the same way its JSON form does.
func selectionDoc(s filter.Selection) map[string]any {
	doc := map[string]any{"filter": s.Filter}
	add := func(key string, ids []string) {
		if len(ids) > 0 {
			doc[key] = ids
		}
	}
	add("bundles", s.Bundles)
	add("groups", s.Groups)
	add("components", s.Components)
	add("services", s.Services)
	add("extensionPoints", s.ExtensionPoints)
	add("extensions", s.Extensions)
	add("operations", s.Operations)
	add("packages", s.Packages)
	return doc
}

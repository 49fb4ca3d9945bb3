package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newGroupsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "Print the bundle group tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, snap, err := opts.load(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var walk func(id string, depth int)
			walk = func(id string, depth int) {
				g, ok := snap.BundleGroup(id)
				if !ok {
					return
				}
				fmt.Fprintf(out, "%s%s (%d bundles)\n", strings.Repeat("  ", depth), g.ID, len(g.BundleIDs))
				for _, b := range g.BundleIDs {
					fmt.Fprintf(out, "%s- %s\n", strings.Repeat("  ", depth+1), b)
				}
				for _, child := range g.SubGroupIDs {
					walk(child, depth+1)
				}
			}
			for _, root := range snap.RootGroups() {
				walk(root.ID, 0)
			}
			return nil
		},
	}
}

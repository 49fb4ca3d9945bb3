package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bayleafwalker/bindery-explorer/internal/resolver"
)

func newPackagesCmd(opts *rootOptions) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "packages",
		Short: "Resolve package dependencies and print the binding plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, snap, err := opts.load(cmd)
			if err != nil {
				return err
			}
			plan, err := resolver.NewDefault().Resolve(cmd.Context(), resolver.Input{
				Distribution: snap.Key(),
				Packages:     snap.Packages(),
			})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CONSUMER\tDEPENDENCY\tCONSTRAINT\tMODE\tPROVIDER")
			for _, b := range plan.Bindings {
				provider := b.Provider
				if b.ProviderVersion != "" {
					provider += "@" + b.ProviderVersion
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", b.Consumer, b.Dependency, b.Constraint, b.Mode, provider)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			d := plan.Diagnostics
			out := cmd.OutOrStdout()
			for _, u := range d.UnresolvedRequired {
				fmt.Fprintf(out, "unresolved required: %s -> %s %s: %s\n", u.Consumer, u.Dependency, u.Constraint, u.Reason)
			}
			for _, u := range d.UnresolvedOptional {
				fmt.Fprintf(out, "unresolved optional: %s -> %s %s: %s\n", u.Consumer, u.Dependency, u.Constraint, u.Reason)
			}
			for _, c := range d.Conflicts {
				fmt.Fprintf(out, "conflict: %s conflicts with %s@%s (%s)\n", c.Package, c.ConflictsWith, c.ConflictingVersion, c.Constraint)
			}
			if strict && !d.Empty() {
				return fmt.Errorf("package resolution reported %d problem(s)",
					len(d.UnresolvedRequired)+len(d.UnresolvedOptional)+len(d.Conflicts))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when resolution reports any diagnostic")
	return cmd
}

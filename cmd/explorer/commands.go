package main

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/bayleafwalker/bindery-explorer/internal/app"
	"github.com/bayleafwalker/bindery-explorer/internal/config"
	"github.com/bayleafwalker/bindery-explorer/internal/filter"
	"github.com/bayleafwalker/bindery-explorer/internal/snapshot"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath  string
	recordsPath string
	verbose     bool
}

// selectionFlags pick the filter a command applies.
type selectionFlags struct {
	preset               string
	bundles              []string
	excludedBundles      []string
	packages             []string
	excludedPackages     []string
	javaPackages         []string
	excludedJavaPackages []string
	prefixMatch          bool
	includeScripted      bool
	includeReferences    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "explorer",
		Short:         "Inspect a runtime snapshot of a distribution",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv(config.EnvConfig), "path of the explorer configuration file")
	root.PersistentFlags().StringVar(&opts.recordsPath, "records", "", "path of the distribution dump; overrides the configured one")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log snapshot building to stderr")

	root.AddCommand(
		newShowCmd(opts),
		newSelectCmd(opts),
		newGraphCmd(opts),
		newGroupsCmd(opts),
		newPackagesCmd(opts),
	)
	return root
}

// load reads the configuration and builds the snapshot it points at.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, *snapshot.Snapshot, error) {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.recordsPath != "" {
		cfg.Records.Path = o.recordsPath
	}

	log := logr.Discard()
	if o.verbose {
		log = zap.New(zap.UseDevMode(true), zap.WriteTo(cmd.ErrOrStderr()))
	}
	snap, err := app.LoadSnapshot(cmd.Context(), cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, snap, nil
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.preset, "preset", "", "named filter preset from the configuration")
	fl.StringSliceVar(&f.bundles, "bundles", nil, "bundle ids to include")
	fl.StringSliceVar(&f.excludedBundles, "exclude-bundles", nil, "bundle ids to exclude")
	fl.StringSliceVar(&f.packages, "packages", nil, "distribution package names to include")
	fl.StringSliceVar(&f.excludedPackages, "exclude-packages", nil, "distribution package names to exclude")
	fl.StringSliceVar(&f.javaPackages, "java-packages", nil, "operation implementation packages to include")
	fl.StringSliceVar(&f.excludedJavaPackages, "exclude-java-packages", nil, "operation implementation packages to exclude")
	fl.BoolVar(&f.prefixMatch, "prefix", false, "match criteria as id prefixes")
	fl.BoolVar(&f.includeScripted, "include-scripted", false, "keep operations without an implementation class")
	fl.BoolVar(&f.includeReferences, "include-references", false, "add bundles referenced by the selected contributions")
}

func (f *selectionFlags) criteria() filter.Criteria {
	return filter.Criteria{
		Bundles:              f.bundles,
		ExcludedBundles:      f.excludedBundles,
		Packages:             f.packages,
		ExcludedPackages:     f.excludedPackages,
		JavaPackages:         f.javaPackages,
		ExcludedJavaPackages: f.excludedJavaPackages,
		PrefixMatch:          f.prefixMatch,
		IncludeScripted:      f.includeScripted,
	}
}

// filter resolves the flags into a filter: a preset, ad-hoc criteria, or the
// whole snapshot when neither is given.
func (f *selectionFlags) filter(cfg *config.Config, snap *snapshot.Snapshot) (filter.Filter, error) {
	c := f.criteria()
	if f.preset != "" {
		if !c.IsEmpty() {
			return nil, fmt.Errorf("--preset cannot be combined with criteria flags")
		}
		p, err := cfg.Preset(f.preset)
		if err != nil {
			return nil, err
		}
		return filter.ForCriteria(snap, p.Name, p.Criteria, p.IncludeReferences || f.includeReferences), nil
	}
	if c.IsEmpty() {
		return filter.All, nil
	}
	return filter.ForCriteria(snap, "cli", c, f.includeReferences), nil
}

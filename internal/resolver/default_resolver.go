package resolver

import (
	"context"
	"sort"

	"github.com/bayleafwalker/bindery-explorer/internal/model"
	"github.com/bayleafwalker/bindery-explorer/internal/semver"
)

// DefaultResolver binds each package dependency to the live package with
// that name whose version satisfies the dependency constraint.
type DefaultResolver struct{}

type provider struct {
	pkg     *model.Package
	version semver.Version
	// parsed is false for versions semver cannot read; those only satisfy
	// unconstrained dependencies.
	parsed bool
}

func NewDefault() *DefaultResolver {
	return &DefaultResolver{}
}

func (r *DefaultResolver) Resolve(ctx context.Context, in Input) (Plan, error) {
	_ = ctx

	byName := make(map[string][]provider)
	for _, p := range in.Packages {
		if p == nil {
			continue
		}
		v, err := semver.ParseVersion(p.Version)
		byName[p.Name] = append(byName[p.Name], provider{pkg: p, version: v, parsed: err == nil})
	}

	plan := Plan{}
	for _, consumer := range in.Packages {
		if consumer == nil {
			continue
		}
		resolve := func(raw string, mode DependencyMode) {
			dep, err := ParseDependency(raw)
			if err != nil {
				addUnresolved(&plan.Diagnostics, consumer.Name, raw, "", mode, "invalid dependency spec")
				return
			}
			candidates := matching(byName[dep.Name], dep, consumer)
			if len(candidates) == 0 {
				addUnresolved(&plan.Diagnostics, consumer.Name, dep.Name, dep.Constraint.String(), mode, "no compatible package found")
				return
			}
			selected := selectProviderDeterministic(candidates)
			plan.Bindings = append(plan.Bindings, Binding{
				Consumer:        consumer.Name,
				Dependency:      dep.Name,
				Constraint:      dep.Constraint.String(),
				Mode:            mode,
				Provider:        selected.pkg.Name,
				ProviderVersion: selected.pkg.Version,
			})
		}
		for _, raw := range consumer.Dependencies {
			resolve(raw, DependencyModeRequired)
		}
		for _, raw := range consumer.OptionalDependencies {
			resolve(raw, DependencyModeOptional)
		}

		for _, raw := range consumer.Conflicts {
			dep, err := ParseDependency(raw)
			if err != nil {
				continue
			}
			for _, p := range matching(byName[dep.Name], dep, consumer) {
				plan.Diagnostics.Conflicts = append(plan.Diagnostics.Conflicts, Conflict{
					Package:            consumer.Name,
					ConflictsWith:      p.pkg.Name,
					ConflictingVersion: p.pkg.Version,
					Constraint:         dep.Constraint.String(),
				})
			}
		}
	}

	// Every package appears in the plan: packages nothing depends on are
	// bound to the distribution through a synthetic root dependency.
	for _, p := range in.Packages {
		if p == nil || isProvider(p.Name, plan.Bindings) {
			continue
		}
		plan.Bindings = append(plan.Bindings, Binding{
			Consumer:        in.Distribution,
			Dependency:      RootDependency,
			Constraint:      "*",
			Mode:            DependencyModeRequired,
			Provider:        p.Name,
			ProviderVersion: p.Version,
		})
	}

	sort.Slice(plan.Bindings, func(i, j int) bool {
		a, b := plan.Bindings[i], plan.Bindings[j]
		if a.Consumer != b.Consumer {
			return a.Consumer < b.Consumer
		}
		if a.Dependency != b.Dependency {
			return a.Dependency < b.Dependency
		}
		if a.Provider != b.Provider {
			return a.Provider < b.Provider
		}
		return a.ProviderVersion < b.ProviderVersion
	})

	return plan, nil
}

func matching(providers []provider, dep Dependency, consumer *model.Package) []provider {
	out := make([]provider, 0, len(providers))
	for _, p := range providers {
		if p.pkg == consumer {
			continue
		}
		if p.parsed && semver.Satisfies(p.version, dep.Constraint) {
			out = append(out, p)
			continue
		}
		if !p.parsed && dep.Any() {
			out = append(out, p)
		}
	}
	return out
}

func addUnresolved(diag *Diagnostics, consumer, dependency, constraint string, mode DependencyMode, reason string) {
	unresolved := UnresolvedDependency{
		Consumer:   consumer,
		Dependency: dependency,
		Constraint: constraint,
		Reason:     reason,
	}
	if mode == DependencyModeOptional {
		diag.UnresolvedOptional = append(diag.UnresolvedOptional, unresolved)
		return
	}
	diag.UnresolvedRequired = append(diag.UnresolvedRequired, unresolved)
}

func selectProviderDeterministic(candidates []provider) provider {
	// Deterministic ordering:
	// 1) Higher version wins
	// 2) Tie-break: package id (ascending)
	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		var cmp int
		if ci.parsed && cj.parsed {
			cmp = semver.Compare(ci.version, cj.version)
		} else {
			cmp = semver.CompareLooseStrings(ci.pkg.Version, cj.pkg.Version)
		}
		if cmp != 0 {
			return cmp > 0
		}
		return ci.pkg.ID < cj.pkg.ID
	})
	return candidates[0]
}

func isProvider(name string, bindings []Binding) bool {
	for _, b := range bindings {
		if b.Provider == name {
			return true
		}
	}
	return false
}

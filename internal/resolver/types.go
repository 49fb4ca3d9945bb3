package resolver

import (
	"github.com/bayleafwalker/bindery-explorer/internal/model"
)

// RootDependency names the synthetic dependency binding every package that
// no other package depends on to the distribution itself.
const RootDependency = "system.root"

// Input is the set of live packages the resolver operates on.
type Input struct {
	// Distribution is the consumer of root bindings, usually the
	// distribution key.
	Distribution string
	Packages     []*model.Package
}

type DependencyMode string

const (
	DependencyModeRequired DependencyMode = "required"
	DependencyModeOptional DependencyMode = "optional"
)

// Binding records which live package satisfies one dependency.
type Binding struct {
	Consumer        string
	Dependency      string
	Constraint      string
	Mode            DependencyMode
	Provider        string
	ProviderVersion string
}

// Plan is the output of the resolver.
type Plan struct {
	Bindings    []Binding
	Diagnostics Diagnostics
}

// Diagnostics captures human-readable information about resolution.
//
// This is useful for status messages, events and logging.
type Diagnostics struct {
	UnresolvedRequired []UnresolvedDependency
	UnresolvedOptional []UnresolvedDependency
	Conflicts          []Conflict
}

// Empty reports whether resolution found nothing to complain about.
func (d Diagnostics) Empty() bool {
	return len(d.UnresolvedRequired) == 0 && len(d.UnresolvedOptional) == 0 && len(d.Conflicts) == 0
}

type UnresolvedDependency struct {
	Consumer   string
	Dependency string
	Constraint string
	Reason     string
}

// Conflict is a live package matching another package's conflict entry.
type Conflict struct {
	Package            string
	ConflictsWith      string
	ConflictingVersion string
	Constraint         string
}

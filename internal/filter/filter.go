// Package filter selects subsets of a snapshot.
//
// Two strategies share the Filter contract: a criterion filter matching
// bundle, package and implementation-class lists, and a reference filter
// pulling in what a previous selection's contributions target. Neither
// construction ever fails; an unusable configuration accepts nothing.
package filter

import (
	"strings"

	"github.com/bayleafwalker/bindery-explorer/internal/model"
	"github.com/bayleafwalker/bindery-explorer/internal/snapshot"
)

// Filter decides whether an artifact belongs to a selection.
type Filter interface {
	Name() string
	Accept(a model.Artifact) bool
}

// Criteria lists what a criterion filter includes and excludes. PrefixMatch
// switches every list from exact to prefix matching.
type Criteria struct {
	Bundles          []string `json:"bundles,omitempty" yaml:"bundles,omitempty"`
	ExcludedBundles  []string `json:"excludedBundles,omitempty" yaml:"excludedBundles,omitempty"`
	Packages         []string `json:"packages,omitempty" yaml:"packages,omitempty"`
	ExcludedPackages []string `json:"excludedPackages,omitempty" yaml:"excludedPackages,omitempty"`

	// JavaPackages is matched against operation implementation classes.
	JavaPackages         []string `json:"javaPackages,omitempty" yaml:"javaPackages,omitempty"`
	ExcludedJavaPackages []string `json:"excludedJavaPackages,omitempty" yaml:"excludedJavaPackages,omitempty"`

	PrefixMatch bool `json:"prefixMatch,omitempty" yaml:"prefixMatch,omitempty"`

	// IncludeScripted accepts operations without an implementation class.
	IncludeScripted bool `json:"includeScripted,omitempty" yaml:"includeScripted,omitempty"`
}

// IsEmpty reports whether c has no include criterion at all.
func (c Criteria) IsEmpty() bool {
	return len(c.Bundles) == 0 && len(c.Packages) == 0 && len(c.JavaPackages) == 0 && !c.IncludeScripted
}

func (c Criteria) matches(list []string, v string) bool {
	for _, item := range list {
		if item == "" {
			continue
		}
		if v == item || (c.PrefixMatch && strings.HasPrefix(v, item)) {
			return true
		}
	}
	return false
}

// CriterionFilter accepts artifacts by their owning bundle. Build one with
// NewCriterionFilter.
type CriterionFilter struct {
	name     string
	criteria Criteria
	snap     *snapshot.Snapshot
}

// NewCriterionFilter returns a filter evaluating c against s. The snapshot
// supplies package membership of bundles; with a nil snapshot only the
// bundle lists apply to bundle-owned artifacts.
func NewCriterionFilter(name string, c Criteria, s *snapshot.Snapshot) *CriterionFilter {
	return &CriterionFilter{name: name, criteria: c, snap: s}
}

func (f *CriterionFilter) Name() string { return f.name }

// Criteria returns the criteria the filter was built with.
func (f *CriterionFilter) Criteria() Criteria { return f.criteria }

func (f *CriterionFilter) Accept(a model.Artifact) bool {
	switch v := a.(type) {
	case *model.Distribution:
		return true
	case *model.Bundle:
		return f.acceptBundle(v.ID, v.Packages)
	case *model.BundleGroup:
		for _, bid := range v.BundleIDs {
			if f.AcceptBundleID(bid) {
				return true
			}
		}
		return false
	case *model.Component:
		return f.AcceptBundleID(v.BundleID)
	case *model.ExtensionPoint:
		return f.AcceptBundleID(v.BundleID)
	case *model.Extension:
		return f.AcceptBundleID(v.BundleID)
	case *model.Service:
		return f.AcceptBundleID(v.BundleID)
	case *model.Operation:
		return f.acceptOperation(v)
	case *model.Package:
		return f.acceptPackage(v)
	default:
		return false
	}
}

// AcceptBundleID applies the bundle and package criteria to a bundle id.
func (f *CriterionFilter) AcceptBundleID(id string) bool {
	var packages []string
	if f.snap != nil {
		if b, ok := f.snap.Bundle(id); ok {
			packages = b.Packages
		}
	}
	return f.acceptBundle(id, packages)
}

func (f *CriterionFilter) acceptBundle(id string, packages []string) bool {
	c := f.criteria
	if c.matches(c.ExcludedBundles, id) {
		return false
	}
	for _, p := range packages {
		if c.matches(c.ExcludedPackages, p) {
			return false
		}
	}
	if c.matches(c.Bundles, id) {
		return true
	}
	for _, p := range packages {
		if c.matches(c.Packages, p) {
			return true
		}
	}
	return false
}

func (f *CriterionFilter) acceptOperation(op *model.Operation) bool {
	c := f.criteria
	if op.Class == "" {
		return c.IncludeScripted
	}
	pkg := javaPackage(op.Class)
	if c.matches(c.ExcludedJavaPackages, pkg) || c.matches(c.ExcludedJavaPackages, op.Class) {
		return false
	}
	return c.matches(c.JavaPackages, pkg) || c.matches(c.JavaPackages, op.Class)
}

func (f *CriterionFilter) acceptPackage(p *model.Package) bool {
	c := f.criteria
	if c.matches(c.ExcludedPackages, p.Name) {
		return false
	}
	if c.matches(c.Packages, p.Name) {
		return true
	}
	for _, bid := range p.BundleIDs {
		if f.AcceptBundleID(bid) {
			return true
		}
	}
	return false
}

// javaPackage strips the simple class name from a qualified class name.
func javaPackage(class string) string {
	if i := strings.LastIndex(class, "."); i >= 0 {
		return class[:i]
	}
	return ""
}

type union struct {
	name    string
	filters []Filter
}

// Union accepts whatever any of filters accepts.
func Union(name string, filters ...Filter) Filter {
	kept := make([]Filter, 0, len(filters))
	for _, f := range filters {
		if f != nil {
			kept = append(kept, f)
		}
	}
	return &union{name: name, filters: kept}
}

func (u *union) Name() string { return u.name }

func (u *union) Accept(a model.Artifact) bool {
	for _, f := range u.filters {
		if f.Accept(a) {
			return true
		}
	}
	return false
}

type acceptAll struct{}

// All accepts every artifact.
var All Filter = acceptAll{}

func (acceptAll) Name() string               { return "all" }
func (acceptAll) Accept(model.Artifact) bool { return true }

package filter

import (
	"github.com/bayleafwalker/bindery-explorer/internal/model"
	"github.com/bayleafwalker/bindery-explorer/internal/snapshot"
)

// ReferenceFilter accepts the bundles, components and extension points that
// a seed selection's contributions target. It is a one-hop closure: the
// targets' own contributions and services are not followed.
type ReferenceFilter struct {
	name string

	extensionPoints map[string]struct{}
	components      map[string]struct{}
	bundles         map[string]struct{}
}

// NewReferenceFilter indexes the targets of every contribution owned by the
// seed bundles. Unknown seed ids are ignored; an empty seed accepts nothing.
func NewReferenceFilter(name string, s *snapshot.Snapshot, seedBundleIDs []string) *ReferenceFilter {
	f := &ReferenceFilter{
		name:            name,
		extensionPoints: make(map[string]struct{}),
		components:      make(map[string]struct{}),
		bundles:         make(map[string]struct{}),
	}
	if s == nil {
		return f
	}
	for _, bid := range seedBundleIDs {
		b, ok := s.Bundle(bid)
		if !ok {
			continue
		}
		for _, comp := range b.Components {
			for _, ext := range comp.Extensions {
				f.index(s, ext)
			}
		}
	}
	return f
}

func (f *ReferenceFilter) index(s *snapshot.Snapshot, ext *model.Extension) {
	xpID := ext.TargetExtensionPointID()
	compID := ext.TargetComponentName
	if xp, ok := s.TargetOf(ext); ok {
		xpID = xp.ID
		compID = xp.ComponentID
	}
	f.extensionPoints[xpID] = struct{}{}
	f.components[compID] = struct{}{}
	if comp, ok := s.Component(compID); ok {
		f.components[comp.ID] = struct{}{}
		f.bundles[comp.BundleID] = struct{}{}
	}
}

func (f *ReferenceFilter) Name() string { return f.name }

func (f *ReferenceFilter) Accept(a model.Artifact) bool {
	var (
		set map[string]struct{}
		id  string
	)
	switch v := a.(type) {
	case *model.Bundle:
		set, id = f.bundles, v.ID
	case *model.Component:
		set, id = f.components, v.ID
	case *model.ExtensionPoint:
		set, id = f.extensionPoints, v.ID
	default:
		return false
	}
	_, ok := set[id]
	return ok
}

// Empty reports whether the closure is empty.
func (f *ReferenceFilter) Empty() bool {
	return len(f.extensionPoints) == 0 && len(f.components) == 0 && len(f.bundles) == 0
}

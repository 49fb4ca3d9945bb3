package snapshot

import (
	"strings"

	"github.com/bayleafwalker/bindery-explorer/internal/model"
)

// Bundle returns the bundle with the given id.
func (s *Snapshot) Bundle(id string) (*model.Bundle, bool) {
	b, ok := s.bundleIdx[id]
	return b, ok
}

// Bundles returns all bundles in discovery order.
func (s *Snapshot) Bundles() []*model.Bundle { return s.bundles }

// BundleGroup returns the group with the given id.
func (s *Snapshot) BundleGroup(id string) (*model.BundleGroup, bool) {
	g, ok := s.groupIdx[id]
	return g, ok
}

// BundleGroups returns every bundle group.
func (s *Snapshot) BundleGroups() []*model.BundleGroup { return s.groups }

// RootGroups returns the groups without a parent.
func (s *Snapshot) RootGroups() []*model.BundleGroup { return s.rootGroups }

// Component returns the component with the given id or alias.
func (s *Snapshot) Component(id string) (*model.Component, bool) {
	if c, ok := s.componentIdx[id]; ok {
		return c, true
	}
	if primary, ok := s.componentAliases[id]; ok {
		return s.componentIdx[primary], true
	}
	return nil, false
}

// Components returns all components in resolution order.
func (s *Snapshot) Components() []*model.Component { return s.components }

// ExtensionPoint returns the extension point with the given id or alias.
func (s *Snapshot) ExtensionPoint(id string) (*model.ExtensionPoint, bool) {
	if xp, ok := s.xpIdx[id]; ok {
		return xp, true
	}
	if primary, ok := s.xpAliases[id]; ok {
		return s.xpIdx[primary], true
	}
	return nil, false
}

// ExtensionPoints returns all extension points.
func (s *Snapshot) ExtensionPoints() []*model.ExtensionPoint { return s.extensionPoints }

// Extension returns the contribution with the given id.
func (s *Snapshot) Extension(id string) (*model.Extension, bool) {
	e, ok := s.extIdx[id]
	return e, ok
}

// Extensions returns all contributions.
func (s *Snapshot) Extensions() []*model.Extension { return s.extensions }

// Service returns the live provider of the given service id. Overridden
// registrations are never returned.
func (s *Snapshot) Service(id string) (*model.Service, bool) {
	svc, ok := s.serviceIdx[id]
	return svc, ok
}

// Services returns every service registration, overridden ones included.
func (s *Snapshot) Services() []*model.Service { return s.services }

// Operation returns the operation with the given id ("op:Name"), bare name,
// or alias.
func (s *Snapshot) Operation(id string) (*model.Operation, bool) {
	if !strings.HasPrefix(id, model.OperationPrefix) {
		id = model.OperationID(id)
	}
	if op, ok := s.opIdx[id]; ok {
		return op, true
	}
	if primary, ok := s.opAliases[id]; ok {
		return s.opIdx[primary], true
	}
	return nil, false
}

// Operations returns all operations.
func (s *Snapshot) Operations() []*model.Operation { return s.operations }

// Package returns the package with the given name. Package ids
// (name-version) are accepted too.
func (s *Snapshot) Package(name string) (*model.Package, bool) {
	if p, ok := s.pkgIdx[name]; ok {
		return p, true
	}
	p, ok := s.pkgByID[name]
	return p, ok
}

// Packages returns all packages.
func (s *Snapshot) Packages() []*model.Package { return s.packages }

// BundleOf returns the bundle owning a component, extension point,
// contribution or service.
func (s *Snapshot) BundleOf(a model.Artifact) (*model.Bundle, bool) {
	var id string
	switch v := a.(type) {
	case *model.Component:
		id = v.BundleID
	case *model.ExtensionPoint:
		id = v.BundleID
	case *model.Extension:
		id = v.BundleID
	case *model.Service:
		id = v.BundleID
	default:
		return nil, false
	}
	return s.Bundle(id)
}

// ComponentOf returns the component owning an extension point, contribution
// or service, or contributing an operation.
func (s *Snapshot) ComponentOf(a model.Artifact) (*model.Component, bool) {
	var id string
	switch v := a.(type) {
	case *model.ExtensionPoint:
		id = v.ComponentID
	case *model.Extension:
		id = v.ComponentID
	case *model.Service:
		id = v.ComponentID
	case *model.Operation:
		id = v.ContributingComponent
	default:
		return nil, false
	}
	return s.Component(id)
}

// TargetOf returns the extension point a contribution targets, when it is
// part of this snapshot.
func (s *Snapshot) TargetOf(e *model.Extension) (*model.ExtensionPoint, bool) {
	if e == nil {
		return nil, false
	}
	return s.ExtensionPoint(e.TargetExtensionPointID())
}

// ContributionsTo returns the contributions linked to an extension point.
func (s *Snapshot) ContributionsTo(xpID string) []*model.Extension {
	xp, ok := s.ExtensionPoint(xpID)
	if !ok {
		return nil
	}
	out := make([]*model.Extension, 0, len(xp.ExtensionIDs))
	for _, id := range xp.ExtensionIDs {
		if e, ok := s.extIdx[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// OperationsOf returns the operations contributed by a component.
func (s *Snapshot) OperationsOf(componentID string) []*model.Operation {
	return s.opsByComponent[componentID]
}

// PackagesOf returns the packages containing a bundle.
func (s *Snapshot) PackagesOf(bundleID string) []*model.Package {
	return s.pkgsByBundleID[bundleID]
}

// Lookup returns the artifact identified by ref.
func (s *Snapshot) Lookup(ref model.Ref) (model.Artifact, bool) {
	switch ref.Type {
	case model.TypeDistribution:
		if ref.ID == s.distribution.Key {
			d := s.distribution
			return &d, true
		}
	case model.TypeBundleGroup:
		if g, ok := s.BundleGroup(ref.ID); ok {
			return g, true
		}
	case model.TypeBundle:
		if b, ok := s.Bundle(ref.ID); ok {
			return b, true
		}
	case model.TypeComponent:
		if c, ok := s.Component(ref.ID); ok {
			return c, true
		}
	case model.TypeService:
		if svc, ok := s.Service(ref.ID); ok {
			return svc, true
		}
	case model.TypeExtensionPoint:
		if xp, ok := s.ExtensionPoint(ref.ID); ok {
			return xp, true
		}
	case model.TypeExtension:
		if e, ok := s.Extension(ref.ID); ok {
			return e, true
		}
	case model.TypeOperation:
		if op, ok := s.Operation(ref.ID); ok {
			return op, true
		}
	case model.TypePackage:
		if p, ok := s.Package(ref.ID); ok {
			return p, true
		}
	}
	return nil, false
}

// IDs returns the ids of every artifact of type t, in snapshot order.
func (s *Snapshot) IDs(t model.Type) []string {
	var out []string
	switch t {
	case model.TypeDistribution:
		out = []string{s.distribution.Key}
	case model.TypeBundleGroup:
		out = collectIDs(s.groups, func(g *model.BundleGroup) string { return g.ID })
	case model.TypeBundle:
		out = collectIDs(s.bundles, func(b *model.Bundle) string { return b.ID })
	case model.TypeComponent:
		out = collectIDs(s.components, func(c *model.Component) string { return c.ID })
	case model.TypeService:
		out = collectIDs(s.services, func(svc *model.Service) string { return svc.ID })
	case model.TypeExtensionPoint:
		out = collectIDs(s.extensionPoints, func(xp *model.ExtensionPoint) string { return xp.ID })
	case model.TypeExtension:
		out = collectIDs(s.extensions, func(e *model.Extension) string { return e.ID })
	case model.TypeOperation:
		out = collectIDs(s.operations, func(op *model.Operation) string { return op.ID })
	case model.TypePackage:
		out = collectIDs(s.packages, func(p *model.Package) string { return p.ID })
	}
	return out
}

// Parent returns the artifact directly above a in the hierarchy.
func (s *Snapshot) Parent(a model.Artifact) (model.Artifact, bool) {
	switch v := a.(type) {
	case *model.BundleGroup:
		if v.ParentGroupID == "" {
			return s.Lookup(model.Ref{Type: model.TypeDistribution, ID: s.distribution.Key})
		}
		return s.Lookup(model.Ref{Type: model.TypeBundleGroup, ID: v.ParentGroupID})
	case *model.Bundle:
		return s.Lookup(model.Ref{Type: model.TypeBundleGroup, ID: v.BundleGroupID})
	case *model.Component:
		return s.Lookup(model.Ref{Type: model.TypeBundle, ID: v.BundleID})
	case *model.ExtensionPoint, *model.Extension, *model.Service:
		if c, ok := s.ComponentOf(a); ok {
			return c, true
		}
	case *model.Operation, *model.Package:
		return s.Lookup(model.Ref{Type: model.TypeDistribution, ID: s.distribution.Key})
	}
	return nil, false
}

func collectIDs[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

// Package snapshot holds the read-only model of a runtime at a point in
// time and answers structural queries over it.
//
// Every index is built once by New. A Snapshot is never mutated afterwards
// and may be queried from many goroutines without synchronization. Artifacts
// returned by lookups are shared with the snapshot and must not be modified.
package snapshot

import (
	"sort"
	"sync"
	"time"

	"github.com/bayleafwalker/bindery-explorer/internal/model"
)

// Contents is the raw material for New. Slices keep their order; the first
// artifact wins when two share an id.
type Contents struct {
	Distribution model.Distribution
	Created      time.Time

	Bundles    []*model.Bundle
	Groups     []*model.BundleGroup
	Operations []*model.Operation
	Packages   []*model.Package
}

// Snapshot is an immutable, indexed runtime model.
type Snapshot struct {
	distribution model.Distribution
	created      time.Time

	bundles   []*model.Bundle
	bundleIdx map[string]*model.Bundle

	groups     []*model.BundleGroup
	rootGroups []*model.BundleGroup
	groupIdx   map[string]*model.BundleGroup

	components   []*model.Component
	componentIdx map[string]*model.Component
	// componentAliases maps an alias to a primary component id.
	componentAliases map[string]string

	extensionPoints []*model.ExtensionPoint
	xpIdx           map[string]*model.ExtensionPoint
	xpAliases       map[string]string

	extensions []*model.Extension
	extIdx     map[string]*model.Extension

	services   []*model.Service
	serviceIdx map[string]*model.Service

	operations     []*model.Operation
	opIdx          map[string]*model.Operation
	opAliases      map[string]string
	opsByComponent map[string][]*model.Operation

	packages       []*model.Package
	pkgIdx         map[string]*model.Package
	pkgByID        map[string]*model.Package
	pkgsByBundleID map[string][]*model.Package

	digest func() string
}

// New indexes contents into a Snapshot.
func New(c Contents) *Snapshot {
	s := &Snapshot{
		distribution:     c.Distribution,
		created:          c.Created,
		bundleIdx:        make(map[string]*model.Bundle, len(c.Bundles)),
		groupIdx:         make(map[string]*model.BundleGroup, len(c.Groups)),
		componentIdx:     make(map[string]*model.Component),
		componentAliases: make(map[string]string),
		xpIdx:            make(map[string]*model.ExtensionPoint),
		xpAliases:        make(map[string]string),
		extIdx:           make(map[string]*model.Extension),
		serviceIdx:       make(map[string]*model.Service),
		opIdx:            make(map[string]*model.Operation, len(c.Operations)),
		opAliases:        make(map[string]string),
		opsByComponent:   make(map[string][]*model.Operation),
		pkgIdx:           make(map[string]*model.Package, len(c.Packages)),
		pkgByID:          make(map[string]*model.Package, len(c.Packages)),
		pkgsByBundleID:   make(map[string][]*model.Package),
	}

	var comps []*model.Component
	for _, b := range c.Bundles {
		if b == nil {
			continue
		}
		if _, dup := s.bundleIdx[b.ID]; dup {
			continue
		}
		s.bundles = append(s.bundles, b)
		s.bundleIdx[b.ID] = b
		for _, comp := range b.Components {
			if comp != nil {
				comps = append(comps, comp)
			}
		}
	}
	// Components are indexed in resolution order so the first resolved
	// provider of a service wins, whatever order the bundles came in.
	sort.SliceStable(comps, func(i, j int) bool { return comps[i].ResolutionOrder < comps[j].ResolutionOrder })
	for _, comp := range comps {
		s.indexComponent(comp)
	}

	for _, g := range c.Groups {
		if g == nil {
			continue
		}
		if _, dup := s.groupIdx[g.ID]; dup {
			continue
		}
		s.groups = append(s.groups, g)
		s.groupIdx[g.ID] = g
		if g.ParentGroupID == "" {
			s.rootGroups = append(s.rootGroups, g)
		}
	}

	// Aliases are registered after all primaries so they never shadow one.
	for _, comp := range s.components {
		for _, alias := range comp.Aliases {
			if _, primary := s.componentIdx[alias]; primary {
				continue
			}
			if _, taken := s.componentAliases[alias]; !taken {
				s.componentAliases[alias] = comp.ID
			}
		}
	}
	for _, xp := range s.extensionPoints {
		for _, alias := range xp.Aliases {
			if _, primary := s.xpIdx[alias]; primary {
				continue
			}
			if _, taken := s.xpAliases[alias]; !taken {
				s.xpAliases[alias] = xp.ID
			}
		}
	}

	for _, op := range c.Operations {
		if op == nil {
			continue
		}
		if _, dup := s.opIdx[op.ID]; dup {
			continue
		}
		s.operations = append(s.operations, op)
		s.opIdx[op.ID] = op
		s.opsByComponent[op.ContributingComponent] = append(s.opsByComponent[op.ContributingComponent], op)
	}
	for _, op := range s.operations {
		for _, alias := range op.Aliases {
			id := model.OperationID(alias)
			if _, primary := s.opIdx[id]; primary {
				continue
			}
			if _, taken := s.opAliases[id]; !taken {
				s.opAliases[id] = op.ID
			}
		}
	}

	for _, p := range c.Packages {
		if p == nil {
			continue
		}
		if _, dup := s.pkgIdx[p.Name]; dup {
			continue
		}
		s.packages = append(s.packages, p)
		s.pkgIdx[p.Name] = p
		s.pkgByID[p.ID] = p
		for _, bid := range p.BundleIDs {
			s.pkgsByBundleID[bid] = append(s.pkgsByBundleID[bid], p)
		}
	}

	s.digest = sync.OnceValue(s.computeDigest)
	return s
}

func (s *Snapshot) indexComponent(comp *model.Component) {
	if comp == nil {
		return
	}
	if _, dup := s.componentIdx[comp.ID]; dup {
		return
	}
	s.components = append(s.components, comp)
	s.componentIdx[comp.ID] = comp

	for _, svc := range comp.Services {
		s.services = append(s.services, svc)
		if svc.Overridden {
			continue
		}
		if _, taken := s.serviceIdx[svc.ID]; !taken {
			s.serviceIdx[svc.ID] = svc
		}
	}
	for _, xp := range comp.ExtensionPoints {
		if _, dup := s.xpIdx[xp.ID]; dup {
			continue
		}
		s.extensionPoints = append(s.extensionPoints, xp)
		s.xpIdx[xp.ID] = xp
	}
	for _, ext := range comp.Extensions {
		if _, dup := s.extIdx[ext.ID]; dup {
			continue
		}
		s.extensions = append(s.extensions, ext)
		s.extIdx[ext.ID] = ext
	}
}

// Distribution returns the distribution this snapshot describes.
func (s *Snapshot) Distribution() model.Distribution { return s.distribution }

// Key returns the distribution key (name-version).
func (s *Snapshot) Key() string { return s.distribution.Key }

// Version returns the distribution version.
func (s *Snapshot) Version() string { return s.distribution.Version }

// Created returns the snapshot creation time.
func (s *Snapshot) Created() time.Time { return s.created }

// Digest returns a stable content digest of the snapshot.
func (s *Snapshot) Digest() string { return s.digest() }

package filter

import (
	"sort"

	"github.com/bayleafwalker/bindery-explorer/internal/model"
	"github.com/bayleafwalker/bindery-explorer/internal/snapshot"
)

// Selection lists the ids a filter accepted, per artifact type, in snapshot
// order.
type Selection struct {
	Filter          string   `json:"filter"`
	Bundles         []string `json:"bundles,omitempty"`
	Groups          []string `json:"groups,omitempty"`
	Components      []string `json:"components,omitempty"`
	Services        []string `json:"services,omitempty"`
	ExtensionPoints []string `json:"extensionPoints,omitempty"`
	Extensions      []string `json:"extensions,omitempty"`
	Operations      []string `json:"operations,omitempty"`
	Packages        []string `json:"packages,omitempty"`
}

// Len returns the number of selected ids, groups excluded.
func (s Selection) Len() int {
	return len(s.Bundles) + len(s.Components) + len(s.Services) + len(s.ExtensionPoints) +
		len(s.Extensions) + len(s.Operations) + len(s.Packages)
}

// Select applies f to every artifact of s. Bundle-owned artifacts are only
// considered under accepted bundles. Groups holds the groups of selected
// bundles and their ancestors.
func Select(s *snapshot.Snapshot, f Filter) Selection {
	sel := Selection{Filter: f.Name()}
	groups := make(map[string]struct{})
	services := make(map[string]struct{})

	for _, b := range s.Bundles() {
		if !f.Accept(b) {
			continue
		}
		sel.Bundles = append(sel.Bundles, b.ID)
		for gid := b.BundleGroupID; gid != ""; {
			if _, seen := groups[gid]; seen {
				break
			}
			groups[gid] = struct{}{}
			g, ok := s.BundleGroup(gid)
			if !ok {
				break
			}
			gid = g.ParentGroupID
		}
		for _, c := range b.Components {
			if !f.Accept(c) {
				continue
			}
			sel.Components = append(sel.Components, c.ID)
			for _, svc := range c.Services {
				if _, dup := services[svc.ID]; dup || !f.Accept(svc) {
					continue
				}
				services[svc.ID] = struct{}{}
				sel.Services = append(sel.Services, svc.ID)
			}
			for _, xp := range c.ExtensionPoints {
				if f.Accept(xp) {
					sel.ExtensionPoints = append(sel.ExtensionPoints, xp.ID)
				}
			}
			for _, ext := range c.Extensions {
				if f.Accept(ext) {
					sel.Extensions = append(sel.Extensions, ext.ID)
				}
			}
		}
	}
	for _, op := range s.Operations() {
		if f.Accept(op) {
			sel.Operations = append(sel.Operations, op.ID)
		}
	}
	for _, p := range s.Packages() {
		if f.Accept(p) {
			sel.Packages = append(sel.Packages, p.ID)
		}
	}
	for gid := range groups {
		sel.Groups = append(sel.Groups, gid)
	}
	sort.Strings(sel.Groups)
	return sel
}

// ReferencesSuffix names the group holding a selection's reference closure.
const ReferencesSuffix = "-references"

// Grouping is a named selection exposed as virtual bundle groups.
type Grouping struct {
	Primary   *model.BundleGroup
	Selection Selection

	// References and ReferenceSelection are set when the reference closure
	// was requested. They hold only bundles outside the primary selection.
	References         *model.BundleGroup
	ReferenceSelection *Selection
}

// VirtualGroups selects bundles with c and wraps them in a virtual group
// named name. With includeReferences, a second group named
// name+ReferencesSuffix holds what the selection's contributions target.
// The two groups are kept side by side, never merged.
func VirtualGroups(s *snapshot.Snapshot, name string, c Criteria, includeReferences bool) Grouping {
	primary := NewCriterionFilter(name, c, s)
	sel := Select(s, primary)
	out := Grouping{
		Primary:   virtualGroup(s, name, sel.Bundles),
		Selection: sel,
	}
	if !includeReferences {
		return out
	}

	refName := name + ReferencesSuffix
	refSel := Select(s, NewReferenceFilter(refName, s, sel.Bundles))
	selected := make(map[string]struct{}, len(sel.Bundles))
	for _, bid := range sel.Bundles {
		selected[bid] = struct{}{}
	}
	var extra []string
	for _, bid := range refSel.Bundles {
		if _, dup := selected[bid]; !dup {
			extra = append(extra, bid)
		}
	}
	out.References = virtualGroup(s, refName, extra)
	out.ReferenceSelection = &refSel
	return out
}

func virtualGroup(s *snapshot.Snapshot, name string, bundleIDs []string) *model.BundleGroup {
	ids := append([]string(nil), bundleIDs...)
	sort.Strings(ids)
	id := model.GroupID(name)
	return &model.BundleGroup{
		ID:            id,
		Name:          name,
		Version:       s.Version(),
		HierarchyPath: "/" + id,
		BundleIDs:     ids,
	}
}

// ForCriteria returns the criterion filter for c, united with its reference
// closure when includeReferences is set.
func ForCriteria(s *snapshot.Snapshot, name string, c Criteria, includeReferences bool) Filter {
	primary := NewCriterionFilter(name, c, s)
	if !includeReferences {
		return primary
	}
	seed := Select(s, primary).Bundles
	return Union(name, primary, NewReferenceFilter(name+ReferencesSuffix, s, seed))
}

// Package groups derives the bundle group tree from bundle namespaces.
//
// A bundle declaring group id "org.example.core" ends up in group
// grp:org.example.core, whose parent is grp:org.example, whose parent is the
// root group grp:org. Bundles without a group id get a synthetic group
// keyed by their own bundle id. That group is shared with a namespace group
// of the same key: bundle "org" without a group id joins grp:org next to
// grp:org.x.
package groups

import (
	"sort"
	"strings"

	"github.com/bayleafwalker/bindery-explorer/internal/model"
)

// Result is the output of Extract.
type Result struct {
	// Roots are the groups without a parent, sorted by id.
	Roots []*model.BundleGroup
	// Groups indexes every group by id, one per distinct group id prefix.
	Groups map[string]*model.BundleGroup
	// Membership maps a bundle id to the id of its direct group.
	Membership map[string]string
}

type groupState struct {
	group    *model.BundleGroup
	bundles  map[string]struct{}
	children map[string]struct{}
	readmes  map[string]struct{}
}

// Extract builds the group tree for bundles. It does not modify the bundles
// and returns a fresh tree on every call.
func Extract(bundles []*model.Bundle, version string) Result {
	states := make(map[string]*groupState)

	ensure := func(id, name string) *groupState {
		if st, ok := states[id]; ok {
			return st
		}
		st := &groupState{
			group:    &model.BundleGroup{ID: id, Name: name, Version: version},
			bundles:  make(map[string]struct{}),
			children: make(map[string]struct{}),
			readmes:  make(map[string]struct{}),
		}
		states[id] = st
		return st
	}

	membership := make(map[string]string, len(bundles))
	for _, b := range bundles {
		if b == nil {
			continue
		}
		var leaf *groupState
		segments := splitNamespace(b.GroupID)
		if len(segments) == 0 {
			leaf = ensure(model.GroupID(b.ID), b.ID)
		} else {
			var parent *groupState
			prefix := ""
			for _, seg := range segments {
				if prefix == "" {
					prefix = seg
				} else {
					prefix += "." + seg
				}
				st := ensure(model.GroupID(prefix), prefix)
				if parent != nil && st.group.ParentGroupID == "" && st != parent {
					st.group.ParentGroupID = parent.group.ID
					parent.children[st.group.ID] = struct{}{}
				}
				parent = st
			}
			leaf = parent
		}

		leaf.bundles[b.ID] = struct{}{}
		membership[b.ID] = leaf.group.ID
		if readme := b.ParentReadme; strings.TrimSpace(readme) != "" {
			if _, seen := leaf.readmes[readme]; !seen {
				leaf.readmes[readme] = struct{}{}
				leaf.group.Readmes = append(leaf.group.Readmes, readme)
			}
		}
	}

	res := Result{
		Groups:     make(map[string]*model.BundleGroup, len(states)),
		Membership: membership,
	}
	for id, st := range states {
		st.group.BundleIDs = sortedKeys(st.bundles)
		st.group.SubGroupIDs = sortedKeys(st.children)
		res.Groups[id] = st.group
		if st.group.ParentGroupID == "" {
			res.Roots = append(res.Roots, st.group)
		}
	}
	sort.Slice(res.Roots, func(i, j int) bool { return res.Roots[i].ID < res.Roots[j].ID })
	return res
}

// Walk visits every group reachable from roots, parents before children.
func (r Result) Walk(visit func(g *model.BundleGroup, depth int)) {
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		g, ok := r.Groups[id]
		if !ok {
			return
		}
		visit(g, depth)
		for _, child := range g.SubGroupIDs {
			walk(child, depth+1)
		}
	}
	for _, root := range r.Roots {
		walk(root.ID, 0)
	}
}

func splitNamespace(raw string) []string {
	parts := strings.Split(strings.TrimSpace(raw), ".")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

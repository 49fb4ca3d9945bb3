package graph

import (
	"github.com/go-logr/logr"

	"github.com/bayleafwalker/bindery-explorer/internal/filter"
	"github.com/bayleafwalker/bindery-explorer/internal/model"
	"github.com/bayleafwalker/bindery-explorer/internal/snapshot"
)

type Option func(*builder)

// WithCategories sets the bundle id prefix rules used to categorize nodes.
func WithCategories(rules ...CategoryRule) Option {
	return func(b *builder) { b.categories = NewCategorizer(rules) }
}

func WithLogger(l logr.Logger) Option {
	return func(b *builder) { b.log = l }
}

type builder struct {
	snap       *snapshot.Snapshot
	filter     filter.Filter
	categories Categorizer
	log        logr.Logger

	g *Graph
	// hits accumulates weight increments, applied once every node exists.
	hits map[string]int
	// isolated lists accepted bundles without requirements.
	isolated []string
	// danglingBundles lists bundle reference nodes created for requirements.
	danglingBundles []string
}

// Build returns the graph of everything f accepts in s. A nil filter accepts
// everything. Every bundle node ends up connected to the synthetic root
// through REQUIRES edges.
func Build(s *snapshot.Snapshot, f filter.Filter, opts ...Option) *Graph {
	if f == nil {
		f = filter.All
	}
	b := &builder{
		snap:   s,
		filter: f,
		log:    logr.Discard(),
		g:      newGraph(f.Name()),
		hits:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(b)
	}

	bundles := b.addBundles()
	for _, bundle := range bundles {
		b.addComponents(bundle)
	}
	b.addPackages()
	b.repair()
	b.connectRoot()
	b.applyHits()

	b.log.V(1).Info("graph built", "filter", f.Name(),
		"nodes", len(b.g.Nodes), "edges", len(b.g.Edges))
	return b.g
}

func (b *builder) hit(id string) { b.hits[id]++ }

func (b *builder) contains(source, target string) {
	b.g.addEdge(source, target, EdgeContains)
	b.hit(source)
}

// reference returns a bare node for id, creating it when missing.
func (b *builder) reference(t NodeType, id, category string) *Node {
	nodeID := NodeID(t, id)
	if n, ok := b.g.Node(nodeID); ok {
		return n
	}
	return b.g.addNode(&Node{ID: nodeID, Label: id, Type: t, Category: category})
}

// addBundles emits every accepted bundle, then its REQUIRES edges so that
// accepted targets are real nodes regardless of order.
func (b *builder) addBundles() []*model.Bundle {
	var accepted []*model.Bundle
	for _, bundle := range b.snap.Bundles() {
		if !b.filter.Accept(bundle) {
			continue
		}
		accepted = append(accepted, bundle)
		b.g.addNode(&Node{
			ID:       NodeID(NodeBundle, bundle.ID),
			Label:    bundle.ID,
			Type:     NodeBundle,
			Category: b.categories.Category(bundle.ID),
			Index:    bundle.MinResolutionOrder,
			Artifact: bundle,
		})
	}
	for _, bundle := range accepted {
		if len(bundle.Requirements) == 0 {
			b.isolated = append(b.isolated, NodeID(NodeBundle, bundle.ID))
			continue
		}
		source := NodeID(NodeBundle, bundle.ID)
		for _, req := range bundle.Requirements {
			target := NodeID(NodeBundle, req)
			if _, ok := b.g.Node(target); !ok {
				b.reference(NodeBundle, req, "")
				b.danglingBundles = append(b.danglingBundles, target)
			}
			b.g.addEdge(source, target, EdgeRequires)
		}
	}
	return accepted
}

func (b *builder) addComponents(bundle *model.Bundle) {
	bundleID := NodeID(NodeBundle, bundle.ID)
	category := b.categories.Category(bundle.ID)
	for _, comp := range bundle.Components {
		if !b.filter.Accept(comp) {
			continue
		}
		compID := NodeID(NodeComponent, comp.ID)
		index := comp.ResolutionOrder
		b.g.addNode(&Node{
			ID: compID, Label: comp.ID, Type: NodeComponent,
			Category: category, Index: &index, Artifact: comp,
		})
		b.contains(bundleID, compID)

		for _, svc := range comp.Services {
			if !b.filter.Accept(svc) {
				continue
			}
			id := NodeID(NodeService, svc.ID)
			b.g.addNode(&Node{ID: id, Label: svc.ID, Type: NodeService, Category: category, Artifact: svc})
			b.contains(compID, id)
		}
		for _, xp := range comp.ExtensionPoints {
			if !b.filter.Accept(xp) {
				continue
			}
			id := NodeID(NodeExtensionPoint, xp.ID)
			b.g.addNode(&Node{ID: id, Label: xp.ID, Type: NodeExtensionPoint, Category: category, Artifact: xp})
			b.contains(compID, id)
		}
		for _, ext := range comp.Extensions {
			if !b.filter.Accept(ext) {
				continue
			}
			id := NodeID(NodeContribution, ext.ID)
			b.g.addNode(&Node{
				ID: id, Label: ext.ID, Type: NodeContribution,
				Category: category, Index: ext.RegistrationOrder, Artifact: ext,
			})
			b.contains(compID, id)
			b.addReference(id, ext)
		}
		for _, req := range comp.Requirements {
			b.g.addEdge(compID, NodeID(NodeComponent, req), EdgeSoftRequires)
		}
	}
}

// addReference links a contribution to its target point. The target point
// and component are hit even when they are outside the filtered view.
func (b *builder) addReference(extNodeID string, ext *model.Extension) {
	xpID := ext.TargetExtensionPointID()
	compID := ext.TargetComponentName
	if xp, ok := b.snap.TargetOf(ext); ok {
		xpID, compID = xp.ID, xp.ComponentID
	}
	target := NodeID(NodeExtensionPoint, xpID)
	b.g.addEdge(extNodeID, target, EdgeReferences)
	b.hit(target)

	compNodeID := NodeID(NodeComponent, compID)
	if _, ok := b.g.Node(compNodeID); !ok {
		b.reference(NodeComponent, compID, b.guessCategory(NodeComponent, compID))
	}
	b.hit(compNodeID)
}

// addPackages emits accepted packages with CONTAINS edges to their bundles.
// A package is positioned at the lowest resolution order of its bundles.
func (b *builder) addPackages() {
	for _, p := range b.snap.Packages() {
		if !b.filter.Accept(p) {
			continue
		}
		var index *int64
		for _, bid := range p.BundleIDs {
			bundle, ok := b.snap.Bundle(bid)
			if !ok || bundle.MinResolutionOrder == nil {
				continue
			}
			if index == nil || *bundle.MinResolutionOrder < *index {
				v := *bundle.MinResolutionOrder
				index = &v
			}
		}
		pkgID := NodeID(NodePackage, p.ID)
		b.g.addNode(&Node{ID: pkgID, Label: p.Name, Type: NodePackage, Index: index, Artifact: p})
		for _, bid := range p.BundleIDs {
			target := NodeID(NodeBundle, bid)
			if _, ok := b.g.Node(target); !ok {
				b.reference(NodeBundle, bid, b.categories.Category(bid))
			}
			b.contains(pkgID, target)
		}
	}
}

// repair creates the synthetic root and a node for every edge endpoint that
// does not exist yet, typed by its id prefix.
func (b *builder) repair() {
	b.g.addNode(&Node{ID: RootID, Label: RootName, Type: NodeBundle, Category: RootCategory})
	for _, e := range b.g.Edges {
		for _, id := range []string{e.Source, e.Target} {
			if _, ok := b.g.Node(id); ok {
				continue
			}
			t, bare, _ := SplitNodeID(id)
			b.g.addNode(&Node{ID: id, Label: bare, Type: t, Category: b.guessCategory(t, bare)})
		}
	}
}

// guessCategory categorizes a reference node: through its owning bundle when
// the snapshot knows it, else by its own id.
func (b *builder) guessCategory(t NodeType, id string) string {
	switch t {
	case NodeComponent:
		if c, ok := b.snap.Component(id); ok {
			return b.categories.Category(c.BundleID)
		}
	case NodeExtensionPoint:
		if xp, ok := b.snap.ExtensionPoint(id); ok {
			return b.categories.Category(xp.BundleID)
		}
	}
	return b.categories.Category(id)
}

// connectRoot attaches isolated bundles and dangling requirement targets to
// the root, then any bundle still not connected to it, such as bundles that
// only require each other.
func (b *builder) connectRoot() {
	linked := make(map[string]struct{})
	link := func(id string) {
		if _, done := linked[id]; done || id == RootID {
			return
		}
		linked[id] = struct{}{}
		b.g.addEdge(id, RootID, EdgeRequires)
	}
	for _, id := range b.isolated {
		link(id)
	}
	for _, id := range b.danglingBundles {
		link(id)
	}

	uf := newUnionFind()
	for _, e := range b.g.Edges {
		if e.Kind == EdgeRequires {
			uf.union(e.Source, e.Target)
		}
	}
	for _, n := range b.g.Nodes {
		if n.Type != NodeBundle || uf.find(n.ID) == uf.find(RootID) {
			continue
		}
		link(n.ID)
		uf.union(n.ID, RootID)
	}
}

func (b *builder) applyHits() {
	for _, n := range b.g.Nodes {
		n.Weight += b.hits[n.ID]
	}
}

type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind { return &unionFind{parent: make(map[string]string)} }

func (u *unionFind) find(x string) string {
	p, ok := u.parent[x]
	if !ok {
		u.parent[x] = x
		return x
	}
	if p == x {
		return x
	}
	root := u.find(p)
	u.parent[x] = root
	return root
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

// Package graph builds a generic node/edge view of a filtered snapshot for
// export to JSON or Graphviz.
//
// Node ids carry a type prefix (bundle:, component:, service:, xp:,
// contribution:, package:) because an extension point and a contribution
// may share the same artifact id.
package graph

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/bayleafwalker/bindery-explorer/internal/model"
)

type NodeType string

const (
	NodeBundle         NodeType = "BUNDLE"
	NodeComponent      NodeType = "COMPONENT"
	NodeService        NodeType = "SERVICE"
	NodeExtensionPoint NodeType = "EXTENSION_POINT"
	NodeContribution   NodeType = "CONTRIBUTION"
	NodePackage        NodeType = "PACKAGE"
)

var nodePrefixes = map[NodeType]string{
	NodeBundle:         "bundle:",
	NodeComponent:      "component:",
	NodeService:        "service:",
	NodeExtensionPoint: "xp:",
	NodeContribution:   "contribution:",
	NodePackage:        "package:",
}

// NodeID returns the graph id of an artifact id of the given node type.
func NodeID(t NodeType, id string) string { return nodePrefixes[t] + id }

// SplitNodeID guesses the node type of a graph id from its prefix.
func SplitNodeID(nodeID string) (NodeType, string, bool) {
	for t, prefix := range nodePrefixes {
		if strings.HasPrefix(nodeID, prefix) {
			return t, strings.TrimPrefix(nodeID, prefix), true
		}
	}
	return "", nodeID, false
}

type EdgeKind string

const (
	EdgeRequires     EdgeKind = "REQUIRES"
	EdgeContains     EdgeKind = "CONTAINS"
	EdgeReferences   EdgeKind = "REFERENCES"
	EdgeSoftRequires EdgeKind = "SOFT_REQUIRES"
)

// RootName is the artifact id of the synthetic bundle every bundle is
// attached to.
const RootName = "bindery.root"

// RootID is the graph id of the synthetic root bundle.
var RootID = NodeID(NodeBundle, RootName)

// RootCategory is the category of the synthetic root.
const RootCategory = "ROOT"

// Node is a graph vertex. Artifact is nil for reference nodes standing in for
// something outside the filtered view.
type Node struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Type     NodeType       `json:"type"`
	Weight   int            `json:"weight"`
	Category string         `json:"category,omitempty"`
	Index    *int64         `json:"index,omitempty"`
	// External is set on nodes created without an artifact, other than
	// the root.
	External bool           `json:"reference,omitempty"`
	Artifact model.Artifact `json:"-"`
}

// Reference reports whether n stands in for an artifact outside the view.
func (n *Node) Reference() bool { return n.External }

type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"kind"`
	Weight int      `json:"weight"`
}

// Graph is the output of Build. It is not safe for concurrent mutation but
// may be read concurrently once built.
type Graph struct {
	Name  string  `json:"name"`
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`

	nodeIdx map[string]*Node
}

func newGraph(name string) *Graph {
	return &Graph{Name: name, nodeIdx: make(map[string]*Node)}
}

// UnmarshalJSON decodes a graph and rebuilds its node index. Decoded nodes
// carry no artifact.
func (g *Graph) UnmarshalJSON(data []byte) error {
	type plain Graph
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*g = Graph(p)
	g.nodeIdx = make(map[string]*Node, len(g.Nodes))
	for _, n := range g.Nodes {
		g.nodeIdx[n.ID] = n
	}
	return nil
}

// Node returns the node with the given graph id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodeIdx[id]
	return n, ok
}

// EdgesFrom returns the edges leaving id, in emission order.
func (g *Graph) EdgesFrom(id string) []*Edge {
	var out []*Edge
	for _, e := range g.Edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// HasEdge reports whether an edge of kind links source to target.
func (g *Graph) HasEdge(source, target string, kind EdgeKind) bool {
	for _, e := range g.Edges {
		if e.Source == source && e.Target == target && e.Kind == kind {
			return true
		}
	}
	return false
}

func (g *Graph) addNode(n *Node) *Node {
	if existing, ok := g.nodeIdx[n.ID]; ok {
		return existing
	}
	if n.Weight == 0 {
		n.Weight = 1
	}
	n.External = n.Artifact == nil && n.ID != RootID
	g.Nodes = append(g.Nodes, n)
	g.nodeIdx[n.ID] = n
	return n
}

func (g *Graph) addEdge(source, target string, kind EdgeKind) *Edge {
	e := &Edge{Source: source, Target: target, Kind: kind, Weight: 1}
	g.Edges = append(g.Edges, e)
	return e
}

// Stats summarizes a graph.
type Stats struct {
	Nodes      map[NodeType]int `json:"nodes"`
	Edges      map[EdgeKind]int `json:"edges"`
	References int              `json:"references"`
}

func (g *Graph) Stats() Stats {
	st := Stats{Nodes: make(map[NodeType]int), Edges: make(map[EdgeKind]int)}
	for _, n := range g.Nodes {
		st.Nodes[n.Type]++
		if n.Reference() {
			st.References++
		}
	}
	for _, e := range g.Edges {
		st.Edges[e.Kind]++
	}
	return st
}

// CategoryRule maps an id prefix to a category.
type CategoryRule struct {
	Prefix   string `json:"prefix" yaml:"prefix"`
	Category string `json:"category" yaml:"category"`
}

// Categorizer picks a category for a bundle id from ordered rules; the
// longest matching prefix wins, earlier rules break ties.
type Categorizer struct {
	rules []CategoryRule
}

func NewCategorizer(rules []CategoryRule) Categorizer {
	sorted := append([]CategoryRule(nil), rules...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i].Prefix) > len(sorted[j].Prefix) })
	return Categorizer{rules: sorted}
}

func (c Categorizer) Category(id string) string {
	for _, r := range c.rules {
		if strings.HasPrefix(id, r.Prefix) {
			return r.Category
		}
	}
	return ""
}

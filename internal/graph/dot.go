package graph

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

var nodeShapes = map[NodeType]string{
	NodeBundle:         "box",
	NodeComponent:      "ellipse",
	NodeService:        "diamond",
	NodeExtensionPoint: "triangle",
	NodeContribution:   "note",
	NodePackage:        "folder",
}

// WriteDOT writes g as a Graphviz digraph. Edge kinds become labels and
// weights become pen widths; reference nodes are dashed.
func WriteDOT(w io.Writer, g *Graph) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "digraph %s {\n", strconv.Quote(g.Name))
	fmt.Fprintln(bw, "  rankdir=LR;")
	for _, n := range g.Nodes {
		style := "solid"
		if n.Reference() {
			style = "dashed"
		}
		fmt.Fprintf(bw, "  %s [label=%s, shape=%s, style=%s, penwidth=%d",
			strconv.Quote(n.ID), strconv.Quote(n.Label), nodeShapes[n.Type], style, n.Weight)
		if n.Category != "" {
			fmt.Fprintf(bw, ", group=%s", strconv.Quote(n.Category))
		}
		fmt.Fprintln(bw, "];")
	}
	for _, e := range g.Edges {
		fmt.Fprintf(bw, "  %s -> %s [label=%s, penwidth=%d];\n",
			strconv.Quote(e.Source), strconv.Quote(e.Target), strconv.Quote(string(e.Kind)), e.Weight)
	}
	fmt.Fprintln(bw, "}")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("graph: write dot %q: %w", g.Name, err)
	}
	return nil
}

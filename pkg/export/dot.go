// Package export renders document structure for inspection. The join graph
// exporter turns structural adjacency into Graphviz DOT and SVG so a user
// can eyeball which joins a transformation must preserve.
package export

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/goccy/go-graphviz"

	"github.com/planshift/planshift/pkg/document"
	"github.com/planshift/planshift/pkg/model"
)

// JoinGraph is a snapshot of the structural adjacency in a document:
// every structural element as a node, every join as an undirected edge.
type JoinGraph struct {
	Nodes []model.Element
	Edges []model.JoinRecord
}

// CollectJoinGraph scans the repository for structural elements and their
// joins. The scan is read-only.
func CollectJoinGraph(ctx context.Context, repo document.Repository) (*JoinGraph, error) {
	elements, err := repo.Elements(ctx)
	if err != nil {
		return nil, fmt.Errorf("load elements: %w", err)
	}

	var g JoinGraph
	for _, e := range elements {
		if e.Category.IsStructural() {
			g.Nodes = append(g.Nodes, e)
		}
	}
	sort.Slice(g.Nodes, func(i, j int) bool { return g.Nodes[i].ID.Less(g.Nodes[j].ID) })

	for i := 0; i < len(g.Nodes); i++ {
		for j := i + 1; j < len(g.Nodes); j++ {
			joined, err := repo.AreJoined(ctx, g.Nodes[i].ID, g.Nodes[j].ID)
			if err != nil {
				return nil, fmt.Errorf("probe %s-%s: %w", g.Nodes[i].ID, g.Nodes[j].ID, err)
			}
			if joined {
				g.Edges = append(g.Edges, model.NewJoinRecord(g.Nodes[i].ID, g.Nodes[j].ID))
			}
		}
	}
	return &g, nil
}

// ToDOT returns a Graphviz DOT representation of the join graph.
//
// Nodes are labeled with the element name when set, otherwise with a short
// identity prefix. Walls render as boxes and columns as ellipses. The
// output is a complete undirected DOT graph renderable with Graphviz tools
// or programmatically with RenderSVG.
func (g *JoinGraph) ToDOT() string {
	var buf bytes.Buffer
	buf.WriteString("graph joins {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=12, style=filled, fillcolor=white];\n\n")

	names := make(map[model.ID]string, len(g.Nodes))
	for i, n := range g.Nodes {
		nodeID := fmt.Sprintf("n%d", i)
		names[n.ID] = nodeID

		label := n.Name
		if label == "" {
			label = n.ID.String()[:8]
		}
		shape := "box"
		if n.Category == model.CategoryStructuralColumn {
			shape = "ellipse"
		}
		fmt.Fprintf(&buf, "  %s [label=%q, shape=%s];\n", nodeID, label, shape)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %s -- %s;\n", names[e.A], names[e.B])
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders the join graph as an SVG image.
//
// RenderSVG generates DOT via ToDOT, then uses Graphviz to render it. The
// returned bytes are a complete SVG document suitable for embedding in HTML
// or saving to a file. Errors are returned if Graphviz cannot initialize,
// the DOT is malformed, or rendering fails.
func (g *JoinGraph) RenderSVG(ctx context.Context) ([]byte, error) {
	dot := g.ToDOT()

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// Package dotsink exports the graph structure as Graphviz DOT and renders
// it to SVG or PNG. Unlike the frame backends it draws the relationship
// topology, not the simulated constellation, which makes it the right tool
// for documentation and debugging aggregation output.
package dotsink

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/constelviz/constel/pkg/errors"
	"github.com/constelviz/constel/pkg/graph"
	"github.com/constelviz/constel/pkg/scene/style"
)

// Options configures DOT export.
type Options struct {
	// Detailed includes kind, weight and activity in node labels.
	// When false, only the display label is shown.
	Detailed bool
}

// ToDOT converts a graph to Graphviz DOT format. The resulting string can
// be rendered with [RenderSVG] or [RenderPNG], or fed to any Graphviz tool.
//
// Category nodes render as filled ellipses in their resolved color; entity
// nodes as rounded boxes. Edge weight maps to penwidth.
func ToDOT(g graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph constellation {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"#0b1020\";\n")
	buf.WriteString("  edge [color=\"#475569\"];\n")
	buf.WriteString("  node [fontcolor=white, fontsize=12, color=\"#1e293b\", style=filled];\n")
	buf.WriteString("\n")

	for i := range g.Nodes {
		n := &g.Nodes[i]
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -- %q [penwidth=%.1f];\n", e.Source, e.Target, penwidth(e.Weight))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n *graph.Node, detailed bool) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", nodeLabel(n, detailed)),
		fmt.Sprintf("fillcolor=%q", style.ColorFor(n)),
	}
	if n.IsCategory() {
		attrs = append(attrs, "shape=ellipse", "fontcolor=black")
	} else {
		attrs = append(attrs, "shape=box", "style=\"rounded,filled\"", "fontcolor=black")
	}
	if n.IsLocked() {
		attrs = append(attrs, "penwidth=0", "fillcolor=\"#334155\"", "fontcolor=white")
	}
	return attrs
}

func nodeLabel(n *graph.Node, detailed bool) string {
	label := n.DisplayLabel()
	if !detailed {
		return label
	}
	parts := []string{fmt.Sprintf("kind: %s", n.Kind), fmt.Sprintf("weight: %.1f", n.Weight)}
	if n.Meta != nil {
		parts = append(parts, fmt.Sprintf("activity: %.2f", n.Activity()))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func penwidth(weight float64) float64 {
	w := 0.8 + 0.4*weight
	if w > 4 {
		return 4
	}
	return w
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render graph")
	}
	return buf.Bytes(), nil
}

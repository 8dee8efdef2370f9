package termsink

import (
	"strings"
	"testing"

	"github.com/constelviz/constel/pkg/render"
	"github.com/constelviz/constel/pkg/scene/project"
)

func node(id string, x, y, radius, alpha float64) render.Node {
	return render.Node{
		Node: project.Node{ID: id, X: x, Y: y, Radius: radius, Alpha: alpha, Color: "#a7f3d0"},
	}
}

func TestFrameDimensions(t *testing.T) {
	s := New(20, 5)
	s.BeginFrame(20, 5)
	if err := s.EndFrame(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(s.View(), "\n")
	if len(lines) != 5 {
		t.Errorf("frame has %d lines, want 5", len(lines))
	}
}

func TestNodeGlyphPlaced(t *testing.T) {
	s := New(20, 5)
	s.BeginFrame(20, 5)
	s.DrawNode(node("a", 10, 2, 8, 1))
	_ = s.EndFrame()
	if !strings.ContainsRune(s.View(), '●') {
		t.Error("expected a medium node glyph in the frame")
	}
}

func TestLabelRendered(t *testing.T) {
	s := New(30, 5)
	s.BeginFrame(30, 5)
	n := node("a", 5, 2, 8, 1)
	n.Label = "Ada"
	n.ShowLabel = true
	s.DrawNode(n)
	_ = s.EndFrame()
	if !strings.Contains(s.View(), "Ada") {
		t.Error("label should appear beside the node")
	}
}

func TestFaintNodeSkipped(t *testing.T) {
	s := New(20, 5)
	s.BeginFrame(20, 5)
	s.DrawNode(node("ghost", 10, 2, 8, 0.01))
	_ = s.EndFrame()
	if strings.ContainsRune(s.View(), '●') {
		t.Error("nearly transparent nodes should not be drawn in a terminal")
	}
}

func TestEdgeWalksBetweenEndpoints(t *testing.T) {
	s := New(20, 5)
	s.BeginFrame(20, 5)
	s.DrawEdge(render.Edge{X1: 0, Y1: 2, X2: 19, Y2: 2, Alpha: 0.5, Brightness: 0.5})
	_ = s.EndFrame()
	if strings.Count(s.View(), string(edgeGlyph)) < 10 {
		t.Error("edge should fill cells between its endpoints")
	}
}

func TestNodeWinsOverEdge(t *testing.T) {
	s := New(20, 5)
	s.BeginFrame(20, 5)
	s.DrawEdge(render.Edge{X1: 0, Y1: 2, X2: 19, Y2: 2, Alpha: 0.5, Brightness: 0.5})
	n := node("a", 10, 2, 8, 1)
	n.Depth = 0.5
	s.DrawNode(n)
	_ = s.EndFrame()
	if !strings.ContainsRune(s.View(), '●') {
		t.Error("node glyph should overwrite the edge cell")
	}
}

func TestOutOfBoundsIgnored(t *testing.T) {
	s := New(10, 3)
	s.BeginFrame(10, 3)
	s.DrawNode(node("far", -5, 100, 8, 1))
	if err := s.EndFrame(); err != nil {
		t.Fatalf("out-of-bounds draw should be harmless: %v", err)
	}
}

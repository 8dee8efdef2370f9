package sim

import (
	"math"
	"testing"

	"github.com/constelviz/constel/pkg/config"
	"github.com/constelviz/constel/pkg/graph"
)

func newState(t *testing.T, g graph.Graph, mode string) *State {
	t.Helper()
	return New(config.Default().Sim, g, mode, nil)
}

func pairGraph(weight float64) graph.Graph {
	return graph.Graph{
		Nodes: []graph.Node{
			{ID: "a", Kind: graph.KindPerson, Weight: 1},
			{ID: "b", Kind: graph.KindPerson, Weight: 1},
		},
		Edges: []graph.Edge{{Source: "a", Target: "b", Weight: weight}},
	}
}

func dist(a, b *Node) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func TestRestLengthShrinksWithWeight(t *testing.T) {
	cfg := config.Default().Sim
	heavy := restLength(cfg, 10)
	light := restLength(cfg, 1)
	if heavy >= light {
		t.Errorf("rest(weight=10) = %v, want < rest(weight=1) = %v", heavy, light)
	}
	if floor := restLength(cfg, 1000); floor != cfg.LinkMinDistance {
		t.Errorf("rest(weight=1000) = %v, want floor %v", floor, cfg.LinkMinDistance)
	}
}

func TestHeavierEdgeSettlesCloser(t *testing.T) {
	heavy := newState(t, pairGraph(10), graph.ModeForce)
	light := newState(t, pairGraph(1), graph.ModeForce)
	heavy.Settle()
	light.Settle()

	dh := dist(heavy.Nodes[0], heavy.Nodes[1])
	dl := dist(light.Nodes[0], light.Nodes[1])
	if dh >= dl {
		t.Errorf("settled distance heavy=%v, light=%v; heavier edge should pull closer", dh, dl)
	}
}

func TestDanglingEdgesDropped(t *testing.T) {
	g := graph.Graph{
		Nodes: []graph.Node{{ID: "a"}, {ID: "b"}},
		Edges: []graph.Edge{
			{Source: "a", Target: "b"},
			{Source: "a", Target: "ghost"},
			{Source: "a", Target: "a"},
		},
	}
	s := newState(t, g, graph.ModeForce)
	if len(s.Edges) != 1 {
		t.Errorf("resolved edges = %d, want 1", len(s.Edges))
	}
}

func TestAlphaDecaysToRest(t *testing.T) {
	s := newState(t, pairGraph(1), graph.ModeForce)
	for i := 0; i < 2000 && s.Active(); i++ {
		s.Tick()
	}
	if s.Active() {
		t.Fatal("simulation never rested")
	}
	// Resting ticks must not move anything.
	x := s.Nodes[0].X
	s.Tick()
	if s.Nodes[0].X != x {
		t.Error("tick at rest must be a no-op")
	}
	s.Reheat()
	if !s.Active() {
		t.Error("Reheat should restore energy")
	}
}

func TestPinnedAxisExcludedFromForces(t *testing.T) {
	s := newState(t, pairGraph(1), graph.ModeForce)
	pin := 77.0
	s.Nodes[0].FX = &pin
	for i := 0; i < 50; i++ {
		s.Tick()
	}
	if s.Nodes[0].X != pin {
		t.Errorf("pinned x = %v, want %v", s.Nodes[0].X, pin)
	}
	if s.Nodes[0].VX != 0 {
		t.Errorf("pinned axis velocity = %v, want 0", s.Nodes[0].VX)
	}
	// Unpinned axes still simulate.
	if s.Nodes[0].Y == 0 && s.Nodes[1].Y == 0 {
		t.Error("unpinned axes should have moved")
	}
}

func TestStarModePinsCategoryLayers(t *testing.T) {
	g := graph.Graph{Nodes: []graph.Node{
		{ID: "c1", Kind: graph.KindCategory},
		{ID: "c2", Kind: graph.KindCategory},
		{ID: "c3", Kind: graph.KindCategory},
		{ID: "p1", Kind: graph.KindPerson},
	}}
	s := newState(t, g, graph.ModeStar)

	spacing := config.Default().Sim.StarLayerSpacing
	want := map[float64]bool{-spacing: true, 0: true, spacing: true}
	for _, n := range s.Nodes {
		if !n.Graph.IsCategory() {
			if n.FZ != nil {
				t.Errorf("entity %s should not be z-pinned", n.Graph.ID)
			}
			continue
		}
		if n.FZ == nil {
			t.Fatalf("category %s missing z pin", n.Graph.ID)
		}
		if !want[*n.FZ] {
			t.Errorf("category %s z layer = %v, want one of ±%v or 0", n.Graph.ID, *n.FZ, spacing)
		}
	}
}

func TestSettleReleasesPlanarPinsKeepsDepth(t *testing.T) {
	g := graph.Graph{Nodes: []graph.Node{
		{ID: "c1", Kind: graph.KindCategory},
		{ID: "c2", Kind: graph.KindCategory},
		{ID: "p1", Kind: graph.KindPerson},
	}}
	s := newState(t, g, graph.ModeRadial)
	for _, n := range s.Nodes {
		if n.Graph.IsCategory() && (n.FX == nil || n.FY == nil) {
			t.Fatal("radial mode should pin category XY before settle")
		}
	}
	s.Settle()
	for _, n := range s.Nodes {
		if !n.Graph.IsCategory() {
			continue
		}
		if n.FX != nil || n.FY != nil {
			t.Error("XY pins should be released after settle")
		}
		if n.FZ == nil {
			t.Error("depth pin should survive settle")
		}
	}
}

func TestEgoModePinsFocalAtOrigin(t *testing.T) {
	g := graph.Graph{Nodes: []graph.Node{
		{ID: "p1", Kind: graph.KindPerson},
		{ID: "c1", Kind: graph.KindCategory},
	}}
	s := newState(t, g, graph.ModeEgo)
	focal := s.NodeByID("c1")
	if focal.FX == nil || focal.FY == nil || focal.FZ == nil {
		t.Fatal("ego focal node should be fully pinned")
	}
	s.Tick()
	if focal.X != 0 || focal.Y != 0 || focal.Z != 0 {
		t.Error("ego focal node should stay at the origin")
	}
}

func TestCategoryChargeStronger(t *testing.T) {
	cfg := config.Default().Sim
	cat := chargeFor(cfg, &graph.Node{Kind: graph.KindCategory, Weight: 2})
	ent := chargeFor(cfg, &graph.Node{Kind: graph.KindPerson, Weight: 2})
	if cat >= ent {
		t.Errorf("category charge %v should be more negative than entity %v", cat, ent)
	}
}

func TestEmptyGraph(t *testing.T) {
	s := newState(t, graph.Graph{}, graph.ModeForce)
	s.Tick() // must not panic
	if got := s.Settle(); got != config.Default().Sim.PresettleTicks {
		t.Errorf("Settle ticks = %d", got)
	}
	if s.NodeByID("anything") != nil {
		t.Error("NodeByID on empty graph should be nil")
	}
}

func TestReleaseIdempotent(t *testing.T) {
	s := newState(t, pairGraph(1), graph.ModeForce)
	s.Release()
	s.Release()
	s.Tick() // resting and empty, must not panic
}

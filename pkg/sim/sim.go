package sim

import (
	"math"

	"github.com/constelviz/constel/pkg/config"
	"github.com/constelviz/constel/pkg/graph"
)

// Node is a simulated node: the input node plus mutable position, velocity,
// and optional per-axis pins. A non-nil pin fixes that axis; pinned axes are
// excluded from force updates.
type Node struct {
	Graph graph.Node

	X, Y, Z    float64
	VX, VY, VZ float64
	FX, FY, FZ *float64

	// Radius is the visual base radius, fixed at initialization.
	// Collision uses Radius plus a kind-dependent padding.
	Radius float64
	charge float64
	index  int
}

// Edge is an input edge resolved to node indices, with its precomputed rest
// length. Edges that failed to resolve are dropped at initialization.
type Edge struct {
	Source, Target int
	Weight         float64
	Rest           float64
}

// State owns the simulation for one graph instance.
type State struct {
	Nodes []*Node
	Edges []Edge

	cfg   config.SimTuning
	byID  map[string]int
	alpha float64
	mode  string
}

// RadiusFunc computes a node's visual base radius. The engine supplies the
// styling formula; a nil func falls back to a weight-scaled default.
type RadiusFunc func(n *graph.Node) float64

// New builds a simulation state for the given graph and layout mode.
// Malformed input never fails: missing numeric fields default to zero and
// edges with dangling endpoints are dropped. Graph connectivity is not
// validated.
func New(cfg config.SimTuning, g graph.Graph, mode string, radius RadiusFunc) *State {
	if radius == nil {
		radius = func(n *graph.Node) float64 {
			return 8 + 2*math.Sqrt(math.Max(n.Weight, 0))
		}
	}

	s := &State{
		cfg:   cfg,
		byID:  make(map[string]int, len(g.Nodes)),
		alpha: 1,
		mode:  mode,
	}

	s.Nodes = make([]*Node, 0, len(g.Nodes))
	for i := range g.Nodes {
		gn := g.Nodes[i]
		if _, dup := s.byID[gn.ID]; dup {
			continue
		}
		n := &Node{
			Graph:  gn,
			Radius: radius(&gn),
			charge: chargeFor(cfg, &gn),
			index:  len(s.Nodes),
		}
		s.byID[gn.ID] = n.index
		s.Nodes = append(s.Nodes, n)
	}

	s.Edges = make([]Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		si, ok1 := s.byID[e.Source]
		ti, ok2 := s.byID[e.Target]
		if !ok1 || !ok2 || si == ti {
			continue
		}
		w := math.Max(e.Weight, 0)
		s.Edges = append(s.Edges, Edge{
			Source: si,
			Target: ti,
			Weight: w,
			Rest:   restLength(cfg, w),
		})
	}

	s.seed()
	return s
}

// chargeFor derives the repulsion strength for a node: category nodes repel
// harder than entities so they claim more empty space, and heavier nodes
// repel harder still.
func chargeFor(cfg config.SimTuning, n *graph.Node) float64 {
	if n.IsCategory() {
		return cfg.ChargeCategory - cfg.ChargeCategoryPerW*n.Weight
	}
	return cfg.ChargeEntity - cfg.ChargeEntityPerW*n.Weight
}

// restLength is the target separation of a link: it shrinks as edge weight
// grows, so heavier relationships sit closer together.
func restLength(cfg config.SimTuning, weight float64) float64 {
	rest := cfg.LinkBaseDistance - cfg.LinkWeightShrink*weight
	if rest < cfg.LinkMinDistance {
		rest = cfg.LinkMinDistance
	}
	return rest
}

// NodeByID returns the simulated node with the given id, or nil.
func (s *State) NodeByID(id string) *Node {
	i, ok := s.byID[id]
	if !ok {
		return nil
	}
	return s.Nodes[i]
}

// Alpha returns the current system energy.
func (s *State) Alpha() float64 { return s.alpha }

// Active reports whether the simulation still has energy to spend.
func (s *State) Active() bool { return s.alpha >= s.cfg.AlphaMin }

// Reheat restores energy so the simulation resumes moving. Used when the
// layout must reorganize, never on ordinary camera interaction.
func (s *State) Reheat() { s.alpha = 1 }

// Settle runs the configured number of ticks synchronously so the graph
// appears already organized at first paint, then releases any planar
// category pins the layout mode set. Accumulated alpha is near the resting
// threshold by then, so the release causes no visible jump.
func (s *State) Settle() int {
	ticks := s.cfg.PresettleTicks
	for i := 0; i < ticks; i++ {
		s.Tick()
	}
	s.releasePlanarPins()
	return ticks
}

// releasePlanarPins clears XY pins on category nodes while keeping any
// z-layer pin assigned by the layout mode.
func (s *State) releasePlanarPins() {
	for _, n := range s.Nodes {
		if n.Graph.IsCategory() {
			n.FX, n.FY = nil, nil
		}
	}
}

// Freeze drains remaining energy so Tick becomes a no-op. Used when node
// positions come from a cached layout instead of a live settle.
func (s *State) Freeze() { s.alpha = 0 }

// Release drops the node and edge arrays. The State must not be used after.
func (s *State) Release() {
	s.Nodes = nil
	s.Edges = nil
	s.byID = nil
	s.alpha = 0
}

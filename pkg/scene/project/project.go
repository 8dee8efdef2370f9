// Package project converts simulated 3D node positions into 2D screen
// attributes for backends without a 3D scene graph. Projection is a pure
// function: identical inputs (positions, view, canvas, time) produce
// identical output frames, so 2D backends can re-render or diff frames
// freely. 3D-capable backends skip this package and consume raw positions
// with the same radius/color/alpha math applied scene-side.
package project

import (
	"math"
	"sort"

	"github.com/constelviz/constel/pkg/config"
	"github.com/constelviz/constel/pkg/graph"
	"github.com/constelviz/constel/pkg/scene/style"
	"github.com/constelviz/constel/pkg/sim"
)

// View is the camera-derived transform applied before projection: a yaw and
// pitch rotation about the look-at center and a zoom factor. The zero View
// (with Zoom 0 treated as 1) is the identity.
type View struct {
	Yaw, Pitch float64
	Zoom       float64
	CX, CY, CZ float64 // look-at center in world units
}

// Node is a projected node ready for 2D drawing.
type Node struct {
	ID     string
	Index  int
	X, Y   float64
	Radius float64
	Alpha  float64
	Depth  float64 // rotated z; larger is farther from the viewer
	Color  string
}

// Edge is a projected edge between two surviving endpoints.
type Edge struct {
	SourceID, TargetID string
	X1, Y1, X2, Y2     float64
	Alpha              float64
	Brightness         float64 // grows with edge weight, capped at 1
}

// Frame is one projected scene, nodes sorted back-to-front.
type Frame struct {
	Nodes []Node
	Edges []Edge
}

// Pipeline projects frames with fixed tuning.
type Pipeline struct {
	cfg config.ProjectionTuning
}

// New creates a projection pipeline.
func New(cfg config.ProjectionTuning) Pipeline {
	return Pipeline{cfg: cfg}
}

// Project computes the 2D frame for the given node array and edge list.
// Nothing is mutated. Edges with a missing endpoint are skipped. timeMs
// drives the deterministic micro-drift that keeps idle nodes breathing
// without the physics engine running.
func (p Pipeline) Project(nodes []*sim.Node, edges []graph.Edge, width, height, timeMs float64, view View) Frame {
	zoom := view.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	cx, cy := width/2, height/2
	sinYaw, cosYaw := math.Sincos(view.Yaw)
	sinPitch, cosPitch := math.Sincos(view.Pitch)

	frame := Frame{Nodes: make([]Node, 0, len(nodes))}
	byID := make(map[string]int, len(nodes))

	for i, n := range nodes {
		// Rotate about the look-at center: yaw around the vertical axis,
		// then pitch.
		wx := (n.X - view.CX) * p.cfg.SceneScale
		wy := (n.Y - view.CY) * p.cfg.SceneScale
		wz := (n.Z - view.CZ) * p.cfg.SceneScale

		rx := wx*cosYaw + wz*sinYaw
		rz := -wx*sinYaw + wz*cosYaw
		ry := wy*cosPitch - rz*sinPitch
		rz = wy*sinPitch + rz*cosPitch

		dx, dy := p.drift(i, timeMs)

		denom := p.cfg.FocalDistance + rz
		if denom < 1 {
			denom = 1
		}
		persp := p.cfg.FocalDistance / denom

		radius := n.Radius * persp * zoom
		if radius < p.cfg.MinRadius {
			radius = p.cfg.MinRadius
		}

		pn := Node{
			ID:     n.Graph.ID,
			Index:  i,
			X:      cx + (rx*zoom+dx)*persp,
			Y:      cy + (ry*zoom+dy)*persp,
			Radius: radius,
			Alpha:  p.depthAlpha(rz),
			Depth:  rz,
			Color:  style.ColorFor(&n.Graph),
		}
		byID[pn.ID] = len(frame.Nodes)
		frame.Nodes = append(frame.Nodes, pn)
	}

	for _, e := range edges {
		si, ok1 := byID[e.Source]
		ti, ok2 := byID[e.Target]
		if !ok1 || !ok2 {
			continue // inert edge: endpoint not in the live node set
		}
		a, b := frame.Nodes[si], frame.Nodes[ti]
		frame.Edges = append(frame.Edges, Edge{
			SourceID:   e.Source,
			TargetID:   e.Target,
			X1:         a.X,
			Y1:         a.Y,
			X2:         b.X,
			Y2:         b.Y,
			Alpha:      math.Min(a.Alpha, b.Alpha) * p.cfg.EdgeAlphaScale,
			Brightness: p.edgeBrightness(e.Weight),
		})
	}

	// Back-to-front so nearer nodes draw last, on top. Ties break on the
	// original index to keep the ordering deterministic.
	sort.SliceStable(frame.Nodes, func(i, j int) bool {
		if frame.Nodes[i].Depth != frame.Nodes[j].Depth {
			return frame.Nodes[i].Depth > frame.Nodes[j].Depth
		}
		return frame.Nodes[i].Index < frame.Nodes[j].Index
	})

	return frame
}

// drift is the micro-drift offset: a small sinusoid whose phase is a fixed
// function of node index and wall-clock time, reproducible by construction.
func (p Pipeline) drift(index int, timeMs float64) (dx, dy float64) {
	t := timeMs / 1000 * p.cfg.DriftSpeed
	phase := float64(index)
	dx = p.cfg.DriftAmplitude * math.Sin(t+phase*1.7)
	dy = p.cfg.DriftAmplitude * math.Cos(t*0.9+phase*2.3)
	return dx, dy
}

// depthAlpha maps rotated z into opacity: nodes nearer the viewer are more
// opaque, floored so nothing fully disappears.
func (p Pipeline) depthAlpha(z float64) float64 {
	w := p.cfg.DepthWindow
	t := (z + w) / (2 * w)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return 1 - t*(1-p.cfg.AlphaFloor)
}

// edgeBrightness grows with edge weight so stronger relationships read
// brighter, capped at full brightness.
func (p Pipeline) edgeBrightness(weight float64) float64 {
	b := p.cfg.EdgeBaseBright + p.cfg.EdgeBrightPerW*math.Max(weight, 0)
	if b > 1 {
		return 1
	}
	return b
}

// Package ebitensink renders frames into a live window. The sink records
// each frame's draw operations; the gui command's game loop blits the most
// recent frame from its Draw callback, keeping engine stepping and screen
// composition on ebiten's own cadence.
package ebitensink

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/constelviz/constel/pkg/render"
	"github.com/constelviz/constel/pkg/scene/budget"
)

func init() {
	render.Register("window", func(opts render.Options) (render.Backend, error) {
		return New(opts.Width, opts.Height), nil
	})
}

var backgroundColor = color.RGBA{R: 0x0b, G: 0x10, B: 0x20, A: 0xff}

type nodeOp struct {
	n render.Node
	c color.RGBA
}

type edgeOp struct {
	e render.Edge
	c color.RGBA
}

// Sink buffers one frame of draw operations for the window loop.
type Sink struct {
	width, height int

	// building is written between BeginFrame and EndFrame; ready holds the
	// last completed frame for Blit.
	building frameOps
	ready    frameOps
}

type frameOps struct {
	edges []edgeOp
	nodes []nodeOp
}

// New creates a window sink.
func New(width, height int) *Sink {
	return &Sink{width: width, height: height}
}

// BeginFrame starts a new op list.
func (s *Sink) BeginFrame(width, height int) {
	if width > 0 && height > 0 {
		s.width, s.height = width, height
	}
	s.building = frameOps{
		edges: s.building.edges[:0],
		nodes: s.building.nodes[:0],
	}
}

// DrawEdge records an edge stroke.
func (s *Sink) DrawEdge(e render.Edge) {
	c := 0.35 + 0.65*e.Brightness
	s.building.edges = append(s.building.edges, edgeOp{
		e: e,
		c: rgba(c*0.8, c*0.85, c, e.Alpha),
	})
}

// DrawNode records a node fill.
func (s *Sink) DrawNode(n render.Node) {
	r, g, b := budget.ParseHexColor(n.Color)
	s.building.nodes = append(s.building.nodes, nodeOp{
		n: n,
		c: rgba(float64(r)/255, float64(g)/255, float64(b)/255, n.Alpha),
	})
}

// EndFrame publishes the op list.
func (s *Sink) EndFrame() error {
	s.ready, s.building = s.building, s.ready
	return nil
}

// Blit composes the last completed frame onto the screen. Call from the
// game's Draw.
func (s *Sink) Blit(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	for _, op := range s.ready.edges {
		e := op.e
		vector.StrokeLine(screen,
			float32(e.X1), float32(e.Y1), float32(e.X2), float32(e.Y2),
			float32(0.8+1.2*e.Brightness), op.c, true)
	}
	for _, op := range s.ready.nodes {
		n := op.n
		if n.Glow > 0 {
			halo := op.c
			halo.A = uint8(float64(halo.A) * 0.25 * n.Glow)
			vector.DrawFilledCircle(screen,
				float32(n.X), float32(n.Y), float32(n.Radius*(1.5+n.Glow)), halo, true)
		}
		vector.DrawFilledCircle(screen,
			float32(n.X), float32(n.Y), float32(n.Radius), op.c, true)
		if n.Locked {
			vector.StrokeCircle(screen,
				float32(n.X), float32(n.Y), float32(n.Radius+3), 1, op.c, true)
		}
		if n.ShowLabel && n.Label != "" {
			ebitenutil.DebugPrintAt(screen, n.Label, int(n.X-float64(len(n.Label))*3), int(n.Y+n.Radius+6))
		}
	}
}

// Size returns the current canvas size.
func (s *Sink) Size() (int, int) { return s.width, s.height }

// Dispose drops buffered ops.
func (s *Sink) Dispose() {
	s.building = frameOps{}
	s.ready = frameOps{}
}

func rgba(r, g, b, a float64) color.RGBA {
	// Premultiply so translucent fills composite correctly.
	return color.RGBA{
		R: uint8(clamp01(r*a) * 255),
		G: uint8(clamp01(g*a) * 255),
		B: uint8(clamp01(b*a) * 255),
		A: uint8(clamp01(a) * 255),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

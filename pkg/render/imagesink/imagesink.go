// Package imagesink renders frames into an offscreen raster image. It backs
// the CLI's PNG and orbit-frame output and provides the pixel read-back used
// for idle snapshots.
package imagesink

import (
	"image"
	"image/draw"

	"github.com/fogleman/gg"

	"github.com/constelviz/constel/pkg/errors"
	"github.com/constelviz/constel/pkg/render"
	"github.com/constelviz/constel/pkg/scene/budget"
)

func init() {
	render.Register("image", func(opts render.Options) (render.Backend, error) {
		return New(opts), nil
	})
}

const glowSpriteSize = 64

// background is the deep night-sky fill behind the constellation.
var background = [3]float64{0x0b / 255.0, 0x10 / 255.0, 0x20 / 255.0}

// Sink rasterizes draw operations with a software 2D canvas.
type Sink struct {
	sprites *budget.Budget
	dc      *gg.Context
	width   int
	height  int
	frame   image.Image // last completed frame
}

// New creates an image sink. The canvas is allocated lazily on the first
// BeginFrame so resizes don't churn allocations mid-construction.
func New(opts render.Options) *Sink {
	return &Sink{
		sprites: budget.New(opts.Tuning.Budget),
		width:   opts.Width,
		height:  opts.Height,
	}
}

// BeginFrame clears the canvas, reallocating when the size changed.
func (s *Sink) BeginFrame(width, height int) {
	if width > 0 && height > 0 {
		s.width, s.height = width, height
	}
	if s.dc == nil || s.dc.Width() != s.width || s.dc.Height() != s.height {
		s.dc = gg.NewContext(s.width, s.height)
	}
	s.dc.SetRGB(background[0], background[1], background[2])
	s.dc.Clear()
}

// DrawEdge strokes one edge, brightness lifting both the line weight and
// how far the color leans from dim slate toward white.
func (s *Sink) DrawEdge(e render.Edge) {
	if s.dc == nil {
		return
	}
	c := 0.35 + 0.65*e.Brightness
	s.dc.SetRGBA(c*0.8, c*0.85, c, e.Alpha)
	s.dc.SetLineWidth(0.8 + 1.2*e.Brightness)
	s.dc.DrawLine(e.X1, e.Y1, e.X2, e.Y2)
	s.dc.Stroke()
}

// DrawNode paints the glow sprite, the node body, and the label.
func (s *Sink) DrawNode(n render.Node) {
	if s.dc == nil {
		return
	}
	r, g, b := budget.ParseHexColor(n.Color)
	fr, fg, fb := float64(r)/255, float64(g)/255, float64(b)/255

	if n.Glow > 0 {
		sprite := s.sprites.GlowTexture(n.GlowKey, n.Color, glowSpriteSize)
		if sprite != nil {
			// Glow intensity widens the halo; the sprite itself is shared
			// per key and never re-rasterized.
			size := n.Radius * (2 + 2.5*n.Glow)
			scale := size * 2 / glowSpriteSize
			s.dc.Push()
			s.dc.ScaleAbout(scale, scale, n.X, n.Y)
			s.dc.DrawImageAnchored(sprite, int(n.X), int(n.Y), 0.5, 0.5)
			s.dc.Pop()
		}
	}

	s.dc.SetRGBA(fr, fg, fb, n.Alpha)
	s.dc.DrawCircle(n.X, n.Y, n.Radius)
	s.dc.Fill()

	if n.Locked {
		s.dc.SetRGBA(fr, fg, fb, n.Alpha*0.6)
		s.dc.SetLineWidth(1)
		s.dc.DrawCircle(n.X, n.Y, n.Radius+3)
		s.dc.Stroke()
	}

	if n.ShowLabel && n.Label != "" {
		s.dc.SetRGBA(0.92, 0.94, 0.98, clamp01(n.Alpha+0.2))
		s.dc.DrawStringAnchored(n.Label, n.X, n.Y+n.Radius+12, 0.5, 0.5)
	}
}

// EndFrame publishes the canvas as the last completed frame.
func (s *Sink) EndFrame() error {
	if s.dc == nil {
		return errors.New(errors.ErrCodeRenderFailed, "frame ended before BeginFrame")
	}
	s.frame = s.dc.Image()
	return nil
}

// Snapshot copies the last completed frame.
func (s *Sink) Snapshot() (image.Image, error) {
	if s.frame == nil {
		return nil, errors.New(errors.ErrCodeRenderFailed, "no completed frame to snapshot")
	}
	b := s.frame.Bounds()
	cp := image.NewRGBA(b)
	draw.Draw(cp, b, s.frame, b.Min, draw.Src)
	return cp, nil
}

// WritePNG saves the last completed frame to path.
func (s *Sink) WritePNG(path string) error {
	if s.frame == nil {
		return errors.New(errors.ErrCodeRenderFailed, "no completed frame to save")
	}
	if err := gg.SavePNG(path, s.frame); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "save png")
	}
	return nil
}

// Dispose releases the sprite cache and canvas.
func (s *Sink) Dispose() {
	s.sprites.Dispose()
	s.dc = nil
	s.frame = nil
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

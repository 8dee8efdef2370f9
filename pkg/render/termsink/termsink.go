// Package termsink renders frames into a colored rune grid for terminal
// display. The view command embeds it in a Bubble Tea program; each frame
// composes to a single string via lipgloss styles.
package termsink

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/constelviz/constel/pkg/render"
)

func init() {
	render.Register("term", func(opts render.Options) (render.Backend, error) {
		return New(opts.Width, opts.Height), nil
	})
}

// Node glyphs by apparent size, smallest to largest.
var glyphs = []rune{'·', '•', '●', '⬤'}

const edgeGlyph = '┄'

var (
	edgeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	brightEdge  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	lockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

type cell struct {
	r     rune
	style lipgloss.Style
	depth float64 // draw-order priority; nodes beat edges
}

// Sink draws into a width x height cell grid. Coordinates handed to
// DrawNode/DrawEdge are cell coordinates, so callers size the engine canvas
// in terminal cells.
type Sink struct {
	width, height int
	grid          []cell
	frame         string
}

// New creates a terminal sink with the given grid size.
func New(width, height int) *Sink {
	return &Sink{width: width, height: height}
}

// BeginFrame clears the grid, resizing if the terminal changed.
func (s *Sink) BeginFrame(width, height int) {
	if width > 0 && height > 0 {
		s.width, s.height = width, height
	}
	s.grid = make([]cell, s.width*s.height)
	for i := range s.grid {
		s.grid[i] = cell{r: ' ', depth: math.Inf(-1)}
	}
}

func (s *Sink) set(x, y int, r rune, style lipgloss.Style, depth float64) {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return
	}
	i := y*s.width + x
	if s.grid[i].depth > depth {
		return
	}
	s.grid[i] = cell{r: r, style: style, depth: depth}
}

// DrawEdge walks the line between the endpoints, skipping very faint edges
// entirely since a dim glyph row reads as noise in a terminal.
func (s *Sink) DrawEdge(e render.Edge) {
	if s.grid == nil || e.Alpha < 0.05 {
		return
	}
	style := edgeStyle
	if e.Brightness > 0.7 {
		style = brightEdge
	}
	dx, dy := e.X2-e.X1, e.Y2-e.Y1
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	for i := 1; i < steps; i++ {
		t := float64(i) / float64(steps)
		s.set(int(e.X1+dx*t), int(e.Y1+dy*t), edgeGlyph, style, 0)
	}
}

// DrawNode places a glyph sized by the projected radius, colored with the
// node's hex color, with the label to the right when requested.
func (s *Sink) DrawNode(n render.Node) {
	if s.grid == nil || n.Alpha < 0.05 {
		return
	}
	g := glyphs[glyphIndex(n.Radius)]
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(n.Color))
	if n.Locked {
		style = lockedStyle
	}
	x, y := int(n.X), int(n.Y)
	// Nearer nodes overwrite; the engine already feeds back-to-front.
	s.set(x, y, g, style, 1-n.Depth)

	if n.ShowLabel && n.Label != "" {
		for i, r := range n.Label {
			s.set(x+2+i, y, r, labelStyle, 1-n.Depth)
		}
	}
}

func glyphIndex(radius float64) int {
	switch {
	case radius >= 12:
		return 3
	case radius >= 7:
		return 2
	case radius >= 4:
		return 1
	default:
		return 0
	}
}

// EndFrame composes the grid into the frame string.
func (s *Sink) EndFrame() error {
	var b strings.Builder
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			c := s.grid[y*s.width+x]
			if c.r == ' ' {
				b.WriteRune(' ')
				continue
			}
			b.WriteString(c.style.Render(string(c.r)))
		}
		if y < s.height-1 {
			b.WriteByte('\n')
		}
	}
	s.frame = b.String()
	return nil
}

// View returns the last composed frame, ready to return from a Bubble Tea
// model's View method.
func (s *Sink) View() string { return s.frame }

// Dispose drops the grid.
func (s *Sink) Dispose() {
	s.grid = nil
	s.frame = ""
}

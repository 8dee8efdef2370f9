package sim

import (
	"math"

	"github.com/constelviz/constel/pkg/graph"
)

// seed assigns deterministic initial positions (a phyllotaxis spiral, so no
// two nodes start coincident) and applies the layout mode's category pins.
// Only the initial pinned z of category nodes differs between modes; the
// ensuing simulation relaxes everything else.
func (s *State) seed() {
	goldenAngle := math.Pi * (3 - math.Sqrt(5))
	for i, n := range s.Nodes {
		r := s.cfg.SeedRadius * math.Sqrt(0.5+float64(i))
		a := float64(i) * goldenAngle
		n.X = r * math.Cos(a)
		n.Y = r * math.Sin(a)
		n.Z = 0
	}

	categories := s.categoryIndices()
	switch s.mode {
	case graph.ModeRadial:
		s.pinRadial(categories)
	case graph.ModeStar:
		s.pinStar(categories)
	case graph.ModeEgo:
		s.pinEgo(categories)
	}
}

func (s *State) categoryIndices() []int {
	var out []int
	for i, n := range s.Nodes {
		if n.Graph.IsCategory() {
			out = append(out, i)
		}
	}
	return out
}

// pinRadial fans category nodes out in depth with a radial function of their
// index, and rings them in XY so the pre-settle run organizes entities
// around stable anchors. The XY pins are released after pre-settle.
func (s *State) pinRadial(categories []int) {
	count := len(categories)
	if count == 0 {
		return
	}
	for k, i := range categories {
		n := s.Nodes[i]
		angle := 2 * math.Pi * float64(k) / float64(count)
		s.pinXY(n, s.ringRadius()*math.Cos(angle), s.ringRadius()*math.Sin(angle))
		z := s.cfg.RadialDepthSpread * math.Sin(angle)
		n.FZ = &z
		n.Z = z
	}
}

// pinStar assigns category nodes one of three discrete z layers so
// categories cluster at distinct depths.
func (s *State) pinStar(categories []int) {
	layers := [3]float64{-s.cfg.StarLayerSpacing, 0, s.cfg.StarLayerSpacing}
	count := len(categories)
	for k, i := range categories {
		n := s.Nodes[i]
		angle := 2 * math.Pi * float64(k) / math.Max(float64(count), 1)
		s.pinXY(n, s.ringRadius()*math.Cos(angle), s.ringRadius()*math.Sin(angle))
		z := layers[k%len(layers)]
		n.FZ = &z
		n.Z = z
	}
}

// pinEgo pins the focal node (the first category, or the first node when no
// category exists) at the origin with z fixed to 0; the center and charge
// forces bias everything else outward around it.
func (s *State) pinEgo(categories []int) {
	focal := 0
	if len(categories) > 0 {
		focal = categories[0]
	}
	if len(s.Nodes) == 0 {
		return
	}
	n := s.Nodes[focal]
	zero1, zero2, zero3 := 0.0, 0.0, 0.0
	n.FX, n.FY, n.FZ = &zero1, &zero2, &zero3
	n.X, n.Y, n.Z = 0, 0, 0
}

func (s *State) pinXY(n *Node, x, y float64) {
	px, py := x, y
	n.FX, n.FY = &px, &py
	n.X, n.Y = x, y
}

// ringRadius spaces the category ring proportionally to the seed spiral so
// pins sit outside the densest initial cluster.
func (s *State) ringRadius() float64 {
	return s.cfg.SeedRadius * 4
}

// Package style derives the significance-driven visual attributes of nodes:
// glow tier from activity, base radius from weight, neighbor-degree
// classification during focus, and the locked state of unconnected
// categories. Everything here is a pure function of node data plus the
// current selection; nothing is stored between frames.
package style

import (
	"math"

	"github.com/constelviz/constel/pkg/config"
	"github.com/constelviz/constel/pkg/graph"
)

// GlowTier buckets a node's visual intensity, 0-4. Tier 0 is reserved for
// category nodes regardless of score; entity tiers derive from the activity
// score with fixed thresholds, tier 1 the most active, tier 4 lowest or
// unknown. Tiers are recomputed on read, never stored.
func GlowTier(cfg config.StyleTuning, n *graph.Node) int {
	if n.IsCategory() {
		return 0
	}
	score := n.Activity()
	switch {
	case score >= cfg.TierOneActivity:
		return 1
	case score >= cfg.TierTwoActivity:
		return 2
	case score >= cfg.TierThreeActivity:
		return 3
	default:
		return 4
	}
}

// BaseRadius computes the node's visual radius in world units from its
// weight, with kind-dependent base and cap.
func BaseRadius(cfg config.StyleTuning, n *graph.Node) float64 {
	base, max := cfg.EntityBaseRadius, cfg.EntityMaxRadius
	if n.IsCategory() {
		base, max = cfg.CategoryBase, cfg.CategoryMaxRadius
	}
	r := base + cfg.RadiusPerWeight*math.Sqrt(math.Max(n.Weight, 0))
	if r > max {
		return max
	}
	return r
}

// State classifies a node relative to the focused node.
type State int

// The five mutually exclusive visual states.
const (
	StateDefault State = iota // no node focused
	StateFocused
	StateFirstDegree
	StateSecondDegree
	StateUnrelated
)

// Classify returns the visual state of node id given the focus id and the
// neighbor sets computed from the adjacency index. With no focus, every
// node is StateDefault.
func Classify(id, focusID string, first, second map[string]struct{}) State {
	if focusID == "" {
		return StateDefault
	}
	if id == focusID {
		return StateFocused
	}
	if _, ok := first[id]; ok {
		return StateFirstDegree
	}
	if _, ok := second[id]; ok {
		return StateSecondDegree
	}
	return StateUnrelated
}

// Visual is the fixed attribute tuple a state maps to.
type Visual struct {
	CoreOpacity float64 // sprite/body opacity
	Glow        float64 // emissive intensity
	ShowLabel   bool
	EdgeDim     float64 // multiplier applied to incident edge alpha
	Locked      bool    // category awaiting connection: dimmed, not expandable
}

// defaultGlow is the glow-tier-driven intensity used when nothing is
// focused.
var defaultGlow = [5]float64{0.8, 1.0, 0.7, 0.4, 0.2}

// VisualFor resolves the full visual tuple for a node. Unrelated category
// nodes stay faintly visible as landmarks; unrelated entities become nearly
// invisible. Locked categories render at reduced opacity in every state.
func VisualFor(n *graph.Node, state State, tier int) Visual {
	v := visualForState(n, state, tier)
	if n.IsLocked() {
		v.Locked = true
		v.CoreOpacity *= 0.5
		v.Glow *= 0.5
	}
	return v
}

func visualForState(n *graph.Node, state State, tier int) Visual {
	switch state {
	case StateFocused:
		return Visual{CoreOpacity: 1.0, Glow: 1.0, ShowLabel: true, EdgeDim: 1.0}
	case StateFirstDegree:
		return Visual{CoreOpacity: 0.9, Glow: 0.7, ShowLabel: true, EdgeDim: 0.8}
	case StateSecondDegree:
		return Visual{CoreOpacity: 0.55, Glow: 0.35, ShowLabel: false, EdgeDim: 0.45}
	case StateUnrelated:
		if n.IsCategory() {
			return Visual{CoreOpacity: 0.25, Glow: 0.1, ShowLabel: false, EdgeDim: 0.15}
		}
		return Visual{CoreOpacity: 0.08, Glow: 0, ShowLabel: false, EdgeDim: 0.1}
	default:
		if tier < 0 || tier >= len(defaultGlow) {
			tier = len(defaultGlow) - 1
		}
		return Visual{
			CoreOpacity: 1.0,
			Glow:        defaultGlow[tier],
			ShowLabel:   n.IsCategory(),
			EdgeDim:     1.0,
		}
	}
}

// kindColors is the default palette applied when the aggregation layer
// supplies no explicit color.
var kindColors = map[string]string{
	graph.KindPerson:   "#f9a8d4",
	graph.KindFile:     "#93c5fd",
	graph.KindEvent:    "#fcd34d",
	graph.KindTopic:    "#a7f3d0",
	graph.KindCategory: "#c4b5fd",
}

// ColorFor resolves a node's hex color: explicit metadata color first, then
// the kind palette, then a neutral fallback.
func ColorFor(n *graph.Node) string {
	if n.Meta != nil && n.Meta.Color != "" {
		return n.Meta.Color
	}
	if c, ok := kindColors[n.Kind]; ok {
		return c
	}
	return "#e5e7eb"
}

package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Node kinds.
const (
	KindPerson   = "person"
	KindFile     = "file"
	KindEvent    = "calendar-event"
	KindTopic    = "topic"
	KindCategory = "category"
)

// Layout modes selectable at engine initialization.
const (
	ModeForce  = "force"  // pure 3D free simulation
	ModeRadial = "radial" // category z fans out radially by index
	ModeStar   = "star"   // categories cluster on discrete z layers
	ModeEgo    = "ego"    // focal node pinned near the origin
)

// ValidModes is the set of supported layout modes.
var ValidModes = map[string]bool{
	ModeForce:  true,
	ModeRadial: true,
	ModeStar:   true,
	ModeEgo:    true,
}

// =============================================================================
// Graph - Knowledge Graph Input Format
// =============================================================================

// Graph is the canonical serialization format for knowledge graphs fed to
// the engine. Produced by the data-aggregation layer, consumed by SetData.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is an entity or category in the knowledge graph.
type Node struct {
	ID     string  `json:"id"`
	Kind   string  `json:"kind"`
	Label  string  `json:"label,omitempty"`
	Weight float64 `json:"weight,omitempty"` // non-negative, drives base size
	Meta   *Meta   `json:"meta,omitempty"`
}

// Meta carries optional display metadata supplied by the aggregation layer.
type Meta struct {
	Category      string  `json:"category,omitempty"`
	Color         string  `json:"color,omitempty"` // hex, e.g. "#7dd3fc"
	NodeCount     int     `json:"node_count,omitempty"`
	ActivityScore float64 `json:"activity_score,omitempty"` // in [0,1]
	Expanded      bool    `json:"expanded,omitempty"`
}

// IsCategory returns true for category nodes.
func (n *Node) IsCategory() bool { return n.Kind == KindCategory }

// IsLocked reports whether a category node is in the locked state
// (connected source has no data yet). Locked categories render dimmed and
// route clicks to a connect callback instead of normal selection.
func (n *Node) IsLocked() bool {
	return n.IsCategory() && n.Meta != nil && n.Meta.NodeCount == 0
}

// Activity returns the activity score, defaulting to 0 when metadata is
// absent and clamping into [0,1] so malformed input cannot leak out.
func (n *Node) Activity() float64 {
	if n.Meta == nil {
		return 0
	}
	s := n.Meta.ActivityScore
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a weighted relationship between two nodes, referenced by id.
// An edge whose endpoints do not both resolve to live nodes is inert: it is
// skipped by projection and rendering, never an error.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight,omitempty"`
}

// =============================================================================
// Serialization API
// =============================================================================

// Marshal serializes a Graph to pretty-printed JSON bytes.
func Marshal(g Graph) ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// Unmarshal deserializes JSON bytes into a Graph and normalizes it:
// missing numeric fields default to zero, negative weights are clamped to 0,
// and duplicate node ids are rejected (ids must be unique per graph).
func Unmarshal(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, fmt.Errorf("unmarshal graph: %w", err)
	}
	seen := make(map[string]bool, len(g.Nodes))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.ID == "" {
			return Graph{}, fmt.Errorf("node %d: missing id", i)
		}
		if seen[n.ID] {
			return Graph{}, fmt.Errorf("duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
		if n.Weight < 0 {
			n.Weight = 0
		}
	}
	for i := range g.Edges {
		if g.Edges[i].Weight < 0 {
			g.Edges[i].Weight = 0
		}
	}
	return g, nil
}

// WriteFile writes a Graph to a JSON file.
func WriteFile(g Graph, path string) error {
	data, err := Marshal(g)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a Graph from a JSON file.
func ReadFile(path string) (Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Graph{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}

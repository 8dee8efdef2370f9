package style

import (
	"testing"

	"github.com/constelviz/constel/pkg/config"
	"github.com/constelviz/constel/pkg/graph"
)

func entity(score float64) *graph.Node {
	return &graph.Node{ID: "e", Kind: graph.KindPerson, Meta: &graph.Meta{ActivityScore: score}}
}

func TestGlowTierThresholds(t *testing.T) {
	cfg := config.Default().Style
	tests := []struct {
		score float64
		want  int
	}{
		{1.0, 1}, {0.75, 1},
		{0.74, 2}, {0.50, 2},
		{0.49, 3}, {0.30, 3},
		{0.29, 4}, {0.0, 4},
	}
	for _, tt := range tests {
		if got := GlowTier(cfg, entity(tt.score)); got != tt.want {
			t.Errorf("GlowTier(%v) = %d, want %d", tt.score, got, tt.want)
		}
	}
}

func TestGlowTierMonotonic(t *testing.T) {
	cfg := config.Default().Style
	prev := GlowTier(cfg, entity(0))
	for score := 0.0; score <= 1.0; score += 0.01 {
		tier := GlowTier(cfg, entity(score))
		if tier > prev {
			t.Fatalf("tier rose from %d to %d as score increased to %v", prev, tier, score)
		}
		prev = tier
	}
}

func TestCategoryAlwaysTierZero(t *testing.T) {
	cfg := config.Default().Style
	for _, score := range []float64{0, 0.3, 0.9, 1} {
		n := &graph.Node{ID: "c", Kind: graph.KindCategory, Meta: &graph.Meta{ActivityScore: score, NodeCount: 1}}
		if got := GlowTier(cfg, n); got != 0 {
			t.Errorf("category tier at score %v = %d, want 0", score, got)
		}
	}
}

func TestNoMetadataIsLowestTier(t *testing.T) {
	cfg := config.Default().Style
	n := &graph.Node{ID: "e", Kind: graph.KindFile}
	if got := GlowTier(cfg, n); got != 4 {
		t.Errorf("tier without metadata = %d, want 4", got)
	}
}

func TestClassifyStates(t *testing.T) {
	first := map[string]struct{}{"b": {}}
	second := map[string]struct{}{"c": {}}
	tests := []struct {
		id   string
		want State
	}{
		{"a", StateFocused},
		{"b", StateFirstDegree},
		{"c", StateSecondDegree},
		{"d", StateUnrelated},
	}
	for _, tt := range tests {
		if got := Classify(tt.id, "a", first, second); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
	if got := Classify("a", "", nil, nil); got != StateDefault {
		t.Errorf("no focus = %v, want StateDefault", got)
	}
}

func TestUnrelatedCategoryStaysVisible(t *testing.T) {
	cat := &graph.Node{ID: "c", Kind: graph.KindCategory, Meta: &graph.Meta{NodeCount: 3}}
	ent := &graph.Node{ID: "e", Kind: graph.KindPerson}

	vc := VisualFor(cat, StateUnrelated, 0)
	ve := VisualFor(ent, StateUnrelated, 4)
	if vc.CoreOpacity <= ve.CoreOpacity {
		t.Error("unrelated categories should stay more visible than unrelated entities")
	}
	if vc.CoreOpacity == 0 {
		t.Error("unrelated categories must never be fully hidden")
	}
	if ve.CoreOpacity > 0.1 {
		t.Errorf("unrelated entity opacity = %v, want nearly invisible", ve.CoreOpacity)
	}
}

func TestLockedCategoryDimmed(t *testing.T) {
	locked := &graph.Node{ID: "c", Kind: graph.KindCategory, Meta: &graph.Meta{NodeCount: 0}}
	open := &graph.Node{ID: "c2", Kind: graph.KindCategory, Meta: &graph.Meta{NodeCount: 5}}

	vl := VisualFor(locked, StateDefault, 0)
	vo := VisualFor(open, StateDefault, 0)
	if !vl.Locked {
		t.Error("locked category should carry the Locked flag")
	}
	if vo.Locked {
		t.Error("connected category should not be locked")
	}
	if vl.CoreOpacity >= vo.CoreOpacity {
		t.Error("locked category should render at reduced opacity")
	}
}

func TestDefaultGlowFollowsTier(t *testing.T) {
	n := entity(0)
	g1 := VisualFor(n, StateDefault, 1).Glow
	g4 := VisualFor(n, StateDefault, 4).Glow
	if g1 <= g4 {
		t.Errorf("tier 1 glow %v should exceed tier 4 glow %v", g1, g4)
	}
}

func TestBaseRadius(t *testing.T) {
	cfg := config.Default().Style
	small := &graph.Node{Kind: graph.KindPerson, Weight: 0}
	big := &graph.Node{Kind: graph.KindPerson, Weight: 9}
	if BaseRadius(cfg, small) >= BaseRadius(cfg, big) {
		t.Error("radius should grow with weight")
	}
	huge := &graph.Node{Kind: graph.KindPerson, Weight: 1e6}
	if got := BaseRadius(cfg, huge); got != cfg.EntityMaxRadius {
		t.Errorf("radius = %v, want cap %v", got, cfg.EntityMaxRadius)
	}
	cat := &graph.Node{Kind: graph.KindCategory, Weight: 0}
	if BaseRadius(cfg, cat) <= BaseRadius(cfg, small) {
		t.Error("categories should start larger than entities")
	}
}

func TestColorFor(t *testing.T) {
	explicit := &graph.Node{Kind: graph.KindPerson, Meta: &graph.Meta{Color: "#112233"}}
	if got := ColorFor(explicit); got != "#112233" {
		t.Errorf("explicit color = %q", got)
	}
	if ColorFor(&graph.Node{Kind: graph.KindTopic}) == ColorFor(&graph.Node{Kind: graph.KindPerson}) {
		t.Error("kind palette should differ between kinds")
	}
	if got := ColorFor(&graph.Node{Kind: "mystery"}); got == "" {
		t.Error("unknown kind should fall back to a neutral color")
	}
}

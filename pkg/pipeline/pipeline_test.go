package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/constelviz/constel/pkg/cache"
	"github.com/constelviz/constel/pkg/config"
	"github.com/constelviz/constel/pkg/graph"
)

func testGraph() *graph.Graph {
	return &graph.Graph{
		Nodes: []graph.Node{
			{ID: "work", Kind: graph.KindCategory, Label: "Work", Meta: &graph.Meta{NodeCount: 2}},
			{ID: "ada", Kind: graph.KindPerson, Meta: &graph.Meta{ActivityScore: 0.8}},
			{ID: "notes", Kind: graph.KindFile},
		},
		Edges: []graph.Edge{
			{Source: "work", Target: "ada", Weight: 2},
			{Source: "ada", Target: "notes", Weight: 1},
		},
	}
}

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.NewWithOptions(io.Discard, log.Options{}))
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Graph: testGraph()}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if opts.Mode != graph.ModeForce || opts.Width != DefaultWidth || len(opts.Formats) != 1 {
		t.Errorf("defaults not applied: %+v", opts)
	}

	bad := Options{}
	if err := bad.ValidateAndSetDefaults(); err == nil {
		t.Error("missing input should fail validation")
	}
	badMode := Options{Graph: testGraph(), Mode: "spiral"}
	if err := badMode.ValidateAndSetDefaults(); err == nil {
		t.Error("invalid mode should fail validation")
	}
	badFormat := Options{Graph: testGraph(), Formats: []string{"gif"}}
	if err := badFormat.ValidateAndSetDefaults(); err == nil {
		t.Error("invalid format should fail validation")
	}
}

func TestExecuteProducesArtifacts(t *testing.T) {
	r := quietRunner(nil)
	res, err := r.Execute(context.Background(), Options{
		Graph:   testGraph(),
		Width:   160,
		Height:  120,
		Formats: []string{FormatPNG, FormatJSON, FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.NodeCount != 3 || res.Stats.EdgeCount != 2 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.GraphHash == "" {
		t.Error("graph hash should be set")
	}
	if len(res.Positions) != 3 {
		t.Errorf("positions = %d, want 3", len(res.Positions))
	}

	img, err := png.Decode(bytes.NewReader(res.Artifacts[FormatPNG]))
	if err != nil {
		t.Fatalf("png artifact: %v", err)
	}
	if img.Bounds().Dx() != 160 {
		t.Errorf("png width = %d", img.Bounds().Dx())
	}

	var doc jsonArtifact
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &doc); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if len(doc.Positions) != 3 || len(doc.Graph.Nodes) != 3 {
		t.Error("json artifact should carry graph and positions")
	}

	if !bytes.Contains(res.Artifacts[FormatDOT], []byte("graph constellation")) {
		t.Error("dot artifact should be DOT source")
	}
}

func TestLayoutCacheHitOnSecondRun(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(fc)
	opts := Options{Graph: testGraph(), Width: 100, Height: 80, Formats: []string{FormatJSON}}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.LayoutHit {
		t.Error("first run should miss the layout cache")
	}
	if first.Stats.SettleTicks == 0 {
		t.Error("first run should settle")
	}

	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.LayoutHit {
		t.Error("second run should hit the layout cache")
	}
	if second.Stats.SettleTicks != 0 {
		t.Error("cache hit should skip settling")
	}
	if len(second.Positions) != len(first.Positions) {
		t.Error("cached layout should round-trip")
	}

	refresh := opts
	refresh.Refresh = true
	third, err := r.Execute(context.Background(), refresh)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.LayoutHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestModeChangesCacheKey(t *testing.T) {
	r := quietRunner(nil)
	a := r.layoutKey("h", Options{Mode: graph.ModeForce, Tuning: config.Default()})
	b := r.layoutKey("h", Options{Mode: graph.ModeStar, Tuning: config.Default()})
	if a == b {
		t.Error("different modes must key differently")
	}
}

func TestRenderOrbit(t *testing.T) {
	r := quietRunner(nil)
	opts := Options{Graph: testGraph(), Width: 80, Height: 60}
	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	frames, err := r.RenderOrbit(res.Graph, res.Positions, opts, 3)
	if err != nil {
		t.Fatalf("RenderOrbit: %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("frames = %d", len(frames))
	}
	for i, f := range frames {
		if _, err := png.Decode(bytes.NewReader(f)); err != nil {
			t.Errorf("frame %d is not a png: %v", i, err)
		}
	}
	if _, err := r.RenderOrbit(res.Graph, res.Positions, opts, 0); err == nil {
		t.Error("zero frames should error")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := t.TempDir() + "/graph.json"
	if err := graph.WriteFile(*testGraph(), path); err != nil {
		t.Fatal(err)
	}
	r := quietRunner(nil)
	res, err := r.Execute(context.Background(), Options{Input: path, Formats: []string{FormatDOT}, Width: 80, Height: 60})
	if err != nil {
		t.Fatalf("Execute from file: %v", err)
	}
	if res.Stats.NodeCount != 3 {
		t.Errorf("node count = %d", res.Stats.NodeCount)
	}
}

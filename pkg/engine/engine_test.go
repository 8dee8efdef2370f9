package engine

import (
	"image"
	"strings"
	"testing"
	"time"

	"github.com/constelviz/constel/pkg/config"
	"github.com/constelviz/constel/pkg/graph"
	"github.com/constelviz/constel/pkg/render"
)

type recordingBackend struct {
	frames   int
	nodes    []render.Node
	edges    []render.Edge
	disposed bool
}

func (r *recordingBackend) BeginFrame(w, h int) {
	r.frames++
	r.nodes = r.nodes[:0]
	r.edges = r.edges[:0]
}
func (r *recordingBackend) DrawEdge(e render.Edge) { r.edges = append(r.edges, e) }
func (r *recordingBackend) DrawNode(n render.Node) { r.nodes = append(r.nodes, n) }
func (r *recordingBackend) EndFrame() error        { return nil }
func (r *recordingBackend) Dispose()               { r.disposed = true }

func (r *recordingBackend) Snapshot() (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 8, 8)), nil
}

func testGraph() graph.Graph {
	return graph.Graph{
		Nodes: []graph.Node{
			{ID: "work", Kind: graph.KindCategory, Label: "Work", Meta: &graph.Meta{NodeCount: 2}},
			{ID: "ada", Kind: graph.KindPerson, Meta: &graph.Meta{ActivityScore: 0.9}},
			{ID: "notes", Kind: graph.KindFile, Meta: &graph.Meta{ActivityScore: 0.1}},
		},
		Edges: []graph.Edge{
			{Source: "work", Target: "ada", Weight: 2},
			{Source: "ada", Target: "notes", Weight: 1},
		},
	}
}

func newEngine(t *testing.T) (*Engine, *recordingBackend) {
	t.Helper()
	b := &recordingBackend{}
	e, err := New(config.Default(), b, Options{Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(e.Dispose)
	return e, b
}

func TestNewRejectsUnknownMode(t *testing.T) {
	_, err := New(config.Default(), &recordingBackend{}, Options{Mode: "spiral"})
	if err == nil {
		t.Fatal("unknown layout mode should be rejected")
	}

	// Mode names pass through as format arguments, so verbs in the input
	// must survive verbatim.
	_, err = New(config.Default(), &recordingBackend{}, Options{Mode: "50%d"})
	if err == nil || !strings.Contains(err.Error(), "50%d") {
		t.Errorf("error = %v, want the literal mode name in the message", err)
	}
}

func TestSetDataSettlesAndDraws(t *testing.T) {
	e, b := newEngine(t)
	if err := e.SetData(testGraph()); err != nil {
		t.Fatalf("SetData: %v", err)
	}
	now := time.Now()
	if err := e.Step(now); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if b.frames != 1 {
		t.Fatalf("frames = %d, want 1", b.frames)
	}
	if len(b.nodes) != 3 || len(b.edges) != 2 {
		t.Errorf("drew %d nodes, %d edges; want 3 and 2", len(b.nodes), len(b.edges))
	}
}

func TestStepBeforeSetDataIsNoop(t *testing.T) {
	e, b := newEngine(t)
	if err := e.Step(time.Now()); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if b.frames != 0 {
		t.Error("no graph means no frames")
	}
}

func TestFocusAndClear(t *testing.T) {
	e, _ := newEngine(t)
	_ = e.SetData(testGraph())

	var selected string
	e.SetCallbacks(Callbacks{OnNodeSelect: func(id string) { selected = id }})

	now := time.Now()
	e.FocusNode("ghost", now)
	if e.SelectedID() != "" {
		t.Error("unknown id must be a no-op")
	}
	e.FocusNode("ada", now)
	if e.SelectedID() != "ada" || selected != "ada" {
		t.Errorf("selected = %q, callback got %q", e.SelectedID(), selected)
	}
	e.ClearSelection(now)
	if e.SelectedID() != "" {
		t.Error("selection should clear")
	}
}

func TestFocusDimsUnrelatedEdges(t *testing.T) {
	e, b := newEngine(t)
	g := testGraph()
	g.Nodes = append(g.Nodes, graph.Node{ID: "island", Kind: graph.KindTopic})
	g.Nodes = append(g.Nodes, graph.Node{ID: "island2", Kind: graph.KindTopic})
	g.Edges = append(g.Edges, graph.Edge{Source: "island", Target: "island2", Weight: 1})
	_ = e.SetData(g)

	now := time.Now()
	if err := e.Step(now); err != nil {
		t.Fatal(err)
	}
	baseline := edgeAlpha(b.edges, "island", "island2")

	e.FocusNode("work", now)
	if err := e.Step(now.Add(20 * time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	dimmed := edgeAlpha(b.edges, "island", "island2")
	if dimmed >= baseline {
		t.Errorf("unrelated edge alpha %v should drop below %v during focus", dimmed, baseline)
	}
}

func edgeAlpha(edges []render.Edge, src, dst string) float64 {
	for _, e := range edges {
		if e.SourceID == src && e.TargetID == dst {
			return e.Alpha
		}
	}
	return -1
}

func TestHoverCallback(t *testing.T) {
	e, _ := newEngine(t)
	_ = e.SetData(testGraph())

	var hovered []string
	e.SetCallbacks(Callbacks{OnNodeHover: func(id string) { hovered = append(hovered, id) }})

	now := time.Now()
	e.Hover("ada", now)
	e.Hover("ada", now) // unchanged, no second callback
	e.Hover("", now)
	if len(hovered) != 2 || hovered[0] != "ada" || hovered[1] != "" {
		t.Errorf("hover callbacks = %v", hovered)
	}
}

func TestPickAt(t *testing.T) {
	e, _ := newEngine(t)
	_ = e.SetData(testGraph())
	if err := e.Step(time.Now()); err != nil {
		t.Fatal(err)
	}
	frame := e.lastFrame
	if len(frame.Nodes) == 0 {
		t.Fatal("expected a projected frame")
	}
	front := frame.Nodes[len(frame.Nodes)-1]
	if got := e.PickAt(front.X, front.Y); got != front.ID {
		t.Errorf("PickAt node center = %q, want %q", got, front.ID)
	}
	if got := e.PickAt(-1000, -1000); got != "" {
		t.Errorf("PickAt far away = %q, want miss", got)
	}
}

func TestIdleSuspendsRenderingAndSnapshots(t *testing.T) {
	e, b := newEngine(t)
	_ = e.SetData(testGraph())

	now := time.Now()
	_ = e.Step(now)
	framesBefore := b.frames

	quiet := now.Add(time.Duration(config.Default().Idle.ThresholdMillis+100) * time.Millisecond)
	_ = e.Step(quiet)
	if !e.IsIdle() {
		t.Fatal("engine should be idle after the quiet period")
	}
	_ = e.Step(quiet.Add(time.Second))
	if b.frames != framesBefore {
		t.Error("idle engine must not hand frames to the backend")
	}

	url := e.SnapshotURL()
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("snapshot url = %.40q, want a png data url", url)
	}

	e.Drag(1, 1, quiet.Add(2*time.Second))
	if e.IsIdle() {
		t.Error("interaction should wake the engine")
	}
	if e.SnapshotURL() != "" {
		t.Error("live engine should report no snapshot")
	}
}

func TestLightsGrantedInNodeOrder(t *testing.T) {
	cfg := config.Default()
	cfg.Budget.MaxLights = 2

	b := &recordingBackend{}
	e, err := New(cfg, b, Options{Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(e.Dispose)

	// A tier-2 node listed first keeps its light even though brighter
	// tier-1 nodes follow.
	g := graph.Graph{
		Nodes: []graph.Node{
			{ID: "dim", Kind: graph.KindFile, Meta: &graph.Meta{ActivityScore: 0.6}},
			{ID: "bright-a", Kind: graph.KindPerson, Meta: &graph.Meta{ActivityScore: 0.9}},
			{ID: "bright-b", Kind: graph.KindPerson, Meta: &graph.Meta{ActivityScore: 0.9}},
		},
	}
	if err := e.SetData(g); err != nil {
		t.Fatalf("SetData: %v", err)
	}

	if !e.lights.HasLight("dim") || !e.lights.HasLight("bright-a") {
		t.Error("first two eligible nodes should hold the lights")
	}
	if e.lights.HasLight("bright-b") {
		t.Error("budget exhausted, later node should not hold a light")
	}
}

func TestResizeWakesIdleEngine(t *testing.T) {
	e, _ := newEngine(t)
	_ = e.SetData(testGraph())

	now := time.Now()
	_ = e.Step(now)
	quiet := now.Add(time.Duration(config.Default().Idle.ThresholdMillis+100) * time.Millisecond)
	_ = e.Step(quiet)
	if !e.IsIdle() {
		t.Fatal("engine should be idle after the quiet period")
	}

	e.Resize(640, 480, quiet.Add(time.Second))
	if e.IsIdle() {
		t.Error("resize should wake the engine")
	}
	if e.SnapshotURL() != "" {
		t.Error("woken engine should discard the stale snapshot")
	}
}

func TestCategoryConnectCallback(t *testing.T) {
	e, _ := newEngine(t)
	var connected []string
	e.SetCallbacks(Callbacks{OnCategoryConnect: func(id string) { connected = append(connected, id) }})

	g := testGraph()
	g.Nodes[0].Meta.NodeCount = 0 // locked
	_ = e.SetData(g)
	if len(connected) != 0 {
		t.Fatalf("locked category should not announce: %v", connected)
	}

	g2 := testGraph() // work now has NodeCount 2
	_ = e.SetData(g2)
	if len(connected) != 1 || connected[0] != "work" {
		t.Errorf("connected = %v, want [work]", connected)
	}

	_ = e.SetData(testGraph()) // already connected, no repeat
	if len(connected) != 1 {
		t.Errorf("already connected category should not re-announce: %v", connected)
	}
}

func TestSetLayoutMode(t *testing.T) {
	e, _ := newEngine(t)
	_ = e.SetData(testGraph())
	if err := e.SetLayoutMode("spiral"); err == nil {
		t.Error("invalid mode should error")
	}
	if err := e.SetLayoutMode(graph.ModeStar); err != nil {
		t.Fatalf("SetLayoutMode: %v", err)
	}
	if e.Mode() != graph.ModeStar {
		t.Errorf("mode = %q", e.Mode())
	}
}

func TestDispose(t *testing.T) {
	b := &recordingBackend{}
	e, err := New(config.Default(), b, Options{Width: 100, Height: 100})
	if err != nil {
		t.Fatal(err)
	}
	_ = e.SetData(testGraph())
	e.Dispose()
	e.Dispose() // idempotent
	if !b.disposed {
		t.Error("engine should dispose its backend")
	}
	if err := e.Step(time.Now()); err == nil {
		t.Error("stepping a disposed engine should error")
	}
	if err := e.SetData(testGraph()); err == nil {
		t.Error("SetData on a disposed engine should error")
	}
}

package engine

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/constelviz/constel/pkg/config"
	"github.com/constelviz/constel/pkg/errors"
	"github.com/constelviz/constel/pkg/graph"
	"github.com/constelviz/constel/pkg/observability"
	"github.com/constelviz/constel/pkg/render"
	"github.com/constelviz/constel/pkg/scene/budget"
	"github.com/constelviz/constel/pkg/scene/camera"
	"github.com/constelviz/constel/pkg/scene/idle"
	"github.com/constelviz/constel/pkg/scene/project"
	"github.com/constelviz/constel/pkg/scene/style"
	"github.com/constelviz/constel/pkg/sim"
)

// Options configures a new engine.
type Options struct {
	Width, Height int
	Mode          string // layout mode, defaults to force
	IsMobile      bool
}

// Callbacks are invoked synchronously from the interaction methods. Nil
// callbacks are skipped.
type Callbacks struct {
	OnNodeHover  func(id string)
	OnNodeSelect func(id string)
	// OnCategoryConnect fires when SetData delivers a category that was
	// locked (or absent) before and now has connected nodes.
	OnCategoryConnect func(id string)
}

// Engine drives one constellation scene against one render backend.
type Engine struct {
	id      string
	cfg     config.Tuning
	backend render.Backend

	cam    *camera.Camera
	proj   project.Pipeline
	lights *budget.Budget
	idler  *idle.Detector

	graph graph.Graph
	adj   graph.Adjacency
	state *sim.State
	mode  string

	width, height int
	callbacks     Callbacks
	lastFrame     project.Frame
	disposed      bool
}

// New creates an engine bound to the given backend. The backend's Dispose
// is owned by the engine from here on.
func New(cfg config.Tuning, backend render.Backend, opts Options) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mode := opts.Mode
	if mode == "" {
		mode = graph.ModeForce
	}
	if !graph.ValidModes[mode] {
		return nil, errors.New(errors.ErrCodeInvalidMode, "unknown layout mode: %s", mode)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1280, 800
	}
	e := &Engine{
		id:      uuid.NewString(),
		cfg:     cfg,
		backend: backend,
		cam:     camera.New(cfg.Camera, float64(opts.Width), float64(opts.Height), opts.IsMobile),
		proj:    project.New(cfg.Projection),
		lights:  budget.New(cfg.Budget),
		mode:    mode,
		width:   opts.Width,
		height:  opts.Height,
	}
	e.idler = idle.New(cfg.Idle, e.id, e.captureFunc(), time.Now())
	return e, nil
}

// ID returns the engine instance id used to tag observability events.
func (e *Engine) ID() string { return e.id }

// SetCallbacks installs interaction callbacks.
func (e *Engine) SetCallbacks(cb Callbacks) { e.callbacks = cb }

// captureFunc returns the idle snapshot source, nil when the backend cannot
// read pixels back.
func (e *Engine) captureFunc() idle.CaptureFunc {
	snap, ok := e.backend.(render.Snapshotter)
	if !ok {
		return nil
	}
	return snap.Snapshot
}

// SetData replaces the scene graph: the previous simulation and light
// allocations are discarded, the new layout is settled synchronously, and
// the camera auto-fits the settled cloud. Selection is cleared since the
// focused node may no longer exist.
func (e *Engine) SetData(g graph.Graph) error {
	if e.disposed {
		return errors.New(errors.ErrCodeDisposed, "engine is disposed")
	}
	prev := lockedCategories(e.graph)

	e.releaseLights()
	e.graph = g
	e.adj = graph.BuildAdjacency(g.Nodes, g.Edges)
	e.state = sim.New(e.cfg.Sim, g, e.mode, func(n *graph.Node) float64 {
		return style.BaseRadius(e.cfg.Style, n)
	})
	e.cam.ClearSelection(time.Now())
	e.lastFrame = project.Frame{}

	e.settle()
	e.assignLights()
	e.autoFit()
	e.notifyConnectedCategories(prev)
	return nil
}

// Position is one node's settled location, used to move layouts in and out
// of the layout cache.
type Position struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
}

// SetLayout installs a graph with precomputed node positions, skipping the
// synchronous settle entirely. Positions for unknown ids are ignored; nodes
// without a position keep their seed placement.
func (e *Engine) SetLayout(g graph.Graph, positions []Position) error {
	if e.disposed {
		return errors.New(errors.ErrCodeDisposed, "engine is disposed")
	}
	prev := lockedCategories(e.graph)

	e.releaseLights()
	e.graph = g
	e.adj = graph.BuildAdjacency(g.Nodes, g.Edges)
	e.state = sim.New(e.cfg.Sim, g, e.mode, func(n *graph.Node) float64 {
		return style.BaseRadius(e.cfg.Style, n)
	})
	for _, p := range positions {
		if sn := e.state.NodeByID(p.ID); sn != nil {
			sn.X, sn.Y, sn.Z = p.X, p.Y, p.Z
		}
	}
	e.state.Freeze()
	e.cam.ClearSelection(time.Now())
	e.lastFrame = project.Frame{}

	e.assignLights()
	e.autoFit()
	e.notifyConnectedCategories(prev)
	return nil
}

// Positions returns every node's current location, suitable for caching.
func (e *Engine) Positions() []Position {
	if e.state == nil {
		return nil
	}
	out := make([]Position, len(e.state.Nodes))
	for i, n := range e.state.Nodes {
		out[i] = Position{ID: n.Graph.ID, X: n.X, Y: n.Y, Z: n.Z}
	}
	return out
}

// SetLayoutMode switches the layout mode and re-settles the current graph.
func (e *Engine) SetLayoutMode(mode string) error {
	if e.disposed {
		return errors.New(errors.ErrCodeDisposed, "engine is disposed")
	}
	if !graph.ValidModes[mode] {
		return errors.New(errors.ErrCodeInvalidMode, "unknown layout mode: %s", mode)
	}
	if mode == e.mode {
		return nil
	}
	e.mode = mode
	if e.state != nil {
		return e.SetData(e.graph)
	}
	return nil
}

// Mode returns the active layout mode.
func (e *Engine) Mode() string { return e.mode }

func (e *Engine) settle() {
	ctx := context.Background()
	observability.Engine().OnSettleStart(ctx, e.mode, len(e.state.Nodes))
	start := time.Now()
	ticks := e.state.Settle()
	observability.Engine().OnSettleComplete(ctx, e.mode, ticks, time.Since(start))
}

// assignLights hands the budgeted light slots to eligible nodes in node
// order: once the budget is spent, later candidates glow without a light.
func (e *Engine) assignLights() {
	for i := range e.graph.Nodes {
		n := &e.graph.Nodes[i]
		tier := style.GlowTier(e.cfg.Style, n)
		if tier == 1 || tier == 2 {
			e.lights.AcquireLight(n.ID, tier)
		}
	}
}

func (e *Engine) releaseLights() {
	for i := range e.graph.Nodes {
		e.lights.ReleaseNode(e.graph.Nodes[i].ID)
	}
}

func lockedCategories(g graph.Graph) map[string]bool {
	locked := map[string]bool{}
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.IsCategory() {
			locked[n.ID] = n.IsLocked()
		}
	}
	return locked
}

func (e *Engine) notifyConnectedCategories(prevLocked map[string]bool) {
	if e.callbacks.OnCategoryConnect == nil {
		return
	}
	for i := range e.graph.Nodes {
		n := &e.graph.Nodes[i]
		if !n.IsCategory() || n.IsLocked() {
			continue
		}
		if wasLocked, known := prevLocked[n.ID]; !known || wasLocked {
			e.callbacks.OnCategoryConnect(n.ID)
		}
	}
}

// Step advances one display frame at the given time: camera easing, physics
// (while warm), projection and a backend draw. While idle no frame reaches
// the backend.
func (e *Engine) Step(now time.Time) error {
	if e.disposed {
		return errors.New(errors.ErrCodeDisposed, "engine is disposed")
	}
	if e.state == nil {
		return nil
	}
	if e.idler.Update(now) {
		return nil
	}

	e.cam.Step(now)
	if e.state.Active() {
		e.state.Tick()
		e.autoFit()
	}

	frame := e.proj.Project(e.state.Nodes, e.graph.Edges,
		float64(e.width), float64(e.height),
		float64(now.UnixMilli()), e.view())
	e.lastFrame = frame
	e.draw(frame, now)
	return nil
}

// view derives the projection transform from the camera: orbit angles map
// to yaw/pitch, the orbit radius maps inversely to zoom.
func (e *Engine) view() project.View {
	cur := e.cam.Current()
	look := e.cam.LookAt()
	zoom := 1.0
	if cur.Radius > 0 {
		zoom = e.cam.DefaultRadius() / cur.Radius
	}
	return project.View{
		Yaw:   cur.Theta,
		Pitch: cur.Phi - math.Pi/2,
		Zoom:  zoom,
		CX:    look.X,
		CY:    look.Y,
		CZ:    look.Z,
	}
}

func (e *Engine) draw(frame project.Frame, now time.Time) {
	focusID := e.cam.FocusID()
	first, second := e.cam.Neighbors()

	// Per-node visuals for this frame, keyed by id for edge dimming.
	visuals := make(map[string]style.Visual, len(frame.Nodes))
	for _, pn := range frame.Nodes {
		n := e.nodeByID(pn.ID)
		if n == nil {
			continue
		}
		st := style.Classify(pn.ID, focusID, first, second)
		visuals[pn.ID] = style.VisualFor(n, st, style.GlowTier(e.cfg.Style, n))
	}

	e.backend.BeginFrame(e.width, e.height)
	for _, edge := range frame.Edges {
		dim := 1.0
		if v, ok := visuals[edge.SourceID]; ok {
			dim = math.Min(dim, v.EdgeDim)
		}
		if v, ok := visuals[edge.TargetID]; ok {
			dim = math.Min(dim, v.EdgeDim)
		}
		edge.Alpha *= dim
		e.backend.DrawEdge(edge)
	}
	for _, pn := range frame.Nodes {
		n := e.nodeByID(pn.ID)
		if n == nil {
			continue
		}
		v := visuals[pn.ID]
		glow := v.Glow * e.lights.PulseIntensity(pn.ID, now)
		glow += e.cam.FlashIntensity(pn.ID, now)
		pn.Alpha *= v.CoreOpacity

		e.backend.DrawNode(render.Node{
			Node:      pn,
			Glow:      math.Min(glow, 1.5),
			Label:     n.DisplayLabel(),
			ShowLabel: v.ShowLabel || pn.ID == e.cam.HoveredID(),
			Locked:    v.Locked,
			GlowKey:   glowKey(n),
		})
	}
	if err := e.backend.EndFrame(); err != nil {
		e.lastFrame = project.Frame{}
	}
}

// glowKey buckets sprite cache keys by kind, or by explicit color for
// categories so each category keeps its own hue.
func glowKey(n *graph.Node) string {
	if n.IsCategory() && n.Meta != nil && n.Meta.Color != "" {
		return "category:" + n.Meta.Color
	}
	return n.Kind
}

func (e *Engine) nodeByID(id string) *graph.Node {
	if e.state == nil {
		return nil
	}
	if sn := e.state.NodeByID(id); sn != nil {
		return &sn.Graph
	}
	return nil
}

func (e *Engine) autoFit() {
	positions := make([]camera.Vec3, len(e.state.Nodes))
	for i, n := range e.state.Nodes {
		positions[i] = camera.Vec3{X: n.X, Y: n.Y, Z: n.Z}
	}
	e.cam.AutoFit(positions)
}

// Resize updates the canvas size and camera aspect. A size change counts
// as interaction; redundant calls with the current size do not.
func (e *Engine) Resize(width, height int, now time.Time) {
	if e.disposed || width <= 0 || height <= 0 {
		return
	}
	if width == e.width && height == e.height {
		return
	}
	e.idler.Touch(now)
	e.width, e.height = width, height
	e.cam.Resize(float64(width), float64(height))
}

// Drag rotates the orbit camera. Counts as interaction.
func (e *Engine) Drag(dx, dy float64, now time.Time) {
	if e.disposed {
		return
	}
	e.idler.Touch(now)
	e.cam.Drag(dx, dy)
}

// Wheel zooms the orbit camera. Counts as interaction.
func (e *Engine) Wheel(deltaY float64, now time.Time) {
	if e.disposed {
		return
	}
	e.idler.Touch(now)
	e.cam.Wheel(deltaY)
}

// Hover marks a node as hovered (empty id clears) and notifies the hover
// callback on change.
func (e *Engine) Hover(id string, now time.Time) {
	if e.disposed {
		return
	}
	e.idler.Touch(now)
	if id != "" && e.nodeByID(id) == nil {
		id = ""
	}
	if id == e.cam.HoveredID() {
		return
	}
	e.cam.SetHovered(id)
	if e.callbacks.OnNodeHover != nil {
		e.callbacks.OnNodeHover(id)
	}
}

// FocusNode selects a node: the camera flies to it and its one- and
// two-hop neighborhood drives the highlight states. Unknown ids are
// ignored.
func (e *Engine) FocusNode(id string, now time.Time) {
	if e.disposed || e.state == nil {
		return
	}
	sn := e.state.NodeByID(id)
	if sn == nil {
		return
	}
	e.idler.Touch(now)
	first, second := e.adj.Neighborhood(id)
	e.cam.Focus(id, camera.Vec3{X: sn.X, Y: sn.Y, Z: sn.Z}, first, second, now)
	if e.callbacks.OnNodeSelect != nil {
		e.callbacks.OnNodeSelect(id)
	}
}

// ClearSelection drops the selection and flies the camera back to the
// default overview orbit.
func (e *Engine) ClearSelection(now time.Time) {
	if e.disposed {
		return
	}
	e.idler.Touch(now)
	e.cam.ClearSelection(now)
}

// SelectedID returns the selected node id, or "".
func (e *Engine) SelectedID() string { return e.cam.SelectedID() }

// PickAt hit-tests screen coordinates against the last projected frame,
// front to back, with a small touch slop. Returns "" on miss.
func (e *Engine) PickAt(x, y float64) string {
	const slop = 4
	for i := len(e.lastFrame.Nodes) - 1; i >= 0; i-- {
		n := e.lastFrame.Nodes[i]
		dx, dy := x-n.X, y-n.Y
		r := n.Radius + slop
		if dx*dx+dy*dy <= r*r {
			return n.ID
		}
	}
	return ""
}

// IsIdle reports whether rendering is suspended.
func (e *Engine) IsIdle() bool { return e.idler.IsIdle() }

// SnapshotURL returns the idle snapshot as a data: URL, or "" when the
// engine is live or capture failed.
func (e *Engine) SnapshotURL() string {
	img := e.idler.Snapshot()
	if img == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// Dispose tears the scene down: lights return to the budget, the backend
// is disposed, and every later call becomes a cheap no-op or error. Safe to
// call more than once.
func (e *Engine) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.releaseLights()
	e.lights.Dispose()
	if e.backend != nil {
		e.backend.Dispose()
	}
	e.state = nil
	e.lastFrame = project.Frame{}
}

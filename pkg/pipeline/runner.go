package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/constelviz/constel/pkg/cache"
	"github.com/constelviz/constel/pkg/config"
	"github.com/constelviz/constel/pkg/engine"
	"github.com/constelviz/constel/pkg/graph"
	"github.com/constelviz/constel/pkg/render"
	"github.com/constelviz/constel/pkg/render/dotsink"
	"github.com/constelviz/constel/pkg/render/imagesink"
	"github.com/constelviz/constel/pkg/scene/style"
	"github.com/constelviz/constel/pkg/sim"
)

// layoutVersion invalidates cached layouts when the force math changes.
const layoutVersion = "v1"

// cameraConvergeSteps is how many eased camera steps an offline render runs
// before capturing, enough for the exponential lerp to land.
const cameraConvergeSteps = 240

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete load → settle → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Load
	loadStart := time.Now()
	g, err := r.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Graph = g
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = len(g.Nodes)
	result.Stats.EdgeCount = len(g.Edges)

	data, err := graph.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("hash graph: %w", err)
	}
	result.GraphHash = cache.Hash(data)

	r.Logger.Info("loaded graph",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.LoadTime)

	// Stage 2: Settle
	layoutStart := time.Now()
	positions, ticks, hit, err := r.SettleLayout(ctx, g, result.GraphHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Positions = positions
	result.Stats.SettleTicks = ticks
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = hit

	r.Logger.Info("settled layout",
		"mode", opts.Mode,
		"ticks", ticks,
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, err := r.Render(ctx, g, positions, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads and validates the graph document.
func (r *Runner) Load(opts Options) (graph.Graph, error) {
	if opts.Graph != nil {
		return *opts.Graph, nil
	}
	return graph.ReadFile(opts.Input)
}

// SettleLayout returns the settled node positions for the graph, reading
// the layout cache first unless Refresh is set. The bool reports a cache
// hit; ticks is zero on hits.
func (r *Runner) SettleLayout(ctx context.Context, g graph.Graph, graphHash string, opts Options) ([]engine.Position, int, bool, error) {
	key := r.layoutKey(graphHash, opts)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var positions []engine.Position
			if err := json.Unmarshal(data, &positions); err == nil {
				return positions, 0, true, nil
			}
		}
	}

	state := sim.New(opts.Tuning.Sim, g, opts.Mode, func(n *graph.Node) float64 {
		return style.BaseRadius(opts.Tuning.Style, n)
	})
	ticks := state.Settle()

	positions := make([]engine.Position, len(state.Nodes))
	for i, n := range state.Nodes {
		positions[i] = engine.Position{ID: n.Graph.ID, X: n.X, Y: n.Y, Z: n.Z}
	}

	if data, err := json.Marshal(positions); err == nil {
		if err := r.Cache.Set(ctx, key, data, DefaultTTL); err != nil {
			r.Logger.Warn("layout cache write failed", "err", err)
		}
	}
	return positions, ticks, false, nil
}

func (r *Runner) layoutKey(graphHash string, opts Options) string {
	tuningData, _ := json.Marshal(opts.Tuning)
	return r.Keyer.LayoutKey(graphHash, cache.LayoutKeyOpts{
		Mode:       opts.Mode,
		SimVersion: layoutVersion,
		TuningHash: cache.Hash(tuningData),
	})
}

// Render produces the requested artifacts from a settled layout.
func (r *Runner) Render(ctx context.Context, g graph.Graph, positions []engine.Position, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatPNG:
			data, err = r.renderPNG(g, positions, opts, opts.Yaw, opts.Pitch)
		case FormatJSON:
			data, err = renderJSON(g, positions)
		case FormatDOT:
			data = []byte(dotsink.ToDOT(g, dotsink.Options{Detailed: opts.Detailed}))
		case FormatSVG:
			data, err = dotsink.RenderSVG(ctx, dotsink.ToDOT(g, dotsink.Options{Detailed: opts.Detailed}))
		default:
			err = ValidateFormat(format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderOrbit renders a sequence of PNG frames orbiting the settled graph,
// one full revolution.
func (r *Runner) RenderOrbit(g graph.Graph, positions []engine.Position, opts Options, frames int) ([][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if frames <= 0 {
		return nil, fmt.Errorf("orbit needs at least one frame")
	}
	out := make([][]byte, 0, frames)
	for i := 0; i < frames; i++ {
		yaw := 2 * math.Pi * float64(i) / float64(frames)
		data, err := r.renderPNG(g, positions, opts, yaw, opts.Pitch)
		if err != nil {
			return nil, fmt.Errorf("orbit frame %d: %w", i, err)
		}
		out = append(out, data)
	}
	return out, nil
}

// renderPNG captures one raster frame through the full engine so offline
// output matches what the interactive surfaces show.
func (r *Runner) renderPNG(g graph.Graph, positions []engine.Position, opts Options, yaw, pitch float64) ([]byte, error) {
	sink := imagesink.New(render.Options{Width: opts.Width, Height: opts.Height, Tuning: opts.Tuning})
	eng, err := engine.New(opts.Tuning, sink, engine.Options{
		Width:  opts.Width,
		Height: opts.Height,
		Mode:   opts.Mode,
	})
	if err != nil {
		return nil, err
	}
	defer eng.Dispose()

	if err := eng.SetLayout(g, positions); err != nil {
		return nil, err
	}

	// Drag moves the camera target instantly; a fixed clock keeps the
	// micro-drift deterministic and the idle detector dormant while the
	// eased orbit converges.
	now := time.Now()
	sens := orbitSensitivity(opts.Tuning)
	eng.Drag(yaw/sens, pitch/sens, now)
	for i := 0; i < cameraConvergeSteps; i++ {
		if err := eng.Step(now); err != nil {
			return nil, err
		}
	}

	img, err := sink.Snapshot()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func orbitSensitivity(t config.Tuning) float64 {
	if t.Camera.DragSensitivity > 0 {
		return t.Camera.DragSensitivity
	}
	return config.Default().Camera.DragSensitivity
}

// jsonArtifact is the JSON output document: the graph plus its settled
// positions, consumable by external renderers.
type jsonArtifact struct {
	Graph     graph.Graph       `json:"graph"`
	Positions []engine.Position `json:"positions"`
}

func renderJSON(g graph.Graph, positions []engine.Position) ([]byte, error) {
	return json.MarshalIndent(jsonArtifact{Graph: g, Positions: positions}, "", "  ")
}

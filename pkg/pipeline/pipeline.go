// Package pipeline provides the offline load → settle → render pipeline.
//
// The interactive surfaces (view, gui) drive the engine frame by frame; the
// pipeline is the batch path behind the render and export commands and any
// service endpoint. By centralizing this logic we ensure consistent
// behavior across all entry points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read and validate the graph document
//  2. Settle: run the force simulation to rest (cached by graph content)
//  3. Render: generate output in various formats (PNG, JSON, DOT, SVG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   "graph.json",
//	    Mode:    "force",
//	    Formats: []string{"png"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts["png"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/constelviz/constel/pkg/config"
	"github.com/constelviz/constel/pkg/engine"
	"github.com/constelviz/constel/pkg/graph"
)

const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = 1280

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 800

	// DefaultTTL is how long cached layouts stay valid. Layouts are pure
	// functions of graph content and tuning, so this is generous.
	DefaultTTL = 7 * 24 * time.Hour
)

// Format constants for output formats.
const (
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// Options contains all configuration for the render pipeline.
type Options struct {
	// Load options. Input is a graph document path; Graph supplies the
	// document in memory and takes precedence when non-nil.
	Input string       `json:"input,omitempty"`
	Graph *graph.Graph `json:"-"`

	// Layout options
	Mode    string `json:"mode,omitempty"`
	Refresh bool   `json:"refresh,omitempty"` // bypass the layout cache

	// Render options
	Width    int      `json:"width,omitempty"`
	Height   int      `json:"height,omitempty"`
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // metadata in DOT labels
	Yaw      float64  `json:"yaw,omitempty"`      // camera yaw for raster output, radians
	Pitch    float64  `json:"pitch,omitempty"`

	// Runtime options (not serialized)
	Tuning config.Tuning `json:"-"`
	Logger *log.Logger   `json:"-"`

	tuningSet bool
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the loaded graph document.
	Graph graph.Graph

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Positions is the settled layout.
	Positions []engine.Position

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	SettleTicks int
	LoadTime    time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // whether the settled layout came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: png, json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// SetTuning installs explicit tuning; without it the defaults apply.
func (o *Options) SetTuning(t config.Tuning) {
	o.Tuning = t
	o.tuningSet = true
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Input == "" && o.Graph == nil {
		return fmt.Errorf("input path or in-memory graph is required")
	}
	if o.Mode == "" {
		o.Mode = graph.ModeForce
	}
	if !graph.ValidModes[o.Mode] {
		return fmt.Errorf("invalid mode: %q (must be one of: force, radial, star, ego)", o.Mode)
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if !o.tuningSet {
		o.Tuning = config.Default()
	}
	if err := o.Tuning.Validate(); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

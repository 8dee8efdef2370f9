package cli

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/constelviz/constel/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string   // output file path (or base path for multiple formats)
	formats    []string // output formats: png, json, dot, svg
	mode       string   // layout mode: force, radial, star, ego
	width      int      // canvas width in pixels
	height     int      // canvas height in pixels
	yawDeg     float64  // camera yaw in degrees for raster output
	pitchDeg   float64  // camera pitch in degrees
	detailed   bool     // metadata in DOT labels
	orbit      int      // number of orbit frames; 0 renders a single view
	noCache    bool     // disable the layout cache entirely
	refresh    bool     // bypass cache reads, still write fresh layouts
	configPath string   // tuning TOML file
}

// renderCommand creates the render command for batch output.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{
		mode:   "force",
		width:  pipeline.DefaultWidth,
		height: pipeline.DefaultHeight,
	}

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Settle a graph and render it to files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): png (default), json, dot, svg (comma-separated)")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", opts.mode, "layout mode: force (default), radial, star, ego")
	cmd.Flags().IntVar(&opts.width, "width", opts.width, "canvas width")
	cmd.Flags().IntVar(&opts.height, "height", opts.height, "canvas height")
	cmd.Flags().Float64Var(&opts.yawDeg, "yaw", 0, "camera yaw in degrees")
	cmd.Flags().Float64Var(&opts.pitchDeg, "pitch", 0, "camera pitch in degrees")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include metadata in DOT labels")
	cmd.Flags().IntVar(&opts.orbit, "orbit", 0, "render N frames orbiting the graph (PNG only)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the layout cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute the layout even when cached")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "tuning configuration file (TOML)")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	logger := loggerFromContext(cmd.Context())

	tuning, err := loadTuning(opts.configPath)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}

	popts := pipeline.Options{
		Input:    input,
		Mode:     opts.mode,
		Refresh:  opts.refresh,
		Width:    opts.width,
		Height:   opts.height,
		Formats:  opts.formats,
		Detailed: opts.detailed,
		Yaw:      opts.yawDeg * math.Pi / 180,
		Pitch:    opts.pitchDeg * math.Pi / 180,
		Logger:   logger,
	}
	popts.SetTuning(tuning)

	spin := newSpinnerWithContext(cmd.Context(), "Settling constellation...")
	spin.Start()
	result, err := runner.Execute(cmd.Context(), popts)
	spin.Stop()
	if err != nil {
		return err
	}

	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit)

	base := outputBase(input, opts.output)
	for _, format := range opts.formats {
		path := outputPath(base, opts.output, format, len(opts.formats) == 1)
		if err := os.WriteFile(path, result.Artifacts[format], 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	if opts.orbit > 0 {
		prog := newProgress(logger)
		frames, err := runner.RenderOrbit(result.Graph, result.Positions, popts, opts.orbit)
		if err != nil {
			return err
		}
		for i, frame := range frames {
			path := fmt.Sprintf("%s-orbit-%03d.png", base, i)
			if err := os.WriteFile(path, frame, 0644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
		}
		prog.done(fmt.Sprintf("Rendered %d orbit frames", len(frames)))
		printFile(fmt.Sprintf("%s-orbit-*.png", base))
	}

	printSuccess("Rendered %s", filepath.Base(input))
	printNextStep("Explore interactively", "constel view "+input)
	return nil
}

// outputBase derives the extensionless base path outputs are written to.
func outputBase(input, output string) string {
	if output != "" {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}

// outputPath resolves one artifact's path. A single explicit --output is
// used verbatim; everything else gets the format as extension.
func outputPath(base, output, format string, single bool) string {
	if single && output != "" {
		return output
	}
	return base + "." + format
}

package cli

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/spf13/cobra"

	"github.com/constelviz/constel/pkg/engine"
	"github.com/constelviz/constel/pkg/graph"
	"github.com/constelviz/constel/pkg/render/ebitensink"
)

const (
	defaultWindowWidth  = 1280
	defaultWindowHeight = 800

	// wheelZoomScale converts scroll ticks into the pixel deltas the
	// camera's wheel handler expects.
	wheelZoomScale = 40
)

// guiCommand creates the windowed viewer command.
func (c *CLI) guiCommand() *cobra.Command {
	var mode, configPath string

	cmd := &cobra.Command{
		Use:   "gui [graph.json]",
		Short: "Explore a graph in a window",
		Long: `Gui opens the constellation in a window.

Drag orbits the camera, the scroll wheel zooms, clicking a node focuses
it and escape clears the focus.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graph.ReadFile(args[0])
			if err != nil {
				return err
			}
			tuning, err := loadTuning(configPath)
			if err != nil {
				return err
			}

			sink := ebitensink.New(defaultWindowWidth, defaultWindowHeight)
			eng, err := engine.New(tuning, sink, engine.Options{
				Width:  defaultWindowWidth,
				Height: defaultWindowHeight,
				Mode:   mode,
			})
			if err != nil {
				return err
			}
			defer eng.Dispose()

			spin := newSpinnerWithContext(cmd.Context(), "Settling constellation...")
			spin.Start()
			err = eng.SetData(g)
			spin.Stop()
			if err != nil {
				return err
			}

			ebiten.SetWindowSize(defaultWindowWidth, defaultWindowHeight)
			ebiten.SetWindowTitle("constel")
			ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
			return ebiten.RunGame(&guiGame{eng: eng, sink: sink})
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "force", "layout mode: force (default), radial, star, ego")
	cmd.Flags().StringVar(&configPath, "config", "", "tuning configuration file (TOML)")
	return cmd
}

// guiGame adapts the engine to ebiten's game loop.
type guiGame struct {
	eng  *engine.Engine
	sink *ebitensink.Sink

	lastX, lastY int
	dragging     bool
}

func (g *guiGame) Update() error {
	now := time.Now()
	x, y := ebiten.CursorPosition()
	moved := x != g.lastX || y != g.lastY

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		if id := g.eng.PickAt(float64(x), float64(y)); id != "" {
			g.eng.FocusNode(id, now)
		}
		g.dragging = true
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) && g.dragging:
		g.eng.Drag(float64(x-g.lastX), float64(y-g.lastY), now)
	default:
		g.dragging = false
	}
	g.lastX, g.lastY = x, y

	if _, wy := ebiten.Wheel(); wy != 0 {
		g.eng.Wheel(-wy*wheelZoomScale, now)
	}
	if moved && !g.dragging {
		g.eng.Hover(g.eng.PickAt(float64(x), float64(y)), now)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.eng.ClearSelection(now)
	}
	return g.eng.Step(now)
}

func (g *guiGame) Draw(screen *ebiten.Image) {
	g.sink.Blit(screen)
}

func (g *guiGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.eng.Resize(outsideWidth, outsideHeight, time.Now())
	return outsideWidth, outsideHeight
}

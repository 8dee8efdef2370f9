package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/constelviz/constel/pkg/engine"
	"github.com/constelviz/constel/pkg/graph"
	"github.com/constelviz/constel/pkg/render/termsink"
)

// statusBarLines is the screen space reserved below the constellation.
const statusBarLines = 2

// dragStepCells is the drag distance one arrow-key press simulates, in
// camera pixels.
const dragStepCells = 20

// viewCommand creates the terminal viewer command.
func (c *CLI) viewCommand() *cobra.Command {
	var mode, configPath string

	cmd := &cobra.Command{
		Use:   "view [graph.json]",
		Short: "Explore a graph interactively in the terminal",
		Long: `View renders the constellation into the terminal and lets you orbit it.

Keys:
  arrows     orbit the camera
  + / -      zoom in / out
  tab        focus the next node
  esc        clear focus
  q          quit`,
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

			sink := termsink.New(80, 24)
			eng, err := engine.New(tuning, sink, engine.Options{Width: 80, Height: 24 - statusBarLines, Mode: mode})
			if err != nil {
				return err
			}

			spin := newSpinnerWithContext(cmd.Context(), "Settling constellation...")
			spin.Start()
			err = eng.SetData(g)
			spin.Stop()
			if err != nil {
				return err
			}

			model := newViewModel(eng, sink, g)
			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			eng.Dispose()
			return err
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "force", "layout mode: force (default), radial, star, ego")
	cmd.Flags().StringVar(&configPath, "config", "", "tuning configuration file (TOML)")
	return cmd
}

type frameMsg time.Time

// frameTick drives the render loop at roughly 30 fps.
func frameTick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

var (
	statusStyle = lipgloss.NewStyle().Foreground(colorGray)
	focusStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
)

// viewModel is the bubbletea model wrapping the engine and terminal sink.
type viewModel struct {
	eng  *engine.Engine
	sink *termsink.Sink

	order    []string // focusable node ids, tab cycles through
	focusIdx int
	labels   map[string]string
}

func newViewModel(eng *engine.Engine, sink *termsink.Sink, g graph.Graph) viewModel {
	order := make([]string, 0, len(g.Nodes))
	labels := make(map[string]string, len(g.Nodes))
	for i := range g.Nodes {
		order = append(order, g.Nodes[i].ID)
		labels[g.Nodes[i].ID] = g.Nodes[i].DisplayLabel()
	}
	return viewModel{eng: eng, sink: sink, order: order, focusIdx: -1, labels: labels}
}

func (m viewModel) Init() tea.Cmd {
	return frameTick()
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	now := time.Now()
	switch msg := msg.(type) {
	case frameMsg:
		_ = m.eng.Step(now)
		return m, frameTick()

	case tea.WindowSizeMsg:
		if msg.Width > 0 && msg.Height > statusBarLines {
			m.eng.Resize(msg.Width, msg.Height-statusBarLines, now)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "left":
			m.eng.Drag(-dragStepCells, 0, now)
		case "right":
			m.eng.Drag(dragStepCells, 0, now)
		case "up":
			m.eng.Drag(0, -dragStepCells, now)
		case "down":
			m.eng.Drag(0, dragStepCells, now)
		case "+", "=":
			m.eng.Wheel(-1, now)
		case "-":
			m.eng.Wheel(1, now)
		case "tab":
			if len(m.order) > 0 {
				m.focusIdx = (m.focusIdx + 1) % len(m.order)
				m.eng.FocusNode(m.order[m.focusIdx], now)
			}
		case "esc":
			m.focusIdx = -1
			m.eng.ClearSelection(now)
		}
	}
	return m, nil
}

func (m viewModel) View() string {
	return m.sink.View() + "\n" + m.statusBar()
}

func (m viewModel) statusBar() string {
	status := "orbiting"
	if m.eng.IsIdle() {
		status = "idle"
	}
	focus := ""
	if id := m.eng.SelectedID(); id != "" {
		focus = "  " + focusStyle.Render(m.labels[id])
	}
	help := statusStyle.Render("arrows orbit · +/- zoom · tab focus · esc clear · q quit")
	return fmt.Sprintf("%s%s\n%s", statusStyle.Render(status), focus, help)
}

package cmd

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/go-drift/starlayout/cmd/starlayout/internal/config"
	"github.com/go-drift/starlayout/cmd/starlayout/internal/render"
)

func init() {
	RegisterCommand(&Command{
		Name:  "preview",
		Short: "Resize a scenario interactively",
		Long: `Open a full screen preview of a scenario. The layout is measured again
after every width change, so group growth and shrinking can be watched as
the width moves.

Keys:
  left, h     Narrow the layout by one step
  right, l    Widen the layout by one step
  [, ]        Halve or double the step
  r           Return to the starting width and the narrowest variants
  q, ctrl+c   Quit

Flags:
  --width N   Starting width (default: the scenario's first width)
  --cell N    Pixels per terminal cell (default: 7)`,
		Usage: "starlayout preview [--width N] [--cell N] <scenario.yaml>",
		Run:   runPreview,
	})
}

const (
	defaultPreviewStep = 10
	minPreviewStep     = 1
	maxPreviewStep     = 640
)

var (
	previewTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa"))
	previewHelp  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
)

type previewModel struct {
	scenario *config.Scenario
	tree     *config.Tree
	renderer *render.Renderer
	name     string

	start float64
	width float64
	step  float64

	// terminal size, zero until the first resize message
	cols, rows int
}

func newPreviewModel(name string, s *config.Scenario, tree *config.Tree, r *render.Renderer) previewModel {
	m := previewModel{
		scenario: s,
		tree:     tree,
		renderer: r,
		name:     name,
		step:     defaultPreviewStep,
	}
	if len(s.Widths) > 0 {
		m.start = s.Widths[0]
	}
	m.width = m.start
	m.layout()
	return m
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols = msg.Width
		m.rows = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.width = max(0, m.width-m.step)
			m.layout()
		case "right", "l":
			m.width += m.step
			m.layout()
		case "r":
			m.tree.Reset()
			m.width = m.start
			m.step = defaultPreviewStep
			m.layout()
		case "[":
			m.step = max(minPreviewStep, m.step/2)
		case "]":
			m.step = min(maxPreviewStep, m.step*2)
		}
	}
	return m, nil
}

func (m previewModel) View() string {
	var b strings.Builder
	b.WriteString(previewTitle.Render(m.name))
	b.WriteString("\n\n")
	b.WriteString(m.renderer.Ruler(m.width))
	b.WriteString("\n")
	b.WriteString(m.renderer.Box(m.tree.Host))
	b.WriteString("\n")

	stats := m.tree.Host.Stats()
	if stats.Remaining < 0 {
		b.WriteString(m.renderer.Overflow(-stats.Remaining))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "width %g  desired %g  remaining %g\n",
		m.width, m.tree.Host.DesiredSize().Width, stats.Remaining)
	fmt.Fprintf(&b, "grow %d  shrink %d  phases %s\n", stats.GrowSteps, stats.ShrinkSteps, phaseList(stats))
	fmt.Fprintf(&b, "groups %s  grow steps left %d\n", groupSummary(m.tree), m.tree.Ladder.Steps())
	b.WriteString("\n")
	b.WriteString(previewHelp.Render(fmt.Sprintf("←/→ resize by %g  [/] step  r reset  q quit", m.step)))

	view := b.String()
	if m.cols > 0 && m.rows > 0 {
		view = lipgloss.NewStyle().MaxWidth(m.cols).MaxHeight(m.rows).Render(view)
	}
	return view
}

func (m *previewModel) layout() {
	m.tree.Layout(m.width, m.scenario.Height)
}

func runPreview(args []string) error {
	opts, err := parseScenarioArgs(args, "--width", "--cell")
	if err != nil {
		return err
	}
	s, tree, err := loadTree(opts)
	if err != nil {
		return err
	}

	m := newPreviewModel(opts.path, s, tree, render.New(opts.cellWidth))
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}
	return nil
}

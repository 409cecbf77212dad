// Package render draws an arranged star layout tree as terminal text.
package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/go-drift/starlayout/pkg/layout"
	"github.com/go-drift/starlayout/pkg/starsizing"
	"github.com/go-drift/starlayout/pkg/widgets"
)

const (
	colorText    lipgloss.Color = "#cdd6f4"
	colorStar    lipgloss.Color = "#a6e3a1"
	colorFixed   lipgloss.Color = "#585b70"
	colorGroup   lipgloss.Color = "#89b4fa"
	colorOverlay lipgloss.Color = "#7f849c"
	colorWarning lipgloss.Color = "#f9e2af"
)

// DefaultCellWidth matches the advance of the default label face, so labels
// render one character per cell.
const DefaultCellWidth = 7

// Renderer converts arranged boxes into text, one terminal cell per
// CellWidth pixels.
type Renderer struct {
	CellWidth float64

	label lipgloss.Style
	star  lipgloss.Style
	fixed lipgloss.Style
	group lipgloss.Style
	muted lipgloss.Style
	warn  lipgloss.Style
}

// New creates a renderer with the default palette.
func New(cellWidth float64) *Renderer {
	if cellWidth <= 0 {
		cellWidth = DefaultCellWidth
	}
	return &Renderer{
		CellWidth: cellWidth,
		label:     lipgloss.NewStyle().Foreground(colorText),
		star:      lipgloss.NewStyle().Foreground(colorStar),
		fixed:     lipgloss.NewStyle().Foreground(colorFixed),
		group:     lipgloss.NewStyle().Foreground(colorGroup).Underline(true),
		muted:     lipgloss.NewStyle().Foreground(colorOverlay),
		warn:      lipgloss.NewStyle().Foreground(colorWarning).Bold(true),
	}
}

// Box renders b using the bounds from its last arrange.
func (r *Renderer) Box(b layout.Box) string {
	switch b := b.(type) {
	case *starsizing.Coordinator:
		parts := make([]string, 0, len(b.Children()))
		for _, child := range b.Children() {
			parts = append(parts, r.Box(child))
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, parts...)

	case *widgets.Group:
		if active := b.Active(); active != nil {
			return r.group.Render(r.Box(active))
		}
		return ""

	case *widgets.StarPanel:
		children := b.Children()
		cols := make([]string, 0, len(b.Columns()))
		for _, col := range b.Columns() {
			cells := make([]string, 0, col.End-col.Start)
			for i := col.Start; i < col.End && i < len(children); i++ {
				cells = append(cells, r.Box(children[i]))
			}
			block := lipgloss.JoinVertical(lipgloss.Left, cells...)
			cols = append(cols, lipgloss.NewStyle().Width(r.cells(col.Width)).Render(block))
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	case *widgets.Label:
		return r.fit(r.label, b.Text, r.cells(b.Bounds().Width))

	case *widgets.Star:
		n := r.cells(b.Bounds().Width)
		return r.star.Render(strings.Repeat("*", n))

	case *widgets.Fixed:
		n := r.cells(b.Bounds().Width)
		return r.fixed.Render(strings.Repeat("#", n))
	}

	if s, ok := b.(interface{ Bounds() layout.Rect }); ok {
		return r.muted.Render(strings.Repeat("?", r.cells(s.Bounds().Width)))
	}
	return ""
}

// Ruler returns a scale line width cells long, marking every tenth cell.
func (r *Renderer) Ruler(width float64) string {
	n := r.cells(width)
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if i%10 == 0 {
			sb.WriteByte('|')
		} else {
			sb.WriteByte('.')
		}
	}
	return r.muted.Render(sb.String())
}

// Overflow renders a warning for a layout wider than the space offered.
func (r *Renderer) Overflow(deficit float64) string {
	return r.warn.Render("overflow: " + strconv.FormatFloat(deficit, 'f', -1, 64) + "px")
}

func (r *Renderer) cells(width float64) int {
	if !layout.IsFinite(width) || width <= 0 {
		return 0
	}
	return int(math.Round(width / r.CellWidth))
}

// fit renders each line of text padded or cut to width cells.
func (r *Renderer) fit(style lipgloss.Style, text string, width int) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if lipgloss.Width(line) > width {
			line = truncate(line, width)
		}
		lines[i] = line + strings.Repeat(" ", max(0, width-lipgloss.Width(line)))
	}
	return style.Render(strings.Join(lines, "\n"))
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

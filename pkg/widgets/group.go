package widgets

import (
	"fmt"

	"github.com/go-drift/starlayout/pkg/layout"
)

// Group shows one of several variants of the same content. Variants are
// ordered from narrowest to widest; a growth policy moves between them.
type Group struct {
	layout.BoxBase
	Name string

	variants []layout.Box
	index    int
}

// NewGroup creates a group showing its first variant.
func NewGroup(name string, variants ...layout.Box) *Group {
	return &Group{Name: name, variants: variants}
}

// Identity implements starsizing.Group and starsizing.Identifier.
func (g *Group) Identity() any { return g }

// SizeCount returns the number of variants.
func (g *Group) SizeCount() int { return len(g.variants) }

// SizeIndex returns the index of the active variant.
func (g *Group) SizeIndex() int { return g.index }

// SetSizeIndex selects a variant. Out-of-range indices are clamped.
func (g *Group) SetSizeIndex(index int) {
	g.index = max(0, min(index, len(g.variants)-1))
}

// SetVariants replaces the variants and keeps the active index in range.
func (g *Group) SetVariants(variants ...layout.Box) {
	g.variants = variants
	g.SetSizeIndex(g.index)
}

// Variants returns every variant, narrowest first.
func (g *Group) Variants() []layout.Box {
	return g.variants
}

// Active returns the variant currently shown, or nil for an empty group.
func (g *Group) Active() layout.Box {
	if len(g.variants) == 0 {
		return nil
	}
	return g.variants[g.index]
}

// Measure implements layout.Box.
func (g *Group) Measure(available layout.Size) layout.Size {
	active := g.Active()
	if active == nil {
		return g.RecordMeasure(available, layout.Size{})
	}
	return g.RecordMeasure(available, active.Measure(available))
}

// Arrange implements layout.Box.
func (g *Group) Arrange(final layout.Rect) {
	g.RecordArrange(final)
	if active := g.Active(); active != nil {
		active.Arrange(final)
	}
}

func (g *Group) String() string {
	return fmt.Sprintf("Group(%s %d/%d)", g.Name, g.index+1, len(g.variants))
}

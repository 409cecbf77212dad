package widgets

import (
	"fmt"
	"math"

	layouterrors "github.com/go-drift/starlayout/pkg/errors"
	"github.com/go-drift/starlayout/pkg/layout"
	"github.com/go-drift/starlayout/pkg/star"
	"github.com/go-drift/starlayout/pkg/starsizing"
)

// Column is one vertical run of a StarPanel's children.
type Column struct {
	// Start and End delimit the children in the column, End exclusive.
	Start, End int
	// Width is the column width after the latest measure.
	Width float64
	// Height is the summed height of the column's children.
	Height float64
	// Entry is the column's star entry, or nil when it has no star children.
	Entry *star.Entry
}

// StarPanel stacks children top to bottom, wrapping into a new column
// whenever the next child would overflow the available height. Columns sit
// left to right.
//
// Each column holding star children contributes one entry to star
// allocation. In the basic pass star children are measured at their
// minimum width; in the star pass at the width allocated to their column.
type StarPanel struct {
	layout.BoxBase

	children []layout.Box
	sizes    []layout.Size
	columns  []Column
	entries  []*star.Entry

	host   *starsizing.Coordinator
	target any

	initializations int
	allocations     int
}

// NewStarPanel creates a panel with the given children.
func NewStarPanel(children ...layout.Box) *StarPanel {
	return &StarPanel{children: children}
}

// SetChildren replaces the panel's children.
func (p *StarPanel) SetChildren(children ...layout.Box) {
	p.children = append(p.children[:0], children...)
	p.columns = nil
	p.entries = nil
	if p.host != nil {
		p.host.InvalidateMeasure()
	}
}

// Children returns the panel's children.
func (p *StarPanel) Children() []layout.Box {
	return p.children
}

// Attach registers the panel with host. target selects the allocation round:
// the coordinator child (or its identity) the panel sits in.
func (p *StarPanel) Attach(host *starsizing.Coordinator, target any) error {
	if p.host != nil && p.host != host {
		if err := p.Detach(); err != nil {
			return err
		}
	}
	p.host = host
	p.target = target
	return host.Register(p)
}

// Detach unregisters the panel from its host.
func (p *StarPanel) Detach() error {
	if p.host == nil {
		return nil
	}
	host := p.host
	p.host = nil
	return host.Unregister(p)
}

// Host returns the coordinator the panel is attached to.
func (p *StarPanel) Host() *starsizing.Coordinator {
	return p.host
}

// Combinations implements starsizing.Provider.
func (p *StarPanel) Combinations() []*star.Entry {
	return p.entries
}

// TargetIdentity implements starsizing.Provider.
func (p *StarPanel) TargetIdentity() any {
	return p.target
}

// OnInitializeLayout implements starsizing.LayoutInitializer. Entries from
// an earlier pass are dropped so a panel that is not measured again, such
// as an inactive group variant, takes no part in allocation.
func (p *StarPanel) OnInitializeLayout() {
	p.initializations++
	p.columns = nil
	p.entries = nil
}

// OnAllocationCompleted implements star.Observer.
func (p *StarPanel) OnAllocationCompleted() {
	p.allocations++
}

// Columns returns the columns built by the latest measure.
func (p *StarPanel) Columns() []Column {
	return p.columns
}

// Allocations returns how many allocation rounds included the panel.
func (p *StarPanel) Allocations() int {
	return p.allocations
}

// Measure implements layout.Box.
func (p *StarPanel) Measure(available layout.Size) layout.Size {
	if p.host != nil && p.host.IsStarLayoutPass() && p.columns != nil {
		return p.RecordMeasure(available, p.measureAllocated(available))
	}
	return p.RecordMeasure(available, p.measureBasic(available))
}

func starSpec(child layout.Box) (weight, minWidth, maxWidth float64, ok bool) {
	sc, isStar := child.(StarChild)
	if !isStar {
		return 0, 0, 0, false
	}
	weight, minWidth, maxWidth = sc.StarSpec()
	return weight, minWidth, maxWidth, weight > 0
}

// columnBuilder accumulates the star bounds of the column being built.
type columnBuilder struct {
	col      Column
	weight   float64
	starMin  float64
	starMax  float64
	fixedMax float64
	hasStar  bool
}

func (b *columnBuilder) reset(start int) {
	*b = columnBuilder{col: Column{Start: start, End: start}, starMax: math.Inf(1)}
}

func (p *StarPanel) measureBasic(available layout.Size) layout.Size {
	budget := available.Height
	p.sizes = p.sizes[:0]
	p.columns = p.columns[:0]
	p.entries = p.entries[:0]

	var b columnBuilder
	b.reset(0)
	for i, child := range p.children {
		var size layout.Size
		weight, minWidth, maxWidth, isStar := starSpec(child)
		if isStar {
			size = child.Measure(layout.Size{Width: minWidth, Height: budget})
		} else {
			size = child.Measure(layout.Size{Width: available.Width, Height: budget})
		}
		p.sizes = append(p.sizes, size)

		if b.col.End > b.col.Start && layout.GreaterThan(b.col.Height+size.Height, budget) {
			p.flushColumn(&b)
			b.reset(i)
		}

		b.col.End = i + 1
		b.col.Height += size.Height
		b.col.Width = math.Max(b.col.Width, size.Width)
		if isStar {
			b.hasStar = true
			b.weight += weight
			b.starMin = math.Max(b.starMin, minWidth)
			b.starMax = math.Min(b.starMax, maxWidth)
		} else {
			b.fixedMax = math.Max(b.fixedMax, size.Width)
		}
	}
	if b.col.End > b.col.Start {
		p.flushColumn(&b)
	}
	return p.columnsSize()
}

func (p *StarPanel) flushColumn(b *columnBuilder) {
	col := b.col
	if b.hasStar {
		minWidth := math.Max(b.starMin, b.fixedMax)
		maxWidth := math.Max(minWidth, b.starMax)
		entry, err := star.NewEntry(b.weight, minWidth, maxWidth)
		if err != nil {
			// Child specs are validated on construction, so this only
			// happens for a custom StarChild with bad bounds.
			layouterrors.Report(&layouterrors.LayoutError{
				Op:      "widgets.StarPanel.Measure",
				Kind:    layouterrors.KindValidation,
				Subject: fmt.Sprintf("column %d..%d", col.Start, col.End),
				Err:     err,
			})
		} else {
			col.Entry = entry
			col.Width = math.Max(col.Width, minWidth)
			p.entries = append(p.entries, entry)
		}
	}
	p.columns = append(p.columns, col)
}

// measureAllocated measures star children at their column's allocation.
// Other children are measured again as in the basic pass so a nested panel
// picks up its own allocation.
func (p *StarPanel) measureAllocated(available layout.Size) layout.Size {
	for ci := range p.columns {
		col := &p.columns[ci]
		col.Width, col.Height = 0, 0
		if col.Entry != nil {
			col.Width = col.Entry.AllocatedWidth()
		}
		for i := col.Start; i < col.End; i++ {
			child := p.children[i]
			if _, _, _, isStar := starSpec(child); isStar {
				if col.Entry != nil {
					p.sizes[i] = child.Measure(layout.Size{Width: col.Entry.AllocatedWidth(), Height: available.Height})
				}
			} else {
				p.sizes[i] = child.Measure(layout.Size{Width: available.Width, Height: available.Height})
			}
			col.Height += p.sizes[i].Height
			col.Width = math.Max(col.Width, p.sizes[i].Width)
		}
	}
	return p.columnsSize()
}

func (p *StarPanel) columnsSize() layout.Size {
	var size layout.Size
	for _, col := range p.columns {
		size.Width += col.Width
		size.Height = math.Max(size.Height, col.Height)
	}
	return size
}

// Arrange implements layout.Box. Star children fill their column's width;
// other children keep their measured width.
func (p *StarPanel) Arrange(final layout.Rect) {
	p.RecordArrange(final)
	x := final.X
	for _, col := range p.columns {
		y := final.Y
		for i := col.Start; i < col.End && i < len(p.sizes); i++ {
			size := p.sizes[i]
			width := size.Width
			if _, _, _, isStar := starSpec(p.children[i]); isStar {
				width = col.Width
			}
			p.children[i].Arrange(layout.RectFromLTWH(x, y, width, size.Height))
			y += size.Height
		}
		x += col.Width
	}
}

func (p *StarPanel) String() string {
	return fmt.Sprintf("StarPanel(%d children, %d columns)", len(p.children), len(p.columns))
}

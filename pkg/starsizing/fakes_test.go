package starsizing

import (
	"sync"

	layouterrors "github.com/go-drift/starlayout/pkg/errors"
	"github.com/go-drift/starlayout/pkg/layout"
	"github.com/go-drift/starlayout/pkg/star"
)

// fixedBox reports a constant width.
type fixedBox struct {
	layout.BoxBase
	width, height float64
	measures      int
}

func (b *fixedBox) Measure(available layout.Size) layout.Size {
	b.measures++
	return b.RecordMeasure(available, layout.Size{Width: b.width, Height: b.height})
}

func (b *fixedBox) Arrange(final layout.Rect) { b.RecordArrange(final) }

// starBox measures at its entry's minimum in the basic pass and at the
// allocated width in the star pass.
type starBox struct {
	layout.BoxBase
	host  *Coordinator
	entry *star.Entry
}

func (b *starBox) Measure(available layout.Size) layout.Size {
	w := b.entry.MinWidth()
	if b.host.IsStarLayoutPass() {
		w = b.entry.AllocatedWidth()
	}
	return b.RecordMeasure(available, layout.Size{Width: w, Height: 10})
}

func (b *starBox) Arrange(final layout.Rect) { b.RecordArrange(final) }

// driftBox reports a different width on each measure, then keeps the last.
type driftBox struct {
	layout.BoxBase
	widths []float64
	n      int
}

func (b *driftBox) Measure(available layout.Size) layout.Size {
	w := b.widths[min(b.n, len(b.widths)-1)]
	b.n++
	return b.RecordMeasure(available, layout.Size{Width: w, Height: 10})
}

func (b *driftBox) Arrange(final layout.Rect) { b.RecordArrange(final) }

// groupBox is a child whose width is the current step of a ladder group.
type groupBox struct {
	layout.BoxBase
	group *ladderGroup
}

func (b *groupBox) Measure(available layout.Size) layout.Size {
	return b.RecordMeasure(available, layout.Size{Width: b.group.width(), Height: 10})
}

func (b *groupBox) Arrange(final layout.Rect) { b.RecordArrange(final) }

func (b *groupBox) Identity() any { return b.group }

type ladderGroup struct {
	name  string
	steps []float64
	index int
}

func (g *ladderGroup) width() float64 { return g.steps[g.index] }

func (g *ladderGroup) Identity() any { return g }

// ladderPolicy grows groups left to right and shrinks in reverse grow order,
// falling back to the rightmost reducible group.
type ladderPolicy struct {
	groups  []*ladderGroup
	history []*ladderGroup
}

func (p *ladderPolicy) next() *ladderGroup {
	for _, g := range p.groups {
		if g.index < len(g.steps)-1 {
			return g
		}
	}
	return nil
}

func (p *ladderPolicy) NextGrowableGroup() Group {
	if g := p.next(); g != nil {
		return g
	}
	return nil
}

func (p *ladderPolicy) IncreaseNextGroupSize() bool {
	g := p.next()
	if g == nil {
		return false
	}
	g.index++
	p.history = append(p.history, g)
	return true
}

func (p *ladderPolicy) DecreaseNextGroupSize() bool {
	if n := len(p.history); n > 0 {
		g := p.history[n-1]
		p.history = p.history[:n-1]
		g.index--
		return true
	}
	for i := len(p.groups) - 1; i >= 0; i-- {
		if g := p.groups[i]; g.index > 0 {
			g.index--
			return true
		}
	}
	return false
}

// stuckPolicy claims to grow forever without changing anything.
type stuckPolicy struct{ group *ladderGroup }

func (p *stuckPolicy) NextGrowableGroup() Group { return p.group }
func (p *stuckPolicy) IncreaseNextGroupSize() bool { return true }
func (p *stuckPolicy) DecreaseNextGroupSize() bool { return true }

type fakeProvider struct {
	entries     []*star.Entry
	target      any
	inits       int
	completions int
}

func (p *fakeProvider) Combinations() []*star.Entry { return p.entries }
func (p *fakeProvider) TargetIdentity() any { return p.target }
func (p *fakeProvider) OnInitializeLayout() { p.inits++ }
func (p *fakeProvider) OnAllocationCompleted() { p.completions++ }

// plainProvider has no optional capabilities.
type plainProvider struct{ entries []*star.Entry }

func (p *plainProvider) Combinations() []*star.Entry { return p.entries }
func (p *plainProvider) TargetIdentity() any { return nil }

// sliceProvider cannot be a map key.
type sliceProvider []*star.Entry

func (p sliceProvider) Combinations() []*star.Entry { return p }
func (p sliceProvider) TargetIdentity() any { return nil }

// registeringBox registers a provider the first time it is measured.
type registeringBox struct {
	layout.BoxBase
	host     *Coordinator
	provider Provider
	done     bool
	err      error
}

func (b *registeringBox) Measure(available layout.Size) layout.Size {
	if !b.done {
		b.done = true
		b.err = b.host.Register(b.provider)
	}
	return b.RecordMeasure(available, layout.Size{Width: 10, Height: 10})
}

func (b *registeringBox) Arrange(final layout.Rect) { b.RecordArrange(final) }

type captureHandler struct {
	mu     sync.Mutex
	errors []*layouterrors.LayoutError
	panics []*layouterrors.PanicError
}

func (h *captureHandler) HandleError(err *layouterrors.LayoutError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, err)
}

func (h *captureHandler) HandlePanic(err *layouterrors.PanicError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panics = append(h.panics, err)
}

func (h *captureHandler) kinds() []layouterrors.ErrorKind {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]layouterrors.ErrorKind, 0, len(h.errors))
	for _, err := range h.errors {
		out = append(out, err.Kind)
	}
	return out
}

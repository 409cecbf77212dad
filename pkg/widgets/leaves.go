package widgets

import (
	"fmt"

	"github.com/go-drift/starlayout/pkg/layout"
	"github.com/go-drift/starlayout/pkg/star"
)

// StarChild is implemented by children that stretch with star allocation.
type StarChild interface {
	layout.Box
	StarSpec() (weight, minWidth, maxWidth float64)
}

// Fixed is a leaf with a constant size.
type Fixed struct {
	layout.BoxBase
	Width  float64
	Height float64
}

// NewFixed creates a fixed-size leaf.
func NewFixed(width, height float64) *Fixed {
	return &Fixed{Width: width, Height: height}
}

// Measure implements layout.Box.
func (f *Fixed) Measure(available layout.Size) layout.Size {
	return f.RecordMeasure(available, layout.Size{Width: f.Width, Height: f.Height})
}

// Arrange implements layout.Box.
func (f *Fixed) Arrange(final layout.Rect) { f.RecordArrange(final) }

func (f *Fixed) String() string {
	return fmt.Sprintf("Fixed(%gx%g)", f.Width, f.Height)
}

// Star is a leaf that takes whatever width it is offered, clamped to
// [MinWidth, MaxWidth].
type Star struct {
	layout.BoxBase
	weight   float64
	minWidth float64
	maxWidth float64
	height   float64
}

// NewStar creates a star leaf. The bounds follow the rules of star.NewEntry.
func NewStar(weight, minWidth, maxWidth, height float64) (*Star, error) {
	if _, err := star.NewEntry(weight, minWidth, maxWidth); err != nil {
		return nil, err
	}
	return &Star{weight: weight, minWidth: minWidth, maxWidth: maxWidth, height: height}, nil
}

// MustStar is like NewStar but panics on invalid input.
func MustStar(weight, minWidth, maxWidth, height float64) *Star {
	s, err := NewStar(weight, minWidth, maxWidth, height)
	if err != nil {
		panic(err)
	}
	return s
}

// StarSpec implements StarChild.
func (s *Star) StarSpec() (weight, minWidth, maxWidth float64) {
	return s.weight, s.minWidth, s.maxWidth
}

// Measure implements layout.Box. An unbounded offer yields the minimum width.
func (s *Star) Measure(available layout.Size) layout.Size {
	w := s.minWidth
	if layout.IsFinite(available.Width) {
		w = layout.Clamp(available.Width, s.minWidth, s.maxWidth)
	}
	return s.RecordMeasure(available, layout.Size{Width: w, Height: s.height})
}

// Arrange implements layout.Box.
func (s *Star) Arrange(final layout.Rect) { s.RecordArrange(final) }

func (s *Star) String() string {
	return fmt.Sprintf("Star(%g*, %g..%g)", s.weight, s.minWidth, s.maxWidth)
}

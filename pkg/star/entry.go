// Package star implements weighted ("star") width allocation.
//
// An [Entry] describes one sizeable column: a weight, a minimum and maximum
// width, and the width currently allocated to it. [Allocate] distributes a
// surplus across a set of entries so that every entry receives width in
// proportion to its weight, without ever leaving its [min, max] range.
package star

import (
	"errors"
	"fmt"
	"math"

	layouterrors "github.com/go-drift/starlayout/pkg/errors"
	"github.com/go-drift/starlayout/pkg/layout"
)

var (
	// ErrInvalidWeight is the cause reported for NaN, infinite or negative weights.
	ErrInvalidWeight = errors.New("star weight must be finite and non-negative")
	// ErrInvalidBounds is the cause reported for NaN or negative bounds,
	// an infinite minimum, a non-positive maximum, or max < min.
	ErrInvalidBounds = errors.New("star bounds must satisfy 0 <= min <= max, max > 0")
)

// Observer is notified once an allocation round that included one of its
// entries has completed.
type Observer interface {
	OnAllocationCompleted()
}

// Entry is the allocation state of one star-sized column.
//
// The allocated width always lies in [MinWidth, MaxWidth]. It starts at
// MinWidth and is only changed by Allocate or SetAllocatedWidth, both of
// which clamp.
type Entry struct {
	weight    float64
	minWidth  float64
	maxWidth  float64
	allocated float64
	owner     Observer
}

// NewEntry validates the inputs and returns an entry allocated at its minimum.
// maxWidth may be layout.Unbounded.
func NewEntry(weight, minWidth, maxWidth float64) (*Entry, error) {
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight < 0 {
		return nil, &layouterrors.LayoutError{
			Op:      "star.NewEntry",
			Kind:    layouterrors.KindValidation,
			Subject: fmt.Sprintf("weight=%g", weight),
			Err:     ErrInvalidWeight,
		}
	}
	if !validBounds(minWidth, maxWidth) {
		return nil, &layouterrors.LayoutError{
			Op:      "star.NewEntry",
			Kind:    layouterrors.KindValidation,
			Subject: fmt.Sprintf("min=%g max=%g", minWidth, maxWidth),
			Err:     ErrInvalidBounds,
		}
	}
	return &Entry{
		weight:    weight,
		minWidth:  minWidth,
		maxWidth:  maxWidth,
		allocated: minWidth,
	}, nil
}

// MustEntry is like NewEntry but panics on invalid input. Use it where the
// values are known to be valid, such as literals in tests.
func MustEntry(weight, minWidth, maxWidth float64) *Entry {
	e, err := NewEntry(weight, minWidth, maxWidth)
	if err != nil {
		panic(err)
	}
	return e
}

func validBounds(minWidth, maxWidth float64) bool {
	if math.IsNaN(minWidth) || math.IsNaN(maxWidth) {
		return false
	}
	if minWidth < 0 || math.IsInf(minWidth, 0) {
		return false
	}
	return maxWidth > 0 && maxWidth >= minWidth
}

// Weight returns the star weight.
func (e *Entry) Weight() float64 { return e.weight }

// MinWidth returns the lower bound.
func (e *Entry) MinWidth() float64 { return e.minWidth }

// MaxWidth returns the upper bound.
func (e *Entry) MaxWidth() float64 { return e.maxWidth }

// AllocatedWidth returns the width currently allocated.
func (e *Entry) AllocatedWidth() float64 { return e.allocated }

// SetAllocatedWidth sets the allocated width, clamped to [min, max].
// NaN is treated as the minimum.
func (e *Entry) SetAllocatedWidth(width float64) {
	if math.IsNaN(width) {
		width = e.minWidth
	}
	e.allocated = layout.Clamp(width, e.minWidth, e.maxWidth)
}

// Reset returns the allocation to the minimum width.
func (e *Entry) Reset() {
	e.allocated = e.minWidth
}

// Owner returns the observer notified after allocation, or nil.
func (e *Entry) Owner() Observer { return e.owner }

// SetOwner sets the observer notified after allocation.
func (e *Entry) SetOwner(owner Observer) { e.owner = owner }

// Surplus returns how far the allocation is above the minimum.
func (e *Entry) Surplus() float64 { return e.allocated - e.minWidth }

// IsSaturated reports whether the allocation has reached the maximum.
func (e *Entry) IsSaturated() bool {
	return layout.AreClose(e.allocated, e.maxWidth)
}

// PerStarValue is the allocated width per unit of weight: the fairness
// metric. Zero-weight entries report +Inf so they sort last.
func (e *Entry) PerStarValue() float64 {
	if e.weight == 0 {
		return math.Inf(1)
	}
	return e.allocated / e.weight
}

// PotentialPerStarValue is the remaining growth room per unit of weight.
// Zero-weight entries report 0: they cannot grow.
func (e *Entry) PotentialPerStarValue() float64 {
	if e.weight == 0 {
		return 0
	}
	return (e.maxWidth - e.allocated) / e.weight
}

func (e *Entry) String() string {
	return fmt.Sprintf("Entry(w=%g min=%g max=%g alloc=%g)", e.weight, e.minWidth, e.maxWidth, e.allocated)
}

// TotalMinWidth sums the minimum widths.
func TotalMinWidth(entries []*Entry) float64 {
	total := 0.0
	for _, e := range entries {
		total += e.minWidth
	}
	return total
}

// TotalAllocatedWidth sums the allocated widths.
func TotalAllocatedWidth(entries []*Entry) float64 {
	total := 0.0
	for _, e := range entries {
		total += e.allocated
	}
	return total
}

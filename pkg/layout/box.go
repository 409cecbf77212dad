// Package layout defines the host measurement contract shared by the
// coordinator and the panels it measures.
//
// A Box is measured with an available size and reports the size it wants;
// it is then arranged into a final rectangle. Measurement is synchronous and
// single-threaded. Requests to measure again are routed through a
// [PipelineOwner], and work that must not run mid-measure is posted to a
// [WorkQueue].
package layout

// Box is a measurable, arrangeable element in the host layout tree.
type Box interface {
	// Measure computes the desired size for the given available size.
	Measure(available Size) Size
	// Arrange positions the box inside its final rectangle.
	Arrange(final Rect)
}

// BoxBase caches the last measure and arrange results for a box.
type BoxBase struct {
	desired   Size
	available Size
	bounds    Rect
}

// DesiredSize returns the result of the most recent measure.
func (b *BoxBase) DesiredSize() Size {
	return b.desired
}

// LastAvailable returns the available size passed to the most recent measure.
func (b *BoxBase) LastAvailable() Size {
	return b.available
}

// Bounds returns the rectangle passed to the most recent arrange.
func (b *BoxBase) Bounds() Rect {
	return b.bounds
}

// RecordMeasure stores the inputs and output of a measure call.
func (b *BoxBase) RecordMeasure(available, desired Size) Size {
	b.available = available
	b.desired = desired
	return desired
}

// RecordArrange stores the final rectangle.
func (b *BoxBase) RecordArrange(final Rect) {
	b.bounds = final
}

package layout

import (
	"fmt"
	"math"
)

// Unbounded marks an axis with no upper limit.
var Unbounded = math.Inf(1)

// Epsilon is the tolerance, in device units, below which two widths are
// considered equal.
const Epsilon = 1e-10

// Size is a width and height pair.
type Size struct {
	Width  float64
	Height float64
}

func (s Size) String() string {
	return fmt.Sprintf("Size(%g x %g)", s.Width, s.Height)
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// RectFromLTWH builds a rect from its left, top, width and height.
func RectFromLTWH(left, top, width, height float64) Rect {
	return Rect{X: left, Y: top, Width: width, Height: height}
}

// Size returns the rect's dimensions.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// AreClose reports whether a and b differ by no more than Epsilon.
// Two infinities of the same sign are close.
func AreClose(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= Epsilon
}

// IsZero reports whether v is within Epsilon of zero.
func IsZero(v float64) bool {
	return math.Abs(v) <= Epsilon
}

// SnapZero returns 0 when v is within Epsilon of zero, v otherwise.
func SnapZero(v float64) float64 {
	if IsZero(v) {
		return 0
	}
	return v
}

// GreaterThan reports whether a exceeds b by more than Epsilon.
func GreaterThan(a, b float64) bool {
	return a > b && !AreClose(a, b)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

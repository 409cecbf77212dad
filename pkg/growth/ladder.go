// Package growth provides a finite-step group growth policy for
// starsizing.Coordinator.
package growth

import (
	"errors"
	"fmt"

	layouterrors "github.com/go-drift/starlayout/pkg/errors"
	"github.com/go-drift/starlayout/pkg/starsizing"
)

// ErrUnknownGroup is reported when a reduction order names a group the
// ladder does not manage.
var ErrUnknownGroup = errors.New("group is not part of the ladder")

// Sizer is a group with a fixed, ordered set of sizes. Index 0 is the
// smallest size.
type Sizer interface {
	starsizing.Group
	SizeCount() int
	SizeIndex() int
	SetSizeIndex(index int)
}

// Ladder grows groups one size step at a time in the order they were given,
// filling each group before moving to the next.
//
// Shrinking undoes the most recent grow first. When there is nothing left
// to undo, groups are reduced following the reduction order, which defaults
// to the reverse of the growth order.
type Ladder struct {
	groups  []Sizer
	reduce  []Sizer
	history []Sizer
	initial []int
}

// NewLadder creates a ladder over groups. The groups' current size indices
// are remembered as the state Reset returns to.
func NewLadder(groups ...Sizer) *Ladder {
	l := &Ladder{}
	for _, g := range groups {
		if g == nil {
			continue
		}
		l.groups = append(l.groups, g)
		l.initial = append(l.initial, g.SizeIndex())
	}
	l.reduce = make([]Sizer, 0, len(l.groups))
	for i := len(l.groups) - 1; i >= 0; i-- {
		l.reduce = append(l.reduce, l.groups[i])
	}
	return l
}

// Groups returns the groups in growth order.
func (l *Ladder) Groups() []Sizer {
	return l.groups
}

// SetReductionOrder sets the order in which groups are reduced once the
// grow history is exhausted. Groups left out are never reduced that way.
func (l *Ladder) SetReductionOrder(order ...Sizer) error {
	for _, g := range order {
		if !l.contains(g) {
			return &layouterrors.LayoutError{
				Op:      "growth.Ladder.SetReductionOrder",
				Kind:    layouterrors.KindConfig,
				Subject: fmt.Sprintf("%T", g),
				Err:     ErrUnknownGroup,
			}
		}
	}
	l.reduce = append(l.reduce[:0], order...)
	return nil
}

// NextGrowableGroup implements starsizing.GrowthPolicy.
func (l *Ladder) NextGrowableGroup() starsizing.Group {
	if g := l.nextGrowable(); g != nil {
		return g
	}
	return nil
}

// IncreaseNextGroupSize implements starsizing.GrowthPolicy.
func (l *Ladder) IncreaseNextGroupSize() bool {
	g := l.nextGrowable()
	if g == nil {
		return false
	}
	g.SetSizeIndex(g.SizeIndex() + 1)
	l.history = append(l.history, g)
	return true
}

// DecreaseNextGroupSize implements starsizing.GrowthPolicy.
func (l *Ladder) DecreaseNextGroupSize() bool {
	for len(l.history) > 0 {
		g := l.history[len(l.history)-1]
		l.history = l.history[:len(l.history)-1]
		if g.SizeIndex() > 0 {
			g.SetSizeIndex(g.SizeIndex() - 1)
			return true
		}
	}
	for _, g := range l.reduce {
		if g.SizeIndex() > 0 {
			g.SetSizeIndex(g.SizeIndex() - 1)
			return true
		}
	}
	return false
}

// Reset restores every group to the size it had when the ladder was built
// and forgets the grow history.
func (l *Ladder) Reset() {
	for i, g := range l.groups {
		g.SetSizeIndex(l.initial[i])
	}
	l.history = l.history[:0]
}

// Steps returns the number of grow steps still available.
func (l *Ladder) Steps() int {
	n := 0
	for _, g := range l.groups {
		n += g.SizeCount() - 1 - g.SizeIndex()
	}
	return n
}

func (l *Ladder) nextGrowable() Sizer {
	for _, g := range l.groups {
		if g.SizeIndex() < g.SizeCount()-1 {
			return g
		}
	}
	return nil
}

func (l *Ladder) contains(g Sizer) bool {
	for _, candidate := range l.groups {
		if candidate == g {
			return true
		}
	}
	return false
}

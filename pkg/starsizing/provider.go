// Package starsizing coordinates star-sized width allocation across a tree
// of cooperating panels.
//
// A [Coordinator] is a horizontal host box that owns a registry of
// [Provider]s. Each measure runs a small state machine:
//
//	BASIC → (GROW | SHRINK)* → STAR
//
// The basic pass measures every child with star content at its minimum
// width. If space is left over (or missing), an external [GrowthPolicy]
// is stepped to grow or shrink whole groups, re-measuring after each step.
// Finally a star pass hands the surplus to [star.Allocate] over every live
// provider's combinations and measures again while [Coordinator.IsStarLayoutPass]
// reports true, so providers can size star children to their allocation.
//
// Providers register when attached to the tree and unregister when
// detached. Registration requests that arrive during a measure are queued
// and applied before the next one.
package starsizing

import (
	"github.com/go-drift/starlayout/pkg/star"
)

// Provider contributes weighted entries to an allocation round.
type Provider interface {
	// Combinations returns the entries built during the latest basic pass,
	// in layout order. The slice is read during the star pass of the same
	// measure cycle and discarded afterwards.
	Combinations() []*star.Entry
	// TargetIdentity selects the allocation round the provider takes part
	// in. It is matched against the coordinator's children. Nil matches any
	// round.
	TargetIdentity() any
}

// LayoutInitializer is implemented by providers that reset per-cycle state
// when a measure cycle starts or their target group changes size.
type LayoutInitializer interface {
	OnInitializeLayout()
}

// Identifier is implemented by coordinator children that expose an identity
// other than themselves, for matching against Provider.TargetIdentity.
type Identifier interface {
	Identity() any
}

// Group is one unit the growth policy can resize.
type Group interface {
	Identity() any
}

// GrowthPolicy decides which group grows or shrinks next.
//
// Implementations must expose a finite number of steps: repeated calls to
// IncreaseNextGroupSize (or DecreaseNextGroupSize) eventually return false.
// The coordinator relies on that to terminate.
type GrowthPolicy interface {
	// NextGrowableGroup returns the group IncreaseNextGroupSize would grow,
	// or nil if nothing can grow.
	NextGrowableGroup() Group
	// IncreaseNextGroupSize grows the next group by one step and reports
	// whether anything changed.
	IncreaseNextGroupSize() bool
	// DecreaseNextGroupSize shrinks the most recently grown group (or the
	// next reducible one) by one step and reports whether anything changed.
	DecreaseNextGroupSize() bool
}

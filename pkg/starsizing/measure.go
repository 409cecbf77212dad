package starsizing

import (
	"fmt"
	"math"
	"reflect"

	layouterrors "github.com/go-drift/starlayout/pkg/errors"
	"github.com/go-drift/starlayout/pkg/layout"
	"github.com/go-drift/starlayout/pkg/star"
)

// Phase is one state of the measurement state machine.
type Phase int

const (
	// PhaseBasic measures children at minimum-width semantics.
	PhaseBasic Phase = iota
	// PhaseGrow grows the next group through the growth policy.
	PhaseGrow
	// PhaseShrink shrinks a group through the growth policy.
	PhaseShrink
	// PhaseStar allocates the surplus and measures at allocated widths.
	PhaseStar
)

func (p Phase) String() string {
	switch p {
	case PhaseBasic:
		return "basic"
	case PhaseGrow:
		return "grow"
	case PhaseShrink:
		return "shrink"
	case PhaseStar:
		return "star"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Stats summarises one measure cycle.
type Stats struct {
	// Available is the width offered to the coordinator.
	Available float64
	// Remaining is the final remaining width (negative for an unresolved deficit).
	Remaining float64
	// Phases lists the states visited, in order.
	Phases []Phase
	// GrowSteps and ShrinkSteps count successful policy steps.
	GrowSteps   int
	ShrinkSteps int
	// SkippedGrow is set when the grow threshold short-circuited a grow attempt.
	SkippedGrow bool
	// Compensated is set when a shrink reused the pre-grow remaining width.
	Compensated bool
	// Entries is the number of combinations allocated in the star pass.
	Entries int
	// Allocated is the width handed out by the allocator.
	Allocated float64
	// Leftover is the surplus the allocator could not place.
	Leftover float64
}

// Measure runs one measurement cycle.
func (c *Coordinator) Measure(available layout.Size) layout.Size {
	if c.measuring {
		// Re-entrant measure from a child: answer with the last result.
		return c.DesiredSize()
	}
	c.drainPending()

	c.measuring = true
	c.needsMeasure = false
	c.stats = Stats{Available: available.Width}
	defer func() {
		c.measuring = false
		c.starPass = false
	}()

	if len(c.children) != c.cachedChildCount {
		c.log.V(1).Info("child count changed, dropping caches", "was", c.cachedChildCount, "now", len(c.children))
		c.resetCaches()
		c.cachedChildCount = len(c.children)
	}

	c.registry.each(func(slot *providerSlot) {
		if slot.initializer != nil {
			slot.initializer.OnInitializeLayout()
		}
	})

	desired, remaining := c.basicPass(available)

	if math.IsInf(available.Width, 1) {
		c.log.V(1).Info("unbounded width, skipping star allocation")
		c.stats.Remaining = remaining
		return c.RecordMeasure(available, desired)
	}

	needsAdjust := remaining < 0 || !c.hasCachedRemaining || layout.GreaterThan(remaining, c.cachedRemaining)
	if needsAdjust && c.policy != nil {
		desired, remaining = c.adjust(available, desired, remaining)
	}

	if remaining > 0 {
		desired = c.runStarPass(available, remaining)
	}
	if remaining >= 0 {
		// Only an unresolved deficit reports more than the available width.
		desired.Width = math.Min(desired.Width, available.Width)
	}

	c.cachedRemaining = remaining
	c.hasCachedRemaining = true
	c.stats.Remaining = remaining

	c.log.V(1).Info("measure complete",
		"available", available.Width,
		"desired", desired.Width,
		"remaining", remaining,
		"grow", c.stats.GrowSteps,
		"shrink", c.stats.ShrinkSteps,
	)
	return c.RecordMeasure(available, desired)
}

// basicPass measures every child and returns the summed size and the
// remaining width, snapped to zero within layout.Epsilon.
func (c *Coordinator) basicPass(available layout.Size) (layout.Size, float64) {
	c.stats.Phases = append(c.stats.Phases, PhaseBasic)
	desired := c.measureChildren(available)
	return desired, layout.SnapZero(available.Width - desired.Width)
}

func (c *Coordinator) measureChildren(available layout.Size) layout.Size {
	childAvailable := layout.Size{Width: layout.Unbounded, Height: available.Height}
	c.childWidths = c.childWidths[:0]
	var total layout.Size
	for _, child := range c.children {
		size := child.Measure(childAvailable)
		c.childWidths = append(c.childWidths, size.Width)
		total.Width += size.Width
		total.Height = math.Max(total.Height, size.Height)
	}
	return total
}

// adjust steps the growth policy until the remaining width settles.
//
// Each grow runs an allocation round over the grown group's entries and
// measures again only when a width changed. Growing stops when the policy
// has nothing left, when a grow overshoots, or when the remaining width is
// below the grow threshold. Shrinking stops when the remaining width is no
// longer negative or the policy has nothing left. After an overshoot the
// remaining width measured before the grow is kept: children may report a
// different size on the re-measure that follows the shrink.
//
// The threshold cached by a successful grow gates later cycles only; the
// one derived from an overshoot also gates the rest of this cycle.
func (c *Coordinator) adjust(available, desired layout.Size, remaining float64) (layout.Size, float64) {
	steps := 0
	grewThisCycle := false
	preGrow := 0.0
	overshoot := 0.0
	gate, hasGate := c.growThreshold, c.hasGrowThreshold

	for {
		if steps >= c.maxAdjustSteps {
			layouterrors.Report(&layouterrors.LayoutError{
				Op:      "starsizing.Coordinator.Measure",
				Kind:    layouterrors.KindConvergence,
				Subject: fmt.Sprintf("remaining=%g", remaining),
				Err:     fmt.Errorf("growth policy did not settle within %d steps", c.maxAdjustSteps),
			})
			return desired, remaining
		}

		switch {
		case remaining > 0:
			if hasGate && remaining < gate {
				c.stats.SkippedGrow = true
				c.log.V(2).Info("below grow threshold", "remaining", remaining, "threshold", gate)
				return desired, remaining
			}
			group := c.policy.NextGrowableGroup()
			if group == nil || !c.policy.IncreaseNextGroupSize() {
				return desired, remaining
			}
			steps++
			c.stats.GrowSteps++
			c.stats.Phases = append(c.stats.Phases, PhaseGrow)
			identity := group.Identity()
			c.initializeTargets(identity)

			if !c.allocateGroup(available, identity, remaining) {
				c.log.V(2).Info("grow changed no width", "remaining", remaining)
				continue
			}

			before := remaining
			desired, remaining = c.basicPass(available)
			c.log.V(2).Info("grew group", "before", before, "after", remaining)
			if remaining < 0 {
				grewThisCycle = true
				preGrow = before
				overshoot = remaining
				continue
			}
			c.growThreshold = before
			c.hasGrowThreshold = true

		case remaining < 0:
			if !c.policy.DecreaseNextGroupSize() {
				return desired, remaining
			}
			steps++
			c.stats.ShrinkSteps++
			c.stats.Phases = append(c.stats.Phases, PhaseShrink)

			var measured float64
			desired, measured = c.basicPass(available)
			if grewThisCycle {
				// The grow cost, corrected by how far the children moved
				// between the pre-grow and post-shrink measures.
				c.growThreshold = (preGrow - overshoot) + (preGrow - measured)
				c.hasGrowThreshold = true
				gate, hasGate = c.growThreshold, true
				c.stats.Compensated = true
				c.log.V(2).Info("shrunk after overshoot",
					"measured", measured, "using", preGrow, "threshold", c.growThreshold)
				remaining = preGrow
				grewThisCycle = false
				continue
			}
			// A plain shrink frees room the old threshold knows nothing about.
			c.hasGrowThreshold = false
			hasGate = false
			remaining = measured

		default:
			return desired, remaining
		}
	}
}

// initializeTargets tells the providers aimed at a resized group to start over.
func (c *Coordinator) initializeTargets(identity any) {
	c.registry.each(func(slot *providerSlot) {
		if slot.initializer != nil && sameIdentity(slot.provider.TargetIdentity(), identity) {
			slot.initializer.OnInitializeLayout()
		}
	})
}

// allocateGroup measures the child holding a grown group again and runs an
// allocation round over the entries of the providers aimed at it. It
// reports whether the child's width or any allocated width changed. When
// no child holds the group it reports true so the caller measures again.
func (c *Coordinator) allocateGroup(available layout.Size, identity any, remaining float64) bool {
	changed := true
	surplus := remaining
	childAvailable := layout.Size{Width: layout.Unbounded, Height: available.Height}
	for i, child := range c.children {
		if !containsIdentity(childIdentities(child), identity) || i >= len(c.childWidths) {
			continue
		}
		delta := child.Measure(childAvailable).Width - c.childWidths[i]
		changed = !layout.IsZero(delta)
		surplus -= delta
		break
	}

	entries := c.combinations(func(target any) bool {
		return sameIdentity(target, identity)
	})
	previous := make([]float64, len(entries))
	for i, e := range entries {
		previous[i] = e.AllocatedWidth()
	}
	star.Allocate(surplus, entries)
	for i, e := range entries {
		if !layout.AreClose(previous[i], e.AllocatedWidth()) {
			changed = true
		}
	}
	c.log.V(2).Info("allocated grown group", "entries", len(entries), "surplus", surplus, "changed", changed)
	return changed
}

// runStarPass allocates surplus over the live providers' combinations and
// measures the children again at their allocated widths.
func (c *Coordinator) runStarPass(available layout.Size, surplus float64) layout.Size {
	entries := c.collectCombinations()
	leftover := star.Allocate(surplus, entries)

	c.stats.Phases = append(c.stats.Phases, PhaseStar)
	c.stats.Entries = len(entries)
	c.stats.Leftover = leftover
	for _, e := range entries {
		c.stats.Allocated += e.Surplus()
	}

	c.starPass = true
	desired := c.measureChildren(available)
	c.starPass = false
	return desired
}

// collectCombinations gathers entries from providers whose target is one
// of the coordinator's children (or unset), in registration slot order.
func (c *Coordinator) collectCombinations() []*star.Entry {
	targets := make([]any, 0, len(c.children)*2)
	for _, child := range c.children {
		targets = append(targets, childIdentities(child)...)
	}
	return c.combinations(func(target any) bool {
		return target == nil || containsIdentity(targets, target)
	})
}

// combinations gathers entries from the providers whose target matches,
// binding each entry to its provider.
func (c *Coordinator) combinations(match func(target any) bool) []*star.Entry {
	var entries []*star.Entry
	c.registry.each(func(slot *providerSlot) {
		if !match(slot.provider.TargetIdentity()) {
			return
		}
		for _, e := range slot.provider.Combinations() {
			if e == nil {
				continue
			}
			if slot.observer != nil {
				e.SetOwner(slot.observer)
			}
			entries = append(entries, e)
		}
	})
	return entries
}

// childIdentities lists the values a provider may target to reach child.
func childIdentities(child layout.Box) []any {
	if id, ok := child.(Identifier); ok {
		return []any{child, id.Identity()}
	}
	return []any{child}
}

func containsIdentity(list []any, identity any) bool {
	for _, candidate := range list {
		if sameIdentity(candidate, identity) {
			return true
		}
	}
	return false
}

// sameIdentity compares two identities without panicking on values whose
// dynamic type is not comparable.
func sameIdentity(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

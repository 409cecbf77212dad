package star

import (
	"math"
	"sort"

	"github.com/go-drift/starlayout/pkg/layout"
)

// Allocate distributes surplus across entries and returns the part of the
// surplus that could not be placed.
//
// Every entry is first reset to its minimum. A surplus at or below zero
// (within layout.Epsilon) allocates nothing. Otherwise allocation runs in
// two phases:
//
//  1. Equalization. Entries are ordered by per-star value and the longest
//     prefix that can be raised to the per-star value of its last member,
//     within the surplus, is raised. Entries are capped at their maximum.
//  2. Water-filling. The remaining surplus is spread over that prefix in
//     proportion to weight. Entries that reach their maximum drop out and
//     the rest keep rising at a common per-star rate until the surplus is
//     spent or every entry is saturated.
//
// Zero-weight entries never grow. The result is deterministic for a given
// input order: sorting is stable and ties keep input order. The input slice
// is not reordered.
//
// Finally each distinct entry owner is notified once, in order of first
// appearance.
func Allocate(surplus float64, entries []*Entry) float64 {
	for _, e := range entries {
		e.Reset()
	}

	remaining := surplus
	if remaining > layout.Epsilon {
		active := make([]*Entry, 0, len(entries))
		for _, e := range entries {
			if e.weight > 0 {
				active = append(active, e)
			}
		}
		if len(active) > 0 {
			SortByPerStar(active)
			k := equalizationPrefix(active, remaining)
			remaining -= equalize(active[:k], active[k].PerStarValue())
			remaining = distribute(active[:k+1], remaining)
		}
	}

	notifyOwners(entries)
	return layout.SnapZero(remaining)
}

// equalizationPrefix returns the largest index k such that raising every
// entry before k to the per-star value of entry k costs no more than budget.
// Entries must be sorted by per-star value; the cost is non-decreasing in k.
func equalizationPrefix(sorted []*Entry, budget float64) int {
	n := len(sorted)
	first := sort.Search(n, func(k int) bool {
		return equalizationCost(sorted[:k], sorted[k].PerStarValue()) > budget
	})
	if first == 0 {
		return 0
	}
	return first - 1
}

func equalizationCost(prefix []*Entry, basePerStar float64) float64 {
	cost := 0.0
	for _, e := range prefix {
		target := math.Min(basePerStar*e.weight, e.maxWidth)
		if target > e.allocated {
			cost += target - e.allocated
		}
	}
	return cost
}

// equalize raises prefix entries to basePerStar and returns the width consumed.
func equalize(prefix []*Entry, basePerStar float64) float64 {
	consumed := 0.0
	for _, e := range prefix {
		target := math.Min(basePerStar*e.weight, e.maxWidth)
		if target > e.allocated {
			before := e.allocated
			e.SetAllocatedWidth(target)
			consumed += e.allocated - before
		}
	}
	return consumed
}

// distribute spreads budget over group by weight, saturating entries in order
// of increasing potential per-star value, and returns what is left.
func distribute(group []*Entry, budget float64) float64 {
	if budget <= layout.Epsilon || len(group) == 0 {
		return budget
	}

	ordered := make([]*Entry, len(group))
	copy(ordered, group)
	SortByPotentialPerStar(ordered)

	potentials := make([]float64, len(ordered))
	activeWeight := 0.0
	for i, e := range ordered {
		potentials[i] = e.PotentialPerStarValue()
		activeWeight += e.weight
	}

	impactPerStar := 0.0
	for i, e := range ordered {
		if budget <= layout.Epsilon || activeWeight <= 0 {
			break
		}
		step := potentials[i] - impactPerStar
		if step > 0 {
			cost := step * activeWeight
			if cost > budget {
				impactPerStar += budget / activeWeight
				budget = 0
				break
			}
			impactPerStar = potentials[i]
			budget -= cost
		}
		activeWeight -= e.weight
	}

	for i, e := range ordered {
		if impactPerStar >= potentials[i] {
			e.SetAllocatedWidth(e.maxWidth)
			continue
		}
		e.SetAllocatedWidth(e.allocated + impactPerStar*e.weight)
	}
	return budget
}

func notifyOwners(entries []*Entry) {
	var seen []Observer
	for _, e := range entries {
		if e.owner == nil || containsObserver(seen, e.owner) {
			continue
		}
		seen = append(seen, e.owner)
	}
	for _, o := range seen {
		o.OnAllocationCompleted()
	}
}

func containsObserver(list []Observer, o Observer) bool {
	for _, existing := range list {
		if existing == o {
			return true
		}
	}
	return false
}

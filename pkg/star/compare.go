package star

import (
	"cmp"
	"slices"
)

// ComparePerStar orders entries by ascending per-star value.
func ComparePerStar(a, b *Entry) int {
	return cmp.Compare(a.PerStarValue(), b.PerStarValue())
}

// ComparePotentialPerStar orders entries by ascending potential per-star value,
// so entries closest to their maximum come first.
func ComparePotentialPerStar(a, b *Entry) int {
	return cmp.Compare(a.PotentialPerStarValue(), b.PotentialPerStarValue())
}

// SortByPerStar sorts in place by per-star value. Ties keep input order.
func SortByPerStar(entries []*Entry) {
	slices.SortStableFunc(entries, ComparePerStar)
}

// SortByPotentialPerStar sorts in place by potential per-star value.
// Ties keep input order.
func SortByPotentialPerStar(entries []*Entry) {
	slices.SortStableFunc(entries, ComparePotentialPerStar)
}

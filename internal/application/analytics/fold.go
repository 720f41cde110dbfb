package analytics

import (
	"cmp"
	"slices"
)

// Fold reduces items into per-key accumulators: key picks the bucket (false
// skips the item) and combine merges the item into the bucket's current value.
func Fold[T any, K comparable, V any](items []T, key func(T) (K, bool), combine func(V, T) V) map[K]V {
	out := make(map[K]V)
	for _, item := range items {
		k, ok := key(item)
		if !ok {
			continue
		}
		out[k] = combine(out[k], item)
	}
	return out
}

// CountBy counts items per key.
func CountBy[T any, K comparable](items []T, key func(T) (K, bool)) map[K]int64 {
	return Fold(items, key, func(acc int64, _ T) int64 { return acc + 1 })
}

// SumBy sums value(item) per key.
func SumBy[T any, K comparable](items []T, key func(T) (K, bool), value func(T) int64) map[K]int64 {
	return Fold(items, key, func(acc int64, item T) int64 { return acc + value(item) })
}

// Filter returns the items for which keep reports true.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Count returns how many items satisfy pred.
func Count[T any](items []T, pred func(T) bool) int64 {
	var n int64
	for _, item := range items {
		if pred(item) {
			n++
		}
	}
	return n
}

// KeyCount is one entry of a count mapping.
type KeyCount[K cmp.Ordered] struct {
	Key   K
	Count int64
}

// ByCountDesc flattens counts into entries ordered by count descending,
// ties broken by key ascending.
func ByCountDesc[K cmp.Ordered](counts map[K]int64) []KeyCount[K] {
	out := make([]KeyCount[K], 0, len(counts))
	for k, c := range counts {
		out = append(out, KeyCount[K]{Key: k, Count: c})
	}
	slices.SortFunc(out, func(a, b KeyCount[K]) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

// Total sums every value of a count mapping.
func Total[K comparable](counts map[K]int64) int64 {
	var sum int64
	for _, c := range counts {
		sum += c
	}
	return sum
}

func truncate[T any](items []T, limit int) []T {
	if limit >= 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

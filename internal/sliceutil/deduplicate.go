// Package sliceutil provides generic slice manipulation utilities.
package sliceutil

// Deduplicate removes duplicate items from a slice while preserving order.
// The keyFunc extracts a unique key from each item for comparison.
// Only the first occurrence of each key is kept.
func Deduplicate[T any, K comparable](items []T, keyFunc func(T) K) []T {
	if len(items) == 0 {
		return items
	}

	seen := make(map[K]bool, len(items))
	result := make([]T, 0, len(items))

	for _, item := range items {
		key := keyFunc(item)
		if !seen[key] {
			seen[key] = true
			result = append(result, item)
		}
	}

	return result
}

// DeduplicateBest removes duplicate items while preserving the position of
// each key's first occurrence. When a later item shares a key with an
// earlier one, the better of the two (per the better func) is kept in the
// earlier position.
//
// Example:
//
//	offices := DeduplicateBest(candidates, compositeKey, func(a, b Office) bool {
//	    return a.Confidence > b.Confidence
//	})
func DeduplicateBest[T any, K comparable](items []T, keyFunc func(T) K, better func(a, b T) bool) []T {
	if len(items) == 0 {
		return items
	}

	pos := make(map[K]int, len(items))
	result := make([]T, 0, len(items))

	for _, item := range items {
		key := keyFunc(item)
		if i, ok := pos[key]; ok {
			if better(item, result[i]) {
				result[i] = item
			}
			continue
		}
		pos[key] = len(result)
		result = append(result, item)
	}

	return result
}

package collections

// Apply applies the applicator function to each item in the input slice.
func Apply[T, V any](items []T, applicator func(T) V) []V {
	result := make([]V, len(items))
	for i, item := range items {
		result[i] = applicator(item)
	}
	return result
}

// Filter returns the items for which keep returns true, preserving order.
func Filter[T any](items []T, keep func(T) bool) []T {
	result := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			result = append(result, item)
		}
	}
	return result
}

// All reports whether pred holds for every item. An empty slice is false,
// since nothing was checked.
func All[T any](items []T, pred func(T) bool) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !pred(item) {
			return false
		}
	}
	return true
}

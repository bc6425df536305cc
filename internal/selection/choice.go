package selection

// WeightedChoice picks one item with probability proportional to its weight.
//
// Negative weights are summed like any other. When the total is not positive
// the first item is returned; callers relying on weights of zero to disable
// items should filter them out beforehand.
func WeightedChoice[T any](rnd RandomSource, items []T, weights []float64) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrNoItems
	}
	if len(weights) != len(items) {
		return zero, ErrWeightMismatch
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return items[0], nil
	}

	if rnd == nil {
		rnd = DefaultSource()
	}
	r := rnd.Float64() * total
	upto := 0.0
	for i, item := range items {
		upto += weights[i]
		if r <= upto {
			return item, nil
		}
	}
	// only reachable through float rounding at r == total
	return items[len(items)-1], nil
}

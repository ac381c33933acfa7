package coordinator

import (
	"cmp"
	"fmt"
	"slices"
)

// Pre is a position measured against the shape before an operation runs.
// Deletions, reloads and move sources are Pre positions.
type Pre int

// Post is a position measured against the shape after an operation runs.
// Insertions, move destinations and diff modifications are Post positions.
type Post int

// indexSet sorts and validates a set of positions. Every position must be in
// [0, limit) and appear once.
func indexSet[I ~int](what string, idx []I, limit int) ([]int, error) {
	out := make([]int, len(idx))
	for i, v := range idx {
		out[i] = int(v)
	}
	slices.Sort(out)
	if err := checkSorted(what, out, limit); err != nil {
		return nil, err
	}
	return out, nil
}

// sortedPairs is indexSet for positions that carry a value. values may be nil,
// in which case every position gets the zero value.
func sortedPairs[I ~int, V any](what string, idx []I, values []V, limit int) ([]int, []V, error) {
	if values != nil && len(values) != len(idx) {
		return nil, nil, fmt.Errorf("%w: %d values for %d %s positions", ErrInvalidIndex, len(values), len(idx), what)
	}

	order := make([]int, len(idx))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int { return cmp.Compare(idx[a], idx[b]) })

	positions := make([]int, len(idx))
	vals := make([]V, len(idx))
	for i, o := range order {
		positions[i] = int(idx[o])
		if values != nil {
			vals[i] = values[o]
		}
	}

	if err := checkSorted(what, positions, limit); err != nil {
		return nil, nil, err
	}
	return positions, vals, nil
}

func checkSorted(what string, sorted []int, limit int) error {
	for i, v := range sorted {
		if err := checkIndex(what, v, limit); err != nil {
			return err
		}
		if i > 0 && sorted[i-1] == v {
			return fmt.Errorf("%w: duplicate %s %d", ErrInvalidIndex, what, v)
		}
	}
	return nil
}

// checkIndex validates a single position against [0, limit).
func checkIndex(what string, v, limit int) error {
	if v < 0 || v >= limit {
		return fmt.Errorf("%w: %s %d out of range [0,%d)", ErrInvalidIndex, what, v, limit)
	}
	return nil
}

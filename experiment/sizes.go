package experiment

import (
	"fmt"
	"math"
	"slices"
)

// InputSizes returns points logarithmically spaced sizes between minN and
// maxN inclusive, rounded to integers, deduplicated, ascending and filtered
// to sizes of at least 2.
func InputSizes(minN, maxN, points int) ([]int, error) {
	if minN < 1 || maxN < minN {
		return nil, fmt.Errorf("invalid size range [%d, %d]", minN, maxN)
	}
	if points < 1 {
		return nil, fmt.Errorf("points must be at least 1, got %d", points)
	}

	lo, hi := math.Log10(float64(minN)), math.Log10(float64(maxN))
	sizes := make([]int, 0, points)
	for i := 0; i < points; i++ {
		exp := lo
		if points > 1 {
			exp = lo + (hi-lo)*float64(i)/float64(points-1)
		}
		n := int(math.RoundToEven(math.Pow(10, exp)))
		if n >= 2 {
			sizes = append(sizes, n)
		}
	}
	slices.Sort(sizes)
	return slices.Compact(sizes), nil
}

// normalizeSizes sorts explicit sizes ascending, drops duplicates and
// rejects anything below 2.
func normalizeSizes(sizes []int) ([]int, error) {
	out := slices.Clone(sizes)
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) > 0 && out[0] < 2 {
		return nil, fmt.Errorf("input sizes must be at least 2, got %d", out[0])
	}
	return out, nil
}

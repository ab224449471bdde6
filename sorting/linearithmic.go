package sorting

import (
	"math/rand/v2"
	"slices"
)

// MergeSort is a top-down merge sort. It returns a new slice and leaves the
// input untouched.
func MergeSort(data []int) []int {
	out := slices.Clone(data)
	if len(out) <= 1 {
		return out
	}
	scratch := make([]int, len(out))
	mergeSort(out, scratch)
	return out
}

func mergeSort(data, scratch []int) {
	if len(data) <= 1 {
		return
	}
	mid := len(data) / 2
	mergeSort(data[:mid], scratch[:mid])
	mergeSort(data[mid:], scratch[mid:])

	// Already ordered halves need no merge.
	if data[mid-1] <= data[mid] {
		return
	}
	copy(scratch, data)
	i, j, k := 0, mid, 0
	for i < mid && j < len(data) {
		if scratch[i] <= scratch[j] {
			data[k] = scratch[i]
			i++
		} else {
			data[k] = scratch[j]
			j++
		}
		k++
	}
	k += copy(data[k:], scratch[i:mid])
	copy(data[k:], scratch[j:len(data)])
}

// pivotFunc returns the index of the pivot for data[lo:hi+1].
type pivotFunc func(data []int, lo, hi int) int

func QuickSortFirst(data []int) { quickSort(data, 0, len(data)-1, func(_ []int, lo, _ int) int { return lo }) }

func QuickSortLast(data []int) { quickSort(data, 0, len(data)-1, func(_ []int, _, hi int) int { return hi }) }

// QuickSortMedianOfThree picks the median of the first, middle and last
// elements, which keeps sorted and reverse inputs at O(n log n).
func QuickSortMedianOfThree(data []int) { quickSort(data, 0, len(data)-1, medianOfThree) }

func medianOfThree(data []int, lo, hi int) int {
	mid := lo + (hi-lo)/2
	a, b, c := data[lo], data[mid], data[hi]
	switch {
	case (a <= b && b <= c) || (c <= b && b <= a):
		return mid
	case (b <= a && a <= c) || (c <= a && a <= b):
		return lo
	}
	return hi
}

// RandomPivotQuickSort draws pivots from its own seeded source.
type RandomPivotQuickSort struct {
	rng *rand.Rand
}

func NewRandomPivotQuickSort(seed int64) *RandomPivotQuickSort {
	return &RandomPivotQuickSort{rng: rand.New(rand.NewPCG(uint64(seed), 0))}
}

func (q *RandomPivotQuickSort) Sort(data []int) {
	quickSort(data, 0, len(data)-1, func(_ []int, lo, hi int) int {
		return lo + q.rng.IntN(hi-lo+1)
	})
}

// quickSort recurses into the smaller partition and loops over the larger
// one, bounding stack depth to O(log n) even for degenerate pivots.
func quickSort(data []int, lo, hi int, pivot pivotFunc) {
	for lo < hi {
		if hi-lo < 16 {
			InsertionSort(data[lo : hi+1])
			return
		}
		p := partition(data, lo, hi, pivot(data, lo, hi))
		if p-lo < hi-p {
			quickSort(data, lo, p-1, pivot)
			lo = p + 1
		} else {
			quickSort(data, p+1, hi, pivot)
			hi = p - 1
		}
	}
}

// partition is Lomuto's scheme with the chosen pivot moved to hi first.
func partition(data []int, lo, hi, pivotIdx int) int {
	data[pivotIdx], data[hi] = data[hi], data[pivotIdx]
	pivot := data[hi]
	i := lo
	for j := lo; j < hi; j++ {
		if data[j] < pivot {
			data[i], data[j] = data[j], data[i]
			i++
		}
	}
	data[i], data[hi] = data[hi], data[i]
	return i
}

func HeapSort(data []int) {
	n := len(data)
	for i := n/2 - 1; i >= 0; i-- {
		siftDown(data, i, n)
	}
	for end := n - 1; end > 0; end-- {
		data[0], data[end] = data[end], data[0]
		siftDown(data, 0, end)
	}
}

func siftDown(data []int, root, n int) {
	for {
		child := 2*root + 1
		if child >= n {
			return
		}
		if child+1 < n && data[child+1] > data[child] {
			child++
		}
		if data[root] >= data[child] {
			return
		}
		data[root], data[child] = data[child], data[root]
		root = child
	}
}

// ShellSort uses Ciura's gap sequence extended by a factor of 2.25.
func ShellSort(data []int) {
	gaps := []int{1, 4, 10, 23, 57, 132, 301, 701}
	for g := gaps[len(gaps)-1]; g < len(data)/2; {
		g = g * 9 / 4
		gaps = append(gaps, g)
	}
	for k := len(gaps) - 1; k >= 0; k-- {
		gap := gaps[k]
		for i := gap; i < len(data); i++ {
			v := data[i]
			j := i
			for j >= gap && data[j-gap] > v {
				data[j] = data[j-gap]
				j -= gap
			}
			data[j] = v
		}
	}
}

// StdSort is the standard library's pattern-defeating quicksort, kept as a
// baseline.
func StdSort(data []int) { slices.Sort(data) }

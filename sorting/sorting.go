// Package sorting holds the in-process reference algorithms measured by the
// benchmark. Every algorithm may reorder its input in place and returns the
// sorted slice, which is not guaranteed to share the input's backing array.
package sorting

import (
	"fmt"
	"strings"
)

// Class is the theoretical complexity family an algorithm belongs to. The
// experiment driver uses it for the feasibility filter.
type Class int

const (
	Unclassified Class = iota
	Quadratic
	Linearithmic
	Linear
)

func (c Class) String() string {
	switch c {
	case Quadratic:
		return "O(n^2)"
	case Linearithmic:
		return "O(n log n)"
	case Linear:
		return "O(n+k)"
	}
	return "unclassified"
}

// Algorithm sorts a sequence of integers in non-decreasing order.
type Algorithm interface {
	Name() string
	Class() Class
	Sort(data []int) []int
}

type funcAlgorithm struct {
	name  string
	class Class
	fn    func([]int) []int
}

func (a funcAlgorithm) Name() string          { return a.name }
func (a funcAlgorithm) Class() Class          { return a.class }
func (a funcAlgorithm) Sort(data []int) []int { return a.fn(data) }
func (a funcAlgorithm) String() string        { return a.name }

// New wraps a sort function as an Algorithm.
func New(name string, class Class, fn func([]int) []int) Algorithm {
	return funcAlgorithm{name: name, class: class, fn: fn}
}

// inPlace adapts an in-place sort to the Algorithm signature.
func inPlace(fn func([]int)) func([]int) []int {
	return func(data []int) []int {
		fn(data)
		return data
	}
}

// Default returns the ordered set of algorithms measured by a standard run.
// Quadratic algorithms come first, matching the reporting order.
func Default() []Algorithm {
	return []Algorithm{
		New("Bubble Sort", Quadratic, inPlace(BubbleSort)),
		New("Selection Sort", Quadratic, inPlace(SelectionSort)),
		New("Insertion Sort", Quadratic, inPlace(InsertionSort)),
		New("Merge Sort", Linearithmic, MergeSort),
		New("Quick Sort", Linearithmic, inPlace(QuickSortMedianOfThree)),
		New("Heap Sort", Linearithmic, inPlace(HeapSort)),
		New("Shell Sort", Linearithmic, inPlace(ShellSort)),
		New("Std Sort", Linearithmic, inPlace(StdSort)),
		New("Counting Sort", Linear, CountingSort),
		New("Radix Sort", Linear, inPlace(RadixSort)),
	}
}

// QuickSortVariants returns quick sort with each pivot strategy, for pivot
// analysis. The random variant is seeded so runs stay reproducible.
func QuickSortVariants(seed int64) []Algorithm {
	return []Algorithm{
		New("Quick Sort (first)", Linearithmic, inPlace(QuickSortFirst)),
		New("Quick Sort (last)", Linearithmic, inPlace(QuickSortLast)),
		New("Quick Sort (median3)", Linearithmic, inPlace(QuickSortMedianOfThree)),
		New("Quick Sort (random)", Linearithmic, inPlace(NewRandomPivotQuickSort(seed).Sort)),
	}
}

// Names returns the algorithm names in order.
func Names(algs []Algorithm) []string {
	names := make([]string, len(algs))
	for i, a := range algs {
		names[i] = a.Name()
	}
	return names
}

// Select picks algorithms from set by name, in the order requested. Matching
// ignores case and an optional " Sort" suffix, so "merge" selects "Merge Sort".
func Select(set []Algorithm, names []string) ([]Algorithm, error) {
	if len(names) == 0 {
		return set, nil
	}
	index := make(map[string]Algorithm, len(set))
	for _, a := range set {
		index[normalizeName(a.Name())] = a
	}

	selected := make([]Algorithm, 0, len(names))
	for _, n := range names {
		a, ok := index[normalizeName(n)]
		if !ok {
			return nil, fmt.Errorf("unknown algorithm %q (available: %s)", n, strings.Join(Names(set), ", "))
		}
		selected = append(selected, a)
	}
	return selected, nil
}

func normalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimSuffix(n, " sort")
	n = strings.TrimSuffix(n, "sort")
	return strings.TrimSpace(n)
}

// IsSorted reports whether data is non-decreasing.
func IsSorted(data []int) bool {
	for i := 1; i < len(data); i++ {
		if data[i] < data[i-1] {
			return false
		}
	}
	return true
}

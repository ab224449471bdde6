package sorting

import "slices"

// CountingSort returns a new sorted slice. Memory is proportional to the
// value range, so it suits the bounded inputs the generator produces.
func CountingSort(data []int) []int {
	if len(data) <= 1 {
		return slices.Clone(data)
	}
	lo, hi := slices.Min(data), slices.Max(data)
	counts := make([]int, hi-lo+1)
	for _, v := range data {
		counts[v-lo]++
	}
	out := make([]int, 0, len(data))
	for i, c := range counts {
		for ; c > 0; c-- {
			out = append(out, i+lo)
		}
	}
	return out
}

// RadixSort performs an in-place LSD radix sort, one byte per pass. Values
// are offset by the minimum so negative inputs sort correctly, and passes
// stop once the remaining high bytes of the range are zero.
func RadixSort(data []int) {
	n := len(data)
	if n <= 1 {
		return
	}

	// For very small slices, insertion sort is faster
	if n <= 64 {
		InsertionSort(data)
		return
	}

	lo, hi := slices.Min(data), slices.Max(data)
	span := uint64(hi - lo)

	keys := make([]uint64, n)
	for i, v := range data {
		keys[i] = uint64(v - lo)
	}
	scratch := make([]uint64, n)

	src, dst := keys, scratch
	for shift := uint(0); shift < 64 && span>>shift > 0; shift += 8 {
		radixPass(src, dst, shift)
		src, dst = dst, src
	}

	for i, k := range src {
		data[i] = int(k) + lo
	}
}

// radixPass performs one pass of counting sort on the byte at shift.
func radixPass(src, dst []uint64, shift uint) {
	var counts [256]int
	for _, v := range src {
		counts[(v>>shift)&0xFF]++
	}

	// Convert counts to starting positions
	total := 0
	for i := range counts {
		count := counts[i]
		counts[i] = total
		total += count
	}

	for _, v := range src {
		b := (v >> shift) & 0xFF
		dst[counts[b]] = v
		counts[b]++
	}
}

// Package pools recycles the large buffers allocated on every trial
// repetition, so garbage from one repetition is not collected while the next
// one is being timed.
package pools

import "sync"

// maxPooledCap bounds the buffers kept for reuse (8M ints).
const maxPooledCap = 1 << 23

// GlobalPools provides centralized memory pooling
type GlobalPools struct {
	IntSlices sync.Pool
}

// Pools is the global instance of memory pools
var Pools = &GlobalPools{
	IntSlices: sync.Pool{
		New: func() interface{} {
			slice := make([]int, 0, 1024)
			return &slice
		},
	},
}

// GetIntSlice returns a slice of length n from the pool. Its contents are
// unspecified; callers overwrite it.
func (gp *GlobalPools) GetIntSlice(n int) []int {
	slicePtr := gp.IntSlices.Get().(*[]int)
	if cap(*slicePtr) < n {
		*slicePtr = make([]int, n)
	}
	return (*slicePtr)[:n]
}

// ReturnIntSlice returns a slice to the pool. The caller must not use it
// afterwards.
func (gp *GlobalPools) ReturnIntSlice(slice []int) {
	if cap(slice) > maxPooledCap {
		return
	}
	emptySlice := slice[:0]
	gp.IntSlices.Put(&emptySlice)
}

// CopyInts returns a pooled copy of data.
func (gp *GlobalPools) CopyInts(data []int) []int {
	out := gp.GetIntSlice(len(data))
	copy(out, data)
	return out
}

// Reset clears all pools (useful for testing)
func (gp *GlobalPools) Reset() {
	gp.IntSlices = sync.Pool{New: gp.IntSlices.New}
}

package alloc

import (
	"fmt"
	"io"
)

// Stats holds allocator counters. Init resets them.
type Stats struct {
	AllocCalls     int   // Total Alloc() calls
	AllocFromList  int   // Allocations satisfied from the free list
	AllocFromBreak int   // Allocations that grew the break
	ZeroRequests   int   // Alloc(0) rejections
	NoSpace        int   // Out-of-memory failures
	Splits         int   // Free blocks split during allocation
	WholeBlocks    int   // Free blocks handed out whole (slack kept)
	GrowBytes      int64 // Bytes added to the break by Alloc
	BytesAllocated int64 // Footprint bytes handed out
	FreeCalls      int   // Total Free() calls
	NilFrees       int   // Free(NilRef)
	DoubleFrees    int   // Free of an already-free block
	StaleFrees     int   // Free of a reference past the break
	BadFrees       int   // Free rejected with ErrBadRef
	BytesFreed     int64 // Footprint bytes returned
	Merges         int   // Coalescing merges
	Shrinks        int   // Break retractions
	ShrunkBytes    int64 // Bytes removed from the break by shrink
}

// Stats returns a copy of the current counters.
func (al *Allocator) Stats() Stats {
	return al.stats
}

// Usage summarizes the block layout at a point in time.
type Usage struct {
	Capacity       int
	Break          int
	Blocks         int
	AllocatedBytes int // payload bytes of allocated blocks
	FreeBlocks     int
	FreeBytes      int // payload bytes of free blocks
	LargestFree    int
}

// Usage walks the arena and reports its layout.
func (al *Allocator) Usage() Usage {
	u := Usage{Capacity: al.Cap(), Break: al.Break()}
	for b := range al.Blocks() {
		u.Blocks++
		if b.Allocated {
			u.AllocatedBytes += b.Size
			continue
		}
		u.FreeBlocks++
		u.FreeBytes += b.Size
		u.LargestFree = max(u.LargestFree, b.Size)
	}
	return u
}

// PrintStats writes a human-readable counter report to w.
func (al *Allocator) PrintStats(w io.Writer) {
	s := al.stats
	u := al.Usage()
	fmt.Fprintf(w, "=== Heap Statistics ===\n")
	fmt.Fprintf(w, "Capacity: %d bytes, break: %d bytes (%d free past break)\n",
		u.Capacity, u.Break, u.Capacity-u.Break)
	fmt.Fprintf(w, "Blocks: %d (%d free, %d payload bytes free, largest %d)\n",
		u.Blocks, u.FreeBlocks, u.FreeBytes, u.LargestFree)
	fmt.Fprintf(w, "Alloc: %d calls, %d from list, %d from break, %d zero, %d out of memory\n",
		s.AllocCalls, s.AllocFromList, s.AllocFromBreak, s.ZeroRequests, s.NoSpace)
	fmt.Fprintf(w, "  splits: %d, whole blocks: %d\n", s.Splits, s.WholeBlocks)
	fmt.Fprintf(w, "Free: %d calls, %d nil, %d double, %d stale, %d rejected\n",
		s.FreeCalls, s.NilFrees, s.DoubleFrees, s.StaleFrees, s.BadFrees)
	fmt.Fprintf(w, "  merges: %d, shrinks: %d (%d bytes)\n", s.Merges, s.Shrinks, s.ShrunkBytes)
}

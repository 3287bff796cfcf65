package alloc

import "github.com/joshuapare/heapkit/internal/format"

// Ref is the arena offset of a block payload. It is what Alloc hands out and
// what Free takes back.
type Ref uint32

// NilRef is the "nothing" reference. No payload starts at offset 0 because a
// header always precedes it.
const NilRef Ref = 0

// headerOff returns the header offset for a payload reference.
func (r Ref) headerOff() int { return int(r) - format.HeaderSize }

// refOf returns the payload reference for a header offset.
func refOf(off int) Ref { return Ref(off + format.HeaderSize) }

// Heap is the allocation surface shared by Allocator and Locked.
type Heap interface {
	// Alloc returns a block with at least n usable bytes and its payload.
	Alloc(n uint32) (Ref, []byte, error)

	// Free releases a block. NilRef and already-free blocks are no-ops.
	Free(ref Ref) error
}

// BlockInfo describes one block as seen by the walkers.
type BlockInfo struct {
	Offset    int  // header offset
	Ref       Ref  // payload reference
	Size      int  // usable payload bytes
	Allocated bool // false for blocks on the free list
	Prev      int  // previous free block, format.NoBlock when none
	Next      int  // next free block, format.NoBlock when none
}

// Footprint returns header plus payload bytes.
func (b BlockInfo) Footprint() int { return format.Footprint(b.Size) }

// End returns the offset just past the block.
func (b BlockInfo) End() int { return b.Offset + b.Footprint() }

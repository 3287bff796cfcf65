package alloc

import (
	"iter"

	"github.com/joshuapare/heapkit/internal/format"
)

// Blocks walks every block in address order from offset 0 to the break.
// The walk stops early at the first header that does not decode; use
// heap/verify to find out why.
func (al *Allocator) Blocks() iter.Seq[BlockInfo] {
	return func(yield func(BlockInfo) bool) {
		if al.closed {
			return
		}
		used := al.a.Used()
		for off := 0; off < len(used); {
			h, err := format.ReadHeader(used, off)
			if err != nil || h.Size <= 0 {
				return
			}
			if !yield(infoOf(off, h)) {
				return
			}
			off = h.End(off)
		}
	}
}

// FreeList walks the free list in list order from the head. The walk is
// bounded by the number of headers that fit below the break, so a corrupted
// cycle cannot hang it.
func (al *Allocator) FreeList() iter.Seq[BlockInfo] {
	return func(yield func(BlockInfo) bool) {
		if al.closed {
			return
		}
		used := al.a.Used()
		limit := len(used)/format.HeaderSize + 1
		for cur := al.head; cur != format.NoBlock && limit > 0; limit-- {
			h, err := format.ReadHeader(used, cur)
			if err != nil {
				return
			}
			if !yield(infoOf(cur, h)) {
				return
			}
			cur = h.Next
		}
	}
}

// FreeLen returns the number of blocks on the free list.
func (al *Allocator) FreeLen() int {
	n := 0
	for range al.FreeList() {
		n++
	}
	return n
}

// Block returns the block behind a live reference.
func (al *Allocator) Block(ref Ref) (BlockInfo, bool) {
	if al.closed {
		return BlockInfo{}, false
	}
	off, live, err := al.headerOf(ref)
	if err != nil || !live {
		return BlockInfo{}, false
	}
	h, err := format.ReadHeader(al.a.Used(), off)
	if err != nil {
		return BlockInfo{}, false
	}
	return infoOf(off, h), true
}

func infoOf(off int, h format.Header) BlockInfo {
	return BlockInfo{
		Offset:    off,
		Ref:       refOf(off),
		Size:      h.Size,
		Allocated: h.Allocated,
		Prev:      h.Prev,
		Next:      h.Next,
	}
}

package alloc

import "github.com/joshuapare/heapkit/internal/format"

// push inserts the block at off at the head of the free list.
func (al *Allocator) push(off int) {
	data := al.a.Bytes()
	format.SetPrevFree(data, off, format.NoBlock)
	format.SetNextFree(data, off, al.head)
	if al.head != format.NoBlock {
		format.SetPrevFree(data, al.head, off)
		al.markDirty(al.head, format.HeaderSize)
	}
	al.head = off
	al.markDirty(off, format.HeaderSize)
}

// unlink removes the block at off from the free list. Its own links are left
// for the caller to clear.
func (al *Allocator) unlink(off int) {
	data := al.a.Bytes()
	prev := format.PrevFree(data, off)
	next := format.NextFree(data, off)

	if prev != format.NoBlock {
		format.SetNextFree(data, prev, next)
		al.markDirty(prev, format.HeaderSize)
	}
	if next != format.NoBlock {
		format.SetPrevFree(data, next, prev)
		al.markDirty(next, format.HeaderSize)
	}
	if al.head == off {
		al.head = next
	}
}

// split carves need bytes off the front of the free block at off. The tail
// becomes a new free block that takes the original block's place in the
// list, so list order is preserved.
//
//	before: [hdr | size                         ]
//	after:  [hdr | need ][hdr | size-need-header]
func (al *Allocator) split(off, need int) {
	data := al.a.Bytes()
	size := format.BlockSize(data, off)
	prev := format.PrevFree(data, off)
	next := format.NextFree(data, off)

	tail := off + format.HeaderSize + need
	format.WriteHeader(data, tail, format.Header{
		Size: size - need - format.HeaderSize,
		Prev: prev,
		Next: next,
	})
	al.markDirty(tail, format.HeaderSize)

	if prev != format.NoBlock {
		format.SetNextFree(data, prev, tail)
		al.markDirty(prev, format.HeaderSize)
	}
	if next != format.NoBlock {
		format.SetPrevFree(data, next, tail)
		al.markDirty(next, format.HeaderSize)
	}
	if al.head == off {
		al.head = tail
	}

	format.SetBlockSize(data, off, need)
	al.stats.Splits++
}

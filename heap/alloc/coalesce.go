package alloc

import "github.com/joshuapare/heapkit/internal/format"

// Coalesce walks the free list from the head and merges every block with its
// list successor when the successor starts exactly where the block ends. After
// a merge the same block is re-tested, so contiguous runs collapse in one pass.
//
// Only list neighbours are compared. Two free blocks that touch in the arena
// but are not adjacent in list order stay separate. Returns the number of
// merges performed; a second call with no intervening Free returns 0.
func (al *Allocator) Coalesce() int {
	if al.closed {
		return 0
	}
	data := al.a.Bytes()
	merges := 0

	cur := al.head
	for cur != format.NoBlock {
		next := format.NextFree(data, cur)
		if next == format.NoBlock {
			break
		}

		size := format.BlockSize(data, cur)
		if next != cur+format.HeaderSize+size {
			cur = next
			continue
		}

		format.SetBlockSize(data, cur, size+format.HeaderSize+format.BlockSize(data, next))
		after := format.NextFree(data, next)
		format.SetNextFree(data, cur, after)
		if after != format.NoBlock {
			format.SetPrevFree(data, after, cur)
			al.markDirty(after, format.HeaderSize)
		}
		al.markDirty(cur, format.HeaderSize)
		merges++
	}

	if merges > 0 {
		al.stats.Merges += merges
		al.log.Debug("alloc: coalesced", "merges", merges, "head", al.head)
	}
	return merges
}

// shrink retracts the break over the head block when it is the topmost block,
// its footprint reaches the shrink threshold, and the break stays at or above
// the floor. Only the head is inspected.
func (al *Allocator) shrink() bool {
	if al.head == format.NoBlock {
		return false
	}
	data := al.a.Bytes()
	head := al.head
	footprint := format.Footprint(format.BlockSize(data, head))
	brk := al.a.Break()

	if head+footprint != brk {
		return false
	}
	if footprint < al.cfg.ShrinkThreshold || brk-footprint < al.cfg.minBreak() {
		return false
	}

	next := format.NextFree(data, head)
	if next != format.NoBlock {
		format.SetPrevFree(data, next, format.NoBlock)
		al.markDirty(next, format.HeaderSize)
	}
	al.head = next

	if err := al.a.Retract(footprint); err != nil {
		// Unreachable: head+footprint == brk guarantees footprint <= brk.
		panic(err)
	}
	al.stats.Shrinks++
	al.stats.ShrunkBytes += int64(footprint)
	al.log.Debug("alloc: shrank break", "by", footprint, "break", al.a.Break())
	return true
}

package alloc

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/internal/format"
)

// Allocator is a first-fit allocator over a single arena.
// - The free list is intrusive: links live in the block headers, as arena offsets
// - Freed and split-off blocks go to the head (LIFO), never address- or size-ordered
// - Every Free coalesces list neighbours, then tries to retract the break
type Allocator struct {
	a   *arena.Arena
	dt  dirty.DirtyTracker // may be nil
	cfg Config
	log *slog.Logger

	// head is the first free block, format.NoBlock when the list is empty.
	head int

	// peak is the highest break since Init. No block was ever carved above it.
	peak int

	stats  Stats
	closed bool
}

// New creates an allocator over a and runs Init.
//
// Parameters:
//   - a: The arena to carve blocks from; the allocator owns it from now on
//   - dt: Dirty tracker notified of every header write (can be nil)
//   - cfg: Sizing policy (use nil for DefaultConfig)
func New(a *arena.Arena, dt dirty.DirtyTracker, cfg *Config) (*Allocator, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil arena", ErrBadConfig)
	}
	if cfg == nil {
		cfg = &DefaultConfig
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	al := &Allocator{
		a:    a,
		dt:   dt,
		cfg:  *cfg,
		log:  cfg.logger(),
		head: format.NoBlock,
	}
	if err := al.Init(); err != nil {
		return nil, err
	}
	return al, nil
}

// Init resets the arena and seeds the free list with one block covering
// Align8(HeaderSize + InitMargin) bytes. Calling it on a live allocator
// discards every block; outstanding references become invalid.
func (al *Allocator) Init() error {
	if al.closed {
		return ErrClosed
	}
	if err := al.a.Reset(); err != nil {
		return fmt.Errorf("alloc: init: %w", err)
	}
	al.head = format.NoBlock

	reserved := al.cfg.seedSize()
	off, err := al.a.Grow(reserved)
	if err != nil {
		return fmt.Errorf("alloc: init: seed block of %d bytes: %w", reserved, err)
	}

	data := al.a.Bytes()
	format.WriteHeader(data, off, format.Header{
		Size: reserved - format.HeaderSize,
		Prev: format.NoBlock,
		Next: format.NoBlock,
	})
	// Reset zeroed the whole seed region, not just the header.
	al.markDirty(off, reserved)
	al.head = off
	al.peak = al.a.Break()
	al.stats = Stats{}

	al.log.Info("heap initialized",
		"capacity", al.a.Cap(),
		"granules", al.a.Cap()/format.MinBlockSize,
		"header_size", format.HeaderSize,
		"break", al.a.Break(),
		"initial_free", reserved-format.HeaderSize,
		"head", al.head,
	)
	return nil
}

// Alloc returns a block with at least n usable bytes using first-fit over
// the free list, growing the break when nothing fits.
//
// The payload slice aliases the arena and is exactly as long as the block,
// which may exceed n when the request was rounded or the slack was too small
// to split off. Its capacity is clipped so append cannot spill into the next
// block.
func (al *Allocator) Alloc(n uint32) (Ref, []byte, error) {
	if al.closed {
		return NilRef, nil, ErrClosed
	}
	al.stats.AllocCalls++

	if n == 0 {
		al.stats.ZeroRequests++
		return NilRef, nil, ErrZeroSize
	}
	aligned, ok := format.Align8U32(n)
	if !ok || int64(aligned) > int64(al.a.Cap()) {
		al.stats.NoSpace++
		return NilRef, nil, fmt.Errorf("%w: request of %d bytes exceeds capacity %d", ErrNoSpace, n, al.a.Cap())
	}
	need := int(aligned)

	if off, found := al.takeFirstFit(need); found {
		al.stats.AllocFromList++
		return al.handOut(off)
	}

	// Nothing on the list fits: carve a new block at the break.
	total := format.Align8(format.HeaderSize + need)
	if total > al.a.Remaining() {
		al.stats.NoSpace++
		al.log.Debug("alloc: out of memory",
			"need", need, "footprint", total, "break", al.a.Break(), "capacity", al.a.Cap())
		return NilRef, nil, fmt.Errorf("%w: need %d bytes at break %d, capacity %d",
			ErrNoSpace, total, al.a.Break(), al.a.Cap())
	}
	off, err := al.a.Grow(total)
	if err != nil {
		al.stats.NoSpace++
		return NilRef, nil, fmt.Errorf("%w: %w", ErrNoSpace, err)
	}

	format.WriteHeader(al.a.Bytes(), off, format.Header{
		Allocated: true,
		Size:      need,
		Prev:      format.NoBlock,
		Next:      format.NoBlock,
	})
	al.peak = max(al.peak, al.a.Break())
	al.stats.AllocFromBreak++
	al.stats.GrowBytes += int64(total)
	al.log.Debug("alloc: grew break", "off", off, "size", need, "break", al.a.Break())

	return al.handOut(off)
}

// takeFirstFit claims the first listed block with size >= need, splitting it
// when the slack can host another block.
func (al *Allocator) takeFirstFit(need int) (int, bool) {
	data := al.a.Bytes()
	for cur := al.head; cur != format.NoBlock; cur = format.NextFree(data, cur) {
		size := format.BlockSize(data, cur)
		if size < need {
			continue
		}

		if size-need >= format.MinSplitRemainder {
			al.split(cur, need)
		} else {
			// Slack too small for a header plus minimum payload: it stays with
			// the allocation as internal fragmentation.
			al.unlink(cur)
			al.stats.WholeBlocks++
		}

		format.SetAllocated(data, cur, true)
		format.SetPrevFree(data, cur, format.NoBlock)
		format.SetNextFree(data, cur, format.NoBlock)
		al.markDirty(cur, format.HeaderSize)
		return cur, true
	}
	return 0, false
}

// handOut returns the reference and payload for the allocated block at off.
func (al *Allocator) handOut(off int) (Ref, []byte, error) {
	data := al.a.Bytes()
	start := off + format.HeaderSize
	end := start + format.BlockSize(data, off)

	// The caller is about to write the payload.
	al.markDirty(off, end-off)
	al.stats.BytesAllocated += int64(end - off)

	return refOf(off), data[start:end:end], nil
}

// Free releases the block behind ref, then coalesces and shrinks.
//
// NilRef is a no-op, as is freeing a block that is already free. A reference
// that lies in the retracted region between the break and the highest break
// since Init (its block was freed and shrunk away) is also absorbed silently.
// References that could never have come from Alloc (misaligned, inside the
// first header, above that high-water mark, or not naming a block header)
// return ErrBadRef and change nothing. So does a reference to a block that
// was merged into a neighbour whose payload has since overwritten the old
// header.
func (al *Allocator) Free(ref Ref) error {
	if al.closed {
		return ErrClosed
	}
	al.stats.FreeCalls++

	if ref == NilRef {
		al.stats.NilFrees++
		return nil
	}

	off, live, err := al.headerOf(ref)
	if err != nil {
		al.stats.BadFrees++
		return err
	}
	if !live {
		al.stats.StaleFrees++
		return nil
	}

	data := al.a.Bytes()
	if !format.IsAllocated(data, off) {
		al.stats.DoubleFrees++
		return nil
	}

	format.SetAllocated(data, off, false)
	al.push(off)
	al.stats.BytesFreed += int64(format.Footprint(format.BlockSize(data, off)))

	al.Coalesce()
	al.shrink()
	return nil
}

// headerOf converts a payload reference to its header offset.
// live is false for well-formed references into the retracted region.
func (al *Allocator) headerOf(ref Ref) (off int, live bool, err error) {
	p := int(ref)
	if p < format.HeaderSize || !format.IsAligned(p) || p > al.a.Cap() {
		return 0, false, fmt.Errorf("%w: %d", ErrBadRef, ref)
	}

	off = ref.headerOff()
	brk := al.a.Break()
	if off >= brk {
		if p+format.MinBlockSize > al.peak {
			return 0, false, fmt.Errorf("%w: %d: above high-water break %d", ErrBadRef, ref, al.peak)
		}
		return off, false, nil
	}

	used := al.a.Used()
	if err := format.CheckHeader(used, off); err != nil {
		return 0, false, fmt.Errorf("%w: %d: %w", ErrBadRef, ref, err)
	}
	size := format.BlockSize(used, off)
	if size <= 0 || !format.IsAligned(size) || off+format.HeaderSize+size > brk {
		return 0, false, fmt.Errorf("%w: %d: header size %d out of range", ErrBadRef, ref, size)
	}
	return off, true, nil
}

// Close destroys the allocator and releases the arena buffer.
func (al *Allocator) Close() error {
	if al.closed {
		return ErrClosed
	}
	al.closed = true
	al.head = format.NoBlock
	al.a.Release()
	return nil
}

// Break returns the arena break offset.
func (al *Allocator) Break() int { return al.a.Break() }

// Cap returns the arena capacity.
func (al *Allocator) Cap() int { return al.a.Cap() }

// Head returns the offset of the first free block, or format.NoBlock.
func (al *Allocator) Head() int { return al.head }

// Bytes returns the carved arena region. It aliases the arena.
func (al *Allocator) Bytes() []byte { return al.a.Used() }

// Snapshot returns a private copy of the carved arena region.
func (al *Allocator) Snapshot() []byte { return al.a.Snapshot() }

func (al *Allocator) markDirty(off, length int) {
	if al.dt != nil {
		al.dt.Add(off, length)
	}
}

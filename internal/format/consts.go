// Package format describes the on-arena layout of heap blocks: the fixed-size
// header that precedes every payload, the arena sizing constants, and the
// little-endian helpers used to read and write header fields in place.
//
// Nothing here keeps state. Higher layers (heap/alloc, heap/verify) decide
// what the fields mean for the free list; this package only knows where the
// bytes live.
package format

const (
	// HeapMaxSize is the default arena capacity in bytes.
	HeapMaxSize = 10000

	// MinBlockSize is the allocation granularity. Every payload size is a
	// positive multiple of it and every block starts on a multiple of it.
	MinBlockSize = 8

	// MinBlockMask is used by Align8 to round sizes up.
	MinBlockMask = MinBlockSize - 1

	// HeaderSize is the number of bytes of metadata preceding every payload,
	// free or allocated.
	HeaderSize = 24

	// InitMargin is the payload reserved for the seed free block by Init
	// before it is rounded up to MinBlockSize.
	InitMargin = 400

	// ShrinkThreshold is the smallest footprint (header + payload) a trailing
	// free block must have before the break is retracted over it.
	ShrinkThreshold = 400

	// ShrinkFloor is the payload margin kept above a bare header when
	// shrinking: the break never drops below HeaderSize + ShrinkFloor.
	ShrinkFloor = 400

	// MinSplitRemainder is the smallest slack that can host a new free block:
	// one header plus the minimum payload.
	MinSplitRemainder = HeaderSize + MinBlockSize
)

// Block header layout (little-endian):
//
//	Offset  Size  Description
//	0x00    4     Flags. Upper 24 bits carry HeaderMagic, bit 0 = allocated.
//	0x04    4     Usable payload size in bytes (excludes the header).
//	0x08    8     Offset of the previous free block, or NoBlock.
//	0x10    8     Offset of the next free block, or NoBlock.
//	0x18    ...   Payload.
const (
	FlagsOffset = 0x00
	SizeOffset  = 0x04
	PrevOffset  = 0x08
	NextOffset  = 0x10

	// HeaderMagic tags every header written by the allocator ("HMM\0").
	HeaderMagic uint32 = 0x484D4D00

	// MagicMask selects the magic bits of the flags word.
	MagicMask uint32 = 0xFFFFFF00

	// FlagAllocated marks a block as handed out to a caller.
	FlagAllocated uint32 = 0x1
)

// NoBlock is the "no relation" value for free-list links and the empty list head.
const NoBlock = -1

// noBlockRaw is how NoBlock is stored in a link field.
const noBlockRaw = ^uint64(0)

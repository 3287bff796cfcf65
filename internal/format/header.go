package format

import "fmt"

// Header is the decoded form of a block header.
type Header struct {
	Allocated bool
	Size      int // usable payload bytes
	Prev      int // previous free block, NoBlock when none
	Next      int // next free block, NoBlock when none
}

// End returns the offset just past the block whose header sits at off.
func (h Header) End(off int) int {
	return off + HeaderSize + h.Size
}

// HasHeader reports whether b[off:off+HeaderSize] is within bounds.
func HasHeader(b []byte, off int) bool {
	return off >= 0 && off <= len(b)-HeaderSize
}

// CheckHeader validates that off is an aligned, in-bounds offset carrying the
// header magic. It does not interpret the remaining fields.
func CheckHeader(b []byte, off int) error {
	if !IsAligned(off) {
		return fmt.Errorf("header at %d: %w", off, ErrMisaligned)
	}
	if !HasHeader(b, off) {
		return fmt.Errorf("header at %d: %w", off, ErrTruncated)
	}
	if ReadU32(b, off+FlagsOffset)&MagicMask != HeaderMagic {
		return fmt.Errorf("header at %d: %w", off, ErrBadMagic)
	}
	return nil
}

// ReadHeader decodes the header at off after validating it with CheckHeader.
func ReadHeader(b []byte, off int) (Header, error) {
	if err := CheckHeader(b, off); err != nil {
		return Header{}, err
	}
	flags := ReadU32(b, off+FlagsOffset)
	return Header{
		Allocated: flags&FlagAllocated != 0,
		Size:      int(ReadU32(b, off+SizeOffset)),
		Prev:      ReadLink(b, off+PrevOffset),
		Next:      ReadLink(b, off+NextOffset),
	}, nil
}

// WriteHeader encodes h at off. The caller guarantees HasHeader(b, off).
func WriteHeader(b []byte, off int, h Header) {
	flags := HeaderMagic
	if h.Allocated {
		flags |= FlagAllocated
	}
	PutU32(b, off+FlagsOffset, flags)
	PutU32(b, off+SizeOffset, uint32(h.Size))
	PutLink(b, off+PrevOffset, h.Prev)
	PutLink(b, off+NextOffset, h.Next)
}

// Single-field accessors used on hot paths once a header has been validated.

// IsAllocated reports the allocation bit of the header at off.
func IsAllocated(b []byte, off int) bool {
	return ReadU32(b, off+FlagsOffset)&FlagAllocated != 0
}

// SetAllocated rewrites the flags word of the header at off.
func SetAllocated(b []byte, off int, allocated bool) {
	flags := HeaderMagic
	if allocated {
		flags |= FlagAllocated
	}
	PutU32(b, off+FlagsOffset, flags)
}

// BlockSize returns the payload size stored in the header at off.
func BlockSize(b []byte, off int) int {
	return int(ReadU32(b, off+SizeOffset))
}

// SetBlockSize stores the payload size in the header at off.
func SetBlockSize(b []byte, off int, size int) {
	PutU32(b, off+SizeOffset, uint32(size))
}

// PrevFree returns the prev link of the header at off.
func PrevFree(b []byte, off int) int { return ReadLink(b, off+PrevOffset) }

// NextFree returns the next link of the header at off.
func NextFree(b []byte, off int) int { return ReadLink(b, off+NextOffset) }

// SetPrevFree stores the prev link of the header at off.
func SetPrevFree(b []byte, off int, link int) { PutLink(b, off+PrevOffset, link) }

// SetNextFree stores the next link of the header at off.
func SetNextFree(b []byte, off int, link int) { PutLink(b, off+NextOffset, link) }

package format

import "encoding/binary"

// Little-endian field access. Callers bound-check the header once (see
// ReadHeader / CheckHeader) and then use these directly.

// PutU32 writes a uint32 value to the buffer at the specified offset in little-endian format.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// PutU64 writes a uint64 value to the buffer at the specified offset in little-endian format.
func PutU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], v)
}

// ReadU32 reads a uint32 value from the buffer at the specified offset in little-endian format.
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

// ReadU64 reads a uint64 value from the buffer at the specified offset in little-endian format.
func ReadU64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}

// PutLink stores a free-list link, mapping NoBlock to the all-ones sentinel.
func PutLink(b []byte, off int, link int) {
	if link < 0 {
		PutU64(b, off, noBlockRaw)
		return
	}
	PutU64(b, off, uint64(link))
}

// ReadLink loads a free-list link written by PutLink.
func ReadLink(b []byte, off int) int {
	raw := ReadU64(b, off)
	if raw == noBlockRaw || raw > uint64(maxInt) {
		return NoBlock
	}
	return int(raw)
}

const maxInt = int(^uint(0) >> 1)

package format

// Align8 returns n aligned up to the next MinBlockSize boundary.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
//	Align8(424) = 424
func Align8(n int) int {
	return (n + MinBlockMask) &^ MinBlockMask
}

// Align8U32 is the uint32 version of Align8 used for caller-supplied request
// sizes. It reports ok = false when rounding would wrap around.
func Align8U32(n uint32) (uint32, bool) {
	r := (n + MinBlockMask) &^ MinBlockMask
	if r < n {
		return 0, false
	}
	return r, true
}

// IsAligned reports whether off sits on a MinBlockSize boundary.
func IsAligned(off int) bool {
	return off&MinBlockMask == 0
}

// Footprint returns the bytes a block with the given payload size occupies
// in the arena, header included.
func Footprint(size int) int {
	return HeaderSize + size
}

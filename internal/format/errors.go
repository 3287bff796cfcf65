package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a header.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrBadMagic indicates the bytes at an offset do not carry a block header.
	ErrBadMagic = errors.New("format: header magic mismatch")
	// ErrMisaligned indicates an offset that is not on a MinBlockSize boundary.
	ErrMisaligned = errors.New("format: misaligned offset")
)

//go:build linux || freebsd

package dirty

import (
	"os"

	"golang.org/x/sys/unix"
)

// syncFile flushes file data without forcing a metadata update.
func syncFile(f *os.File) error {
	return unix.Fdatasync(int(f.Fd()))
}

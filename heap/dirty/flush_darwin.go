//go:build darwin

package dirty

import (
	"os"

	"golang.org/x/sys/unix"
)

// syncFile uses F_FULLFSYNC so the image reaches the physical disk, not just
// the drive cache. macOS has no fdatasync.
func syncFile(f *os.File) error {
	_, err := unix.FcntlInt(f.Fd(), unix.F_FULLFSYNC, 0)
	return err
}

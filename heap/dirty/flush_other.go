//go:build !linux && !freebsd && !darwin

package dirty

import "os"

func syncFile(f *os.File) error {
	return f.Sync()
}

//go:build windows

package dbcore

import (
	"os"

	"golang.org/x/sys/windows"
)

// lockFile takes an exclusive advisory lock on f's whole extent via
// LockFileEx, mirroring the teacher's io_windows.go counterpart to UnixIO's
// unix.Flock.
func lockFile(f *os.File) error {
	ol := new(windows.Overlapped)
	return windows.LockFileEx(windows.Handle(f.Fd()), windows.LOCKFILE_EXCLUSIVE_LOCK, 0, ^uint32(0), ^uint32(0), ol)
}

// unlockFile releases the lock taken by lockFile.
func unlockFile(f *os.File) error {
	ol := new(windows.Overlapped)
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, ^uint32(0), ^uint32(0), ol)
}

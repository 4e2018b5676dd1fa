//go:build !windows

package dbcore

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes an exclusive advisory lock on f's underlying descriptor,
// the same unix.Flock call the teacher's UnixIO uses when Config.WriteLock
// is set (dbase/io_unix.go).
func lockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX)
}

// unlockFile releases the lock taken by lockFile.
func unlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}

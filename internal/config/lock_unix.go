//go:build unix

package config

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFileHandle takes a blocking exclusive lock on the file.
func lockFileHandle(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX)
}

// unlockFileHandle releases the exclusive lock.
func unlockFileHandle(f *os.File) {
	unix.Flock(int(f.Fd()), unix.LOCK_UN)
}

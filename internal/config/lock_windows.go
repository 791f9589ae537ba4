//go:build windows

package config

import (
	"os"

	"golang.org/x/sys/windows"
)

// lockFileHandle takes a blocking exclusive lock on the file.
func lockFileHandle(f *os.File) error {
	ol := new(windows.Overlapped)
	return windows.LockFileEx(
		windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK,
		0,
		1,
		0,
		ol,
	)
}

// unlockFileHandle releases the exclusive lock.
func unlockFileHandle(f *os.File) {
	ol := new(windows.Overlapped)
	windows.UnlockFileEx(
		windows.Handle(f.Fd()),
		0,
		1,
		0,
		ol,
	)
}

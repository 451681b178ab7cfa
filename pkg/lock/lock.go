// SPDX-License-Identifier: BSD-3-Clause

package lock

import (
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

// Lock is a held single-instance lock backed by an exclusive flock on
// a PID file.
type Lock struct {
	file       *os.File
	path       string
	instanceID string
}

// Acquire opens (creating if necessary) the PID file at path and takes
// a non-blocking exclusive lock on it. On success the file is
// truncated and the calling process's PID and a freshly generated
// instance ID are written into it, one per line - the instance ID has
// no role in the locking itself, it just gives a bug report a way to
// tell two runs against the same lock file apart when the PID alone
// has been reused by the OS. If another process already holds the
// lock, Acquire returns ErrAlreadyLocked.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if err == unix.EWOULDBLOCK {
			return nil, ErrAlreadyLocked
		}
		return nil, fmt.Errorf("flock %s: %w", path, err)
	}

	instanceID := uuid.NewString()
	if err := f.Truncate(0); err != nil {
		f.Close()
		return nil, fmt.Errorf("truncate lock file %s: %w", path, err)
	}
	if _, err := f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"+instanceID+"\n"), 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("write pid to lock file %s: %w", path, err)
	}

	return &Lock{file: f, path: path, instanceID: instanceID}, nil
}

// InstanceID returns the random ID generated for this held lock,
// useful for tagging diagnostics so a bug report can be correlated
// back to a specific daemon run.
func (l *Lock) InstanceID() string {
	return l.instanceID
}

// Release unlocks and closes the PID file. It does not remove the
// file, so the next Acquire can reuse it.
func (l *Lock) Release() error {
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		l.file.Close()
		return fmt.Errorf("unlock %s: %w", l.path, err)
	}
	return l.file.Close()
}

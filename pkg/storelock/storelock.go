// Package storelock serializes writes to the shared store across processes.
//
// Locks are advisory exclusive file locks on <store>/.locks/<key>.lock. Two
// project builds running against the same store block each other only while
// they touch the same key.
package storelock

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/sharedpkg/pkg/errors"
	"github.com/arthur-debert/sharedpkg/pkg/logging"
	"github.com/arthur-debert/sharedpkg/pkg/paths"
)

// Lock is a held store lock.
type Lock struct {
	file *os.File
	path string
}

// Acquire blocks until the exclusive lock for key inside dir is held.
func Acquire(dir, key string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create lock directory %s", dir).
			WithDetail("path", dir)
	}

	path := filepath.Join(dir, paths.SanitizeKey(key)+".lock")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLock, "failed to open lock file %s", path).
			WithDetail("path", path)
	}

	if err := lockFile(file); err != nil {
		_ = file.Close()
		return nil, errors.Wrapf(err, errors.ErrLock, "failed to lock %s", path).
			WithDetail("path", path)
	}

	logger := logging.GetLogger("storelock")
	logger.Trace().Str("key", key).Msg("Lock acquired")
	return &Lock{file: file, path: path}, nil
}

// Release unlocks and closes the lock file. Releasing twice is a no-op.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	unlockErr := unlockFile(l.file)
	closeErr := l.file.Close()
	l.file = nil
	if unlockErr != nil {
		return errors.Wrapf(unlockErr, errors.ErrLock, "failed to unlock %s", l.path)
	}
	if closeErr != nil {
		return errors.Wrapf(closeErr, errors.ErrLock, "failed to close %s", l.path)
	}
	return nil
}

// With runs fn while holding the lock for key. The lock is released on every
// return path, including a panic in fn.
func With(dir, key string, fn func() error) (err error) {
	lock, err := Acquire(dir, key)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil && err == nil {
			err = releaseErr
		}
	}()
	return fn()
}

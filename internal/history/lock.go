package history

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"

	"fileconv/internal/config"
)

// ErrLocked is returned when another process holds the conversion lock.
var ErrLocked = errors.New("another conversion is already running")

// ConversionLock is an advisory cross-process lock on the state directory.
type ConversionLock struct {
	path string
	lock *flock.Flock
}

// NewConversionLock prepares the lock file under the state directory.
func NewConversionLock(cfg *config.Config) (*ConversionLock, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	path := cfg.LockPath()
	return &ConversionLock{path: path, lock: flock.New(path)}, nil
}

// Path returns the lock file location.
func (l *ConversionLock) Path() string {
	return l.path
}

// Acquire takes the lock without blocking.
func (l *ConversionLock) Acquire() error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (lock held at %s)", ErrLocked, l.path)
	}
	return nil
}

// Release drops the lock. Releasing an unheld lock is a no-op.
func (l *ConversionLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}

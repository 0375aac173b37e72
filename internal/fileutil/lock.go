package fileutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"m4bind/internal/services"
)

// TargetLock is an advisory lock on an output path held by this process.
type TargetLock struct {
	path string
	lock *flock.Flock
}

// LockPath returns the lock file used to guard target.
func LockPath(target string) string {
	return filepath.Join(filepath.Dir(target), "."+filepath.Base(target)+".m4bind.lock")
}

// LockTarget acquires the advisory lock for target without blocking. A
// target already locked by another process fails with
// services.ErrPrecondition.
func LockTarget(target string) (*TargetLock, error) {
	path := LockPath(target)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrPrecondition, "output", "lock", fmt.Sprintf("%s is being written by another process", target), nil)
	}
	return &TargetLock{path: path, lock: lock}, nil
}

// Path returns the lock file path.
func (l *TargetLock) Path() string { return l.path }

// Unlock releases the lock and removes the lock file.
func (l *TargetLock) Unlock() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return err
	}
	_ = os.Remove(l.path)
	return nil
}

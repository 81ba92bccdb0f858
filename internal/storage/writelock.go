// Package storage hosts the storage-driver-agnostic pieces shared
// across the index: the single-writer lock and the cross-process
// advisory lock that backs it.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"golang.org/x/sync/semaphore"
)

// WriteLock serializes the combined {DB transaction + Markdown I/O}
// critical section: repository writes are serialized by holding a
// write lock (a single mutex). It is backed by a weighted
// semaphore of size 1 so the same Acquire/Release API composes with
// context cancellation ("requests are cancellable only between
// operations").
type WriteLock struct {
	sem *semaphore.Weighted
	flk *flock.Flock
}

// NewWriteLock creates the in-process semaphore and, if dataRoot is
// non-empty, an OS-level advisory lock file under it so two shirokuma
// processes never open the same data root concurrently: the
// process-local mutex backed by a cross-process guard.
func NewWriteLock(dataRoot string) (*WriteLock, error) {
	wl := &WriteLock{sem: semaphore.NewWeighted(1)}
	if dataRoot == "" {
		return wl, nil
	}
	lockDir := filepath.Join(dataRoot, ".system")
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: creating lock dir: %w", err)
	}
	lockPath := filepath.Join(lockDir, "LOCK")
	flk := flock.New(lockPath)
	locked, err := flk.TryLock()
	if err != nil {
		return nil, fmt.Errorf("storage: acquiring process lock %s: %w", lockPath, err)
	}
	if !locked {
		return nil, fmt.Errorf("storage: data root %s is already open in another process", dataRoot)
	}
	wl.flk = flk
	return wl, nil
}

// Acquire blocks until the write lock is free or ctx is done.
func (wl *WriteLock) Acquire(ctx context.Context) error {
	return wl.sem.Acquire(ctx, 1)
}

// Release frees the write lock.
func (wl *WriteLock) Release() {
	wl.sem.Release(1)
}

// Close releases the cross-process advisory lock, if held. Call once
// at process shutdown, not per-operation.
func (wl *WriteLock) Close() error {
	if wl.flk == nil {
		return nil
	}
	return wl.flk.Unlock()
}

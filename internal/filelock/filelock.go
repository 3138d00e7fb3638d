// Package filelock writes export files atomically under an advisory lock so
// concurrent exports of the same path never interleave.
package filelock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when the lock is still held when the context expires
var ErrLocked = errors.New("file is locked by another writer")

// retryDelay is the poll interval while waiting on a held lock
const retryDelay = 25 * time.Millisecond

// LockPath returns the lock file guarding path
func LockPath(path string) string {
	return path + ".lock"
}

// Acquire takes the exclusive lock guarding path, polling until ctx is done.
// The returned function releases it.
func Acquire(ctx context.Context, path string) (func() error, error) {
	lock := flock.New(LockPath(path))

	locked, err := lock.TryLockContext(ctx, retryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", path, ErrLocked)
		}
		return nil, fmt.Errorf("failed to acquire lock on %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}

	return func() error {
		if err := lock.Unlock(); err != nil {
			return fmt.Errorf("failed to release lock on %s: %w", path, err)
		}
		return nil
	}, nil
}

// WriteFile streams content into path atomically while holding its lock.
// Readers see either the old file or the complete new one; on any error the
// original file is left untouched.
func WriteFile(ctx context.Context, path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	release, err := Acquire(ctx, path)
	if err != nil {
		return err
	}
	defer release()

	return atomicWrite(path, write)
}

// AtomicWrite writes data to path with WriteFile and no deadline on the lock
func AtomicWrite(path string, data []byte) error {
	return WriteFile(context.Background(), path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// atomicWrite writes to a temp file in the target directory and renames it over path
func atomicWrite(path string, write func(w io.Writer) error) error {
	tempFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if err := write(tempFile); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	tempFile = nil
	return nil
}

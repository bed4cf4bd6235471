package artifact

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another encoder holds the artifact lock.
var ErrLocked = errors.New("artifact is locked by another encoder")

// File stages an artifact in a temporary file and moves it into place on Commit.
type File struct {
	path string
	tmp  *os.File
	lock *flock.Flock
	done bool
}

// LockPath returns the advisory lock file guarding path.
func LockPath(path string) string { return path + ".lock" }

// Create locks path and opens a temporary file beside it. The destination is
// untouched until Commit.
func Create(path string) (*File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("artifact: empty path")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifact: ensure dir: %w", err)
	}

	lock := flock.New(LockPath(path))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("artifact: acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("artifact: %s: %w", path, ErrLocked)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("artifact: create temp: %w", err)
	}
	return &File{path: path, tmp: tmp, lock: lock}, nil
}

// Path returns the final artifact path.
func (f *File) Path() string { return f.path }

// Writer exposes the staging file.
func (f *File) Writer() io.Writer { return f.tmp }

// Commit syncs the staging file and renames it over the destination.
func (f *File) Commit() error {
	if f.done {
		return errors.New("artifact: already finished")
	}
	f.done = true
	defer f.release()

	tmpName := f.tmp.Name()
	if err := f.tmp.Sync(); err != nil {
		_ = f.tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("artifact: sync: %w", err)
	}
	if err := f.tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("artifact: close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("artifact: chmod: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("artifact: rename: %w", err)
	}
	return nil
}

// Abort discards the staging file. Safe to call after Commit.
func (f *File) Abort() error {
	if f.done {
		return nil
	}
	f.done = true
	defer f.release()

	tmpName := f.tmp.Name()
	_ = f.tmp.Close()
	if err := os.Remove(tmpName); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("artifact: remove temp: %w", err)
	}
	return nil
}

// release unlocks and removes the lock file so a finished encode leaves only
// the artifact behind.
func (f *File) release() {
	_ = f.lock.Unlock()
	_ = os.Remove(f.lock.Path())
}

// Package snapshot reads and writes the local JSON snapshot file. The file is
// a warm-start cache: the server loads it before the remote store answers and
// rewrites it after every mutation.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"fintrack/internal/auth"
	"fintrack/internal/core"
)

// File persists one snapshot per user as <dir>/<user>.json.
type File struct {
	dir string
}

func NewFile(dir string) *File {
	return &File{dir: dir}
}

func (f *File) path(user auth.UserID) string {
	return filepath.Join(f.dir, string(user)+".json")
}

// Load returns the user's cached snapshot. A missing file is not an error:
// it returns an empty snapshot and ok=false.
func (f *File) Load(user auth.UserID) (core.Snapshot, bool, error) {
	var snap core.Snapshot

	data, err := os.ReadFile(f.path(user))
	if errors.Is(err, fs.ErrNotExist) {
		return snap, false, nil
	}
	if err != nil {
		return snap, false, fmt.Errorf("read snapshot: %w", err)
	}

	if err := json.Unmarshal(data, &snap); err != nil {
		return core.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}

// Save writes the snapshot atomically: full marshal to a temp file in the
// same directory, then rename over the previous one.
func (f *File) Save(user auth.UserID, snap core.Snapshot) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(f.dir, string(user)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, f.path(user)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Remove deletes the user's snapshot file. Missing files are ignored.
func (f *File) Remove(user auth.UserID) error {
	err := os.Remove(f.path(user))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

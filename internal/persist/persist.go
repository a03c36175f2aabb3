// Package persist handles the disk I/O for the store: loading the document
// file, ensuring its directory exists, and saving new content atomically.
//
// Saves write to a uniquely named temp file in the target directory and then
// rename it over the destination, so a concurrent reader observes either the
// old content or the new content, never a mix. There is no cross-process
// locking; two writers race last-writer-wins.
package persist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Load when the store file does not exist yet.
var ErrNotFound = errors.New("store file not found")

// File is the persistence handle for one store file path.
type File struct {
	Path string
}

// New returns a persistence handle for the given file path.
func New(path string) *File {
	return &File{Path: path}
}

// EnsureDir creates the file's parent directory if it is missing.
func (f *File) EnsureDir() error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("cannot create directory %s (check permissions): %w", dir, err)
		}
		return err
	}
	return nil
}

// Load reads the current file content. A missing file maps to ErrNotFound;
// permission failures are annotated with the path and re-thrown.
func (f *File) Load() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("cannot read %s (check permissions): %w", f.Path, err)
		}
		return nil, err
	}
	return data, nil
}

// Save writes data atomically: a uniquely named temp file next to the
// destination, then a rename over it.
func (f *File) Save(data []byte) error {
	if err := f.EnsureDir(); err != nil {
		return err
	}

	tmp := fmt.Sprintf("%s.%s.tmp", f.Path, uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("cannot write %s (check permissions): %w", f.Path, err)
		}
		return err
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", f.Path, err)
	}
	return nil
}

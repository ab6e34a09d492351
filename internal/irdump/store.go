package irdump

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrStorage marks an artifact write or read-back failure. Storage failures
// are fatal for the run.
var ErrStorage = errors.New("artifact storage failure")

// ArtifactStore is the injected capability used by Extract to persist pass
// content. Write returns a handle (path) usable with a Loader.
type ArtifactStore interface {
	Write(name string, data []byte) (string, error)
}

// DirStore writes artifacts into a single directory of an afero filesystem.
type DirStore struct {
	fs  afero.Fs
	dir string
}

// NewDirStore creates the directory if needed and returns a store rooted there.
func NewDirStore(fs afero.Fs, dir string) (*DirStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", ErrStorage, dir, err)
	}
	return &DirStore{fs: fs, dir: dir}, nil
}

// Write persists one artifact. The file handle is released on every exit path.
func (s *DirStore) Write(name string, data []byte) (string, error) {
	path := filepath.Join(s.dir, name)

	f, err := s.fs.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", ErrStorage, path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return "", fmt.Errorf("%w: writing %s: %v", ErrStorage, path, err)
	}
	return path, nil
}

// Load reads an artifact back by the handle Write returned.
func (s *DirStore) Load(path string) (string, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %v", ErrStorage, path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrStorage, path, err)
	}
	return string(data), nil
}

// FsLoader loads artifacts by absolute handle from an afero filesystem,
// independent of which DirStore produced them.
type FsLoader struct {
	Fs afero.Fs
}

func (l FsLoader) Load(path string) (string, error) {
	data, err := afero.ReadFile(l.Fs, path)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrStorage, path, err)
	}
	return string(data), nil
}

package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var (
	ErrFileNotFound      = fmt.Errorf("filesystem: file not found")
	ErrDirectoryNotFound = fmt.Errorf("filesystem: directory not found")
	ErrNotAFile          = fmt.Errorf("filesystem: not a regular file")
	ErrInvalidPath       = fmt.Errorf("filesystem: invalid path")
)

// Filesystem is the read side of the disk the server serves from.
type Filesystem interface {
	ReadFile(path string) ([]byte, error)

	IsDirectory(path string) (bool, error)
	GetAbsolutePath(path string) (string, error)
}

type localFileSystem struct {
}

func NewLocalFileSystem() Filesystem {
	return &localFileSystem{}
}

// ReadFile reads a regular file. Directories are reported as ErrNotAFile so
// they never end up as a response body.
func (filesystem *localFileSystem) ReadFile(path string) ([]byte, error) {
	if path == "" {
		return nil, ErrInvalidPath
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotAFile, path)
	}

	return os.ReadFile(path)
}

func (filesystem *localFileSystem) IsDirectory(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

func (filesystem *localFileSystem) GetAbsolutePath(path string) (string, error) {
	return filepath.Abs(path)
}

// EnsureDirectory fails with ErrDirectoryNotFound unless path is an existing
// directory.
func EnsureDirectory(filesystem Filesystem, path string) error {
	isDir, err := filesystem.IsDirectory(path)
	if err != nil {
		return err
	}
	if !isDir {
		return fmt.Errorf("%w: %s", ErrDirectoryNotFound, path)
	}
	return nil
}

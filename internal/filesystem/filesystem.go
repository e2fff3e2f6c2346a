package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystem exposes filesystem operations required by repository discovery and exclude list maintenance.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	Abs(path string) (string, error)
	MkdirAll(path string, permissions fs.FileMode) error
	OpenFile(path string, flags int, permissions fs.FileMode) (File, error)
}

// File is the subset of *os.File consumed by the exclusion store.
type File interface {
	Read(buffer []byte) (int, error)
	Write(data []byte) (int, error)
	Close() error
}

// OSFileSystem implements FileSystem using the operating system primitives.
type OSFileSystem struct{}

// Stat retrieves file metadata.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Abs resolves an absolute path.
func (OSFileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// MkdirAll ensures a directory hierarchy exists with the provided permissions.
func (OSFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}

// OpenFile opens a file with the provided flags and permissions.
func (OSFileSystem) OpenFile(path string, flags int, permissions fs.FileMode) (File, error) {
	return os.OpenFile(path, flags, permissions)
}

// Resolve returns the provided file system or the operating system implementation when nil.
func Resolve(fileSystem FileSystem) FileSystem {
	if fileSystem == nil {
		return OSFileSystem{}
	}
	return fileSystem
}

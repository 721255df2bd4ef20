package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
)

// OSFileSystem implements shared.FileSystem using the operating system primitives.
type OSFileSystem struct{}

// ReadDir lists directory entries in enumeration order.
func (OSFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	directory, openError := os.Open(path)
	if openError != nil {
		return nil, openError
	}
	defer directory.Close()
	return directory.ReadDir(-1)
}

// Stat retrieves file metadata.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Abs resolves an absolute path.
func (OSFileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

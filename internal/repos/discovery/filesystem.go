package discovery

import (
	"path/filepath"

	"github.com/temirov/reposync/internal/repos/filesystem"
	"github.com/temirov/reposync/internal/repos/shared"
)

// DirectoryRepositoryScanner locates working copies directly beneath a repository root.
type DirectoryRepositoryScanner struct {
	fileSystem shared.FileSystem
}

// NewDirectoryRepositoryScanner constructs a scanner backed by the operating system filesystem.
func NewDirectoryRepositoryScanner() *DirectoryRepositoryScanner {
	return NewDirectoryRepositoryScannerWithFileSystem(filesystem.OSFileSystem{})
}

// NewDirectoryRepositoryScannerWithFileSystem constructs a scanner using the provided filesystem.
func NewDirectoryRepositoryScannerWithFileSystem(fileSystem shared.FileSystem) *DirectoryRepositoryScanner {
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	return &DirectoryRepositoryScanner{fileSystem: fileSystem}
}

// ScanRepositories returns one entry per immediate child directory that directly contains a .git entry.
// An unreadable root yields no repositories. Results keep directory enumeration order.
func (scanner *DirectoryRepositoryScanner) ScanRepositories(root string) []shared.LocalRepository {
	rootEntries, readError := scanner.fileSystem.ReadDir(root)
	if readError != nil {
		return nil
	}

	var repositories []shared.LocalRepository
	for _, rootEntry := range rootEntries {
		candidatePath := filepath.Join(root, rootEntry.Name())
		if !scanner.isDirectory(candidatePath) {
			continue
		}
		if !scanner.containsGitMetadata(candidatePath) {
			continue
		}
		repositories = append(repositories, shared.LocalRepository{
			Name: rootEntry.Name(),
			Path: candidatePath,
		})
	}

	return repositories
}

// isDirectory follows symbolic links so linked working copies are still synchronized.
func (scanner *DirectoryRepositoryScanner) isDirectory(path string) bool {
	fileInfo, statError := scanner.fileSystem.Stat(path)
	if statError != nil {
		return false
	}
	return fileInfo.IsDir()
}

func (scanner *DirectoryRepositoryScanner) containsGitMetadata(path string) bool {
	_, statError := scanner.fileSystem.Stat(filepath.Join(path, shared.GitMetadataEntryNameConstant))
	return statError == nil
}

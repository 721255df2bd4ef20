package shared

import (
	"context"
	"io/fs"
	"strings"
	"time"

	"github.com/temirov/reposync/internal/execshell"
)

const (
	// GitMetadataEntryNameConstant names the entry whose presence marks a directory as a working copy.
	GitMetadataEntryNameConstant = ".git"
)

// RemoteRepository describes a repository listed by the team inventory endpoint.
type RemoteRepository struct {
	Name     string
	Archived bool
	CloneURL string
}

// LocalRepository describes a working copy found directly under the repository root.
type LocalRepository struct {
	Name string
	Path string
}

// TeamPrefix is the repository name prefix shared by every repository of a team.
type TeamPrefix string

// Matches reports whether the remote repository name carries the prefix.
func (prefix TeamPrefix) Matches(remoteName string) bool {
	return strings.HasPrefix(remoteName, string(prefix))
}

// Strip returns the local directory name for a remote repository name.
func (prefix TeamPrefix) Strip(remoteName string) string {
	return strings.TrimPrefix(remoteName, string(prefix))
}

// String returns the raw prefix value.
func (prefix TeamPrefix) String() string {
	return string(prefix)
}

// LocalDirectoryName returns the directory name the repository is cloned into.
func (repository RemoteRepository) LocalDirectoryName(prefix TeamPrefix) string {
	return prefix.Strip(repository.Name)
}

// Clock abstracts time acquisition for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time source.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FileSystem exposes the filesystem operations required by repository inventory.
type FileSystem interface {
	ReadDir(path string) ([]fs.DirEntry, error)
	Stat(path string) (fs.FileInfo, error)
	Abs(path string) (string, error)
}

// GitExecutor exposes the subset of shell execution used by repository operations.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryScanner lists the working copies located directly under a root directory.
type RepositoryScanner interface {
	ScanRepositories(root string) []LocalRepository
}

package discovery_test

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/reposync/internal/repos/discovery"
	"github.com/temirov/reposync/internal/repos/shared"
)

const (
	alphaRepositoryDirectoryName    = "alpha"
	betaRepositoryDirectoryName     = "beta"
	plainDirectoryName              = "notes"
	nestedGroupDirectoryName        = "group"
	nestedRepositoryDirectoryName   = "nested"
	worktreeRepositoryDirectoryName = "worktree"
	looseFileName                   = "README.md"
	gitMetadataDirectoryName        = ".git"
	missingRootDirectoryName        = "missing"
	repositoryDirectoryPermissions  = 0o755
	repositoryFilePermissions       = 0o644
)

type scannerFixture struct {
	gitDirectories []string
	gitFiles       []string
	plainDirs      []string
	looseFiles     []string
}

func (fixture scannerFixture) materialize(testInstance *testing.T) string {
	testInstance.Helper()

	rootDirectory := testInstance.TempDir()
	for _, relativePath := range fixture.gitDirectories {
		require.NoError(testInstance, os.MkdirAll(filepath.Join(rootDirectory, relativePath, gitMetadataDirectoryName), repositoryDirectoryPermissions))
	}
	for _, relativePath := range fixture.gitFiles {
		require.NoError(testInstance, os.MkdirAll(filepath.Join(rootDirectory, relativePath), repositoryDirectoryPermissions))
		require.NoError(testInstance, os.WriteFile(filepath.Join(rootDirectory, relativePath, gitMetadataDirectoryName), []byte("gitdir: ../.bare\n"), repositoryFilePermissions))
	}
	for _, relativePath := range fixture.plainDirs {
		require.NoError(testInstance, os.MkdirAll(filepath.Join(rootDirectory, relativePath), repositoryDirectoryPermissions))
	}
	for _, relativePath := range fixture.looseFiles {
		require.NoError(testInstance, os.WriteFile(filepath.Join(rootDirectory, relativePath), []byte("readme"), repositoryFilePermissions))
	}
	return rootDirectory
}

func TestDirectoryRepositoryScannerScanRepositories(testInstance *testing.T) {
	testCases := []struct {
		name          string
		fixture       scannerFixture
		expectedNames []string
	}{
		{
			name: "detects_direct_children_with_git_directory",
			fixture: scannerFixture{
				gitDirectories: []string{alphaRepositoryDirectoryName, betaRepositoryDirectoryName},
				plainDirs:      []string{plainDirectoryName},
				looseFiles:     []string{looseFileName},
			},
			expectedNames: []string{alphaRepositoryDirectoryName, betaRepositoryDirectoryName},
		},
		{
			name: "accepts_git_file_entries",
			fixture: scannerFixture{
				gitFiles: []string{worktreeRepositoryDirectoryName},
			},
			expectedNames: []string{worktreeRepositoryDirectoryName},
		},
		{
			name: "ignores_nested_repositories",
			fixture: scannerFixture{
				gitDirectories: []string{filepath.Join(nestedGroupDirectoryName, nestedRepositoryDirectoryName)},
			},
			expectedNames: nil,
		},
		{
			name:          "empty_root_yields_nothing",
			fixture:       scannerFixture{},
			expectedNames: nil,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			rootDirectory := testCase.fixture.materialize(testInstance)

			scanner := discovery.NewDirectoryRepositoryScanner()
			repositories := scanner.ScanRepositories(rootDirectory)

			discoveredNames := make([]string, 0, len(repositories))
			for _, repository := range repositories {
				require.Equal(testInstance, filepath.Join(rootDirectory, repository.Name), repository.Path)
				discoveredNames = append(discoveredNames, repository.Name)
			}
			sort.Strings(discoveredNames)

			if len(testCase.expectedNames) == 0 {
				require.Empty(testInstance, discoveredNames)
				return
			}
			require.Equal(testInstance, testCase.expectedNames, discoveredNames)
		})
	}
}

func TestDirectoryRepositoryScannerUnreadableRoot(testInstance *testing.T) {
	scanner := discovery.NewDirectoryRepositoryScannerWithFileSystem(nil)
	missingRoot := filepath.Join(testInstance.TempDir(), missingRootDirectoryName)

	var repositories []shared.LocalRepository
	require.NotPanics(testInstance, func() {
		repositories = scanner.ScanRepositories(missingRoot)
	})
	require.Empty(testInstance, repositories)
}

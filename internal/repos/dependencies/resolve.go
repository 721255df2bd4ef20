package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/reposync/internal/execshell"
	"github.com/temirov/reposync/internal/repos/discovery"
	"github.com/temirov/reposync/internal/repos/filesystem"
	"github.com/temirov/reposync/internal/repos/remote"
	"github.com/temirov/reposync/internal/repos/shared"
)

// ResolveRepositoryScanner returns the provided scanner or a filesystem-backed default.
func ResolveRepositoryScanner(existing shared.RepositoryScanner) shared.RepositoryScanner {
	if existing != nil {
		return existing
	}
	return discovery.NewDirectoryRepositoryScanner()
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default that notifies the observer.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger, observer execshell.CommandEventObserver) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutorWithObserver(logger, commandRunner, observer)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveInventoryClient returns the provided client or builds a token-authenticated GitHub client.
func ResolveInventoryClient(existing remote.InventoryLister, token string, logger *zap.Logger) (remote.InventoryLister, error) {
	if existing != nil {
		return existing, nil
	}
	return remote.NewClient(token, logger)
}

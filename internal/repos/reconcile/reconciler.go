package reconcile

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/temirov/reposync/internal/repos/remote"
	"github.com/temirov/reposync/internal/repos/shared"
)

// Plan lists the operations a synchronization run performs.
type Plan struct {
	Prefix                    shared.TeamPrefix
	NewRepositories           []shared.RemoteRepository
	ExistingRepositories      []shared.LocalRepository
	ArchivedLocalRepositories []shared.RemoteRepository
}

// Reconcile derives the plan from the remote inventory and the local working copies.
func Reconcile(inventory remote.Inventory, localRepositories []shared.LocalRepository, prefix shared.TeamPrefix) Plan {
	return Plan{
		Prefix:                    prefix,
		NewRepositories:           FindNewRepositories(inventory.Active, localRepositories, prefix),
		ExistingRepositories:      FindExistingRepositories(localRepositories),
		ArchivedLocalRepositories: FindArchivedLocalRepositories(inventory.Archived, localRepositories, prefix),
	}
}

// FindNewRepositories returns the active remote repositories without a local working copy.
func FindNewRepositories(activeRepositories []shared.RemoteRepository, localRepositories []shared.LocalRepository, prefix shared.TeamPrefix) []shared.RemoteRepository {
	knownNames := localNameSet(localRepositories)
	return filterRemote(activeRepositories, func(repository shared.RemoteRepository) bool {
		_, known := knownNames[repository.LocalDirectoryName(prefix)]
		return !known
	})
}

// FindExistingRepositories returns every local working copy; each one is pulled regardless of the remote listing.
func FindExistingRepositories(localRepositories []shared.LocalRepository) []shared.LocalRepository {
	existing := make([]shared.LocalRepository, 0, len(localRepositories))
	seen := make(map[string]struct{}, len(localRepositories))
	for _, repository := range localRepositories {
		if _, duplicate := seen[repository.Name]; duplicate {
			continue
		}
		seen[repository.Name] = struct{}{}
		existing = append(existing, repository)
	}
	return existing
}

// FindArchivedLocalRepositories returns the archived remote repositories that still have a local working copy.
func FindArchivedLocalRepositories(archivedRepositories []shared.RemoteRepository, localRepositories []shared.LocalRepository, prefix shared.TeamPrefix) []shared.RemoteRepository {
	knownNames := localNameSet(localRepositories)
	return filterRemote(archivedRepositories, func(repository shared.RemoteRepository) bool {
		_, known := knownNames[repository.LocalDirectoryName(prefix)]
		return known
	})
}

// Exclude returns a copy of the plan without the repositories whose local directory name matches any pattern.
// Invalid patterns never match.
func (plan Plan) Exclude(patterns []string) Plan {
	if len(patterns) == 0 {
		return plan
	}
	remoteExcluded := func(repository shared.RemoteRepository) bool {
		return !matchesAny(repository.LocalDirectoryName(plan.Prefix), patterns)
	}
	existing := make([]shared.LocalRepository, 0, len(plan.ExistingRepositories))
	for _, repository := range plan.ExistingRepositories {
		if matchesAny(repository.Name, patterns) {
			continue
		}
		existing = append(existing, repository)
	}
	return Plan{
		Prefix:                    plan.Prefix,
		NewRepositories:           filterRemote(plan.NewRepositories, remoteExcluded),
		ExistingRepositories:      existing,
		ArchivedLocalRepositories: filterRemote(plan.ArchivedLocalRepositories, remoteExcluded),
	}
}

// Empty reports whether the plan performs no operation and flags nothing.
func (plan Plan) Empty() bool {
	return len(plan.NewRepositories) == 0 && len(plan.ExistingRepositories) == 0 && len(plan.ArchivedLocalRepositories) == 0
}

func localNameSet(localRepositories []shared.LocalRepository) map[string]struct{} {
	names := make(map[string]struct{}, len(localRepositories))
	for _, repository := range localRepositories {
		names[repository.Name] = struct{}{}
	}
	return names
}

// filterRemote keeps input order and collapses repeated names.
func filterRemote(repositories []shared.RemoteRepository, keep func(shared.RemoteRepository) bool) []shared.RemoteRepository {
	filtered := make([]shared.RemoteRepository, 0, len(repositories))
	seen := make(map[string]struct{}, len(repositories))
	for _, repository := range repositories {
		if _, duplicate := seen[repository.Name]; duplicate {
			continue
		}
		seen[repository.Name] = struct{}{}
		if keep(repository) {
			filtered = append(filtered, repository)
		}
	}
	return filtered
}

func matchesAny(name string, patterns []string) bool {
	slashName := filepath.ToSlash(name)
	for _, pattern := range patterns {
		matched, matchError := doublestar.Match(filepath.ToSlash(pattern), slashName)
		if matchError != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

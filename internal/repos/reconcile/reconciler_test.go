package reconcile_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/reposync/internal/repos/reconcile"
	"github.com/temirov/reposync/internal/repos/remote"
	"github.com/temirov/reposync/internal/repos/shared"
)

const (
	testRootDirectoryConstant = "/srv/repos"
	testTeamPrefixConstant    = shared.TeamPrefix("team_")
)

func local(name string) shared.LocalRepository {
	return shared.LocalRepository{Name: name, Path: filepath.Join(testRootDirectoryConstant, name)}
}

func active(name string) shared.RemoteRepository {
	return shared.RemoteRepository{Name: name, CloneURL: "git@github.com:example/" + name + ".git"}
}

func archived(name string) shared.RemoteRepository {
	return shared.RemoteRepository{Name: name, Archived: true, CloneURL: "git@github.com:example/" + name + ".git"}
}

func remoteNames(repositories []shared.RemoteRepository) []string {
	names := make([]string, 0, len(repositories))
	for _, repository := range repositories {
		names = append(names, repository.Name)
	}
	return names
}

func localNames(repositories []shared.LocalRepository) []string {
	names := make([]string, 0, len(repositories))
	for _, repository := range repositories {
		names = append(names, repository.Name)
	}
	return names
}

func TestReconcile(testInstance *testing.T) {
	testCases := []struct {
		name             string
		inventory        remote.Inventory
		local            []shared.LocalRepository
		prefix           shared.TeamPrefix
		expectedNew      []string
		expectedExisting []string
		expectedArchived []string
	}{
		{
			name:             "new_remote_repository_without_local_copy",
			inventory:        remote.Inventory{Active: []shared.RemoteRepository{active("team_alpha")}},
			prefix:           testTeamPrefixConstant,
			expectedNew:      []string{"team_alpha"},
			expectedExisting: []string{},
			expectedArchived: []string{},
		},
		{
			name:             "archived_remote_with_local_copy",
			inventory:        remote.Inventory{Archived: []shared.RemoteRepository{archived("team_delta")}},
			local:            []shared.LocalRepository{local("delta")},
			prefix:           testTeamPrefixConstant,
			expectedNew:      []string{},
			expectedExisting: []string{"delta"},
			expectedArchived: []string{"team_delta"},
		},
		{
			name:             "archived_remote_without_local_copy_is_ignored",
			inventory:        remote.Inventory{Archived: []shared.RemoteRepository{archived("team_delta")}},
			prefix:           testTeamPrefixConstant,
			expectedNew:      []string{},
			expectedExisting: []string{},
			expectedArchived: []string{},
		},
		{
			name: "prefixed_remote_matches_stripped_local",
			inventory: remote.Inventory{Active: []shared.RemoteRepository{
				active("team_foo"), active("team_bar"),
			}},
			local:            []shared.LocalRepository{local("foo"), local("untracked")},
			prefix:           testTeamPrefixConstant,
			expectedNew:      []string{"team_bar"},
			expectedExisting: []string{"foo", "untracked"},
			expectedArchived: []string{},
		},
		{
			name: "duplicate_remote_listing_collapses",
			inventory: remote.Inventory{Active: []shared.RemoteRepository{
				active("team_alpha"), active("team_beta"), active("team_alpha"),
			}},
			prefix:           testTeamPrefixConstant,
			expectedNew:      []string{"team_alpha", "team_beta"},
			expectedExisting: []string{},
			expectedArchived: []string{},
		},
		{
			name:             "empty_prefix_compares_full_names",
			inventory:        remote.Inventory{Active: []shared.RemoteRepository{active("service"), active("team_api")}},
			local:            []shared.LocalRepository{local("service")},
			prefix:           "",
			expectedNew:      []string{"team_api"},
			expectedExisting: []string{"service"},
			expectedArchived: []string{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			plan := reconcile.Reconcile(testCase.inventory, testCase.local, testCase.prefix)
			require.Equal(testInstance, testCase.expectedNew, remoteNames(plan.NewRepositories))
			require.Equal(testInstance, testCase.expectedExisting, localNames(plan.ExistingRepositories))
			require.Equal(testInstance, testCase.expectedArchived, remoteNames(plan.ArchivedLocalRepositories))
			require.Equal(testInstance, testCase.prefix, plan.Prefix)
		})
	}
}

func TestReconcileCoversEveryActiveRepositoryOnce(testInstance *testing.T) {
	activeRepositories := []shared.RemoteRepository{
		active("team_a"), active("team_b"), active("team_c"), active("team_d"), active("team_b"),
	}
	localRepositories := []shared.LocalRepository{local("b"), local("d"), local("z")}

	plan := reconcile.Reconcile(remote.Inventory{Active: activeRepositories}, localRepositories, testTeamPrefixConstant)

	knownLocally := map[string]struct{}{}
	for _, repository := range localRepositories {
		knownLocally[repository.Name] = struct{}{}
	}
	for _, repository := range plan.NewRepositories {
		_, known := knownLocally[repository.LocalDirectoryName(testTeamPrefixConstant)]
		require.False(testInstance, known, repository.Name)
	}

	coverage := map[string]int{}
	for _, repository := range plan.NewRepositories {
		coverage[repository.Name]++
	}
	for _, repository := range activeRepositories {
		if _, known := knownLocally[repository.LocalDirectoryName(testTeamPrefixConstant)]; known {
			coverage[repository.Name] = 1
		}
	}
	require.Equal(testInstance, map[string]int{"team_a": 1, "team_b": 1, "team_c": 1, "team_d": 1}, coverage)
}

func TestPlanExclude(testInstance *testing.T) {
	plan := reconcile.Plan{
		Prefix:                    testTeamPrefixConstant,
		NewRepositories:           []shared.RemoteRepository{active("team_sandbox-one"), active("team_api")},
		ExistingRepositories:      []shared.LocalRepository{local("sandbox-two"), local("web")},
		ArchivedLocalRepositories: []shared.RemoteRepository{archived("team_legacy")},
	}

	testCases := []struct {
		name             string
		patterns         []string
		expectedNew      []string
		expectedExisting []string
		expectedArchived []string
	}{
		{
			name:             "no_patterns_keep_plan",
			patterns:         nil,
			expectedNew:      []string{"team_sandbox-one", "team_api"},
			expectedExisting: []string{"sandbox-two", "web"},
			expectedArchived: []string{"team_legacy"},
		},
		{
			name:             "glob_matches_stripped_names",
			patterns:         []string{"sandbox-*"},
			expectedNew:      []string{"team_api"},
			expectedExisting: []string{"web"},
			expectedArchived: []string{"team_legacy"},
		},
		{
			name:             "invalid_pattern_never_matches",
			patterns:         []string{"[", "legacy"},
			expectedNew:      []string{"team_sandbox-one", "team_api"},
			expectedExisting: []string{"sandbox-two", "web"},
			expectedArchived: []string{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			filtered := plan.Exclude(testCase.patterns)
			require.Equal(testInstance, testCase.expectedNew, remoteNames(filtered.NewRepositories))
			require.Equal(testInstance, testCase.expectedExisting, localNames(filtered.ExistingRepositories))
			require.Equal(testInstance, testCase.expectedArchived, remoteNames(filtered.ArchivedLocalRepositories))
		})
	}
}

func TestPlanEmpty(testInstance *testing.T) {
	require.True(testInstance, reconcile.Plan{}.Empty())
	require.False(testInstance, reconcile.Plan{ExistingRepositories: []shared.LocalRepository{local("web")}}.Empty())
}

package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/reposync/internal/utils/path"
)

const (
	testHomeDirectoryConstant = "/home/operator"
)

func TestHomeExpanderExpand(testInstance *testing.T) {
	testCases := []struct {
		name         string
		provider     pathutils.HomeDirectoryProvider
		candidate    string
		expectedPath string
	}{
		{
			name:         "bare_tilde",
			provider:     func() (string, error) { return testHomeDirectoryConstant, nil },
			candidate:    "~",
			expectedPath: testHomeDirectoryConstant,
		},
		{
			name:         "tilde_slash",
			provider:     func() (string, error) { return testHomeDirectoryConstant, nil },
			candidate:    "~/team/repos",
			expectedPath: filepath.Join(testHomeDirectoryConstant, "team", "repos"),
		},
		{
			name:         "other_user_untouched",
			provider:     func() (string, error) { return testHomeDirectoryConstant, nil },
			candidate:    "~someone/repos",
			expectedPath: "~someone/repos",
		},
		{
			name:         "absolute_untouched",
			provider:     func() (string, error) { return testHomeDirectoryConstant, nil },
			candidate:    "/srv/repos",
			expectedPath: "/srv/repos",
		},
		{
			name:         "lookup_failure_untouched",
			provider:     func() (string, error) { return "", errors.New("no home") },
			candidate:    "~/repos",
			expectedPath: "~/repos",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			expander := pathutils.NewHomeExpanderWithProvider(testCase.provider)
			require.Equal(testInstance, testCase.expectedPath, expander.Expand(testCase.candidate))
		})
	}
}

func TestHomeExpanderNilReceiver(testInstance *testing.T) {
	var expander *pathutils.HomeExpander
	require.Equal(testInstance, "~/repos", expander.Expand("~/repos"))
}

package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/reposync/internal/reposync"
)

const (
	testLegacyEndpointConstant        = "https://api.github.com/organizations/42/team/7/repos"
	testPrefixedTeamPrefixConstant    = "platform-"
	testLegacyTeamPrefixConstant      = "team_"
	testConfigurationFileNameConstant = "config.yaml"
	testVersionConstant               = "v1.4.2"
)

var isolatedEnvironmentVariables = []string{
	"GITHUB_TEAM_REPO_URL",
	"REPO_ROOT_DIR",
	"GITHUB_TEAM_PREFIX",
	"GH_TOKEN",
	"GITHUB_TOKEN",
	"GITHUB_API_TOKEN",
	"REPOSYNC_COMMON_LOG_LEVEL",
	"REPOSYNC_COMMON_LOG_FORMAT",
	"REPOSYNC_SYNC_ENDPOINT_URL",
	"REPOSYNC_SYNC_ROOT",
	"REPOSYNC_SYNC_TOKEN",
	"REPOSYNC_SYNC_TEAM_PREFIX",
}

func isolateEnvironment(testInstance *testing.T) {
	testInstance.Helper()
	testInstance.Setenv("HOME", testInstance.TempDir())
	for _, variableName := range isolatedEnvironmentVariables {
		testInstance.Setenv(variableName, "")
	}
}

func executeApplication(testInstance *testing.T, application *Application, arguments ...string) (string, error) {
	testInstance.Helper()
	var output bytes.Buffer
	application.rootCommand.SetOut(&output)
	application.rootCommand.SetErr(&output)
	application.rootCommand.SetArgs(arguments)
	executionError := application.Execute()
	return output.String(), executionError
}

func TestEmbeddedDefaultsDecodeIntoSyncConfiguration(testInstance *testing.T) {
	content, configurationType := EmbeddedDefaultConfiguration()
	require.Equal(testInstance, configurationTypeConstant, configurationType)

	var document map[string]any
	require.NoError(testInstance, yaml.Unmarshal(content, &document))

	var syncConfiguration reposync.CommandConfiguration
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: &syncConfiguration, TagName: "mapstructure"})
	require.NoError(testInstance, decoderError)
	require.NoError(testInstance, decoder.Decode(document[syncConfigurationKeyConstant]))

	defaults := reposync.DefaultCommandConfiguration()
	require.Equal(testInstance, defaults.Root, syncConfiguration.Root)
	require.Equal(testInstance, defaults.Pagination, syncConfiguration.Pagination)
	require.Equal(testInstance, defaults.ReportFormat, syncConfiguration.ReportFormat)
	require.Empty(testInstance, syncConfiguration.EndpointURL)
	require.Empty(testInstance, syncConfiguration.TeamPrefix)
	require.Empty(testInstance, syncConfiguration.Exclude)
}

func TestApplicationConfigurationSources(testInstance *testing.T) {
	testCases := []struct {
		name               string
		environment        map[string]string
		configurationFile  string
		expectedEndpoint   string
		expectedTeamPrefix string
		expectedRoot       string
	}{
		{
			name:         "embedded_defaults",
			expectedRoot: ".",
		},
		{
			name: "legacy_environment_names",
			environment: map[string]string{
				"GITHUB_TEAM_REPO_URL": testLegacyEndpointConstant,
				"GITHUB_TEAM_PREFIX":   testLegacyTeamPrefixConstant,
				"REPO_ROOT_DIR":        "/srv/team",
			},
			expectedEndpoint:   testLegacyEndpointConstant,
			expectedTeamPrefix: testLegacyTeamPrefixConstant,
			expectedRoot:       "/srv/team",
		},
		{
			name: "prefixed_environment_overrides_legacy",
			environment: map[string]string{
				"GITHUB_TEAM_PREFIX":        testLegacyTeamPrefixConstant,
				"REPOSYNC_SYNC_TEAM_PREFIX": testPrefixedTeamPrefixConstant,
			},
			expectedTeamPrefix: testPrefixedTeamPrefixConstant,
			expectedRoot:       ".",
		},
		{
			name:               "configuration_file",
			configurationFile:  "sync:\n  endpoint_url: " + testLegacyEndpointConstant + "\n  team_prefix: " + testLegacyTeamPrefixConstant + "\n",
			expectedEndpoint:   testLegacyEndpointConstant,
			expectedTeamPrefix: testLegacyTeamPrefixConstant,
			expectedRoot:       ".",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			isolateEnvironment(testInstance)
			for variableName, variableValue := range testCase.environment {
				testInstance.Setenv(variableName, variableValue)
			}

			arguments := []string{"version"}
			if len(testCase.configurationFile) > 0 {
				configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
				require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testCase.configurationFile), 0o600))
				arguments = append([]string{"--config", configurationPath}, arguments...)
			}

			application := NewApplication()
			_, executionError := executeApplication(testInstance, application, arguments...)
			require.NoError(testInstance, executionError)

			require.Equal(testInstance, testCase.expectedEndpoint, application.configuration.Sync.EndpointURL)
			require.Equal(testInstance, testCase.expectedTeamPrefix, application.configuration.Sync.TeamPrefix)
			require.Equal(testInstance, testCase.expectedRoot, application.configuration.Sync.Root)
			require.Equal(testInstance, "info", application.configuration.Common.LogLevel)
			require.Equal(testInstance, "structured", application.configuration.Common.LogFormat)
		})
	}
}

func TestApplicationLogFlagsOverrideConfiguration(testInstance *testing.T) {
	isolateEnvironment(testInstance)

	application := NewApplication()
	_, executionError := executeApplication(testInstance, application, "--log-level", "debug", "--log-format", "console", "version")
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "debug", application.configuration.Common.LogLevel)
	require.True(testInstance, application.humanReadableLoggingEnabled())
}

func TestApplicationRejectsUnknownLogLevel(testInstance *testing.T) {
	isolateEnvironment(testInstance)

	_, executionError := executeApplication(testInstance, NewApplication(), "--log-level", "verbose", "version")
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "unsupported log level")
}

func TestApplicationVersionCommand(testInstance *testing.T) {
	isolateEnvironment(testInstance)

	application := NewApplication()
	application.versionResolver = func() string {
		return testVersionConstant
	}

	output, executionError := executeApplication(testInstance, application, "version")
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "reposync version "+testVersionConstant+"\n", output)
}

func TestApplicationSyncReportsEmptyTeam(testInstance *testing.T) {
	isolateEnvironment(testInstance)

	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.Header().Set("Content-Type", "application/json")
		_, _ = responseWriter.Write([]byte("[]"))
	}))
	testInstance.Cleanup(server.Close)

	output, executionError := executeApplication(
		testInstance,
		NewApplication(),
		"--log-level", "error",
		"sync",
		"--endpoint-url", server.URL,
		"--token", "test-token",
		"--root", testInstance.TempDir(),
	)
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "Pull no-op count: 0\n", output)
}

func TestApplicationSyncRequiresEndpoint(testInstance *testing.T) {
	isolateEnvironment(testInstance)

	_, executionError := executeApplication(testInstance, NewApplication(), "--log-level", "error", "sync", "--token", "test-token")
	require.ErrorIs(testInstance, executionError, reposync.ErrEndpointMissing)
}

package reposync

import (
	"strings"

	"github.com/temirov/reposync/internal/repos/remote"
	pathutils "github.com/temirov/reposync/internal/utils/path"
)

const (
	configurationEndpointURLKeyConstant  = "endpoint_url"
	configurationRootKeyConstant         = "root"
	configurationTokenKeyConstant        = "token"
	configurationTeamPrefixKeyConstant   = "team_prefix"
	configurationPaginationKeyConstant   = "pagination"
	configurationConcurrencyKeyConstant  = "concurrency"
	configurationDryRunKeyConstant       = "dry_run"
	configurationReportFormatKeyConstant = "report_format"
	configurationExcludeKeyConstant      = "exclude"
	configurationKeySeparatorConstant    = "."
	defaultRootConstant                  = "."
	legacyEndpointEnvironmentKeyConstant = "GITHUB_TEAM_REPO_URL"
	legacyRootEnvironmentKeyConstant     = "REPO_ROOT_DIR"
	legacyPrefixEnvironmentKeyConstant   = "GITHUB_TEAM_PREFIX"
)

// CommandConfiguration captures persistent settings for the sync command.
type CommandConfiguration struct {
	EndpointURL  string   `mapstructure:"endpoint_url"`
	Root         string   `mapstructure:"root"`
	Token        string   `mapstructure:"token"`
	TeamPrefix   string   `mapstructure:"team_prefix"`
	Pagination   string   `mapstructure:"pagination"`
	Concurrency  int      `mapstructure:"concurrency"`
	DryRun       bool     `mapstructure:"dry_run"`
	ReportFormat string   `mapstructure:"report_format"`
	Exclude      []string `mapstructure:"exclude"`
}

// DefaultCommandConfiguration returns baseline configuration values for the sync command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Root:         defaultRootConstant,
		Pagination:   string(remote.PaginationPolicyFilteredPage),
		Concurrency:  0,
		DryRun:       false,
		ReportFormat: string(ReportFormatText),
		Exclude:      nil,
	}
}

// DefaultConfigurationValues produces Viper defaults for the sync command under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKey(rootKey, configurationEndpointURLKeyConstant):  defaults.EndpointURL,
		configurationKey(rootKey, configurationRootKeyConstant):         defaults.Root,
		configurationKey(rootKey, configurationTokenKeyConstant):        defaults.Token,
		configurationKey(rootKey, configurationTeamPrefixKeyConstant):   defaults.TeamPrefix,
		configurationKey(rootKey, configurationPaginationKeyConstant):   defaults.Pagination,
		configurationKey(rootKey, configurationConcurrencyKeyConstant):  defaults.Concurrency,
		configurationKey(rootKey, configurationDryRunKeyConstant):       defaults.DryRun,
		configurationKey(rootKey, configurationReportFormatKeyConstant): defaults.ReportFormat,
		configurationKey(rootKey, configurationExcludeKeyConstant):      defaults.Exclude,
	}
}

// LegacyEnvironmentAliases maps configuration keys under rootKey to the environment variables older releases read.
func LegacyEnvironmentAliases(rootKey string) map[string][]string {
	return map[string][]string{
		configurationKey(rootKey, configurationEndpointURLKeyConstant): {legacyEndpointEnvironmentKeyConstant},
		configurationKey(rootKey, configurationRootKeyConstant):        {legacyRootEnvironmentKeyConstant},
		configurationKey(rootKey, configurationTeamPrefixKeyConstant):  {legacyPrefixEnvironmentKeyConstant},
	}
}

func configurationKey(rootKey string, key string) string {
	if len(rootKey) == 0 {
		return key
	}
	return rootKey + configurationKeySeparatorConstant + key
}

// sanitize trims values and expands the home directory in the root path.
// The team prefix is kept verbatim since whitespace may be part of it.
func (configuration CommandConfiguration) sanitize(homeExpander *pathutils.HomeExpander) CommandConfiguration {
	sanitized := configuration

	sanitized.EndpointURL = strings.TrimSpace(configuration.EndpointURL)
	sanitized.Token = strings.TrimSpace(configuration.Token)
	sanitized.Pagination = strings.TrimSpace(configuration.Pagination)
	sanitized.ReportFormat = strings.TrimSpace(configuration.ReportFormat)

	sanitized.Root = strings.TrimSpace(configuration.Root)
	if len(sanitized.Root) == 0 {
		sanitized.Root = defaultRootConstant
	}
	sanitized.Root = homeExpander.Expand(sanitized.Root)

	if sanitized.Concurrency < 0 {
		sanitized.Concurrency = 0
	}

	sanitized.Exclude = sanitizePatterns(configuration.Exclude)
	return sanitized
}

func sanitizePatterns(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for _, candidate := range raw {
		for _, pattern := range strings.Split(candidate, ",") {
			trimmed := strings.TrimSpace(pattern)
			if len(trimmed) == 0 {
				continue
			}
			sanitized = append(sanitized, trimmed)
		}
	}
	return sanitized
}

package githubauth

import (
	"os"
	"strings"
)

// Environment variable names used by GitHub authentication helpers.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

// TokenSourceExplicit labels a token supplied through flags or configuration.
const TokenSourceExplicit = "configuration"

var tokenPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// EnvironmentLookup reads an environment variable.
type EnvironmentLookup func(key string) (string, bool)

// TokenResolver selects the GitHub token used for API requests.
type TokenResolver struct {
	lookup EnvironmentLookup
}

// NewTokenResolver constructs a resolver reading the provided lookup, or the process environment when nil.
func NewTokenResolver(lookup EnvironmentLookup) *TokenResolver {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &TokenResolver{lookup: lookup}
}

// Resolve returns the explicit token when set, otherwise the first non-empty token environment variable.
// The second value names where the token came from and never contains the token itself.
func (resolver *TokenResolver) Resolve(explicitToken string) (string, string, bool) {
	if trimmed := strings.TrimSpace(explicitToken); len(trimmed) > 0 {
		return trimmed, TokenSourceExplicit, true
	}
	lookup := os.LookupEnv
	if resolver != nil && resolver.lookup != nil {
		lookup = resolver.lookup
	}
	for _, key := range tokenPreference {
		value, exists := lookup(key)
		if !exists {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) > 0 {
			return value, key, true
		}
	}
	return "", "", false
}

// Package githubauth resolves the GitHub token used to list team repositories.
package githubauth

// Package remote lists the repositories owned by a GitHub team through the paginated REST endpoint.
package remote

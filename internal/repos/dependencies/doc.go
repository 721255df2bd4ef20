// Package dependencies supplies default collaborators when callers leave them unset.
package dependencies

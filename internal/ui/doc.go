// Package ui renders git command lifecycle events as concise console lines.
//
// It is attached to the shell executor when console logging is selected, so
// operators see one readable line per clone or pull while structured telemetry
// stays available in the structured log format.
package ui

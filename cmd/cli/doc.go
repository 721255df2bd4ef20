// Package cli constructs the reposync command-line interface, wiring the
// Cobra command hierarchy, the Viper configuration loader, and zap logging
// around the team synchronization command.
package cli

// Package reconcile computes the three-way difference between a team's remote repositories and the
// working copies present under the local repository root.
//
// Every comparison goes through shared.TeamPrefix.Strip so a remote repository is known locally
// exactly when a working copy carries its stripped name.
package reconcile

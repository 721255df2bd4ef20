// Package reposync synchronizes a directory of working copies with the repositories of a GitHub team.
//
// A run scans the local root, lists the team repositories, reconciles both sets, pulls every
// working copy and clones every missing repository concurrently, classifies what git printed,
// and renders one report once every task has finished.
package reposync

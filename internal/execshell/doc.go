// Package execshell provides structured helpers for invoking the git executable.
//
// It wraps os/exec through OSCommandRunner, adds lifecycle logging and
// observer notifications via ShellExecutor, and keeps exit-code failures
// (CommandFailedError) distinct from processes that never started
// (CommandExecutionError) so callers can classify both.
package execshell

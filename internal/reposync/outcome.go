package reposync

// OutcomeKind enumerates the classified results of a clone or pull.
type OutcomeKind string

// Outcome kinds in report order.
const (
	OutcomeUpdated    OutcomeKind = "updated"
	OutcomeCloned     OutcomeKind = "cloned"
	OutcomePullNoOp   OutcomeKind = "pull_noop"
	OutcomeCloneError OutcomeKind = "clone_error"
	OutcomePullError  OutcomeKind = "pull_error"
)

// OutcomeKinds lists every outcome kind.
var OutcomeKinds = []OutcomeKind{OutcomeUpdated, OutcomeCloned, OutcomePullNoOp, OutcomeCloneError, OutcomePullError}

// OperationKind identifies the git operation performed for a repository.
type OperationKind string

// Supported operations.
const (
	OperationClone OperationKind = "clone"
	OperationPull  OperationKind = "pull"
)

// OperationResult is the raw result of one git invocation.
// ExecutionError is set only when git could not be started.
type OperationResult struct {
	RepositoryName string
	Operation      OperationKind
	StandardOutput string
	StandardError  string
	ExitCode       int
	ExecutionError error
}

// OperationOutcome is the classified result of one git invocation.
type OperationOutcome struct {
	RepositoryName string
	Kind           OutcomeKind
	Detail         string
}

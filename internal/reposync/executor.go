package reposync

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/reposync/internal/execshell"
	"github.com/temirov/reposync/internal/repos/reconcile"
	"github.com/temirov/reposync/internal/repos/shared"
)

const (
	gitCloneSubcommandConstant          = "clone"
	gitPullSubcommandConstant           = "pull"
	gitTerminalPromptEnvironmentKey     = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledValue      = "0"
	operationClassifiedLogMessage       = "Classified repository operation"
	operationsStartedLogMessage         = "Starting repository operations"
	logFieldRepositoryConstant          = "repository"
	logFieldOutcomeConstant             = "outcome"
	logFieldPullCountConstant           = "pulls"
	logFieldCloneCountConstant          = "clones"
	logFieldConcurrencyConstant         = "concurrency"
	unboundedConcurrencyLimitConstant   = -1
	minimumBoundedConcurrencyConstant   = 1
	defaultMaximumConcurrencyConstant   = 0
	emptyRepositoryDirectoryNameMessage = "repository name is empty after removing the team prefix"
)

var errEmptyRepositoryDirectoryName = errors.New(emptyRepositoryDirectoryNameMessage)

// OperationExecutor runs git clone and pull invocations for a reconciliation plan.
type OperationExecutor struct {
	gitExecutor    shared.GitExecutor
	logger         *zap.Logger
	maxConcurrency int
}

// NewOperationExecutor constructs an executor. A maxConcurrency of zero or less leaves concurrency unbounded.
func NewOperationExecutor(gitExecutor shared.GitExecutor, logger *zap.Logger, maxConcurrency int) *OperationExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxConcurrency < defaultMaximumConcurrencyConstant {
		maxConcurrency = defaultMaximumConcurrencyConstant
	}
	return &OperationExecutor{gitExecutor: gitExecutor, logger: logger, maxConcurrency: maxConcurrency}
}

// Clone runs git clone for the repository inside the root directory using the prefix-stripped directory name.
func (executor *OperationExecutor) Clone(executionContext context.Context, repository shared.RemoteRepository, root string, prefix shared.TeamPrefix) OperationResult {
	result := OperationResult{RepositoryName: repository.Name, Operation: OperationClone}
	directoryName := repository.LocalDirectoryName(prefix)
	if len(directoryName) == 0 {
		result.ExecutionError = errEmptyRepositoryDirectoryName
		return result
	}
	return executor.run(executionContext, result, execshell.CommandDetails{
		Arguments:            []string{gitCloneSubcommandConstant, repository.CloneURL, directoryName},
		WorkingDirectory:     root,
		EnvironmentVariables: nonInteractiveEnvironment(),
	})
}

// Pull runs git pull inside the working copy.
func (executor *OperationExecutor) Pull(executionContext context.Context, repository shared.LocalRepository) OperationResult {
	result := OperationResult{RepositoryName: repository.Name, Operation: OperationPull}
	return executor.run(executionContext, result, execshell.CommandDetails{
		Arguments:            []string{gitPullSubcommandConstant},
		WorkingDirectory:     repository.Path,
		EnvironmentVariables: nonInteractiveEnvironment(),
	})
}

// Run pulls every existing repository and clones every new one concurrently, one task per repository,
// and waits for all of them. Pull outcomes precede clone outcomes, each in plan order.
func (executor *OperationExecutor) Run(executionContext context.Context, plan reconcile.Plan, root string) []OperationOutcome {
	pullCount := len(plan.ExistingRepositories)
	outcomes := make([]OperationOutcome, pullCount+len(plan.NewRepositories))

	executor.logger.Debug(operationsStartedLogMessage,
		zap.Int(logFieldPullCountConstant, pullCount),
		zap.Int(logFieldCloneCountConstant, len(plan.NewRepositories)),
		zap.Int(logFieldConcurrencyConstant, executor.maxConcurrency),
	)

	var group errgroup.Group
	group.SetLimit(executor.concurrencyLimit())

	for index, repository := range plan.ExistingRepositories {
		group.Go(func() error {
			outcomes[index] = executor.record(ClassifyPull(executor.Pull(executionContext, repository)))
			return nil
		})
	}
	for index, repository := range plan.NewRepositories {
		group.Go(func() error {
			outcomes[pullCount+index] = executor.record(ClassifyClone(executor.Clone(executionContext, repository, root, plan.Prefix)))
			return nil
		})
	}

	_ = group.Wait()
	return outcomes
}

func (executor *OperationExecutor) run(executionContext context.Context, result OperationResult, details execshell.CommandDetails) OperationResult {
	if executor.gitExecutor == nil {
		result.ExecutionError = execshell.ErrCommandRunnerNotConfigured
		return result
	}

	executionResult, executionError := executor.gitExecutor.ExecuteGit(executionContext, details)
	if executionError != nil {
		var failedError execshell.CommandFailedError
		if errors.As(executionError, &failedError) {
			executionResult = failedError.Result
			if executionResult.ExitCode == 0 {
				executionResult.ExitCode = 1
			}
		} else {
			result.ExecutionError = executionError
			return result
		}
	}

	result.StandardOutput = executionResult.StandardOutput
	result.StandardError = executionResult.StandardError
	result.ExitCode = executionResult.ExitCode
	return result
}

func (executor *OperationExecutor) record(outcome OperationOutcome) OperationOutcome {
	executor.logger.Debug(operationClassifiedLogMessage,
		zap.String(logFieldRepositoryConstant, outcome.RepositoryName),
		zap.String(logFieldOutcomeConstant, string(outcome.Kind)),
	)
	return outcome
}

func (executor *OperationExecutor) concurrencyLimit() int {
	if executor.maxConcurrency < minimumBoundedConcurrencyConstant {
		return unboundedConcurrencyLimitConstant
	}
	return executor.maxConcurrency
}

func nonInteractiveEnvironment() map[string]string {
	return map[string]string{gitTerminalPromptEnvironmentKey: gitTerminalPromptDisabledValue}
}

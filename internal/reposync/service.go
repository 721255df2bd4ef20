package reposync

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/reposync/internal/repos/reconcile"
	"github.com/temirov/reposync/internal/repos/remote"
	"github.com/temirov/reposync/internal/repos/shared"
	"github.com/temirov/reposync/internal/utils"
)

const (
	rootNotDirectoryMessageConstant  = "repository root is not a directory"
	tokenMissingMessageConstant      = "GitHub token not provided"
	rootErrorTemplateConstant        = "%w: %s"
	inventoryErrorTemplateConstant   = "unable to list team repositories: %w"
	renderErrorTemplateConstant      = "unable to render report: %w"
	localScanCompletedLogMessage     = "Scanned local repositories"
	inventoryCompletedLogMessage     = "Listed team repositories"
	inventoryDegradedLogMessage      = "Team repository listing is incomplete"
	planComputedLogMessage           = "Computed synchronization plan"
	synchronizationDoneLogMessage    = "Synchronization finished"
	logFieldRootConstant             = "root"
	logFieldLocalCountConstant       = "local_repositories"
	logFieldActiveRemoteConstant     = "active_remote_repositories"
	logFieldArchivedRemoteConstant   = "archived_remote_repositories"
	logFieldPagesConstant            = "pages"
	logFieldNewCountConstant         = "new_repositories"
	logFieldExistingCountConstant    = "existing_repositories"
	logFieldArchivedLocalConstant    = "archived_local_repositories"
	logFieldNoOpCountConstant        = "pull_noop"
	logFieldFailureCountConstant     = "failures"
	logFieldDryRunConstant           = "dry_run"
	logFieldDurationConstant         = "duration"
	logFieldExcludePatternsConstant  = "exclude"
)

var (
	// ErrRootNotDirectory indicates the repository root is missing or not a directory.
	ErrRootNotDirectory = errors.New(rootNotDirectoryMessageConstant)
	// ErrEndpointMissing indicates no team repositories endpoint was configured.
	ErrEndpointMissing = remote.ErrEndpointMissing
	// ErrTokenMissing indicates no GitHub token was configured.
	ErrTokenMissing = errors.New(tokenMissingMessageConstant)
)

// Options configure a synchronization run.
type Options struct {
	EndpointURL      string
	Root             string
	Token            string
	TeamPrefix       shared.TeamPrefix
	PaginationPolicy remote.PaginationPolicy
	MaxConcurrency   int
	DryRun           bool
	ReportFormat     ReportFormat
	Exclude          []string
}

// Service orchestrates a synchronization run.
type Service struct {
	scanner         shared.RepositoryScanner
	inventoryLister remote.InventoryLister
	gitExecutor     shared.GitExecutor
	fileSystem      shared.FileSystem
	logger          *zap.Logger
	outputWriter    io.Writer
	clock           shared.Clock
}

// NewService constructs a Service from its collaborators.
func NewService(scanner shared.RepositoryScanner, inventoryLister remote.InventoryLister, gitExecutor shared.GitExecutor, fileSystem shared.FileSystem, logger *zap.Logger, outputWriter io.Writer, clock shared.Clock) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if outputWriter == nil {
		outputWriter = io.Discard
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &Service{
		scanner:         scanner,
		inventoryLister: inventoryLister,
		gitExecutor:     gitExecutor,
		fileSystem:      fileSystem,
		logger:          logger,
		outputWriter:    utils.NewFlushingWriter(outputWriter),
		clock:           clock,
	}
}

// Run validates the options, then scans, lists, reconciles, executes and renders the report.
// Only configuration problems are returned as errors; per-repository failures land in the report.
func (service *Service) Run(executionContext context.Context, options Options) (Report, error) {
	startedAt := service.clock.Now()

	root, validationError := service.validate(options)
	if validationError != nil {
		return Report{}, validationError
	}

	localRepositories := service.scanner.ScanRepositories(root)
	service.logger.Debug(localScanCompletedLogMessage,
		zap.String(logFieldRootConstant, root),
		zap.Int(logFieldLocalCountConstant, len(localRepositories)),
	)

	inventory, inventoryError := service.inventoryLister.ListTeamRepositories(executionContext, remote.TeamRepositoriesRequest{
		EndpointURL:      options.EndpointURL,
		Prefix:           options.TeamPrefix,
		PaginationPolicy: options.PaginationPolicy,
	})
	if inventoryError != nil {
		return Report{}, fmt.Errorf(inventoryErrorTemplateConstant, inventoryError)
	}
	if inventory.PageError != nil {
		service.logger.Warn(inventoryDegradedLogMessage, zap.Error(inventory.PageError), zap.Int(logFieldPagesConstant, inventory.PagesFetched))
	}
	service.logger.Debug(inventoryCompletedLogMessage,
		zap.Int(logFieldActiveRemoteConstant, len(inventory.Active)),
		zap.Int(logFieldArchivedRemoteConstant, len(inventory.Archived)),
		zap.Int(logFieldPagesConstant, inventory.PagesFetched),
	)

	plan := reconcile.Reconcile(inventory, localRepositories, options.TeamPrefix).Exclude(options.Exclude)
	service.logger.Debug(planComputedLogMessage,
		zap.Int(logFieldNewCountConstant, len(plan.NewRepositories)),
		zap.Int(logFieldExistingCountConstant, len(plan.ExistingRepositories)),
		zap.Int(logFieldArchivedLocalConstant, len(plan.ArchivedLocalRepositories)),
		zap.Strings(logFieldExcludePatternsConstant, options.Exclude),
	)

	var report Report
	if options.DryRun {
		report = PlanReport(plan)
	} else {
		operationExecutor := NewOperationExecutor(service.gitExecutor, service.logger, options.MaxConcurrency)
		report = Aggregate(operationExecutor.Run(executionContext, plan, root), plan.ArchivedLocalRepositories)
	}

	if renderError := NewReportRenderer(options.ReportFormat).Render(service.outputWriter, report); renderError != nil {
		return report, fmt.Errorf(renderErrorTemplateConstant, renderError)
	}

	service.logger.Info(synchronizationDoneLogMessage,
		zap.Bool(logFieldDryRunConstant, options.DryRun),
		zap.Int(logFieldNoOpCountConstant, report.NoOpCount()),
		zap.Int(logFieldFailureCountConstant, report.FailureCount()),
		zap.Duration(logFieldDurationConstant, service.clock.Now().Sub(startedAt)),
	)
	return report, nil
}

func (service *Service) validate(options Options) (string, error) {
	if len(options.EndpointURL) == 0 {
		return "", ErrEndpointMissing
	}
	if len(options.Token) == 0 {
		return "", ErrTokenMissing
	}

	root := options.Root
	if absoluteRoot, absoluteError := service.fileSystem.Abs(root); absoluteError == nil {
		root = absoluteRoot
	}
	rootInfo, statError := service.fileSystem.Stat(root)
	if statError != nil || !rootInfo.IsDir() {
		return "", fmt.Errorf(rootErrorTemplateConstant, ErrRootNotDirectory, root)
	}
	return root, nil
}

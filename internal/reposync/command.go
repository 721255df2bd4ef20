package reposync

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/reposync/internal/execshell"
	"github.com/temirov/reposync/internal/githubauth"
	"github.com/temirov/reposync/internal/repos/dependencies"
	"github.com/temirov/reposync/internal/repos/remote"
	"github.com/temirov/reposync/internal/repos/shared"
	"github.com/temirov/reposync/internal/ui"
	pathutils "github.com/temirov/reposync/internal/utils/path"
)

const (
	commandUseConstant                  = "sync"
	commandShortDescriptionConstant     = "Clone new team repositories and pull existing working copies"
	commandLongDescriptionConstant      = "sync lists the repositories of a GitHub team, clones the ones missing under the root directory, pulls every working copy found there, and reports archived repositories that are still present locally."
	commandExecutionErrorTemplate       = "sync failed: %w"
	unexpectedArgumentsMessageConstant  = "sync does not accept positional arguments"
	flagEndpointURLNameConstant         = "endpoint-url"
	flagEndpointURLShorthandConstant    = "u"
	flagEndpointURLDescriptionConstant  = "Team repositories endpoint, e.g. https://api.github.com/organizations/<organization_id>/team/<team_id>/repos"
	flagRootNameConstant                = "root"
	flagRootShorthandConstant           = "d"
	flagRootDescriptionConstant         = "Directory holding the team working copies"
	flagTokenNameConstant               = "token"
	flagTokenShorthandConstant          = "t"
	flagTokenDescriptionConstant        = "GitHub token allowed to list the team repositories (defaults to GH_TOKEN, GITHUB_TOKEN or GITHUB_API_TOKEN)"
	flagTeamPrefixNameConstant          = "team-prefix"
	flagTeamPrefixShorthandConstant     = "p"
	flagTeamPrefixDescriptionConstant   = "Repository name prefix removed from local directory names; empty when the team uses none"
	flagPaginationNameConstant          = "pagination"
	flagPaginationDescriptionConstant   = "Pagination stop rule: filtered (stop at a page without matching repositories) or provider (stop at an empty page)"
	flagConcurrencyNameConstant         = "concurrency"
	flagConcurrencyDescriptionConstant  = "Maximum number of concurrent git operations (0 runs one per repository)"
	flagDryRunNameConstant              = "dry-run"
	flagDryRunDescriptionConstant       = "Report the planned clones and pulls without running git"
	flagReportFormatNameConstant        = "report-format"
	flagReportFormatDescriptionConstant = "Report format: text or yaml"
	flagExcludeNameConstant             = "exclude"
	flagExcludeDescriptionConstant      = "Glob pattern of local directory names to skip (repeatable)"
	tokenResolvedLogMessage             = "Resolved GitHub token"
	logFieldTokenSourceConstant         = "token_source"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the sync command configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the sync cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	HumanReadableLoggingProvider func() bool
	Scanner                      shared.RepositoryScanner
	InventoryLister              remote.InventoryLister
	GitExecutor                  shared.GitExecutor
	FileSystem                   shared.FileSystem
	TokenResolver                *githubauth.TokenResolver
	HomeExpander                 *pathutils.HomeExpander
	Clock                        shared.Clock
}

// Build constructs the sync command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().StringP(flagEndpointURLNameConstant, flagEndpointURLShorthandConstant, "", flagEndpointURLDescriptionConstant)
	command.Flags().StringP(flagRootNameConstant, flagRootShorthandConstant, "", flagRootDescriptionConstant)
	command.Flags().StringP(flagTokenNameConstant, flagTokenShorthandConstant, "", flagTokenDescriptionConstant)
	command.Flags().StringP(flagTeamPrefixNameConstant, flagTeamPrefixShorthandConstant, "", flagTeamPrefixDescriptionConstant)
	command.Flags().String(flagPaginationNameConstant, "", flagPaginationDescriptionConstant)
	command.Flags().Int(flagConcurrencyNameConstant, 0, flagConcurrencyDescriptionConstant)
	command.Flags().Bool(flagDryRunNameConstant, false, flagDryRunDescriptionConstant)
	command.Flags().String(flagReportFormatNameConstant, "", flagReportFormatDescriptionConstant)
	command.Flags().StringSlice(flagExcludeNameConstant, nil, flagExcludeDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	logger := builder.resolveLogger()

	options, optionsError := builder.parseOptions(command, logger)
	if optionsError != nil {
		return optionsError
	}

	executorLogger := logger
	commandObserver := builder.resolveCommandObserver(logger)
	if commandObserver != nil {
		executorLogger = zap.NewNop()
	}
	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, executorLogger, commandObserver)
	if executorError != nil {
		return executorError
	}

	inventoryLister, listerError := dependencies.ResolveInventoryClient(builder.InventoryLister, options.Token, logger)
	if listerError != nil {
		return listerError
	}

	service := NewService(
		dependencies.ResolveRepositoryScanner(builder.Scanner),
		inventoryLister,
		gitExecutor,
		dependencies.ResolveFileSystem(builder.FileSystem),
		logger,
		command.OutOrStdout(),
		builder.Clock,
	)

	if _, runError := service.Run(command.Context(), options); runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplate, runError)
	}
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, logger *zap.Logger) (Options, error) {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	flags := command.Flags()
	if flags.Changed(flagEndpointURLNameConstant) {
		configuration.EndpointURL, _ = flags.GetString(flagEndpointURLNameConstant)
	}
	if flags.Changed(flagRootNameConstant) {
		configuration.Root, _ = flags.GetString(flagRootNameConstant)
	}
	if flags.Changed(flagTokenNameConstant) {
		configuration.Token, _ = flags.GetString(flagTokenNameConstant)
	}
	if flags.Changed(flagTeamPrefixNameConstant) {
		configuration.TeamPrefix, _ = flags.GetString(flagTeamPrefixNameConstant)
	}
	if flags.Changed(flagPaginationNameConstant) {
		configuration.Pagination, _ = flags.GetString(flagPaginationNameConstant)
	}
	if flags.Changed(flagConcurrencyNameConstant) {
		configuration.Concurrency, _ = flags.GetInt(flagConcurrencyNameConstant)
	}
	if flags.Changed(flagDryRunNameConstant) {
		configuration.DryRun, _ = flags.GetBool(flagDryRunNameConstant)
	}
	if flags.Changed(flagReportFormatNameConstant) {
		configuration.ReportFormat, _ = flags.GetString(flagReportFormatNameConstant)
	}
	if flags.Changed(flagExcludeNameConstant) {
		configuration.Exclude, _ = flags.GetStringSlice(flagExcludeNameConstant)
	}

	homeExpander := builder.HomeExpander
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}
	configuration = configuration.sanitize(homeExpander)

	paginationPolicy, paginationError := remote.ParsePaginationPolicy(configuration.Pagination)
	if paginationError != nil {
		return Options{}, paginationError
	}
	reportFormat, formatError := ParseReportFormat(configuration.ReportFormat)
	if formatError != nil {
		return Options{}, formatError
	}

	tokenResolver := builder.TokenResolver
	if tokenResolver == nil {
		tokenResolver = githubauth.NewTokenResolver(nil)
	}
	token, tokenSource, _ := tokenResolver.Resolve(configuration.Token)
	logger.Debug(tokenResolvedLogMessage, zap.String(logFieldTokenSourceConstant, tokenSource))

	return Options{
		EndpointURL:      configuration.EndpointURL,
		Root:             configuration.Root,
		Token:            token,
		TeamPrefix:       shared.TeamPrefix(configuration.TeamPrefix),
		PaginationPolicy: paginationPolicy,
		MaxConcurrency:   configuration.Concurrency,
		DryRun:           configuration.DryRun,
		ReportFormat:     reportFormat,
		Exclude:          configuration.Exclude,
	}, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// resolveCommandObserver returns a console renderer for git lifecycle events when console logging is selected.
func (builder *CommandBuilder) resolveCommandObserver(logger *zap.Logger) execshell.CommandEventObserver {
	if builder.HumanReadableLoggingProvider == nil || !builder.HumanReadableLoggingProvider() {
		return nil
	}
	return ui.NewConsoleCommandEventLogger(logger)
}

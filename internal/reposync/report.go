package reposync

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/reposync/internal/repos/reconcile"
	"github.com/temirov/reposync/internal/repos/shared"
)

const (
	noOpCountLineTemplate       = "Pull no-op count: %d\n"
	updatedLineTemplate         = "%s: updated\n"
	clonedLineTemplate          = "%s: cloned\n"
	archivedLineTemplate        = "%s: archived\n"
	cloneFailureLineTemplate    = "%s: failed to clone:\n"
	pullFailureLineTemplate     = "%s: failed to pull:\n"
	detailLineTemplate          = "  %s\n"
	dryRunHeaderLineTemplate    = "Dry run: %d pulls and %d clones planned\n"
	plannedPullLineTemplate     = "%s: would pull\n"
	plannedCloneLineTemplate    = "%s: would clone into %s\n"
	unknownReportFormatTemplate = "unsupported report format: %s"
)

// ReportFormat selects the report renderer.
type ReportFormat string

// Supported report formats.
const (
	ReportFormatText ReportFormat = "text"
	ReportFormatYAML ReportFormat = "yaml"
)

// ParseReportFormat converts a configuration value into a ReportFormat. Empty values select text.
func ParseReportFormat(value string) (ReportFormat, error) {
	switch ReportFormat(strings.ToLower(strings.TrimSpace(value))) {
	case "", ReportFormatText:
		return ReportFormatText, nil
	case ReportFormatYAML:
		return ReportFormatYAML, nil
	default:
		return "", fmt.Errorf(unknownReportFormatTemplate, value)
	}
}

// PlannedClone describes a clone a dry run would perform.
type PlannedClone struct {
	RepositoryName string
	DirectoryName  string
}

// Report groups classified outcomes by kind. Every bucket exists even when empty.
type Report struct {
	buckets       map[OutcomeKind][]OperationOutcome
	Archived      []string
	DryRun        bool
	PlannedPulls  []string
	PlannedClones []PlannedClone
}

// Aggregate folds the outcomes into buckets, keeping insertion order, and records the archived repositories.
func Aggregate(outcomes []OperationOutcome, archived []shared.RemoteRepository) Report {
	report := newReport(archived)
	for _, outcome := range outcomes {
		report.buckets[outcome.Kind] = append(report.buckets[outcome.Kind], outcome)
	}
	return report
}

// PlanReport describes what a run would do without running git.
func PlanReport(plan reconcile.Plan) Report {
	report := newReport(plan.ArchivedLocalRepositories)
	report.DryRun = true
	for _, repository := range plan.ExistingRepositories {
		report.PlannedPulls = append(report.PlannedPulls, repository.Name)
	}
	for _, repository := range plan.NewRepositories {
		report.PlannedClones = append(report.PlannedClones, PlannedClone{
			RepositoryName: repository.Name,
			DirectoryName:  repository.LocalDirectoryName(plan.Prefix),
		})
	}
	return report
}

func newReport(archived []shared.RemoteRepository) Report {
	buckets := make(map[OutcomeKind][]OperationOutcome, len(OutcomeKinds))
	for _, kind := range OutcomeKinds {
		buckets[kind] = []OperationOutcome{}
	}
	archivedNames := make([]string, 0, len(archived))
	for _, repository := range archived {
		archivedNames = append(archivedNames, repository.Name)
	}
	return Report{buckets: buckets, Archived: archivedNames}
}

// Bucket returns the outcomes of the given kind in insertion order.
func (report Report) Bucket(kind OutcomeKind) []OperationOutcome {
	bucket, exists := report.buckets[kind]
	if !exists {
		return []OperationOutcome{}
	}
	return bucket
}

// NoOpCount returns the number of pulls that changed nothing.
func (report Report) NoOpCount() int {
	return len(report.Bucket(OutcomePullNoOp))
}

// FailureCount returns the number of failed clones and pulls.
func (report Report) FailureCount() int {
	return len(report.Bucket(OutcomeCloneError)) + len(report.Bucket(OutcomePullError))
}

// ReportRenderer writes a report.
type ReportRenderer interface {
	Render(writer io.Writer, report Report) error
}

// NewReportRenderer returns the renderer for the format.
func NewReportRenderer(format ReportFormat) ReportRenderer {
	if format == ReportFormatYAML {
		return YAMLReportRenderer{}
	}
	return TextReportRenderer{}
}

// TextReportRenderer writes the line-oriented summary.
type TextReportRenderer struct{}

// Render writes the no-op count followed by updated, cloned, archived, clone failure and pull failure lines.
func (TextReportRenderer) Render(writer io.Writer, report Report) error {
	lines := &lineWriter{writer: writer}
	if report.DryRun {
		lines.printf(dryRunHeaderLineTemplate, len(report.PlannedPulls), len(report.PlannedClones))
		for _, name := range report.PlannedPulls {
			lines.printf(plannedPullLineTemplate, name)
		}
		for _, planned := range report.PlannedClones {
			lines.printf(plannedCloneLineTemplate, planned.RepositoryName, planned.DirectoryName)
		}
		for _, name := range report.Archived {
			lines.printf(archivedLineTemplate, name)
		}
		return lines.err
	}

	lines.printf(noOpCountLineTemplate, report.NoOpCount())
	for _, outcome := range report.Bucket(OutcomeUpdated) {
		lines.printf(updatedLineTemplate, outcome.RepositoryName)
	}
	for _, outcome := range report.Bucket(OutcomeCloned) {
		lines.printf(clonedLineTemplate, outcome.RepositoryName)
	}
	for _, name := range report.Archived {
		lines.printf(archivedLineTemplate, name)
	}
	for _, outcome := range report.Bucket(OutcomeCloneError) {
		lines.printf(cloneFailureLineTemplate, outcome.RepositoryName)
		lines.printDetail(outcome.Detail)
	}
	for _, outcome := range report.Bucket(OutcomePullError) {
		lines.printf(pullFailureLineTemplate, outcome.RepositoryName)
		lines.printDetail(outcome.Detail)
	}
	return lines.err
}

// lineWriter keeps the first write error and skips later writes.
type lineWriter struct {
	writer io.Writer
	err    error
}

func (lines *lineWriter) printf(format string, arguments ...any) {
	if lines.err != nil {
		return
	}
	_, lines.err = fmt.Fprintf(lines.writer, format, arguments...)
}

func (lines *lineWriter) printDetail(detail string) {
	if len(detail) == 0 {
		return
	}
	for _, line := range strings.Split(strings.ReplaceAll(detail, "\r\n", "\n"), "\n") {
		lines.printf(detailLineTemplate, line)
	}
}

// YAMLReportRenderer encodes the report as a YAML document.
type YAMLReportRenderer struct{}

type yamlOutcome struct {
	Name   string `yaml:"name"`
	Detail string `yaml:"detail,omitempty"`
}

type yamlPlannedClone struct {
	Name      string `yaml:"name"`
	Directory string `yaml:"directory"`
}

type yamlReport struct {
	DryRun        bool               `yaml:"dry_run,omitempty"`
	PullNoOpCount int                `yaml:"pull_noop_count"`
	Updated       []yamlOutcome      `yaml:"updated"`
	Cloned        []yamlOutcome      `yaml:"cloned"`
	Archived      []string           `yaml:"archived"`
	CloneErrors   []yamlOutcome      `yaml:"clone_errors"`
	PullErrors    []yamlOutcome      `yaml:"pull_errors"`
	PlannedPulls  []string           `yaml:"planned_pulls,omitempty"`
	PlannedClones []yamlPlannedClone `yaml:"planned_clones,omitempty"`
}

// Render encodes every bucket, including empty ones.
func (YAMLReportRenderer) Render(writer io.Writer, report Report) error {
	document := yamlReport{
		DryRun:        report.DryRun,
		PullNoOpCount: report.NoOpCount(),
		Updated:       toYAMLOutcomes(report.Bucket(OutcomeUpdated)),
		Cloned:        toYAMLOutcomes(report.Bucket(OutcomeCloned)),
		Archived:      append([]string{}, report.Archived...),
		CloneErrors:   toYAMLOutcomes(report.Bucket(OutcomeCloneError)),
		PullErrors:    toYAMLOutcomes(report.Bucket(OutcomePullError)),
		PlannedPulls:  report.PlannedPulls,
	}
	for _, planned := range report.PlannedClones {
		document.PlannedClones = append(document.PlannedClones, yamlPlannedClone{Name: planned.RepositoryName, Directory: planned.DirectoryName})
	}

	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if encodeError := encoder.Encode(document); encodeError != nil {
		return encodeError
	}
	return encoder.Close()
}

func toYAMLOutcomes(outcomes []OperationOutcome) []yamlOutcome {
	converted := make([]yamlOutcome, 0, len(outcomes))
	for _, outcome := range outcomes {
		converted = append(converted, yamlOutcome{Name: outcome.RepositoryName, Detail: outcome.Detail})
	}
	return converted
}

package reposync

import (
	"fmt"
	"strings"
)

const (
	pullExitCodeDetailTemplate  = "git pull exited with code %d"
	cloneExitCodeDetailTemplate = "git clone exited with code %d"
	lineSeparatorConstant       = "\n"
)

type matchMode int

const (
	matchContains matchMode = iota
	matchPrefix
)

// outcomePattern maps a lower-case needle to the outcome it implies.
type outcomePattern struct {
	needle string
	mode   matchMode
	kind   OutcomeKind
}

func (pattern outcomePattern) matches(lowerCaseText string) bool {
	if pattern.mode == matchPrefix {
		return strings.HasPrefix(lowerCaseText, pattern.needle)
	}
	return strings.Contains(lowerCaseText, pattern.needle)
}

// pullFailurePatterns mark a pull stderr line as a failure whatever the exit code. Needles hold spaces,
// parentheses or colons so repository and branch names on fetch lines never match them.
var pullFailurePatterns = []outcomePattern{
	{needle: "fatal:", mode: matchPrefix, kind: OutcomePullError},
	{needle: "error:", mode: matchPrefix, kind: OutcomePullError},
	{needle: "aborting", mode: matchPrefix, kind: OutcomePullError},
	{needle: "conflict (", kind: OutcomePullError},
	{needle: "automatic merge failed", kind: OutcomePullError},
	{needle: "resulted in conflicts", kind: OutcomePullError},
	{needle: "you have unmerged files", kind: OutcomePullError},
	{needle: "repository not found", kind: OutcomePullError},
	{needle: "could not read from remote", kind: OutcomePullError},
	{needle: "cannot pull with rebase", kind: OutcomePullError},
	{needle: "please commit your changes or stash them", kind: OutcomePullError},
}

// pullBenignStandardErrorPatterns describe stderr lines git prints on successful pulls.
var pullBenignStandardErrorPatterns = []outcomePattern{
	{needle: "from ", mode: matchPrefix},
	{needle: "remote: ", mode: matchPrefix},
	{needle: "hint:", mode: matchPrefix},
	{needle: "created autostash", mode: matchPrefix},
	{needle: "applied autostash", mode: matchPrefix},
	{needle: "unpacking objects"},
	{needle: " -> "},
	{needle: "[new tag]"},
	{needle: "[new branch]"},
	{needle: "successfully rebased and updated"},
	{needle: "is up to date"},
	{needle: "already up to date"},
}

// pullStandardOutputPatterns classify pull stdout once stderr and the exit code are clean.
var pullStandardOutputPatterns = []outcomePattern{
	{needle: "already up to date", kind: OutcomePullNoOp},
	{needle: "already up-to-date", kind: OutcomePullNoOp},
	{needle: "is up to date", kind: OutcomePullNoOp},
}

// pullTagOnlyLinePatterns describe stdout lines that report fetched tags without moving a branch.
var pullTagOnlyLinePatterns = []outcomePattern{
	{needle: "from ", mode: matchPrefix},
	{needle: "[new tag]"},
}

var cloneFailurePatterns = []outcomePattern{
	{needle: "repository not found", kind: OutcomeCloneError},
	{needle: "fatal:", kind: OutcomeCloneError},
}

// ClassifyPull maps a finished git pull to its outcome.
func ClassifyPull(result OperationResult) OperationOutcome {
	outcome := OperationOutcome{RepositoryName: result.RepositoryName}
	standardError := strings.TrimSpace(result.StandardError)
	standardOutput := strings.TrimSpace(result.StandardOutput)

	if result.ExecutionError != nil {
		outcome.Kind = OutcomePullError
		outcome.Detail = result.ExecutionError.Error()
		return outcome
	}

	if pullStandardErrorFailed(strings.ToLower(standardError)) {
		outcome.Kind = OutcomePullError
		outcome.Detail = standardError
		return outcome
	}

	if result.ExitCode != 0 {
		outcome.Kind = OutcomePullError
		outcome.Detail = firstNonEmpty(standardError, standardOutput, fmt.Sprintf(pullExitCodeDetailTemplate, result.ExitCode))
		return outcome
	}

	lowerCaseStandardOutput := strings.ToLower(standardOutput)
	if kind, matched := firstMatch(pullStandardOutputPatterns, lowerCaseStandardOutput); matched {
		outcome.Kind = kind
		return outcome
	}
	if len(lowerCaseStandardOutput) > 0 && strings.Contains(lowerCaseStandardOutput, "[new tag]") && allLinesMatch(lowerCaseStandardOutput, pullTagOnlyLinePatterns) {
		outcome.Kind = OutcomePullNoOp
		return outcome
	}

	outcome.Kind = OutcomeUpdated
	outcome.Detail = standardOutput
	return outcome
}

// ClassifyClone maps a finished git clone to its outcome.
func ClassifyClone(result OperationResult) OperationOutcome {
	outcome := OperationOutcome{RepositoryName: result.RepositoryName}
	standardError := strings.TrimSpace(result.StandardError)

	if result.ExecutionError != nil {
		outcome.Kind = OutcomeCloneError
		outcome.Detail = result.ExecutionError.Error()
		return outcome
	}
	if result.ExitCode != 0 {
		outcome.Kind = OutcomeCloneError
		outcome.Detail = firstNonEmpty(standardError, strings.TrimSpace(result.StandardOutput), fmt.Sprintf(cloneExitCodeDetailTemplate, result.ExitCode))
		return outcome
	}
	if kind, matched := firstMatch(cloneFailurePatterns, strings.ToLower(standardError)); matched {
		outcome.Kind = kind
		outcome.Detail = standardError
		return outcome
	}

	outcome.Kind = OutcomeCloned
	return outcome
}

// Classify dispatches to the classifier of the result's operation.
func Classify(result OperationResult) OperationOutcome {
	if result.Operation == OperationClone {
		return ClassifyClone(result)
	}
	return ClassifyPull(result)
}

// pullStandardErrorFailed checks stderr line by line: a line matching a failure pattern fails the pull,
// a benign fetch or rebase line is skipped, and any other line fails it as well.
func pullStandardErrorFailed(lowerCaseStandardError string) bool {
	for _, line := range strings.Split(lowerCaseStandardError, lineSeparatorConstant) {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 {
			continue
		}
		if _, failed := firstMatch(pullFailurePatterns, trimmedLine); failed {
			return true
		}
		if _, benign := firstMatch(pullBenignStandardErrorPatterns, trimmedLine); !benign {
			return true
		}
	}
	return false
}

func firstMatch(patterns []outcomePattern, lowerCaseText string) (OutcomeKind, bool) {
	if len(lowerCaseText) == 0 {
		return "", false
	}
	for _, pattern := range patterns {
		if pattern.matches(lowerCaseText) {
			return pattern.kind, true
		}
	}
	return "", false
}

// allLinesMatch reports whether every non-blank line matches one of the patterns.
func allLinesMatch(lowerCaseText string, patterns []outcomePattern) bool {
	for _, line := range strings.Split(lowerCaseText, lineSeparatorConstant) {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 {
			continue
		}
		if _, matched := firstMatch(patterns, trimmedLine); !matched {
			return false
		}
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if len(value) > 0 {
			return value
		}
	}
	return ""
}

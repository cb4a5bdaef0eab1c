package maintenance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/temirov/orgmaint/internal/gitdata"
	"github.com/temirov/orgmaint/internal/utils"
)

const (
	runnerMissingListerMessageConstant      = "maintenance runner requires a repository lister"
	runnerMissingActionMessageConstant      = "maintenance runner requires an action"
	runnerMissingTargetsMessageConstant     = "at least one organization or repository must be provided"
	repositoryFailureTemplateConstant       = "%s: %v"
	organizationListedMessageConstant       = "organization repositories listed"
	repositoryFilteredMessageConstant       = "repository excluded by filter"
	repositoryProcessedMessageConstant      = "repository processed"
	repositoryFailedMessageConstant         = "repository failed"
	runCompletedMessageConstant             = "maintenance run completed"
	logFieldOrganizationConstant            = "organization"
	logFieldRepositoryCountConstant         = "repository_count"
	logFieldOutcomeConstant                 = "outcome"
	logFieldDetailConstant                  = "detail"
	logFieldSucceededConstant               = "succeeded"
	logFieldUnchangedConstant               = "unchanged"
	logFieldSkippedConstant                 = "skipped"
	logFieldPlannedConstant                 = "planned"
	logFieldFailedConstant                  = "failed"
	logFieldRepositoryFullNameConstant      = "repository_full_name"
	organizationTargetLabelTemplateConstant = "org:%s"
)

var (
	// ErrRepositoryListerNotConfigured indicates a Runner built without a RepositoryLister.
	ErrRepositoryListerNotConfigured = errors.New(runnerMissingListerMessageConstant)
	// ErrActionNotConfigured indicates Run was called without an Action.
	ErrActionNotConfigured = errors.New(runnerMissingActionMessageConstant)
	// ErrNoTargets indicates a run without organizations or repositories.
	ErrNoTargets = errors.New(runnerMissingTargetsMessageConstant)
)

// Outcome classifies how a repository fared during a run.
type Outcome string

// Outcome enumerations.
const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeSkipped   Outcome = "skipped"
	OutcomePlanned   Outcome = "planned"
	OutcomeFailed    Outcome = "failed"
)

// RepositoryLister resolves repository targets through the remote.
type RepositoryLister interface {
	ListOrganizationRepositories(executionContext context.Context, organization string) ([]gitdata.Repository, error)
	GetRepository(executionContext context.Context, owner string, name string) (gitdata.Repository, error)
}

// ActionResult describes a repository the action handled without error.
type ActionResult struct {
	Detail string
	// Planned marks a dry run that stopped before any write.
	Planned bool
}

// Action is the per-repository unit of work of a run.
type Action interface {
	Name() string
	Apply(executionContext context.Context, repository gitdata.Repository) (ActionResult, error)
}

// RepositoryFailureError attributes a failure to the repository or organization target it came from.
type RepositoryFailureError struct {
	Target string
	Cause  error
}

// Error describes the failure.
func (failureError RepositoryFailureError) Error() string {
	return fmt.Sprintf(repositoryFailureTemplateConstant, failureError.Target, failureError.Cause)
}

// Unwrap exposes the underlying failure.
func (failureError RepositoryFailureError) Unwrap() error {
	return failureError.Cause
}

// RepositoryResult is one line of a run report.
type RepositoryResult struct {
	Repository string  `json:"repository" yaml:"repository"`
	Outcome    Outcome `json:"outcome" yaml:"outcome"`
	Detail     string  `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Summary counts results per outcome.
type Summary struct {
	Succeeded int `json:"succeeded" yaml:"succeeded"`
	Unchanged int `json:"unchanged" yaml:"unchanged"`
	Skipped   int `json:"skipped" yaml:"skipped"`
	Planned   int `json:"planned" yaml:"planned"`
	Failed    int `json:"failed" yaml:"failed"`
}

// Report is the outcome of a run.
type Report struct {
	Operation string             `json:"operation" yaml:"operation"`
	Results   []RepositoryResult `json:"results" yaml:"results"`
	Summary   Summary            `json:"summary" yaml:"summary"`
}

// ClassifyOutcome maps an action error to its outcome.
func ClassifyOutcome(actionError error) Outcome {
	switch {
	case actionError == nil:
		return OutcomeSucceeded
	case errors.Is(actionError, gitdata.ErrNoChanges):
		return OutcomeUnchanged
	case errors.Is(actionError, gitdata.ErrNotFound):
		return OutcomeSkipped
	default:
		return OutcomeFailed
	}
}

// Runner visits repositories one at a time and applies an action to each.
type Runner struct {
	logger        *zap.Logger
	lister        RepositoryLister
	filter        RepositoryFilter
	contextAccess utils.CommandContextAccessor
}

// NewRunner constructs a Runner.
func NewRunner(logger *zap.Logger, lister RepositoryLister, filter RepositoryFilter) (*Runner, error) {
	if lister == nil {
		return nil, ErrRepositoryListerNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, lister: lister, filter: filter, contextAccess: utils.NewCommandContextAccessor()}, nil
}

// Run resolves targets and applies action to every repository in order. A failing repository never stops
// the run; failures are returned together once every repository has been visited. Cancellation of
// executionContext ends the run early.
func (runner *Runner) Run(executionContext context.Context, targets Targets, action Action) (Report, error) {
	if action == nil {
		return Report{}, ErrActionNotConfigured
	}
	if len(targets.Organizations) == 0 && len(targets.Repositories) == 0 {
		return Report{}, ErrNoTargets
	}

	operationContext := runner.contextAccess.WithOperationName(executionContext, action.Name())
	logger := utils.ContextualLogger(runner.logger, operationContext)
	report := Report{Operation: action.Name()}
	var failures error

	recordFailure := func(target string, cause error) {
		failures = multierr.Append(failures, RepositoryFailureError{Target: target, Cause: cause})
	}

	repositories, resolutionResults, resolutionErrors := runner.resolveRepositories(operationContext, targets)
	for resolutionIndex := range resolutionResults {
		report.Results = append(report.Results, resolutionResults[resolutionIndex])
		recordFailure(resolutionResults[resolutionIndex].Repository, resolutionErrors[resolutionIndex])
	}

	for _, repository := range repositories {
		if contextError := operationContext.Err(); contextError != nil {
			failures = multierr.Append(failures, contextError)
			break
		}

		repositoryContext := runner.contextAccess.WithRepository(operationContext, repository.FullName())
		actionResult, actionError := action.Apply(repositoryContext, repository)
		result := RepositoryResult{Repository: repository.FullName(), Outcome: ClassifyOutcome(actionError), Detail: actionResult.Detail}
		if actionError == nil && actionResult.Planned {
			result.Outcome = OutcomePlanned
		}
		if actionError != nil {
			result.Detail = actionError.Error()
		}
		report.Results = append(report.Results, result)

		repositoryLogger := utils.ContextualLogger(runner.logger, repositoryContext)
		if result.Outcome == OutcomeFailed {
			repositoryLogger.Warn(repositoryFailedMessageConstant, zap.Error(actionError))
			recordFailure(result.Repository, actionError)
			continue
		}
		repositoryLogger.Info(
			repositoryProcessedMessageConstant,
			zap.String(logFieldOutcomeConstant, string(result.Outcome)),
			zap.String(logFieldDetailConstant, result.Detail),
		)
	}

	report.Summary = summarize(report.Results)
	logger.Info(
		runCompletedMessageConstant,
		zap.Int(logFieldSucceededConstant, report.Summary.Succeeded),
		zap.Int(logFieldUnchangedConstant, report.Summary.Unchanged),
		zap.Int(logFieldSkippedConstant, report.Summary.Skipped),
		zap.Int(logFieldPlannedConstant, report.Summary.Planned),
		zap.Int(logFieldFailedConstant, report.Summary.Failed),
	)

	return report, failures
}

// resolveRepositories expands explicit repositories first and organizations second, dropping duplicates
// and repositories the filter rejects. Targets that cannot be resolved come back as failed results.
func (runner *Runner) resolveRepositories(executionContext context.Context, targets Targets) ([]gitdata.Repository, []RepositoryResult, []error) {
	var repositories []gitdata.Repository
	var failedResults []RepositoryResult
	var failureCauses []error
	seenRepositories := map[string]struct{}{}

	addRepository := func(repository gitdata.Repository) {
		fullName := repository.FullName()
		if _, seen := seenRepositories[fullName]; seen {
			return
		}
		seenRepositories[fullName] = struct{}{}
		if !runner.filter.Allows(repository) {
			runner.logger.Debug(repositoryFilteredMessageConstant, zap.String(logFieldRepositoryFullNameConstant, fullName))
			return
		}
		repositories = append(repositories, repository)
	}
	addFailure := func(target string, cause error) {
		failedResults = append(failedResults, RepositoryResult{Repository: target, Outcome: OutcomeFailed, Detail: cause.Error()})
		failureCauses = append(failureCauses, cause)
	}

	for _, identifier := range targets.Repositories {
		owner, name, parseError := ParseRepositoryIdentifier(identifier)
		if parseError != nil {
			addFailure(strings.TrimSpace(identifier), parseError)
			continue
		}
		repository, lookupError := runner.lister.GetRepository(executionContext, owner, name)
		if lookupError != nil {
			addFailure(owner+repositoryIdentifierSeparatorConstant+name, lookupError)
			continue
		}
		addRepository(repository)
	}

	for _, organization := range targets.Organizations {
		trimmedOrganization := strings.TrimSpace(organization)
		if len(trimmedOrganization) == 0 {
			continue
		}
		organizationRepositories, listError := runner.lister.ListOrganizationRepositories(executionContext, trimmedOrganization)
		if listError != nil {
			addFailure(fmt.Sprintf(organizationTargetLabelTemplateConstant, trimmedOrganization), listError)
			continue
		}
		runner.logger.Debug(
			organizationListedMessageConstant,
			zap.String(logFieldOrganizationConstant, trimmedOrganization),
			zap.Int(logFieldRepositoryCountConstant, len(organizationRepositories)),
		)
		for _, repository := range organizationRepositories {
			addRepository(repository)
		}
	}

	return repositories, failedResults, failureCauses
}

func summarize(results []RepositoryResult) Summary {
	var summary Summary
	for _, result := range results {
		switch result.Outcome {
		case OutcomeSucceeded:
			summary.Succeeded++
		case OutcomeUnchanged:
			summary.Unchanged++
		case OutcomeSkipped:
			summary.Skipped++
		case OutcomePlanned:
			summary.Planned++
		case OutcomeFailed:
			summary.Failed++
		}
	}
	return summary
}

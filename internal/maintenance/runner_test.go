package maintenance_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/temirov/orgmaint/internal/gitdata"
	"github.com/temirov/orgmaint/internal/maintenance"
	"github.com/temirov/orgmaint/internal/utils"
)

const (
	runnerTestOrganization = "acme"
	runnerTestActionName   = "replace"
)

type stubLister struct {
	organizations map[string][]gitdata.Repository
	repositories  map[string]gitdata.Repository
	listErrors    map[string]error
}

func (lister stubLister) ListOrganizationRepositories(_ context.Context, organization string) ([]gitdata.Repository, error) {
	if listError := lister.listErrors[organization]; listError != nil {
		return nil, listError
	}
	return lister.organizations[organization], nil
}

func (lister stubLister) GetRepository(_ context.Context, owner string, name string) (gitdata.Repository, error) {
	repository, found := lister.repositories[owner+"/"+name]
	if !found {
		return gitdata.Repository{}, fmt.Errorf("%w: %s/%s", gitdata.ErrNotFound, owner, name)
	}
	return repository, nil
}

type recordingAction struct {
	results          map[string]maintenance.ActionResult
	errors           map[string]error
	visited          []string
	operationNames   []string
	repositoryLabels []string
	onApply          func(repository gitdata.Repository)
}

func (action *recordingAction) Name() string {
	return runnerTestActionName
}

func (action *recordingAction) Apply(executionContext context.Context, repository gitdata.Repository) (maintenance.ActionResult, error) {
	accessor := utils.NewCommandContextAccessor()
	operationName, _ := accessor.OperationName(executionContext)
	repositoryLabel, _ := accessor.Repository(executionContext)
	action.visited = append(action.visited, repository.FullName())
	action.operationNames = append(action.operationNames, operationName)
	action.repositoryLabels = append(action.repositoryLabels, repositoryLabel)
	if action.onApply != nil {
		action.onApply(repository)
	}
	return action.results[repository.FullName()], action.errors[repository.FullName()]
}

func organizationRepositories(names ...string) []gitdata.Repository {
	repositories := make([]gitdata.Repository, 0, len(names))
	for _, name := range names {
		repositories = append(repositories, gitdata.Repository{Owner: runnerTestOrganization, Name: name, DefaultBranch: "main"})
	}
	return repositories
}

func TestRunnerClassifiesEveryRepositoryAndContinuesAfterFailures(testInstance *testing.T) {
	remoteFailure := errors.New("remote exploded")
	lister := stubLister{organizations: map[string][]gitdata.Repository{
		runnerTestOrganization: organizationRepositories("alpha", "beta", "gamma", "delta", "epsilon"),
	}}
	action := &recordingAction{
		results: map[string]maintenance.ActionResult{
			"acme/alpha":   {Detail: "updated 2 files"},
			"acme/epsilon": {Detail: "would update 1 file", Planned: true},
		},
		errors: map[string]error{
			"acme/beta":  fmt.Errorf("upload: %w", gitdata.ErrNoChanges),
			"acme/gamma": gitdata.MissingPathsError{Paths: []string{"package.json"}},
			"acme/delta": remoteFailure,
		},
	}

	runner, runnerError := maintenance.NewRunner(zap.NewNop(), lister, maintenance.RepositoryFilter{})
	require.NoError(testInstance, runnerError)

	report, runError := runner.Run(context.Background(), maintenance.Targets{Organizations: []string{runnerTestOrganization}}, action)
	require.Error(testInstance, runError)
	require.ErrorIs(testInstance, runError, remoteFailure)
	require.Len(testInstance, multierr.Errors(runError), 1)

	var failureError maintenance.RepositoryFailureError
	require.True(testInstance, errors.As(runError, &failureError))
	require.Equal(testInstance, "acme/delta", failureError.Target)

	require.Equal(testInstance, []string{"acme/alpha", "acme/beta", "acme/gamma", "acme/delta", "acme/epsilon"}, action.visited)
	require.Equal(testInstance, []string{runnerTestActionName, runnerTestActionName, runnerTestActionName, runnerTestActionName, runnerTestActionName}, action.operationNames)
	require.Equal(testInstance, action.visited, action.repositoryLabels)

	outcomes := make([]maintenance.Outcome, 0, len(report.Results))
	for _, result := range report.Results {
		outcomes = append(outcomes, result.Outcome)
	}
	require.Equal(testInstance, []maintenance.Outcome{
		maintenance.OutcomeSucceeded,
		maintenance.OutcomeUnchanged,
		maintenance.OutcomeSkipped,
		maintenance.OutcomeFailed,
		maintenance.OutcomePlanned,
	}, outcomes)
	require.Equal(testInstance, "updated 2 files", report.Results[0].Detail)
	require.Equal(testInstance, remoteFailure.Error(), report.Results[3].Detail)
	require.Equal(testInstance, maintenance.Summary{Succeeded: 1, Unchanged: 1, Skipped: 1, Planned: 1, Failed: 1}, report.Summary)
	require.Equal(testInstance, runnerTestActionName, report.Operation)
}

func TestRunnerResolvesTargets(testInstance *testing.T) {
	listFailure := errors.New("forbidden")
	lister := stubLister{
		organizations: map[string][]gitdata.Repository{
			runnerTestOrganization: organizationRepositories("alpha", "beta", "legacy-tools"),
		},
		repositories: map[string]gitdata.Repository{
			"acme/beta":     {Owner: runnerTestOrganization, Name: "beta", DefaultBranch: "main"},
			"other/gadgets": {Owner: "other", Name: "gadgets", DefaultBranch: "trunk"},
		},
		listErrors: map[string]error{"locked": listFailure},
	}

	testCases := []struct {
		name            string
		targets         maintenance.Targets
		include         []string
		exclude         []string
		expectedVisited []string
		expectedFailed  []string
	}{
		{
			name:            "explicit_repositories_first_without_duplicates",
			targets:         maintenance.Targets{Organizations: []string{runnerTestOrganization}, Repositories: []string{"other/gadgets", "acme/beta"}},
			expectedVisited: []string{"other/gadgets", "acme/beta", "acme/alpha", "acme/legacy-tools"},
		},
		{
			name:            "exclude_pattern",
			targets:         maintenance.Targets{Organizations: []string{runnerTestOrganization}},
			exclude:         []string{"acme/legacy-*"},
			expectedVisited: []string{"acme/alpha", "acme/beta"},
		},
		{
			name:            "include_pattern",
			targets:         maintenance.Targets{Organizations: []string{runnerTestOrganization}, Repositories: []string{"other/gadgets"}},
			include:         []string{"acme/*"},
			expectedVisited: []string{"acme/alpha", "acme/beta", "acme/legacy-tools"},
		},
		{
			name:            "unresolvable_targets_fail_without_stopping",
			targets:         maintenance.Targets{Organizations: []string{"locked", runnerTestOrganization}, Repositories: []string{"not-an-identifier", "acme/missing"}},
			exclude:         []string{"acme/alpha", "acme/legacy-tools"},
			expectedVisited: []string{"acme/beta"},
			expectedFailed:  []string{"not-an-identifier", "acme/missing", "org:locked"},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			filter, filterError := maintenance.NewRepositoryFilter(testCase.include, testCase.exclude)
			require.NoError(subTest, filterError)
			runner, runnerError := maintenance.NewRunner(nil, lister, filter)
			require.NoError(subTest, runnerError)

			action := &recordingAction{}
			report, runError := runner.Run(context.Background(), testCase.targets, action)
			require.Equal(subTest, testCase.expectedVisited, action.visited)

			var failedTargets []string
			for _, result := range report.Results {
				if result.Outcome == maintenance.OutcomeFailed {
					failedTargets = append(failedTargets, result.Repository)
				}
			}
			require.Equal(subTest, testCase.expectedFailed, failedTargets)
			if len(testCase.expectedFailed) == 0 {
				require.NoError(subTest, runError)
				return
			}
			require.Len(subTest, multierr.Errors(runError), len(testCase.expectedFailed))
			require.ErrorIs(subTest, runError, listFailure)
			require.ErrorIs(subTest, runError, gitdata.ErrNotFound)
		})
	}
}

func TestRunnerStopsWhenContextIsCancelled(testInstance *testing.T) {
	lister := stubLister{organizations: map[string][]gitdata.Repository{
		runnerTestOrganization: organizationRepositories("alpha", "beta", "gamma"),
	}}
	executionContext, cancel := context.WithCancel(context.Background())
	defer cancel()
	action := &recordingAction{onApply: func(gitdata.Repository) { cancel() }}

	runner, runnerError := maintenance.NewRunner(nil, lister, maintenance.RepositoryFilter{})
	require.NoError(testInstance, runnerError)

	report, runError := runner.Run(executionContext, maintenance.Targets{Organizations: []string{runnerTestOrganization}}, action)
	require.ErrorIs(testInstance, runError, context.Canceled)
	require.Equal(testInstance, []string{"acme/alpha"}, action.visited)
	require.Len(testInstance, report.Results, 1)
}

func TestRunnerValidatesInputs(testInstance *testing.T) {
	_, listerError := maintenance.NewRunner(nil, nil, maintenance.RepositoryFilter{})
	require.ErrorIs(testInstance, listerError, maintenance.ErrRepositoryListerNotConfigured)

	runner, runnerError := maintenance.NewRunner(nil, stubLister{}, maintenance.RepositoryFilter{})
	require.NoError(testInstance, runnerError)

	_, actionError := runner.Run(context.Background(), maintenance.Targets{Organizations: []string{runnerTestOrganization}}, nil)
	require.ErrorIs(testInstance, actionError, maintenance.ErrActionNotConfigured)

	_, targetsError := runner.Run(context.Background(), maintenance.Targets{}, &recordingAction{})
	require.ErrorIs(testInstance, targetsError, maintenance.ErrNoTargets)
}

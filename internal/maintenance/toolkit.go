package maintenance

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/orgmaint/internal/gitdata"
	"github.com/temirov/orgmaint/internal/githubapi"
	"github.com/temirov/orgmaint/internal/githubauth"
	"github.com/temirov/orgmaint/internal/staging"
)

const (
	unauthenticatedMessageConstant = "no access token resolved; issuing unauthenticated requests"
)

// Toolkit bundles the collaborators a maintenance command runs with.
type Toolkit struct {
	GitData     *gitdata.Service
	StagingArea *staging.Area
	Runner      *Runner
}

// ToolkitResolver builds the Toolkit for one command invocation.
type ToolkitResolver interface {
	Resolve(executionContext context.Context, logger *zap.Logger, configuration GitHubConfiguration) (Toolkit, error)
}

// DefaultToolkitResolver wires the go-github transport, the token resolver and the local filesystem.
type DefaultToolkitResolver struct {
	EnvironmentLookup githubauth.EnvironmentLookup
	FileSystem        afero.Fs
	HTTPClient        *http.Client
}

// Resolve implements ToolkitResolver.
func (resolver *DefaultToolkitResolver) Resolve(executionContext context.Context, logger *zap.Logger, configuration GitHubConfiguration) (Toolkit, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	token, tokenError := githubauth.NewResolver(resolver.EnvironmentLookup, resolver.FileSystem).ResolveToken(executionContext, configuration.TokenSource)
	if tokenError != nil {
		if !errors.Is(tokenError, githubauth.ErrTokenNotFound) {
			return Toolkit{}, tokenError
		}
		logger.Warn(unauthenticatedMessageConstant)
	}

	client, clientError := githubapi.NewClient(executionContext, githubapi.Configuration{
		BaseURL:    configuration.APIBaseURL,
		Token:      token,
		HTTPClient: resolver.HTTPClient,
	})
	if clientError != nil {
		return Toolkit{}, clientError
	}

	return AssembleToolkit(logger, client, client, staging.NewArea(resolver.FileSystem), configuration.Repositories)
}

// AssembleToolkit builds a Toolkit around an existing remote and staging area.
func AssembleToolkit(logger *zap.Logger, remoteAPI gitdata.RemoteAPI, lister RepositoryLister, stagingArea *staging.Area, filterConfiguration RepositoryFilterConfig) (Toolkit, error) {
	if stagingArea == nil {
		stagingArea = staging.NewArea(nil)
	}

	gitDataService, serviceError := gitdata.NewService(logger, remoteAPI, stagingArea)
	if serviceError != nil {
		return Toolkit{}, serviceError
	}

	filter, filterError := NewRepositoryFilter(filterConfiguration.Include, filterConfiguration.Exclude)
	if filterError != nil {
		return Toolkit{}, filterError
	}

	runner, runnerError := NewRunner(logger, lister, filter)
	if runnerError != nil {
		return Toolkit{}, runnerError
	}

	return Toolkit{GitData: gitDataService, StagingArea: stagingArea, Runner: runner}, nil
}

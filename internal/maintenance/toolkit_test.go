package maintenance_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/orgmaint/internal/gitdata"
	"github.com/temirov/orgmaint/internal/maintenance"
	"github.com/temirov/orgmaint/internal/staging"
)

const toolkitTestRepositoryJSON = `{"name":"widgets","owner":{"login":"acme"},"default_branch":"trunk"}`

func newRepositoryServer(testInstance *testing.T, authorizationHeaders *[]string) *httptest.Server {
	testInstance.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets", func(responseWriter http.ResponseWriter, request *http.Request) {
		*authorizationHeaders = append(*authorizationHeaders, request.Header.Get("Authorization"))
		responseWriter.Header().Set("Content-Type", "application/json")
		_, _ = responseWriter.Write([]byte(toolkitTestRepositoryJSON))
	})
	server := httptest.NewServer(mux)
	testInstance.Cleanup(server.Close)
	return server
}

func TestDefaultToolkitResolverAuthenticatesRequests(testInstance *testing.T) {
	testCases := []struct {
		name                  string
		environment           map[string]string
		tokenSource           string
		expectedAuthorization string
		expectedWarnings      int
	}{
		{
			name:                  "conventional_environment_token",
			environment:           map[string]string{"GITHUB_TOKEN": "conventional-token"},
			expectedAuthorization: "Bearer conventional-token",
		},
		{
			name:                  "configured_environment_token",
			environment:           map[string]string{"GITHUB_TOKEN": "ignored", "ORG_BOT_TOKEN": "bot-token"},
			tokenSource:           "env:ORG_BOT_TOKEN",
			expectedAuthorization: "Bearer bot-token",
		},
		{
			name:             "unauthenticated_fallback",
			environment:      map[string]string{},
			expectedWarnings: 1,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			var authorizationHeaders []string
			server := newRepositoryServer(subTest, &authorizationHeaders)
			observedCore, observedLogs := observer.New(zap.WarnLevel)

			resolver := &maintenance.DefaultToolkitResolver{
				EnvironmentLookup: func(key string) (string, bool) {
					value, found := testCase.environment[key]
					return value, found
				},
				FileSystem: afero.NewMemMapFs(),
				HTTPClient: server.Client(),
			}
			toolkit, resolveError := resolver.Resolve(context.Background(), zap.New(observedCore), maintenance.GitHubConfiguration{
				APIBaseURL:  server.URL,
				TokenSource: testCase.tokenSource,
			})
			require.NoError(subTest, resolveError)
			require.NotNil(subTest, toolkit.GitData)
			require.NotNil(subTest, toolkit.StagingArea)

			action := &recordingAction{}
			report, runError := toolkit.Runner.Run(context.Background(), maintenance.Targets{Repositories: []string{"acme/widgets"}}, action)
			require.NoError(subTest, runError)
			require.Equal(subTest, 1, report.Summary.Succeeded)
			require.Equal(subTest, []string{"acme/widgets"}, action.visited)

			require.Equal(subTest, []string{testCase.expectedAuthorization}, authorizationHeaders)
			require.Equal(subTest, testCase.expectedWarnings, observedLogs.Len())
		})
	}
}

func TestDefaultToolkitResolverFailures(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configuration maintenance.GitHubConfiguration
	}{
		{
			name:          "unreadable_token_file",
			configuration: maintenance.GitHubConfiguration{TokenSource: "file:/secrets/missing-token"},
		},
		{
			name: "invalid_repository_pattern",
			configuration: maintenance.GitHubConfiguration{
				Repositories: maintenance.RepositoryFilterConfig{Include: []string{"acme/[unterminated"}},
			},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			resolver := &maintenance.DefaultToolkitResolver{
				EnvironmentLookup: func(string) (string, bool) { return "", false },
				FileSystem:        afero.NewMemMapFs(),
			}
			_, resolveError := resolver.Resolve(context.Background(), nil, testCase.configuration)
			require.Error(subTest, resolveError)
		})
	}
}

func TestAssembleToolkit(testInstance *testing.T) {
	lister := stubLister{repositories: map[string]gitdata.Repository{}}

	_, remoteError := maintenance.AssembleToolkit(nil, nil, lister, staging.NewArea(afero.NewMemMapFs()), maintenance.RepositoryFilterConfig{})
	require.ErrorIs(testInstance, remoteError, gitdata.ErrRemoteAPINotConfigured)

	_, listerError := maintenance.AssembleToolkit(nil, stubRemote{}, nil, nil, maintenance.RepositoryFilterConfig{})
	require.ErrorIs(testInstance, listerError, maintenance.ErrRepositoryListerNotConfigured)

	toolkit, assembleError := maintenance.AssembleToolkit(nil, stubRemote{}, lister, nil, maintenance.RepositoryFilterConfig{})
	require.NoError(testInstance, assembleError)
	require.NotNil(testInstance, toolkit.StagingArea)
	require.NotNil(testInstance, toolkit.Runner)
}

type stubRemote struct {
	gitdata.RemoteAPI
}

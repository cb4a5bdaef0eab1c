package githubauth_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/temirov/orgmaint/internal/githubauth"
)

const (
	tokenTestFilePath      = "/secrets/token"
	tokenTestFileValue     = "  file-token \n"
	tokenTestEmptyFilePath = "/secrets/empty"
)

func TestParseTokenSource(testInstance *testing.T) {
	testCases := []struct {
		name           string
		value          string
		expectedSource githubauth.TokenSource
		expectError    bool
	}{
		{name: "empty_uses_default_chain", value: "  ", expectedSource: githubauth.TokenSource{Type: githubauth.TokenSourceTypeDefault}},
		{name: "bare_name", value: "ORG_TOKEN", expectedSource: githubauth.TokenSource{Type: githubauth.TokenSourceTypeEnvironment, Reference: "ORG_TOKEN"}},
		{name: "env_prefix", value: "ENV: ORG_TOKEN", expectedSource: githubauth.TokenSource{Type: githubauth.TokenSourceTypeEnvironment, Reference: "ORG_TOKEN"}},
		{name: "file_prefix", value: "file:/secrets/token", expectedSource: githubauth.TokenSource{Type: githubauth.TokenSourceTypeFile, Reference: tokenTestFilePath}},
		{name: "env_without_name", value: "env:", expectError: true},
		{name: "file_without_path", value: "file: ", expectError: true},
		{name: "unsupported_type", value: "vault:secret", expectError: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			source, parseError := githubauth.ParseTokenSource(testCase.value)
			if testCase.expectError {
				require.Error(subTest, parseError)
				return
			}
			require.NoError(subTest, parseError)
			require.Equal(subTest, testCase.expectedSource, source)
		})
	}
}

func TestResolveToken(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	require.NoError(testInstance, afero.WriteFile(fileSystem, tokenTestFilePath, []byte(tokenTestFileValue), 0o600))
	require.NoError(testInstance, afero.WriteFile(fileSystem, tokenTestEmptyFilePath, []byte("\n"), 0o600))

	testCases := []struct {
		name          string
		environment   map[string]string
		source        string
		expectedToken string
		expectMissing bool
		expectError   bool
	}{
		{name: "gh_token_preferred", environment: map[string]string{githubauth.EnvGitHubCLIToken: "gh", githubauth.EnvGitHubToken: "github"}, expectedToken: "gh"},
		{name: "blank_values_skipped", environment: map[string]string{githubauth.EnvGitHubCLIToken: " ", githubauth.EnvGitHubAPIToken: "api"}, expectedToken: "api"},
		{name: "nothing_configured", environment: map[string]string{}, expectMissing: true},
		{name: "named_environment", environment: map[string]string{"ORG_TOKEN": " org "}, source: "env:ORG_TOKEN", expectedToken: "org"},
		{name: "named_environment_missing", environment: map[string]string{githubauth.EnvGitHubToken: "github"}, source: "ORG_TOKEN", expectMissing: true},
		{name: "file_source", environment: map[string]string{}, source: "file:" + tokenTestFilePath, expectedToken: "file-token"},
		{name: "empty_file", environment: map[string]string{}, source: "file:" + tokenTestEmptyFilePath, expectMissing: true},
		{name: "missing_file", environment: map[string]string{}, source: "file:/secrets/absent", expectError: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			environment := testCase.environment
			resolver := githubauth.NewResolver(func(key string) (string, bool) {
				value, found := environment[key]
				return value, found
			}, fileSystem)

			token, resolveError := resolver.ResolveToken(context.Background(), testCase.source)
			switch {
			case testCase.expectMissing:
				require.ErrorIs(subTest, resolveError, githubauth.ErrTokenNotFound)
			case testCase.expectError:
				require.Error(subTest, resolveError)
			default:
				require.NoError(subTest, resolveError)
				require.Equal(subTest, testCase.expectedToken, token)
			}
		})
	}
}

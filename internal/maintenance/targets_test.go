package maintenance_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/orgmaint/internal/gitdata"
	"github.com/temirov/orgmaint/internal/maintenance"
)

func TestParseRepositoryIdentifier(testInstance *testing.T) {
	testCases := []struct {
		name          string
		identifier    string
		expectedOwner string
		expectedName  string
		expectError   bool
	}{
		{name: "owner_and_name", identifier: "acme/widgets", expectedOwner: "acme", expectedName: "widgets"},
		{name: "surrounding_whitespace", identifier: "  acme / widgets ", expectedOwner: "acme", expectedName: "widgets"},
		{name: "missing_separator", identifier: "widgets", expectError: true},
		{name: "missing_owner", identifier: "/widgets", expectError: true},
		{name: "missing_name", identifier: "acme/", expectError: true},
		{name: "nested_name", identifier: "acme/widgets/extra", expectError: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			owner, name, parseError := maintenance.ParseRepositoryIdentifier(testCase.identifier)
			if testCase.expectError {
				var identifierError maintenance.InvalidRepositoryIdentifierError
				require.True(subTest, errors.As(parseError, &identifierError))
				require.Equal(subTest, testCase.identifier, identifierError.Identifier)
				return
			}
			require.NoError(subTest, parseError)
			require.Equal(subTest, testCase.expectedOwner, owner)
			require.Equal(subTest, testCase.expectedName, name)
		})
	}
}

func TestSelectTargets(testInstance *testing.T) {
	configuredOrganizations := []string{"acme", "globex"}

	testCases := []struct {
		name              string
		flagOrganizations []string
		flagRepositories  []string
		expectedTargets   maintenance.Targets
	}{
		{
			name:            "configured_organizations_without_flags",
			expectedTargets: maintenance.Targets{Organizations: configuredOrganizations},
		},
		{
			name:              "organization_flags_replace_configuration",
			flagOrganizations: []string{" initech "},
			expectedTargets:   maintenance.Targets{Organizations: []string{"initech"}},
		},
		{
			name:             "repositories_alone_ignore_configured_organizations",
			flagRepositories: []string{"acme/widgets"},
			expectedTargets:  maintenance.Targets{Repositories: []string{"acme/widgets"}},
		},
		{
			name:              "organizations_and_repositories",
			flagOrganizations: []string{"initech"},
			flagRepositories:  []string{"acme/widgets", " "},
			expectedTargets:   maintenance.Targets{Organizations: []string{"initech"}, Repositories: []string{"acme/widgets"}},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			targets := maintenance.SelectTargets(testCase.flagOrganizations, testCase.flagRepositories, configuredOrganizations)
			require.Equal(subTest, testCase.expectedTargets, targets)
		})
	}
}

func TestRepositoryFilter(testInstance *testing.T) {
	testCases := []struct {
		name     string
		include  []string
		exclude  []string
		expected map[string]bool
	}{
		{
			name:     "empty_filter_allows_everything",
			expected: map[string]bool{"acme/widgets": true, "other/gadgets": true},
		},
		{
			name:     "include_owner_wildcard",
			include:  []string{"acme/*"},
			expected: map[string]bool{"acme/widgets": true, "other/gadgets": false},
		},
		{
			name:     "star_does_not_cross_separator",
			include:  []string{"*"},
			expected: map[string]bool{"acme/widgets": false},
		},
		{
			name:     "exclude_wins_over_include",
			include:  []string{"acme/*", " "},
			exclude:  []string{"acme/{legacy,archive}-*"},
			expected: map[string]bool{"acme/widgets": true, "acme/legacy-api": false, "acme/archive-2019": false},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			filter, filterError := maintenance.NewRepositoryFilter(testCase.include, testCase.exclude)
			require.NoError(subTest, filterError)
			for fullName, expectedAllowed := range testCase.expected {
				owner, name, parseError := maintenance.ParseRepositoryIdentifier(fullName)
				require.NoError(subTest, parseError)
				require.Equal(subTest, expectedAllowed, filter.Allows(gitdata.Repository{Owner: owner, Name: name}), fullName)
			}
		})
	}
}

func TestRepositoryFilterRejectsInvalidPatterns(testInstance *testing.T) {
	_, filterError := maintenance.NewRepositoryFilter(nil, []string{"acme/[unterminated"})
	var patternError maintenance.InvalidPatternError
	require.True(testInstance, errors.As(filterError, &patternError))
	require.Equal(testInstance, "acme/[unterminated", patternError.Pattern)
}

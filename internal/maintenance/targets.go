package maintenance

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/temirov/orgmaint/internal/gitdata"
	"github.com/temirov/orgmaint/internal/utils/flags"
)

const (
	repositoryIdentifierSeparatorConstant  = "/"
	repositoryPatternSeparatorConstant     = '/'
	invalidIdentifierErrorTemplateConstant = "invalid repository identifier %q: expected owner/name"
	invalidPatternErrorTemplateConstant    = "invalid repository pattern %q: %v"
)

// InvalidRepositoryIdentifierError reports a repository target that is not owner/name.
type InvalidRepositoryIdentifierError struct {
	Identifier string
}

// Error describes the malformed identifier.
func (identifierError InvalidRepositoryIdentifierError) Error() string {
	return fmt.Sprintf(invalidIdentifierErrorTemplateConstant, identifierError.Identifier)
}

// InvalidPatternError reports an include or exclude pattern that does not compile.
type InvalidPatternError struct {
	Pattern string
	Cause   error
}

// Error describes the pattern failure.
func (patternError InvalidPatternError) Error() string {
	return fmt.Sprintf(invalidPatternErrorTemplateConstant, patternError.Pattern, patternError.Cause)
}

// Unwrap exposes the compilation failure.
func (patternError InvalidPatternError) Unwrap() error {
	return patternError.Cause
}

// Targets selects the repositories a run visits.
type Targets struct {
	Organizations []string
	Repositories  []string
}

// SelectTargets combines the target flags with the configured organizations. Explicit repositories
// given without organizations are the whole run; configured organizations apply only when no flag
// names a target.
func SelectTargets(flagOrganizations []string, flagRepositories []string, configuredOrganizations []string) Targets {
	targets := Targets{
		Organizations: flags.SelectStrings(flagOrganizations, nil),
		Repositories:  flags.SelectStrings(flagRepositories, nil),
	}
	if len(targets.Organizations) == 0 && len(targets.Repositories) == 0 {
		targets.Organizations = flags.SelectStrings(nil, configuredOrganizations)
	}
	return targets
}

// ParseRepositoryIdentifier splits owner/name into its parts.
func ParseRepositoryIdentifier(identifier string) (string, string, error) {
	trimmedIdentifier := strings.TrimSpace(identifier)
	owner, name, found := strings.Cut(trimmedIdentifier, repositoryIdentifierSeparatorConstant)
	owner = strings.TrimSpace(owner)
	name = strings.TrimSpace(name)
	if !found || len(owner) == 0 || len(name) == 0 || strings.Contains(name, repositoryIdentifierSeparatorConstant) {
		return "", "", InvalidRepositoryIdentifierError{Identifier: identifier}
	}
	return owner, name, nil
}

// RepositoryFilter keeps repositories whose owner/name matches an include pattern and no exclude pattern.
// An empty include list keeps every repository.
type RepositoryFilter struct {
	includePatterns []glob.Glob
	excludePatterns []glob.Glob
}

// NewRepositoryFilter compiles include and exclude glob patterns. '*' does not cross the owner/name separator.
func NewRepositoryFilter(includePatterns []string, excludePatterns []string) (RepositoryFilter, error) {
	compiledIncludes, includeError := compilePatterns(includePatterns)
	if includeError != nil {
		return RepositoryFilter{}, includeError
	}
	compiledExcludes, excludeError := compilePatterns(excludePatterns)
	if excludeError != nil {
		return RepositoryFilter{}, excludeError
	}
	return RepositoryFilter{includePatterns: compiledIncludes, excludePatterns: compiledExcludes}, nil
}

// Allows reports whether repository passes the filter.
func (filter RepositoryFilter) Allows(repository gitdata.Repository) bool {
	fullName := repository.FullName()
	if len(filter.includePatterns) > 0 && !matchesAny(filter.includePatterns, fullName) {
		return false
	}
	return !matchesAny(filter.excludePatterns, fullName)
}

func compilePatterns(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if len(trimmedPattern) == 0 {
			continue
		}
		compiledPattern, compileError := glob.Compile(trimmedPattern, repositoryPatternSeparatorConstant)
		if compileError != nil {
			return nil, InvalidPatternError{Pattern: trimmedPattern, Cause: compileError}
		}
		compiled = append(compiled, compiledPattern)
	}
	return compiled, nil
}

func matchesAny(patterns []glob.Glob, value string) bool {
	for _, pattern := range patterns {
		if pattern.Match(value) {
			return true
		}
	}
	return false
}

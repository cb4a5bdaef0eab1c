package githubauth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// Environment variable names consulted when no explicit token source is configured.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

const (
	tokenSourceSeparatorConstant               = ":"
	environmentTokenSourceTypeValueConstant    = "env"
	fileTokenSourceTypeValueConstant           = "file"
	environmentNameMissingErrorMessageConstant = "environment variable name must be provided"
	filePathMissingErrorMessageConstant        = "token file path must be provided"
	tokenNotFoundMessageConstant               = "no access token found; set GH_TOKEN, GITHUB_TOKEN, or GITHUB_API_TOKEN or configure github.token_source"
	environmentTokenMissingTemplateConstant    = "environment variable %s is not set: %w"
	fileReadErrorTemplateConstant              = "unable to read token file %s: %w"
	fileTokenEmptyErrorTemplateConstant        = "token file %s is empty: %w"
	unsupportedTokenSourceTemplateConstant     = "unsupported token source type %q"
)

// TokenSourceType enumerates the supported token retrieval mechanisms.
type TokenSourceType string

// Token source type enumerations.
const (
	TokenSourceTypeDefault     TokenSourceType = TokenSourceType("")
	TokenSourceTypeEnvironment TokenSourceType = TokenSourceType(environmentTokenSourceTypeValueConstant)
	TokenSourceTypeFile        TokenSourceType = TokenSourceType(fileTokenSourceTypeValueConstant)
)

var tokenPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// ErrTokenNotFound indicates that no configured or conventional source yielded a token.
var ErrTokenNotFound = errors.New(tokenNotFoundMessageConstant)

// TokenSource specifies where an access token is read from.
type TokenSource struct {
	Type      TokenSourceType
	Reference string
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// Resolver retrieves access tokens from environment variables or token files.
type Resolver struct {
	environmentLookup EnvironmentLookup
	fileSystem        afero.Fs
}

// NewResolver creates a Resolver. Nil dependencies default to the process environment and the
// operating system filesystem.
func NewResolver(environmentLookup EnvironmentLookup, fileSystem afero.Fs) *Resolver {
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	return &Resolver{environmentLookup: environmentLookup, fileSystem: fileSystem}
}

// ParseTokenSource interprets env:NAME, file:/path, or a bare environment variable name. An empty value
// selects the conventional GH_TOKEN, GITHUB_TOKEN, GITHUB_API_TOKEN chain.
func ParseTokenSource(sourceValue string) (TokenSource, error) {
	trimmedValue := strings.TrimSpace(sourceValue)
	if len(trimmedValue) == 0 {
		return TokenSource{Type: TokenSourceTypeDefault}, nil
	}

	components := strings.SplitN(trimmedValue, tokenSourceSeparatorConstant, 2)
	if len(components) == 1 {
		return TokenSource{Type: TokenSourceTypeEnvironment, Reference: trimmedValue}, nil
	}

	sourceType := strings.ToLower(strings.TrimSpace(components[0]))
	reference := strings.TrimSpace(components[1])

	switch sourceType {
	case environmentTokenSourceTypeValueConstant:
		if len(reference) == 0 {
			return TokenSource{}, errors.New(environmentNameMissingErrorMessageConstant)
		}
		return TokenSource{Type: TokenSourceTypeEnvironment, Reference: reference}, nil
	case fileTokenSourceTypeValueConstant:
		if len(reference) == 0 {
			return TokenSource{}, errors.New(filePathMissingErrorMessageConstant)
		}
		return TokenSource{Type: TokenSourceTypeFile, Reference: reference}, nil
	default:
		return TokenSource{}, fmt.Errorf(unsupportedTokenSourceTemplateConstant, sourceType)
	}
}

// ResolveToken parses sourceValue and returns the token it designates.
func (resolver *Resolver) ResolveToken(resolutionContext context.Context, sourceValue string) (string, error) {
	source, parseError := ParseTokenSource(sourceValue)
	if parseError != nil {
		return "", parseError
	}
	return resolver.Resolve(resolutionContext, source)
}

// Resolve returns the token designated by source.
func (resolver *Resolver) Resolve(resolutionContext context.Context, source TokenSource) (string, error) {
	_ = resolutionContext
	switch source.Type {
	case TokenSourceTypeDefault:
		for _, key := range tokenPreference {
			if value, found := resolver.lookup(key); found {
				return value, nil
			}
		}
		return "", ErrTokenNotFound
	case TokenSourceTypeEnvironment:
		value, found := resolver.lookup(source.Reference)
		if !found {
			return "", fmt.Errorf(environmentTokenMissingTemplateConstant, source.Reference, ErrTokenNotFound)
		}
		return value, nil
	case TokenSourceTypeFile:
		contents, readError := afero.ReadFile(resolver.fileSystem, source.Reference)
		if readError != nil {
			return "", fmt.Errorf(fileReadErrorTemplateConstant, source.Reference, readError)
		}
		trimmedValue := strings.TrimSpace(string(contents))
		if len(trimmedValue) == 0 {
			return "", fmt.Errorf(fileTokenEmptyErrorTemplateConstant, source.Reference, ErrTokenNotFound)
		}
		return trimmedValue, nil
	default:
		return "", fmt.Errorf(unsupportedTokenSourceTemplateConstant, source.Type)
	}
}

func (resolver *Resolver) lookup(key string) (string, bool) {
	value, exists := resolver.environmentLookup(key)
	if !exists {
		return "", false
	}
	value = strings.TrimSpace(value)
	if len(value) == 0 {
		return "", false
	}
	return value, true
}

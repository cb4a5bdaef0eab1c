// Package githubauth resolves the access token used by the GitHub transport.
package githubauth

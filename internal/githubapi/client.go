package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v61/github"
	"golang.org/x/oauth2"

	"github.com/temirov/orgmaint/internal/gitdata"
)

const (
	trailingSlashConstant                  = "/"
	fullReferencePrefixConstant            = "refs/"
	headsReferencePrefixConstant           = "heads/"
	tagsReferencePrefixConstant            = "tags/"
	repositoriesPerPageConstant            = 100
	repositoryListTypeConstant             = "all"
	requiredValueMessageConstant           = "value required"
	notAFileMessageConstant                = "path does not address a file"
	invalidBaseURLTemplateConstant         = "invalid api base url %q: %w"
	invalidInputErrorTemplateConstant      = "%s: %s"
	requestErrorTemplateConstant           = "%s request failed: %v"
	requestErrorWithStatusTemplateConstant = "%s request failed with status %d: %v"
	notAFileErrorTemplateConstant          = "%w: %s: %s"
	organizationFieldNameConstant          = "organization"
	ownerFieldNameConstant                 = "owner"
	repositoryFieldNameConstant            = "repository"
	getReferenceOperationNameConstant      = OperationName("GetReference")
	getCommitOperationNameConstant         = OperationName("GetCommit")
	getTreeOperationNameConstant           = OperationName("GetTree")
	getBlobOperationNameConstant           = OperationName("GetBlob")
	getContentsOperationNameConstant       = OperationName("GetContents")
	createBlobOperationNameConstant        = OperationName("CreateBlob")
	createTreeOperationNameConstant        = OperationName("CreateTree")
	createCommitOperationNameConstant      = OperationName("CreateCommit")
	updateReferenceOperationNameConstant   = OperationName("UpdateReference")
	listRepositoriesOperationNameConstant  = OperationName("ListOrganizationRepositories")
	getRepositoryOperationNameConstant     = OperationName("GetRepository")
)

// OperationName describes a named GitHub REST call issued by the client.
type OperationName string

// Configuration selects the API endpoint and credentials.
type Configuration struct {
	// BaseURL is the REST root, for example https://github.example.com/api/v3/. Empty selects api.github.com.
	BaseURL string
	// Token authenticates every request. Empty issues unauthenticated requests.
	Token string
	// HTTPClient is the transport wrapped by the oauth2 token source. Nil selects http.DefaultClient.
	HTTPClient *http.Client
}

// InvalidInputError surfaces validation issues for client inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// RequestError wraps a failed REST call. A 404 status matches gitdata.ErrNotFound.
type RequestError struct {
	Operation  OperationName
	StatusCode int
	Cause      error
}

// Error describes the failed request.
func (requestError RequestError) Error() string {
	if requestError.StatusCode == 0 {
		return fmt.Sprintf(requestErrorTemplateConstant, requestError.Operation, requestError.Cause)
	}
	return fmt.Sprintf(requestErrorWithStatusTemplateConstant, requestError.Operation, requestError.StatusCode, requestError.Cause)
}

// Unwrap exposes the underlying cause.
func (requestError RequestError) Unwrap() error {
	return requestError.Cause
}

// Is matches gitdata.ErrNotFound for 404 responses.
func (requestError RequestError) Is(target error) bool {
	return target == gitdata.ErrNotFound && requestError.StatusCode == http.StatusNotFound
}

// Client implements gitdata.RemoteAPI and repository discovery on top of go-github.
type Client struct {
	gitHubClient *github.Client
}

// NewClient constructs a Client for configuration.
func NewClient(executionContext context.Context, configuration Configuration) (*Client, error) {
	httpClient := configuration.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	trimmedToken := strings.TrimSpace(configuration.Token)
	if len(trimmedToken) > 0 {
		tokenContext := context.WithValue(executionContext, oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(tokenContext, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: trimmedToken}))
	}

	gitHubClient := github.NewClient(httpClient)

	trimmedBaseURL := strings.TrimSpace(configuration.BaseURL)
	if len(trimmedBaseURL) > 0 {
		if !strings.HasSuffix(trimmedBaseURL, trailingSlashConstant) {
			trimmedBaseURL += trailingSlashConstant
		}
		parsedBaseURL, parseError := url.Parse(trimmedBaseURL)
		if parseError != nil {
			return nil, fmt.Errorf(invalidBaseURLTemplateConstant, configuration.BaseURL, parseError)
		}
		gitHubClient.BaseURL = parsedBaseURL
	}

	return &Client{gitHubClient: gitHubClient}, nil
}

// GetReference implements gitdata.RemoteAPI.
func (client *Client) GetReference(executionContext context.Context, owner string, repository string, reference string) (gitdata.Reference, error) {
	gitReference, response, requestError := client.gitHubClient.Git.GetRef(executionContext, owner, repository, reference)
	if requestError != nil {
		return gitdata.Reference{}, newRequestError(getReferenceOperationNameConstant, response, requestError)
	}
	return gitdata.Reference{
		Name:      strings.TrimPrefix(gitReference.GetRef(), fullReferencePrefixConstant),
		CommitSHA: gitReference.GetObject().GetSHA(),
	}, nil
}

// GetCommit implements gitdata.RemoteAPI.
func (client *Client) GetCommit(executionContext context.Context, owner string, repository string, commitSHA string) (gitdata.Commit, error) {
	commit, response, requestError := client.gitHubClient.Git.GetCommit(executionContext, owner, repository, commitSHA)
	if requestError != nil {
		return gitdata.Commit{}, newRequestError(getCommitOperationNameConstant, response, requestError)
	}
	return convertCommit(commit), nil
}

// GetTree implements gitdata.RemoteAPI.
func (client *Client) GetTree(executionContext context.Context, owner string, repository string, treeSHA string, recursive bool) (gitdata.Tree, error) {
	tree, response, requestError := client.gitHubClient.Git.GetTree(executionContext, owner, repository, treeSHA, recursive)
	if requestError != nil {
		return gitdata.Tree{}, newRequestError(getTreeOperationNameConstant, response, requestError)
	}
	return convertTree(tree), nil
}

// GetBlob implements gitdata.RemoteAPI.
func (client *Client) GetBlob(executionContext context.Context, owner string, repository string, blobSHA string) (gitdata.Blob, error) {
	blob, response, requestError := client.gitHubClient.Git.GetBlob(executionContext, owner, repository, blobSHA)
	if requestError != nil {
		return gitdata.Blob{}, newRequestError(getBlobOperationNameConstant, response, requestError)
	}
	return gitdata.Blob{
		SHA:      blob.GetSHA(),
		Content:  blob.GetContent(),
		Encoding: gitdata.BlobEncoding(blob.GetEncoding()),
		Size:     int64(blob.GetSize()),
	}, nil
}

// GetFileContent implements gitdata.RemoteAPI using the contents endpoint.
func (client *Client) GetFileContent(executionContext context.Context, owner string, repository string, filePath string, reference string) (gitdata.Blob, error) {
	options := &github.RepositoryContentGetOptions{Ref: qualifiedReference(reference)}
	fileContent, _, response, requestError := client.gitHubClient.Repositories.GetContents(executionContext, owner, repository, filePath, options)
	if requestError != nil {
		return gitdata.Blob{}, newRequestError(getContentsOperationNameConstant, response, requestError)
	}
	if fileContent == nil || fileContent.Content == nil {
		return gitdata.Blob{}, RequestError{
			Operation: getContentsOperationNameConstant,
			Cause:     fmt.Errorf(notAFileErrorTemplateConstant, gitdata.ErrNotFound, notAFileMessageConstant, filePath),
		}
	}
	return gitdata.Blob{
		SHA:      fileContent.GetSHA(),
		Content:  *fileContent.Content,
		Encoding: gitdata.BlobEncoding(fileContent.GetEncoding()),
		Size:     int64(fileContent.GetSize()),
	}, nil
}

// CreateBlob implements gitdata.RemoteAPI.
func (client *Client) CreateBlob(executionContext context.Context, owner string, repository string, input gitdata.BlobInput) (gitdata.Blob, error) {
	blob, response, requestError := client.gitHubClient.Git.CreateBlob(executionContext, owner, repository, &github.Blob{
		Content:  github.String(input.Content),
		Encoding: github.String(string(input.Encoding)),
	})
	if requestError != nil {
		return gitdata.Blob{}, newRequestError(createBlobOperationNameConstant, response, requestError)
	}
	return gitdata.Blob{SHA: blob.GetSHA(), Encoding: input.Encoding}, nil
}

// CreateTree implements gitdata.RemoteAPI. Deleted entries are sent with a null sha.
func (client *Client) CreateTree(executionContext context.Context, owner string, repository string, baseTreeSHA string, entries []gitdata.TreeEntryInput) (gitdata.Tree, error) {
	treeEntries := make([]*github.TreeEntry, 0, len(entries))
	for _, entry := range entries {
		treeEntry := &github.TreeEntry{
			Path: github.String(entry.Path),
			Mode: github.String(entry.Mode),
			Type: github.String(string(entry.Type)),
		}
		if !entry.Delete {
			treeEntry.SHA = github.String(entry.SHA)
		}
		treeEntries = append(treeEntries, treeEntry)
	}

	tree, response, requestError := client.gitHubClient.Git.CreateTree(executionContext, owner, repository, baseTreeSHA, treeEntries)
	if requestError != nil {
		return gitdata.Tree{}, newRequestError(createTreeOperationNameConstant, response, requestError)
	}
	return convertTree(tree), nil
}

// CreateCommit implements gitdata.RemoteAPI.
func (client *Client) CreateCommit(executionContext context.Context, owner string, repository string, input gitdata.CommitInput) (gitdata.Commit, error) {
	parents := make([]*github.Commit, 0, len(input.ParentSHAs))
	for _, parentSHA := range input.ParentSHAs {
		parents = append(parents, &github.Commit{SHA: github.String(parentSHA)})
	}

	commit, response, requestError := client.gitHubClient.Git.CreateCommit(executionContext, owner, repository, &github.Commit{
		Message: github.String(input.Message),
		Tree:    &github.Tree{SHA: github.String(input.TreeSHA)},
		Parents: parents,
	}, nil)
	if requestError != nil {
		return gitdata.Commit{}, newRequestError(createCommitOperationNameConstant, response, requestError)
	}
	return convertCommit(commit), nil
}

// UpdateReference implements gitdata.RemoteAPI.
func (client *Client) UpdateReference(executionContext context.Context, owner string, repository string, reference string, commitSHA string, force bool) (gitdata.Reference, error) {
	gitReference, response, requestError := client.gitHubClient.Git.UpdateRef(executionContext, owner, repository, &github.Reference{
		Ref:    github.String(fullReferencePrefixConstant + reference),
		Object: &github.GitObject{SHA: github.String(commitSHA)},
	}, force)
	if requestError != nil {
		return gitdata.Reference{}, newRequestError(updateReferenceOperationNameConstant, response, requestError)
	}
	return gitdata.Reference{
		Name:      strings.TrimPrefix(gitReference.GetRef(), fullReferencePrefixConstant),
		CommitSHA: gitReference.GetObject().GetSHA(),
	}, nil
}

// ListOrganizationRepositories returns every non-archived repository of organization, following pagination.
func (client *Client) ListOrganizationRepositories(executionContext context.Context, organization string) ([]gitdata.Repository, error) {
	trimmedOrganization := strings.TrimSpace(organization)
	if len(trimmedOrganization) == 0 {
		return nil, InvalidInputError{FieldName: organizationFieldNameConstant, Message: requiredValueMessageConstant}
	}

	options := &github.RepositoryListByOrgOptions{
		Type:        repositoryListTypeConstant,
		ListOptions: github.ListOptions{PerPage: repositoriesPerPageConstant},
	}

	var repositories []gitdata.Repository
	for {
		page, response, requestError := client.gitHubClient.Repositories.ListByOrg(executionContext, trimmedOrganization, options)
		if requestError != nil {
			return nil, newRequestError(listRepositoriesOperationNameConstant, response, requestError)
		}
		for _, repository := range page {
			if repository.GetArchived() {
				continue
			}
			repositories = append(repositories, convertRepository(repository, trimmedOrganization))
		}
		if response == nil || response.NextPage == 0 {
			break
		}
		options.Page = response.NextPage
	}

	return repositories, nil
}

// GetRepository returns the identity and default branch of owner/name.
func (client *Client) GetRepository(executionContext context.Context, owner string, name string) (gitdata.Repository, error) {
	trimmedOwner := strings.TrimSpace(owner)
	trimmedName := strings.TrimSpace(name)
	if len(trimmedOwner) == 0 {
		return gitdata.Repository{}, InvalidInputError{FieldName: ownerFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(trimmedName) == 0 {
		return gitdata.Repository{}, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	repository, response, requestError := client.gitHubClient.Repositories.Get(executionContext, trimmedOwner, trimmedName)
	if requestError != nil {
		return gitdata.Repository{}, newRequestError(getRepositoryOperationNameConstant, response, requestError)
	}
	return convertRepository(repository, trimmedOwner), nil
}

func newRequestError(operation OperationName, response *github.Response, cause error) error {
	statusCode := 0
	if response != nil && response.Response != nil {
		statusCode = response.StatusCode
	}
	var errorResponse *github.ErrorResponse
	if statusCode == 0 && errors.As(cause, &errorResponse) && errorResponse.Response != nil {
		statusCode = errorResponse.Response.StatusCode
	}
	return RequestError{Operation: operation, StatusCode: statusCode, Cause: cause}
}

func qualifiedReference(reference string) string {
	if strings.HasPrefix(reference, headsReferencePrefixConstant) || strings.HasPrefix(reference, tagsReferencePrefixConstant) {
		return fullReferencePrefixConstant + reference
	}
	return reference
}

func convertCommit(commit *github.Commit) gitdata.Commit {
	parentSHAs := make([]string, 0, len(commit.Parents))
	for _, parent := range commit.Parents {
		parentSHAs = append(parentSHAs, parent.GetSHA())
	}
	return gitdata.Commit{
		SHA:        commit.GetSHA(),
		TreeSHA:    commit.GetTree().GetSHA(),
		ParentSHAs: parentSHAs,
		Message:    commit.GetMessage(),
	}
}

func convertTree(tree *github.Tree) gitdata.Tree {
	items := make([]gitdata.TreeItem, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		items = append(items, gitdata.TreeItem{
			Path: entry.GetPath(),
			Mode: entry.GetMode(),
			Type: gitdata.ObjectType(entry.GetType()),
			SHA:  entry.GetSHA(),
			Size: int64(entry.GetSize()),
		})
	}
	return gitdata.Tree{SHA: tree.GetSHA(), Items: items, Truncated: tree.GetTruncated()}
}

func convertRepository(repository *github.Repository, fallbackOwner string) gitdata.Repository {
	owner := repository.GetOwner().GetLogin()
	if len(owner) == 0 {
		owner = fallbackOwner
	}
	return gitdata.Repository{
		Owner:         owner,
		Name:          repository.GetName(),
		DefaultBranch: repository.GetDefaultBranch(),
	}
}

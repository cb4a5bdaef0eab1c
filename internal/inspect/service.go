package inspect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/temirov/orgmaint/internal/gitdata"
	"github.com/temirov/orgmaint/internal/maintenance"
)

const (
	treeActionNameConstant            = "tree"
	contentActionNameConstant         = "cat"
	pathSeparatorConstant             = "/"
	repositoryHeaderTemplateConstant  = "# %s@%s\n"
	treeLineTemplateConstant          = "%s %s %s %d %s\n"
	treeDetailTemplateConstant        = "%d files (%s)"
	contentDetailTemplateConstant     = "%s (%s)"
	missingWriterMessageConstant      = "inspection requires an output writer"
	missingServiceMessageConstant     = "inspection requires the git data service"
	missingContentPathMessageConstant = "file path must be provided"
	writeOutputErrorTemplateConstant  = "write %s output: %w"
)

var (
	// ErrOutputMissing indicates an action built without an output writer.
	ErrOutputMissing = errors.New(missingWriterMessageConstant)
	// ErrServiceMissing indicates an action built without the git data service.
	ErrServiceMissing = errors.New(missingServiceMessageConstant)
	// ErrPathMissing indicates a cat action without a file path.
	ErrPathMissing = errors.New(missingContentPathMessageConstant)
)

// TreeAction prints the flattened tree of every repository it is applied to.
type TreeAction struct {
	gitData   *gitdata.Service
	output    io.Writer
	reference string
}

// NewTreeAction constructs a TreeAction writing to output.
func NewTreeAction(gitData *gitdata.Service, output io.Writer, reference string) (*TreeAction, error) {
	if gitData == nil {
		return nil, ErrServiceMissing
	}
	if output == nil {
		return nil, ErrOutputMissing
	}
	return &TreeAction{gitData: gitData, output: output, reference: reference}, nil
}

// Name implements maintenance.Action.
func (action *TreeAction) Name() string {
	return treeActionNameConstant
}

// Apply implements maintenance.Action. Each line lists mode, type, sha, size and full path.
func (action *TreeAction) Apply(executionContext context.Context, repository gitdata.Repository) (maintenance.ActionResult, error) {
	reference := gitdata.EffectiveReference(repository, action.reference)
	flattenedTree, treeError := action.gitData.GetRepositoryFlattenedGitTree(executionContext, repository, reference)
	if treeError != nil {
		return maintenance.ActionResult{}, treeError
	}

	var listing strings.Builder
	fmt.Fprintf(&listing, repositoryHeaderTemplateConstant, repository.FullName(), reference)
	var totalSize uint64
	for _, flattenedItem := range flattenedTree.Items {
		item := flattenedItem.Item
		fmt.Fprintf(&listing, treeLineTemplateConstant, item.Mode, item.Type, item.SHA, item.Size, item.Path)
		totalSize += uint64(item.Size)
	}
	if _, writeError := io.WriteString(action.output, listing.String()); writeError != nil {
		return maintenance.ActionResult{}, fmt.Errorf(writeOutputErrorTemplateConstant, treeActionNameConstant, writeError)
	}

	return maintenance.ActionResult{Detail: fmt.Sprintf(treeDetailTemplateConstant, len(flattenedTree.Items), humanize.IBytes(totalSize))}, nil
}

// ContentAction prints one file of every repository it is applied to.
type ContentAction struct {
	gitData   *gitdata.Service
	output    io.Writer
	filePath  string
	reference string
}

// NewContentAction constructs a ContentAction for filePath writing to output.
func NewContentAction(gitData *gitdata.Service, output io.Writer, filePath string, reference string) (*ContentAction, error) {
	if gitData == nil {
		return nil, ErrServiceMissing
	}
	if output == nil {
		return nil, ErrOutputMissing
	}
	normalizedPath := strings.Join(gitdata.SplitPathSegments(strings.TrimSpace(filePath)), pathSeparatorConstant)
	if len(normalizedPath) == 0 {
		return nil, ErrPathMissing
	}
	return &ContentAction{gitData: gitData, output: output, filePath: normalizedPath, reference: reference}, nil
}

// Name implements maintenance.Action.
func (action *ContentAction) Name() string {
	return contentActionNameConstant
}

// Apply implements maintenance.Action. A repository without the file reports gitdata.ErrNotFound.
func (action *ContentAction) Apply(executionContext context.Context, repository gitdata.Repository) (maintenance.ActionResult, error) {
	reference := gitdata.EffectiveReference(repository, action.reference)
	recursive := strings.Contains(action.filePath, pathSeparatorConstant)

	located, locateError := action.gitData.FindTreeAndDescriptorForFilePath(executionContext, repository, []string{action.filePath}, reference, recursive)
	if locateError != nil {
		return maintenance.ActionResult{}, locateError
	}

	fileContent, contentError := action.gitData.GetFileDescriptorContent(executionContext, repository, located.Descriptors[0], gitdata.ContentOptions{Path: action.filePath, Ref: reference})
	if contentError != nil {
		return maintenance.ActionResult{}, contentError
	}
	if _, writeError := action.output.Write(fileContent.Data); writeError != nil {
		return maintenance.ActionResult{}, fmt.Errorf(writeOutputErrorTemplateConstant, contentActionNameConstant, writeError)
	}

	return maintenance.ActionResult{Detail: fmt.Sprintf(contentDetailTemplateConstant, action.filePath, humanize.IBytes(uint64(len(fileContent.Data))))}, nil
}

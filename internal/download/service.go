package download

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/temirov/orgmaint/internal/gitdata"
	"github.com/temirov/orgmaint/internal/maintenance"
	"github.com/temirov/orgmaint/internal/staging"
	"github.com/temirov/orgmaint/internal/utils"
	pathutils "github.com/temirov/orgmaint/internal/utils/path"
)

const (
	actionNameConstant                 = "download"
	plannedDetailTemplateConstant      = "would download %d files (%s) to %s"
	downloadedDetailTemplateConstant   = "downloaded %d files (%s) to %s"
	missingOutputMessageConstant       = "output directory must be provided"
	missingDependenciesMessageConstant = "download requires the git data service and a staging area"
	fileWrittenMessageConstant         = "file downloaded"
	logFieldPathConstant               = "path"
	logFieldSizeConstant               = "size"
)

var (
	// ErrOutputMissing indicates a download without an output directory.
	ErrOutputMissing = errors.New(missingOutputMessageConstant)
	// ErrDependenciesMissing indicates a Service built without its collaborators.
	ErrDependenciesMissing = errors.New(missingDependenciesMessageConstant)
)

// Options configures one download run. Output is an absolute local directory.
type Options struct {
	Output    string
	Reference string
	DryRun    bool
}

// Service writes every file of a repository tree below Output/<owner>/<name>.
type Service struct {
	logger      *zap.Logger
	gitData     *gitdata.Service
	stagingArea *staging.Area
	options     Options
}

// NewService validates options and constructs a Service.
func NewService(logger *zap.Logger, gitData *gitdata.Service, stagingArea *staging.Area, options Options) (*Service, error) {
	if gitData == nil || stagingArea == nil {
		return nil, ErrDependenciesMissing
	}
	if len(options.Output) == 0 {
		return nil, ErrOutputMissing
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, gitData: gitData, stagingArea: stagingArea, options: options}, nil
}

// Name implements maintenance.Action.
func (service *Service) Name() string {
	return actionNameConstant
}

// Apply implements maintenance.Action. A repository without files reports gitdata.ErrNoChanges.
func (service *Service) Apply(executionContext context.Context, repository gitdata.Repository) (maintenance.ActionResult, error) {
	reference := gitdata.EffectiveReference(repository, service.options.Reference)

	flattenedTree, treeError := service.gitData.GetRepositoryFlattenedGitTree(executionContext, repository, reference)
	if treeError != nil {
		return maintenance.ActionResult{}, treeError
	}
	if len(flattenedTree.Items) == 0 {
		return maintenance.ActionResult{}, gitdata.ErrNoChanges
	}

	repositoryFolder, folderError := pathutils.RepositoryFolder(service.options.Output, repository.Owner, repository.Name)
	if folderError != nil {
		return maintenance.ActionResult{}, folderError
	}

	if service.options.DryRun {
		var totalSize uint64
		for _, flattenedItem := range flattenedTree.Items {
			totalSize += uint64(flattenedItem.Item.Size)
		}
		return maintenance.ActionResult{
			Detail:  fmt.Sprintf(plannedDetailTemplateConstant, len(flattenedTree.Items), humanize.IBytes(totalSize), repositoryFolder),
			Planned: true,
		}, nil
	}

	logger := utils.ContextualLogger(service.logger, executionContext)
	var writtenSize uint64
	for _, flattenedItem := range flattenedTree.Items {
		if contextError := executionContext.Err(); contextError != nil {
			return maintenance.ActionResult{}, contextError
		}

		targetPath, targetError := pathutils.JoinWithinRoot(repositoryFolder, flattenedItem.Item.Path)
		if targetError != nil {
			return maintenance.ActionResult{}, targetError
		}

		fileContent, contentError := service.gitData.GetFileDescriptorContent(executionContext, repository, flattenedItem.Item, gitdata.ContentOptions{Path: flattenedItem.Item.Path, Ref: reference})
		if contentError != nil {
			return maintenance.ActionResult{}, contentError
		}
		if writeError := service.stagingArea.WriteFile(targetPath, fileContent.Data); writeError != nil {
			return maintenance.ActionResult{}, writeError
		}

		writtenSize += uint64(len(fileContent.Data))
		logger.Debug(fileWrittenMessageConstant, zap.String(logFieldPathConstant, flattenedItem.Item.Path), zap.String(logFieldSizeConstant, humanize.IBytes(uint64(len(fileContent.Data)))))
	}

	return maintenance.ActionResult{
		Detail: fmt.Sprintf(downloadedDetailTemplateConstant, len(flattenedTree.Items), humanize.IBytes(writtenSize), repositoryFolder),
	}, nil
}

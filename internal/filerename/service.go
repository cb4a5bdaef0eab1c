package filerename

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/orgmaint/internal/gitdata"
	"github.com/temirov/orgmaint/internal/maintenance"
	"github.com/temirov/orgmaint/internal/staging"
	"github.com/temirov/orgmaint/internal/utils"
)

const (
	actionNameConstant                   = "rename"
	pathSeparatorConstant                = "/"
	stagingFolderPrefixConstant          = "orgmaint-rename-"
	defaultCommitMessageTemplateConstant = "chore: rename %s to %s"
	plannedDetailTemplateConstant        = "would rename %s to %s"
	renamedDetailTemplateConstant        = "renamed %s to %s in %s"
	shortSHALengthConstant               = 7
	missingSourceMessageConstant         = "source path must be provided"
	missingTargetMessageConstant         = "target path must be provided"
	samePathsMessageConstant             = "source and target paths are identical"
	missingDependenciesMessageConstant   = "rename requires the git data service and a staging area"
	targetExistsTemplateConstant         = "target %s already exists in %s"
	sourceNotFileTemplateConstant        = "source %s is a %s, not a file"
	stagingCleanupFailedMessageConstant  = "staging folder cleanup failed"
	renameStagedMessageConstant          = "rename staged"
	logFieldSourceConstant               = "source"
	logFieldTargetConstant               = "target"
	logFieldModeConstant                 = "mode"
	logFieldStagingFolderConstant        = "staging_folder"
)

var (
	// ErrSourceMissing indicates a rename without a source path.
	ErrSourceMissing = errors.New(missingSourceMessageConstant)
	// ErrTargetMissing indicates a rename without a target path.
	ErrTargetMissing = errors.New(missingTargetMessageConstant)
	// ErrSamePaths indicates a rename onto itself.
	ErrSamePaths = errors.New(samePathsMessageConstant)
	// ErrDependenciesMissing indicates a Service built without its collaborators.
	ErrDependenciesMissing = errors.New(missingDependenciesMessageConstant)
)

// TargetExistsError reports a rename whose target path is already occupied.
type TargetExistsError struct {
	Target     string
	Repository string
}

// Error describes the collision.
func (existsError TargetExistsError) Error() string {
	return fmt.Sprintf(targetExistsTemplateConstant, existsError.Target, existsError.Repository)
}

// SourceNotFileError reports a rename source that addresses a tree or submodule.
type SourceNotFileError struct {
	Source     string
	ObjectType gitdata.ObjectType
}

// Error describes the unsupported source.
func (sourceError SourceNotFileError) Error() string {
	return fmt.Sprintf(sourceNotFileTemplateConstant, sourceError.Source, sourceError.ObjectType)
}

// Options configures one rename run.
type Options struct {
	From               string
	To                 string
	Reference          string
	CommitMessage      string
	DryRun             bool
	VerifyReferenceTip bool
}

// Service moves one file to a new path in every repository it is applied to.
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

	options.From = normalizeTreePath(options.From)
	options.To = normalizeTreePath(options.To)
	switch {
	case len(options.From) == 0:
		return nil, ErrSourceMissing
	case len(options.To) == 0:
		return nil, ErrTargetMissing
	case options.From == options.To:
		return nil, ErrSamePaths
	}

	if len(options.CommitMessage) == 0 {
		options.CommitMessage = fmt.Sprintf(defaultCommitMessageTemplateConstant, options.From, options.To)
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

// Apply implements maintenance.Action. A repository without the source file reports gitdata.ErrNotFound;
// a target that exists, or sits below an existing file, is a failure.
func (service *Service) Apply(executionContext context.Context, repository gitdata.Repository) (maintenance.ActionResult, error) {
	reference := gitdata.EffectiveReference(repository, service.options.Reference)

	hierarchy, hierarchyError := service.gitData.GetRepositoryFullGitTree(executionContext, repository, reference)
	if hierarchyError != nil {
		return maintenance.ActionResult{}, hierarchyError
	}

	sourceMatch, sourceError := gitdata.FindInGitTreeHierarchy(gitdata.SplitPathSegments(service.options.From), hierarchy)
	if sourceError != nil {
		return maintenance.ActionResult{}, sourceError
	}
	if sourceMatch.Descriptor.Type != gitdata.ObjectTypeBlob {
		return maintenance.ActionResult{}, SourceNotFileError{Source: service.options.From, ObjectType: sourceMatch.Descriptor.Type}
	}
	if occupiedPath, occupied := occupiedTargetPath(gitdata.SplitPathSegments(service.options.To), hierarchy); occupied {
		return maintenance.ActionResult{}, TargetExistsError{Target: occupiedPath, Repository: repository.FullName()}
	}

	if service.options.DryRun {
		return maintenance.ActionResult{
			Detail:  fmt.Sprintf(plannedDetailTemplateConstant, service.options.From, service.options.To),
			Planned: true,
		}, nil
	}

	fileContent, contentError := service.gitData.GetFileDescriptorContent(executionContext, repository, sourceMatch.Descriptor, gitdata.ContentOptions{Path: service.options.From, Ref: reference})
	if contentError != nil {
		return maintenance.ActionResult{}, contentError
	}

	stagingFolder, folderError := service.stagingArea.CreateTemporaryFolder(stagingFolderPrefixConstant)
	if folderError != nil {
		return maintenance.ActionResult{}, folderError
	}
	logger := utils.ContextualLogger(service.logger, executionContext)
	defer func() {
		if removeError := service.stagingArea.RemoveFolder(stagingFolder); removeError != nil {
			logger.Warn(stagingCleanupFailedMessageConstant, zap.String(logFieldStagingFolderConstant, stagingFolder), zap.Error(removeError))
		}
	}()

	if writeError := service.stagingArea.WriteFile(filepath.Join(stagingFolder, filepath.FromSlash(service.options.To)), fileContent.Data); writeError != nil {
		return maintenance.ActionResult{}, writeError
	}
	logger.Debug(
		renameStagedMessageConstant,
		zap.String(logFieldSourceConstant, service.options.From),
		zap.String(logFieldTargetConstant, service.options.To),
		zap.String(logFieldModeConstant, sourceMatch.Descriptor.Mode),
	)

	uploadResult, uploadError := service.gitData.UploadToRepository(executionContext, repository, gitdata.UploadRequest{
		Reference:     reference,
		StagingRoot:   stagingFolder,
		CommitMessage: service.options.CommitMessage,
		Glob:          gitdata.GlobOptions{FilesOnly: true},
		Encoding:      gitdata.EncodingAuto,
		ReferenceDescriptors: []gitdata.TreeItem{
			{Path: service.options.To, Mode: sourceMatch.Descriptor.Mode, Type: gitdata.ObjectTypeBlob},
			{Path: service.options.From, Mode: sourceMatch.Descriptor.Mode, Type: gitdata.ObjectTypeBlob},
		},
		Removals:           []string{service.options.From},
		VerifyReferenceTip: service.options.VerifyReferenceTip,
	})
	if uploadError != nil {
		return maintenance.ActionResult{}, uploadError
	}

	return maintenance.ActionResult{
		Detail: fmt.Sprintf(renamedDetailTemplateConstant, service.options.From, service.options.To, shortSHA(uploadResult.Commit.SHA)),
	}, nil
}

// occupiedTargetPath returns the target itself when it exists, or the first ancestor of it that is not
// a tree.
func occupiedTargetPath(targetSegments []string, hierarchy *gitdata.TreeHierarchy) (string, bool) {
	for depth := 1; depth <= len(targetSegments); depth++ {
		match, findError := gitdata.FindInGitTreeHierarchy(targetSegments[:depth], hierarchy)
		if findError != nil {
			return "", false
		}
		if depth == len(targetSegments) || match.Descriptor.Type != gitdata.ObjectTypeTree {
			return strings.Join(targetSegments[:depth], pathSeparatorConstant), true
		}
	}
	return "", false
}

func normalizeTreePath(treePath string) string {
	return strings.Join(gitdata.SplitPathSegments(strings.TrimSpace(treePath)), pathSeparatorConstant)
}

func shortSHA(sha string) string {
	if len(sha) <= shortSHALengthConstant {
		return sha
	}
	return sha[:shortSHALengthConstant]
}

package replace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/orgmaint/internal/gitdata"
	"github.com/temirov/orgmaint/internal/maintenance"
	"github.com/temirov/orgmaint/internal/staging"
	"github.com/temirov/orgmaint/internal/utils"
)

const (
	actionNameConstant                   = "replace"
	pathSeparatorConstant                = "/"
	stagingFolderPrefixConstant          = "orgmaint-replace-"
	defaultCommitMessageTemplateConstant = "chore: replace %q with %q"
	plannedDetailTemplateConstant        = "would update %s"
	updatedDetailTemplateConstant        = "updated %s in %s"
	pathListSeparatorConstant            = ", "
	shortSHALengthConstant               = 7
	missingPathsMessageConstant          = "at least one path must be provided"
	missingSearchMessageConstant         = "search text must be provided"
	missingGitDataMessageConstant        = "replace requires the git data service and a staging area"
	invalidPatternTemplateConstant       = "invalid search pattern %q: %w"
	stagingCleanupFailedMessageConstant  = "staging folder cleanup failed"
	fileStagedMessageConstant            = "replacement staged"
	logFieldPathConstant                 = "path"
	logFieldStagingFolderConstant        = "staging_folder"
)

var (
	// ErrPathsMissing indicates a replace run without target paths.
	ErrPathsMissing = errors.New(missingPathsMessageConstant)
	// ErrSearchMissing indicates a replace run without search text.
	ErrSearchMissing = errors.New(missingSearchMessageConstant)
	// ErrDependenciesMissing indicates a Service built without its collaborators.
	ErrDependenciesMissing = errors.New(missingGitDataMessageConstant)
)

// Options configures one replace run.
type Options struct {
	Paths              []string
	Search             string
	Replacement        string
	UseRegexp          bool
	Reference          string
	CommitMessage      string
	DryRun             bool
	VerifyReferenceTip bool
}

// Service rewrites the content of fixed paths in every repository it is applied to.
type Service struct {
	logger      *zap.Logger
	gitData     *gitdata.Service
	stagingArea *staging.Area
	options     Options
	pattern     *regexp.Regexp
}

// NewService validates options and constructs a Service.
func NewService(logger *zap.Logger, gitData *gitdata.Service, stagingArea *staging.Area, options Options) (*Service, error) {
	if gitData == nil || stagingArea == nil {
		return nil, ErrDependenciesMissing
	}
	if len(options.Paths) == 0 {
		return nil, ErrPathsMissing
	}
	if len(options.Search) == 0 {
		return nil, ErrSearchMissing
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	service := &Service{logger: logger, gitData: gitData, stagingArea: stagingArea, options: options}
	if options.UseRegexp {
		compiledPattern, compileError := regexp.Compile(options.Search)
		if compileError != nil {
			return nil, fmt.Errorf(invalidPatternTemplateConstant, options.Search, compileError)
		}
		service.pattern = compiledPattern
	}
	if len(service.options.CommitMessage) == 0 {
		service.options.CommitMessage = fmt.Sprintf(defaultCommitMessageTemplateConstant, options.Search, options.Replacement)
	}
	return service, nil
}

// Name implements maintenance.Action.
func (service *Service) Name() string {
	return actionNameConstant
}

// Apply implements maintenance.Action. Every path must exist in the repository; a repository where no
// file changes reports gitdata.ErrNoChanges.
func (service *Service) Apply(executionContext context.Context, repository gitdata.Repository) (maintenance.ActionResult, error) {
	reference := gitdata.EffectiveReference(repository, service.options.Reference)
	recursive := anyNestedPath(service.options.Paths)

	prior, locateError := service.gitData.FindTreeAndDescriptorForFilePath(executionContext, repository, service.options.Paths, reference, recursive)
	if locateError != nil {
		return maintenance.ActionResult{}, locateError
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

	var changedPaths []string
	for _, descriptor := range prior.Descriptors {
		fileContent, contentError := service.gitData.GetFileDescriptorContent(executionContext, repository, descriptor, gitdata.ContentOptions{Ref: reference})
		if contentError != nil {
			return maintenance.ActionResult{}, contentError
		}

		replacedContent := service.replaceContent(fileContent.Data)
		if bytes.Equal(replacedContent, fileContent.Data) {
			continue
		}

		stagedPath := filepath.Join(stagingFolder, filepath.FromSlash(descriptor.Path))
		if writeError := service.stagingArea.WriteFile(stagedPath, replacedContent); writeError != nil {
			return maintenance.ActionResult{}, writeError
		}
		logger.Debug(fileStagedMessageConstant, zap.String(logFieldPathConstant, descriptor.Path))
		changedPaths = append(changedPaths, descriptor.Path)
	}

	if len(changedPaths) == 0 {
		return maintenance.ActionResult{}, gitdata.ErrNoChanges
	}
	if service.options.DryRun {
		return maintenance.ActionResult{
			Detail:  fmt.Sprintf(plannedDetailTemplateConstant, strings.Join(changedPaths, pathListSeparatorConstant)),
			Planned: true,
		}, nil
	}

	uploadResult, uploadError := service.gitData.UploadToRepository(executionContext, repository, gitdata.UploadRequest{
		Reference:          reference,
		StagingRoot:        stagingFolder,
		CommitMessage:      service.options.CommitMessage,
		Prior:              &prior,
		Glob:               gitdata.GlobOptions{FilesOnly: true},
		RemoveSubtrees:     !recursive,
		Encoding:           gitdata.EncodingAuto,
		VerifyReferenceTip: service.options.VerifyReferenceTip,
	})
	if uploadError != nil {
		return maintenance.ActionResult{}, uploadError
	}

	return maintenance.ActionResult{
		Detail: fmt.Sprintf(updatedDetailTemplateConstant, strings.Join(changedPaths, pathListSeparatorConstant), shortSHA(uploadResult.Commit.SHA)),
	}, nil
}

func (service *Service) replaceContent(content []byte) []byte {
	if service.pattern != nil {
		return service.pattern.ReplaceAll(content, []byte(service.options.Replacement))
	}
	return bytes.ReplaceAll(content, []byte(service.options.Search), []byte(service.options.Replacement))
}

func anyNestedPath(paths []string) bool {
	for _, candidatePath := range paths {
		if strings.Contains(candidatePath, pathSeparatorConstant) {
			return true
		}
	}
	return false
}

func shortSHA(sha string) string {
	if len(sha) <= shortSHALengthConstant {
		return sha
	}
	return sha[:shortSHALengthConstant]
}

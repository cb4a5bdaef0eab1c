package gitdata

import (
	"errors"
	"fmt"
	"strings"
)

const (
	notFoundMessageConstant                   = "not found"
	invalidReferenceFormatMessageConstant     = "invalid reference format"
	noChangesMessageConstant                  = "no changes to upload"
	remoteAPINotConfiguredMessageConstant     = "remote git data api not configured"
	stagingAreaNotConfiguredMessageConstant   = "staging area not configured"
	invalidReferenceFormatTemplateConstant    = "%s %q: expected heads/<branch> or tags/<tag>"
	operationErrorTemplateConstant            = "%s %s %s failed: %v"
	operationErrorWithoutSubjectTemplate      = "%s %s failed: %v"
	missingPathsErrorTemplateConstant         = "%s: %s not found in tree %s"
	referenceMovedErrorTemplateConstant       = "%s: reference %s moved from %s to %s"
	missingPathsSeparatorConstant             = ", "
	operationNameGetReferenceConstant         = OperationName("GetReference")
	operationNameGetCommitConstant            = OperationName("GetCommit")
	operationNameGetTreeConstant              = OperationName("GetTree")
	operationNameGetBlobConstant              = OperationName("GetBlob")
	operationNameGetFileContentConstant       = OperationName("GetFileContent")
	operationNameCreateBlobConstant           = OperationName("CreateBlob")
	operationNameReadStagedFileConstant       = OperationName("ReadStagedFile")
	operationNameListStagedFilesConstant      = OperationName("ListStagedFiles")
	operationNameCreateTreeConstant           = OperationName("CreateTree")
	operationNameCreateCommitConstant         = OperationName("CreateCommit")
	operationNameUpdateReferenceConstant      = OperationName("UpdateReference")
	operationNameDecodeContentConstant        = OperationName("DecodeContent")
	operationNameResolveStagedPathConstant    = OperationName("ResolveStagedPath")
	operationNameVerifyReferenceTipConstant   = OperationName("VerifyReferenceTip")
	operationNameFindDescriptorsConstant      = OperationName("FindTreeAndDescriptorForFilePath")
	operationNameFindInHierarchyConstant      = OperationName("FindInGitTreeHierarchy")
	operationNameUploadToRepositoryConstant   = OperationName("UploadToRepository")
	operationNameGetTreesRecursivelyConstant  = OperationName("GetTreesRecursively")
	operationNameGetRepositoryGitTreeConstant = OperationName("GetRepositoryGitTree")
)

// OperationName identifies a core step for error and log context.
type OperationName string

var (
	// ErrNotFound matches every error describing a missing reference, object, or path.
	ErrNotFound = errors.New(notFoundMessageConstant)
	// ErrInvalidReferenceFormat matches malformed reference names.
	ErrInvalidReferenceFormat = errors.New(invalidReferenceFormatMessageConstant)
	// ErrNoChanges signals that the staged content equals the remote content and nothing was uploaded.
	ErrNoChanges = errors.New(noChangesMessageConstant)
	// ErrRemoteAPINotConfigured indicates a Service constructed without a remote API.
	ErrRemoteAPINotConfigured = errors.New(remoteAPINotConfiguredMessageConstant)
	// ErrStagingAreaNotConfigured indicates an upload or blob creation without a staging area.
	ErrStagingAreaNotConfigured = errors.New(stagingAreaNotConfiguredMessageConstant)
)

// InvalidReferenceFormatError reports a reference that is not heads/<branch> or tags/<tag>.
type InvalidReferenceFormatError struct {
	Reference string
}

// Error describes the malformed reference.
func (referenceError InvalidReferenceFormatError) Error() string {
	return fmt.Sprintf(invalidReferenceFormatTemplateConstant, invalidReferenceFormatMessageConstant, referenceError.Reference)
}

// Is matches ErrInvalidReferenceFormat.
func (referenceError InvalidReferenceFormatError) Is(target error) bool {
	return target == ErrInvalidReferenceFormat
}

// OperationError wraps a failed remote or local step with the repository and object it targeted.
type OperationError struct {
	Operation  OperationName
	Repository string
	Subject    string
	Cause      error
}

// Error describes the failed step.
func (operationError OperationError) Error() string {
	if len(operationError.Subject) == 0 {
		return fmt.Sprintf(operationErrorWithoutSubjectTemplate, operationError.Operation, operationError.Repository, operationError.Cause)
	}
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Repository, operationError.Subject, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// MissingPathsError reports requested paths that are absent from a tree. It matches ErrNotFound.
type MissingPathsError struct {
	Operation OperationName
	TreeSHA   string
	Paths     []string
}

// Error lists the missing paths.
func (missingPathsError MissingPathsError) Error() string {
	return fmt.Sprintf(missingPathsErrorTemplateConstant, missingPathsError.Operation, strings.Join(missingPathsError.Paths, missingPathsSeparatorConstant), missingPathsError.TreeSHA)
}

// Is matches ErrNotFound.
func (missingPathsError MissingPathsError) Is(target error) bool {
	return target == ErrNotFound
}

// ReferenceMovedError reports a reference whose tip changed between anchor resolution and the ref update.
type ReferenceMovedError struct {
	Reference   string
	ExpectedSHA string
	ActualSHA   string
}

// Error describes the concurrent update.
func (movedError ReferenceMovedError) Error() string {
	return fmt.Sprintf(referenceMovedErrorTemplateConstant, operationNameVerifyReferenceTipConstant, movedError.Reference, movedError.ExpectedSHA, movedError.ActualSHA)
}

func newOperationError(operation OperationName, repository Repository, subject string, cause error) error {
	return OperationError{
		Operation:  operation,
		Repository: repository.FullName(),
		Subject:    subject,
		Cause:      cause,
	}
}

package gitdata

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const (
	headsReferencePrefixConstant           = "heads/"
	fullReferencePrefixConstant            = "refs/"
	referenceUpdatedMessageConstant        = "reference moved"
	currentCommitResolvedMessageConstant   = "current commit resolved"
	referenceFormatExpressionConstant      = `^(heads|tags)/\S+$`
	referenceTipVerifiedMessageConstant    = "reference tip verified"
	referenceTipMismatchMessageConstant    = "reference tip changed since anchor resolution"
	logFieldExpectedCommitSHAConstant      = "expected_commit_sha"
	logFieldActualCommitSHAConstant        = "actual_commit_sha"
	logFieldPreviousCommitSHAFieldConstant = "previous_commit_sha"
)

var referenceFormatExpression = regexp.MustCompile(referenceFormatExpressionConstant)

// ValidateReference reports whether ref has the heads/<branch> or tags/<tag> shape.
func ValidateReference(ref string) error {
	if !referenceFormatExpression.MatchString(ref) {
		return InvalidReferenceFormatError{Reference: ref}
	}
	return nil
}

// EffectiveReference returns the reference an operation should target: the trimmed override when one
// is given, otherwise the repository's default branch. A leading refs/ is dropped.
func EffectiveReference(repository Repository, override string) string {
	trimmedOverride := strings.TrimPrefix(strings.TrimSpace(override), fullReferencePrefixConstant)
	if len(trimmedOverride) > 0 {
		return trimmedOverride
	}
	return headsReferencePrefixConstant + strings.TrimSpace(repository.DefaultBranch)
}

// GetReference resolves ref to the commit it points at. Malformed input fails before any remote call.
func (service *Service) GetReference(executionContext context.Context, repository Repository, ref string) (Reference, error) {
	if validationError := repository.Validate(); validationError != nil {
		return Reference{}, validationError
	}
	if referenceError := ValidateReference(ref); referenceError != nil {
		return Reference{}, referenceError
	}

	reference, fetchError := service.remoteAPI.GetReference(executionContext, repository.Owner, repository.Name, ref)
	if fetchError != nil {
		return Reference{}, newOperationError(operationNameGetReferenceConstant, repository, ref, fetchError)
	}
	return reference, nil
}

// GetCommit returns the commit with the given sha.
func (service *Service) GetCommit(executionContext context.Context, repository Repository, commitSHA string) (Commit, error) {
	if validationError := repository.Validate(); validationError != nil {
		return Commit{}, validationError
	}

	commit, fetchError := service.remoteAPI.GetCommit(executionContext, repository.Owner, repository.Name, commitSHA)
	if fetchError != nil {
		return Commit{}, newOperationError(operationNameGetCommitConstant, repository, commitSHA, fetchError)
	}
	return commit, nil
}

// GetCurrentCommit resolves ref to its commit and root tree. Callers building a new commit must call
// this after their own earlier writes and before creating the new tree.
func (service *Service) GetCurrentCommit(executionContext context.Context, repository Repository, ref string) (CurrentCommit, error) {
	reference, referenceError := service.GetReference(executionContext, repository, ref)
	if referenceError != nil {
		return CurrentCommit{}, referenceError
	}

	commit, commitError := service.GetCommit(executionContext, repository, reference.CommitSHA)
	if commitError != nil {
		return CurrentCommit{}, commitError
	}

	service.loggerFor(executionContext, repository).Debug(
		currentCommitResolvedMessageConstant,
		zap.String(logFieldReferenceConstant, ref),
		zap.String(logFieldCommitSHAConstant, commit.SHA),
		zap.String(logFieldTreeSHAConstant, commit.TreeSHA),
	)

	return CurrentCommit{CommitSHA: commit.SHA, TreeSHA: commit.TreeSHA}, nil
}

// SetCommitBranch moves ref to commitSHA unconditionally. No fast-forward check is made.
func (service *Service) SetCommitBranch(executionContext context.Context, repository Repository, ref string, commitSHA string) (Reference, error) {
	if validationError := repository.Validate(); validationError != nil {
		return Reference{}, validationError
	}
	if referenceError := ValidateReference(ref); referenceError != nil {
		return Reference{}, referenceError
	}

	reference, updateError := service.remoteAPI.UpdateReference(executionContext, repository.Owner, repository.Name, ref, commitSHA, true)
	if updateError != nil {
		return Reference{}, newOperationError(operationNameUpdateReferenceConstant, repository, ref, updateError)
	}

	service.loggerFor(executionContext, repository).Info(
		referenceUpdatedMessageConstant,
		zap.String(logFieldReferenceConstant, ref),
		zap.String(logFieldCommitSHAConstant, reference.CommitSHA),
	)

	return reference, nil
}

func (service *Service) verifyReferenceTip(executionContext context.Context, repository Repository, ref string, expectedCommitSHA string) error {
	reference, referenceError := service.GetReference(executionContext, repository, ref)
	if referenceError != nil {
		return referenceError
	}

	logger := service.loggerFor(executionContext, repository)
	if reference.CommitSHA != expectedCommitSHA {
		logger.Warn(
			referenceTipMismatchMessageConstant,
			zap.String(logFieldReferenceConstant, ref),
			zap.String(logFieldExpectedCommitSHAConstant, expectedCommitSHA),
			zap.String(logFieldActualCommitSHAConstant, reference.CommitSHA),
		)
		return ReferenceMovedError{Reference: ref, ExpectedSHA: expectedCommitSHA, ActualSHA: reference.CommitSHA}
	}

	logger.Debug(referenceTipVerifiedMessageConstant, zap.String(logFieldReferenceConstant, ref), zap.String(logFieldPreviousCommitSHAFieldConstant, expectedCommitSHA))
	return nil
}

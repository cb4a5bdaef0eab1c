package gitdata

import (
	"context"

	"go.uber.org/zap"

	"github.com/temirov/orgmaint/internal/utils"
)

const (
	logFieldTreeSHAConstant       = "tree_sha"
	logFieldCommitSHAConstant     = "commit_sha"
	logFieldReferenceConstant     = "reference"
	logFieldEntryCountConstant    = "entry_count"
	logFieldBlobCountConstant     = "blob_count"
	logFieldSkippedCountConstant  = "skipped_count"
	logFieldRemovalCountConstant  = "removal_count"
	logFieldPathConstant          = "path"
	logFieldSizeConstant          = "size"
	logFieldStrategyConstant      = "strategy"
	logFieldSubtreeCountConstant  = "subtree_count"
	logFieldRepositoryConstant    = "repository_full_name"
	logFieldStagingRootConstant   = "staging_root"
	logFieldFullTreeModeConstant  = "full_tree_mode"
	logFieldRemoveSubtreeConstant = "remove_subtrees"
)

// Service reads and mutates repository object graphs through a RemoteAPI.
type Service struct {
	logger      *zap.Logger
	remoteAPI   RemoteAPI
	stagingArea StagingArea
}

// NewService constructs a Service. The staging area is only required by blob creation and uploads.
func NewService(logger *zap.Logger, remoteAPI RemoteAPI, stagingArea StagingArea) (*Service, error) {
	if remoteAPI == nil {
		return nil, ErrRemoteAPINotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, remoteAPI: remoteAPI, stagingArea: stagingArea}, nil
}

func (service *Service) loggerFor(executionContext context.Context, repository Repository) *zap.Logger {
	return utils.ContextualLogger(service.logger, executionContext).With(zap.String(logFieldRepositoryConstant, repository.FullName()))
}

package gitdata

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	treeCreatedMessageConstant          = "tree created"
	commitCreatedMessageConstant        = "commit created"
	stagedFilesCollectedMessageConstant = "staged files collected"
	uploadCompletedMessageConstant      = "upload completed"
	uploadUnchangedMessageConstant      = "staged content matches remote content"
)

// StagedBlob is a created blob together with the tree path it will occupy.
type StagedBlob struct {
	Path string
	SHA  string
}

// TreeRequest describes a tree to synthesize.
type TreeRequest struct {
	Blobs []StagedBlob
	// BaseTree selects full-tree mode: its entries are sent ahead of the new ones.
	BaseTree *Tree
	// ParentTreeSHA is sent as base_tree so entries not listed are retained.
	ParentTreeSHA string
	// ReferenceDescriptors supply mode and type for new blobs by path.
	ReferenceDescriptors []TreeItem
	// Removals are paths deleted from the resulting tree.
	Removals []string
}

// UploadRequest describes a commit synthesized from a local staging directory.
type UploadRequest struct {
	Reference     string
	StagingRoot   string
	CommitMessage string
	// Prior is the tree and descriptors the caller located before staging. When set, the upload runs
	// in full-tree mode and staged files identical to their prior descriptor are skipped.
	Prior *TreeAndDescriptors
	// RemoveSubtrees strips tree entries from Prior.Tree. Callers pass !Prior.Recursive.
	RemoveSubtrees bool
	// Glob narrows the staged files; directories are always excluded.
	Glob                 GlobOptions
	Encoding             BlobEncoding
	ReferenceDescriptors []TreeItem
	Removals             []string
	// VerifyReferenceTip re-reads the reference before moving it and aborts when it left the anchor.
	VerifyReferenceTip bool
}

// UploadResult records every object an upload produced.
type UploadResult struct {
	Anchor    CurrentCommit
	Blobs     []StagedBlob
	Tree      Tree
	Commit    Commit
	Reference Reference
}

type pendingBlob struct {
	filePath string
	treePath string
	data     []byte
}

// CreateNewTree creates a tree from new blobs, removals and, in full-tree mode, the entries of a base tree.
func (service *Service) CreateNewTree(executionContext context.Context, repository Repository, request TreeRequest) (Tree, error) {
	if validationError := repository.Validate(); validationError != nil {
		return Tree{}, validationError
	}

	changedEntries := make([]TreeEntryInput, 0, len(request.Blobs)+len(request.Removals))
	for _, stagedBlob := range request.Blobs {
		mode, objectType := ModeFile, ObjectTypeBlob
		if descriptor, found := findDescriptorByPath(request.ReferenceDescriptors, stagedBlob.Path); found {
			mode, objectType = descriptor.Mode, descriptor.Type
		}
		changedEntries = append(changedEntries, TreeEntryInput{Path: stagedBlob.Path, Mode: mode, Type: objectType, SHA: stagedBlob.SHA})
	}
	for _, removedPath := range request.Removals {
		mode := ModeFile
		if descriptor, found := findDescriptorByPath(request.ReferenceDescriptors, removedPath); found {
			mode = descriptor.Mode
		}
		changedEntries = append(changedEntries, TreeEntryInput{Path: removedPath, Mode: mode, Type: ObjectTypeBlob, Delete: true})
	}

	entries := changedEntries
	fullTreeMode := request.BaseTree != nil
	if fullTreeMode {
		entries = append(retainedBaseEntries(request.BaseTree.Items, changedEntries), changedEntries...)
	}
	if len(entries) == 0 {
		return Tree{}, ErrNoChanges
	}

	tree, createError := service.remoteAPI.CreateTree(executionContext, repository.Owner, repository.Name, request.ParentTreeSHA, entries)
	if createError != nil {
		return Tree{}, newOperationError(operationNameCreateTreeConstant, repository, request.ParentTreeSHA, createError)
	}

	service.loggerFor(executionContext, repository).Info(
		treeCreatedMessageConstant,
		zap.String(logFieldTreeSHAConstant, tree.SHA),
		zap.Bool(logFieldFullTreeModeConstant, fullTreeMode),
		zap.Int(logFieldEntryCountConstant, len(entries)),
		zap.Int(logFieldRemovalCountConstant, len(request.Removals)),
	)

	return tree, nil
}

// retainedBaseEntries drops base entries replaced or removed by a change, and tree entries that contain
// any other entry being sent, so no path is listed twice.
func retainedBaseEntries(baseItems []TreeItem, changedEntries []TreeEntryInput) []TreeEntryInput {
	changedPaths := make(map[string]struct{}, len(changedEntries))
	for _, changedEntry := range changedEntries {
		changedPaths[changedEntry.Path] = struct{}{}
	}

	candidates := make([]TreeItem, 0, len(baseItems))
	sentPaths := make([]string, 0, len(baseItems)+len(changedEntries))
	for _, baseItem := range baseItems {
		if _, changed := changedPaths[baseItem.Path]; changed {
			continue
		}
		candidates = append(candidates, baseItem)
		if baseItem.Type != ObjectTypeTree {
			sentPaths = append(sentPaths, baseItem.Path)
		}
	}
	for changedPath := range changedPaths {
		sentPaths = append(sentPaths, changedPath)
	}

	retained := make([]TreeEntryInput, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Type == ObjectTypeTree && containsDescendant(candidate.Path, sentPaths) {
			continue
		}
		retained = append(retained, TreeEntryInput{Path: candidate.Path, Mode: candidate.Mode, Type: candidate.Type, SHA: candidate.SHA})
	}
	return retained
}

func containsDescendant(ancestorPath string, paths []string) bool {
	for _, candidatePath := range paths {
		if isAncestorPath(ancestorPath, candidatePath) {
			return true
		}
	}
	return false
}

func findDescriptorByPath(descriptors []TreeItem, treePath string) (TreeItem, bool) {
	for _, descriptor := range descriptors {
		if descriptor.Path == treePath {
			return descriptor, true
		}
	}
	return TreeItem{}, false
}

// CreateCommit creates a commit of treeSHA whose sole parent is parentSHA.
func (service *Service) CreateCommit(executionContext context.Context, repository Repository, message string, treeSHA string, parentSHA string) (Commit, error) {
	if validationError := repository.Validate(); validationError != nil {
		return Commit{}, validationError
	}

	commit, createError := service.remoteAPI.CreateCommit(executionContext, repository.Owner, repository.Name, CommitInput{
		Message:    message,
		TreeSHA:    treeSHA,
		ParentSHAs: []string{parentSHA},
	})
	if createError != nil {
		return Commit{}, newOperationError(operationNameCreateCommitConstant, repository, treeSHA, createError)
	}

	service.loggerFor(executionContext, repository).Info(
		commitCreatedMessageConstant,
		zap.String(logFieldCommitSHAConstant, commit.SHA),
		zap.String(logFieldTreeSHAConstant, treeSHA),
	)
	return commit, nil
}

// UploadToRepository commits the staged files below request.StagingRoot on top of the current tip of
// request.Reference and moves the reference to the new commit. It stops at the first failing step and
// returns ErrNoChanges without writing when the staged files already match the remote content.
func (service *Service) UploadToRepository(executionContext context.Context, repository Repository, request UploadRequest) (UploadResult, error) {
	if service.stagingArea == nil {
		return UploadResult{}, ErrStagingAreaNotConfigured
	}

	anchor, anchorError := service.GetCurrentCommit(executionContext, repository, request.Reference)
	if anchorError != nil {
		return UploadResult{}, anchorError
	}
	result := UploadResult{Anchor: anchor}

	var baseTree *Tree
	var priorDescriptors []TreeItem
	referenceDescriptors := request.ReferenceDescriptors
	if request.Prior != nil {
		shapedTree := shapeBaseTree(request.Prior.Tree, request.RemoveSubtrees)
		baseTree = &shapedTree
		priorDescriptors = request.Prior.Descriptors
		referenceDescriptors = append(append([]TreeItem{}, request.Prior.Descriptors...), request.ReferenceDescriptors...)
	}

	pendingBlobs, skippedCount, stagingError := service.collectStagedFiles(repository, request, priorDescriptors)
	if stagingError != nil {
		return UploadResult{}, stagingError
	}

	logger := service.loggerFor(executionContext, repository)
	logger.Debug(
		stagedFilesCollectedMessageConstant,
		zap.String(logFieldStagingRootConstant, request.StagingRoot),
		zap.Int(logFieldBlobCountConstant, len(pendingBlobs)),
		zap.Int(logFieldSkippedCountConstant, skippedCount),
		zap.Bool(logFieldRemoveSubtreeConstant, request.RemoveSubtrees),
	)

	if len(pendingBlobs) == 0 && len(request.Removals) == 0 {
		logger.Info(uploadUnchangedMessageConstant, zap.String(logFieldReferenceConstant, request.Reference))
		return UploadResult{}, ErrNoChanges
	}

	stagedBlobs, blobError := service.createBlobs(executionContext, repository, pendingBlobs, request.Encoding)
	if blobError != nil {
		return UploadResult{}, blobError
	}
	result.Blobs = stagedBlobs

	tree, treeError := service.CreateNewTree(executionContext, repository, TreeRequest{
		Blobs:    stagedBlobs,
		BaseTree: baseTree,
		// Sent in full-tree mode too: a shallow Prior listing names subtrees only by sha, and the
		// anchor tree as base_tree keeps entries the listing stripped with RemoveSubtrees.
		ParentTreeSHA:        anchor.TreeSHA,
		ReferenceDescriptors: referenceDescriptors,
		Removals:             request.Removals,
	})
	if treeError != nil {
		return UploadResult{}, treeError
	}
	result.Tree = tree

	commit, commitError := service.CreateCommit(executionContext, repository, request.CommitMessage, tree.SHA, anchor.CommitSHA)
	if commitError != nil {
		return UploadResult{}, commitError
	}
	result.Commit = commit

	if request.VerifyReferenceTip {
		if tipError := service.verifyReferenceTip(executionContext, repository, request.Reference, anchor.CommitSHA); tipError != nil {
			return UploadResult{}, tipError
		}
	}

	reference, referenceError := service.SetCommitBranch(executionContext, repository, request.Reference, commit.SHA)
	if referenceError != nil {
		return UploadResult{}, referenceError
	}
	result.Reference = reference

	logger.Info(
		uploadCompletedMessageConstant,
		zap.String(logFieldReferenceConstant, request.Reference),
		zap.String(logFieldCommitSHAConstant, commit.SHA),
		zap.Int(logFieldBlobCountConstant, len(stagedBlobs)),
	)
	return result, nil
}

func shapeBaseTree(priorTree Tree, removeSubtrees bool) Tree {
	shapedTree := Tree{SHA: priorTree.SHA, Truncated: priorTree.Truncated, Items: make([]TreeItem, 0, len(priorTree.Items))}
	for _, treeItem := range priorTree.Items {
		if removeSubtrees && treeItem.Type == ObjectTypeTree {
			continue
		}
		shapedTree.Items = append(shapedTree.Items, treeItem)
	}
	return shapedTree
}

func (service *Service) collectStagedFiles(repository Repository, request UploadRequest, priorDescriptors []TreeItem) ([]pendingBlob, int, error) {
	// Directories below the staging root are never uploaded; only their files become blobs.
	globOptions := request.Glob
	globOptions.FilesOnly = true
	filePaths, listError := service.stagingArea.ListFiles(request.StagingRoot, globOptions)
	if listError != nil {
		return nil, 0, newOperationError(operationNameListStagedFilesConstant, repository, request.StagingRoot, listError)
	}

	pendingBlobs := make([]pendingBlob, 0, len(filePaths))
	skippedCount := 0
	for _, filePath := range filePaths {
		relativePath, relativeError := service.stagingArea.RelativePath(request.StagingRoot, filePath)
		if relativeError != nil {
			return nil, 0, newOperationError(operationNameResolveStagedPathConstant, repository, filePath, relativeError)
		}
		treePath := filepath.ToSlash(relativePath)

		data, readError := service.stagingArea.ReadFile(filePath)
		if readError != nil {
			return nil, 0, newOperationError(operationNameReadStagedFileConstant, repository, filePath, readError)
		}

		if descriptor, found := findDescriptorByPath(priorDescriptors, treePath); found && descriptor.SHA == LocalBlobSHA(data) {
			skippedCount++
			continue
		}
		pendingBlobs = append(pendingBlobs, pendingBlob{filePath: filePath, treePath: treePath, data: data})
	}
	return pendingBlobs, skippedCount, nil
}

func (service *Service) createBlobs(executionContext context.Context, repository Repository, pendingBlobs []pendingBlob, encoding BlobEncoding) ([]StagedBlob, error) {
	stagedBlobs := make([]StagedBlob, len(pendingBlobs))
	blobGroup, groupContext := errgroup.WithContext(executionContext)
	for blobIndex := range pendingBlobs {
		blobIndex := blobIndex
		blobGroup.Go(func() error {
			pending := pendingBlobs[blobIndex]
			blobSHA, createError := service.createBlob(groupContext, repository, pending.filePath, pending.data, encoding)
			if createError != nil {
				return createError
			}
			stagedBlobs[blobIndex] = StagedBlob{Path: pending.treePath, SHA: blobSHA}
			return nil
		})
	}
	if waitError := blobGroup.Wait(); waitError != nil {
		return nil, waitError
	}
	return stagedBlobs, nil
}

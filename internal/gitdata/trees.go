package gitdata

import (
	"context"

	"go.uber.org/zap"
)

const (
	treeListingTruncatedMessageConstant = "tree listing truncated"
	treeFetchedMessageConstant          = "tree fetched"
	fullTreeMaterializedMessageConstant = "full tree materialized"
	logFieldRecursiveConstant           = "recursive"
)

// GetTree fetches one tree. A truncated listing is logged as a warning and returned as-is.
func (service *Service) GetTree(executionContext context.Context, repository Repository, treeSHA string, recursive bool) (Tree, error) {
	if validationError := repository.Validate(); validationError != nil {
		return Tree{}, validationError
	}

	tree, fetchError := service.remoteAPI.GetTree(executionContext, repository.Owner, repository.Name, treeSHA, recursive)
	if fetchError != nil {
		return Tree{}, newOperationError(operationNameGetTreeConstant, repository, treeSHA, fetchError)
	}

	logger := service.loggerFor(executionContext, repository)
	if tree.Truncated {
		logger.Warn(
			treeListingTruncatedMessageConstant,
			zap.String(logFieldTreeSHAConstant, treeSHA),
			zap.Int(logFieldEntryCountConstant, len(tree.Items)),
		)
	} else {
		logger.Debug(
			treeFetchedMessageConstant,
			zap.String(logFieldTreeSHAConstant, treeSHA),
			zap.Bool(logFieldRecursiveConstant, recursive),
			zap.Int(logFieldEntryCountConstant, len(tree.Items)),
		)
	}

	return tree, nil
}

// GetRepositoryGitTree resolves ref to its commit and fetches the commit's root tree.
func (service *Service) GetRepositoryGitTree(executionContext context.Context, repository Repository, ref string, recursive bool) (Tree, error) {
	currentCommit, commitError := service.GetCurrentCommit(executionContext, repository, ref)
	if commitError != nil {
		return Tree{}, commitError
	}
	return service.GetTree(executionContext, repository, currentCommit.TreeSHA, recursive)
}

// GetTreesRecursively materializes every subtree of rootTree with one shallow fetch per subtree.
// The order of entries within each level is preserved.
func (service *Service) GetTreesRecursively(executionContext context.Context, repository Repository, rootTree Tree) (*TreeHierarchy, error) {
	hierarchy := &TreeHierarchy{SHA: rootTree.SHA, Nodes: make([]TreeNode, 0, len(rootTree.Items))}

	for _, treeItem := range rootTree.Items {
		if treeItem.Type != ObjectTypeTree {
			hierarchy.Nodes = append(hierarchy.Nodes, Leaf{TreeItem: treeItem})
			continue
		}

		subtree, subtreeError := service.GetTree(executionContext, repository, treeItem.SHA, false)
		if subtreeError != nil {
			return nil, subtreeError
		}

		subHierarchy, hierarchyError := service.GetTreesRecursively(executionContext, repository, subtree)
		if hierarchyError != nil {
			return nil, hierarchyError
		}

		hierarchy.Nodes = append(hierarchy.Nodes, Branch{TreeItem: treeItem, Hierarchy: subHierarchy})
	}

	return hierarchy, nil
}

// GetRepositoryFullGitTree resolves ref and materializes the complete hierarchy of its root tree.
func (service *Service) GetRepositoryFullGitTree(executionContext context.Context, repository Repository, ref string) (*TreeHierarchy, error) {
	rootTree, treeError := service.GetRepositoryGitTree(executionContext, repository, ref, false)
	if treeError != nil {
		return nil, treeError
	}

	hierarchy, hierarchyError := service.GetTreesRecursively(executionContext, repository, rootTree)
	if hierarchyError != nil {
		return nil, hierarchyError
	}

	service.loggerFor(executionContext, repository).Debug(
		fullTreeMaterializedMessageConstant,
		zap.String(logFieldReferenceConstant, ref),
		zap.String(logFieldTreeSHAConstant, hierarchy.SHA),
	)

	return hierarchy, nil
}

// GetRepositoryFlattenedGitTree is GetRepositoryFullGitTree collapsed to the list of blobs.
func (service *Service) GetRepositoryFlattenedGitTree(executionContext context.Context, repository Repository, ref string) (FlattenedTree, error) {
	hierarchy, hierarchyError := service.GetRepositoryFullGitTree(executionContext, repository, ref)
	if hierarchyError != nil {
		return FlattenedTree{}, hierarchyError
	}
	return FlattenGitTreeHierarchy(hierarchy), nil
}

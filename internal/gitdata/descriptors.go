package gitdata

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const (
	descriptorsResolvedMessageConstant = "descriptors resolved"
	logFieldPathsConstant              = "paths"
)

// FindMatchingDescriptor returns the first item of objectType whose path equals exactPath.
func FindMatchingDescriptor(treeItems []TreeItem, objectType ObjectType, exactPath string) (TreeItem, bool) {
	for _, treeItem := range treeItems {
		if treeItem.Type == objectType && treeItem.Path == exactPath {
			return treeItem, true
		}
	}
	return TreeItem{}, false
}

// FindTreeAndDescriptorForFilePath fetches the tree of ref once and resolves every requested blob path.
// The call fails with a MissingPathsError naming every absent path when any path is missing.
func (service *Service) FindTreeAndDescriptorForFilePath(executionContext context.Context, repository Repository, filePaths []string, ref string, recursive bool) (TreeAndDescriptors, error) {
	tree, treeError := service.GetRepositoryGitTree(executionContext, repository, ref, recursive)
	if treeError != nil {
		return TreeAndDescriptors{}, treeError
	}

	descriptors := make([]TreeItem, 0, len(filePaths))
	var missingPaths []string
	for _, filePath := range filePaths {
		descriptor, found := FindMatchingDescriptor(tree.Items, ObjectTypeBlob, filePath)
		if !found {
			missingPaths = append(missingPaths, filePath)
			continue
		}
		descriptors = append(descriptors, descriptor)
	}

	if len(missingPaths) > 0 {
		return TreeAndDescriptors{}, MissingPathsError{Operation: operationNameFindDescriptorsConstant, TreeSHA: tree.SHA, Paths: missingPaths}
	}

	service.loggerFor(executionContext, repository).Debug(
		descriptorsResolvedMessageConstant,
		zap.String(logFieldTreeSHAConstant, tree.SHA),
		zap.Strings(logFieldPathsConstant, filePaths),
	)

	return TreeAndDescriptors{Tree: tree, Descriptors: descriptors, Recursive: recursive}, nil
}

// FindInGitTreeHierarchy descends hierarchy one segment at a time. The returned TreeSHAs start with the
// root sha and list every subtree traversed on the way to the final descriptor.
func FindInGitTreeHierarchy(pathSegments []string, hierarchy *TreeHierarchy) (HierarchyMatch, error) {
	requestedPath := strings.Join(pathSegments, pathSeparatorConstant)
	if hierarchy == nil || len(pathSegments) == 0 {
		return HierarchyMatch{}, MissingPathsError{Operation: operationNameFindInHierarchyConstant, Paths: []string{requestedPath}}
	}

	treeSHAs := []string{hierarchy.SHA}
	currentHierarchy := hierarchy
	lastSegmentIndex := len(pathSegments) - 1

	for segmentIndex, segment := range pathSegments {
		node, found := findNode(currentHierarchy, segment)
		if !found {
			return HierarchyMatch{}, MissingPathsError{Operation: operationNameFindInHierarchyConstant, TreeSHA: currentHierarchy.SHA, Paths: []string{requestedPath}}
		}

		if segmentIndex == lastSegmentIndex {
			return HierarchyMatch{Descriptor: node.Item(), TreeSHAs: treeSHAs}, nil
		}

		branch, isBranch := node.(Branch)
		if !isBranch || branch.Hierarchy == nil {
			return HierarchyMatch{}, MissingPathsError{Operation: operationNameFindInHierarchyConstant, TreeSHA: currentHierarchy.SHA, Paths: []string{requestedPath}}
		}
		currentHierarchy = branch.Hierarchy
		treeSHAs = append(treeSHAs, currentHierarchy.SHA)
	}

	return HierarchyMatch{}, MissingPathsError{Operation: operationNameFindInHierarchyConstant, TreeSHA: hierarchy.SHA, Paths: []string{requestedPath}}
}

func findNode(hierarchy *TreeHierarchy, name string) (TreeNode, bool) {
	for _, node := range hierarchy.Nodes {
		if node.Item().Path == name {
			return node, true
		}
	}
	return nil, false
}

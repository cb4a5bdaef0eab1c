package gitdata

import (
	"errors"
	"path"
	"strings"
)

const (
	pathSeparatorConstant               = "/"
	truncatedListingMessageConstant     = "cannot build a hierarchy from a truncated tree listing"
	operationNameBuildHierarchyConstant = OperationName("BuildHierarchy")
	rootDirectoryPathConstant           = ""
)

// ErrTruncatedListing indicates a hierarchy was requested from a listing known to be incomplete.
var ErrTruncatedListing = errors.New(truncatedListingMessageConstant)

// FlattenGitTreeHierarchy walks hierarchy depth-first and emits one item per blob, with paths joined from
// the root and the sha of the blob's direct parent tree. Submodule entries are not blobs and are omitted.
func FlattenGitTreeHierarchy(hierarchy *TreeHierarchy) FlattenedTree {
	if hierarchy == nil {
		return FlattenedTree{}
	}
	flattenedTree := FlattenedTree{SHA: hierarchy.SHA}
	flattenedTree.Items = appendFlattenedItems(flattenedTree.Items, hierarchy, rootDirectoryPathConstant)
	return flattenedTree
}

func appendFlattenedItems(items []FlattenedItem, hierarchy *TreeHierarchy, directoryPath string) []FlattenedItem {
	for _, node := range hierarchy.Nodes {
		switch typedNode := node.(type) {
		case Leaf:
			if typedNode.TreeItem.Type != ObjectTypeBlob {
				continue
			}
			flattenedItem := typedNode.TreeItem
			flattenedItem.Path = joinTreePath(directoryPath, flattenedItem.Path)
			items = append(items, FlattenedItem{Item: flattenedItem, ParentTreeSHA: hierarchy.SHA})
		case Branch:
			if typedNode.Hierarchy == nil {
				continue
			}
			items = appendFlattenedItems(items, typedNode.Hierarchy, joinTreePath(directoryPath, typedNode.TreeItem.Path))
		}
	}
	return items
}

// BuildHierarchy nests a complete recursive listing into a TreeHierarchy without remote calls.
// Entry paths inside the result are single segments, as in shallow listings.
func BuildHierarchy(tree Tree) (*TreeHierarchy, error) {
	if tree.Truncated {
		return nil, ErrTruncatedListing
	}

	root := &TreeHierarchy{SHA: tree.SHA}
	directories := map[string]*TreeHierarchy{rootDirectoryPathConstant: root}
	var orphanedPaths []string

	for _, treeItem := range tree.Items {
		parentPath, baseName := splitTreePath(treeItem.Path)
		parent, parentFound := directories[parentPath]
		if !parentFound {
			orphanedPaths = append(orphanedPaths, parentPath)
			continue
		}

		nodeItem := treeItem
		nodeItem.Path = baseName
		if treeItem.Type != ObjectTypeTree {
			parent.Nodes = append(parent.Nodes, Leaf{TreeItem: nodeItem})
			continue
		}

		subHierarchy := &TreeHierarchy{SHA: treeItem.SHA}
		directories[treeItem.Path] = subHierarchy
		parent.Nodes = append(parent.Nodes, Branch{TreeItem: nodeItem, Hierarchy: subHierarchy})
	}

	if len(orphanedPaths) > 0 {
		return nil, MissingPathsError{Operation: operationNameBuildHierarchyConstant, TreeSHA: tree.SHA, Paths: orphanedPaths}
	}
	return root, nil
}

// SplitPathSegments splits a slash-separated tree path, ignoring empty segments.
func SplitPathSegments(treePath string) []string {
	rawSegments := strings.Split(treePath, pathSeparatorConstant)
	segments := make([]string, 0, len(rawSegments))
	for _, segment := range rawSegments {
		if len(segment) > 0 {
			segments = append(segments, segment)
		}
	}
	return segments
}

func splitTreePath(treePath string) (string, string) {
	separatorIndex := strings.LastIndex(treePath, pathSeparatorConstant)
	if separatorIndex < 0 {
		return rootDirectoryPathConstant, treePath
	}
	return treePath[:separatorIndex], treePath[separatorIndex+1:]
}

func joinTreePath(directoryPath string, name string) string {
	if len(directoryPath) == 0 {
		return name
	}
	return path.Join(directoryPath, name)
}

func isAncestorPath(ancestorPath string, descendantPath string) bool {
	return strings.HasPrefix(descendantPath, ancestorPath+pathSeparatorConstant)
}

package gitdata

import (
	"errors"
	"strings"
)

const (
	repositoryIdentifierSeparatorConstant = "/"
	repositoryOwnerMissingMessageConstant = "repository owner must be provided"
	repositoryNameMissingMessageConstant  = "repository name must be provided"
)

// Git file modes as reported by the remote tree endpoints.
const (
	ModeFile       = "100644"
	ModeExecutable = "100755"
	ModeSymlink    = "120000"
	ModeDirectory  = "040000"
	ModeSubmodule  = "160000"
)

// ObjectType identifies the kind of object a tree entry points at.
type ObjectType string

// Object type enumerations.
const (
	ObjectTypeBlob   ObjectType = "blob"
	ObjectTypeTree   ObjectType = "tree"
	ObjectTypeCommit ObjectType = "commit"
)

// BlobEncoding names the transfer encoding of blob content.
type BlobEncoding string

// Blob encoding enumerations. EncodingAuto is only meaningful as a request value.
const (
	EncodingUTF8   BlobEncoding = "utf-8"
	EncodingBase64 BlobEncoding = "base64"
	EncodingAuto   BlobEncoding = ""
)

var (
	// ErrRepositoryOwnerMissing indicates a repository without an owner login.
	ErrRepositoryOwnerMissing = errors.New(repositoryOwnerMissingMessageConstant)
	// ErrRepositoryNameMissing indicates a repository without a name.
	ErrRepositoryNameMissing = errors.New(repositoryNameMissingMessageConstant)
)

// Repository identifies a remote repository. It is supplied by callers and never mutated.
type Repository struct {
	Owner         string
	Name          string
	DefaultBranch string
}

// Validate reports usage errors in the repository identity.
func (repository Repository) Validate() error {
	if len(strings.TrimSpace(repository.Owner)) == 0 {
		return ErrRepositoryOwnerMissing
	}
	if len(strings.TrimSpace(repository.Name)) == 0 {
		return ErrRepositoryNameMissing
	}
	return nil
}

// FullName returns the owner/name identifier.
func (repository Repository) FullName() string {
	return repository.Owner + repositoryIdentifierSeparatorConstant + repository.Name
}

// Reference maps a ref name such as heads/main to the commit it points at.
type Reference struct {
	Name      string
	CommitSHA string
}

// Commit is the subset of a commit object used by the core.
type Commit struct {
	SHA        string
	TreeSHA    string
	ParentSHAs []string
	Message    string
}

// CurrentCommit is the anchor pair every synthesized commit builds on.
type CurrentCommit struct {
	CommitSHA string
	TreeSHA   string
}

// TreeItem is a single entry of a tree. Path is unique within its own tree only.
type TreeItem struct {
	Path string
	Mode string
	Type ObjectType
	SHA  string
	Size int64
}

// Tree is a directory listing as returned by the remote API.
type Tree struct {
	SHA       string
	Items     []TreeItem
	Truncated bool
}

// Blob is raw object content in its transfer encoding.
type Blob struct {
	SHA      string
	Content  string
	Encoding BlobEncoding
	Size     int64
}

// FileContent is decoded file content.
type FileContent struct {
	Path string
	SHA  string
	Data []byte
}

// TreeNode is one entry of a TreeHierarchy: either a Leaf or a Branch.
type TreeNode interface {
	Item() TreeItem
	treeNode()
}

// Leaf is a hierarchy entry that does not point at a subtree.
type Leaf struct {
	TreeItem TreeItem
}

// Item returns the underlying tree entry.
func (leaf Leaf) Item() TreeItem {
	return leaf.TreeItem
}

func (Leaf) treeNode() {}

// Branch is a hierarchy entry of type tree together with its materialized contents.
type Branch struct {
	TreeItem  TreeItem
	Hierarchy *TreeHierarchy
}

// Item returns the underlying tree entry.
func (branch Branch) Item() TreeItem {
	return branch.TreeItem
}

func (Branch) treeNode() {}

// TreeHierarchy is a tree whose subtrees have been fetched and nested locally.
type TreeHierarchy struct {
	SHA   string
	Nodes []TreeNode
}

// FlattenedItem is a blob entry addressed by its full path from the root tree.
type FlattenedItem struct {
	Item          TreeItem
	ParentTreeSHA string
}

// FlattenedTree lists every blob of a hierarchy in depth-first order.
type FlattenedTree struct {
	SHA   string
	Items []FlattenedItem
}

// Paths returns the full paths of the flattened items in order.
func (flattenedTree FlattenedTree) Paths() []string {
	paths := make([]string, 0, len(flattenedTree.Items))
	for _, flattenedItem := range flattenedTree.Items {
		paths = append(paths, flattenedItem.Item.Path)
	}
	return paths
}

// TreeAndDescriptors pairs a fetched tree with the entries resolved for requested paths.
type TreeAndDescriptors struct {
	Tree        Tree
	Descriptors []TreeItem
	Recursive   bool
}

// HierarchyMatch is the result of descending a TreeHierarchy by path segments.
type HierarchyMatch struct {
	Descriptor TreeItem
	TreeSHAs   []string
}

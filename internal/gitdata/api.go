package gitdata

import "context"

// BlobInput describes a blob to create remotely.
type BlobInput struct {
	Content  string
	Encoding BlobEncoding
}

// TreeEntryInput describes one entry of a tree to create remotely.
// Delete removes Path from the base tree and is serialized with a null sha.
type TreeEntryInput struct {
	Path   string
	Mode   string
	Type   ObjectType
	SHA    string
	Delete bool
}

// CommitInput describes a commit to create remotely.
type CommitInput struct {
	Message    string
	TreeSHA    string
	ParentSHAs []string
}

// RemoteAPI is the Git Data surface of the hosting service.
//
// Implementations must return errors matching ErrNotFound when the addressed object does not exist.
type RemoteAPI interface {
	GetReference(executionContext context.Context, owner string, repository string, reference string) (Reference, error)
	GetCommit(executionContext context.Context, owner string, repository string, commitSHA string) (Commit, error)
	GetTree(executionContext context.Context, owner string, repository string, treeSHA string, recursive bool) (Tree, error)
	GetBlob(executionContext context.Context, owner string, repository string, blobSHA string) (Blob, error)
	GetFileContent(executionContext context.Context, owner string, repository string, filePath string, reference string) (Blob, error)
	CreateBlob(executionContext context.Context, owner string, repository string, input BlobInput) (Blob, error)
	CreateTree(executionContext context.Context, owner string, repository string, baseTreeSHA string, entries []TreeEntryInput) (Tree, error)
	CreateCommit(executionContext context.Context, owner string, repository string, input CommitInput) (Commit, error)
	UpdateReference(executionContext context.Context, owner string, repository string, reference string, commitSHA string, force bool) (Reference, error)
}

// GlobOptions selects staged files below a root.
type GlobOptions struct {
	// Pattern is a doublestar pattern relative to the root; empty selects everything.
	Pattern string
	// MaxDepth limits matches to paths with at most this many segments; zero means unlimited.
	MaxDepth int
	// FilesOnly excludes directories from the result.
	FilesOnly bool
}

// StagingArea is the local filesystem collaborator holding staged files.
type StagingArea interface {
	ListFiles(root string, options GlobOptions) ([]string, error)
	ReadFile(filePath string) ([]byte, error)
	RelativePath(root string, filePath string) (string, error)
}

// Package gitdatatest provides an in-memory, content-addressed implementation of gitdata.RemoteAPI.
package gitdatatest

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/temirov/orgmaint/internal/gitdata"
)

// Remote method names recorded by Remote.
const (
	MethodGetReference     = "GetReference"
	MethodGetCommit        = "GetCommit"
	MethodGetTree          = "GetTree"
	MethodGetBlob          = "GetBlob"
	MethodGetFileContent   = "GetFileContent"
	MethodCreateBlob       = "CreateBlob"
	MethodCreateTree       = "CreateTree"
	MethodCreateCommit     = "CreateCommit"
	MethodUpdateReference  = "UpdateReference"
	MethodListRepositories = "ListOrganizationRepositories"
	MethodGetRepository    = "GetRepository"
)

const (
	pathSeparatorConstant            = "/"
	headsReferencePrefixConstant     = "heads/"
	base64LineLengthConstant         = 60
	missingReferenceTemplateConstant = "%w: reference %s in %s"
	missingObjectTemplateConstant    = "%w: %s %s"
	missingPathTemplateConstant      = "%w: path %s at %s"
	missingRepositoryTemplate        = "%w: repository %s"
	unknownCommitTemplateConstant    = "commit %s does not exist"
	unsupportedEncodingTemplate      = "unsupported encoding %q"
	unprocessableObjectTemplate      = "%w: unknown %s %s"
	pathConflictTemplateConstant     = "%w: %s is both a file and a directory"
	treeLineTemplateConstant         = "%s %s %s\t%s\n"
	commitPayloadTemplateConstant    = "tree %s\nparents %s\nsequence %d\n\n%s"
	objectKindTreeConstant           = "tree"
	objectKindBlobConstant           = "blob"
	objectKindCommitConstant         = "commit"
)

// ErrUnprocessable mirrors the remote's rejection of a structurally invalid write.
var ErrUnprocessable = errors.New("unprocessable entity")

// File seeds one file of a repository. Mode defaults to gitdata.ModeFile.
type File struct {
	Path    string
	Content string
	Mode    string
}

// CreateTreeCall records the arguments of one CreateTree request.
type CreateTreeCall struct {
	BaseTreeSHA string
	Entries     []gitdata.TreeEntryInput
}

// ReferenceUpdate records the arguments of one UpdateReference request.
type ReferenceUpdate struct {
	Repository string
	Reference  string
	CommitSHA  string
	Force      bool
}

type repositoryState struct {
	defaultBranch string
	references    map[string]string
}

// Remote is a thread-safe in-memory Git Data store.
type Remote struct {
	mutex            sync.Mutex
	blobs            map[string][]byte
	trees            map[string][]gitdata.TreeItem
	commits          map[string]gitdata.Commit
	repositories     map[string]*repositoryState
	commitSequence   int
	calls            map[string]int
	createdBlobs     []string
	createdTrees     []CreateTreeCall
	createdCommits   []gitdata.CommitInput
	referenceUpdates []ReferenceUpdate

	// Failures injects an error returned by the named method.
	Failures map[string]error
	// BeforeCall runs before every method, outside the store lock.
	BeforeCall func(method string)
	// TruncateRecursiveListings marks every recursive tree listing as truncated.
	TruncateRecursiveListings bool
}

// NewRemote returns an empty Remote.
func NewRemote() *Remote {
	return &Remote{
		blobs:        map[string][]byte{},
		trees:        map[string][]gitdata.TreeItem{},
		commits:      map[string]gitdata.Commit{},
		repositories: map[string]*repositoryState{},
		calls:        map[string]int{},
		Failures:     map[string]error{},
	}
}

// Seed creates a repository whose default branch points at a root commit holding files.
func (remote *Remote) Seed(owner string, name string, defaultBranch string, files []File) gitdata.CurrentCommit {
	remote.mutex.Lock()
	defer remote.mutex.Unlock()

	leaves := map[string]gitdata.TreeItem{}
	for _, file := range files {
		mode := file.Mode
		if len(mode) == 0 {
			mode = gitdata.ModeFile
		}
		blobSHA := remote.storeBlob([]byte(file.Content))
		leaves[file.Path] = gitdata.TreeItem{Path: file.Path, Mode: mode, Type: gitdata.ObjectTypeBlob, SHA: blobSHA, Size: int64(len(file.Content))}
	}
	treeSHA := remote.storeTree(leaves)
	commitSHA := remote.storeCommit(gitdata.CommitInput{Message: "initial", TreeSHA: treeSHA})

	remote.repositories[owner+pathSeparatorConstant+name] = &repositoryState{
		defaultBranch: defaultBranch,
		references:    map[string]string{headsReferencePrefixConstant + defaultBranch: commitSHA},
	}
	return gitdata.CurrentCommit{CommitSHA: commitSHA, TreeSHA: treeSHA}
}

// MoveReference points ref at commitSHA as a concurrent writer would.
func (remote *Remote) MoveReference(owner string, name string, ref string, commitSHA string) {
	remote.mutex.Lock()
	defer remote.mutex.Unlock()
	if state, found := remote.repositories[owner+pathSeparatorConstant+name]; found {
		state.references[ref] = commitSHA
	}
}

// ReferenceTip returns the commit ref points at.
func (remote *Remote) ReferenceTip(owner string, name string, ref string) string {
	remote.mutex.Lock()
	defer remote.mutex.Unlock()
	if state, found := remote.repositories[owner+pathSeparatorConstant+name]; found {
		return state.references[ref]
	}
	return ""
}

// FileAt returns the content of filePath in the tree of the commit ref points at.
func (remote *Remote) FileAt(owner string, name string, ref string, filePath string) (string, bool) {
	remote.mutex.Lock()
	defer remote.mutex.Unlock()
	state, found := remote.repositories[owner+pathSeparatorConstant+name]
	if !found {
		return "", false
	}
	commit, commitFound := remote.commits[state.references[ref]]
	if !commitFound {
		return "", false
	}
	leaf, leafFound := remote.flattenTree(commit.TreeSHA, "")[filePath]
	if !leafFound {
		return "", false
	}
	return string(remote.blobs[leaf.SHA]), true
}

// EntryAt returns the tree entry of filePath in the tree of the commit ref points at.
func (remote *Remote) EntryAt(owner string, name string, ref string, filePath string) (gitdata.TreeItem, bool) {
	remote.mutex.Lock()
	defer remote.mutex.Unlock()
	state, found := remote.repositories[owner+pathSeparatorConstant+name]
	if !found {
		return gitdata.TreeItem{}, false
	}
	commit, commitFound := remote.commits[state.references[ref]]
	if !commitFound {
		return gitdata.TreeItem{}, false
	}
	leaf, leafFound := remote.flattenTree(commit.TreeSHA, "")[filePath]
	return leaf, leafFound
}

// Paths returns every blob path in the tree of the commit ref points at, sorted.
func (remote *Remote) Paths(owner string, name string, ref string) []string {
	remote.mutex.Lock()
	defer remote.mutex.Unlock()
	state, found := remote.repositories[owner+pathSeparatorConstant+name]
	if !found {
		return nil
	}
	commit := remote.commits[state.references[ref]]
	var paths []string
	for leafPath := range remote.flattenTree(commit.TreeSHA, "") {
		paths = append(paths, leafPath)
	}
	sort.Strings(paths)
	return paths
}

// Commit returns a stored commit.
func (remote *Remote) Commit(commitSHA string) (gitdata.Commit, bool) {
	remote.mutex.Lock()
	defer remote.mutex.Unlock()
	commit, found := remote.commits[commitSHA]
	return commit, found
}

// CallCount reports how often method was invoked.
func (remote *Remote) CallCount(method string) int {
	remote.mutex.Lock()
	defer remote.mutex.Unlock()
	return remote.calls[method]
}

// TotalCalls reports the number of invocations across all methods.
func (remote *Remote) TotalCalls() int {
	remote.mutex.Lock()
	defer remote.mutex.Unlock()
	total := 0
	for _, count := range remote.calls {
		total += count
	}
	return total
}

// CreatedBlobs returns the shas of blobs created through CreateBlob.
func (remote *Remote) CreatedBlobs() []string {
	remote.mutex.Lock()
	defer remote.mutex.Unlock()
	return append([]string(nil), remote.createdBlobs...)
}

// CreatedTrees returns the recorded CreateTree requests.
func (remote *Remote) CreatedTrees() []CreateTreeCall {
	remote.mutex.Lock()
	defer remote.mutex.Unlock()
	return append([]CreateTreeCall(nil), remote.createdTrees...)
}

// CreatedCommits returns the recorded CreateCommit requests.
func (remote *Remote) CreatedCommits() []gitdata.CommitInput {
	remote.mutex.Lock()
	defer remote.mutex.Unlock()
	return append([]gitdata.CommitInput(nil), remote.createdCommits...)
}

// ReferenceUpdates returns the recorded UpdateReference requests.
func (remote *Remote) ReferenceUpdates() []ReferenceUpdate {
	remote.mutex.Lock()
	defer remote.mutex.Unlock()
	return append([]ReferenceUpdate(nil), remote.referenceUpdates...)
}

// GetReference implements gitdata.RemoteAPI.
func (remote *Remote) GetReference(executionContext context.Context, owner string, repository string, reference string) (gitdata.Reference, error) {
	if callError := remote.begin(MethodGetReference); callError != nil {
		return gitdata.Reference{}, callError
	}
	defer remote.mutex.Unlock()

	commitSHA, resolveError := remote.resolveReference(owner, repository, reference)
	if resolveError != nil {
		return gitdata.Reference{}, resolveError
	}
	return gitdata.Reference{Name: reference, CommitSHA: commitSHA}, nil
}

// GetCommit implements gitdata.RemoteAPI.
func (remote *Remote) GetCommit(executionContext context.Context, owner string, repository string, commitSHA string) (gitdata.Commit, error) {
	if callError := remote.begin(MethodGetCommit); callError != nil {
		return gitdata.Commit{}, callError
	}
	defer remote.mutex.Unlock()

	commit, found := remote.commits[commitSHA]
	if !found {
		return gitdata.Commit{}, fmt.Errorf(missingObjectTemplateConstant, gitdata.ErrNotFound, objectKindCommitConstant, commitSHA)
	}
	return commit, nil
}

// GetTree implements gitdata.RemoteAPI.
func (remote *Remote) GetTree(executionContext context.Context, owner string, repository string, treeSHA string, recursive bool) (gitdata.Tree, error) {
	if callError := remote.begin(MethodGetTree); callError != nil {
		return gitdata.Tree{}, callError
	}
	defer remote.mutex.Unlock()

	items, found := remote.trees[treeSHA]
	if !found {
		return gitdata.Tree{}, fmt.Errorf(missingObjectTemplateConstant, gitdata.ErrNotFound, objectKindTreeConstant, treeSHA)
	}
	if !recursive {
		return gitdata.Tree{SHA: treeSHA, Items: append([]gitdata.TreeItem(nil), items...)}, nil
	}
	return gitdata.Tree{SHA: treeSHA, Items: remote.listRecursively(treeSHA, ""), Truncated: remote.TruncateRecursiveListings}, nil
}

// GetBlob implements gitdata.RemoteAPI.
func (remote *Remote) GetBlob(executionContext context.Context, owner string, repository string, blobSHA string) (gitdata.Blob, error) {
	if callError := remote.begin(MethodGetBlob); callError != nil {
		return gitdata.Blob{}, callError
	}
	defer remote.mutex.Unlock()

	data, found := remote.blobs[blobSHA]
	if !found {
		return gitdata.Blob{}, fmt.Errorf(missingObjectTemplateConstant, gitdata.ErrNotFound, objectKindBlobConstant, blobSHA)
	}
	return encodedBlob(blobSHA, data), nil
}

// GetFileContent implements gitdata.RemoteAPI.
func (remote *Remote) GetFileContent(executionContext context.Context, owner string, repository string, filePath string, reference string) (gitdata.Blob, error) {
	if callError := remote.begin(MethodGetFileContent); callError != nil {
		return gitdata.Blob{}, callError
	}
	defer remote.mutex.Unlock()

	if len(reference) == 0 {
		if state, found := remote.repositories[owner+pathSeparatorConstant+repository]; found {
			reference = headsReferencePrefixConstant + state.defaultBranch
		}
	}
	commitSHA, resolveError := remote.resolveReference(owner, repository, reference)
	if resolveError != nil {
		return gitdata.Blob{}, resolveError
	}
	leaves := remote.flattenTree(remote.commits[commitSHA].TreeSHA, "")
	leaf, found := leaves[filePath]
	if !found {
		return gitdata.Blob{}, fmt.Errorf(missingPathTemplateConstant, gitdata.ErrNotFound, filePath, reference)
	}
	// The contents endpoint follows symbolic links to files and has no content for any other target.
	if leaf.Mode == gitdata.ModeSymlink {
		targetPath := path.Join(path.Dir(filePath), string(remote.blobs[leaf.SHA]))
		target, targetFound := leaves[targetPath]
		if !targetFound {
			return gitdata.Blob{}, fmt.Errorf(missingPathTemplateConstant, gitdata.ErrNotFound, targetPath, reference)
		}
		leaf = target
	}
	return encodedBlob(leaf.SHA, remote.blobs[leaf.SHA]), nil
}

// CreateBlob implements gitdata.RemoteAPI.
func (remote *Remote) CreateBlob(executionContext context.Context, owner string, repository string, input gitdata.BlobInput) (gitdata.Blob, error) {
	if callError := remote.begin(MethodCreateBlob); callError != nil {
		return gitdata.Blob{}, callError
	}
	defer remote.mutex.Unlock()

	var data []byte
	switch input.Encoding {
	case gitdata.EncodingUTF8:
		data = []byte(input.Content)
	case gitdata.EncodingBase64:
		decoded, decodeError := base64.StdEncoding.DecodeString(input.Content)
		if decodeError != nil {
			return gitdata.Blob{}, fmt.Errorf("%w: %v", ErrUnprocessable, decodeError)
		}
		data = decoded
	default:
		return gitdata.Blob{}, fmt.Errorf("%w: "+unsupportedEncodingTemplate, ErrUnprocessable, input.Encoding)
	}

	blobSHA := remote.storeBlob(data)
	remote.createdBlobs = append(remote.createdBlobs, blobSHA)
	return gitdata.Blob{SHA: blobSHA, Size: int64(len(data))}, nil
}

// CreateTree implements gitdata.RemoteAPI. Entries override the base tree by full path; a tree entry
// replaces everything below its path and a deleted entry removes the path.
func (remote *Remote) CreateTree(executionContext context.Context, owner string, repository string, baseTreeSHA string, entries []gitdata.TreeEntryInput) (gitdata.Tree, error) {
	if callError := remote.begin(MethodCreateTree); callError != nil {
		return gitdata.Tree{}, callError
	}
	defer remote.mutex.Unlock()

	remote.createdTrees = append(remote.createdTrees, CreateTreeCall{BaseTreeSHA: baseTreeSHA, Entries: append([]gitdata.TreeEntryInput(nil), entries...)})

	leaves := map[string]gitdata.TreeItem{}
	if len(baseTreeSHA) > 0 {
		if _, found := remote.trees[baseTreeSHA]; !found {
			return gitdata.Tree{}, fmt.Errorf(missingObjectTemplateConstant, gitdata.ErrNotFound, objectKindTreeConstant, baseTreeSHA)
		}
		leaves = remote.flattenTree(baseTreeSHA, "")
	}

	for _, entry := range entries {
		if entry.Delete {
			removeSubtree(leaves, entry.Path)
			continue
		}
		switch entry.Type {
		case gitdata.ObjectTypeTree:
			if _, found := remote.trees[entry.SHA]; !found {
				return gitdata.Tree{}, fmt.Errorf(unprocessableObjectTemplate, ErrUnprocessable, objectKindTreeConstant, entry.SHA)
			}
			removeSubtree(leaves, entry.Path)
			for leafPath, leaf := range remote.flattenTree(entry.SHA, entry.Path) {
				leaves[leafPath] = leaf
			}
		case gitdata.ObjectTypeBlob:
			data, found := remote.blobs[entry.SHA]
			if !found {
				return gitdata.Tree{}, fmt.Errorf(unprocessableObjectTemplate, ErrUnprocessable, objectKindBlobConstant, entry.SHA)
			}
			removeSubtree(leaves, entry.Path)
			leaves[entry.Path] = gitdata.TreeItem{Path: entry.Path, Mode: entry.Mode, Type: entry.Type, SHA: entry.SHA, Size: int64(len(data))}
		default:
			leaves[entry.Path] = gitdata.TreeItem{Path: entry.Path, Mode: entry.Mode, Type: entry.Type, SHA: entry.SHA}
		}
	}

	if conflictingPath, conflict := findPathConflict(leaves); conflict {
		return gitdata.Tree{}, fmt.Errorf(pathConflictTemplateConstant, ErrUnprocessable, conflictingPath)
	}

	treeSHA := remote.storeTree(leaves)
	return gitdata.Tree{SHA: treeSHA, Items: append([]gitdata.TreeItem(nil), remote.trees[treeSHA]...)}, nil
}

// CreateCommit implements gitdata.RemoteAPI. Every commit gets a fresh sequence number, as a real
// remote stamps a fresh timestamp.
func (remote *Remote) CreateCommit(executionContext context.Context, owner string, repository string, input gitdata.CommitInput) (gitdata.Commit, error) {
	if callError := remote.begin(MethodCreateCommit); callError != nil {
		return gitdata.Commit{}, callError
	}
	defer remote.mutex.Unlock()

	if _, found := remote.trees[input.TreeSHA]; !found {
		return gitdata.Commit{}, fmt.Errorf(unprocessableObjectTemplate, ErrUnprocessable, objectKindTreeConstant, input.TreeSHA)
	}
	for _, parentSHA := range input.ParentSHAs {
		if _, found := remote.commits[parentSHA]; !found {
			return gitdata.Commit{}, fmt.Errorf("%w: "+unknownCommitTemplateConstant, ErrUnprocessable, parentSHA)
		}
	}

	remote.createdCommits = append(remote.createdCommits, input)
	commitSHA := remote.storeCommit(input)
	return remote.commits[commitSHA], nil
}

// UpdateReference implements gitdata.RemoteAPI.
func (remote *Remote) UpdateReference(executionContext context.Context, owner string, repository string, reference string, commitSHA string, force bool) (gitdata.Reference, error) {
	if callError := remote.begin(MethodUpdateReference); callError != nil {
		return gitdata.Reference{}, callError
	}
	defer remote.mutex.Unlock()

	fullName := owner + pathSeparatorConstant + repository
	if _, resolveError := remote.resolveReference(owner, repository, reference); resolveError != nil {
		return gitdata.Reference{}, resolveError
	}
	if _, found := remote.commits[commitSHA]; !found {
		return gitdata.Reference{}, fmt.Errorf("%w: "+unknownCommitTemplateConstant, ErrUnprocessable, commitSHA)
	}

	remote.repositories[fullName].references[reference] = commitSHA
	remote.referenceUpdates = append(remote.referenceUpdates, ReferenceUpdate{Repository: fullName, Reference: reference, CommitSHA: commitSHA, Force: force})
	return gitdata.Reference{Name: reference, CommitSHA: commitSHA}, nil
}

// ListOrganizationRepositories lists the seeded repositories of organization sorted by name.
func (remote *Remote) ListOrganizationRepositories(executionContext context.Context, organization string) ([]gitdata.Repository, error) {
	if callError := remote.begin(MethodListRepositories); callError != nil {
		return nil, callError
	}
	defer remote.mutex.Unlock()

	var repositories []gitdata.Repository
	for fullName, state := range remote.repositories {
		owner, name, _ := strings.Cut(fullName, pathSeparatorConstant)
		if owner != organization {
			continue
		}
		repositories = append(repositories, gitdata.Repository{Owner: owner, Name: name, DefaultBranch: state.defaultBranch})
	}
	sort.Slice(repositories, func(leftIndex int, rightIndex int) bool {
		return repositories[leftIndex].Name < repositories[rightIndex].Name
	})
	return repositories, nil
}

// GetRepository returns a seeded repository.
func (remote *Remote) GetRepository(executionContext context.Context, owner string, name string) (gitdata.Repository, error) {
	if callError := remote.begin(MethodGetRepository); callError != nil {
		return gitdata.Repository{}, callError
	}
	defer remote.mutex.Unlock()

	fullName := owner + pathSeparatorConstant + name
	state, found := remote.repositories[fullName]
	if !found {
		return gitdata.Repository{}, fmt.Errorf(missingRepositoryTemplate, gitdata.ErrNotFound, fullName)
	}
	return gitdata.Repository{Owner: owner, Name: name, DefaultBranch: state.defaultBranch}, nil
}

// begin records the call and returns with the store locked unless an injected failure is returned.
func (remote *Remote) begin(method string) error {
	if remote.BeforeCall != nil {
		remote.BeforeCall(method)
	}
	remote.mutex.Lock()
	remote.calls[method]++
	if injectedError := remote.Failures[method]; injectedError != nil {
		remote.mutex.Unlock()
		return injectedError
	}
	return nil
}

func (remote *Remote) resolveReference(owner string, repository string, reference string) (string, error) {
	fullName := owner + pathSeparatorConstant + repository
	state, found := remote.repositories[fullName]
	if !found {
		return "", fmt.Errorf(missingReferenceTemplateConstant, gitdata.ErrNotFound, reference, fullName)
	}
	commitSHA, referenceFound := state.references[reference]
	if !referenceFound {
		return "", fmt.Errorf(missingReferenceTemplateConstant, gitdata.ErrNotFound, reference, fullName)
	}
	return commitSHA, nil
}

func (remote *Remote) storeBlob(data []byte) string {
	blobSHA := gitdata.LocalBlobSHA(data)
	remote.blobs[blobSHA] = append([]byte(nil), data...)
	return blobSHA
}

// storeTree nests leaves keyed by full path into trees, stores each level, and returns the root sha.
func (remote *Remote) storeTree(leaves map[string]gitdata.TreeItem) string {
	directLeaves := map[string]gitdata.TreeItem{}
	childLeaves := map[string]map[string]gitdata.TreeItem{}
	for leafPath, leaf := range leaves {
		separatorIndex := strings.Index(leafPath, pathSeparatorConstant)
		if separatorIndex < 0 {
			directLeaves[leafPath] = leaf
			continue
		}
		directoryName := leafPath[:separatorIndex]
		if childLeaves[directoryName] == nil {
			childLeaves[directoryName] = map[string]gitdata.TreeItem{}
		}
		childLeaves[directoryName][leafPath[separatorIndex+1:]] = leaf
	}

	items := make([]gitdata.TreeItem, 0, len(directLeaves)+len(childLeaves))
	for name, leaf := range directLeaves {
		leaf.Path = name
		items = append(items, leaf)
	}
	for directoryName, nestedLeaves := range childLeaves {
		items = append(items, gitdata.TreeItem{Path: directoryName, Mode: gitdata.ModeDirectory, Type: gitdata.ObjectTypeTree, SHA: remote.storeTree(nestedLeaves)})
	}
	sort.Slice(items, func(leftIndex int, rightIndex int) bool {
		return items[leftIndex].Path < items[rightIndex].Path
	})

	var payload bytes.Buffer
	for _, item := range items {
		fmt.Fprintf(&payload, treeLineTemplateConstant, item.Mode, item.Type, item.SHA, item.Path)
	}
	treeSHA := plumbing.ComputeHash(plumbing.TreeObject, payload.Bytes()).String()
	remote.trees[treeSHA] = items
	return treeSHA
}

func (remote *Remote) storeCommit(input gitdata.CommitInput) string {
	remote.commitSequence++
	payload := fmt.Sprintf(commitPayloadTemplateConstant, input.TreeSHA, strings.Join(input.ParentSHAs, " "), remote.commitSequence, input.Message)
	commitSHA := plumbing.ComputeHash(plumbing.CommitObject, []byte(payload)).String()
	remote.commits[commitSHA] = gitdata.Commit{
		SHA:        commitSHA,
		TreeSHA:    input.TreeSHA,
		ParentSHAs: append([]string(nil), input.ParentSHAs...),
		Message:    input.Message,
	}
	return commitSHA
}

// flattenTree maps every non-tree entry below treeSHA to its full path.
func (remote *Remote) flattenTree(treeSHA string, prefix string) map[string]gitdata.TreeItem {
	leaves := map[string]gitdata.TreeItem{}
	for _, item := range remote.trees[treeSHA] {
		fullPath := joinPath(prefix, item.Path)
		if item.Type == gitdata.ObjectTypeTree {
			for leafPath, leaf := range remote.flattenTree(item.SHA, fullPath) {
				leaves[leafPath] = leaf
			}
			continue
		}
		item.Path = fullPath
		leaves[fullPath] = item
	}
	return leaves
}

func (remote *Remote) listRecursively(treeSHA string, prefix string) []gitdata.TreeItem {
	var listed []gitdata.TreeItem
	for _, item := range remote.trees[treeSHA] {
		fullPath := joinPath(prefix, item.Path)
		listedItem := item
		listedItem.Path = fullPath
		listed = append(listed, listedItem)
		if item.Type == gitdata.ObjectTypeTree {
			listed = append(listed, remote.listRecursively(item.SHA, fullPath)...)
		}
	}
	return listed
}

func removeSubtree(leaves map[string]gitdata.TreeItem, removedPath string) {
	delete(leaves, removedPath)
	for leafPath := range leaves {
		if strings.HasPrefix(leafPath, removedPath+pathSeparatorConstant) {
			delete(leaves, leafPath)
		}
	}
}

// findPathConflict reports a leaf whose path is also a directory of another leaf.
func findPathConflict(leaves map[string]gitdata.TreeItem) (string, bool) {
	var conflicts []string
	for leafPath := range leaves {
		segments := strings.Split(leafPath, pathSeparatorConstant)
		for depth := 1; depth < len(segments); depth++ {
			ancestorPath := strings.Join(segments[:depth], pathSeparatorConstant)
			if _, isLeaf := leaves[ancestorPath]; isLeaf {
				conflicts = append(conflicts, ancestorPath)
				break
			}
		}
	}
	if len(conflicts) == 0 {
		return "", false
	}
	sort.Strings(conflicts)
	return conflicts[0], true
}

func encodedBlob(blobSHA string, data []byte) gitdata.Blob {
	encoded := base64.StdEncoding.EncodeToString(data)
	var wrapped strings.Builder
	for offset := 0; offset < len(encoded); offset += base64LineLengthConstant {
		end := offset + base64LineLengthConstant
		if end > len(encoded) {
			end = len(encoded)
		}
		wrapped.WriteString(encoded[offset:end])
		wrapped.WriteString("\n")
	}
	return gitdata.Blob{SHA: blobSHA, Content: wrapped.String(), Encoding: gitdata.EncodingBase64, Size: int64(len(data))}
}

func joinPath(prefix string, name string) string {
	if len(prefix) == 0 {
		return name
	}
	return prefix + pathSeparatorConstant + name
}

package pathutils

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	parentDirectoryConstant       = ".."
	emptyPathMessageConstant      = "local path must not be empty"
	escapingPathMessageConstant   = "path escapes its root directory"
	absolutePathErrorTemplate     = "resolve absolute path of %s: %w"
	escapingPathErrorTemplate     = "%w: %s under %s"
	repositoryFolderJoinSeparator = "/"
)

var (
	// ErrEmptyPath indicates a blank local path.
	ErrEmptyPath = errors.New(emptyPathMessageConstant)
	// ErrPathEscapesRoot indicates a relative path that leaves the directory it is joined to.
	ErrPathEscapesRoot = errors.New(escapingPathMessageConstant)
)

// LocalPathResolver normalizes user supplied local directories.
type LocalPathResolver struct {
	homeExpander *HomeExpander
}

// NewLocalPathResolver constructs a LocalPathResolver. A nil expander uses the operating system home
// directory.
func NewLocalPathResolver(homeExpander *HomeExpander) *LocalPathResolver {
	if homeExpander == nil {
		homeExpander = NewHomeExpander()
	}
	return &LocalPathResolver{homeExpander: homeExpander}
}

// Resolve trims, expands and absolutizes candidatePath.
func (resolver *LocalPathResolver) Resolve(candidatePath string) (string, error) {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		return "", ErrEmptyPath
	}

	absolutePath, absoluteError := filepath.Abs(resolver.homeExpander.Expand(trimmedPath))
	if absoluteError != nil {
		return "", fmt.Errorf(absolutePathErrorTemplate, trimmedPath, absoluteError)
	}
	return absolutePath, nil
}

// JoinWithinRoot joins a slash separated relative path to root and rejects results outside root.
func JoinWithinRoot(root string, relativePath string) (string, error) {
	joinedPath := filepath.Join(root, filepath.FromSlash(relativePath))
	relativeToRoot, relativeError := filepath.Rel(root, joinedPath)
	if relativeError != nil || relativeToRoot == parentDirectoryConstant || strings.HasPrefix(relativeToRoot, parentDirectoryConstant+string(filepath.Separator)) {
		return "", fmt.Errorf(escapingPathErrorTemplate, ErrPathEscapesRoot, relativePath, root)
	}
	return joinedPath, nil
}

// RepositoryFolder returns the folder below root that holds the files of owner/name.
func RepositoryFolder(root string, owner string, name string) (string, error) {
	return JoinWithinRoot(root, owner+repositoryFolderJoinSeparator+name)
}

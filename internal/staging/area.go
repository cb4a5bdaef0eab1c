package staging

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/temirov/orgmaint/internal/gitdata"
)

const (
	directoryPermissionsConstant    = fs.FileMode(0o755)
	filePermissionsConstant         = fs.FileMode(0o644)
	matchEverythingPatternConstant  = "**"
	currentDirectoryConstant        = "."
	parentDirectoryConstant         = ".."
	slashSeparatorConstant          = "/"
	createFolderErrorTemplate       = "create folder %s: %w"
	writeFileErrorTemplate          = "write file %s: %w"
	readFileErrorTemplate           = "read file %s: %w"
	globErrorTemplate               = "glob %q under %s: %w"
	resolveRootErrorTemplate        = "resolve staging root %s: %w"
	relativePathErrorTemplate       = "relative path of %s under %s: %w"
	temporaryFolderErrorTemplate    = "create temporary folder: %w"
	removeFolderErrorTemplate       = "remove folder %s: %w"
	outsideRootMessageConstant      = "path is outside the staging root"
	invalidGlobPatternMessageFormat = "invalid glob pattern %q"
)

// ErrOutsideRoot indicates a path that does not live below the requested root.
var ErrOutsideRoot = errors.New(outsideRootMessageConstant)

// Area is the local filesystem collaborator used for staging and downloads.
type Area struct {
	fileSystem afero.Fs
}

// NewArea constructs an Area on fileSystem, defaulting to the operating system filesystem.
func NewArea(fileSystem afero.Fs) *Area {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	return &Area{fileSystem: fileSystem}
}

// CreateFolder creates folderPath and any missing parents.
func (area *Area) CreateFolder(folderPath string) error {
	if mkdirError := area.fileSystem.MkdirAll(folderPath, directoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(createFolderErrorTemplate, folderPath, mkdirError)
	}
	return nil
}

// WriteFile writes data to filePath, creating parent folders as needed.
func (area *Area) WriteFile(filePath string, data []byte) error {
	if folderError := area.CreateFolder(filepath.Dir(filePath)); folderError != nil {
		return folderError
	}
	if writeError := afero.WriteFile(area.fileSystem, filePath, data, filePermissionsConstant); writeError != nil {
		return fmt.Errorf(writeFileErrorTemplate, filePath, writeError)
	}
	return nil
}

// ReadFile reads the full content of filePath.
func (area *Area) ReadFile(filePath string) ([]byte, error) {
	data, readError := afero.ReadFile(area.fileSystem, filePath)
	if readError != nil {
		return nil, fmt.Errorf(readFileErrorTemplate, filePath, readError)
	}
	return data, nil
}

// ListFiles returns the absolute, sorted paths below root matching options.
func (area *Area) ListFiles(root string, options gitdata.GlobOptions) ([]string, error) {
	absoluteRoot, rootError := filepath.Abs(root)
	if rootError != nil {
		return nil, fmt.Errorf(resolveRootErrorTemplate, root, rootError)
	}

	pattern := strings.TrimPrefix(filepath.ToSlash(options.Pattern), slashSeparatorConstant)
	if len(pattern) == 0 {
		pattern = matchEverythingPatternConstant
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf(globErrorTemplate, pattern, absoluteRoot, fmt.Errorf(invalidGlobPatternMessageFormat, pattern))
	}

	globOptions := []doublestar.GlobOption{doublestar.WithFailOnIOErrors()}
	if options.FilesOnly {
		globOptions = append(globOptions, doublestar.WithFilesOnly())
	}

	rootFileSystem := afero.NewIOFS(afero.NewBasePathFs(area.fileSystem, absoluteRoot))
	matches, globError := doublestar.Glob(rootFileSystem, pattern, globOptions...)
	if globError != nil {
		return nil, fmt.Errorf(globErrorTemplate, pattern, absoluteRoot, globError)
	}

	filePaths := make([]string, 0, len(matches))
	for _, match := range matches {
		if match == currentDirectoryConstant {
			continue
		}
		if options.MaxDepth > 0 && strings.Count(match, slashSeparatorConstant)+1 > options.MaxDepth {
			continue
		}
		filePaths = append(filePaths, filepath.Join(absoluteRoot, filepath.FromSlash(match)))
	}
	sort.Strings(filePaths)
	return filePaths, nil
}

// RelativePath returns filePath relative to root. Paths outside root are rejected.
func (area *Area) RelativePath(root string, filePath string) (string, error) {
	relativePath, relativeError := filepath.Rel(root, filePath)
	if relativeError != nil {
		return "", fmt.Errorf(relativePathErrorTemplate, filePath, root, relativeError)
	}
	if relativePath == parentDirectoryConstant || strings.HasPrefix(relativePath, parentDirectoryConstant+string(filepath.Separator)) {
		return "", fmt.Errorf(relativePathErrorTemplate, filePath, root, ErrOutsideRoot)
	}
	return relativePath, nil
}

// CreateTemporaryFolder creates a fresh folder for one staging run.
func (area *Area) CreateTemporaryFolder(prefix string) (string, error) {
	folderPath, temporaryError := afero.TempDir(area.fileSystem, "", prefix)
	if temporaryError != nil {
		return "", fmt.Errorf(temporaryFolderErrorTemplate, temporaryError)
	}
	return folderPath, nil
}

// RemoveFolder deletes folderPath and everything below it.
func (area *Area) RemoveFolder(folderPath string) error {
	if removeError := area.fileSystem.RemoveAll(folderPath); removeError != nil {
		return fmt.Errorf(removeFolderErrorTemplate, folderPath, removeError)
	}
	return nil
}

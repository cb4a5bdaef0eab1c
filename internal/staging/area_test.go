package staging_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/temirov/orgmaint/internal/gitdata"
	"github.com/temirov/orgmaint/internal/staging"
)

const (
	stagingTestRoot          = "/staging"
	stagingTestReadmePath    = "/staging/README.md"
	stagingTestPackagePath   = "/staging/package.json"
	stagingTestScriptPath    = "/staging/scripts/build.sh"
	stagingTestNestedPath    = "/staging/scripts/tools/lint.sh"
	stagingTestOutsidePath   = "/elsewhere/file.txt"
	stagingTestFileContent   = "content"
	stagingTestMissingPath   = "/staging/missing.txt"
	stagingTestPrefix        = "orgmaint-test-"
	stagingTestDownloadPath  = "/downloads/acme/widgets/docs/guide.md"
	stagingTestDownloadValue = "guide"
)

func newSeededArea(testInstance *testing.T) *staging.Area {
	testInstance.Helper()
	area := staging.NewArea(afero.NewMemMapFs())
	for _, filePath := range []string{stagingTestReadmePath, stagingTestPackagePath, stagingTestScriptPath, stagingTestNestedPath} {
		require.NoError(testInstance, area.WriteFile(filePath, []byte(stagingTestFileContent)))
	}
	return area
}

func TestListFiles(testInstance *testing.T) {
	testCases := []struct {
		name          string
		options       gitdata.GlobOptions
		expectedPaths []string
	}{
		{
			name:          "all_files",
			options:       gitdata.GlobOptions{FilesOnly: true},
			expectedPaths: []string{stagingTestReadmePath, stagingTestPackagePath, stagingTestScriptPath, stagingTestNestedPath},
		},
		{
			name:          "depth_limited",
			options:       gitdata.GlobOptions{FilesOnly: true, MaxDepth: 1},
			expectedPaths: []string{stagingTestReadmePath, stagingTestPackagePath},
		},
		{
			name:          "pattern_filtered",
			options:       gitdata.GlobOptions{Pattern: "**/*.sh", FilesOnly: true},
			expectedPaths: []string{stagingTestScriptPath, stagingTestNestedPath},
		},
		{
			name:          "pattern_and_depth",
			options:       gitdata.GlobOptions{Pattern: "**/*.sh", FilesOnly: true, MaxDepth: 2},
			expectedPaths: []string{stagingTestScriptPath},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			area := newSeededArea(subTest)
			filePaths, listError := area.ListFiles(stagingTestRoot, testCase.options)
			require.NoError(subTest, listError)
			require.Equal(subTest, testCase.expectedPaths, filePaths)
		})
	}
}

func TestListFilesRejectsInvalidPattern(testInstance *testing.T) {
	area := newSeededArea(testInstance)
	_, listError := area.ListFiles(stagingTestRoot, gitdata.GlobOptions{Pattern: "[", FilesOnly: true})
	require.Error(testInstance, listError)
}

func TestRelativePath(testInstance *testing.T) {
	area := newSeededArea(testInstance)

	relativePath, relativeError := area.RelativePath(stagingTestRoot, stagingTestNestedPath)
	require.NoError(testInstance, relativeError)
	require.Equal(testInstance, filepath.Join("scripts", "tools", "lint.sh"), relativePath)

	_, outsideError := area.RelativePath(stagingTestRoot, stagingTestOutsidePath)
	require.True(testInstance, errors.Is(outsideError, staging.ErrOutsideRoot))
}

func TestReadWriteAndTemporaryFolders(testInstance *testing.T) {
	area := staging.NewArea(afero.NewMemMapFs())

	require.NoError(testInstance, area.WriteFile(stagingTestDownloadPath, []byte(stagingTestDownloadValue)))
	data, readError := area.ReadFile(stagingTestDownloadPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, stagingTestDownloadValue, string(data))

	_, missingError := area.ReadFile(stagingTestMissingPath)
	require.Error(testInstance, missingError)

	temporaryFolder, temporaryError := area.CreateTemporaryFolder(stagingTestPrefix)
	require.NoError(testInstance, temporaryError)
	require.NoError(testInstance, area.WriteFile(filepath.Join(temporaryFolder, "file.txt"), []byte(stagingTestFileContent)))

	filePaths, listError := area.ListFiles(temporaryFolder, gitdata.GlobOptions{FilesOnly: true})
	require.NoError(testInstance, listError)
	require.Len(testInstance, filePaths, 1)

	require.NoError(testInstance, area.RemoveFolder(temporaryFolder))
	_, removedError := area.ReadFile(filePaths[0])
	require.Error(testInstance, removedError)
}

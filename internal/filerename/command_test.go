package filerename_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/orgmaint/internal/filerename"
	"github.com/temirov/orgmaint/internal/gitdata/gitdatatest"
	"github.com/temirov/orgmaint/internal/maintenance"
	"github.com/temirov/orgmaint/internal/maintenance/maintenancetest"
)

func TestCommandBuilderRenamesAcrossOrganization(testInstance *testing.T) {
	remote := gitdatatest.NewRemote()
	remote.Seed(testOwner, "widgets", testDefaultBranch, []gitdatatest.File{{Path: "LICENSE.txt", Content: "MIT\n"}})
	remote.Seed(testOwner, "gadgets", testDefaultBranch, []gitdatatest.File{{Path: testReadmePath, Content: "# gadgets\n"}})

	testCases := []struct {
		name          string
		configuration filerename.Configuration
		arguments     []string
		expectedLines []string
	}{
		{
			name:          "configuration_values_dry_run",
			configuration: filerename.Configuration{From: " LICENSE.txt ", To: "LICENSE"},
			arguments:     []string{"--dry-run"},
			expectedLines: []string{
				"skipped   acme/gadgets",
				"planned   acme/widgets: would rename LICENSE.txt to LICENSE",
				"rename: 0 succeeded, 0 unchanged, 1 skipped, 1 planned, 0 failed",
			},
		},
		{
			name:          "flags_override_configuration",
			configuration: filerename.Configuration{From: "unused", To: "unused"},
			arguments:     []string{"--from", "LICENSE.txt", "--to", "LICENSE.md", "--repo", "acme/widgets", "--dry-run"},
			expectedLines: []string{
				"planned   acme/widgets: would rename LICENSE.txt to LICENSE.md",
				"rename: 0 succeeded, 0 unchanged, 0 skipped, 1 planned, 0 failed",
			},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			builder := filerename.CommandBuilder{
				Executor: maintenance.CommandExecutor{
					ConfigurationProvider: func() maintenance.Configuration {
						return maintenance.Configuration{GitHub: maintenance.GitHubConfiguration{Organizations: []string{testOwner}}}
					},
					ToolkitResolver: maintenancetest.NewToolkitResolver(remote),
				},
				ConfigurationProvider: func() filerename.Configuration { return testCase.configuration },
			}
			command, buildError := builder.Build()
			require.NoError(subTest, buildError)

			var output bytes.Buffer
			command.SetOut(&output)
			command.SetErr(&bytes.Buffer{})
			command.SetArgs(testCase.arguments)
			require.NoError(subTest, command.Execute())

			outputLines := strings.Split(strings.TrimSuffix(output.String(), "\n"), "\n")
			require.Len(subTest, outputLines, len(testCase.expectedLines), output.String())
			for lineIndex, expectedLine := range testCase.expectedLines {
				require.True(subTest, strings.HasPrefix(outputLines[lineIndex], expectedLine), outputLines[lineIndex])
			}
			require.Zero(subTest, remote.CallCount(gitdatatest.MethodUpdateReference))
		})
	}
}

func TestCommandBuilderRequiresPaths(testInstance *testing.T) {
	remote := gitdatatest.NewRemote()
	remote.Seed(testOwner, testRepositoryName, testDefaultBranch, []gitdatatest.File{{Path: testReadmePath, Content: "#\n"}})

	builder := filerename.CommandBuilder{
		Executor: maintenance.CommandExecutor{ToolkitResolver: maintenancetest.NewToolkitResolver(remote)},
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{"--repo", "acme/widgets", "--to", "README"})
	require.ErrorIs(testInstance, command.Execute(), filerename.ErrSourceMissing)
}

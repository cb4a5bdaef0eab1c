package gitdata_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/orgmaint/internal/gitdata"
	"github.com/temirov/orgmaint/internal/gitdata/gitdatatest"
	"github.com/temirov/orgmaint/internal/staging"
)

const (
	testOwner            = "acme"
	testRepositoryName   = "widgets"
	testDefaultBranch    = "main"
	testReference        = "heads/main"
	testStagingRoot      = "/staging"
	testCommitMessage    = "chore: maintenance"
	testPackageJSONPath  = "package.json"
	testPackageLockPath  = "package-lock.json"
	testBuildScriptPath  = "scripts/build.sh"
	testIndexPath        = "src/index.js"
	testMainPath         = "src/app/main.go"
	testReadmePath       = "README.md"
	testGuidePath        = "docs/guide.md"
	testPackageJSONValue = "{\"name\":\"widgets\"}\n"
	testBuildScriptValue = "#!/bin/sh\necho build\n"
)

var testRepository = gitdata.Repository{Owner: testOwner, Name: testRepositoryName, DefaultBranch: testDefaultBranch}

type serviceFixture struct {
	remote  *gitdatatest.Remote
	area    *staging.Area
	service *gitdata.Service
	anchor  gitdata.CurrentCommit
}

func newServiceFixture(testInstance *testing.T, logger *zap.Logger, files []gitdatatest.File) serviceFixture {
	testInstance.Helper()
	remote := gitdatatest.NewRemote()
	anchor := remote.Seed(testOwner, testRepositoryName, testDefaultBranch, files)
	area := staging.NewArea(afero.NewMemMapFs())
	service, serviceError := gitdata.NewService(logger, remote, area)
	require.NoError(testInstance, serviceError)
	return serviceFixture{remote: remote, area: area, service: service, anchor: anchor}
}

func defaultRepositoryFiles() []gitdatatest.File {
	return []gitdatatest.File{
		{Path: testReadmePath, Content: "# widgets\n"},
		{Path: testPackageJSONPath, Content: testPackageJSONValue},
		{Path: testBuildScriptPath, Content: testBuildScriptValue},
		{Path: testGuidePath, Content: "guide\n"},
		{Path: testIndexPath, Content: "module.exports = {}\n"},
		{Path: testMainPath, Content: "package main\n"},
	}
}

func (fixture serviceFixture) stage(testInstance *testing.T, relativePath string, content string) {
	testInstance.Helper()
	require.NoError(testInstance, fixture.area.WriteFile(testStagingRoot+"/"+relativePath, []byte(content)))
}

func testContext() context.Context {
	return context.Background()
}

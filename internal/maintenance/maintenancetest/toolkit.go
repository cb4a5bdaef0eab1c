// Package maintenancetest wires maintenance commands to an in-memory remote and filesystem.
package maintenancetest

import (
	"context"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/orgmaint/internal/gitdata/gitdatatest"
	"github.com/temirov/orgmaint/internal/maintenance"
	"github.com/temirov/orgmaint/internal/staging"
)

// ToolkitResolver resolves toolkits backed by Remote and FileSystem and records the configuration it saw.
type ToolkitResolver struct {
	Remote     *gitdatatest.Remote
	FileSystem afero.Fs

	ResolvedConfigurations []maintenance.GitHubConfiguration
}

// NewToolkitResolver returns a resolver over remote and a fresh in-memory filesystem.
func NewToolkitResolver(remote *gitdatatest.Remote) *ToolkitResolver {
	return &ToolkitResolver{Remote: remote, FileSystem: afero.NewMemMapFs()}
}

// Resolve implements maintenance.ToolkitResolver.
func (resolver *ToolkitResolver) Resolve(_ context.Context, logger *zap.Logger, configuration maintenance.GitHubConfiguration) (maintenance.Toolkit, error) {
	resolver.ResolvedConfigurations = append(resolver.ResolvedConfigurations, configuration)
	return maintenance.AssembleToolkit(logger, resolver.Remote, resolver.Remote, staging.NewArea(resolver.FileSystem), configuration.Repositories)
}

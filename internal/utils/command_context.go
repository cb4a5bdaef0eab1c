package utils

import (
	"context"
	"strings"
)

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	operationNameContextKeyConstant         = commandContextKey("operationName")
	repositoryContextKeyConstant            = commandContextKey("repository")
)

type commandContextKey string

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	return withStringValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath extracts the configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	return stringValue(executionContext, configurationFilePathContextKeyConstant)
}

// WithOperationName records the name of the maintenance operation currently executing.
// Log records emitted below this context carry the name instead of relying on process-wide state.
func (accessor CommandContextAccessor) WithOperationName(parentContext context.Context, operationName string) context.Context {
	return withStringValue(parentContext, operationNameContextKeyConstant, strings.TrimSpace(operationName))
}

// OperationName extracts the maintenance operation name from the provided context.
func (accessor CommandContextAccessor) OperationName(executionContext context.Context) (string, bool) {
	return stringValue(executionContext, operationNameContextKeyConstant)
}

// WithRepository records the owner/name identifier of the repository being processed.
func (accessor CommandContextAccessor) WithRepository(parentContext context.Context, repositoryIdentifier string) context.Context {
	return withStringValue(parentContext, repositoryContextKeyConstant, strings.TrimSpace(repositoryIdentifier))
}

// Repository extracts the owner/name identifier of the repository being processed.
func (accessor CommandContextAccessor) Repository(executionContext context.Context) (string, bool) {
	return stringValue(executionContext, repositoryContextKeyConstant)
}

func withStringValue(parentContext context.Context, key commandContextKey, value string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, key, value)
}

func stringValue(executionContext context.Context, key commandContextKey) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	value, valueAvailable := executionContext.Value(key).(string)
	if !valueAvailable || len(value) == 0 {
		return "", false
	}
	return value, true
}

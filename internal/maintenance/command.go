package maintenance

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/orgmaint/internal/utils/flags"
)

const (
	commandExecutionErrorTemplateConstant = "%s failed: %w"
	reportRenderErrorTemplateConstant     = "render %s report: %w"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current shared maintenance configuration.
type ConfigurationProvider func() Configuration

// Invocation carries the per-run options handed to an action.
type Invocation struct {
	Reference          string
	DryRun             bool
	VerifyReferenceTip bool
	Output             io.Writer
}

// ActionFactory creates the action of one run from the resolved toolkit.
type ActionFactory func(toolkit Toolkit, invocation Invocation) (Action, error)

// CommandExecutor runs an action across the targets selected by flags and configuration, then renders
// the report.
type CommandExecutor struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	ToolkitResolver       ToolkitResolver
}

// Execute resolves targets and collaborators, runs the action produced by factory and writes the report
// to reportWriter. Action output goes to the command's standard output.
func (executor CommandExecutor) Execute(command *cobra.Command, targetFlags *flags.TargetFlagValues, reportWriter io.Writer, factory ActionFactory) error {
	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}
	if targetFlags == nil {
		targetFlags = &flags.TargetFlagValues{}
	}
	if reportWriter == nil {
		reportWriter = command.OutOrStdout()
	}

	configuration := executor.resolveConfiguration()
	reportFormat, formatError := ParseReportFormat(flags.SelectString(targetFlags.ReportFormat, configuration.Report.Format))
	if formatError != nil {
		return formatError
	}

	logger := executor.Logger()
	toolkitResolver := executor.ToolkitResolver
	if toolkitResolver == nil {
		toolkitResolver = &DefaultToolkitResolver{}
	}
	toolkit, toolkitError := toolkitResolver.Resolve(executionContext, logger, configuration.GitHub)
	if toolkitError != nil {
		return toolkitError
	}

	action, actionError := factory(toolkit, Invocation{
		Reference:          targetFlags.Reference,
		DryRun:             targetFlags.DryRun,
		VerifyReferenceTip: configuration.GitHub.VerifyReferenceTip,
		Output:             command.OutOrStdout(),
	})
	if actionError != nil {
		return actionError
	}

	targets := SelectTargets(targetFlags.Organizations, targetFlags.Repositories, configuration.GitHub.Organizations)
	report, runError := toolkit.Runner.Run(executionContext, targets, action)
	if len(report.Operation) > 0 {
		if renderError := RenderReport(reportWriter, report, reportFormat); renderError != nil {
			return fmt.Errorf(reportRenderErrorTemplateConstant, action.Name(), renderError)
		}
	}
	if runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, action.Name(), runError)
	}
	return nil
}

// Logger returns the provided logger or a no-op logger.
func (executor CommandExecutor) Logger() *zap.Logger {
	if executor.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := executor.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (executor CommandExecutor) resolveConfiguration() Configuration {
	configuration := DefaultConfiguration()
	if executor.ConfigurationProvider != nil {
		configuration = executor.ConfigurationProvider()
	}
	return configuration.Sanitize()
}

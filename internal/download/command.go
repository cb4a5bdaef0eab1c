package download

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/temirov/orgmaint/internal/maintenance"
	"github.com/temirov/orgmaint/internal/utils/flags"
	pathutils "github.com/temirov/orgmaint/internal/utils/path"
)

const (
	commandUseConstant                      = "download"
	commandShortDescriptionConstant         = "Download repository files without cloning"
	commandLongDescriptionConstant          = "download reads every file of the targeted repositories through the Git Data API and writes it below OUTPUT/<owner>/<name>."
	unexpectedArgumentsErrorMessageConstant = "download does not accept positional arguments"
	outputFlagNameConstant                  = "output"
	outputFlagDescriptionConstant           = "Local directory receiving the downloaded repositories"
)

// ConfigurationProvider returns the current download configuration.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the download command.
type CommandBuilder struct {
	Executor              maintenance.CommandExecutor
	ConfigurationProvider ConfigurationProvider
	PathResolver          *pathutils.LocalPathResolver
}

// Build constructs the download command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
	}

	targetFlags := flags.BindTargetFlags(command)
	command.Flags().String(outputFlagNameConstant, "", outputFlagDescriptionConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		if len(arguments) > 0 {
			return errors.New(unexpectedArgumentsErrorMessageConstant)
		}
		return builder.run(command, targetFlags)
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, targetFlags *flags.TargetFlagValues) error {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	configuration = configuration.Sanitize()

	outputFlagValue, outputFlagError := command.Flags().GetString(outputFlagNameConstant)
	if outputFlagError != nil {
		return outputFlagError
	}

	pathResolver := builder.PathResolver
	if pathResolver == nil {
		pathResolver = pathutils.NewLocalPathResolver(nil)
	}
	outputDirectory, outputError := pathResolver.Resolve(flags.SelectString(outputFlagValue, configuration.Output))
	if outputError != nil {
		return outputError
	}

	return builder.Executor.Execute(command, targetFlags, command.OutOrStdout(), func(toolkit maintenance.Toolkit, invocation maintenance.Invocation) (maintenance.Action, error) {
		return NewService(builder.Executor.Logger(), toolkit.GitData, toolkit.StagingArea, Options{
			Output:    outputDirectory,
			Reference: flags.SelectString(invocation.Reference, configuration.Reference),
			DryRun:    invocation.DryRun,
		})
	})
}

package filerename

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/temirov/orgmaint/internal/maintenance"
	"github.com/temirov/orgmaint/internal/utils/flags"
)

const (
	commandUseConstant                      = "rename"
	commandShortDescriptionConstant         = "Rename a file across repositories"
	commandLongDescriptionConstant          = "rename moves one file to a new path in every targeted repository, keeping its mode, in a single commit per repository."
	unexpectedArgumentsErrorMessageConstant = "rename does not accept positional arguments"
	fromFlagNameConstant                    = "from"
	fromFlagDescriptionConstant             = "Current repository path of the file"
	toFlagNameConstant                      = "to"
	toFlagDescriptionConstant               = "New repository path of the file"
	messageFlagNameConstant                 = "message"
	messageFlagDescriptionConstant          = "Commit message"
)

// ConfigurationProvider returns the current rename configuration.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the rename command.
type CommandBuilder struct {
	Executor              maintenance.CommandExecutor
	ConfigurationProvider ConfigurationProvider
}

// Build constructs the rename command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
	}

	targetFlags := flags.BindTargetFlags(command)
	command.Flags().String(fromFlagNameConstant, "", fromFlagDescriptionConstant)
	command.Flags().String(toFlagNameConstant, "", toFlagDescriptionConstant)
	command.Flags().String(messageFlagNameConstant, "", messageFlagDescriptionConstant)

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

	fromFlagValue, fromError := command.Flags().GetString(fromFlagNameConstant)
	if fromError != nil {
		return fromError
	}
	toFlagValue, toError := command.Flags().GetString(toFlagNameConstant)
	if toError != nil {
		return toError
	}
	messageFlagValue, messageError := command.Flags().GetString(messageFlagNameConstant)
	if messageError != nil {
		return messageError
	}

	options := Options{
		From:          flags.SelectString(fromFlagValue, configuration.From),
		To:            flags.SelectString(toFlagValue, configuration.To),
		CommitMessage: flags.SelectString(messageFlagValue, configuration.CommitMessage),
	}

	return builder.Executor.Execute(command, targetFlags, command.OutOrStdout(), func(toolkit maintenance.Toolkit, invocation maintenance.Invocation) (maintenance.Action, error) {
		runOptions := options
		runOptions.Reference = flags.SelectString(invocation.Reference, configuration.Reference)
		runOptions.DryRun = invocation.DryRun
		runOptions.VerifyReferenceTip = invocation.VerifyReferenceTip
		return NewService(builder.Executor.Logger(), toolkit.GitData, toolkit.StagingArea, runOptions)
	})
}

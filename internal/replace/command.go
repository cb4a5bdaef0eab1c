package replace

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/temirov/orgmaint/internal/maintenance"
	"github.com/temirov/orgmaint/internal/utils/flags"
)

const (
	commandUseConstant                      = "replace"
	commandShortDescriptionConstant         = "Find and replace text in files across repositories"
	commandLongDescriptionConstant          = "replace rewrites the named files in every targeted repository and commits the result directly through the Git Data API, without cloning."
	unexpectedArgumentsErrorMessageConstant = "replace does not accept positional arguments"
	pathFlagNameConstant                    = "path"
	pathFlagDescriptionConstant             = "Repository file path to rewrite (repeatable)"
	searchFlagNameConstant                  = "search"
	searchFlagDescriptionConstant           = "Text (or regular expression with --regexp) to search for"
	replacementFlagNameConstant             = "replacement"
	replacementFlagDescriptionConstant      = "Replacement text; regular expression mode expands $1 style groups"
	regexpFlagNameConstant                  = "regexp"
	regexpFlagDescriptionConstant           = "Treat --search as a regular expression"
	messageFlagNameConstant                 = "message"
	messageFlagDescriptionConstant          = "Commit message"
)

// ConfigurationProvider returns the current replace configuration.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the replace command.
type CommandBuilder struct {
	Executor              maintenance.CommandExecutor
	ConfigurationProvider ConfigurationProvider
}

// Build constructs the replace command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
	}

	targetFlags := flags.BindTargetFlags(command)
	command.Flags().StringSlice(pathFlagNameConstant, nil, pathFlagDescriptionConstant)
	command.Flags().String(searchFlagNameConstant, "", searchFlagDescriptionConstant)
	command.Flags().String(replacementFlagNameConstant, "", replacementFlagDescriptionConstant)
	command.Flags().String(messageFlagNameConstant, "", messageFlagDescriptionConstant)
	var useRegexp bool
	flags.AddToggleFlag(command.Flags(), &useRegexp, regexpFlagNameConstant, false, regexpFlagDescriptionConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		if len(arguments) > 0 {
			return errors.New(unexpectedArgumentsErrorMessageConstant)
		}
		return builder.run(command, targetFlags, useRegexp)
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, targetFlags *flags.TargetFlagValues, useRegexpFlagValue bool) error {
	configuration := builder.resolveConfiguration()

	pathFlagValues, pathFlagError := command.Flags().GetStringSlice(pathFlagNameConstant)
	if pathFlagError != nil {
		return pathFlagError
	}
	searchValue, searchError := selectVerbatimString(command, searchFlagNameConstant, configuration.Search)
	if searchError != nil {
		return searchError
	}
	replacementValue, replacementError := selectVerbatimString(command, replacementFlagNameConstant, configuration.Replacement)
	if replacementError != nil {
		return replacementError
	}
	messageFlagValue, messageFlagError := command.Flags().GetString(messageFlagNameConstant)
	if messageFlagError != nil {
		return messageFlagError
	}

	options := Options{
		Paths:         sanitizePaths(flags.SelectStrings(pathFlagValues, configuration.Paths)),
		Search:        searchValue,
		Replacement:   replacementValue,
		UseRegexp:     flags.SelectBool(command, regexpFlagNameConstant, useRegexpFlagValue, configuration.Regexp),
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

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	return configuration.Sanitize()
}

// selectVerbatimString prefers an explicitly set flag, keeping surrounding whitespace intact.
func selectVerbatimString(command *cobra.Command, flagName string, configuredValue string) (string, error) {
	if !command.Flags().Changed(flagName) {
		return configuredValue, nil
	}
	return command.Flags().GetString(flagName)
}

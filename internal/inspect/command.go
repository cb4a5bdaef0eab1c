package inspect

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/temirov/orgmaint/internal/maintenance"
	"github.com/temirov/orgmaint/internal/utils/flags"
)

const (
	treeCommandUseConstant              = "tree"
	treeCommandShortDescriptionConstant = "Print the full file tree of repositories"
	treeCommandLongDescriptionConstant  = "tree lists every file of the targeted repositories as mode, type, sha, size and path. The run report is written to standard error."
	catCommandUseConstant               = "cat"
	catCommandShortDescriptionConstant  = "Print one file from repositories"
	catCommandLongDescriptionConstant   = "cat prints the content of one file from every targeted repository. The run report is written to standard error."
	pathFlagNameConstant                = "path"
	pathFlagDescriptionConstant         = "Repository file path to print"
	unexpectedArgumentsTemplateConstant = " does not accept positional arguments"
)

// TreeCommandBuilder assembles the tree command.
type TreeCommandBuilder struct {
	Executor maintenance.CommandExecutor
}

// Build constructs the tree command.
func (builder *TreeCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   treeCommandUseConstant,
		Short: treeCommandShortDescriptionConstant,
		Long:  treeCommandLongDescriptionConstant,
	}

	targetFlags := flags.BindTargetFlags(command)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		if len(arguments) > 0 {
			return errors.New(treeCommandUseConstant + unexpectedArgumentsTemplateConstant)
		}
		return builder.Executor.Execute(command, targetFlags, command.ErrOrStderr(), func(toolkit maintenance.Toolkit, invocation maintenance.Invocation) (maintenance.Action, error) {
			return NewTreeAction(toolkit.GitData, invocation.Output, invocation.Reference)
		})
	}

	return command, nil
}

// CatCommandBuilder assembles the cat command.
type CatCommandBuilder struct {
	Executor maintenance.CommandExecutor
}

// Build constructs the cat command.
func (builder *CatCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   catCommandUseConstant,
		Short: catCommandShortDescriptionConstant,
		Long:  catCommandLongDescriptionConstant,
	}

	targetFlags := flags.BindTargetFlags(command)
	command.Flags().String(pathFlagNameConstant, "", pathFlagDescriptionConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		if len(arguments) > 0 {
			return errors.New(catCommandUseConstant + unexpectedArgumentsTemplateConstant)
		}
		filePath, pathError := command.Flags().GetString(pathFlagNameConstant)
		if pathError != nil {
			return pathError
		}
		return builder.Executor.Execute(command, targetFlags, command.ErrOrStderr(), func(toolkit maintenance.Toolkit, invocation maintenance.Invocation) (maintenance.Action, error) {
			return NewContentAction(toolkit.GitData, invocation.Output, filePath, invocation.Reference)
		})
	}

	return command, nil
}

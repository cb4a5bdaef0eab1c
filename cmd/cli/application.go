package cli

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/orgmaint/internal/download"
	"github.com/temirov/orgmaint/internal/filerename"
	"github.com/temirov/orgmaint/internal/inspect"
	"github.com/temirov/orgmaint/internal/maintenance"
	"github.com/temirov/orgmaint/internal/replace"
	"github.com/temirov/orgmaint/internal/utils"
)

const (
	applicationNameConstant                 = "orgmaint"
	applicationShortDescriptionConstant     = "Maintain files across GitHub repositories without cloning"
	applicationLongDescriptionConstant      = "orgmaint edits, renames, downloads and inspects files in many GitHub repositories at once through the Git Data API."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	environmentPrefixConstant               = "ORGMAINT"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	commandBuildErrorTemplateConstant       = "unable to build %T command: %w"
	commonLogLevelConfigKeyConstant         = "common.log_level"
	commonLogFormatConfigKeyConstant        = "common.log_format"
	defaultConfigurationSearchPathConstant  = "."
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration  `mapstructure:"common"`
	GitHub maintenance.GitHubConfiguration `mapstructure:"github"`
	Tools  ApplicationToolsConfiguration   `mapstructure:"tools"`
	Report maintenance.ReportConfiguration `mapstructure:"report"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds the per-command sections.
type ApplicationToolsConfiguration struct {
	Replace  replace.Configuration    `mapstructure:"replace"`
	Rename   filerename.Configuration `mapstructure:"rename"`
	Download download.Configuration   `mapstructure:"download"`
}

// ApplicationDependencies overrides collaborators of an Application.
type ApplicationDependencies struct {
	// ToolkitResolver defaults to maintenance.DefaultToolkitResolver.
	ToolkitResolver maintenance.ToolkitResolver
	// ConfigurationSearchPaths default to the working directory.
	ConfigurationSearchPaths []string
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
	commandBuildErrors     []error
}

type commandBuilder interface {
	Build() (*cobra.Command, error)
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	return NewApplicationWithDependencies(ApplicationDependencies{})
}

// NewApplicationWithDependencies assembles an Application using the provided collaborators.
func NewApplicationWithDependencies(dependencies ApplicationDependencies) *Application {
	searchPaths := dependencies.ConfigurationSearchPaths
	if len(searchPaths) == 0 {
		searchPaths = []string{defaultConfigurationSearchPathConstant}
	}
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		searchPaths,
	)
	embeddedContent, embeddedType := EmbeddedDefaultConfiguration()
	configurationLoader.SetEmbeddedConfiguration(embeddedContent, embeddedType)

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	executor := maintenance.CommandExecutor{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: application.maintenanceConfiguration,
		ToolkitResolver:       dependencies.ToolkitResolver,
	}

	builders := []commandBuilder{
		&replace.CommandBuilder{
			Executor: executor,
			ConfigurationProvider: func() replace.Configuration {
				return application.configuration.Tools.Replace
			},
		},
		&filerename.CommandBuilder{
			Executor: executor,
			ConfigurationProvider: func() filerename.Configuration {
				return application.configuration.Tools.Rename
			},
		},
		&download.CommandBuilder{
			Executor: executor,
			ConfigurationProvider: func() download.Configuration {
				return application.configuration.Tools.Download
			},
		},
		&inspect.TreeCommandBuilder{Executor: executor},
		&inspect.CatCommandBuilder{Executor: executor},
	}
	for _, builder := range builders {
		subcommand, buildError := builder.Build()
		if buildError != nil {
			application.commandBuildErrors = append(application.commandBuildErrors, fmt.Errorf(commandBuildErrorTemplateConstant, builder, buildError))
			continue
		}
		cobraCommand.AddCommand(subcommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	if buildError := errors.Join(application.commandBuildErrors...); buildError != nil {
		return buildError
	}
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) maintenanceConfiguration() maintenance.Configuration {
	return maintenance.Configuration{
		GitHub: application.configuration.GitHub,
		Report: application.configuration.Report,
	}
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

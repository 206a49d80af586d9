package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/gitbulk/internal/bulk"
	"github.com/temirov/gitbulk/internal/ui"
	"github.com/temirov/gitbulk/internal/utils"
	flagutils "github.com/temirov/gitbulk/internal/utils/flags"
	"github.com/temirov/gitbulk/internal/worktree"
)

const (
	applicationNameConstant                 = "gitbulk"
	applicationShortDescriptionConstant     = "Bulk Git Operations Tool"
	applicationLongDescriptionConstant      = "gitbulk performs git operations on all git repositories found in subdirectories of the current working directory."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level (debug, info, warn, error)."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	rootFlagNameConstant                    = "root"
	rootFlagUsageConstant                   = "Directory whose immediate subdirectories are scanned for repositories."
	gitExecutableFlagNameConstant           = "git"
	gitExecutableFlagUsageConstant          = "Name or path of the git executable."
	colorFlagNameConstant                   = "color"
	colorFlagUsageConstant                  = "Highlight repository paths in headers."
	cleanCheckFlagNameConstant              = "clean-check"
	cleanCheckFlagUsageConstant             = "Strategy deciding whether pull may run in a repository."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	bulkConfigurationKeyConstant            = "bulk"
	environmentPrefixConstant               = "GITBULK"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationRootFieldConstant          = "root"
	configurationGitExecutableFieldConstant = "git_executable"
	configurationColorFieldConstant         = "color"
	configurationCleanCheckFieldConstant    = "clean_check"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	bulkCommandBuildErrorTemplateConstant   = "unable to build commands: %w"
	unrecognizedCommandMessageConstant      = "unrecognized command; showing help"
	helpRenderErrorTemplateConstant         = "unable to render help: %w"
	helpCommandNameConstant                 = "help"
	logFieldArgumentsConstant               = "arguments"
)

// ApplicationConfiguration describes the resolved configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Bulk   bulk.CommandConfiguration      `mapstructure:"bulk"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationOption customizes an Application before its commands are built.
type ApplicationOption func(*Application)

// WithArguments replaces the process arguments parsed by the root command.
func WithArguments(arguments []string) ApplicationOption {
	return func(application *Application) {
		application.arguments = append([]string{}, arguments...)
		application.argumentsOverridden = true
	}
}

// WithStandardStreams redirects the streams used for help, headers, listings, and forwarded git output.
func WithStandardStreams(input io.Reader, output io.Writer, errorOutput io.Writer) ApplicationOption {
	return func(application *Application) {
		application.standardInput = input
		application.standardOutput = output
		application.standardError = errorOutput
	}
}

// WithBulkDependencies injects collaborators used by the bulk commands instead of the operating system defaults.
func WithBulkDependencies(dependencies bulk.Dependencies) ApplicationOption {
	return func(application *Application) {
		application.bulkDependencies = dependencies
	}
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	logLevelFlagValue      string
	logFormatFlagValue     string
	rootFlagValue          string
	gitExecutableFlagValue string
	colorFlagValue         string
	cleanCheckFlagValue    string
	arguments              []string
	argumentsOverridden    bool
	standardInput          io.Reader
	standardOutput         io.Writer
	standardError          io.Writer
	bulkDependencies       bulk.Dependencies
	buildError             error
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication(options ...ApplicationOption) *Application {
	configurationLoader := utils.NewConfigurationLoader(environmentPrefixConstant)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
	}
	for _, option := range options {
		option(application)
	}

	cobraCommand := &cobra.Command{
		Use:                applicationNameConstant,
		Short:              applicationShortDescriptionConstant,
		Long:               applicationLongDescriptionConstant,
		Args:               cobra.ArbitraryArgs,
		SilenceUsage:       true,
		SilenceErrors:      true,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			configurationError := application.initializeConfiguration(command)
			if configurationError != nil && rendersHelpOnly(command) {
				return nil
			}
			return configurationError
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	defaultHelpFunction := cobraCommand.HelpFunc()
	cobraCommand.SetHelpFunc(func(command *cobra.Command, arguments []string) {
		if command == cobraCommand {
			if renderError := renderHelp(command.OutOrStdout()); renderError != nil {
				command.PrintErrln(renderError)
			}
			return
		}
		defaultHelpFunction(command, arguments)
	})

	defaultBulkConfiguration := bulk.DefaultCommandConfiguration()
	persistentFlagSet := cobraCommand.PersistentFlags()
	persistentFlagSet.StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	persistentFlagSet.StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	persistentFlagSet.StringVar(&application.rootFlagValue, rootFlagNameConstant, defaultBulkConfiguration.Root, rootFlagUsageConstant)
	persistentFlagSet.StringVar(&application.gitExecutableFlagValue, gitExecutableFlagNameConstant, defaultBulkConfiguration.GitExecutable, gitExecutableFlagUsageConstant)
	flagutils.AddChoiceFlag(persistentFlagSet, &application.colorFlagValue, colorFlagNameConstant, string(defaultBulkConfiguration.Color), ui.ColorModeChoices(), colorFlagUsageConstant)
	flagutils.AddChoiceFlag(persistentFlagSet, &application.cleanCheckFlagValue, cleanCheckFlagNameConstant, string(defaultBulkConfiguration.CleanCheck), worktree.StrategyChoices(), cleanCheckFlagUsageConstant)

	bulkBuilder := bulk.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() bulk.CommandConfiguration {
			return application.configuration.Bulk
		},
		Discoverer:   application.bulkDependencies.Discoverer,
		GitExecutor:  application.bulkDependencies.GitExecutor,
		CleanChecker: application.bulkDependencies.CleanChecker,
	}
	bulkCommands, bulkBuildError := bulkBuilder.Build()
	if bulkBuildError != nil {
		application.buildError = fmt.Errorf(bulkCommandBuildErrorTemplateConstant, bulkBuildError)
	}
	cobraCommand.AddCommand(bulkCommands...)

	if application.argumentsOverridden {
		cobraCommand.SetArgs(application.arguments)
	}
	if application.standardInput != nil {
		cobraCommand.SetIn(application.standardInput)
	}
	if application.standardOutput != nil {
		cobraCommand.SetOut(application.standardOutput)
	}
	if application.standardError != nil {
		cobraCommand.SetErr(application.standardError)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
// Interrupts are left to the operating system default, which terminates gitbulk and the running git process together.
func (application *Application) Execute() error {
	if application.buildError != nil {
		return application.buildError
	}

	executionError := application.rootCommand.ExecuteContext(context.Background())
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	loadError := application.configurationLoader.LoadConfiguration(defaultConfigurationValues(), &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}
	if application.persistentFlagChanged(command, rootFlagNameConstant) {
		application.configuration.Bulk.Root = application.rootFlagValue
	}
	if application.persistentFlagChanged(command, gitExecutableFlagNameConstant) {
		application.configuration.Bulk.GitExecutable = application.gitExecutableFlagValue
	}
	if application.persistentFlagChanged(command, colorFlagNameConstant) {
		application.configuration.Bulk.Color = ui.ColorMode(application.colorFlagValue)
	}
	if application.persistentFlagChanged(command, cleanCheckFlagNameConstant) {
		application.configuration.Bulk.CleanCheck = worktree.Strategy(application.cleanCheckFlagValue)
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
		zap.String(configurationRootFieldConstant, application.configuration.Bulk.Root),
		zap.String(configurationGitExecutableFieldConstant, application.configuration.Bulk.GitExecutable),
		zap.String(configurationColorFieldConstant, string(application.configuration.Bulk.Color)),
		zap.String(configurationCleanCheckFieldConstant, string(application.configuration.Bulk.CleanCheck)),
	)

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

// runRootCommand handles both the bare invocation and unrecognized command tokens by printing help.
func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		application.logger.Debug(unrecognizedCommandMessageConstant, zap.Strings(logFieldArgumentsConstant, arguments))
	}

	if renderError := renderHelp(command.OutOrStdout()); renderError != nil {
		return fmt.Errorf(helpRenderErrorTemplateConstant, renderError)
	}
	return nil
}

// rendersHelpOnly reports whether command only prints the static help, which needs no valid configuration.
func rendersHelpOnly(command *cobra.Command) bool {
	if command == nil {
		return false
	}
	return !command.HasParent() || command.Name() == helpCommandNameConstant
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
	case errors.Is(syncError, syscall.ENOTTY):
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

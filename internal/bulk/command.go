package bulk

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitbulk/internal/repos/dependencies"
	"github.com/temirov/gitbulk/internal/repos/shared"
	"github.com/temirov/gitbulk/internal/ui"
	"github.com/temirov/gitbulk/internal/worktree"
)

const (
	listCommandUseConstant                = "list"
	listCommandShortDescriptionConstant   = "List all git repositories in the current directory"
	listCommandLongDescriptionConstant    = "list prints the path of every immediate subdirectory that contains a .git directory, one per line."
	statusCommandShortDescriptionConstant = "Show git status for all repositories"
	statusCommandLongDescriptionConstant  = "status runs git status in every repository, printing a header before each one."
	fetchCommandShortDescriptionConstant  = "Fetch updates from remote for all repositories"
	fetchCommandLongDescriptionConstant   = "fetch runs git fetch in every repository, printing a header before each one."
	branchCommandShortDescriptionConstant = "Show current branch for all repositories"
	branchCommandLongDescriptionConstant  = "branch runs git branch in every repository, printing a header before each one."
	pullCommandUseConstant                = "pull"
	pullCommandShortDescriptionConstant   = "Pull changes (only if working tree is clean)"
	pullCommandLongDescriptionConstant    = "pull runs git pull in every repository whose working tree is clean and marks the others with ERROR."
	commandExecutionErrorTemplateConstant = "%s failed: %w"
	invalidConfigurationTemplateConstant  = "invalid bulk configuration: %w"
	ignoredArgumentsMessageConstant       = "ignoring extra arguments"
	logFieldCommandConstant               = "command"
	logFieldArgumentsConstant             = "arguments"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// HumanReadableLoggingProvider reports whether console-formatted logging is active.
type HumanReadableLoggingProvider func() bool

// ConfigurationProvider supplies the resolved bulk configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the list, status, fetch, branch, and pull commands.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	ConfigurationProvider        ConfigurationProvider
	Discoverer                   shared.RepositoryDiscoverer
	GitExecutor                  shared.GitExecutor
	CleanChecker                 shared.CleanWorktreeChecker
}

// Build constructs the bulk commands in help order. Extra arguments and unknown flags are ignored.
func (builder *CommandBuilder) Build() ([]*cobra.Command, error) {
	listCommand := &cobra.Command{
		Use:   listCommandUseConstant,
		Short: listCommandShortDescriptionConstant,
		Long:  listCommandLongDescriptionConstant,
		Args:  cobra.ArbitraryArgs,
		RunE:  builder.runList,

		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	}

	statusCommand := builder.buildOperationCommand(GitOperationStatus, statusCommandShortDescriptionConstant, statusCommandLongDescriptionConstant)
	fetchCommand := builder.buildOperationCommand(GitOperationFetch, fetchCommandShortDescriptionConstant, fetchCommandLongDescriptionConstant)
	branchCommand := builder.buildOperationCommand(GitOperationBranch, branchCommandShortDescriptionConstant, branchCommandLongDescriptionConstant)

	pullCommand := &cobra.Command{
		Use:   pullCommandUseConstant,
		Short: pullCommandShortDescriptionConstant,
		Long:  pullCommandLongDescriptionConstant,
		Args:  cobra.ArbitraryArgs,
		RunE:  builder.runPull,

		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	}

	return []*cobra.Command{listCommand, statusCommand, fetchCommand, branchCommand, pullCommand}, nil
}

func (builder *CommandBuilder) buildOperationCommand(operation GitOperation, shortDescription string, longDescription string) *cobra.Command {
	return &cobra.Command{
		Use:   string(operation),
		Short: shortDescription,
		Long:  longDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.runOperation(command, arguments, operation)
		},

		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	}
}

func (builder *CommandBuilder) runList(command *cobra.Command, arguments []string) error {
	service, configuration, serviceError := builder.prepareService(command, arguments, false)
	if serviceError != nil {
		return serviceError
	}

	if _, listError := service.List(configuration.Root); listError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, listCommandUseConstant, listError)
	}
	return nil
}

func (builder *CommandBuilder) runOperation(command *cobra.Command, arguments []string, operation GitOperation) error {
	service, configuration, serviceError := builder.prepareService(command, arguments, false)
	if serviceError != nil {
		return serviceError
	}

	if _, runError := service.Run(command.Context(), configuration.Root, operation); runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, string(operation), runError)
	}
	return nil
}

func (builder *CommandBuilder) runPull(command *cobra.Command, arguments []string) error {
	service, configuration, serviceError := builder.prepareService(command, arguments, true)
	if serviceError != nil {
		return serviceError
	}

	if _, pullError := service.Pull(command.Context(), configuration.Root); pullError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, pullCommandUseConstant, pullError)
	}
	return nil
}

func (builder *CommandBuilder) prepareService(command *cobra.Command, arguments []string, requiresCleanChecker bool) (*Service, CommandConfiguration, error) {
	logger := builder.resolveLogger()
	if len(arguments) > 0 {
		logger.Debug(ignoredArgumentsMessageConstant, zap.String(logFieldCommandConstant, command.Name()), zap.Strings(logFieldArgumentsConstant, arguments))
	}

	configuration, configurationError := builder.resolveConfiguration()
	if configurationError != nil {
		return nil, CommandConfiguration{}, configurationError
	}

	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, builder.humanReadableLogging(), configuration.GitExecutable)
	if executorError != nil {
		return nil, CommandConfiguration{}, executorError
	}

	serviceDependencies := Dependencies{
		Discoverer:  dependencies.ResolveRepositoryDiscoverer(builder.Discoverer),
		GitExecutor: gitExecutor,
	}
	if requiresCleanChecker {
		cleanChecker, checkerError := dependencies.ResolveCleanChecker(builder.CleanChecker, configuration.CleanCheck, gitExecutor)
		if checkerError != nil {
			return nil, CommandConfiguration{}, checkerError
		}
		serviceDependencies.CleanChecker = cleanChecker
	}

	streams := Streams{
		Input:  command.InOrStdin(),
		Output: command.OutOrStdout(),
		Error:  command.ErrOrStderr(),
	}

	service, serviceError := NewService(logger, serviceDependencies, streams, configuration.Color)
	if serviceError != nil {
		return nil, CommandConfiguration{}, serviceError
	}
	return service, configuration, nil
}

func (builder *CommandBuilder) resolveConfiguration() (CommandConfiguration, error) {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	configuration = configuration.Sanitize()

	colorMode, colorError := ui.ParseColorMode(string(configuration.Color))
	if colorError != nil {
		return CommandConfiguration{}, fmt.Errorf(invalidConfigurationTemplateConstant, colorError)
	}
	configuration.Color = colorMode

	strategy, strategyError := worktree.ParseStrategy(string(configuration.CleanCheck))
	if strategyError != nil {
		return CommandConfiguration{}, fmt.Errorf(invalidConfigurationTemplateConstant, strategyError)
	}
	configuration.CleanCheck = strategy

	return configuration, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) humanReadableLogging() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}

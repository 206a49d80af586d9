package execshell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "logger not configured"
	commandRunnerNotConfiguredMessageConstant = "command runner not configured"
	commandFailedErrorTemplateConstant        = "%s exited with code %d"
	commandExecutionErrorTemplateConstant     = "%s could not be executed: %v"
	commandStartedLogMessageConstant          = "external command started"
	commandSucceededLogMessageConstant        = "external command completed"
	commandFailedLogMessageConstant           = "external command exited with non-zero status"
	commandExecutionFailedLogMessageConstant  = "external command could not be executed"
	logFieldCommandNameConstant               = "command"
	logFieldArgumentsConstant                 = "arguments"
	logFieldWorkingDirectoryConstant          = "working_directory"
	logFieldExitCodeConstant                  = "exit_code"
	logFieldStandardErrorConstant             = "stderr"
	logFieldStreamingConstant                 = "streaming"
	commandLabelSeparatorConstant             = " "
)

// CommandName identifies the executable invoked by the shell executor.
type CommandName string

// CommandGit is the default git executable name resolved through PATH.
const CommandGit CommandName = "git"

// CommandDetails describes the arguments, working directory, and streams of a single invocation.
//
// When StandardOutputWriter or StandardErrorWriter is set the corresponding stream is forwarded
// to that writer while the process runs and is not captured in the ExecutionResult.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	StandardInputReader  io.Reader
	StandardOutputWriter io.Writer
	StandardErrorWriter  io.Writer
}

// Streaming reports whether any output stream is forwarded rather than captured.
func (details CommandDetails) Streaming() bool {
	return details.StandardOutputWriter != nil || details.StandardErrorWriter != nil
}

// ShellCommand pairs an executable with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// Label renders the command with its arguments for diagnostics.
func (command ShellCommand) Label() string {
	commandParts := append([]string{string(command.Name)}, command.Details.Arguments...)
	return strings.Join(commandParts, commandLabelSeparatorConstant)
}

// ExecutionResult captures the observable outcome of a finished process.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandEventObserver receives lifecycle notifications for shell command execution.
type CommandEventObserver interface {
	CommandStarted(command ShellCommand)
	CommandCompleted(command ShellCommand, result ExecutionResult)
	CommandExecutionFailed(command ShellCommand, failure error)
}

// CommandRunner starts a process and waits for it to finish.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)

// CommandFailedError reports a process that ran to completion with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command.
func (failure CommandFailedError) Error() string {
	return fmt.Sprintf(commandFailedErrorTemplateConstant, failure.Command.Label(), failure.Result.ExitCode)
}

// CommandExecutionError reports a process that could not be started or awaited.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, failure.Command.Label(), failure.Cause)
}

// Unwrap exposes the underlying cause.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// ShellExecutorOption customizes a ShellExecutor.
type ShellExecutorOption func(*ShellExecutor)

// WithCommandEventObserver routes lifecycle events to the observer instead of structured log entries.
func WithCommandEventObserver(observer CommandEventObserver) ShellExecutorOption {
	return func(executor *ShellExecutor) {
		if observer != nil {
			executor.observer = observer
		}
	}
}

// WithGitExecutable overrides the executable used by ExecuteGit.
func WithGitExecutable(executable string) ShellExecutorOption {
	return func(executor *ShellExecutor) {
		trimmedExecutable := strings.TrimSpace(executable)
		if len(trimmedExecutable) > 0 {
			executor.gitCommandName = CommandName(trimmedExecutable)
		}
	}
}

// ShellExecutor runs external commands through a CommandRunner and reports their lifecycle.
type ShellExecutor struct {
	logger         *zap.Logger
	runner         CommandRunner
	observer       CommandEventObserver
	gitCommandName CommandName
}

// NewShellExecutor validates dependencies and constructs a ShellExecutor.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, options ...ShellExecutorOption) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	executor := &ShellExecutor{
		logger:         logger,
		runner:         runner,
		gitCommandName: CommandGit,
	}
	for _, option := range options {
		option(executor)
	}
	return executor, nil
}

// Execute runs the command. A non-zero exit yields CommandFailedError; a start or wait failure yields CommandExecutionError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.reportStarted(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.reportExecutionFailure(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.reportCompleted(command, executionResult)
	if executionResult.ExitCode != 0 {
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	return executionResult, nil
}

// ExecuteGit runs the configured git executable with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: executor.gitCommandName, Details: details})
}

func (executor *ShellExecutor) reportStarted(command ShellCommand) {
	if executor.observer != nil {
		executor.observer.CommandStarted(command)
		return
	}
	executor.logger.Debug(commandStartedLogMessageConstant, executor.commandFields(command)...)
}

func (executor *ShellExecutor) reportCompleted(command ShellCommand, result ExecutionResult) {
	if executor.observer != nil {
		executor.observer.CommandCompleted(command, result)
		return
	}

	fields := append(executor.commandFields(command), zap.Int(logFieldExitCodeConstant, result.ExitCode))
	if result.ExitCode == 0 {
		executor.logger.Debug(commandSucceededLogMessageConstant, fields...)
		return
	}

	if trimmedStandardError := strings.TrimSpace(result.StandardError); len(trimmedStandardError) > 0 {
		fields = append(fields, zap.String(logFieldStandardErrorConstant, trimmedStandardError))
	}
	executor.logger.Info(commandFailedLogMessageConstant, fields...)
}

func (executor *ShellExecutor) reportExecutionFailure(command ShellCommand, failure error) {
	if executor.observer != nil {
		executor.observer.CommandExecutionFailed(command, failure)
		return
	}
	executor.logger.Error(commandExecutionFailedLogMessageConstant, append(executor.commandFields(command), zap.Error(failure))...)
}

func (executor *ShellExecutor) commandFields(command ShellCommand) []zap.Field {
	return []zap.Field{
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
		zap.Bool(logFieldStreamingConstant, command.Details.Streaming()),
	}
}

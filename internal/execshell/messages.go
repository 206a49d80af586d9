package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s%s"
	genericSuccessTemplateConstant          = "Completed %s%s"
	genericFailureTemplateConstant          = "%s%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s%s failed: %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
)

const (
	gitStatusSubcommandNameConstant = "status"
	gitStatusPorcelainFlagConstant  = "--porcelain"
	gitFetchSubcommandNameConstant  = "fetch"
	gitBranchSubcommandNameConstant = "branch"
	gitPullSubcommandNameConstant   = "pull"
)

const (
	gitStatusStartTemplateConstant                   = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant                 = "Collected working tree status for %s"
	gitStatusFailureTemplateConstant                 = "Failed to review working tree status in %s (exit code %d%s)"
	gitStatusExecutionFailureTemplateConstant        = "Unable to review working tree status in %s: %s"
	gitCleanCheckStartTemplateConstant               = "Checking for uncommitted changes in %s"
	gitCleanCheckSuccessTemplateConstant             = "Checked for uncommitted changes in %s"
	gitCleanCheckFailureTemplateConstant             = "Failed to check for uncommitted changes in %s (exit code %d%s)"
	gitCleanCheckExecutionFailureTemplateConstant    = "Unable to check for uncommitted changes in %s: %s"
	gitFetchStartTemplateConstant                    = "Fetching from remotes in %s"
	gitFetchSuccessTemplateConstant                  = "Fetched from remotes in %s"
	gitFetchFailureTemplateConstant                  = "Failed to fetch from remotes in %s (exit code %d%s)"
	gitFetchExecutionFailureTemplateConstant         = "Unable to fetch from remotes in %s: %s"
	gitBranchListingStartTemplateConstant            = "Listing branches in %s"
	gitBranchListingSuccessTemplateConstant          = "Listed branches in %s"
	gitBranchListingFailureTemplateConstant          = "Failed to list branches in %s (exit code %d%s)"
	gitBranchListingExecutionFailureTemplateConstant = "Unable to list branches in %s: %s"
	gitPullStartTemplateConstant                     = "Pulling changes into %s"
	gitPullSuccessTemplateConstant                   = "Pulled changes into %s"
	gitPullFailureTemplateConstant                   = "Failed to pull changes into %s (exit code %d%s)"
	gitPullExecutionFailureTemplateConstant          = "Unable to pull changes into %s: %s"
)

type stageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	templates, known := formatter.resolveGitTemplates(command)
	if !known {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(templates.executionFailure, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) resolveGitTemplates(command ShellCommand) (stageTemplates, bool) {
	if len(command.Details.Arguments) == 0 {
		return stageTemplates{}, false
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitStatusSubcommandNameConstant:
		if containsArgument(command.Details.Arguments, gitStatusPorcelainFlagConstant) {
			return stageTemplates{
				start:            gitCleanCheckStartTemplateConstant,
				success:          gitCleanCheckSuccessTemplateConstant,
				failure:          gitCleanCheckFailureTemplateConstant,
				executionFailure: gitCleanCheckExecutionFailureTemplateConstant,
			}, true
		}
		return stageTemplates{
			start:            gitStatusStartTemplateConstant,
			success:          gitStatusSuccessTemplateConstant,
			failure:          gitStatusFailureTemplateConstant,
			executionFailure: gitStatusExecutionFailureTemplateConstant,
		}, true
	case gitFetchSubcommandNameConstant:
		return stageTemplates{
			start:            gitFetchStartTemplateConstant,
			success:          gitFetchSuccessTemplateConstant,
			failure:          gitFetchFailureTemplateConstant,
			executionFailure: gitFetchExecutionFailureTemplateConstant,
		}, true
	case gitBranchSubcommandNameConstant:
		return stageTemplates{
			start:            gitBranchListingStartTemplateConstant,
			success:          gitBranchListingSuccessTemplateConstant,
			failure:          gitBranchListingFailureTemplateConstant,
			executionFailure: gitBranchListingExecutionFailureTemplateConstant,
		}, true
	case gitPullSubcommandNameConstant:
		return stageTemplates{
			start:            gitPullStartTemplateConstant,
			success:          gitPullSuccessTemplateConstant,
			failure:          gitPullFailureTemplateConstant,
			executionFailure: gitPullExecutionFailureTemplateConstant,
		}, true
	default:
		return stageTemplates{}, false
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	label := command.Label()
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, label, workingDirectorySuffix)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, label, workingDirectorySuffix)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, label, workingDirectorySuffix, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, label, workingDirectorySuffix, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func containsArgument(arguments []string, expected string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == expected {
			return true
		}
	}
	return false
}

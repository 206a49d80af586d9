package worktree

import (
	"context"
	"errors"
	"strings"

	"github.com/temirov/gitbulk/internal/execshell"
	"github.com/temirov/gitbulk/internal/repos/shared"
)

const (
	cleanWorktreeMessageSuffixConstant = "nothing to commit, working tree clean\n"
	utf8ReplacementCharacterConstant   = "\uFFFD"
)

// PorcelainCleanChecker treats a repository as clean when `git status --porcelain` succeeds with no entries.
type PorcelainCleanChecker struct {
	executor shared.GitExecutor
}

// NewPorcelainCleanChecker constructs a porcelain-based checker.
func NewPorcelainCleanChecker(gitExecutor shared.GitExecutor) (*PorcelainCleanChecker, error) {
	if gitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &PorcelainCleanChecker{executor: gitExecutor}, nil
}

// CheckCleanWorktree implements shared.CleanWorktreeChecker.
func (checker *PorcelainCleanChecker) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	statusOutput, statusSucceeded, statusError := runCapturedStatus(executionContext, checker.executor, repositoryPath, gitStatusPorcelainFlagConstant)
	if statusError != nil || !statusSucceeded {
		return false, statusError
	}
	return len(strings.TrimSpace(statusOutput)) == 0, nil
}

// MessageCleanChecker treats a repository as clean when `git status` succeeds and its output ends with
// "nothing to commit, working tree clean". Invalid UTF-8 in the output is replaced before matching.
type MessageCleanChecker struct {
	executor shared.GitExecutor
}

// NewMessageCleanChecker constructs a message-based checker.
func NewMessageCleanChecker(gitExecutor shared.GitExecutor) (*MessageCleanChecker, error) {
	if gitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &MessageCleanChecker{executor: gitExecutor}, nil
}

// CheckCleanWorktree implements shared.CleanWorktreeChecker.
func (checker *MessageCleanChecker) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	statusOutput, statusSucceeded, statusError := runCapturedStatus(executionContext, checker.executor, repositoryPath)
	if statusError != nil || !statusSucceeded {
		return false, statusError
	}
	decodedOutput := strings.ToValidUTF8(statusOutput, utf8ReplacementCharacterConstant)
	return strings.HasSuffix(decodedOutput, cleanWorktreeMessageSuffixConstant), nil
}

// runCapturedStatus reports succeeded=false without an error when git ran and exited non-zero.
func runCapturedStatus(executionContext context.Context, gitExecutor shared.GitExecutor, repositoryPath string, extraArguments ...string) (string, bool, error) {
	arguments := append([]string{gitStatusSubcommandConstant}, extraArguments...)
	executionResult, executionError := gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		var failedError execshell.CommandFailedError
		if errors.As(executionError, &failedError) {
			return "", false, nil
		}
		return "", false, executionError
	}
	return executionResult.StandardOutput, true, nil
}

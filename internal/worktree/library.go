package worktree

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5"
)

// LibraryCleanChecker inspects the worktree in process with go-git.
// Untracked files count as changes, matching git's own "working tree clean" verdict.
type LibraryCleanChecker struct{}

// NewLibraryCleanChecker constructs a go-git backed checker.
func NewLibraryCleanChecker() *LibraryCleanChecker {
	return &LibraryCleanChecker{}
}

// CheckCleanWorktree implements shared.CleanWorktreeChecker. Inspection failures are returned as errors.
func (checker *LibraryCleanChecker) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return false, contextError
	}

	repository, openError := git.PlainOpen(repositoryPath)
	if openError != nil {
		return false, fmt.Errorf(repositoryInspectionTemplateConstant, repositoryPath, openError)
	}

	worktree, worktreeError := repository.Worktree()
	if worktreeError != nil {
		return false, fmt.Errorf(repositoryInspectionTemplateConstant, repositoryPath, worktreeError)
	}

	status, statusError := worktree.Status()
	if statusError != nil {
		return false, fmt.Errorf(repositoryInspectionTemplateConstant, repositoryPath, statusError)
	}

	return status.IsClean(), nil
}

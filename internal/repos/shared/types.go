package shared

import (
	"context"
	"io/fs"

	"github.com/temirov/gitbulk/internal/execshell"
)

// FileSystem exposes the read-only filesystem operations used by repository discovery.
type FileSystem interface {
	ReadDir(path string) ([]fs.DirEntry, error)
	Stat(path string) (fs.FileInfo, error)
	Lstat(path string) (fs.FileInfo, error)
}

// GitExecutor exposes the subset of shell execution used by repository services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryDiscoverer locates Git repositories for bulk operations.
type RepositoryDiscoverer interface {
	DiscoverRepositories(basePath string) ([]string, error)
}

// CleanWorktreeChecker reports whether a repository has no pending local changes.
type CleanWorktreeChecker interface {
	CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error)
}

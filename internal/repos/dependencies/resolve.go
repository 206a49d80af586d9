package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/gitbulk/internal/execshell"
	"github.com/temirov/gitbulk/internal/repos/discovery"
	"github.com/temirov/gitbulk/internal/repos/filesystem"
	"github.com/temirov/gitbulk/internal/repos/shared"
	"github.com/temirov/gitbulk/internal/ui"
	"github.com/temirov/gitbulk/internal/worktree"
)

// ResolveRepositoryDiscoverer returns the provided discoverer or a filesystem-backed default.
func ResolveRepositoryDiscoverer(existing shared.RepositoryDiscoverer) shared.RepositoryDiscoverer {
	if existing != nil {
		return existing
	}
	return discovery.NewRepositoryDiscoverer(ResolveFileSystem(nil))
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default running gitExecutable.
// Human-readable logging routes command lifecycle events through the console event logger.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger, humanReadableLogging bool, gitExecutable string) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	executorOptions := []execshell.ShellExecutorOption{execshell.WithGitExecutable(gitExecutable)}
	if humanReadableLogging {
		executorOptions = append(executorOptions, execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(logger)))
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), executorOptions...)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveCleanChecker returns the provided checker or builds the one implementing strategy.
func ResolveCleanChecker(existing shared.CleanWorktreeChecker, strategy worktree.Strategy, gitExecutor shared.GitExecutor) (shared.CleanWorktreeChecker, error) {
	if existing != nil {
		return existing, nil
	}
	return worktree.NewCleanChecker(strategy, gitExecutor)
}

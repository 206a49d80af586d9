package bulk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/gitbulk/internal/execshell"
	"github.com/temirov/gitbulk/internal/repos/shared"
	"github.com/temirov/gitbulk/internal/ui"
)

const (
	repositoryDiscovererMissingMessageConstant = "repository discoverer not configured"
	gitExecutorMissingMessageConstant          = "git executor not configured"
	cleanCheckerMissingMessageConstant         = "clean worktree checker not configured"
	unsupportedOperationTemplateConstant       = "unsupported git operation %q"
	discoveryErrorTemplateConstant             = "unable to discover repositories in %s: %w"
	gitLaunchErrorTemplateConstant             = "unable to run git %s in %s: %w"
	cleanCheckErrorTemplateConstant            = "unable to check worktree of %s: %w"
	listedRepositoryTemplateConstant           = "%s\n"
	gitPullSubcommandConstant                  = "pull"
	repositoriesDiscoveredMessageConstant      = "repositories discovered"
	repositoryFailedMessageConstant            = "git exited with non-zero status; continuing"
	repositorySkippedMessageConstant           = "repository skipped because its worktree is not clean"
	cleanCheckFailedMessageConstant            = "worktree inspection failed; treating repository as not clean"
	operationCompletedMessageConstant          = "bulk operation completed"
	logFieldRootConstant                       = "root"
	logFieldRepositoryConstant                 = "repository"
	logFieldRepositoryCountConstant            = "repository_count"
	logFieldOperationConstant                  = "operation"
	logFieldExitCodeConstant                   = "exit_code"
	logFieldProcessedConstant                  = "processed"
	logFieldFailedConstant                     = "failed"
	logFieldSkippedConstant                    = "skipped"
)

// ErrRepositoryDiscovererNotConfigured indicates the service was constructed without a discoverer.
var ErrRepositoryDiscovererNotConfigured = errors.New(repositoryDiscovererMissingMessageConstant)

// ErrGitExecutorNotConfigured indicates a git operation was requested without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrCleanCheckerNotConfigured indicates pull was requested without a clean worktree checker.
var ErrCleanCheckerNotConfigured = errors.New(cleanCheckerMissingMessageConstant)

// GitOperation names a git subcommand that runs unconditionally in every repository.
type GitOperation string

// Supported unconditional operations.
const (
	GitOperationStatus GitOperation = "status"
	GitOperationFetch  GitOperation = "fetch"
	GitOperationBranch GitOperation = "branch"
)

// Dependencies groups the collaborators used by Service.
type Dependencies struct {
	Discoverer   shared.RepositoryDiscoverer
	GitExecutor  shared.GitExecutor
	CleanChecker shared.CleanWorktreeChecker
}

// Streams holds the terminal streams forwarded to git and used for headers.
type Streams struct {
	Input  io.Reader
	Output io.Writer
	Error  io.Writer
}

// Summary counts the per-repository outcomes of one bulk operation.
type Summary struct {
	Repositories int
	Processed    int
	Failed       int
	Skipped      int
}

// Service executes bulk operations sequentially across discovered repositories.
type Service struct {
	logger         *zap.Logger
	discoverer     shared.RepositoryDiscoverer
	gitExecutor    shared.GitExecutor
	cleanChecker   shared.CleanWorktreeChecker
	streams        Streams
	reporter       shared.Reporter
	headerRenderer *ui.HeaderRenderer
}

// NewService validates dependencies and constructs a Service writing headers in the requested color mode.
func NewService(logger *zap.Logger, dependencies Dependencies, streams Streams, colorMode ui.ColorMode) (*Service, error) {
	if dependencies.Discoverer == nil {
		return nil, ErrRepositoryDiscovererNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	resolvedStreams := streams
	if resolvedStreams.Input == nil {
		resolvedStreams.Input = os.Stdin
	}
	if resolvedStreams.Output == nil {
		resolvedStreams.Output = os.Stdout
	}
	if resolvedStreams.Error == nil {
		resolvedStreams.Error = os.Stderr
	}

	return &Service{
		logger:         logger,
		discoverer:     dependencies.Discoverer,
		gitExecutor:    dependencies.GitExecutor,
		cleanChecker:   dependencies.CleanChecker,
		streams:        resolvedStreams,
		reporter:       shared.NewWriterReporter(resolvedStreams.Output),
		headerRenderer: ui.NewHeaderRenderer(resolvedStreams.Output, colorMode),
	}, nil
}

// List prints every repository under root, one path per line. No external tool is invoked.
func (service *Service) List(root string) (Summary, error) {
	repositories, discoveryError := service.discover(root)
	if discoveryError != nil {
		return Summary{}, discoveryError
	}

	for _, repositoryPath := range repositories {
		service.reporter.Printf(listedRepositoryTemplateConstant, repositoryPath)
	}

	return Summary{Repositories: len(repositories), Processed: len(repositories)}, nil
}

// Run prints a header and runs `git <operation>` with forwarded streams in every repository under root.
// A non-zero git exit is counted and the run continues; a launch failure aborts it.
func (service *Service) Run(executionContext context.Context, root string, operation GitOperation) (Summary, error) {
	switch operation {
	case GitOperationStatus, GitOperationFetch, GitOperationBranch:
	default:
		return Summary{}, fmt.Errorf(unsupportedOperationTemplateConstant, string(operation))
	}
	if service.gitExecutor == nil {
		return Summary{}, ErrGitExecutorNotConfigured
	}

	repositories, discoveryError := service.discover(root)
	if discoveryError != nil {
		return Summary{}, discoveryError
	}

	summary := Summary{Repositories: len(repositories)}
	for _, repositoryPath := range repositories {
		if contextError := executionContext.Err(); contextError != nil {
			return summary, contextError
		}

		service.headerRenderer.RenderHeader(repositoryPath)
		if runError := service.runForwarded(executionContext, repositoryPath, string(operation), &summary); runError != nil {
			return summary, runError
		}
	}

	service.logSummary(string(operation), summary)
	return summary, nil
}

// Pull runs `git pull` in every repository under root whose worktree is clean.
// Repositories that are not clean are announced with an ERROR marker and skipped.
func (service *Service) Pull(executionContext context.Context, root string) (Summary, error) {
	if service.gitExecutor == nil {
		return Summary{}, ErrGitExecutorNotConfigured
	}
	if service.cleanChecker == nil {
		return Summary{}, ErrCleanCheckerNotConfigured
	}

	repositories, discoveryError := service.discover(root)
	if discoveryError != nil {
		return Summary{}, discoveryError
	}

	summary := Summary{Repositories: len(repositories)}
	for _, repositoryPath := range repositories {
		if contextError := executionContext.Err(); contextError != nil {
			return summary, contextError
		}

		clean, cleanCheckError := service.checkClean(executionContext, repositoryPath)
		if cleanCheckError != nil {
			return summary, cleanCheckError
		}
		if !clean {
			service.logger.Debug(repositorySkippedMessageConstant, zap.String(logFieldRepositoryConstant, repositoryPath))
			service.headerRenderer.RenderFailure(repositoryPath)
			summary.Skipped++
			continue
		}

		service.headerRenderer.RenderHeader(repositoryPath)
		if runError := service.runForwarded(executionContext, repositoryPath, gitPullSubcommandConstant, &summary); runError != nil {
			return summary, runError
		}
	}

	service.logSummary(gitPullSubcommandConstant, summary)
	return summary, nil
}

func (service *Service) discover(root string) ([]string, error) {
	repositories, discoveryError := service.discoverer.DiscoverRepositories(root)
	if discoveryError != nil {
		return nil, fmt.Errorf(discoveryErrorTemplateConstant, root, discoveryError)
	}

	service.logger.Debug(
		repositoriesDiscoveredMessageConstant,
		zap.String(logFieldRootConstant, root),
		zap.Int(logFieldRepositoryCountConstant, len(repositories)),
	)
	return repositories, nil
}

func (service *Service) runForwarded(executionContext context.Context, repositoryPath string, subcommand string, summary *Summary) error {
	_, executionError := service.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{subcommand},
		WorkingDirectory:     repositoryPath,
		StandardInputReader:  service.streams.Input,
		StandardOutputWriter: service.streams.Output,
		StandardErrorWriter:  service.streams.Error,
	})
	if executionError == nil {
		summary.Processed++
		return nil
	}

	var failedError execshell.CommandFailedError
	if errors.As(executionError, &failedError) {
		service.logger.Debug(
			repositoryFailedMessageConstant,
			zap.String(logFieldRepositoryConstant, repositoryPath),
			zap.String(logFieldOperationConstant, subcommand),
			zap.Int(logFieldExitCodeConstant, failedError.Result.ExitCode),
		)
		summary.Failed++
		return nil
	}

	return fmt.Errorf(gitLaunchErrorTemplateConstant, subcommand, repositoryPath, executionError)
}

// checkClean treats inspection failures as "not clean" unless git could not be launched or the run was cancelled.
func (service *Service) checkClean(executionContext context.Context, repositoryPath string) (bool, error) {
	clean, cleanCheckError := service.cleanChecker.CheckCleanWorktree(executionContext, repositoryPath)
	if cleanCheckError == nil {
		return clean, nil
	}

	var executionError execshell.CommandExecutionError
	if errors.As(cleanCheckError, &executionError) {
		return false, fmt.Errorf(cleanCheckErrorTemplateConstant, repositoryPath, cleanCheckError)
	}
	if contextError := executionContext.Err(); contextError != nil {
		return false, contextError
	}

	service.logger.Warn(
		cleanCheckFailedMessageConstant,
		zap.String(logFieldRepositoryConstant, repositoryPath),
		zap.Error(cleanCheckError),
	)
	return false, nil
}

func (service *Service) logSummary(operation string, summary Summary) {
	service.logger.Info(
		operationCompletedMessageConstant,
		zap.String(logFieldOperationConstant, operation),
		zap.Int(logFieldRepositoryCountConstant, summary.Repositories),
		zap.Int(logFieldProcessedConstant, summary.Processed),
		zap.Int(logFieldFailedConstant, summary.Failed),
		zap.Int(logFieldSkippedConstant, summary.Skipped),
	)
}

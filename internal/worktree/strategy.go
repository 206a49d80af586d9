package worktree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/gitbulk/internal/repos/shared"
)

const (
	strategyPorcelainConstant            = "porcelain"
	strategyMessageConstant              = "message"
	strategyLibraryConstant              = "library"
	unsupportedStrategyTemplateConstant  = "unsupported clean check strategy %q (expected porcelain, message, or library)"
	gitExecutorMissingMessageConstant    = "git executor not configured"
	gitStatusSubcommandConstant          = "status"
	gitStatusPorcelainFlagConstant       = "--porcelain"
	repositoryInspectionTemplateConstant = "unable to inspect worktree of %s: %w"
)

// ErrGitExecutorNotConfigured indicates a git-backed strategy was requested without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// Strategy selects how clean worktrees are detected.
type Strategy string

// Supported strategies.
const (
	StrategyPorcelain Strategy = strategyPorcelainConstant
	StrategyMessage   Strategy = strategyMessageConstant
	StrategyLibrary   Strategy = strategyLibraryConstant
)

// StrategyChoices lists the accepted strategy values.
func StrategyChoices() []string {
	return []string{strategyPorcelainConstant, strategyMessageConstant, strategyLibraryConstant}
}

// ParseStrategy normalizes and validates a strategy value. An empty value selects porcelain.
func ParseStrategy(rawValue string) (Strategy, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	switch normalizedValue {
	case "", strategyPorcelainConstant:
		return StrategyPorcelain, nil
	case strategyMessageConstant:
		return StrategyMessage, nil
	case strategyLibraryConstant:
		return StrategyLibrary, nil
	default:
		return "", fmt.Errorf(unsupportedStrategyTemplateConstant, rawValue)
	}
}

// UnmarshalText lets configuration decoding validate strategies.
func (strategy *Strategy) UnmarshalText(text []byte) error {
	parsedStrategy, parseError := ParseStrategy(string(text))
	if parseError != nil {
		return parseError
	}
	*strategy = parsedStrategy
	return nil
}

// NewCleanChecker builds the checker implementing the strategy.
func NewCleanChecker(strategy Strategy, gitExecutor shared.GitExecutor) (shared.CleanWorktreeChecker, error) {
	switch strategy {
	case StrategyLibrary:
		return NewLibraryCleanChecker(), nil
	case StrategyMessage:
		messageChecker, creationError := NewMessageCleanChecker(gitExecutor)
		if creationError != nil {
			return nil, creationError
		}
		return messageChecker, nil
	case StrategyPorcelain, "":
		porcelainChecker, creationError := NewPorcelainCleanChecker(gitExecutor)
		if creationError != nil {
			return nil, creationError
		}
		return porcelainChecker, nil
	default:
		return nil, fmt.Errorf(unsupportedStrategyTemplateConstant, string(strategy))
	}
}

package bulk

import (
	"strings"

	"github.com/temirov/gitbulk/internal/execshell"
	"github.com/temirov/gitbulk/internal/ui"
	pathutils "github.com/temirov/gitbulk/internal/utils/path"
	"github.com/temirov/gitbulk/internal/worktree"
)

const (
	defaultRootDirectoryConstant      = "."
	configurationKeySeparatorConstant = "."
	rootConfigurationKeyConstant      = "root"
	gitExecutableConfigurationKey     = "git_executable"
	colorConfigurationKeyConstant     = "color"
	cleanCheckConfigurationKey        = "clean_check"
)

// CommandConfiguration captures configuration values shared by the bulk commands.
type CommandConfiguration struct {
	Root          string            `mapstructure:"root"`
	GitExecutable string            `mapstructure:"git_executable"`
	Color         ui.ColorMode      `mapstructure:"color"`
	CleanCheck    worktree.Strategy `mapstructure:"clean_check"`
}

// DefaultCommandConfiguration provides baseline configuration values for the bulk commands.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Root:          defaultRootDirectoryConstant,
		GitExecutable: string(execshell.CommandGit),
		Color:         ui.ColorModeAuto,
		CleanCheck:    worktree.StrategyPorcelain,
	}
}

// DefaultConfigurationValues exposes the defaults keyed for viper under the provided prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		joinConfigurationKey(prefix, rootConfigurationKeyConstant):  defaults.Root,
		joinConfigurationKey(prefix, gitExecutableConfigurationKey): defaults.GitExecutable,
		joinConfigurationKey(prefix, colorConfigurationKeyConstant): string(defaults.Color),
		joinConfigurationKey(prefix, cleanCheckConfigurationKey):    string(defaults.CleanCheck),
	}
}

// Sanitize trims values, resolves the root directory, and restores defaults for blank fields.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.Root = pathutils.NewRootResolver().Resolve(configuration.Root)

	sanitized.GitExecutable = strings.TrimSpace(configuration.GitExecutable)
	if len(sanitized.GitExecutable) == 0 {
		sanitized.GitExecutable = defaults.GitExecutable
	}

	if len(strings.TrimSpace(string(configuration.Color))) == 0 {
		sanitized.Color = defaults.Color
	}
	if len(strings.TrimSpace(string(configuration.CleanCheck))) == 0 {
		sanitized.CleanCheck = defaults.CleanCheck
	}

	return sanitized
}

func joinConfigurationKey(prefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparatorConstant + key
}

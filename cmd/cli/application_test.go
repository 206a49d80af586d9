package cli_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/gitbulk/cmd/cli"
	"github.com/temirov/gitbulk/internal/bulk"
	"github.com/temirov/gitbulk/internal/execshell"
)

const (
	alphaRepositoryPathConstant      = "alpha"
	betaRepositoryPathConstant       = "beta"
	environmentRootConstant          = "/environment/root"
	flagRootConstant                 = "/flag/root"
	environmentRootVariableConstant  = "GITBULK_BULK_ROOT"
	environmentColorVariableConstant = "GITBULK_BULK_COLOR"
	defaultRootConstant              = "."
	headerTemplateConstant           = "Directory: %s\n"
	failureTemplateConstant          = "Directory: %s ERROR\n"
	unsupportedColorConstant         = "sometimes"
	firstHelpLineConstant            = "gitbulk - Bulk Git Operations Tool\n"
	lastHelpLineConstant             = "    gitbulk pull     # Pull only repos with clean working trees\n"
	environmentLogLevelVariable      = "GITBULK_COMMON_LOG_LEVEL"
	environmentCleanCheckVariable    = "GITBULK_BULK_CLEAN_CHECK"
	unsupportedValueConstant         = "loudest"
	plainDirectoryNameConstant       = "plain"
	gitMetadataDirectoryNameConstant = ".git"
	writeFailureMessageConstant      = "output closed"
)

type fakeRepositoryDiscoverer struct {
	repositories  []string
	receivedRoots []string
}

func (discoverer *fakeRepositoryDiscoverer) DiscoverRepositories(root string) ([]string, error) {
	discoverer.receivedRoots = append(discoverer.receivedRoots, root)
	return append([]string{}, discoverer.repositories...), nil
}

type recordingGitExecutor struct {
	recordedCommands []execshell.CommandDetails
	recordedContexts []context.Context
}

func (executor *recordingGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	executor.recordedContexts = append(executor.recordedContexts, executionContext)
	return execshell.ExecutionResult{}, nil
}

type fakeCleanChecker struct {
	cleanRepositories map[string]bool
}

func (checker *fakeCleanChecker) CheckCleanWorktree(_ context.Context, repositoryPath string) (bool, error) {
	return checker.cleanRepositories[repositoryPath], nil
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New(writeFailureMessageConstant)
}

type applicationFixture struct {
	discoverer   *fakeRepositoryDiscoverer
	gitExecutor  *recordingGitExecutor
	cleanChecker *fakeCleanChecker
	output       *bytes.Buffer
	errorOutput  *bytes.Buffer
}

func newApplicationFixture(repositories ...string) *applicationFixture {
	return &applicationFixture{
		discoverer:   &fakeRepositoryDiscoverer{repositories: repositories},
		gitExecutor:  &recordingGitExecutor{},
		cleanChecker: &fakeCleanChecker{cleanRepositories: map[string]bool{}},
		output:       &bytes.Buffer{},
		errorOutput:  &bytes.Buffer{},
	}
}

func (fixture *applicationFixture) execute(arguments ...string) error {
	application := cli.NewApplication(
		cli.WithArguments(arguments),
		cli.WithStandardStreams(strings.NewReader(""), fixture.output, fixture.errorOutput),
		cli.WithBulkDependencies(bulk.Dependencies{
			Discoverer:   fixture.discoverer,
			GitExecutor:  fixture.gitExecutor,
			CleanChecker: fixture.cleanChecker,
		}),
	)
	return application.Execute()
}

func TestHelpIsRenderedForHelpAndUnrecognizedInvocations(testInstance *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
	}{
		{name: "no_arguments", arguments: []string{}},
		{name: "help_command", arguments: []string{"help"}},
		{name: "long_help_flag", arguments: []string{"--help"}},
		{name: "short_help_flag", arguments: []string{"-h"}},
		{name: "unrecognized_command", arguments: []string{"foobar"}},
		{name: "unrecognized_command_with_arguments", arguments: []string{"foobar", "baz"}},
		{name: "case_sensitive_command", arguments: []string{"LIST"}},
		{name: "unknown_flag", arguments: []string{"--bogus"}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newApplicationFixture(alphaRepositoryPathConstant)

			require.NoError(testInstance, fixture.execute(testCase.arguments...))
			require.Equal(testInstance, cli.HelpText(), fixture.output.String())
			require.Empty(testInstance, fixture.discoverer.receivedRoots)
			require.Empty(testInstance, fixture.gitExecutor.recordedCommands)
		})
	}
}

func TestHelpTextLayout(testInstance *testing.T) {
	helpText := cli.HelpText()
	require.True(testInstance, strings.HasPrefix(helpText, firstHelpLineConstant))
	require.True(testInstance, strings.HasSuffix(helpText, lastHelpLineConstant))
	for _, commandName := range []string{"list", "status", "fetch", "branch", "pull", "help"} {
		require.Contains(testInstance, helpText, "\n    "+commandName+" ")
	}
}

func TestListPrintsDiscoveredRepositories(testInstance *testing.T) {
	fixture := newApplicationFixture(alphaRepositoryPathConstant, betaRepositoryPathConstant)

	require.NoError(testInstance, fixture.execute("list"))

	require.Equal(testInstance, alphaRepositoryPathConstant+"\n"+betaRepositoryPathConstant+"\n", fixture.output.String())
	require.Equal(testInstance, []string{defaultRootConstant}, fixture.discoverer.receivedRoots)
	require.Empty(testInstance, fixture.gitExecutor.recordedCommands)
}

func TestStatusPrintsHeaderPerRepository(testInstance *testing.T) {
	fixture := newApplicationFixture(alphaRepositoryPathConstant, betaRepositoryPathConstant)

	require.NoError(testInstance, fixture.execute("status", "--color", "never"))

	require.Equal(testInstance, fmt.Sprintf(headerTemplateConstant, alphaRepositoryPathConstant)+fmt.Sprintf(headerTemplateConstant, betaRepositoryPathConstant), fixture.output.String())
	require.Len(testInstance, fixture.gitExecutor.recordedCommands, 2)
	for _, details := range fixture.gitExecutor.recordedCommands {
		require.Equal(testInstance, []string{"status"}, details.Arguments)
		require.True(testInstance, details.Streaming())
	}
}

func TestStatusColorsHeadersWhenForced(testInstance *testing.T) {
	fixture := newApplicationFixture(alphaRepositoryPathConstant)

	require.NoError(testInstance, fixture.execute("--color=always", "status"))
	require.Contains(testInstance, fixture.output.String(), "Directory: \x1b[33m"+alphaRepositoryPathConstant)
}

func TestPullMarksDirtyRepositories(testInstance *testing.T) {
	fixture := newApplicationFixture(alphaRepositoryPathConstant, betaRepositoryPathConstant)
	fixture.cleanChecker.cleanRepositories[betaRepositoryPathConstant] = true

	require.NoError(testInstance, fixture.execute("pull", "--color", "never"))

	require.Equal(testInstance, fmt.Sprintf(failureTemplateConstant, alphaRepositoryPathConstant)+fmt.Sprintf(headerTemplateConstant, betaRepositoryPathConstant), fixture.output.String())
	require.Len(testInstance, fixture.gitExecutor.recordedCommands, 1)
	require.Equal(testInstance, []string{"pull"}, fixture.gitExecutor.recordedCommands[0].Arguments)
	require.Equal(testInstance, betaRepositoryPathConstant, fixture.gitExecutor.recordedCommands[0].WorkingDirectory)
}

func TestRootResolutionPrecedence(testInstance *testing.T) {
	testCases := []struct {
		name             string
		environmentRoot  string
		arguments        []string
		expectedRootPath string
	}{
		{name: "default", arguments: []string{"list"}, expectedRootPath: defaultRootConstant},
		{name: "environment", environmentRoot: environmentRootConstant, arguments: []string{"list"}, expectedRootPath: environmentRootConstant},
		{name: "flag_over_environment", environmentRoot: environmentRootConstant, arguments: []string{"list", "--root", flagRootConstant}, expectedRootPath: flagRootConstant},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			if len(testCase.environmentRoot) > 0 {
				testInstance.Setenv(environmentRootVariableConstant, testCase.environmentRoot)
			}
			fixture := newApplicationFixture()

			require.NoError(testInstance, fixture.execute(testCase.arguments...))
			require.Equal(testInstance, []string{testCase.expectedRootPath}, fixture.discoverer.receivedRoots)
		})
	}
}

func TestInvalidColorIsRejected(testInstance *testing.T) {
	testInstance.Run("flag", func(testInstance *testing.T) {
		fixture := newApplicationFixture(alphaRepositoryPathConstant)
		require.Error(testInstance, fixture.execute("status", "--color", unsupportedColorConstant))
		require.Empty(testInstance, fixture.gitExecutor.recordedCommands)
	})

	testInstance.Run("environment", func(testInstance *testing.T) {
		testInstance.Setenv(environmentColorVariableConstant, unsupportedColorConstant)
		fixture := newApplicationFixture(alphaRepositoryPathConstant)
		require.Error(testInstance, fixture.execute("status"))
		require.Empty(testInstance, fixture.gitExecutor.recordedCommands)
	})
}

func TestEmbeddedDefaultConfigurationMatchesDefaults(testInstance *testing.T) {
	configurationContent, configurationType := cli.EmbeddedDefaultConfiguration()
	require.Equal(testInstance, "yaml", configurationType)

	var embeddedConfiguration struct {
		Common struct {
			LogLevel  string `yaml:"log_level"`
			LogFormat string `yaml:"log_format"`
		} `yaml:"common"`
		Bulk struct {
			Root          string `yaml:"root"`
			GitExecutable string `yaml:"git_executable"`
			Color         string `yaml:"color"`
			CleanCheck    string `yaml:"clean_check"`
		} `yaml:"bulk"`
	}
	decoder := yaml.NewDecoder(bytes.NewReader(configurationContent))
	decoder.KnownFields(true)
	require.NoError(testInstance, decoder.Decode(&embeddedConfiguration))

	require.Equal(testInstance, "warn", embeddedConfiguration.Common.LogLevel)
	require.Equal(testInstance, "console", embeddedConfiguration.Common.LogFormat)

	defaults := bulk.DefaultCommandConfiguration()
	require.Equal(testInstance, defaults.Root, embeddedConfiguration.Bulk.Root)
	require.Equal(testInstance, defaults.GitExecutable, embeddedConfiguration.Bulk.GitExecutable)
	require.Equal(testInstance, string(defaults.Color), embeddedConfiguration.Bulk.Color)
	require.Equal(testInstance, string(defaults.CleanCheck), embeddedConfiguration.Bulk.CleanCheck)

	configurationContent[0] = '#'
	pristineContent, _ := cli.EmbeddedDefaultConfiguration()
	require.NotEqual(testInstance, configurationContent[0], pristineContent[0])
}

func TestHelpIgnoresInvalidEnvironmentConfiguration(testInstance *testing.T) {
	environmentCases := []struct {
		name     string
		variable string
		value    string
	}{
		{name: "color", variable: environmentColorVariableConstant, value: unsupportedColorConstant},
		{name: "clean_check", variable: environmentCleanCheckVariable, value: unsupportedValueConstant},
		{name: "log_level", variable: environmentLogLevelVariable, value: unsupportedValueConstant},
	}
	invocations := [][]string{{}, {"help"}, {"foobar"}}

	for _, environmentCase := range environmentCases {
		for _, arguments := range invocations {
			testInstance.Run(environmentCase.name+"_"+strings.Join(append([]string{"root"}, arguments...), "_"), func(testInstance *testing.T) {
				testInstance.Setenv(environmentCase.variable, environmentCase.value)
				fixture := newApplicationFixture(alphaRepositoryPathConstant)

				require.NoError(testInstance, fixture.execute(arguments...))
				require.Equal(testInstance, cli.HelpText(), fixture.output.String())
			})
		}
	}
}

func TestHelpReportsOutputFailures(testInstance *testing.T) {
	application := cli.NewApplication(
		cli.WithArguments([]string{"foobar"}),
		cli.WithStandardStreams(strings.NewReader(""), failingWriter{}, &bytes.Buffer{}),
	)

	executionError := application.Execute()
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), writeFailureMessageConstant)
}

func TestFilesystemDiscoveryKeepsCurrentDirectoryPrefix(testInstance *testing.T) {
	baseDirectory := testInstance.TempDir()
	for _, repositoryName := range []string{alphaRepositoryPathConstant, betaRepositoryPathConstant} {
		require.NoError(testInstance, os.MkdirAll(filepath.Join(baseDirectory, repositoryName, gitMetadataDirectoryNameConstant), 0o755))
	}
	require.NoError(testInstance, os.MkdirAll(filepath.Join(baseDirectory, plainDirectoryNameConstant), 0o755))
	testInstance.Chdir(baseDirectory)

	alphaPath := defaultRootConstant + string(os.PathSeparator) + alphaRepositoryPathConstant
	betaPath := defaultRootConstant + string(os.PathSeparator) + betaRepositoryPathConstant

	testCases := []struct {
		name           string
		arguments      []string
		expectedOutput string
	}{
		{name: "list", arguments: []string{"list"}, expectedOutput: alphaPath + "\n" + betaPath + "\n"},
		{name: "status", arguments: []string{"status", "--color", "never"}, expectedOutput: fmt.Sprintf(headerTemplateConstant, alphaPath) + fmt.Sprintf(headerTemplateConstant, betaPath)},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			output := &bytes.Buffer{}
			gitExecutor := &recordingGitExecutor{}
			application := cli.NewApplication(
				cli.WithArguments(testCase.arguments),
				cli.WithStandardStreams(strings.NewReader(""), output, &bytes.Buffer{}),
				cli.WithBulkDependencies(bulk.Dependencies{GitExecutor: gitExecutor}),
			)

			require.NoError(testInstance, application.Execute())
			require.Equal(testInstance, testCase.expectedOutput, output.String())
		})
	}
}

func TestGitRunsWithoutApplicationCancellation(testInstance *testing.T) {
	fixture := newApplicationFixture(alphaRepositoryPathConstant)

	require.NoError(testInstance, fixture.execute("fetch"))

	require.Len(testInstance, fixture.gitExecutor.recordedContexts, 1)
	require.Nil(testInstance, fixture.gitExecutor.recordedContexts[0].Done())
}

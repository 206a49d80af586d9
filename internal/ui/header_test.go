package ui_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitbulk/internal/ui"
)

const (
	testRepositoryPathConstant = "alpha"
	testYellowSequenceConstant = "\x1b[33m"
)

func TestParseColorMode(testInstance *testing.T) {
	testCases := []struct {
		name         string
		rawValue     string
		expectedMode ui.ColorMode
		expectError  bool
	}{
		{name: "empty_defaults_to_auto", rawValue: "", expectedMode: ui.ColorModeAuto},
		{name: "auto", rawValue: "auto", expectedMode: ui.ColorModeAuto},
		{name: "always_mixed_case", rawValue: " Always ", expectedMode: ui.ColorModeAlways},
		{name: "never", rawValue: "never", expectedMode: ui.ColorModeNever},
		{name: "unsupported", rawValue: "sometimes", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			parsedMode, parseError := ui.ParseColorMode(testCase.rawValue)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedMode, parsedMode)
		})
	}
}

func TestColorModeUnmarshalText(testInstance *testing.T) {
	var mode ui.ColorMode
	require.NoError(testInstance, mode.UnmarshalText([]byte("never")))
	require.Equal(testInstance, ui.ColorModeNever, mode)
	require.Error(testInstance, mode.UnmarshalText([]byte("rainbow")))
}

func TestHeaderRendererPlainOutput(testInstance *testing.T) {
	testCases := []struct {
		name      string
		colorMode ui.ColorMode
	}{
		{name: "never", colorMode: ui.ColorModeNever},
		{name: "auto_without_terminal", colorMode: ui.ColorModeAuto},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			outputBuffer := &bytes.Buffer{}
			headerRenderer := ui.NewHeaderRenderer(outputBuffer, testCase.colorMode)

			headerRenderer.RenderHeader(testRepositoryPathConstant)
			headerRenderer.RenderFailure(testRepositoryPathConstant)

			require.Equal(testInstance, "Directory: alpha\nDirectory: alpha ERROR\n", outputBuffer.String())
		})
	}
}

func TestHeaderRendererColorizesPathWhenForced(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	headerRenderer := ui.NewHeaderRenderer(outputBuffer, ui.ColorModeAlways)

	headerRenderer.RenderFailure(testRepositoryPathConstant)

	renderedOutput := outputBuffer.String()
	require.Contains(testInstance, renderedOutput, testYellowSequenceConstant+testRepositoryPathConstant)
	require.True(testInstance, bytes.HasPrefix(outputBuffer.Bytes(), []byte("Directory: ")))
	require.True(testInstance, bytes.HasSuffix(outputBuffer.Bytes(), []byte(" ERROR\n")))
}

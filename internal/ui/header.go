package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

const (
	colorModeAutoConstant              = "auto"
	colorModeAlwaysConstant            = "always"
	colorModeNeverConstant             = "never"
	unsupportedColorModeTemplate       = "unsupported color mode %q (expected auto, always, or never)"
	repositoryHeaderTemplateConstant   = "Directory: %s\n"
	repositoryFailureTemplateConstant  = "Directory: %s ERROR\n"
	repositoryHeaderColorCodeConstant  = "3"
	noColorEnvironmentVariableConstant = "NO_COLOR"
)

// ColorMode controls whether repository headers are colorized.
type ColorMode string

// Supported color modes.
const (
	ColorModeAuto   ColorMode = colorModeAutoConstant
	ColorModeAlways ColorMode = colorModeAlwaysConstant
	ColorModeNever  ColorMode = colorModeNeverConstant
)

// ColorModeChoices lists the accepted color mode values.
func ColorModeChoices() []string {
	return []string{colorModeAutoConstant, colorModeAlwaysConstant, colorModeNeverConstant}
}

// ParseColorMode normalizes and validates a color mode value. An empty value selects auto.
func ParseColorMode(rawValue string) (ColorMode, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	switch normalizedValue {
	case "", colorModeAutoConstant:
		return ColorModeAuto, nil
	case colorModeAlwaysConstant:
		return ColorModeAlways, nil
	case colorModeNeverConstant:
		return ColorModeNever, nil
	default:
		return "", fmt.Errorf(unsupportedColorModeTemplate, rawValue)
	}
}

// UnmarshalText lets configuration decoding validate color modes.
func (mode *ColorMode) UnmarshalText(text []byte) error {
	parsedMode, parseError := ParseColorMode(string(text))
	if parseError != nil {
		return parseError
	}
	*mode = parsedMode
	return nil
}

// HeaderRenderer writes per-repository header lines with the repository path highlighted.
type HeaderRenderer struct {
	writer    io.Writer
	pathStyle lipgloss.Style
}

// NewHeaderRenderer builds a renderer for the writer. In auto mode color is used only for terminals.
func NewHeaderRenderer(writer io.Writer, mode ColorMode) *HeaderRenderer {
	renderer := lipgloss.NewRenderer(writer)
	if shouldColorize(writer, mode) {
		renderer.SetColorProfile(termenv.ANSI)
	} else {
		renderer.SetColorProfile(termenv.Ascii)
	}

	return &HeaderRenderer{
		writer:    writer,
		pathStyle: renderer.NewStyle().Foreground(lipgloss.Color(repositoryHeaderColorCodeConstant)),
	}
}

// RenderHeader announces the repository about to be processed.
func (headerRenderer *HeaderRenderer) RenderHeader(repositoryPath string) {
	fmt.Fprintf(headerRenderer.writer, repositoryHeaderTemplateConstant, headerRenderer.pathStyle.Render(repositoryPath))
}

// RenderFailure announces a repository that was skipped because its precondition failed.
func (headerRenderer *HeaderRenderer) RenderFailure(repositoryPath string) {
	fmt.Fprintf(headerRenderer.writer, repositoryFailureTemplateConstant, headerRenderer.pathStyle.Render(repositoryPath))
}

func shouldColorize(writer io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorModeAlways:
		return true
	case ColorModeNever:
		return false
	}

	if _, noColorRequested := os.LookupEnv(noColorEnvironmentVariableConstant); noColorRequested {
		return false
	}
	fileWriter, isFile := writer.(*os.File)
	if !isFile {
		return false
	}
	return isatty.IsTerminal(fileWriter.Fd()) || isatty.IsCygwinTerminal(fileWriter.Fd())
}

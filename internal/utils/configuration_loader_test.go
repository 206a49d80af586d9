package utils_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitbulk/internal/utils"
)

const (
	testEnvironmentPrefixConstant                  = "TESTGITBULK"
	testCommonSectionKeyConstant                   = "common"
	testLogLevelKeyConstant                        = testCommonSectionKeyConstant + ".log_level"
	testPaletteKeyConstant                         = testCommonSectionKeyConstant + ".palette"
	testDefaultLogLevelConstant                    = "info"
	testEmbeddedLogLevelConstant                   = "debug"
	testOverriddenLogLevelConstant                 = "error"
	testConfigContentTemplateConstant              = "common:\n  log_level: %s\n"
	testConfigurationTypeConstant                  = "yaml"
	testCaseDefaultsMessageConstant                = "defaults are applied"
	testCaseEmbeddedMessageConstant                = "embedded configuration overrides defaults"
	testCaseEnvironmentMessageConstant             = "environment overrides embedded configuration"
	configurationLoaderSubtestNameTemplateConstant = "%d_%s"
	testPaletteWarmConstant                        = "warm"
	testPaletteCoolConstant                        = "cool"
	testInvalidPaletteConstant                     = "neon"
	testMalformedConfigurationConstant             = "common: [unterminated"
)

var errUnsupportedPalette = errors.New("unsupported palette")

type palette string

func (value *palette) UnmarshalText(text []byte) error {
	normalized := strings.ToLower(strings.TrimSpace(string(text)))
	switch normalized {
	case testPaletteWarmConstant, testPaletteCoolConstant:
		*value = palette(normalized)
		return nil
	default:
		return errUnsupportedPalette
	}
}

type configurationFixture struct {
	Common configurationCommonFixture `mapstructure:"common"`
}

type configurationCommonFixture struct {
	LogLevel string  `mapstructure:"log_level"`
	Palette  palette `mapstructure:"palette"`
}

func environmentVariableName(configurationKey string) string {
	return fmt.Sprintf("%s_%s", testEnvironmentPrefixConstant, strings.ToUpper(strings.ReplaceAll(configurationKey, ".", "_")))
}

func TestConfigurationLoaderLoadConfiguration(testInstance *testing.T) {
	testCases := []struct {
		name                string
		embeddedLogLevel    string
		environmentLogLevel string
		expectedLogLevel    string
	}{
		{
			name:             testCaseDefaultsMessageConstant,
			expectedLogLevel: testDefaultLogLevelConstant,
		},
		{
			name:             testCaseEmbeddedMessageConstant,
			embeddedLogLevel: testEmbeddedLogLevelConstant,
			expectedLogLevel: testEmbeddedLogLevelConstant,
		},
		{
			name:                testCaseEnvironmentMessageConstant,
			embeddedLogLevel:    testEmbeddedLogLevelConstant,
			environmentLogLevel: testOverriddenLogLevelConstant,
			expectedLogLevel:    testOverriddenLogLevelConstant,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(configurationLoaderSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			if len(testCase.environmentLogLevel) > 0 {
				testInstance.Setenv(environmentVariableName(testLogLevelKeyConstant), testCase.environmentLogLevel)
			}

			configurationLoader := utils.NewConfigurationLoader(testEnvironmentPrefixConstant)
			if len(testCase.embeddedLogLevel) > 0 {
				configurationLoader.SetEmbeddedConfiguration([]byte(fmt.Sprintf(testConfigContentTemplateConstant, testCase.embeddedLogLevel)), testConfigurationTypeConstant)
			}

			defaultValues := map[string]any{
				testLogLevelKeyConstant: testDefaultLogLevelConstant,
				testPaletteKeyConstant:  testPaletteWarmConstant,
			}

			loadedConfiguration := configurationFixture{}
			loadError := configurationLoader.LoadConfiguration(defaultValues, &loadedConfiguration)
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedLogLevel, loadedConfiguration.Common.LogLevel)
			require.Equal(testInstance, palette(testPaletteWarmConstant), loadedConfiguration.Common.Palette)
		})
	}
}

func TestConfigurationLoaderDecodesTextUnmarshalers(testInstance *testing.T) {
	testInstance.Setenv(environmentVariableName(testPaletteKeyConstant), " COOL ")

	configurationLoader := utils.NewConfigurationLoader(testEnvironmentPrefixConstant)
	loadedConfiguration := configurationFixture{}
	loadError := configurationLoader.LoadConfiguration(map[string]any{testPaletteKeyConstant: testPaletteWarmConstant}, &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, palette(testPaletteCoolConstant), loadedConfiguration.Common.Palette)
}

func TestConfigurationLoaderRejectsInvalidValues(testInstance *testing.T) {
	testInstance.Setenv(environmentVariableName(testPaletteKeyConstant), testInvalidPaletteConstant)

	configurationLoader := utils.NewConfigurationLoader(testEnvironmentPrefixConstant)
	loadError := configurationLoader.LoadConfiguration(map[string]any{testPaletteKeyConstant: testPaletteWarmConstant}, &configurationFixture{})
	require.Error(testInstance, loadError)
	require.Contains(testInstance, loadError.Error(), errUnsupportedPalette.Error())
}

func TestConfigurationLoaderRejectsMalformedEmbeddedConfiguration(testInstance *testing.T) {
	configurationLoader := utils.NewConfigurationLoader(testEnvironmentPrefixConstant)
	configurationLoader.SetEmbeddedConfiguration([]byte(testMalformedConfigurationConstant), "")

	loadError := configurationLoader.LoadConfiguration(nil, &configurationFixture{})
	require.Error(testInstance, loadError)
}

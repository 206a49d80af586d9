package cli

import (
	_ "embed"

	"github.com/temirov/gitbulk/internal/bulk"
	"github.com/temirov/gitbulk/internal/utils"
)

//go:embed default_config.yaml
var embeddedDefaultConfigurationContent []byte

// EmbeddedDefaultConfiguration returns a copy of the embedded default configuration and its type identifier.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	duplicatedContent := make([]byte, len(embeddedDefaultConfigurationContent))
	copy(duplicatedContent, embeddedDefaultConfigurationContent)
	return duplicatedContent, configurationTypeConstant
}

// defaultConfigurationValues registers every configuration key so environment overrides apply even without embedded data.
func defaultConfigurationValues() map[string]any {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelWarn),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}
	for configurationKey, configurationValue := range bulk.DefaultConfigurationValues(bulkConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	return defaultValues
}

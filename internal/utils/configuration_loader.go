package utils

import (
	"bytes"
	"fmt"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorOldConstant              = "."
	environmentKeySeparatorNewConstant              = "_"
	configurationUnmarshalErrorTemplateConstant     = "failed to parse configuration: %w"
	embeddedConfigurationMergeErrorTemplateConstant = "failed to merge embedded configuration: %w"
	defaultEmbeddedConfigurationTypeConstant        = "yaml"
)

// ConfigurationLoader wraps Viper to merge embedded defaults with environment overrides.
// Precedence, lowest first: explicit default values, embedded configuration, environment variables.
type ConfigurationLoader struct {
	environmentPrefix         string
	environmentKeyReplacer    *strings.Replacer
	embeddedConfiguration     []byte
	embeddedConfigurationType string
}

// NewConfigurationLoader creates a loader that respects an environment prefix.
func NewConfigurationLoader(environmentPrefix string) *ConfigurationLoader {
	return &ConfigurationLoader{
		environmentPrefix:         strings.TrimSpace(environmentPrefix),
		environmentKeyReplacer:    strings.NewReplacer(environmentKeySeparatorOldConstant, environmentKeySeparatorNewConstant),
		embeddedConfigurationType: defaultEmbeddedConfigurationTypeConstant,
	}
}

// SetEmbeddedConfiguration stores embedded configuration data merged over the default values.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationData []byte, configurationType string) {
	if loader == nil {
		return
	}

	loader.embeddedConfiguration = nil
	loader.embeddedConfigurationType = strings.TrimSpace(configurationType)
	if len(loader.embeddedConfigurationType) == 0 {
		loader.embeddedConfigurationType = defaultEmbeddedConfigurationTypeConstant
	}

	if len(configurationData) == 0 {
		return
	}

	duplicatedData := make([]byte, len(configurationData))
	copy(duplicatedData, configurationData)
	loader.embeddedConfiguration = duplicatedData
}

// LoadConfiguration populates targetConfiguration from defaults, embedded data, and environment variables.
// Fields implementing encoding.TextUnmarshaler are decoded through UnmarshalText so enum values are validated.
func (loader *ConfigurationLoader) LoadConfiguration(defaultValues map[string]any, targetConfiguration any) error {
	viperInstance := viper.New()

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if len(loader.embeddedConfiguration) > 0 {
		viperInstance.SetConfigType(loader.embeddedConfigurationType)
		if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedConfiguration)); mergeError != nil {
			return fmt.Errorf(embeddedConfigurationMergeErrorTemplateConstant, mergeError)
		}
	}

	if len(loader.environmentPrefix) > 0 {
		viperInstance.SetEnvPrefix(loader.environmentPrefix)
	}
	viperInstance.SetEnvKeyReplacer(loader.environmentKeyReplacer)
	viperInstance.AutomaticEnv()

	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if unmarshalError := viperInstance.Unmarshal(targetConfiguration, decodeHook); unmarshalError != nil {
		return fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}

	return nil
}

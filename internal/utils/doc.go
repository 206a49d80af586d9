// Package utils exposes reusable helpers consumed by the command-line entrypoint.
//
// ConfigurationLoader merges defaults, embedded YAML, and environment
// variables through Viper. LoggerFactory builds zap loggers that write
// diagnostics to standard error in structured or console form.
package utils

// Package cli constructs the gitbulk command-line interface, wiring the Cobra
// command hierarchy, the static help text, configuration loading, and
// structured logging. Execute runs the default application.
package cli

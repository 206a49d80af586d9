// Package bulk runs one git subcommand across every repository found among
// the immediate subdirectories of a root directory.
//
// Service performs the list, status, fetch, branch, and clean-gated pull
// operations sequentially. CommandBuilder exposes them as Cobra commands that
// resolve their collaborators from configuration when none are injected.
package bulk

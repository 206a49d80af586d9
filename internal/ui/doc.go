// Package ui provides helpers for formatting human-readable console output.
//
// HeaderRenderer prints the per-repository "Directory:" lines, colorizing the
// path when the output is a terminal. ConsoleCommandEventLogger translates
// execshell lifecycle events into concise log messages for console logging.
package ui

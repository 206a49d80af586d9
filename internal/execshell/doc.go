// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with lifecycle logging and classifies
// outcomes into CommandFailedError (the process ran and exited non-zero) and
// CommandExecutionError (the process could not be started). OSCommandRunner
// is the os/exec backed runner; it either captures output or forwards it live
// to caller-supplied writers.
package execshell

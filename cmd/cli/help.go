package cli

import (
	"io"
)

const helpTextConstant = `gitbulk - Bulk Git Operations Tool

USAGE:
    gitbulk <COMMAND>

COMMANDS:
    list      List all git repositories in the current directory
    status    Show git status for all repositories
    fetch     Fetch updates from remote for all repositories
    branch    Show current branch for all repositories
    pull      Pull changes (only if working tree is clean)
    help      Show this help message

DESCRIPTION:
    gitbulk performs git operations on all git repositories found
    in subdirectories of the current working directory.

EXAMPLES:
    gitbulk list     # List all git repos
    gitbulk status   # Check status of all repos
    gitbulk fetch    # Fetch from all remotes
    gitbulk pull     # Pull only repos with clean working trees
`

// HelpText returns the static usage text shown for no arguments, help, and unrecognized commands.
func HelpText() string {
	return helpTextConstant
}

func renderHelp(writer io.Writer) error {
	_, writeError := io.WriteString(writer, helpTextConstant)
	return writeError
}

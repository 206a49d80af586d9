// Package worktree decides whether a repository has pending local changes.
//
// Three strategies are available: porcelain (git status --porcelain must be
// empty), message (the human-readable git status must end with the "working
// tree clean" sentence), and library (go-git inspects the worktree in process).
package worktree

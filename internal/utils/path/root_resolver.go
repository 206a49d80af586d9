// Package pathutils normalizes filesystem paths supplied on the command line.
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant          = "~"
	currentDirectoryConstant     = "."
	forwardSlashSeparatorLiteral = "/"
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// RootResolver normalizes the root directory scanned for repositories.
type RootResolver struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewRootResolver constructs a RootResolver using the operating system home directory lookup.
func NewRootResolver() *RootResolver {
	return NewRootResolverWithProvider(os.UserHomeDir)
}

// NewRootResolverWithProvider constructs a RootResolver with a custom home directory provider.
func NewRootResolverWithProvider(provider HomeDirectoryProvider) *RootResolver {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &RootResolver{homeDirectoryProvider: provider}
}

// Resolve trims the candidate, expands a leading "~" or "~/" to the home directory, and cleans the result.
// A blank candidate resolves to the current directory. "~user" forms are returned cleaned but unexpanded.
func (resolver *RootResolver) Resolve(candidatePath string) string {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		return currentDirectoryConstant
	}
	if resolver == nil || !strings.HasPrefix(trimmedPath, tildeSymbolConstant) {
		return filepath.Clean(trimmedPath)
	}

	remainder := strings.TrimPrefix(trimmedPath, tildeSymbolConstant)
	if len(remainder) > 0 && !strings.HasPrefix(remainder, forwardSlashSeparatorLiteral) && !strings.HasPrefix(remainder, string(os.PathSeparator)) {
		return filepath.Clean(trimmedPath)
	}

	homeDirectory := resolver.resolveHomeDirectory()
	if len(homeDirectory) == 0 {
		return filepath.Clean(trimmedPath)
	}
	return filepath.Join(homeDirectory, remainder)
}

func (resolver *RootResolver) resolveHomeDirectory() string {
	resolver.initializationGuard.Do(func() {
		resolver.homeDirectory, resolver.homeDirectoryError = resolver.homeDirectoryProvider()
	})
	if resolver.homeDirectoryError != nil {
		return ""
	}
	return resolver.homeDirectory
}

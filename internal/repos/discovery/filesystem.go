package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/gitbulk/internal/repos/filesystem"
	"github.com/temirov/gitbulk/internal/repos/shared"
)

const (
	gitMetadataDirectoryNameConstant   = ".git"
	directoryListingErrorTemplateConst = "unable to list %s: %w"
)

// FilesystemRepositoryDiscoverer locates git repositories among the immediate subdirectories of a base path.
type FilesystemRepositoryDiscoverer struct {
	fileSystem shared.FileSystem
}

// NewFilesystemRepositoryDiscoverer constructs a discoverer backed by the operating system filesystem.
func NewFilesystemRepositoryDiscoverer() *FilesystemRepositoryDiscoverer {
	return NewRepositoryDiscoverer(filesystem.OSFileSystem{})
}

// NewRepositoryDiscoverer constructs a discoverer backed by the provided filesystem.
func NewRepositoryDiscoverer(fileSystem shared.FileSystem) *FilesystemRepositoryDiscoverer {
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	return &FilesystemRepositoryDiscoverer{fileSystem: fileSystem}
}

// DiscoverRepositories returns every direct child of basePath that is a directory holding a .git directory.
// The candidate itself may be a symbolic link to a directory, but .git must be a real directory:
// gitfiles used by worktrees and submodules and symlinked .git entries do not qualify.
// Grandchildren are never inspected.
// Paths keep basePath as given, so "." yields "./name".
// Results follow the directory listing order.
func (discoverer *FilesystemRepositoryDiscoverer) DiscoverRepositories(basePath string) ([]string, error) {
	directoryEntries, listingError := discoverer.fileSystem.ReadDir(basePath)
	if listingError != nil {
		return nil, fmt.Errorf(directoryListingErrorTemplateConst, basePath, listingError)
	}

	repositories := make([]string, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		candidatePath := childPath(basePath, directoryEntry.Name())
		if !discoverer.isDirectory(candidatePath) {
			continue
		}
		if !discoverer.isRealDirectory(filepath.Join(candidatePath, gitMetadataDirectoryNameConstant)) {
			continue
		}
		repositories = append(repositories, candidatePath)
	}

	return repositories, nil
}

func (discoverer *FilesystemRepositoryDiscoverer) isDirectory(path string) bool {
	fileInfo, statError := discoverer.fileSystem.Stat(path)
	if statError != nil {
		return false
	}
	return fileInfo.IsDir()
}

func (discoverer *FilesystemRepositoryDiscoverer) isRealDirectory(path string) bool {
	fileInfo, statError := discoverer.fileSystem.Lstat(path)
	if statError != nil {
		return false
	}
	return fileInfo.IsDir()
}

func childPath(basePath string, childName string) string {
	if strings.HasSuffix(basePath, string(os.PathSeparator)) {
		return basePath + childName
	}
	return basePath + string(os.PathSeparator) + childName
}

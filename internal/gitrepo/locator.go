package gitrepo

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/temirov/localignore/internal/filesystem"
)

const (
	// MetadataDirectoryNameConstant names the private Git metadata directory.
	MetadataDirectoryNameConstant          = ".git"
	startingDirectoryErrorTemplateConstant = "unable to resolve starting directory %q: %w"
)

// ErrRepositoryNotFound reports that no ancestor directory contains a Git metadata directory.
var ErrRepositoryNotFound = errors.New("not inside a git repository")

// Repository identifies a located Git working copy.
type Repository struct {
	RootPath     string
	MetadataPath string
}

// Locator walks parent directories looking for a Git metadata directory.
type Locator struct {
	fileSystem         filesystem.FileSystem
	ceilingDirectories map[string]struct{}
}

// NewLocator constructs a Locator. Ceiling directories that are not absolute are ignored.
func NewLocator(fileSystem filesystem.FileSystem, ceilingDirectories []string) *Locator {
	absoluteCeilings := lo.Filter(ceilingDirectories, func(candidate string, _ int) bool {
		trimmed := strings.TrimSpace(candidate)
		return len(trimmed) > 0 && filepath.IsAbs(trimmed)
	})

	ceilingSet := make(map[string]struct{}, len(absoluteCeilings))
	for _, ceilingDirectory := range absoluteCeilings {
		ceilingSet[filepath.Clean(strings.TrimSpace(ceilingDirectory))] = struct{}{}
	}

	return &Locator{
		fileSystem:         filesystem.Resolve(fileSystem),
		ceilingDirectories: ceilingSet,
	}
}

// Locate returns the nearest repository enclosing startingDirectory or ErrRepositoryNotFound.
func (locator *Locator) Locate(startingDirectory string) (Repository, error) {
	absoluteDirectory, absoluteError := locator.fileSystem.Abs(startingDirectory)
	if absoluteError != nil {
		return Repository{}, fmt.Errorf(startingDirectoryErrorTemplateConstant, startingDirectory, absoluteError)
	}

	candidateDirectory := filepath.Clean(absoluteDirectory)
	for {
		metadataPath := filepath.Join(candidateDirectory, MetadataDirectoryNameConstant)
		if locator.isMetadataDirectory(metadataPath) {
			return Repository{RootPath: candidateDirectory, MetadataPath: metadataPath}, nil
		}

		parentDirectory := filepath.Dir(candidateDirectory)
		if parentDirectory == candidateDirectory {
			return Repository{}, ErrRepositoryNotFound
		}
		if _, isCeiling := locator.ceilingDirectories[parentDirectory]; isCeiling {
			return Repository{}, ErrRepositoryNotFound
		}
		candidateDirectory = parentDirectory
	}
}

// A .git file (gitlink) does not qualify.
func (locator *Locator) isMetadataDirectory(metadataPath string) bool {
	fileInfo, statError := locator.fileSystem.Stat(metadataPath)
	if statError != nil {
		return false
	}
	return fileInfo.IsDir()
}

// ParseCeilingDirectories splits a GIT_CEILING_DIRECTORIES style value into its entries.
func ParseCeilingDirectories(rawValue string) []string {
	return lo.Compact(lo.Map(filepath.SplitList(rawValue), func(entry string, _ int) string {
		return strings.TrimSpace(entry)
	}))
}

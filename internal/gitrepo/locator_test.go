package gitrepo_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/localignore/internal/filesystem"
	"github.com/temirov/localignore/internal/gitrepo"
)

const (
	outerRepositoryDirectoryName   = "outer"
	innerRepositoryDirectoryName   = "inner"
	nestedWorkingDirectoryName     = "nested"
	deepWorkingDirectoryName       = "deep"
	gitMetadataDirectoryName       = ".git"
	repositoryDirectoryPermissions = 0o755
)

type recordingFileSystem struct {
	filesystem.OSFileSystem
	statCalls []string
}

func (fileSystem *recordingFileSystem) Stat(path string) (fs.FileInfo, error) {
	fileSystem.statCalls = append(fileSystem.statCalls, path)
	return fileSystem.OSFileSystem.Stat(path)
}

func createDirectory(testInstance *testing.T, segments ...string) string {
	testInstance.Helper()
	directoryPath := filepath.Join(segments...)
	require.NoError(testInstance, os.MkdirAll(directoryPath, repositoryDirectoryPermissions))
	return directoryPath
}

func listTree(testInstance *testing.T, rootDirectory string) []string {
	testInstance.Helper()
	var entries []string
	walkError := filepath.WalkDir(rootDirectory, func(path string, _ fs.DirEntry, walkError error) error {
		if walkError != nil {
			return walkError
		}
		entries = append(entries, path)
		return nil
	})
	require.NoError(testInstance, walkError)
	return entries
}

func TestLocatorFindsNearestRepository(testInstance *testing.T) {
	temporaryRoot := testInstance.TempDir()
	outerRepositoryPath := createDirectory(testInstance, temporaryRoot, outerRepositoryDirectoryName)
	createDirectory(testInstance, outerRepositoryPath, gitMetadataDirectoryName)
	innerRepositoryPath := createDirectory(testInstance, outerRepositoryPath, innerRepositoryDirectoryName)
	createDirectory(testInstance, innerRepositoryPath, gitMetadataDirectoryName)
	createDirectory(testInstance, outerRepositoryPath, nestedWorkingDirectoryName, deepWorkingDirectoryName)
	createDirectory(testInstance, innerRepositoryPath, nestedWorkingDirectoryName, deepWorkingDirectoryName)

	testCases := []struct {
		name                 string
		startingDirectory    string
		expectedRootPath     string
		expectedMetadataPath string
	}{
		{
			name:                 "repository_root_itself",
			startingDirectory:    outerRepositoryPath,
			expectedRootPath:     outerRepositoryPath,
			expectedMetadataPath: filepath.Join(outerRepositoryPath, gitMetadataDirectoryName),
		},
		{
			name:                 "deep_descendant_of_outer_repository",
			startingDirectory:    filepath.Join(outerRepositoryPath, nestedWorkingDirectoryName, deepWorkingDirectoryName),
			expectedRootPath:     outerRepositoryPath,
			expectedMetadataPath: filepath.Join(outerRepositoryPath, gitMetadataDirectoryName),
		},
		{
			name:                 "nested_repository_wins_over_outer",
			startingDirectory:    filepath.Join(innerRepositoryPath, nestedWorkingDirectoryName, deepWorkingDirectoryName),
			expectedRootPath:     innerRepositoryPath,
			expectedMetadataPath: filepath.Join(innerRepositoryPath, gitMetadataDirectoryName),
		},
		{
			name:                 "unclean_starting_path",
			startingDirectory:    filepath.Join(innerRepositoryPath, nestedWorkingDirectoryName, "..", nestedWorkingDirectoryName),
			expectedRootPath:     innerRepositoryPath,
			expectedMetadataPath: filepath.Join(innerRepositoryPath, gitMetadataDirectoryName),
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			locator := gitrepo.NewLocator(nil, nil)
			repository, locateError := locator.Locate(testCase.startingDirectory)
			require.NoError(testInstance, locateError)
			require.Equal(testInstance, testCase.expectedRootPath, repository.RootPath)
			require.Equal(testInstance, testCase.expectedMetadataPath, repository.MetadataPath)
		})
	}
}

func TestLocatorReportsMissingRepositoryWithoutSideEffects(testInstance *testing.T) {
	temporaryRoot := testInstance.TempDir()
	startingDirectory := createDirectory(testInstance, temporaryRoot, nestedWorkingDirectoryName, deepWorkingDirectoryName)
	treeBefore := listTree(testInstance, temporaryRoot)

	fileSystem := &recordingFileSystem{}
	locator := gitrepo.NewLocator(fileSystem, []string{filepath.Dir(temporaryRoot)})
	_, locateError := locator.Locate(startingDirectory)

	require.ErrorIs(testInstance, locateError, gitrepo.ErrRepositoryNotFound)
	require.Equal(testInstance, treeBefore, listTree(testInstance, temporaryRoot))
	require.Equal(testInstance, []string{
		filepath.Join(startingDirectory, gitMetadataDirectoryName),
		filepath.Join(temporaryRoot, nestedWorkingDirectoryName, gitMetadataDirectoryName),
		filepath.Join(temporaryRoot, gitMetadataDirectoryName),
	}, fileSystem.statCalls)
}

func TestLocatorStopsAtCeilingDirectories(testInstance *testing.T) {
	temporaryRoot := testInstance.TempDir()
	createDirectory(testInstance, temporaryRoot, gitMetadataDirectoryName)
	ceilingDirectory := createDirectory(testInstance, temporaryRoot, nestedWorkingDirectoryName)
	startingDirectory := createDirectory(testInstance, ceilingDirectory, deepWorkingDirectoryName)

	locator := gitrepo.NewLocator(nil, []string{ceilingDirectory})
	_, locateError := locator.Locate(startingDirectory)
	require.ErrorIs(testInstance, locateError, gitrepo.ErrRepositoryNotFound)

	unboundedLocator := gitrepo.NewLocator(nil, []string{"relative/ceiling", "  "})
	repository, unboundedError := unboundedLocator.Locate(startingDirectory)
	require.NoError(testInstance, unboundedError)
	require.Equal(testInstance, temporaryRoot, repository.RootPath)
}

func TestLocatorIgnoresGitlinkFiles(testInstance *testing.T) {
	temporaryRoot := testInstance.TempDir()
	createDirectory(testInstance, temporaryRoot, gitMetadataDirectoryName)
	worktreeDirectory := createDirectory(testInstance, temporaryRoot, innerRepositoryDirectoryName)
	gitlinkPath := filepath.Join(worktreeDirectory, gitMetadataDirectoryName)
	require.NoError(testInstance, os.WriteFile(gitlinkPath, []byte("gitdir: ../.git/worktrees/inner\n"), 0o600))

	repository, locateError := gitrepo.NewLocator(nil, nil).Locate(worktreeDirectory)
	require.NoError(testInstance, locateError)
	require.Equal(testInstance, temporaryRoot, repository.RootPath)
}

type failingAbsFileSystem struct {
	filesystem.OSFileSystem
}

func (failingAbsFileSystem) Abs(string) (string, error) {
	return "", errors.New("getwd: no such file or directory")
}

func TestLocatorPropagatesStartingDirectoryFailure(testInstance *testing.T) {
	_, locateError := gitrepo.NewLocator(failingAbsFileSystem{}, nil).Locate("relative")
	require.Error(testInstance, locateError)
	require.NotErrorIs(testInstance, locateError, gitrepo.ErrRepositoryNotFound)
}

func TestParseCeilingDirectories(testInstance *testing.T) {
	rawValue := "/srv" + string(os.PathListSeparator) + " " + string(os.PathListSeparator) + "/home/user "
	require.Equal(testInstance, []string{"/srv", "/home/user"}, gitrepo.ParseCeilingDirectories(rawValue))
	require.Empty(testInstance, gitrepo.ParseCeilingDirectories(""))
}

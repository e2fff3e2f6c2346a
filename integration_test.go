package main_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	integrationBinaryNameConstant            = "git-local-ignore"
	integrationCommandTimeout                = 60 * time.Second
	integrationCeilingEnvironmentConstant    = "GIT_CEILING_DIRECTORIES"
	integrationUserConfigEnvironmentConstant = "XDG_CONFIG_HOME"
	integrationLogLevelEnvironmentConstant   = "GITLOCALIGNORE_COMMON_LOG_LEVEL"
	integrationErrorPrefixConstant           = "❌ "
)

type integrationResult struct {
	standardOutput string
	standardError  string
	exitCode       int
}

func buildIntegrationBinary(testInstance *testing.T) string {
	testInstance.Helper()
	if testing.Short() {
		testInstance.Skip("integration tests build the binary")
	}

	moduleRoot, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	binaryPath := filepath.Join(testInstance.TempDir(), integrationBinaryNameConstant)
	executionContext, cancel := context.WithTimeout(context.Background(), integrationCommandTimeout)
	defer cancel()

	buildCommand := exec.CommandContext(executionContext, "go", "build", "-o", binaryPath, ".")
	buildCommand.Dir = moduleRoot
	buildOutput, buildError := buildCommand.CombinedOutput()
	require.NoError(testInstance, buildError, string(buildOutput))
	return binaryPath
}

func runIntegrationCommand(testInstance *testing.T, binaryPath string, workingDirectory string, ceiling string, arguments ...string) integrationResult {
	testInstance.Helper()

	executionContext, cancel := context.WithTimeout(context.Background(), integrationCommandTimeout)
	defer cancel()

	command := exec.CommandContext(executionContext, binaryPath, arguments...)
	command.Dir = workingDirectory
	command.Env = append(os.Environ(),
		integrationCeilingEnvironmentConstant+"="+ceiling,
		integrationUserConfigEnvironmentConstant+"="+ceiling,
		integrationLogLevelEnvironmentConstant+"=error",
	)
	command.Stdin = bytes.NewReader(nil)

	var standardOutput bytes.Buffer
	var standardError bytes.Buffer
	command.Stdout = &standardOutput
	command.Stderr = &standardError

	exitCode := 0
	if runError := command.Run(); runError != nil {
		var exitError *exec.ExitError
		require.True(testInstance, errors.As(runError, &exitError), runError)
		exitCode = exitError.ExitCode()
	}

	return integrationResult{
		standardOutput: standardOutput.String(),
		standardError:  standardError.String(),
		exitCode:       exitCode,
	}
}

func TestIntegrationExcludeWorkflow(testInstance *testing.T) {
	binaryPath := buildIntegrationBinary(testInstance)

	workspaceRoot := testInstance.TempDir()
	repositoryRoot := filepath.Join(workspaceRoot, "repository")
	nestedDirectory := filepath.Join(repositoryRoot, "nested")
	require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryRoot, ".git"), 0o755))
	require.NoError(testInstance, os.MkdirAll(nestedDirectory, 0o755))

	addResult := runIntegrationCommand(testInstance, binaryPath, nestedDirectory, workspaceRoot, "--force", "out/", "notes.txt")
	require.Equal(testInstance, 0, addResult.exitCode, addResult.standardError)
	require.Equal(testInstance, "Successfully inserted entries into the exclude file:\n  nested/out/\n  nested/notes.txt\n", addResult.standardOutput)

	listResult := runIntegrationCommand(testInstance, binaryPath, repositoryRoot, workspaceRoot, "-l")
	require.Equal(testInstance, 0, listResult.exitCode, listResult.standardError)
	require.Equal(testInstance, "\nEntries in the exclude file:\n  nested/out/\n  nested/notes.txt\n", listResult.standardOutput)

	declinedResult := runIntegrationCommand(testInstance, binaryPath, repositoryRoot, workspaceRoot, "--clear")
	require.Equal(testInstance, 0, declinedResult.exitCode, declinedResult.standardError)
	require.Contains(testInstance, declinedResult.standardOutput, "use --force to skip confirmation")

	content, readError := os.ReadFile(filepath.Join(repositoryRoot, ".git", "info", "exclude"))
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "nested/out/\nnested/notes.txt\n", string(content))

	clearResult := runIntegrationCommand(testInstance, binaryPath, repositoryRoot, workspaceRoot, "--clear", "--force")
	require.Equal(testInstance, 0, clearResult.exitCode, clearResult.standardError)

	content, readError = os.ReadFile(filepath.Join(repositoryRoot, ".git", "info", "exclude"))
	require.NoError(testInstance, readError)
	require.Empty(testInstance, content)
}

func TestIntegrationFailuresExitNonZero(testInstance *testing.T) {
	binaryPath := buildIntegrationBinary(testInstance)

	workspaceRoot := testInstance.TempDir()
	outsideDirectory := filepath.Join(workspaceRoot, "outside")
	require.NoError(testInstance, os.MkdirAll(outsideDirectory, 0o755))

	testCases := []struct {
		name            string
		arguments       []string
		expectedMessage string
	}{
		{name: "not_a_repository", arguments: []string{"--list"}, expectedMessage: "not inside a git repository"},
		{name: "conflicting_modes", arguments: []string{"--list", "pattern"}, expectedMessage: "choose only one of"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			result := runIntegrationCommand(testInstance, binaryPath, outsideDirectory, workspaceRoot, testCase.arguments...)
			require.Equal(testInstance, 1, result.exitCode)
			require.Contains(testInstance, result.standardError, integrationErrorPrefixConstant+testCase.expectedMessage)
		})
	}
}

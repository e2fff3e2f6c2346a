package exclude

import (
	"errors"
	"fmt"
)

const (
	fileErrorTemplateConstant             = "unable to %s exclude file %s: %v"
	workingDirectoryErrorTemplateConstant = "unable to access working directory: %v"
)

// FileOperation names the exclusion file operation that failed.
type FileOperation string

// Exclusion file operations reported by FileError.
const (
	FileOperationOpen     FileOperation = "open"
	FileOperationRead     FileOperation = "read"
	FileOperationWrite    FileOperation = "write"
	FileOperationTruncate FileOperation = "truncate"
)

var (
	// ErrNoEntriesProvided indicates the add mode was invoked without patterns.
	ErrNoEntriesProvided = errors.New("no entries provided; pass one or more patterns to exclude")
	// ErrModeConflict indicates more than one mode was requested.
	ErrModeConflict = errors.New("choose only one of --list, --clear, or patterns to add")
)

// FileError wraps a filesystem failure encountered while operating on the exclusion file.
type FileError struct {
	Operation FileOperation
	Path      string
	Cause     error
}

// Error describes the failed operation.
func (fileError *FileError) Error() string {
	return fmt.Sprintf(fileErrorTemplateConstant, fileError.Operation, fileError.Path, fileError.Cause)
}

// Unwrap exposes the underlying filesystem error.
func (fileError *FileError) Unwrap() error {
	return fileError.Cause
}

// WorkingDirectoryError reports that the current working directory could not be determined.
type WorkingDirectoryError struct {
	Cause error
}

// Error describes the working directory failure.
func (workingDirectoryError *WorkingDirectoryError) Error() string {
	return fmt.Sprintf(workingDirectoryErrorTemplateConstant, workingDirectoryError.Cause)
}

// Unwrap exposes the underlying error.
func (workingDirectoryError *WorkingDirectoryError) Unwrap() error {
	return workingDirectoryError.Cause
}

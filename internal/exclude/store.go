package exclude

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/temirov/localignore/internal/filesystem"
	"github.com/temirov/localignore/internal/gitrepo"
)

const (
	infoDirectoryNameConstant         = "info"
	excludeFileNameConstant           = "exclude"
	commentPrefixConstant             = "#"
	lineTerminatorConstant            = "\n"
	carriageReturnConstant            = "\r"
	slashSeparatorConstant            = "/"
	currentDirectoryConstant          = "."
	infoDirectoryPermissionsConstant  = 0o755
	excludeFilePermissionsConstant    = 0o644
	logMessageEntriesReadConstant     = "exclude file read"
	logMessageEntriesAppendedConstant = "exclude file entries appended"
	logMessageFileClearedConstant     = "exclude file cleared"
	logMessageInvalidLineConstant     = "skipping exclude file line that is not valid UTF-8"
	logFieldPathConstant              = "path"
	logFieldLineNumberConstant        = "line_number"
)

// StoreDependencies supplies collaborators for Store.
type StoreDependencies struct {
	FileSystem filesystem.FileSystem
	Logger     *zap.Logger
}

// Store reads and mutates the exclusion file of a single repository.
type Store struct {
	repository gitrepo.Repository
	fileSystem filesystem.FileSystem
	logger     *zap.Logger
}

// NewStore constructs a Store bound to the provided repository.
func NewStore(repository gitrepo.Repository, dependencies StoreDependencies) *Store {
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		repository: repository,
		fileSystem: filesystem.Resolve(dependencies.FileSystem),
		logger:     logger,
	}
}

// Path returns the absolute path of the exclusion file.
func (store *Store) Path() string {
	return filepath.Join(store.repository.MetadataPath, infoDirectoryNameConstant, excludeFileNameConstant)
}

// Entries yields the non-comment lines of the exclusion file in file order.
// Every iteration re-reads the file from disk, creating it when absent. A
// failure is yielded once together with an empty entry and ends the sequence.
func (store *Store) Entries() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		excludeFile, openError := store.open(os.O_RDONLY | os.O_CREATE)
		if openError != nil {
			yield("", openError)
			return
		}
		defer excludeFile.Close()

		reader := bufio.NewReader(excludeFile)
		lineNumber := 0
		for {
			rawLine, readError := reader.ReadString('\n')
			if len(rawLine) > 0 {
				lineNumber++
				line := trimLineTerminator(rawLine)
				if !utf8.ValidString(line) {
					store.logger.Warn(logMessageInvalidLineConstant, zap.String(logFieldPathConstant, store.Path()), zap.Int(logFieldLineNumberConstant, lineNumber))
				} else if !strings.HasPrefix(line, commentPrefixConstant) {
					if !yield(line, nil) {
						return
					}
				}
			}

			if errors.Is(readError, io.EOF) {
				return
			}
			if readError != nil {
				yield("", &FileError{Operation: FileOperationRead, Path: store.Path(), Cause: readError})
				return
			}
		}
	}
}

// ReadAll collects every non-comment entry of the exclusion file.
func (store *Store) ReadAll() ([]string, error) {
	entries := []string{}
	for entry, entryError := range store.Entries() {
		if entryError != nil {
			return nil, entryError
		}
		entries = append(entries, entry)
	}

	store.logger.Debug(logMessageEntriesReadConstant, zap.String(logFieldPathConstant, store.Path()), zap.Int(logFieldEntryCountConstant, len(entries)))
	return entries, nil
}

// Append writes one line per entry to the end of the exclusion file and returns the lines written.
// Entries are resolved against basePath and stored relative to the repository root when possible.
func (store *Store) Append(basePath string, entries []string) ([]string, error) {
	lines := lo.Map(entries, func(entry string, _ int) string {
		return store.relativeEntry(basePath, entry)
	})

	excludeFile, openError := store.open(os.O_WRONLY | os.O_APPEND | os.O_CREATE)
	if openError != nil {
		return nil, openError
	}

	for _, line := range lines {
		if _, writeError := io.WriteString(excludeFile, line+lineTerminatorConstant); writeError != nil {
			_ = excludeFile.Close()
			return nil, &FileError{Operation: FileOperationWrite, Path: store.Path(), Cause: writeError}
		}
	}

	if closeError := excludeFile.Close(); closeError != nil {
		return nil, &FileError{Operation: FileOperationWrite, Path: store.Path(), Cause: closeError}
	}

	store.logger.Debug(logMessageEntriesAppendedConstant, zap.String(logFieldPathConstant, store.Path()), zap.Int(logFieldEntryCountConstant, len(lines)))
	return lines, nil
}

// Clear truncates the exclusion file to zero length.
func (store *Store) Clear() error {
	excludeFile, openError := store.open(os.O_WRONLY | os.O_TRUNC | os.O_CREATE)
	if openError != nil {
		var fileError *FileError
		if errors.As(openError, &fileError) {
			fileError.Operation = FileOperationTruncate
		}
		return openError
	}

	if closeError := excludeFile.Close(); closeError != nil {
		return &FileError{Operation: FileOperationTruncate, Path: store.Path(), Cause: closeError}
	}

	store.logger.Debug(logMessageFileClearedConstant, zap.String(logFieldPathConstant, store.Path()))
	return nil
}

func (store *Store) open(flags int) (filesystem.File, error) {
	infoDirectoryPath := filepath.Dir(store.Path())
	if mkdirError := store.fileSystem.MkdirAll(infoDirectoryPath, infoDirectoryPermissionsConstant); mkdirError != nil {
		return nil, &FileError{Operation: FileOperationOpen, Path: store.Path(), Cause: mkdirError}
	}

	excludeFile, openError := store.fileSystem.OpenFile(store.Path(), flags, excludeFilePermissionsConstant)
	if openError != nil {
		return nil, &FileError{Operation: FileOperationOpen, Path: store.Path(), Cause: openError}
	}
	return excludeFile, nil
}

func (store *Store) relativeEntry(basePath string, entry string) string {
	absoluteEntry := entry
	if !filepath.IsAbs(entry) {
		absoluteEntry = filepath.Join(basePath, entry)
	}

	relativeEntry, relativeError := filepath.Rel(store.repository.RootPath, absoluteEntry)
	if relativeError != nil {
		return entry
	}

	relativeEntry = filepath.ToSlash(relativeEntry)
	if hasTrailingSeparator(entry) && relativeEntry != currentDirectoryConstant {
		relativeEntry += slashSeparatorConstant
	}
	return relativeEntry
}

func hasTrailingSeparator(entry string) bool {
	return strings.HasSuffix(entry, slashSeparatorConstant) || strings.HasSuffix(entry, string(filepath.Separator))
}

func trimLineTerminator(rawLine string) string {
	line := strings.TrimSuffix(rawLine, lineTerminatorConstant)
	return strings.TrimSuffix(line, carriageReturnConstant)
}

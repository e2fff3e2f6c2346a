package exclude

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/localignore/internal/filesystem"
	"github.com/temirov/localignore/internal/gitrepo"
	"github.com/temirov/localignore/internal/prompt"
	flagutils "github.com/temirov/localignore/internal/utils/flags"
)

const (
	commandUseConstant                   = "git-local-ignore [pattern ...]"
	commandShortDescriptionConstant      = "Locally exclude files from the Git index"
	commandLongDescriptionConstant       = "git-local-ignore manages .git/info/exclude, the repository-local list of ignore patterns that is never committed or shared. Pass patterns to add them, --list to show the current entries, or --clear to remove all entries."
	commandExampleConstant               = "git local-ignore build/ '*.log'\ngit local-ignore --list\ngit local-ignore --clear --force"
	listFlagNameConstant                 = "list"
	listFlagShorthandConstant            = "l"
	listFlagUsageConstant                = "List currently excluded entries"
	clearFlagNameConstant                = "clear"
	clearFlagShorthandConstant           = "c"
	clearFlagUsageConstant               = "Remove every entry from the local exclude file"
	forceFlagNameConstant                = "force"
	forceFlagShorthandConstant           = "f"
	forceFlagUsageConstant               = "Skip confirmation prompts"
	listHeaderConstant                   = "\nEntries in the exclude file:"
	entryLineTemplateConstant            = "  %s\n"
	clearPromptConstant                  = "Reset the local exclude list?"
	clearSuccessMessageConstant          = "Successfully reset the local exclude file"
	addPromptConstant                    = "Continue?"
	addSummaryTemplateConstant           = "Inserting %d entries into the exclude file.\n"
	addGlobHintConstant                  = "Hint: if you want to insert glob patterns with wildcard characters (*, ?, ...) into the exclude file as is, escape them with backslash '\\'."
	addSuccessMessageConstant            = "Successfully inserted entries into the exclude file:"
	listFailureTemplateConstant          = "could not load entries from the exclude file: %w"
	clearFailureTemplateConstant         = "unable to reset the local exclude file: %w"
	addFailureTemplateConstant           = "writing entries into the exclude file failed: %w"
	confirmationFailureTemplateConstant  = "unable to read confirmation: %w"
	logMessageRepositoryLocatedConstant  = "repository located"
	logMessageModeSelectedConstant       = "exclude mode selected"
	logMessageOperationDeclinedConstant  = "operation declined at confirmation prompt"
	logMessageEntriesListedConstant      = "exclude entries listed"
	logMessageEntriesAddedConstant       = "exclude entries added"
	logMessageExcludeFileClearedConstant = "exclude file cleared"
	logFieldModeConstant                 = "mode"
	logFieldWorkingDirectoryConstant     = "working_directory"
	logFieldRepositoryRootConstant       = "repository_root"
	logFieldExcludeFileConstant          = "exclude_file"
	logFieldEntryCountConstant           = "entry_count"
	logFieldEntriesConstant              = "entries"
)

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// RepositoryLocator finds the repository enclosing a directory.
type RepositoryLocator interface {
	Locate(startingDirectory string) (gitrepo.Repository, error)
}

// WorkingDirectoryProvider resolves the directory used for discovery and relative entries.
type WorkingDirectoryProvider func() (string, error)

// PrompterFactory creates confirmation prompters scoped to a Cobra command.
type PrompterFactory func(*cobra.Command) prompt.ConfirmationPrompter

// CommandBuilder assembles the exclude command.
type CommandBuilder struct {
	LoggerProvider           LoggerProvider
	ConfigurationProvider    func() CommandConfiguration
	LocatorProvider          func() RepositoryLocator
	WorkingDirectoryProvider WorkingDirectoryProvider
	PrompterFactory          PrompterFactory
	FileSystem               filesystem.FileSystem
}

type commandOptions struct {
	mode      Mode
	entries   []string
	assumeYes bool
}

// Build constructs the exclude command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		Example:       commandExampleConstant,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          builder.run,
	}

	command.Flags().BoolP(listFlagNameConstant, listFlagShorthandConstant, false, listFlagUsageConstant)
	command.Flags().BoolP(clearFlagNameConstant, clearFlagShorthandConstant, false, clearFlagUsageConstant)
	flagutils.AddToggleFlag(command.Flags(), nil, forceFlagNameConstant, forceFlagShorthandConstant, false, forceFlagUsageConstant)
	command.MarkFlagsMutuallyExclusive(listFlagNameConstant, clearFlagNameConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	options, optionsError := builder.parseOptions(command, arguments)
	if optionsError != nil {
		if errors.Is(optionsError, ErrNoEntriesProvided) {
			_ = command.Help()
		}
		return optionsError
	}

	logger := builder.resolveLogger()
	logger.Debug(logMessageModeSelectedConstant, zap.String(logFieldModeConstant, string(options.mode)), zap.Strings(logFieldEntriesConstant, options.entries))

	workingDirectory, workingDirectoryError := builder.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return &WorkingDirectoryError{Cause: workingDirectoryError}
	}

	repository, locateError := builder.resolveLocator().Locate(workingDirectory)
	if locateError != nil {
		return locateError
	}
	logger.Debug(
		logMessageRepositoryLocatedConstant,
		zap.String(logFieldWorkingDirectoryConstant, workingDirectory),
		zap.String(logFieldRepositoryRootConstant, repository.RootPath),
	)

	store := NewStore(repository, StoreDependencies{FileSystem: builder.FileSystem, Logger: logger})
	output := command.OutOrStdout()

	switch options.mode {
	case ModeList:
		return builder.listEntries(store, output, logger)
	case ModeClear:
		return builder.clearEntries(command, store, options, output, logger)
	default:
		return builder.addEntries(command, store, workingDirectory, options, output, logger)
	}
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, arguments []string) (commandOptions, error) {
	listRequested, _ := command.Flags().GetBool(listFlagNameConstant)
	clearRequested, _ := command.Flags().GetBool(clearFlagNameConstant)

	entries := lo.Filter(arguments, func(argument string, _ int) bool {
		return len(strings.TrimSpace(argument)) > 0
	})

	mode, modeError := ResolveMode(listRequested, clearRequested, entries)
	if modeError != nil {
		return commandOptions{}, modeError
	}

	assumeYes := builder.resolveConfiguration().AssumeYes
	if command.Flags().Changed(forceFlagNameConstant) {
		assumeYes, _ = command.Flags().GetBool(forceFlagNameConstant)
	}

	return commandOptions{mode: mode, entries: entries, assumeYes: assumeYes}, nil
}

func (builder *CommandBuilder) listEntries(store *Store, output io.Writer, logger *zap.Logger) error {
	entries, readError := store.ReadAll()
	if readError != nil {
		return fmt.Errorf(listFailureTemplateConstant, readError)
	}

	fmt.Fprintln(output, listHeaderConstant)
	for _, entry := range entries {
		fmt.Fprintf(output, entryLineTemplateConstant, entry)
	}

	logger.Info(logMessageEntriesListedConstant, zap.String(logFieldExcludeFileConstant, store.Path()), zap.Int(logFieldEntryCountConstant, len(entries)))
	return nil
}

func (builder *CommandBuilder) clearEntries(command *cobra.Command, store *Store, options commandOptions, output io.Writer, logger *zap.Logger) error {
	confirmed, confirmError := builder.resolvePrompter(command, options.assumeYes).Confirm(clearPromptConstant)
	if confirmError != nil {
		return fmt.Errorf(confirmationFailureTemplateConstant, confirmError)
	}
	if !confirmed {
		logger.Info(logMessageOperationDeclinedConstant, zap.String(logFieldModeConstant, string(options.mode)))
		return nil
	}

	if clearError := store.Clear(); clearError != nil {
		return fmt.Errorf(clearFailureTemplateConstant, clearError)
	}

	fmt.Fprintln(output, clearSuccessMessageConstant)
	logger.Info(logMessageExcludeFileClearedConstant, zap.String(logFieldExcludeFileConstant, store.Path()))
	return nil
}

func (builder *CommandBuilder) addEntries(command *cobra.Command, store *Store, workingDirectory string, options commandOptions, output io.Writer, logger *zap.Logger) error {
	if len(options.entries) > 1 {
		if !options.assumeYes {
			fmt.Fprintf(output, addSummaryTemplateConstant, len(options.entries))
			fmt.Fprintln(output, addGlobHintConstant)
		}

		confirmed, confirmError := builder.resolvePrompter(command, options.assumeYes).Confirm(addPromptConstant)
		if confirmError != nil {
			return fmt.Errorf(confirmationFailureTemplateConstant, confirmError)
		}
		if !confirmed {
			logger.Info(logMessageOperationDeclinedConstant, zap.String(logFieldModeConstant, string(options.mode)))
			return nil
		}
	}

	writtenLines, appendError := store.Append(workingDirectory, options.entries)
	if appendError != nil {
		return fmt.Errorf(addFailureTemplateConstant, appendError)
	}

	fmt.Fprintln(output, addSuccessMessageConstant)
	for _, line := range writtenLines {
		fmt.Fprintf(output, entryLineTemplateConstant, line)
	}

	logger.Info(logMessageEntriesAddedConstant, zap.String(logFieldExcludeFileConstant, store.Path()), zap.Strings(logFieldEntriesConstant, writtenLines))
	return nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveLocator() RepositoryLocator {
	if builder.LocatorProvider != nil {
		if locator := builder.LocatorProvider(); locator != nil {
			return locator
		}
	}
	return gitrepo.NewLocator(builder.FileSystem, nil)
}

func (builder *CommandBuilder) resolveWorkingDirectory() (string, error) {
	if builder.WorkingDirectoryProvider == nil {
		return os.Getwd()
	}
	return builder.WorkingDirectoryProvider()
}

func (builder *CommandBuilder) resolvePrompter(command *cobra.Command, assumeYes bool) prompt.ConfirmationPrompter {
	if assumeYes {
		return prompt.AssumeYesPrompter{}
	}
	if builder.PrompterFactory != nil {
		if prompter := builder.PrompterFactory(command); prompter != nil {
			return prompter
		}
	}
	return prompt.NewIOConfirmationPrompter(command.InOrStdin(), command.OutOrStdout())
}

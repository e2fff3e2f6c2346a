package prompt

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"golang.org/x/term"
)

const (
	promptSuffixConstant             = " [y/N]: "
	nonInteractiveNoticeConstant     = "\nInput is not a terminal; use --force to skip confirmation.\n"
	affirmativeShortResponseConstant = "y"
	affirmativeLongResponseConstant  = "yes"
)

// ConfirmationPrompter collects user confirmations prior to mutating actions.
type ConfirmationPrompter interface {
	Confirm(prompt string) (bool, error)
}

// TerminalDetector reports whether a file descriptor is attached to an interactive terminal.
type TerminalDetector func(fileDescriptor int) bool

type fileDescriptorProvider interface {
	Fd() uintptr
}

// IOConfirmationPrompter reads confirmation responses from an io.Reader.
type IOConfirmationPrompter struct {
	input            io.Reader
	reader           *bufio.Reader
	writer           io.Writer
	terminalDetector TerminalDetector
}

// NewIOConfirmationPrompter constructs a prompter from the provided reader and writer.
func NewIOConfirmationPrompter(input io.Reader, output io.Writer) *IOConfirmationPrompter {
	return NewIOConfirmationPrompterWithDetector(input, output, term.IsTerminal)
}

// NewIOConfirmationPrompterWithDetector constructs a prompter using a custom terminal detector.
func NewIOConfirmationPrompterWithDetector(input io.Reader, output io.Writer, detector TerminalDetector) *IOConfirmationPrompter {
	if detector == nil {
		detector = term.IsTerminal
	}
	return &IOConfirmationPrompter{
		input:            input,
		reader:           bufio.NewReader(input),
		writer:           output,
		terminalDetector: detector,
	}
}

// Confirm writes the prompt and interprets affirmative responses (y/yes).
// Operating system files that are not terminals are declined without reading.
func (prompter *IOConfirmationPrompter) Confirm(prompt string) (bool, error) {
	if prompter.writer != nil {
		if _, writeError := io.WriteString(prompter.writer, prompt+promptSuffixConstant); writeError != nil {
			return false, writeError
		}
	}

	if !prompter.interactive() {
		if prompter.writer != nil {
			if _, writeError := io.WriteString(prompter.writer, nonInteractiveNoticeConstant); writeError != nil {
				return false, writeError
			}
		}
		return false, nil
	}

	response, readError := prompter.reader.ReadString('\n')
	if readError != nil && !errors.Is(readError, io.EOF) {
		return false, readError
	}

	trimmedResponse := strings.TrimSpace(strings.ToLower(response))
	switch trimmedResponse {
	case affirmativeShortResponseConstant, affirmativeLongResponseConstant:
		return true, nil
	default:
		return false, nil
	}
}

func (prompter *IOConfirmationPrompter) interactive() bool {
	descriptorSource, hasDescriptor := prompter.input.(fileDescriptorProvider)
	if !hasDescriptor {
		return true
	}
	return prompter.terminalDetector(int(descriptorSource.Fd()))
}

// AssumeYesPrompter confirms every prompt without interaction.
type AssumeYesPrompter struct{}

// Confirm always returns true.
func (AssumeYesPrompter) Confirm(string) (bool, error) {
	return true, nil
}

package cli

import (
	"errors"
	"fmt"
	"io"

	platformerrors "github.com/jmgilman/go/errors"
)

var (
	ErrNoCommand         = platformerrors.New(platformerrors.CodeInvalidInput, "Please enter a command.")
	ErrUnknownCommand    = platformerrors.New(platformerrors.CodeInvalidInput, "No command with that name exists.")
	ErrIncorrectOperands = platformerrors.New(platformerrors.CodeInvalidInput, "Incorrect operands.")
)

func usageError(err error) error {
	return fmt.Errorf("%w: %v", ErrIncorrectOperands, err)
}

// report prints err and returns the process exit code. Reported failures
// exit 0; only faults that are not gitlet errors exit non-zero.
func report(err error, stdout, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var perr platformerrors.PlatformError
	if errors.As(err, &perr) && !isFault(perr.Code()) {
		fmt.Fprintln(stdout, perr.Message())
		return 0
	}
	fmt.Fprintf(stderr, "gitlet: %v\n", err)
	return 1
}

func isFault(code platformerrors.ErrorCode) bool {
	return code == platformerrors.CodeInternal || code == platformerrors.CodeUnknown
}

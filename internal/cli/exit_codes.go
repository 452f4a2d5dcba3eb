package cli

import (
	"context"
	"errors"

	clierrors "github.com/defai-digital/AutomatosX-sub001/internal/errors"
	"github.com/defai-digital/AutomatosX-sub001/internal/scheduler"
)

// Exit codes for the atx CLI
// These codes support programmatic composition and CI/CD integration
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitRunFailed indicates one or more tasks failed during a run
	ExitRunFailed = 1

	// ExitValidationFailed indicates workflow validation failed
	ExitValidationFailed = 2

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 3

	// ExitConfigError indicates broken configuration or a missing prerequisite
	ExitConfigError = 4

	// ExitInterrupted indicates the process stopped on SIGINT or SIGTERM
	ExitInterrupted = 130
)

// ExitCodeFor maps an error returned by Execute to a process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}

	var aborted *scheduler.LevelAbortedError
	if errors.As(err, &aborted) {
		return ExitRunFailed
	}

	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		switch cliErr.Category {
		case clierrors.Argument:
			return ExitInvalidArguments
		case clierrors.Validation:
			return ExitValidationFailed
		case clierrors.Configuration, clierrors.Prerequisite:
			return ExitConfigError
		}
		return ExitRunFailed
	}

	return ExitRunFailed
}

// Command numlockd keeps NumLock (or another toggle key) in a fixed state on
// the interactive desktop and shows a notification-area icon to pause or
// exit it.
package main

import (
	"errors"
	"fmt"
	"os"

	"numlockd/internal/autostart"
	"numlockd/internal/config"
	"numlockd/internal/session"
	"numlockd/internal/tray"
)

// Process exit codes. The non-trivial values are the Win32 error codes the
// agent has always exited with, so existing deployment scripts keep working.
const (
	exitOK                = 0
	exitFailure           = 1
	exitSessionQuery      = 5    // ERROR_ACCESS_DENIED
	exitMutexFailed       = 6    // ERROR_INVALID_HANDLE
	exitNotInteractive    = 10   // ERROR_BAD_ENVIRONMENT
	exitInvalidConfig     = 13   // ERROR_INVALID_DATA
	exitAlreadyRunning    = 32   // ERROR_SHARING_VIOLATION
	exitWindowSetupFailed = 1400 // ERROR_INVALID_WINDOW_HANDLE
)

var (
	errConfig  = errors.New("configuration error")
	errCrashed = errors.New("agent crashed")
)

// exitError carries a non-zero WM_QUIT code out of the event loop.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("event loop exited with code %d", e.code)
}

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "numlockd: %v\n", err)
	}
	os.Exit(exitCode(err))
}

// exitCode maps an error returned by a command to the process exit code.
func exitCode(err error) int {
	var acq *session.AcquisitionError
	var exit *exitError

	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &exit):
		return exit.code
	case errors.Is(err, session.ErrUnsupported),
		errors.Is(err, tray.ErrUnsupported),
		errors.Is(err, autostart.ErrUnsupported):
		return exitFailure
	case errors.Is(err, errConfig), errors.Is(err, config.ErrInvalidConfig):
		return exitInvalidConfig
	case errors.Is(err, session.ErrSessionQuery):
		return exitSessionQuery
	case errors.As(err, &acq):
		return exitMutexFailed
	case errors.Is(err, session.ErrNotInteractiveSession):
		return exitNotInteractive
	case errors.Is(err, session.ErrAlreadyRunning):
		return exitAlreadyRunning
	case errors.Is(err, tray.ErrSetup):
		return exitWindowSetupFailed
	default:
		return exitFailure
	}
}

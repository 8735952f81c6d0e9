// Package session gates agent startup: the process must belong to the active
// console session and must be the only holder of a named machine-global
// mutex.
package session

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrSessionQuery          = errors.New("session: cannot query session id")
	ErrNotInteractiveSession = errors.New("session: not the active console session")
	ErrAlreadyRunning        = errors.New("session: another instance is already running")
	ErrUnsupported           = errors.New("session: unsupported platform")
)

// AcquisitionError reports that the named mutex could not be created at all.
type AcquisitionError struct {
	Name string
	Err  error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("session: acquire mutex %q: %v", e.Name, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// Mutex is an open handle to a named mutex.
type Mutex interface {
	Close() error
}

// Platform is the operating system surface the guard needs.
type Platform interface {
	// ProcessSessionID returns the session the current process runs in.
	ProcessSessionID() (uint32, error)

	// ActiveConsoleSessionID returns the session attached to the physical
	// console.
	ActiveConsoleSessionID() uint32

	// CreateMutex creates or opens the named mutex with initial ownership.
	// existed reports that the object was already present; the returned
	// handle is valid in that case too.
	CreateMutex(name string) (m Mutex, existed bool, err error)
}

// Instance is the running agent's claim on its session and mutex.
// The mutex handle stays open for the life of the process and is released
// by the operating system at exit.
type Instance struct {
	SessionID uint32
	MutexName string

	mutex Mutex
}

// Guard performs the single-instance startup check.
type Guard struct {
	platform  Platform
	mutexName string
	logger    *slog.Logger
}

// NewGuard returns a guard that claims mutexName through platform.
func NewGuard(platform Platform, mutexName string, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default().With("component", "session")
	}
	return &Guard{
		platform:  platform,
		mutexName: mutexName,
		logger:    logger,
	}
}

// TryAcquire checks that the process runs in the active console session and
// claims the named mutex. It makes one attempt and never retries.
//
// The mutex is not touched when the session check fails.
func (g *Guard) TryAcquire() (*Instance, error) {
	sessionID, err := g.platform.ProcessSessionID()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionQuery, err)
	}

	console := g.platform.ActiveConsoleSessionID()
	if sessionID != console {
		g.logger.Debug("not the console session",
			"session_id", sessionID,
			"console_session_id", console)
		return nil, ErrNotInteractiveSession
	}

	m, existed, err := g.platform.CreateMutex(g.mutexName)
	if err != nil {
		return nil, &AcquisitionError{Name: g.mutexName, Err: err}
	}
	if existed {
		if cerr := m.Close(); cerr != nil {
			g.logger.Warn("close duplicate mutex handle", "error", cerr)
		}
		return nil, ErrAlreadyRunning
	}

	g.logger.Info("instance acquired", "session_id", sessionID, "mutex", g.mutexName)
	return &Instance{
		SessionID: sessionID,
		MutexName: g.mutexName,
		mutex:     m,
	}, nil
}

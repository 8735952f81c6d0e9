//go:build windows

package session

import (
	"errors"

	"golang.org/x/sys/windows"
)

type windowsPlatform struct{}

// NewPlatform returns the Win32 implementation of Platform.
func NewPlatform() Platform {
	return windowsPlatform{}
}

func (windowsPlatform) ProcessSessionID() (uint32, error) {
	var id uint32
	if err := windows.ProcessIdToSessionId(windows.GetCurrentProcessId(), &id); err != nil {
		return 0, err
	}
	return id, nil
}

// ActiveConsoleSessionID returns 0xFFFFFFFF while no session is attached to
// the console, which never matches a process session.
func (windowsPlatform) ActiveConsoleSessionID() uint32 {
	return windows.WTSGetActiveConsoleSessionId()
}

func (windowsPlatform) CreateMutex(name string) (Mutex, bool, error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, false, err
	}

	h, err := windows.CreateMutex(nil, true, namePtr)
	if h == 0 {
		return nil, false, err
	}
	return mutexHandle(h), errors.Is(err, windows.ERROR_ALREADY_EXISTS), nil
}

type mutexHandle windows.Handle

func (h mutexHandle) Close() error {
	return windows.CloseHandle(windows.Handle(h))
}

//go:build windows

package autostart

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// Enable points the Run value at exePath with args, replacing any previous
// registration.
func Enable(exePath string, args ...string) error {
	k, _, err := registry.CreateKey(registry.CURRENT_USER, RunKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open run key: %w", err)
	}
	defer k.Close()

	if err := k.SetStringValue(ValueName, CommandLine(exePath, args...)); err != nil {
		return fmt.Errorf("set run value: %w", err)
	}
	return nil
}

// Disable removes the Run value. Removing a missing value is not an error.
func Disable() error {
	k, err := registry.OpenKey(registry.CURRENT_USER, RunKey, registry.SET_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open run key: %w", err)
	}
	defer k.Close()

	if err := k.DeleteValue(ValueName); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("delete run value: %w", err)
	}
	return nil
}

// Query reports whether the Run value exists and what it launches.
func Query() (Status, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, RunKey, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return Status{}, nil
		}
		return Status{}, fmt.Errorf("open run key: %w", err)
	}
	defer k.Close()

	cmd, _, err := k.GetStringValue(ValueName)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return Status{}, nil
		}
		return Status{}, fmt.Errorf("read run value: %w", err)
	}
	return Status{Enabled: true, Command: cmd}, nil
}

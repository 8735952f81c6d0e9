//go:build !windows

package autostart

// Enable is only available on Windows.
func Enable(exePath string, args ...string) error {
	return ErrUnsupported
}

// Disable is only available on Windows.
func Disable() error {
	return ErrUnsupported
}

// Query is only available on Windows.
func Query() (Status, error) {
	return Status{}, ErrUnsupported
}

//go:build !windows

package tray

// Run is only available on Windows.
func Run(opts Options) (int, error) {
	return 1, ErrUnsupported
}

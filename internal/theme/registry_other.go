//go:build !windows

package theme

func readSystemUsesLightTheme() (uint64, error) {
	return 0, ErrUnsupported
}

//go:build windows

package theme

import (
	"golang.org/x/sys/windows/registry"
)

const (
	personalizeKey  = `Software\Microsoft\Windows\CurrentVersion\Themes\Personalize`
	lightThemeValue = "SystemUsesLightTheme"
)

func readSystemUsesLightTheme() (uint64, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, personalizeKey, registry.QUERY_VALUE)
	if err != nil {
		return 0, err
	}
	defer k.Close()

	v, _, err := k.GetIntegerValue(lightThemeValue)
	if err != nil {
		return 0, err
	}
	return v, nil
}

package tray

import (
	"fmt"

	"numlockd/internal/theme"
	"numlockd/internal/tray/assets"
)

// IconPaths extracts the embedded icons into cacheDir and returns the file
// to load per theme. Non-empty overrides replace the embedded file for
// their theme.
func IconPaths(cacheDir, lightOverride, darkOverride string) (map[theme.Theme]string, error) {
	extracted, err := assets.Extract(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("extract icons: %w", err)
	}

	paths := map[theme.Theme]string{
		theme.Light: extracted[theme.Light.Key()],
		theme.Dark:  extracted[theme.Dark.Key()],
	}
	if lightOverride != "" {
		paths[theme.Light] = lightOverride
	}
	if darkOverride != "" {
		paths[theme.Dark] = darkOverride
	}
	return paths, nil
}

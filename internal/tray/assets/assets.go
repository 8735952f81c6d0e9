// Package assets embeds the notification icons, one per theme key.
package assets

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed light.ico dark.ico
var files embed.FS

// Keys lists the embedded icon keys.
var Keys = []string{"light", "dark"}

// ErrUnknownIcon is returned for keys without an embedded icon.
var ErrUnknownIcon = errors.New("assets: unknown icon")

// Icon returns the .ico bytes for key.
func Icon(key string) ([]byte, error) {
	data, err := files.ReadFile(key + ".ico")
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIcon, key)
	}
	return data, nil
}

// Extract writes every embedded icon into dir and returns the file path per
// key. Files already holding the right bytes are left untouched.
func Extract(dir string) (map[string]string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create icon dir: %w", err)
	}

	paths := make(map[string]string, len(Keys))
	for _, key := range Keys {
		data, err := Icon(key)
		if err != nil {
			return nil, err
		}

		path := filepath.Join(dir, "numlockd-"+key+".ico")
		if existing, err := os.ReadFile(path); err != nil || !bytes.Equal(existing, data) {
			if err := os.WriteFile(path, data, 0600); err != nil {
				return nil, fmt.Errorf("write %s icon: %w", key, err)
			}
		}
		paths[key] = path
	}
	return paths, nil
}

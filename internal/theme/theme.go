// Package theme reports whether the desktop uses the light or dark color
// scheme.
package theme

import (
	"errors"
	"log/slog"
)

// ColorSetChange is the setting-change payload broadcast when the user
// switches color scheme.
const ColorSetChange = "ImmersiveColorSet"

// ErrUnsupported is returned by the preference reader on platforms without
// a color scheme preference.
var ErrUnsupported = errors.New("theme: unsupported platform")

// Theme is a desktop color scheme.
type Theme int

const (
	Light Theme = iota
	Dark
)

// FromLight maps the light-theme flag to a Theme.
func FromLight(isLight bool) Theme {
	if isLight {
		return Light
	}
	return Dark
}

// Key returns the asset key for t: "light" or "dark".
func (t Theme) Key() string {
	if t == Dark {
		return "dark"
	}
	return "light"
}

func (t Theme) String() string {
	return t.Key()
}

// IsColorSchemeChange reports whether a setting-change payload announces a
// color scheme switch.
func IsColorSchemeChange(payload string) bool {
	return payload == ColorSetChange
}

// Probe reads the light-theme preference on demand.
type Probe struct {
	read   func() (uint64, error)
	logger *slog.Logger
}

// NewProbe returns a probe over the platform preference store.
func NewProbe(logger *slog.Logger) *Probe {
	if logger == nil {
		logger = slog.Default().With("component", "theme")
	}
	return &Probe{
		read:   readSystemUsesLightTheme,
		logger: logger,
	}
}

// IsLightTheme reports whether apps should use the light scheme. Any read
// failure yields true.
func (p *Probe) IsLightTheme() bool {
	v, err := p.read()
	if err != nil {
		p.logger.Debug("theme preference unavailable, assuming light", "error", err)
		return true
	}
	return v != 0
}

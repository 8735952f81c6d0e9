package tray

import (
	"log/slog"

	"numlockd/internal/theme"
)

// Options configures Run.
type Options struct {
	// Title is the tooltip and the disabled first menu entry.
	Title string

	// IconPaths maps each theme to the .ico file loaded for it.
	IconPaths map[theme.Theme]string

	Enforcer Enforcer
	Theme    ThemeProbe
	Logger   *slog.Logger
}

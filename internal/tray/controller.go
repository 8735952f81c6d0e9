// Package tray owns the notification-area icon: its menu, the monitoring
// toggle, the light/dark icon swap and the enforcement timer.
//
// Controller is a single-threaded state machine driven by Handle. The
// Windows event loop feeds it from the message pump; tests feed it directly.
package tray

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"numlockd/internal/theme"
)

// Menu item identifiers.
const (
	CmdToggle uint16 = 1002
	CmdExit   uint16 = 1003
	CmdTitle  uint16 = 1004
)

// TickInterval is the enforcement period.
const TickInterval = time.Second

var (
	// ErrSetup wraps every startup failure of the icon or its window.
	ErrSetup = errors.New("tray: setup failed")

	ErrAlreadyStarted = errors.New("tray: controller already started")
	ErrUnsupported    = errors.New("tray: unsupported platform")
)

// State is the controller lifecycle state.
type State int

const (
	Uninitialized State = iota
	Active
	ShuttingDown
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Active:
		return "active"
	case ShuttingDown:
		return "shutting-down"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Icon is a loaded icon asset. Release frees it and must be safe to call
// more than once.
type Icon interface {
	Handle() uintptr
	Release() error
}

// IconSource loads the icon asset for a theme.
type IconSource interface {
	Load(t theme.Theme) (Icon, error)
}

// MenuItem is one context menu entry.
type MenuItem struct {
	ID        uint16
	Label     string
	Disabled  bool
	Separator bool
	Checked   bool
}

// Shell is the notification area and the window that owns the icon.
type Shell interface {
	AddIcon(icon Icon, tooltip string) error
	ModifyIcon(icon Icon) error
	RemoveIcon() error

	SetMenu(items []MenuItem) error
	SetChecked(id uint16, checked bool) error
	// ShowMenu brings the owning window to the foreground and tracks the
	// menu at the pointer.
	ShowMenu() error

	StartTimer(period time.Duration) error
	StopTimer() error

	// Quit asks the event loop to stop with code.
	Quit(code int)
}

// Enforcer runs one lock-state correction pass.
type Enforcer interface {
	Enforce() bool
}

// ThemeProbe reports the current color scheme preference.
type ThemeProbe interface {
	IsLightTheme() bool
}

// Config configures a Controller.
type Config struct {
	// Title is the tooltip and the disabled first menu entry.
	Title string

	Shell    Shell
	Icons    IconSource
	Enforcer Enforcer
	Theme    ThemeProbe
	Logger   *slog.Logger
}

// Controller is the notification icon state machine. It is not safe for
// concurrent use.
type Controller struct {
	shell    Shell
	icons    IconSource
	enforcer Enforcer
	probe    ThemeProbe
	logger   *slog.Logger
	title    string

	state   State
	enabled bool
	isLight bool
	icon    iconSlot
}

// NewController returns an Uninitialized controller with monitoring enabled.
func NewController(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().With("component", "tray")
	}
	return &Controller{
		shell:    cfg.Shell,
		icons:    cfg.Icons,
		enforcer: cfg.Enforcer,
		probe:    cfg.Theme,
		logger:   logger,
		title:    cfg.Title,
		enabled:  true,
	}
}

// State returns the lifecycle state.
func (c *Controller) State() State { return c.state }

// Enabled reports whether monitoring is on.
func (c *Controller) Enabled() bool { return c.enabled }

// IsLight returns the cached theme snapshot.
func (c *Controller) IsLight() bool { return c.isLight }

func (c *Controller) menu() []MenuItem {
	return []MenuItem{
		{ID: CmdTitle, Label: c.title, Disabled: true},
		{Separator: true},
		{ID: CmdToggle, Label: "Enabled", Checked: c.enabled},
		{ID: CmdExit, Label: "Exit"},
	}
}

// Start seeds the theme snapshot, registers the icon, builds the menu and
// starts the timer. On failure everything acquired so far is released and
// the error wraps ErrSetup.
func (c *Controller) Start() error {
	if c.state != Uninitialized {
		return ErrAlreadyStarted
	}

	c.isLight = c.probe.IsLightTheme()
	current := theme.FromLight(c.isLight)

	icon, err := c.icons.Load(current)
	if err != nil {
		return fmt.Errorf("%w: load %s icon: %w", ErrSetup, current, err)
	}
	c.icon.Set(icon)

	if err := c.shell.AddIcon(icon, c.title); err != nil {
		c.releaseIcon()
		return fmt.Errorf("%w: add icon: %w", ErrSetup, err)
	}
	if err := c.shell.SetMenu(c.menu()); err != nil {
		c.removeIcon()
		c.releaseIcon()
		return fmt.Errorf("%w: build menu: %w", ErrSetup, err)
	}
	if err := c.shell.StartTimer(TickInterval); err != nil {
		c.removeIcon()
		c.releaseIcon()
		return fmt.Errorf("%w: start timer: %w", ErrSetup, err)
	}

	c.state = Active
	c.logger.Info("tray active", "theme", current.Key(), "tick", TickInterval)
	return nil
}

// Handle applies one event. Events outside the Active state are ignored.
func (c *Controller) Handle(ev Event) {
	if c.state != Active {
		c.logger.Debug("event ignored", "event", ev.Kind, "state", c.state)
		return
	}

	switch ev.Kind {
	case EventTimer:
		if c.enabled {
			c.enforcer.Enforce()
		}
	case EventClick:
		c.showMenu()
	case EventCommand:
		c.command(ev.Command)
	case EventSettingChange:
		if theme.IsColorSchemeChange(ev.Setting) {
			c.refreshTheme()
		}
	case EventShellRestart:
		c.reregister()
	case EventDestroy:
		c.shutdown(true)
	default:
		c.logger.Debug("unknown event", "event", ev.Kind)
	}
}

// Close removes the icon and releases the asset if the controller is still
// Active, without asking the event loop to quit. It makes the icon removal
// hold on every exit path out of the loop.
func (c *Controller) Close() {
	if c.state == Active {
		c.shutdown(false)
	}
}

func (c *Controller) showMenu() {
	if err := c.shell.SetChecked(CmdToggle, c.enabled); err != nil {
		c.logger.Warn("refresh toggle state", "error", err)
	}
	if err := c.shell.ShowMenu(); err != nil {
		c.logger.Warn("show menu", "error", err)
	}
}

func (c *Controller) command(id uint16) {
	switch id {
	case CmdToggle:
		c.enabled = !c.enabled
		c.logger.Info("monitoring toggled", "enabled", c.enabled)
	case CmdExit:
		c.logger.Info("exit selected")
		c.shutdown(true)
	default:
		c.logger.Debug("unknown menu command", "id", id)
	}
}

// refreshTheme swaps the icon when the color scheme flipped. The snapshot
// and the installed icon change together, and only once the new asset has
// loaded.
func (c *Controller) refreshTheme() {
	isLight := c.probe.IsLightTheme()
	if isLight == c.isLight {
		return
	}

	next := theme.FromLight(isLight)
	icon, err := c.icons.Load(next)
	if err != nil {
		c.logger.Debug("keep current icon, load failed", "theme", next.Key(), "error", err)
		return
	}

	if err := c.icon.Replace(icon); err != nil {
		c.logger.Debug("release previous icon", "error", err)
	}
	if err := c.shell.ModifyIcon(icon); err != nil {
		c.logger.Warn("install icon", "theme", next.Key(), "error", err)
	}
	c.isLight = isLight
	c.logger.Info("theme changed", "theme", next.Key())
}

func (c *Controller) reregister() {
	icon := c.icon.Get()
	if icon == nil {
		return
	}
	if err := c.shell.AddIcon(icon, c.title); err != nil {
		c.logger.Warn("re-add icon after shell restart", "error", err)
		return
	}
	c.logger.Info("icon restored after shell restart")
}

func (c *Controller) shutdown(quit bool) {
	c.state = ShuttingDown

	if err := c.shell.StopTimer(); err != nil {
		c.logger.Debug("stop timer", "error", err)
	}
	c.removeIcon()
	c.releaseIcon()
	c.logger.Info("tray shut down")

	if quit {
		c.shell.Quit(0)
	}
}

func (c *Controller) removeIcon() {
	if err := c.shell.RemoveIcon(); err != nil {
		c.logger.Warn("remove icon", "error", err)
	}
}

func (c *Controller) releaseIcon() {
	if err := c.icon.Release(); err != nil {
		c.logger.Debug("release icon", "error", err)
	}
}

// Package config handles configuration loading, validation, and management for numlockd.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"numlockd/internal/logging"
)

// Version is the current configuration schema version.
const Version = 1

// DefaultMutexName is the machine-global lock that keeps one agent per machine.
const DefaultMutexName = `Global\NumLockMonitorMutex`

// Desired key states.
const (
	StateOn  = "on"
	StateOff = "off"
)

// Config holds the complete agent configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Key selects the lock key to enforce and its desired state.
	Key KeyConfig `toml:"key" json:"key" yaml:"key"`

	// Instance configuration for single-instance enforcement.
	Instance InstanceConfig `toml:"instance" json:"instance" yaml:"instance"`

	// Tray configuration for the notification-area icon.
	Tray TrayConfig `toml:"tray" json:"tray" yaml:"tray"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	mu sync.RWMutex `toml:"-" json:"-" yaml:"-"`
}

// KeyConfig holds the enforced key.
type KeyConfig struct {
	// Name is the key: "numlock", "capslock" or "scrolllock".
	Name string `toml:"name" json:"name" yaml:"name"`

	// State is the desired toggle state: "on" or "off".
	State string `toml:"state" json:"state" yaml:"state"`
}

// DesiredOn reports whether the key should be held in the "on" state.
func (k KeyConfig) DesiredOn() bool {
	return !strings.EqualFold(k.State, StateOff)
}

// InstanceConfig holds single-instance configuration.
type InstanceConfig struct {
	// MutexName is the name of the machine-global mutex.
	MutexName string `toml:"mutex_name" json:"mutex_name" yaml:"mutex_name"`
}

// TrayConfig holds notification icon configuration.
type TrayConfig struct {
	// Title is the tooltip and the disabled first menu entry.
	Title string `toml:"title" json:"title" yaml:"title"`

	// LightIcon optionally replaces the embedded light-theme icon.
	LightIcon string `toml:"light_icon" json:"light_icon" yaml:"light_icon"`

	// DarkIcon optionally replaces the embedded dark-theme icon.
	DarkIcon string `toml:"dark_icon" json:"dark_icon" yaml:"dark_icon"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the log format: "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is the log output: "stdout", "stderr", "file" or "both".
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the path to the log file (when Output is "file" or "both").
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`

	// MaxSizeMB is the maximum log file size before rotation.
	MaxSizeMB int `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups is the number of old log files to keep.
	MaxBackups int `toml:"max_backups" json:"max_backups" yaml:"max_backups"`

	// MaxAgeDays is the maximum age of log files in days.
	MaxAgeDays int `toml:"max_age_days" json:"max_age_days" yaml:"max_age_days"`

	// Compress determines whether to compress rotated logs.
	Compress bool `toml:"compress" json:"compress" yaml:"compress"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: Version,
		Key: KeyConfig{
			Name:  "numlock",
			State: StateOn,
		},
		Instance: InstanceConfig{
			MutexName: DefaultMutexName,
		},
		Tray: TrayConfig{
			Title: "Numlock Monitor",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "file",
			FilePath:   filepath.Join(PlatformLogDir(), "numlockd.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
			Compress:   true,
		},
	}
}

// DataDir returns the base numlockd directory.
// NUMLOCKD_DATA_DIR overrides the platform default.
func DataDir() string {
	if envDir := os.Getenv("NUMLOCKD_DATA_DIR"); envDir != "" {
		return envDir
	}
	return PlatformDataDir()
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// Load reads configuration from the specified path and applies environment
// overrides. If the file doesn't exist, the defaults are used. The format is
// chosen by file extension.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg, err := loadConfigFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables are prefixed with NUMLOCKD_.
func (c *Config) ApplyEnvOverrides() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v := os.Getenv("NUMLOCKD_KEY"); v != "" {
		c.Key.Name = v
	}
	if v := os.Getenv("NUMLOCKD_KEY_STATE"); v != "" {
		c.Key.State = v
	}
	if v := os.Getenv("NUMLOCKD_MUTEX_NAME"); v != "" {
		c.Instance.MutexName = v
	}
	if v := os.Getenv("NUMLOCKD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("NUMLOCKD_LOG_PATH"); v != "" {
		c.Logging.FilePath = v
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return &Config{
		Version:  c.Version,
		Key:      c.Key,
		Instance: c.Instance,
		Tray:     c.Tray,
		Logging:  c.Logging,
	}
}

// LoggerConfig converts the logging section into a logging.Config.
// Invalid level or format strings are reported by Validate; here they fall
// back to the logging defaults.
func (l LoggingConfig) LoggerConfig() *logging.Config {
	cfg := logging.DefaultConfig()
	if level, err := logging.ParseLevel(l.Level); err == nil {
		cfg.Level = level
	}
	if format, err := logging.ParseFormat(l.Format); err == nil {
		cfg.Format = format
	}
	if l.Output != "" {
		cfg.Output = l.Output
	}
	if l.FilePath != "" {
		cfg.FilePath = l.FilePath
	}
	if l.MaxSizeMB > 0 {
		cfg.MaxSize = int64(l.MaxSizeMB)
	}
	cfg.MaxBackups = l.MaxBackups
	cfg.MaxAge = l.MaxAgeDays
	cfg.Compress = l.Compress
	return cfg
}

package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numlockd/internal/logging"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	if cfg.Key.Name != "numlock" {
		t.Errorf("expected key numlock, got %s", cfg.Key.Name)
	}
	if !cfg.Key.DesiredOn() {
		t.Error("expected default desired state on")
	}
	if cfg.Instance.MutexName != `Global\NumLockMonitorMutex` {
		t.Errorf("unexpected mutex name %s", cfg.Instance.MutexName)
	}
	if cfg.Tray.Title != "Numlock Monitor" {
		t.Errorf("unexpected tray title %q", cfg.Tray.Title)
	}
	if !strings.HasSuffix(cfg.Logging.FilePath, "numlockd.log") {
		t.Errorf("unexpected log path %s", cfg.Logging.FilePath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NUMLOCKD_DATA_DIR", dir)

	assert.Equal(t, dir, DataDir())
	assert.Equal(t, filepath.Join(dir, "config.toml"), ConfigPath())
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NUMLOCKD_DATA_DIR", dir)

	assert.Empty(t, FindConfigFile())

	writeFile(t, filepath.Join(dir, "config.yaml"), "version: 1\n")
	assert.Equal(t, filepath.Join(dir, "config.yaml"), FindConfigFile())
}

func TestLoadNonexistent(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing", "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Key, cfg.Key)
	assert.Equal(t, DefaultConfig().Tray, cfg.Tray)
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "config.toml",
			content: `
version = 1
[key]
name = "capslock"
state = "off"
[tray]
title = "Caps Monitor"
`,
		},
		{
			name:    "json",
			file:    "config.json",
			content: `{"version": 1, "key": {"name": "capslock", "state": "off"}, "tray": {"title": "Caps Monitor"}}`,
		},
		{
			name: "yaml",
			file: "config.yml",
			content: `
version: 1
key:
  name: capslock
  state: "off"
tray:
  title: Caps Monitor
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			writeFile(t, path, tt.content)

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, "capslock", cfg.Key.Name)
			assert.False(t, cfg.Key.DesiredOn())
			assert.Equal(t, "Caps Monitor", cfg.Tray.Title)
			// Sections absent from the file keep their defaults.
			assert.Equal(t, DefaultMutexName, cfg.Instance.MutexName)
			assert.Equal(t, 10, cfg.Logging.MaxSizeMB)
		})
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "this is not valid toml {{{\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("NUMLOCKD_KEY", "scrolllock")
	t.Setenv("NUMLOCKD_KEY_STATE", "off")
	t.Setenv("NUMLOCKD_MUTEX_NAME", `Local\Test`)
	t.Setenv("NUMLOCKD_LOG_LEVEL", "debug")
	t.Setenv("NUMLOCKD_LOG_PATH", "/tmp/numlockd-test.log")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	assert.Equal(t, "scrolllock", cfg.Key.Name)
	assert.Equal(t, "off", cfg.Key.State)
	assert.Equal(t, `Local\Test`, cfg.Instance.MutexName)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/tmp/numlockd-test.log", cfg.Logging.FilePath)
}

func TestValidate(t *testing.T) {
	icon := filepath.Join(t.TempDir(), "light.ico")
	writeFile(t, icon, "ico")

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown key", func(c *Config) { c.Key.Name = "insert" }, "key.name"},
		{"bad state", func(c *Config) { c.Key.State = "sometimes" }, "key.state"},
		{"future version", func(c *Config) { c.Version = Version + 1 }, "version"},
		{"empty mutex", func(c *Config) { c.Instance.MutexName = `Global\` }, "instance.mutex_name"},
		{"nested mutex", func(c *Config) { c.Instance.MutexName = `Global\a\b` }, "instance.mutex_name"},
		{"empty title", func(c *Config) { c.Tray.Title = "  " }, "tray.title"},
		{"long title", func(c *Config) { c.Tray.Title = strings.Repeat("x", 128) }, "tray.title"},
		{"not an ico", func(c *Config) { c.Tray.LightIcon = "light.png" }, "tray.light_icon"},
		{"missing ico", func(c *Config) { c.Tray.DarkIcon = filepath.Join(filepath.Dir(icon), "dark.ico") }, "tray.dark_icon"},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad output", func(c *Config) { c.Logging.Output = "syslog" }, "logging.output"},
		{"file without path", func(c *Config) { c.Logging.FilePath = "" }, "logging.file_path"},
		{"zero size", func(c *Config) { c.Logging.MaxSizeMB = 0 }, "logging.max_size_mb"},
		{"negative backups", func(c *Config) { c.Logging.MaxBackups = -1 }, "logging.max_backups"},
		{"negative age", func(c *Config) { c.Logging.MaxAgeDays = -1 }, "logging.max_age_days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Equal(t, []string{tt.field}, verrs.Fields())
		})
	}

	t.Run("existing ico", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Tray.LightIcon = icon
		assert.NoError(t, cfg.Validate())
	})

	t.Run("case insensitive", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Key.Name = "NumLock"
		cfg.Key.State = "OFF"
		assert.NoError(t, cfg.Validate())
		assert.False(t, cfg.Key.DesiredOn())
	})
}

func TestSaveConfigRoundTrip(t *testing.T) {
	for _, ext := range SupportedConfigFormats() {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "config"+ext)

			cfg := DefaultConfig()
			cfg.Key.Name = "capslock"
			cfg.Key.State = StateOff
			cfg.Logging.Level = "debug"
			require.NoError(t, SaveConfig(cfg, path))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg.Key, loaded.Key)
			assert.Equal(t, cfg.Instance, loaded.Instance)
			assert.Equal(t, cfg.Tray, loaded.Tray)
			assert.Equal(t, cfg.Logging, loaded.Logging)
		})
	}
}

func TestEncodeUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Encode(&buf, DefaultConfig(), "ini"))
}

func TestEncodeTOML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, DefaultConfig(), "toml"))
	assert.Contains(t, buf.String(), "[key]")
	assert.Contains(t, buf.String(), `name = "numlock"`)
}

func TestLoggerConfig(t *testing.T) {
	lc := LoggingConfig{
		Level:      "warn",
		Format:     "json",
		Output:     "both",
		FilePath:   "/var/log/numlockd.log",
		MaxSizeMB:  5,
		MaxBackups: 2,
		MaxAgeDays: 7,
	}

	cfg := lc.LoggerConfig()
	assert.Equal(t, logging.LevelWarn, cfg.Level)
	assert.Equal(t, logging.FormatJSON, cfg.Format)
	assert.Equal(t, "both", cfg.Output)
	assert.Equal(t, "/var/log/numlockd.log", cfg.FilePath)
	assert.Equal(t, int64(5), cfg.MaxSize)
	assert.Equal(t, 2, cfg.MaxBackups)
	assert.Equal(t, 7, cfg.MaxAge)
	assert.False(t, cfg.Compress)
}

func TestLoaderLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[key]\nname = \"fnlock\"\n")

	loader := NewLoader(path)
	defer loader.Close()

	_, err := loader.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Nil(t, loader.Config())
}

func TestLoaderWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[logging]\nlevel = \"info\"\n")

	loader := NewLoader(path)
	defer loader.Close()

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)

	changed := make(chan *Config, 4)
	loader.OnChange(func(c *Config) { changed <- c })
	require.NoError(t, loader.Watch())

	writeFile(t, path, "[logging]\nlevel = \"debug\"\n")

	select {
	case c := <-changed:
		assert.Equal(t, "debug", c.Logging.Level)
		assert.Equal(t, "debug", loader.Config().Logging.Level)
	case err := <-loader.Errors():
		t.Fatalf("watch error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestLoaderWatchKeepsConfigOnInvalidReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[logging]\nlevel = \"info\"\n")

	loader := NewLoader(path)
	defer loader.Close()

	_, err := loader.Load()
	require.NoError(t, err)
	require.NoError(t, loader.Watch())

	writeFile(t, path, "[logging]\nlevel = \"loud\"\n")

	select {
	case err := <-loader.Errors():
		assert.True(t, errors.Is(err, ErrInvalidConfig))
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for validation error")
	}
	assert.Equal(t, "info", loader.Config().Logging.Level)
}

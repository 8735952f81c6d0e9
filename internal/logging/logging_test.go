package logging

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		hasError bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"INFO", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"ERROR", LevelError, false},
		{"invalid", LevelInfo, true},
		{"", LevelInfo, true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			level, err := ParseLevel(test.input)
			if test.hasError && err == nil {
				t.Error("expected error, got nil")
			}
			if !test.hasError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !test.hasError && level != test.expected {
				t.Errorf("expected %v, got %v", test.expected, level)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			if got := LevelString(test.level); got != test.expected {
				t.Errorf("expected %q, got %q", test.expected, got)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("expected default level Info, got %v", cfg.Level)
	}
	if cfg.Format != FormatText {
		t.Errorf("expected default format Text, got %v", cfg.Format)
	}
	if cfg.Output != "stderr" {
		t.Errorf("expected default output stderr, got %s", cfg.Output)
	}
	if !strings.Contains(cfg.FilePath, "numlockd") {
		t.Errorf("expected log path under numlockd, got %s", cfg.FilePath)
	}
	if cfg.MaxSize <= 0 || cfg.MaxAge <= 0 || cfg.MaxBackups <= 0 {
		t.Errorf("expected positive retention limits, got %+v", cfg)
	}
}

func TestLoggerNew(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output = "stderr"

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Close()

	if logger.Logger == nil {
		t.Error("logger.Logger is nil")
	}
}

func TestLoggerFileOutput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output = "file"
	cfg.FilePath = filepath.Join(t.TempDir(), "logs", "numlockd.log")

	logger, err := New(cfg)
	require.NoError(t, err)

	logger.Info("agent started", "key", "numlock")
	require.NoError(t, logger.Sync())
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(cfg.FilePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "agent started")
	assert.Contains(t, string(data), "component=numlockd")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&buf, &Config{
		Level:     LevelInfo,
		Format:    FormatJSON,
		Component: "test",
	})
	logger.Info("tick", "corrected", true)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tick", entry["msg"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, true, entry["corrected"])
}

func TestSetLevelAffectsChildren(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&buf, &Config{Level: LevelInfo, Component: "root"})
	child := logger.WithComponent("tray")

	child.Debug("hidden")
	assert.Empty(t, buf.String())

	logger.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, logger.Level())

	child.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "component=tray")
}

func TestFileRotator(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	rotator, err := NewFileRotator(&Config{
		FilePath:   logPath,
		MaxSize:    1,
		MaxAge:     7,
		MaxBackups: 3,
	})
	if err != nil {
		t.Fatalf("failed to create rotator: %v", err)
	}
	defer rotator.Close()

	testData := []byte("test log line\n")
	n, err := rotator.Write(testData)
	if err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if n != len(testData) {
		t.Errorf("expected to write %d bytes, wrote %d", len(testData), n)
	}

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Error("log file was not created")
	}

	if err := rotator.Sync(); err != nil {
		t.Errorf("sync failed: %v", err)
	}
}

func TestFileRotatorRotatesBySize(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	rotator, err := NewFileRotator(&Config{
		FilePath:   logPath,
		MaxSize:    1,
		MaxBackups: 2,
	})
	require.NoError(t, err)
	defer rotator.Close()

	line := []byte(strings.Repeat("x", 1023) + "\n")
	for i := 0; i < 1100; i++ {
		_, err := rotator.Write(line)
		require.NoError(t, err)
	}

	files, err := rotator.GetLogFiles()
	require.NoError(t, err)
	assert.Len(t, files, 2, "current file plus one rotated file")
}

func TestFileRotatorRotatesDaily(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "test.log")

	day := time.Date(2026, 3, 1, 23, 59, 0, 0, time.Local)
	rotator, err := NewFileRotator(&Config{FilePath: logPath, MaxSize: 10, MaxBackups: 5})
	require.NoError(t, err)
	defer rotator.Close()

	rotator.now = func() time.Time { return day }
	rotator.lastTime = day
	_, err = rotator.Write([]byte("before midnight\n"))
	require.NoError(t, err)

	day = day.Add(2 * time.Minute)
	_, err = rotator.Write([]byte("after midnight\n"))
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "test-*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	rotated, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, "before midnight\n", string(rotated))

	current, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "after midnight\n", string(current))
}

func TestFileRotatorCompressesAndPrunes(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "agent.log")

	rotator, err := NewFileRotator(&Config{FilePath: logPath, MaxSize: 10, MaxBackups: 2, Compress: true})
	require.NoError(t, err)
	defer rotator.Close()

	day := time.Date(2026, 1, 10, 12, 0, 0, 0, time.Local)
	rotator.now = func() time.Time { return day }
	rotator.lastTime = day

	for i := 0; i < 4; i++ {
		_, err := rotator.Write([]byte(fmt.Sprintf("day %d\n", i)))
		require.NoError(t, err)
		day = day.AddDate(0, 0, 1)
	}

	files, err := rotator.GetLogFiles()
	require.NoError(t, err)
	require.Len(t, files, 3, "active file plus two kept backups")
	assert.Equal(t, logPath, files[0])
	assert.True(t, strings.HasSuffix(files[1], ".log.gz"))
	assert.Contains(t, files[1], "agent-20260112-")
	assert.Contains(t, files[2], "agent-20260113-")

	f, err := os.Open(files[2])
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, "day 2\n", string(data))

	current, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "day 3\n", string(current))
}

func TestCrashHandler(t *testing.T) {
	handler := NewCrashHandler(&CrashHandlerConfig{
		CrashDir:   t.TempDir(),
		Version:    "1.0.0",
		Component:  "test",
		InstanceID: "run-1",
	})
	handler.stderr = io.Discard

	handler.HandlePanic("test panic value", map[string]any{
		"test_key": "test_value",
	})

	reports, err := handler.GetCrashReports()
	if err != nil {
		t.Fatalf("failed to get crash reports: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected 1 crash report, got %d", len(reports))
	}

	report := reports[0]
	if report.PanicValue != "test panic value" {
		t.Errorf("expected panic value 'test panic value', got %q", report.PanicValue)
	}
	if report.Version != "1.0.0" {
		t.Errorf("expected version '1.0.0', got %q", report.Version)
	}
	if report.InstanceID != "run-1" {
		t.Errorf("expected instance 'run-1', got %q", report.InstanceID)
	}
}

func TestCrashHandlerRecovery(t *testing.T) {
	var seen []CrashReport
	handler := NewCrashHandler(&CrashHandlerConfig{
		CrashDir:  t.TempDir(),
		Component: "test",
		OnCrash:   func(r CrashReport) { seen = append(seen, r) },
	})
	handler.stderr = io.Discard

	panicked := handler.Recover(func() {
		panic("intentional test panic")
	})
	assert.True(t, panicked)
	require.Len(t, seen, 1)
	assert.Equal(t, "intentional test panic", seen[0].PanicValue)

	assert.False(t, handler.Recover(func() {}))
}

func TestCrashHandlerCleanupOld(t *testing.T) {
	dir := t.TempDir()
	handler := NewCrashHandler(&CrashHandlerConfig{CrashDir: dir, Component: "test"})
	handler.stderr = io.Discard

	handler.HandlePanic("old", nil)
	reports, _ := handler.GetCrashReports()
	require.Len(t, reports, 1)

	files, _ := filepath.Glob(filepath.Join(dir, "crash-*.json"))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(files[0], old, old))

	require.NoError(t, handler.CleanupOldCrashReports(24*time.Hour))
	reports, _ = handler.GetCrashReports()
	assert.Empty(t, reports)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf16"

	"numlockd/internal/keylock"
)

// ErrInvalidConfig matches every ValidationErrors value via errors.Is.
var ErrInvalidConfig = errors.New("invalid configuration")

// maxTooltipLen is the capacity of the notification icon tooltip, in UTF-16
// code units, excluding the terminator.
const maxTooltipLen = 127

// maxMutexNameLen is the Win32 MAX_PATH limit on kernel object names.
const maxMutexNameLen = 260

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Is reports whether target is ErrInvalidConfig.
func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Fields returns the names of the offending fields, in order.
func (e ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for _, err := range e {
		fields = append(fields, err.Field)
	}
	return fields
}

// ValidateConfig performs comprehensive validation of the configuration.
func ValidateConfig(c *Config) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var errs ValidationErrors

	if c.Version < 1 || c.Version > Version {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (current: %d)", c.Version, Version),
		})
	}

	errs = append(errs, validateKey(&c.Key)...)
	errs = append(errs, validateInstance(&c.Instance)...)
	errs = append(errs, validateTray(&c.Tray)...)
	errs = append(errs, validateLogging(&c.Logging)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateKey(k *KeyConfig) ValidationErrors {
	var errs ValidationErrors

	if _, err := keylock.LookupKey(k.Name); err != nil {
		errs = append(errs, ValidationError{
			Field: "key.name",
			Message: fmt.Sprintf("unknown key: %q (valid: %s)",
				k.Name, strings.Join(keylock.KeyNames(), ", ")),
		})
	}

	switch strings.ToLower(k.State) {
	case StateOn, StateOff:
	default:
		errs = append(errs, ValidationError{
			Field:   "key.state",
			Message: fmt.Sprintf("invalid state: %q (valid: on, off)", k.State),
		})
	}

	return errs
}

func validateInstance(i *InstanceConfig) ValidationErrors {
	var errs ValidationErrors

	name := i.MutexName
	for _, prefix := range []string{`Global\`, `Local\`} {
		if strings.HasPrefix(name, prefix) {
			name = strings.TrimPrefix(name, prefix)
			break
		}
	}

	switch {
	case name == "":
		errs = append(errs, ValidationError{
			Field:   "instance.mutex_name",
			Message: "mutex name is required",
		})
	case strings.Contains(name, `\`):
		errs = append(errs, ValidationError{
			Field:   "instance.mutex_name",
			Message: `only the Global\ or Local\ namespace prefix may contain a backslash`,
		})
	case len(i.MutexName) > maxMutexNameLen:
		errs = append(errs, ValidationError{
			Field:   "instance.mutex_name",
			Message: fmt.Sprintf("mutex name exceeds %d characters", maxMutexNameLen),
		})
	}

	return errs
}

func validateTray(t *TrayConfig) ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(t.Title) == "" {
		errs = append(errs, ValidationError{
			Field:   "tray.title",
			Message: "title is required",
		})
	} else if n := len(utf16.Encode([]rune(t.Title))); n > maxTooltipLen {
		errs = append(errs, ValidationError{
			Field:   "tray.title",
			Message: fmt.Sprintf("title is %d UTF-16 units, limit is %d", n, maxTooltipLen),
		})
	}

	icons := []struct{ field, path string }{
		{"tray.light_icon", t.LightIcon},
		{"tray.dark_icon", t.DarkIcon},
	}
	for _, icon := range icons {
		field, path := icon.field, icon.path
		if path == "" {
			continue
		}
		if !strings.EqualFold(filepath.Ext(path), ".ico") {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("icon must be an .ico file: %s", path),
			})
			continue
		}
		if _, err := os.Stat(path); err != nil {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("icon not readable: %v", err),
			})
		}
	}

	return errs
}

func validateLogging(l *LoggingConfig) ValidationErrors {
	var errs ValidationErrors

	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid log level: %s (valid: debug, info, warn, error)", l.Level),
		})
	}

	switch strings.ToLower(l.Format) {
	case "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid log format: %s (valid: text, json)", l.Format),
		})
	}

	switch strings.ToLower(l.Output) {
	case "stdout", "stderr":
	case "file", "both":
		if l.FilePath == "" {
			errs = append(errs, ValidationError{
				Field:   "logging.file_path",
				Message: fmt.Sprintf("file path is required when output is '%s'", l.Output),
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.output",
			Message: fmt.Sprintf("invalid log output: %q (valid: stdout, stderr, file, both)", l.Output),
		})
	}

	if l.MaxSizeMB < 1 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_size_mb",
			Message: "max size must be at least 1 MB",
		})
	}

	if l.MaxBackups < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_backups",
			Message: "max backups cannot be negative",
		})
	}

	if l.MaxAgeDays < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_age_days",
			Message: "max age cannot be negative",
		})
	}

	return errs
}

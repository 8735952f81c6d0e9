// Package autostart registers numlockd to launch at user logon through the
// per-user Run key.
package autostart

import (
	"errors"
	"strings"
)

const (
	// RunKey is the per-user logon Run key, relative to HKEY_CURRENT_USER.
	RunKey = `Software\Microsoft\Windows\CurrentVersion\Run`

	// ValueName is the Run key value owned by numlockd.
	ValueName = "numlockd"
)

// ErrUnsupported is returned on platforms without a Run key.
var ErrUnsupported = errors.New("autostart: unsupported platform")

// Status describes the current registration.
type Status struct {
	Enabled bool
	Command string
}

// CommandLine builds the Run value for exePath and args. The executable is
// always quoted; arguments are quoted only when needed.
func CommandLine(exePath string, args ...string) string {
	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(exePath)
	b.WriteByte('"')
	for _, arg := range args {
		b.WriteByte(' ')
		b.WriteString(quoteArg(arg))
	}
	return b.String()
}

// quoteArg follows the CommandLineToArgvW rules: backslashes are literal
// unless they precede a double quote.
func quoteArg(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"") {
		return s
	}

	var b strings.Builder
	b.WriteByte('"')
	slashes := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			slashes++
		case '"':
			b.WriteString(strings.Repeat(`\`, slashes+1))
			slashes = 0
		default:
			slashes = 0
		}
		b.WriteByte(c)
	}
	b.WriteString(strings.Repeat(`\`, slashes))
	b.WriteByte('"')
	return b.String()
}

// Package buildinfo holds version information injected at build time via ldflags:
//
//	go build -ldflags "-X numlockd/internal/buildinfo.Version=1.2.0 -X numlockd/internal/buildinfo.Commit=$(git rev-parse --short HEAD)"
package buildinfo

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// String renders a one-line version banner.
func String() string {
	return fmt.Sprintf("numlockd %s (commit %s, built %s, %s/%s, %s)",
		Version, Commit, BuildDate, runtime.GOOS, runtime.GOARCH, runtime.Version())
}

//go:build windows

package tray

import (
	"fmt"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"numlockd/internal/theme"
)

// fileIcons loads .ico files at the small-icon size.
type fileIcons struct {
	paths map[theme.Theme]string
}

func newFileIcons(paths map[theme.Theme]string) *fileIcons {
	return &fileIcons{paths: paths}
}

func (s *fileIcons) Load(t theme.Theme) (Icon, error) {
	path, ok := s.paths[t]
	if !ok || path == "" {
		return nil, fmt.Errorf("no icon configured for %s theme", t)
	}

	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}

	cx := win.GetSystemMetrics(win.SM_CXSMICON)
	cy := win.GetSystemMetrics(win.SM_CYSMICON)
	h := win.LoadImage(0, name, win.IMAGE_ICON, cx, cy, win.LR_LOADFROMFILE)
	if h == 0 {
		return nil, lastError("LoadImage " + path)
	}
	return &hicon{h: win.HICON(h)}, nil
}

type hicon struct {
	h win.HICON
}

func (i *hicon) Handle() uintptr {
	return uintptr(i.h)
}

func (i *hicon) Release() error {
	if i.h == 0 {
		return nil
	}
	h := i.h
	i.h = 0
	if !win.DestroyIcon(h) {
		return lastError("DestroyIcon")
	}
	return nil
}

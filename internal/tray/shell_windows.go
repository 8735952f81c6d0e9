//go:build windows

package tray

import (
	"errors"
	"fmt"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

const (
	wmTrayIcon = win.WM_USER + 1
	trayIconID = 1001
	timerID    = 1
)

// winShell drives Shell_NotifyIcon, the popup menu and the timer for one
// hidden window.
type winShell struct {
	hwnd  win.HWND
	menu  win.HMENU
	timer bool
}

func lastError(op string) error {
	if code := win.GetLastError(); code != 0 {
		return fmt.Errorf("%s: %w", op, syscall.Errno(code))
	}
	return fmt.Errorf("%s failed", op)
}

func (s *winShell) notifyData(flags uint32) win.NOTIFYICONDATA {
	nid := win.NOTIFYICONDATA{
		HWnd:   s.hwnd,
		UID:    trayIconID,
		UFlags: flags,
	}
	nid.CbSize = uint32(unsafe.Sizeof(nid))
	return nid
}

func (s *winShell) AddIcon(icon Icon, tooltip string) error {
	nid := s.notifyData(win.NIF_ICON | win.NIF_MESSAGE | win.NIF_TIP)
	nid.UCallbackMessage = wmTrayIcon
	nid.HIcon = win.HICON(icon.Handle())
	tip := windows.StringToUTF16(tooltip)
	if len(tip) > len(nid.SzTip) {
		tip = tip[:len(nid.SzTip)-1]
	}
	copy(nid.SzTip[:], tip)

	if win.Shell_NotifyIcon(win.NIM_ADD, &nid) {
		return nil
	}
	// The icon survives some shell restarts; update it in place then.
	if win.Shell_NotifyIcon(win.NIM_MODIFY, &nid) {
		return nil
	}
	return errors.New("Shell_NotifyIcon(NIM_ADD) failed")
}

func (s *winShell) ModifyIcon(icon Icon) error {
	nid := s.notifyData(win.NIF_ICON)
	nid.HIcon = win.HICON(icon.Handle())
	if !win.Shell_NotifyIcon(win.NIM_MODIFY, &nid) {
		return errors.New("Shell_NotifyIcon(NIM_MODIFY) failed")
	}
	return nil
}

func (s *winShell) RemoveIcon() error {
	nid := s.notifyData(0)
	if !win.Shell_NotifyIcon(win.NIM_DELETE, &nid) {
		return errors.New("Shell_NotifyIcon(NIM_DELETE) failed")
	}
	return nil
}

func (s *winShell) SetMenu(items []MenuItem) error {
	menu := win.CreatePopupMenu()
	if menu == 0 {
		return lastError("CreatePopupMenu")
	}

	for i, item := range items {
		mii := win.MENUITEMINFO{
			FMask: win.MIIM_FTYPE | win.MIIM_ID | win.MIIM_STATE,
			WID:   uint32(item.ID),
		}
		mii.CbSize = uint32(unsafe.Sizeof(mii))

		if item.Separator {
			mii.FType = win.MFT_SEPARATOR
		} else {
			label, err := windows.UTF16PtrFromString(item.Label)
			if err != nil {
				win.DestroyMenu(menu)
				return err
			}
			mii.FMask |= win.MIIM_STRING
			mii.FType = win.MFT_STRING
			mii.DwTypeData = label
			mii.Cch = uint32(len(item.Label))
		}
		if item.Disabled {
			mii.FState |= win.MFS_DISABLED
		}
		if item.Checked {
			mii.FState |= win.MFS_CHECKED
		}

		if !win.InsertMenuItem(menu, uint32(i), true, &mii) {
			err := lastError("InsertMenuItem")
			win.DestroyMenu(menu)
			return err
		}
	}

	if s.menu != 0 {
		win.DestroyMenu(s.menu)
	}
	s.menu = menu
	return nil
}

func (s *winShell) SetChecked(id uint16, checked bool) error {
	mii := win.MENUITEMINFO{FMask: win.MIIM_STATE}
	mii.CbSize = uint32(unsafe.Sizeof(mii))
	if checked {
		mii.FState = win.MFS_CHECKED
	} else {
		mii.FState = win.MFS_UNCHECKED
	}
	if !win.SetMenuItemInfo(s.menu, uint32(id), false, &mii) {
		return lastError("SetMenuItemInfo")
	}
	return nil
}

// ShowMenu tracks the popup at the pointer. The window must be in the
// foreground or the menu never dismisses on an outside click.
func (s *winShell) ShowMenu() error {
	var pt win.POINT
	if !win.GetCursorPos(&pt) {
		return lastError("GetCursorPos")
	}
	win.SetForegroundWindow(s.hwnd)
	win.TrackPopupMenu(s.menu, win.TPM_BOTTOMALIGN|win.TPM_LEFTALIGN, pt.X, pt.Y, 0, s.hwnd, nil)
	win.PostMessage(s.hwnd, win.WM_NULL, 0, 0)
	return nil
}

func (s *winShell) StartTimer(period time.Duration) error {
	if win.SetTimer(s.hwnd, timerID, uint32(period.Milliseconds()), 0) == 0 {
		return lastError("SetTimer")
	}
	s.timer = true
	return nil
}

func (s *winShell) StopTimer() error {
	if !s.timer {
		return nil
	}
	s.timer = false
	if !win.KillTimer(s.hwnd, timerID) {
		return lastError("KillTimer")
	}
	return nil
}

func (s *winShell) Quit(code int) {
	s.destroyMenu()
	win.PostQuitMessage(int32(code))
}

func (s *winShell) destroyMenu() {
	if s.menu != 0 {
		win.DestroyMenu(s.menu)
		s.menu = 0
	}
}

//go:build windows

package keylock

import (
	"fmt"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procGetKeyboardState = user32.NewProc("GetKeyboardState")
)

type systemKeyboard struct{}

// NewKeyboard returns the Win32 keyboard.
func NewKeyboard() Keyboard {
	return systemKeyboard{}
}

func (systemKeyboard) KeyState(vk uint8) int16 {
	return win.GetKeyState(int32(vk))
}

func (systemKeyboard) Snapshot(state *[256]byte) error {
	ret, _, err := procGetKeyboardState.Call(uintptr(unsafe.Pointer(&state[0])))
	if ret == 0 {
		return fmt.Errorf("GetKeyboardState: %w", err)
	}
	return nil
}

// PressAndRelease queues both events in one SendInput call so no other input
// can land between them.
func (systemKeyboard) PressAndRelease(k Key) error {
	var flags uint32
	if k.Extended {
		flags = win.KEYEVENTF_EXTENDEDKEY
	}

	inputs := [2]win.KEYBD_INPUT{
		{
			Type: win.INPUT_KEYBOARD,
			Ki: win.KEYBDINPUT{
				WVk:     uint16(k.VK),
				WScan:   uint16(k.Scan),
				DwFlags: flags,
			},
		},
		{
			Type: win.INPUT_KEYBOARD,
			Ki: win.KEYBDINPUT{
				WVk:     uint16(k.VK),
				WScan:   uint16(k.Scan),
				DwFlags: flags | win.KEYEVENTF_KEYUP,
			},
		},
	}

	sent := win.SendInput(uint32(len(inputs)), unsafe.Pointer(&inputs[0]), int32(unsafe.Sizeof(inputs[0])))
	if sent != uint32(len(inputs)) {
		return fmt.Errorf("SendInput: %d of %d events inserted", sent, len(inputs))
	}
	return nil
}

//go:build !windows

package keylock

import "errors"

// ErrUnsupported is returned by the keyboard on platforms without a
// supported input API.
var ErrUnsupported = errors.New("keylock: unsupported platform")

type unsupportedKeyboard struct{}

// NewKeyboard returns a keyboard that reports every key off and refuses
// snapshots.
func NewKeyboard() Keyboard {
	return unsupportedKeyboard{}
}

func (unsupportedKeyboard) KeyState(uint8) int16 { return 0 }

func (unsupportedKeyboard) Snapshot(*[256]byte) error { return ErrUnsupported }

func (unsupportedKeyboard) PressAndRelease(Key) error { return ErrUnsupported }

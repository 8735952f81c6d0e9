// Package keylock keeps a keyboard toggle key, NumLock by default, forced to
// a desired state.
package keylock

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKey is returned by LookupKey for names outside the key table.
var ErrUnknownKey = errors.New("keylock: unknown key")

// Key describes a toggle key by its virtual-key and scan codes.
type Key struct {
	Name string
	VK   uint8
	Scan uint8

	// Extended marks keys whose synthesized events carry the extended-key flag.
	Extended bool
}

func (k Key) String() string {
	return k.Name
}

var keys = []Key{
	{Name: "numlock", VK: 0x90, Scan: 0x45, Extended: true},
	{Name: "capslock", VK: 0x14, Scan: 0x3A},
	{Name: "scrolllock", VK: 0x91, Scan: 0x46},
}

// NumLock is the default enforced key.
var NumLock = keys[0]

// LookupKey returns the key named name, ignoring case.
func LookupKey(name string) (Key, error) {
	for _, k := range keys {
		if strings.EqualFold(k.Name, name) {
			return k, nil
		}
	}
	return Key{}, fmt.Errorf("%w: %q", ErrUnknownKey, name)
}

// KeyNames lists the supported key names.
func KeyNames() []string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Name
	}
	return names
}

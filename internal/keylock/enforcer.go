package keylock

import (
	"log/slog"
)

// Keyboard is the input surface the enforcer observes and drives.
type Keyboard interface {
	// KeyState returns the transient state of vk; the low bit is the toggle.
	KeyState(vk uint8) int16

	// Snapshot copies the full 256-key state table into state.
	Snapshot(state *[256]byte) error

	// PressAndRelease injects a key-down followed by a key-up for k.
	PressAndRelease(k Key) error
}

// Stats counts enforcement activity.
type Stats struct {
	Passes         uint64
	Corrections    uint64
	SnapshotErrors uint64
	SendErrors     uint64
}

// Config configures an Enforcer.
type Config struct {
	// Key is the toggle key to hold. Zero value means NumLock.
	Key Key

	// DesiredOn is the state Enforce drives the key to.
	DesiredOn bool

	Logger *slog.Logger
}

// Enforcer forces a toggle key into the desired state, one pass per call.
// It is not safe for concurrent use; the tray event loop calls it from a
// single thread.
type Enforcer struct {
	kb        Keyboard
	key       Key
	desiredOn bool
	logger    *slog.Logger
	stats     Stats
}

// NewEnforcer returns an enforcer that drives kb.
func NewEnforcer(kb Keyboard, cfg Config) *Enforcer {
	if cfg.Key.Name == "" {
		cfg.Key = NumLock
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default().With("component", "keylock")
	}
	return &Enforcer{
		kb:        kb,
		key:       cfg.Key,
		desiredOn: cfg.DesiredOn,
		logger:    cfg.Logger,
	}
}

// Key returns the enforced key.
func (e *Enforcer) Key() Key {
	return e.key
}

// DesiredOn reports the configured target state.
func (e *Enforcer) DesiredOn() bool {
	return e.desiredOn
}

// Stats returns the counters accumulated so far.
func (e *Enforcer) Stats() Stats {
	return e.stats
}

// Enforce runs one pass toward the configured state and reports whether a
// key press was injected.
func (e *Enforcer) Enforce() bool {
	return e.enforce(e.desiredOn)
}

// EnsureOn runs one pass toward the "on" state regardless of configuration.
func (e *Enforcer) EnsureOn() bool {
	return e.enforce(true)
}

// enforce never presses a key that already has the wanted state, since a
// press flips the state rather than setting it. The result of the press is
// not read back; a contested key is corrected again on the next pass.
func (e *Enforcer) enforce(want bool) bool {
	e.stats.Passes++

	if toggled(e.kb.KeyState(e.key.VK)) == want {
		return false
	}

	// The transient state can lag an in-flight key event; confirm against
	// the full snapshot before pressing.
	var snapshot [256]byte
	if err := e.kb.Snapshot(&snapshot); err != nil {
		e.stats.SnapshotErrors++
		e.logger.Debug("keyboard snapshot failed", "key", e.key.Name, "error", err)
		return false
	}
	if (snapshot[e.key.VK]&1 == 1) == want {
		return false
	}

	if err := e.kb.PressAndRelease(e.key); err != nil {
		e.stats.SendErrors++
		e.logger.Debug("key injection failed", "key", e.key.Name, "error", err)
		return false
	}

	e.stats.Corrections++
	e.logger.Debug("key state corrected",
		"key", e.key.Name,
		"on", want,
		"corrections", e.stats.Corrections)
	return true
}

func toggled(state int16) bool {
	return state&1 == 1
}

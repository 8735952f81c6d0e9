package tray

import "fmt"

// EventKind tags an Event.
type EventKind int

const (
	EventTimer EventKind = iota + 1
	EventClick
	EventCommand
	EventSettingChange
	EventShellRestart
	EventDestroy
)

func (k EventKind) String() string {
	switch k {
	case EventTimer:
		return "timer"
	case EventClick:
		return "click"
	case EventCommand:
		return "command"
	case EventSettingChange:
		return "setting-change"
	case EventShellRestart:
		return "shell-restart"
	case EventDestroy:
		return "destroy"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is one notification delivered to the Controller.
type Event struct {
	Kind EventKind

	// Command is the menu item id for EventCommand.
	Command uint16

	// Setting is the payload of EventSettingChange.
	Setting string
}

// TimerEvent is a tick of the enforcement timer.
func TimerEvent() Event { return Event{Kind: EventTimer} }

// ClickEvent is a primary or secondary click on the notification icon.
func ClickEvent() Event { return Event{Kind: EventClick} }

// CommandEvent is a menu selection.
func CommandEvent(id uint16) Event { return Event{Kind: EventCommand, Command: id} }

// SettingChangeEvent is a system setting-change broadcast.
func SettingChangeEvent(payload string) Event {
	return Event{Kind: EventSettingChange, Setting: payload}
}

// ShellRestartEvent announces that the taskbar was recreated.
func ShellRestartEvent() Event { return Event{Kind: EventShellRestart} }

// DestroyEvent announces that the owning window is going away.
func DestroyEvent() Event { return Event{Kind: EventDestroy} }

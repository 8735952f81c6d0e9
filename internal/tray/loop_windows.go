//go:build windows

package tray

import (
	"fmt"
	"log/slog"
	"runtime"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

const windowClass = "NumlockdTrayWindow"

// loop owns the hidden window and routes its messages to the controller.
type loop struct {
	ctrl   *Controller
	shell  *winShell
	logger *slog.Logger

	taskbarCreated uint32
	startErr       error
	destroyed      bool
}

// Run creates the hidden owner window, starts the controller from
// WM_CREATE and pumps messages until the controller quits. It returns the
// WM_QUIT exit code. Startup failures wrap ErrSetup.
//
// Run must be called once per process; it pins the calling goroutine to its
// OS thread for the lifetime of the window.
func Run(opts Options) (int, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "tray")
	}

	l := &loop{
		shell:  &winShell{},
		logger: logger,
	}
	l.ctrl = NewController(Config{
		Title:    opts.Title,
		Shell:    l.shell,
		Icons:    newFileIcons(opts.IconPaths),
		Enforcer: opts.Enforcer,
		Theme:    opts.Theme,
		Logger:   logger,
	})

	instance := win.GetModuleHandle(nil)
	className, err := windows.UTF16PtrFromString(windowClass)
	if err != nil {
		return 1, fmt.Errorf("%w: %w", ErrSetup, err)
	}

	wc := win.WNDCLASSEX{
		LpfnWndProc:   windows.NewCallback(l.wndProc),
		HInstance:     instance,
		LpszClassName: className,
	}
	wc.CbSize = uint32(unsafe.Sizeof(wc))
	if win.RegisterClassEx(&wc) == 0 {
		return 1, fmt.Errorf("%w: %w", ErrSetup, lastError("RegisterClassEx"))
	}
	defer win.UnregisterClass(className)

	// Runs before the class is unregistered, and also while a panic from the
	// window procedure unwinds, so the icon never outlives the loop.
	defer l.cleanup()

	// TaskbarCreated is broadcast to top-level windows after Explorer restarts.
	if name, err := windows.UTF16PtrFromString("TaskbarCreated"); err == nil {
		l.taskbarCreated = win.RegisterWindowMessage(name)
	}

	title, err := windows.UTF16PtrFromString(opts.Title)
	if err != nil {
		return 1, fmt.Errorf("%w: %w", ErrSetup, err)
	}

	// A hidden top-level window rather than a message-only one: message-only
	// windows never see WM_SETTINGCHANGE or TaskbarCreated broadcasts.
	hwnd := win.CreateWindowEx(0, className, title, 0, 0, 0, 0, 0, 0, 0, instance, nil)
	if hwnd == 0 {
		if l.startErr != nil {
			return 1, l.startErr
		}
		return 1, fmt.Errorf("%w: %w", ErrSetup, lastError("CreateWindowEx"))
	}

	var msg win.MSG
	for {
		r := win.GetMessage(&msg, 0, 0, 0)
		if r == 0 {
			break
		}
		if r == -1 {
			return 1, lastError("GetMessage")
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}

	return int(msg.WParam), nil
}

// cleanup removes the icon, frees the menu and destroys the window unless
// the window is already gone. Every step is idempotent.
func (l *loop) cleanup() {
	l.ctrl.Close()
	l.shell.destroyMenu()
	if l.shell.hwnd != 0 && !l.destroyed {
		l.destroyed = true
		win.DestroyWindow(l.shell.hwnd)
	}
}

func (l *loop) wndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	switch msg {
	case win.WM_CREATE:
		l.shell.hwnd = hwnd
		if err := l.ctrl.Start(); err != nil {
			l.startErr = err
			// Fails CreateWindowEx.
			return ^uintptr(0)
		}
		return 0

	case win.WM_TIMER:
		if wParam == timerID {
			l.ctrl.Handle(TimerEvent())
			return 0
		}

	case wmTrayIcon:
		switch uint32(lParam) {
		case win.WM_LBUTTONUP, win.WM_RBUTTONUP:
			l.ctrl.Handle(ClickEvent())
		}
		return 0

	case win.WM_COMMAND:
		// Menu selections carry zero in the high word and the item id in
		// the low word.
		if win.HIWORD(uint32(wParam)) == 0 {
			l.ctrl.Handle(CommandEvent(win.LOWORD(uint32(wParam))))
		}
		return 0

	case win.WM_SETTINGCHANGE:
		if wParam == 0 && lParam != 0 {
			payload := windows.UTF16PtrToString((*uint16)(unsafe.Pointer(lParam)))
			l.ctrl.Handle(SettingChangeEvent(payload))
		}
		return 0

	case win.WM_ENDSESSION:
		if wParam != 0 {
			l.logger.Info("session ending")
			l.ctrl.Handle(DestroyEvent())
		}
		return 0

	case win.WM_DESTROY:
		l.destroyed = true
		l.ctrl.Handle(DestroyEvent())
		return 0

	default:
		if l.taskbarCreated != 0 && msg == l.taskbarCreated {
			l.ctrl.Handle(ShellRestartEvent())
			return 0
		}
	}

	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

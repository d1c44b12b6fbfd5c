//go:build windows

package transport

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procRegisterClassExW          = user32.NewProc("RegisterClassExW")
	procUnregisterClassW          = user32.NewProc("UnregisterClassW")
	procCreateWindowExW           = user32.NewProc("CreateWindowExW")
	procDestroyWindow             = user32.NewProc("DestroyWindow")
	procDefWindowProcW            = user32.NewProc("DefWindowProcW")
	procPeekMessageW              = user32.NewProc("PeekMessageW")
	procTranslateMessage          = user32.NewProc("TranslateMessage")
	procDispatchMessageW          = user32.NewProc("DispatchMessageW")
	procMsgWaitForMultipleObjects = user32.NewProc("MsgWaitForMultipleObjects")
	procPostQuitMessage           = user32.NewProc("PostQuitMessage")
	procGetModuleHandleW          = kernel32.NewProc("GetModuleHandleW")
)

const (
	wmQuit             = 0x0012
	pmRemove           = 0x0001
	qsAllInput         = 0x04ff
	waitFailed         = 0xffffffff
	wsOverlappedWindow = 0x00cf0000

	windowWidth  = 200
	windowHeight = 200
)

type wndClassEx struct {
	size       uint32
	style      uint32
	wndProc    uintptr
	clsExtra   int32
	wndExtra   int32
	instance   windows.Handle
	icon       windows.Handle
	cursor     windows.Handle
	background windows.Handle
	menuName   *uint16
	className  *uint16
	iconSm     windows.Handle
}

type point struct {
	x int32
	y int32
}

type winMsg struct {
	hwnd    windows.HWND
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      point
	private uint32
}

var (
	// NewCallback slots are never released, so one callback
	// serves every window.
	wndProcCallback = windows.NewCallback(wndProc)

	windowsMu       sync.Mutex
	windowsByHandle = make(map[windows.HWND]*window)

	classCounter uint32
)

func wndProc(hwnd uintptr, msg uintptr, wParam uintptr, lParam uintptr) uintptr {
	windowsMu.Lock()
	w := windowsByHandle[windows.HWND(hwnd)]
	windowsMu.Unlock()

	if w != nil && w.handler != nil {
		resp := w.handler.Notify(Notification{
			Kind:   uint32(msg),
			WParam: wParam,
			LParam: lParam,
		})

		if resp.Stop {
			w.stop()
			return 0
		}

		if resp.Handled {
			return resp.Result
		}
	}

	r, _, _ := procDefWindowProcW.Call(hwnd, msg, wParam, lParam)
	return r
}

// NewWindow creates a hidden top-level window that acts as a Sink.
//
// A window only receives messages on the OS thread that created it.
// NewWindow locks the calling goroutine to its OS thread; Run and
// Close must be called from that same goroutine.
func NewWindow(config WindowConfig) (Sink, error) {
	runtime.LockOSThread()

	w, err := createWindow(config)
	if err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}

	return w, nil
}

func createWindow(config WindowConfig) (*window, error) {
	instance, _, _ := procGetModuleHandleW.Call(0)

	className, err := windows.UTF16PtrFromString(
		fmt.Sprintf("reqloader_%d", atomic.AddUint32(&classCounter, 1)))
	if err != nil {
		return nil, err
	}

	title, err := windows.UTF16PtrFromString(config.Title)
	if err != nil {
		return nil, fmt.Errorf("invalid window title %q - %w", config.Title, err)
	}

	class := wndClassEx{
		wndProc:   wndProcCallback,
		instance:  windows.Handle(instance),
		className: className,
	}
	class.size = uint32(unsafe.Sizeof(class))

	atom, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&class)))
	if atom == 0 {
		return nil, fmt.Errorf("failed to register window class - %w", err)
	}

	// The window is never shown.
	hwnd, _, err := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(className)),
		uintptr(unsafe.Pointer(title)),
		wsOverlappedWindow,
		0,
		0,
		windowWidth,
		windowHeight,
		0,
		0,
		instance,
		0)
	if hwnd == 0 {
		procUnregisterClassW.Call(uintptr(unsafe.Pointer(className)), instance)
		return nil, fmt.Errorf("failed to create window - %w", err)
	}

	w := &window{
		hwnd:         windows.HWND(hwnd),
		className:    className,
		instance:     instance,
		idleInterval: config.idleInterval(),
	}

	windowsMu.Lock()
	windowsByHandle[w.hwnd] = w
	windowsMu.Unlock()

	return w, nil
}

type window struct {
	hwnd         windows.HWND
	className    *uint16
	instance     uintptr
	idleInterval time.Duration
	handler      Handler
	stopped      bool
	destroyed    bool
}

func (o *window) Handle() uint32 {
	// Window handles only use their lower 32 bits so they can be
	// shared with 32-bit processes.
	return uint32(o.hwnd)
}

func (o *window) Run(h Handler) error {
	if o.destroyed {
		return errors.New("window was destroyed")
	}

	o.handler = h
	o.stopped = false
	defer func() {
		o.handler = nil
	}()

	timeout := uintptr(o.idleInterval / time.Millisecond)

	var msg winMsg

	for {
		r, _, err := procMsgWaitForMultipleObjects.Call(0, 0, 0, timeout, qsAllInput)
		if uint32(r) == waitFailed {
			return fmt.Errorf("failed to wait for window messages - %w", err)
		}

		// Messages sent from other processes are delivered to
		// wndProc from inside PeekMessage.
		for {
			hasMsg, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0, pmRemove)
			if hasMsg == 0 {
				break
			}

			if msg.message == wmQuit {
				return nil
			}

			procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
			procDispatchMessageW.Call(uintptr(unsafe.Pointer(&msg)))

			if o.stopped {
				return nil
			}
		}

		if o.stopped {
			return nil
		}

		if !h.Idle() {
			return nil
		}
	}
}

func (o *window) stop() {
	if o.stopped {
		return
	}

	o.stopped = true

	procPostQuitMessage.Call(0)
}

func (o *window) Close() error {
	if o.destroyed {
		return nil
	}

	o.destroyed = true
	o.handler = nil

	windowsMu.Lock()
	delete(windowsByHandle, o.hwnd)
	windowsMu.Unlock()

	var errs []error

	r, _, err := procDestroyWindow.Call(uintptr(o.hwnd))
	if r == 0 {
		errs = append(errs, fmt.Errorf("failed to destroy window - %w", err))
	}

	r, _, err = procUnregisterClassW.Call(uintptr(unsafe.Pointer(o.className)), o.instance)
	if r == 0 {
		errs = append(errs, fmt.Errorf("failed to unregister window class - %w", err))
	}

	runtime.UnlockOSThread()

	return errors.Join(errs...)
}

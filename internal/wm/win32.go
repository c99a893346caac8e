//go:build windows

package wm

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"unsafe"

	"github.com/kbinani/screenshot"
	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"pipdock/pkg/logger"
)

// EnumWindows callbacks are a finite resource, so one is created for the
// whole process and fed a *[]windows.HWND through lParam.
var enumWindowsCallback = windows.NewCallback(func(hwnd windows.HWND, lparam uintptr) uintptr {
	list := (*[]windows.HWND)(unsafe.Pointer(lparam))
	*list = append(*list, hwnd)
	return 1
})

type Win32 struct {
	log *logger.Logger
}

func NewWin32(log *logger.Logger) (*Win32, error) {
	return &Win32{log: log}, nil
}

func (w *Win32) Name() string {
	return "Win32"
}

func (w *Win32) Windows(ctx context.Context) ([]Window, error) {
	var handles []windows.HWND
	if err := windows.EnumWindows(enumWindowsCallback, unsafe.Pointer(&handles)); err != nil {
		return nil, fmt.Errorf("EnumWindows failed: %w", err)
	}

	result := make([]Window, 0, len(handles))
	for _, h := range handles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !windows.IsWindowVisible(h) {
			continue
		}
		result = append(result, describeHWND(h))
	}
	return result, nil
}

func (w *Win32) ActiveWindow(ctx context.Context) (Window, error) {
	h := windows.GetForegroundWindow()
	if h == 0 {
		return Window{}, ErrNoWindow
	}
	return describeHWND(h), nil
}

func (w *Win32) FocusWindow(ctx context.Context, target Window) error {
	h, err := parseHWND(target.ID)
	if err != nil {
		return err
	}
	w.log.Debug("Focusing window", "hwnd", target.ID)
	if !win.SetForegroundWindow(h) {
		return fmt.Errorf("SetForegroundWindow refused for %s", target.ID)
	}
	return nil
}

func (w *Win32) Apply(ctx context.Context, target Window, p Placement) error {
	h, err := parseHWND(target.ID)
	if err != nil {
		return err
	}

	if p.SkipTaskbar {
		style := win.GetWindowLong(h, win.GWL_EXSTYLE)
		style = (style | win.WS_EX_TOOLWINDOW) &^ win.WS_EX_APPWINDOW
		win.SetWindowLong(h, win.GWL_EXSTYLE, style)
	}

	insertAfter := win.HWND(win.HWND_TOP)
	if p.AlwaysOnTop {
		insertAfter = win.HWND_TOPMOST
	}

	r := p.Rect
	flags := uint32(win.SWP_SHOWWINDOW | win.SWP_FRAMECHANGED)
	if !win.SetWindowPos(h, insertAfter, int32(r.X), int32(r.Y), int32(r.Width), int32(r.Height), flags) {
		return fmt.Errorf("SetWindowPos failed for %s", target.ID)
	}
	return nil
}

func (w *Win32) Monitors(ctx context.Context) ([]Monitor, error) {
	n := screenshot.NumActiveDisplays()
	if n > 0 {
		monitors := make([]Monitor, 0, n)
		for i := 0; i < n; i++ {
			b := screenshot.GetDisplayBounds(i)
			monitors = append(monitors, Monitor{
				Name:    fmt.Sprintf("DISPLAY%d", i+1),
				Rect:    rectFromImage(b),
				Primary: b.Min.X == 0 && b.Min.Y == 0,
			})
		}
		return monitors, nil
	}

	w.log.Debug("Display enumeration returned nothing, inferring from virtual screen")
	primary := Rect{
		Width:  int(win.GetSystemMetrics(win.SM_CXSCREEN)),
		Height: int(win.GetSystemMetrics(win.SM_CYSCREEN)),
	}
	virtual := Rect{
		X:      int(win.GetSystemMetrics(win.SM_XVIRTUALSCREEN)),
		Y:      int(win.GetSystemMetrics(win.SM_YVIRTUALSCREEN)),
		Width:  int(win.GetSystemMetrics(win.SM_CXVIRTUALSCREEN)),
		Height: int(win.GetSystemMetrics(win.SM_CYVIRTUALSCREEN)),
	}
	w.log.Debug("Screen metrics", "primary", primary, "virtual", virtual)
	return InferMonitors(primary, virtual), nil
}

func describeHWND(h windows.HWND) Window {
	buf := make([]uint16, 512)
	n, _ := windows.GetWindowText(h, &buf[0], int32(len(buf)))

	var pid uint32
	windows.GetWindowThreadProcessId(h, &pid)

	return Window{
		ID:    fmt.Sprintf("0x%x", uintptr(h)),
		Title: windows.UTF16ToString(buf[:n]),
		PID:   int(pid),
	}
}

func parseHWND(s string) (win.HWND, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid window handle %q: %w", s, err)
	}
	return win.HWND(uintptr(v)), nil
}

func rectFromImage(b image.Rectangle) Rect {
	return Rect{X: b.Min.X, Y: b.Min.Y, Width: b.Dx(), Height: b.Dy()}
}

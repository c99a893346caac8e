package wm

import (
	"context"
	"errors"
)

// ErrNoWindow is returned when the backend has no window to report, e.g. no
// window currently holds focus.
var ErrNoWindow = errors.New("no window")

type WindowManager interface {
	// Name returns the WM name for logging/display
	Name() string
	// Windows lists the visible top-level windows
	Windows(ctx context.Context) ([]Window, error)
	// ActiveWindow returns the window currently receiving keyboard input
	ActiveWindow(ctx context.Context) (Window, error)
	// FocusWindow brings the specified window to front
	FocusWindow(ctx context.Context, w Window) error
	// Apply restyles, moves and resizes the window in one request
	Apply(ctx context.Context, w Window, p Placement) error
	// Monitors returns the geometry of every connected display
	Monitors(ctx context.Context) ([]Monitor, error)
}

// Window is a transient enumeration result. ID is the backend's opaque
// handle: an HWND, an X11 window id or a Hyprland address.
type Window struct {
	ID    string
	Title string
	Class string
	PID   int
}

func (w Window) IsZero() bool {
	return w.ID == ""
}

type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

type Monitor struct {
	Name    string
	Rect    Rect
	Primary bool
}

// Placement is what the control loop asks a backend to apply to the PiP
// window.
type Placement struct {
	Rect        Rect
	AlwaysOnTop bool
	SkipTaskbar bool
}

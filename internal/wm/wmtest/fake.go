// Package wmtest provides a scripted window manager for exercising the
// control loop without a display server.
package wmtest

import (
	"context"
	"strings"
	"sync"

	"pipdock/internal/wm"
)

// Fake replays one window list per Windows call; the last list repeats once
// the script is exhausted.
type Fake struct {
	mu sync.Mutex

	Script   [][]wm.Window
	Active   wm.Window
	Displays []wm.Monitor

	WindowsErr  error
	ActiveErr   error
	FocusErr    error
	ApplyErr    error
	MonitorsErr error

	enumerations int
	calls        []string
	focused      []wm.Window
	applied      []Applied
}

type Applied struct {
	Window    wm.Window
	Placement wm.Placement
}

func (f *Fake) Name() string {
	return "fake"
}

func (f *Fake) Windows(ctx context.Context) ([]wm.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "Windows")
	if f.WindowsErr != nil {
		return nil, f.WindowsErr
	}
	if len(f.Script) == 0 {
		f.enumerations++
		return nil, nil
	}
	i := f.enumerations
	if i >= len(f.Script) {
		i = len(f.Script) - 1
	}
	f.enumerations++
	return append([]wm.Window(nil), f.Script[i]...), nil
}

func (f *Fake) ActiveWindow(ctx context.Context) (wm.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "ActiveWindow")
	if f.ActiveErr != nil {
		return wm.Window{}, f.ActiveErr
	}
	if f.Active.IsZero() {
		return wm.Window{}, wm.ErrNoWindow
	}
	return f.Active, nil
}

func (f *Fake) FocusWindow(ctx context.Context, w wm.Window) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "FocusWindow")
	f.focused = append(f.focused, w)
	return f.FocusErr
}

func (f *Fake) Apply(ctx context.Context, w wm.Window, p wm.Placement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "Apply")
	if f.ApplyErr != nil {
		return f.ApplyErr
	}
	f.applied = append(f.applied, Applied{Window: w, Placement: p})
	return nil
}

func (f *Fake) Monitors(ctx context.Context) ([]wm.Monitor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "Monitors")
	if f.MonitorsErr != nil {
		return nil, f.MonitorsErr
	}
	return append([]wm.Monitor(nil), f.Displays...), nil
}

// Enumerations counts Windows calls so far.
func (f *Fake) Enumerations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enumerations
}

// Calls returns the method names invoked, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *Fake) Focused() []wm.Window {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]wm.Window(nil), f.focused...)
}

func (f *Fake) Applied() []Applied {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Applied(nil), f.applied...)
}

func (f *Fake) String() string {
	return "wmtest.Fake[" + strings.Join(f.Calls(), ",") + "]"
}

// Processes is a static PID to process-name table.
type Processes map[int]string

func (p Processes) ProcessName(ctx context.Context, pid int) (string, error) {
	if name, ok := p[pid]; ok {
		return name, nil
	}
	return "", wm.ErrNoWindow
}

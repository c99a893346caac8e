package wm

import (
	"context"
	"fmt"
	"strconv"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"

	"pipdock/pkg/logger"
)

// X11 talks EWMH to the running window manager through a single xgbutil
// connection.
type X11 struct {
	xu  *xgbutil.XUtil
	log *logger.Logger
}

func NewX11(log *logger.Logger) (*X11, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}
	if err := randr.Init(xu.Conn()); err != nil {
		log.Warn("RandR unavailable, monitor detection will fail", "error", err.Error())
	}
	return &X11{xu: xu, log: log}, nil
}

func (x *X11) Name() string {
	return "X11"
}

// Close cleanly disconnects from the X11 server
func (x *X11) Close() {
	x.xu.Conn().Close()
}

func (x *X11) Windows(ctx context.Context) ([]Window, error) {
	clients, err := ewmh.ClientListGet(x.xu)
	if err != nil {
		return nil, fmt.Errorf("failed to read _NET_CLIENT_LIST: %w", err)
	}

	windows := make([]Window, 0, len(clients))
	for _, id := range clients {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !x.isVisible(id) {
			continue
		}
		windows = append(windows, x.describe(id))
	}
	return windows, nil
}

func (x *X11) ActiveWindow(ctx context.Context) (Window, error) {
	id, err := ewmh.ActiveWindowGet(x.xu)
	if err != nil {
		return Window{}, fmt.Errorf("failed to read _NET_ACTIVE_WINDOW: %w", err)
	}
	if id == 0 {
		return Window{}, ErrNoWindow
	}
	return x.describe(id), nil
}

func (x *X11) FocusWindow(ctx context.Context, w Window) error {
	id, err := parseX11ID(w.ID)
	if err != nil {
		return err
	}
	x.log.Debug("Focusing window", "id", w.ID)
	if err := ewmh.ActiveWindowReq(x.xu, id); err != nil {
		return fmt.Errorf("failed to focus window: %w", err)
	}
	return nil
}

func (x *X11) Apply(ctx context.Context, w Window, p Placement) error {
	id, err := parseX11ID(w.ID)
	if err != nil {
		return err
	}

	// Window managers ignore geometry requests on maximized windows
	x.unmaximize(id)

	if p.AlwaysOnTop {
		if err := ewmh.WmStateReq(x.xu, id, ewmh.StateAdd, "_NET_WM_STATE_ABOVE"); err != nil {
			return fmt.Errorf("failed to set always-on-top: %w", err)
		}
	}
	if p.SkipTaskbar {
		if err := ewmh.WmStateReq(x.xu, id, ewmh.StateAdd, "_NET_WM_STATE_SKIP_TASKBAR"); err != nil {
			return fmt.Errorf("failed to hide from taskbar: %w", err)
		}
	}

	r := p.Rect
	if err := ewmh.MoveresizeWindow(x.xu, id, r.X, r.Y, r.Width, r.Height); err != nil {
		x.log.Debug("EWMH moveresize rejected, configuring directly", "id", w.ID, "error", err.Error())
		xwindow.New(x.xu, id).MoveResize(r.X, r.Y, r.Width, r.Height)
	}
	return nil
}

// Monitors retrieves all active monitors using XRandR
func (x *X11) Monitors(ctx context.Context) ([]Monitor, error) {
	conn := x.xu.Conn()
	root := x.xu.RootWin()

	resources, err := randr.GetScreenResources(conn, root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(conn, root).Reply(); err == nil {
		primary = reply.Output
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Skip disabled CRTCs
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(conn, info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			Name: name,
			Rect: Rect{
				X:      int(info.X),
				Y:      int(info.Y),
				Width:  int(info.Width),
				Height: int(info.Height),
			},
			Primary: primary != 0 && info.Outputs[0] == primary,
		})
	}

	// Without an explicit primary output, the one at the origin is primary
	if primary == 0 {
		for i := range monitors {
			if monitors[i].Rect.X == 0 && monitors[i].Rect.Y == 0 {
				monitors[i].Primary = true
				break
			}
		}
	}

	return monitors, nil
}

func (x *X11) isVisible(id xproto.Window) bool {
	attrs, err := xproto.GetWindowAttributes(x.xu.Conn(), id).Reply()
	if err != nil || attrs.MapState != xproto.MapStateViewable {
		return false
	}
	states, err := ewmh.WmStateGet(x.xu, id)
	if err != nil {
		return true
	}
	for _, s := range states {
		if s == "_NET_WM_STATE_HIDDEN" {
			return false
		}
	}
	return true
}

func (x *X11) describe(id xproto.Window) Window {
	w := Window{ID: formatX11ID(id)}

	if name, err := ewmh.WmNameGet(x.xu, id); err == nil && name != "" {
		w.Title = name
	} else if name, err := icccm.WmNameGet(x.xu, id); err == nil {
		w.Title = name
	}
	if class, err := icccm.WmClassGet(x.xu, id); err == nil {
		w.Class = class.Class
	}
	if pid, err := ewmh.WmPidGet(x.xu, id); err == nil {
		w.PID = int(pid)
	}
	return w
}

// unmaximize removes maximized state from a window
func (x *X11) unmaximize(id xproto.Window) {
	states, err := ewmh.WmStateGet(x.xu, id)
	if err != nil {
		return
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" || state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			ewmh.WmStateReq(x.xu, id, ewmh.StateRemove, state)
		}
	}
}

func formatX11ID(id xproto.Window) string {
	return fmt.Sprintf("0x%x", uint32(id))
}

func parseX11ID(s string) (xproto.Window, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid X11 window id %q: %w", s, err)
	}
	return xproto.Window(v), nil
}

package wm

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"pipdock/pkg/logger"
)

type Hyprland struct {
	log *logger.Logger
	run func(ctx context.Context, args ...string) ([]byte, error)
}

type hyprClient struct {
	Address string `json:"address"`
	Mapped  bool   `json:"mapped"`
	Hidden  bool   `json:"hidden"`
	Class   string `json:"class"`
	Title   string `json:"title"`
	PID     int    `json:"pid"`
	Pinned  bool   `json:"pinned"`
}

type hyprMonitor struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Scale   float64 `json:"scale"`
	Focused bool    `json:"focused"`
}

func NewHyprland(log *logger.Logger) (*Hyprland, error) {
	// Check if hyprctl is available
	path, err := exec.LookPath("hyprctl")
	if err != nil {
		log.Error("hyprctl not found in PATH", err)
		return nil, fmt.Errorf("hyprctl not found in PATH: %w", err)
	}
	log.Debug("Found hyprctl", "path", path)

	return &Hyprland{log: log, run: RunHyprctl}, nil
}

// RunHyprctl executes hyprctl and returns its combined output.
func RunHyprctl(ctx context.Context, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, "hyprctl", args...).CombinedOutput()
}

func (h *Hyprland) Name() string {
	return "Hyprland"
}

func (h *Hyprland) Windows(ctx context.Context) ([]Window, error) {
	var clients []hyprClient
	if err := h.query(ctx, &clients, "clients"); err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(clients))
	for _, c := range clients {
		if !c.Mapped || c.Hidden {
			continue
		}
		windows = append(windows, c.window())
	}
	return windows, nil
}

func (h *Hyprland) ActiveWindow(ctx context.Context) (Window, error) {
	var c hyprClient
	if err := h.query(ctx, &c, "activewindow"); err != nil {
		return Window{}, err
	}
	if c.Address == "" {
		return Window{}, ErrNoWindow
	}
	return c.window(), nil
}

func (h *Hyprland) FocusWindow(ctx context.Context, w Window) error {
	h.log.Debug("Focusing window", "address", w.ID)

	if output, err := h.run(ctx, "dispatch", "focuswindow", "address:"+w.ID); err != nil {
		h.log.Error("Failed to focus window", err, "output", string(output))
		return fmt.Errorf("failed to focus window: %w", err)
	}
	return nil
}

func (h *Hyprland) Apply(ctx context.Context, w Window, p Placement) error {
	addr := "address:" + w.ID
	r := p.Rect

	pinned := false
	if p.AlwaysOnTop {
		// pin is a toggle, so read the current state first
		var clients []hyprClient
		if err := h.query(ctx, &clients, "clients"); err == nil {
			for _, c := range clients {
				if c.Address == w.ID {
					pinned = c.Pinned
					break
				}
			}
		}
	}

	cmds := []string{
		"dispatch setfloating " + addr,
		fmt.Sprintf("dispatch resizewindowpixel exact %d %d,%s", r.Width, r.Height, addr),
		fmt.Sprintf("dispatch movewindowpixel exact %d %d,%s", r.X, r.Y, addr),
	}
	if p.AlwaysOnTop && !pinned {
		cmds = append(cmds, "dispatch pin "+addr)
	}
	if p.SkipTaskbar {
		h.log.Debug("Taskbar hiding has no Hyprland equivalent, skipping", "address", w.ID)
	}

	output, err := h.run(ctx, "--batch", strings.Join(cmds, " ; "))
	if err != nil {
		h.log.Error("Failed to apply placement", err, "output", string(output))
		return fmt.Errorf("failed to apply placement: %w", err)
	}
	return nil
}

func (h *Hyprland) Monitors(ctx context.Context) ([]Monitor, error) {
	var raw []hyprMonitor
	if err := h.query(ctx, &raw, "monitors"); err != nil {
		return nil, err
	}

	monitors := make([]Monitor, 0, len(raw))
	for _, m := range raw {
		scale := m.Scale
		if scale <= 0 {
			scale = 1
		}
		// hyprctl reports physical pixels; window dispatchers take logical ones
		monitors = append(monitors, Monitor{
			Name: m.Name,
			Rect: Rect{
				X:      m.X,
				Y:      m.Y,
				Width:  int(float64(m.Width) / scale),
				Height: int(float64(m.Height) / scale),
			},
			Primary: m.ID == 0,
		})
	}
	return monitors, nil
}

func (h *Hyprland) query(ctx context.Context, v interface{}, what string) error {
	output, err := h.run(ctx, what, "-j")
	if err != nil {
		h.log.Error("Failed to execute hyprctl", err, "output", string(output))
		return fmt.Errorf("hyprctl error: %w", err)
	}
	if len(strings.TrimSpace(string(output))) == 0 {
		return nil
	}
	if err := json.Unmarshal(output, v); err != nil {
		h.log.Error("Failed to parse hyprctl output", err, "output", string(output))
		return fmt.Errorf("failed to parse hyprctl output: %w", err)
	}
	return nil
}

func (c hyprClient) window() Window {
	return Window{
		ID:    c.Address,
		Title: c.Title,
		Class: c.Class,
		PID:   c.PID,
	}
}

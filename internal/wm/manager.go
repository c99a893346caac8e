package wm

import (
	"fmt"
	"os"
	"runtime"

	"pipdock/pkg/logger"
)

// NewManager picks a backend for the current session type
func NewManager(log *logger.Logger) (WindowManager, error) {
	if runtime.GOOS == "windows" {
		log.Debug("Initializing window manager support", "type", "Win32")
		wm, err := NewWin32(log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Win32 support: %w", err)
		}
		log.Info("Window manager initialized", "name", wm.Name())
		return wm, nil
	}

	sessionType := os.Getenv("XDG_SESSION_TYPE")
	log.Info("Session type detected", "session", sessionType)

	var wm WindowManager
	var err error

	switch sessionType {
	case "wayland":
		if sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE"); sig != "" {
			log.Debug("Initializing compositor support", "type", "Hyprland")
			wm, err = NewHyprland(log)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Hyprland support: %w", err)
			}
		} else {
			return nil, fmt.Errorf("unsupported Wayland compositor: only Hyprland is supported")
		}
	case "x11", "":
		// an empty session type is usual under startx
		log.Debug("Initializing compositor support", "type", "X11")
		wm, err = NewX11(log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize X11 support: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported session type: %s", sessionType)
	}

	log.Info("Window manager initialized", "name", wm.Name())
	return wm, nil
}

// IsHyprland reports whether the session is driven by Hyprland, where input
// has to go through hyprctl rather than XTest.
func IsHyprland() bool {
	return os.Getenv("XDG_SESSION_TYPE") == "wayland" && os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != ""
}

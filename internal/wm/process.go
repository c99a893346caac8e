package wm

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessResolver maps a window's owning PID to an executable name.
type ProcessResolver interface {
	ProcessName(ctx context.Context, pid int) (string, error)
}

type SystemProcesses struct{}

func (SystemProcesses) ProcessName(ctx context.Context, pid int) (string, error) {
	if pid <= 0 {
		return "", fmt.Errorf("window has no owning process id")
	}
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return "", fmt.Errorf("failed to open process %d: %w", pid, err)
	}
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read process %d name: %w", pid, err)
	}
	return NormalizeProcessName(name), nil
}

// NormalizeProcessName lowercases and strips any directory and .exe suffix
// so "C:\...\chrome.exe" and "chrome" compare equal.
func NormalizeProcessName(name string) string {
	name = strings.ToLower(filepath.Base(strings.ReplaceAll(name, `\`, "/")))
	return strings.TrimSuffix(name, ".exe")
}

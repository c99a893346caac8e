//go:build !windows

package wm

import (
	"fmt"
	"runtime"

	"pipdock/pkg/logger"
)

// Win32 is only available on Windows builds.
type Win32 struct{ WindowManager }

func NewWin32(log *logger.Logger) (*Win32, error) {
	return nil, fmt.Errorf("Win32 backend is not available on %s", runtime.GOOS)
}

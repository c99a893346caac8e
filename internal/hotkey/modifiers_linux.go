//go:build linux

package hotkey

import (
	"golang.design/x/hotkey"

	"pipdock/internal/input"
)

// Alt and Super are Mod1 and Mod4 on X11.
var modifierMap = map[input.Modifier]hotkey.Modifier{
	input.ModCtrl:  hotkey.ModCtrl,
	input.ModShift: hotkey.ModShift,
	input.ModAlt:   hotkey.Mod1,
	input.ModSuper: hotkey.Mod4,
}

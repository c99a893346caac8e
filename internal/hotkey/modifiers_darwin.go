//go:build darwin

package hotkey

import (
	"golang.design/x/hotkey"

	"pipdock/internal/input"
)

var modifierMap = map[input.Modifier]hotkey.Modifier{
	input.ModCtrl:  hotkey.ModCtrl,
	input.ModShift: hotkey.ModShift,
	input.ModAlt:   hotkey.ModOption,
	input.ModSuper: hotkey.ModCmd,
}

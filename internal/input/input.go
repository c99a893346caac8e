package input

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-vgo/robotgo"

	"pipdock/internal/wm"
	"pipdock/pkg/logger"
)

// Sender delivers a key chord. target is the window that should receive it;
// senders that inject at the OS level type into whatever holds focus.
type Sender interface {
	Send(ctx context.Context, chord Chord, target wm.Window) error
}

// Robot synthesizes key events through robotgo (XTest on X11, SendInput on
// Windows).
type Robot struct {
	log *logger.Logger
}

func NewRobot(log *logger.Logger) *Robot {
	return &Robot{log: log}
}

var robotModifiers = map[Modifier]string{
	ModCtrl:  "ctrl",
	ModAlt:   "alt",
	ModShift: "shift",
	ModSuper: "cmd",
}

func (r *Robot) Send(ctx context.Context, chord Chord, target wm.Window) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	args := make([]interface{}, 0, len(chord.Modifiers))
	for _, m := range chord.Modifiers {
		args = append(args, robotModifiers[m])
	}

	r.log.Debug("Sending key chord", "chord", chord.String(), "window", target.ID)
	if err := robotgo.KeyTap(chord.Key, args...); err != nil {
		return fmt.Errorf("failed to send %s: %w", chord, err)
	}
	return nil
}

// Hyprctl routes the chord to a specific window with Hyprland's sendshortcut
// dispatcher, which works where XTest injection does not.
type Hyprctl struct {
	log *logger.Logger
	run func(ctx context.Context, args ...string) ([]byte, error)
}

func NewHyprctl(log *logger.Logger, run func(ctx context.Context, args ...string) ([]byte, error)) *Hyprctl {
	return &Hyprctl{log: log, run: run}
}

func (h *Hyprctl) Send(ctx context.Context, chord Chord, target wm.Window) error {
	mods := make([]string, 0, len(chord.Modifiers))
	for _, m := range chord.Modifiers {
		mods = append(mods, strings.ToUpper(string(m)))
	}

	arg := fmt.Sprintf("%s, %s, address:%s", strings.Join(mods, " "), strings.ToUpper(chord.Key), target.ID)
	h.log.Debug("Sending key chord via hyprctl", "chord", chord.String(), "address", target.ID)

	if output, err := h.run(ctx, "dispatch", "sendshortcut", arg); err != nil {
		h.log.Error("Failed to send shortcut", err, "output", string(output))
		return fmt.Errorf("failed to send %s: %w", chord, err)
	}
	return nil
}

// New picks the sender matching the session.
func New(log *logger.Logger) Sender {
	if wm.IsHyprland() {
		return NewHyprctl(log, wm.RunHyprctl)
	}
	return NewRobot(log)
}

// Package hotkey registers the global chord that toggles monitoring.
package hotkey

import (
	"fmt"
	"sync"
	"time"

	"golang.design/x/hotkey"

	"pipdock/internal/input"
	"pipdock/pkg/logger"
)

// Key repeat sends a stream of keydowns while the chord is held.
const debounceInterval = 300 * time.Millisecond

var keyMap = map[string]hotkey.Key{
	"space": hotkey.KeySpace, "enter": hotkey.KeyReturn, "tab": hotkey.KeyTab, "escape": hotkey.KeyEscape,
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD, "e": hotkey.KeyE,
	"f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH, "i": hotkey.KeyI, "j": hotkey.KeyJ,
	"k": hotkey.KeyK, "l": hotkey.KeyL, "m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO,
	"p": hotkey.KeyP, "q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX, "y": hotkey.KeyY,
	"z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3, "4": hotkey.Key4,
	"5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7, "8": hotkey.Key8, "9": hotkey.Key9,
	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3, "f4": hotkey.KeyF4,
	"f5": hotkey.KeyF5, "f6": hotkey.KeyF6, "f7": hotkey.KeyF7, "f8": hotkey.KeyF8,
	"f9": hotkey.KeyF9, "f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,
}

// translate maps a chord onto the platform's modifier and key codes.
func translate(c input.Chord) ([]hotkey.Modifier, hotkey.Key, error) {
	mods := make([]hotkey.Modifier, 0, len(c.Modifiers))
	for _, m := range c.Modifiers {
		mod, ok := modifierMap[m]
		if !ok {
			return nil, 0, fmt.Errorf("modifier %s not supported for global hotkeys", m)
		}
		mods = append(mods, mod)
	}
	key, ok := keyMap[c.Key]
	if !ok {
		return nil, 0, fmt.Errorf("key %q not supported for global hotkeys", c.Key)
	}
	return mods, key, nil
}

// Handler fires onPress whenever the registered chord goes down.
type Handler struct {
	mu      sync.Mutex
	hk      *hotkey.Hotkey
	onPress func()
	current input.Chord
	stopCh  chan struct{}
	log     *logger.Logger
}

func New(onPress func(), log *logger.Logger) *Handler {
	return &Handler{
		onPress: onPress,
		log:     log,
	}
}

// Register replaces any previously registered chord.
func (h *Handler) Register(c input.Chord) error {
	mods, key, err := translate(c)
	if err != nil {
		return err
	}

	if err := h.Unregister(); err != nil {
		h.log.Warn("Failed to unregister previous hotkey", "error", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("failed to register %s: %w", c, err)
	}

	h.hk = hk
	h.current = c
	h.stopCh = make(chan struct{})
	go h.listen(hk, h.stopCh)

	h.log.Info("Global hotkey registered", "chord", c.String())
	return nil
}

func (h *Handler) listen(hk *hotkey.Hotkey, stopCh chan struct{}) {
	var lastKeydown time.Time
	for {
		select {
		case <-stopCh:
			return
		case _, ok := <-hk.Keydown():
			if !ok {
				return
			}
			now := time.Now()
			if now.Sub(lastKeydown) < debounceInterval {
				continue
			}
			lastKeydown = now
			h.log.Debug("Global hotkey pressed", "chord", h.Current().String())
			if h.onPress != nil {
				h.onPress()
			}
		}
	}
}

// Unregister releases the chord. It is safe to call when nothing is
// registered.
func (h *Handler) Unregister() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopCh != nil {
		close(h.stopCh)
		h.stopCh = nil
	}

	if h.hk == nil {
		return nil
	}
	hk := h.hk
	h.hk = nil
	h.current = input.Chord{}

	// Unregister can hang on some X servers.
	done := make(chan error, 1)
	go func() { done <- hk.Unregister() }()
	select {
	case err := <-done:
		return err
	case <-time.After(500 * time.Millisecond):
		return fmt.Errorf("hotkey unregister timed out")
	}
}

// Current returns the registered chord, zero when none.
func (h *Handler) Current() input.Chord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

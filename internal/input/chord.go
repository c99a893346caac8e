package input

import (
	"fmt"
	"strings"
)

type Modifier string

const (
	ModCtrl  Modifier = "ctrl"
	ModAlt   Modifier = "alt"
	ModShift Modifier = "shift"
	ModSuper Modifier = "super"
)

var modifierAliases = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"shift":   ModShift,
	"super":   ModSuper,
	"win":     ModSuper,
	"cmd":     ModSuper,
	"meta":    ModSuper,
}

var namedKeys = map[string]bool{
	"space": true, "enter": true, "tab": true, "escape": true,
	"f1": true, "f2": true, "f3": true, "f4": true, "f5": true, "f6": true,
	"f7": true, "f8": true, "f9": true, "f10": true, "f11": true, "f12": true,
}

// Chord is a key pressed while holding zero or more modifiers.
type Chord struct {
	Modifiers []Modifier
	Key       string
}

// ParseChord reads chords such as "alt+p" or "Ctrl+Shift+F9".
func ParseChord(s string) (Chord, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	if len(parts) == 0 || parts[0] == "" {
		return Chord{}, fmt.Errorf("empty key chord")
	}

	var c Chord
	seen := make(map[Modifier]bool)
	for i, p := range parts {
		p = strings.TrimSpace(p)
		last := i == len(parts)-1
		if mod, ok := modifierAliases[p]; ok && !last {
			if seen[mod] {
				return Chord{}, fmt.Errorf("modifier %q repeated in %q", p, s)
			}
			seen[mod] = true
			c.Modifiers = append(c.Modifiers, mod)
			continue
		}
		if !last {
			return Chord{}, fmt.Errorf("unknown modifier %q in %q", p, s)
		}
		if !validKey(p) {
			return Chord{}, fmt.Errorf("unsupported key %q in %q", p, s)
		}
		c.Key = p
	}
	return c, nil
}

func validKey(k string) bool {
	if namedKeys[k] {
		return true
	}
	if len(k) != 1 {
		return false
	}
	ch := k[0]
	return (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')
}

func (c Chord) String() string {
	parts := make([]string, 0, len(c.Modifiers)+1)
	for _, m := range c.Modifiers {
		parts = append(parts, string(m))
	}
	return strings.Join(append(parts, c.Key), "+")
}

func (c Chord) Has(m Modifier) bool {
	for _, mod := range c.Modifiers {
		if mod == m {
			return true
		}
	}
	return false
}

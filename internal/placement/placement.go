// Package placement computes where the PiP window goes.
package placement

import (
	"math"
	"sort"

	"pipdock/internal/wm"
)

// Target scales the monitor rectangle by s and centers the result within it.
// Offsets use integer division, so odd leftovers round toward the origin.
func Target(m wm.Rect, s float64) wm.Rect {
	width := int(math.Round(s * float64(m.Width)))
	height := int(math.Round(s * float64(m.Height)))
	return wm.Rect{
		X:      m.X + (m.Width-width)/2,
		Y:      m.Y + (m.Height-height)/2,
		Width:  width,
		Height: height,
	}
}

// Secondary picks the display the PiP window should move to: the monitor
// named preferred when it is connected, otherwise the first non-primary
// monitor in left-to-right, top-to-bottom order. With a single display there
// is no secondary.
func Secondary(monitors []wm.Monitor, preferred string) (wm.Monitor, bool) {
	if len(monitors) < 2 {
		return wm.Monitor{}, false
	}

	if preferred != "" {
		for _, m := range monitors {
			if m.Name == preferred {
				return m, true
			}
		}
	}

	ordered := append([]wm.Monitor(nil), monitors...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Rect.X != ordered[j].Rect.X {
			return ordered[i].Rect.X < ordered[j].Rect.X
		}
		return ordered[i].Rect.Y < ordered[j].Rect.Y
	})

	hasPrimary := false
	for _, m := range ordered {
		if m.Primary {
			hasPrimary = true
			break
		}
	}

	for i, m := range ordered {
		if hasPrimary && m.Primary {
			continue
		}
		// Without a primary flag the leftmost display is treated as primary
		if !hasPrimary && i == 0 {
			continue
		}
		return m, true
	}
	return wm.Monitor{}, false
}

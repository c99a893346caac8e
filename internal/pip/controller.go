// Package pip finds a playing video in the foreground browser window, asks
// the browser to pop it out into a Picture-in-Picture window and parks that
// window on a secondary display.
package pip

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pipdock/internal/input"
	"pipdock/internal/placement"
	"pipdock/internal/wm"
	"pipdock/pkg/core"
)

// Settings are the tunables of one detection run.
type Settings struct {
	SiteMarker       string
	PiPTitle         string
	BrowserSuffix    string
	BrowserProcesses []string

	Hotkey input.Chord
	Scale  float64

	PollInterval      time.Duration
	PreTriggerDelay   time.Duration
	DiscoveryAttempts int
	DiscoveryInterval time.Duration

	AlwaysOnTop     bool
	HideFromTaskbar bool
	TargetMonitor   string
}

// DefaultSettings mirrors the built-in configuration defaults.
func DefaultSettings() Settings {
	return Settings{
		SiteMarker:        "YouTube",
		PiPTitle:          "Picture in Picture",
		BrowserSuffix:     " - Google Chrome",
		Hotkey:            input.Chord{Modifiers: []input.Modifier{input.ModAlt}, Key: "p"},
		Scale:             0.75,
		PollInterval:      2 * time.Second,
		DiscoveryAttempts: 5,
		DiscoveryInterval: time.Second,
		AlwaysOnTop:       true,
	}
}

// Outcome is the result of one pass of the control loop.
type Outcome int

const (
	// OutcomeIdle means no video window was in front; keep polling.
	OutcomeIdle Outcome = iota
	OutcomeActivated
	OutcomeNoPiPWindow
	OutcomeNoSecondary
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIdle:
		return "idle"
	case OutcomeActivated:
		return "activated"
	case OutcomeNoPiPWindow:
		return "no_pip_window"
	case OutcomeNoSecondary:
		return "no_secondary"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Latches reports whether the outcome ends the current run.
func (o Outcome) Latches() bool {
	return o != OutcomeIdle
}

// Result describes one pass in enough detail to record it.
type Result struct {
	At      time.Time
	Outcome Outcome
	Source  wm.Window
	PiP     wm.Window
	Monitor wm.Monitor
	Target  wm.Rect
	Err     error
}

// Controller performs the detect, trigger, locate and relocate steps against
// an injected window system.
type Controller struct {
	wm       wm.WindowManager
	keys     input.Sender
	procs    wm.ProcessResolver
	log      core.Logger
	settings Settings
	now      func() time.Time
}

// NewController wires a controller. procs may be nil when no process
// allow-list is configured.
func NewController(w wm.WindowManager, keys input.Sender, procs wm.ProcessResolver, log core.Logger, s Settings) *Controller {
	return &Controller{
		wm:       w,
		keys:     keys,
		procs:    procs,
		log:      log,
		settings: s,
		now:      time.Now,
	}
}

// Settings returns the controller's settings.
func (c *Controller) Settings() Settings {
	return c.settings
}

func (c *Controller) isVideoTitle(title string) bool {
	s := c.settings
	if !strings.Contains(title, s.SiteMarker) {
		return false
	}
	if strings.Contains(title, s.PiPTitle) {
		return false
	}
	return s.BrowserSuffix == "" || strings.HasSuffix(title, s.BrowserSuffix)
}

func (c *Controller) allowedProcess(ctx context.Context, w wm.Window) bool {
	if len(c.settings.BrowserProcesses) == 0 {
		return true
	}
	if c.procs == nil {
		return false
	}
	name, err := c.procs.ProcessName(ctx, w.PID)
	if err != nil {
		c.log.Debug("Skipping window with unknown owner", "window", w.ID, "error", err)
		return false
	}
	name = wm.NormalizeProcessName(name)
	for _, allowed := range c.settings.BrowserProcesses {
		if wm.NormalizeProcessName(allowed) == name {
			return true
		}
	}
	return false
}

// FindActiveVideoWindow returns the browser window showing the video site,
// but only when it is the foreground window.
func (c *Controller) FindActiveVideoWindow(ctx context.Context) (wm.Window, bool) {
	windows, err := c.wm.Windows(ctx)
	if err != nil {
		c.log.Error("Failed to enumerate windows", err)
		return wm.Window{}, false
	}

	var candidates []wm.Window
	for _, w := range windows {
		if c.isVideoTitle(w.Title) && c.allowedProcess(ctx, w) {
			candidates = append(candidates, w)
		}
	}
	if len(candidates) == 0 {
		return wm.Window{}, false
	}

	active, err := c.wm.ActiveWindow(ctx)
	if err != nil {
		if !errors.Is(err, wm.ErrNoWindow) {
			c.log.Error("Failed to read foreground window", err)
		}
		return wm.Window{}, false
	}

	for _, w := range candidates {
		if w.ID == active.ID {
			c.log.Debug("Video window is in front", "window", w.ID, "title", w.Title)
			return w, true
		}
	}
	c.log.Debug("Video window present but not in front", "candidates", len(candidates))
	return wm.Window{}, false
}

// RequestPiP focuses w and sends the browser's PiP chord. Focus is best
// effort; only a failed key send is an error.
func (c *Controller) RequestPiP(ctx context.Context, w wm.Window) error {
	if err := c.wm.FocusWindow(ctx, w); err != nil {
		c.log.Warn("Could not focus video window", "window", w.ID, "error", err)
	}

	if err := sleep(ctx, c.settings.PreTriggerDelay); err != nil {
		return err
	}

	c.log.Info("Requesting picture-in-picture", "window", w.ID, "chord", c.settings.Hotkey.String())
	if err := c.keys.Send(ctx, c.settings.Hotkey, w); err != nil {
		return fmt.Errorf("failed to send PiP hotkey: %w", err)
	}
	return nil
}

// LocatePiPWindow polls for the PiP window, DiscoveryAttempts enumerations
// spaced DiscoveryInterval apart.
func (c *Controller) LocatePiPWindow(ctx context.Context) (wm.Window, bool) {
	attempts := c.settings.DiscoveryAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, c.settings.DiscoveryInterval); err != nil {
				return wm.Window{}, false
			}
		}

		windows, err := c.wm.Windows(ctx)
		if err != nil {
			c.log.Error("Failed to enumerate windows", err, "attempt", attempt)
			continue
		}
		for _, w := range windows {
			if strings.EqualFold(strings.TrimSpace(w.Title), c.settings.PiPTitle) {
				c.log.Debug("Found PiP window", "window", w.ID, "attempt", attempt)
				return w, true
			}
		}
		c.log.Debug("PiP window not visible yet", "attempt", attempt, "of", attempts)
	}
	return wm.Window{}, false
}

// Relocate centers w on monitor at the given scale and applies the window
// flags in a single backend call.
func (c *Controller) Relocate(ctx context.Context, w wm.Window, monitor wm.Rect, scale float64) (wm.Rect, error) {
	target := placement.Target(monitor, scale)
	p := wm.Placement{
		Rect:        target,
		AlwaysOnTop: c.settings.AlwaysOnTop,
		SkipTaskbar: c.settings.HideFromTaskbar,
	}
	if err := c.wm.Apply(ctx, w, p); err != nil {
		return wm.Rect{}, fmt.Errorf("failed to place window %s: %w", w.ID, err)
	}
	c.log.Info("PiP window moved",
		"window", w.ID,
		"x", target.X,
		"y", target.Y,
		"width", target.Width,
		"height", target.Height)
	return target, nil
}

// PollAndTrigger runs one pass of the loop.
func (c *Controller) PollAndTrigger(ctx context.Context) Outcome {
	return c.Attempt(ctx).Outcome
}

// Attempt runs one pass of the loop and reports what happened. A cancelled
// context yields OutcomeIdle.
func (c *Controller) Attempt(ctx context.Context) Result {
	res := Result{At: c.now(), Outcome: OutcomeIdle}

	source, ok := c.FindActiveVideoWindow(ctx)
	if !ok {
		return res
	}
	res.Source = source

	if err := c.RequestPiP(ctx, source); err != nil {
		if ctx.Err() != nil {
			return res
		}
		c.log.Error("PiP request failed", err, "window", source.ID)
		res.Outcome, res.Err = OutcomeFailed, err
		return res
	}

	pipWin, ok := c.LocatePiPWindow(ctx)
	if !ok {
		if ctx.Err() != nil {
			return res
		}
		c.log.Warn("PiP window did not appear", "attempts", c.settings.DiscoveryAttempts)
		res.Outcome = OutcomeNoPiPWindow
		return res
	}
	res.PiP = pipWin

	monitors, err := c.wm.Monitors(ctx)
	if err != nil {
		c.log.Error("Failed to query monitors", err)
		res.Outcome, res.Err = OutcomeFailed, err
		return res
	}
	secondary, ok := placement.Secondary(monitors, c.settings.TargetMonitor)
	if !ok {
		c.log.Info("No secondary monitor, leaving PiP window in place", "monitors", len(monitors))
		res.Outcome = OutcomeNoSecondary
		return res
	}
	res.Monitor = secondary

	target, err := c.Relocate(ctx, pipWin, secondary.Rect, c.settings.Scale)
	if err != nil {
		c.log.Error("Relocation failed", err, "window", pipWin.ID)
		res.Outcome, res.Err = OutcomeFailed, err
		return res
	}
	res.Target = target
	res.Outcome = OutcomeActivated
	return res
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

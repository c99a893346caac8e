package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"pipdock/internal/hotkey"
	"pipdock/internal/input"
	"pipdock/internal/models"
	"pipdock/internal/pip"
	"pipdock/internal/storage"
	"pipdock/internal/wm"
	"pipdock/pkg/config"
	"pipdock/pkg/core"
	"pipdock/pkg/global"
	"pipdock/pkg/logger"
	"pipdock/pkg/notify"
)

var ErrBusy = errors.New("a detection pass is already in progress")

// Chimer plays the activation sound.
type Chimer interface {
	PlayChime() error
}

// Deps are the collaborators a Runner drives. Zero fields are filled with
// the real implementations by NewRunner. A nil Notifier or Sound follows the
// global instance so reloads take effect.
type Deps struct {
	WM       wm.WindowManager
	Keys     input.Sender
	Procs    wm.ProcessResolver
	History  *storage.DB
	Notifier core.Notifier
	Sound    Chimer
}

// Runner owns the monitor and everything that reacts to its outcomes. Both
// the GUI and the headless command are thin shells around it.
type Runner struct {
	log     *logger.Logger
	deps    Deps
	monitor *pip.Monitor
	baseCtx context.Context

	mu      sync.Mutex
	cfg     *config.Config
	ctrl    *pip.Controller
	hotkeys *hotkey.Handler

	triggerMu sync.Mutex
}

// NewRunner wires a runner for cfg. ctx bounds every run started through it.
func NewRunner(ctx context.Context, cfg *config.Config, log *logger.Logger, deps Deps) (*Runner, error) {
	if deps.WM == nil {
		manager, err := wm.NewManager(log)
		if err != nil {
			return nil, fmt.Errorf("failed to create window manager: %w", err)
		}
		deps.WM = manager
	}
	if deps.Keys == nil {
		deps.Keys = input.New(log)
	}
	if deps.Procs == nil {
		deps.Procs = wm.SystemProcesses{}
	}

	settings, err := settingsFrom(cfg)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		log:     log,
		deps:    deps,
		baseCtx: ctx,
		cfg:     cfg,
	}
	r.ctrl = pip.NewController(deps.WM, deps.Keys, deps.Procs, log, settings)
	r.monitor = pip.NewMonitor(r.ctrl, settings.PollInterval, log)
	r.monitor.OnStatus(r.handleEvent)

	log.Info("Runner ready",
		"backend", deps.WM.Name(),
		"poll_interval", settings.PollInterval.String(),
		"hotkey", settings.Hotkey.String())

	if deps.History != nil && cfg.GetHistoryRetention() > 0 {
		if n, err := deps.History.Cleanup(cfg.GetHistoryRetention()); err != nil {
			log.Error("History cleanup failed", err)
		} else if n > 0 {
			log.Debug("Pruned activation history", "removed", n)
		}
	}

	if err := r.registerToggle(cfg); err != nil {
		log.Warn("Global toggle hotkey unavailable", "error", err)
	}
	return r, nil
}

// Start begins monitoring. It fails with ErrBusy while a manual trigger is
// in progress.
func (r *Runner) Start() error {
	if !r.triggerMu.TryLock() {
		return ErrBusy
	}
	defer r.triggerMu.Unlock()
	return r.monitor.Start(r.baseCtx)
}

func (r *Runner) Stop() {
	r.monitor.Stop()
}

func (r *Runner) Running() bool {
	return r.monitor.Running()
}

// Toggle starts monitoring when stopped and stops it when running.
func (r *Runner) Toggle() {
	if r.Running() {
		r.Stop()
		return
	}
	if err := r.Start(); errors.Is(err, ErrBusy) {
		r.log.Warn("Toggle ignored, a manual trigger is in progress")
	} else if err != nil && !errors.Is(err, pip.ErrAlreadyRunning) {
		r.log.Error("Failed to start monitoring", err)
	}
}

// OnStatus forwards monitor events to fn.
func (r *Runner) OnStatus(fn func(pip.Event)) {
	r.monitor.OnStatus(fn)
}

// Done is closed when the current run has exited.
func (r *Runner) Done() <-chan struct{} {
	return r.monitor.Done()
}

// Trigger runs a single pass immediately, outside the polling loop. It never
// overlaps a monitoring run.
func (r *Runner) Trigger(ctx context.Context) (string, error) {
	if !r.triggerMu.TryLock() {
		return "", ErrBusy
	}
	defer r.triggerMu.Unlock()
	if r.Running() {
		return "", fmt.Errorf("monitoring is active, stop it first")
	}

	r.mu.Lock()
	ctrl := r.ctrl
	r.mu.Unlock()

	res := ctrl.Attempt(ctx)
	if res.Outcome.Latches() {
		r.report(res)
	}
	if res.Err != nil {
		return res.Outcome.String(), res.Err
	}
	return res.Outcome.String(), nil
}

// ApplyConfig swaps in a reloaded configuration. A running monitor keeps its
// settings until the next Start.
func (r *Runner) ApplyConfig(cfg *config.Config) error {
	settings, err := settingsFrom(cfg)
	if err != nil {
		return err
	}

	r.mu.Lock()
	old := r.cfg
	r.cfg = cfg
	r.ctrl = pip.NewController(r.deps.WM, r.deps.Keys, r.deps.Procs, r.log, settings)
	r.monitor.Configure(r.ctrl, settings.PollInterval)
	r.mu.Unlock()

	if old.GetToggleHotkey() != cfg.GetToggleHotkey() {
		if err := r.registerToggle(cfg); err != nil {
			r.log.Warn("Global toggle hotkey unavailable", "error", err)
		}
	}
	r.log.Info("Configuration applied", "path", cfg.GetPath())
	return nil
}

func (r *Runner) registerToggle(cfg *config.Config) error {
	chord, ok, err := toggleChord(cfg)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !ok {
		if r.hotkeys != nil {
			return r.hotkeys.Unregister()
		}
		return nil
	}
	if r.hotkeys == nil {
		r.hotkeys = hotkey.New(r.Toggle, r.log)
	}
	return r.hotkeys.Register(chord)
}

func (r *Runner) handleEvent(ev pip.Event) {
	if ev.Result != nil {
		r.report(*ev.Result)
	}
}

// report records a latched outcome and tells the user about it.
func (r *Runner) report(res pip.Result) {
	if r.deps.History != nil {
		if _, err := r.deps.History.AddActivation(toActivation(res)); err != nil {
			r.log.Error("Failed to record activation", err)
		}
	}

	notifier := r.notifier()
	var err error
	switch res.Outcome {
	case pip.OutcomeActivated:
		err = notifier.Info(fmt.Sprintf("Moved picture-in-picture to %s", monitorLabel(res.Monitor)))
		r.chime()
	case pip.OutcomeNoSecondary:
		err = notifier.Info("No secondary monitor, picture-in-picture left in place")
	case pip.OutcomeNoPiPWindow:
		err = notifier.Error("Picture-in-picture window did not appear")
	case pip.OutcomeFailed:
		err = notifier.Error(fmt.Sprintf("Could not dock picture-in-picture: %v", res.Err))
	}
	if err != nil {
		r.log.Warn("Notification failed", "error", err)
	}
}

func (r *Runner) notifier() core.Notifier {
	if r.deps.Notifier != nil {
		return r.deps.Notifier
	}
	if n := global.GetNotifier(); n != nil {
		return n
	}
	r.mu.Lock()
	cmd := r.cfg.GetNotifyCommand()
	r.mu.Unlock()
	return notify.NewNotifyService(cmd, r.log)
}

func (r *Runner) chime() {
	r.mu.Lock()
	enabled := r.cfg.GetSound()
	r.mu.Unlock()
	if !enabled {
		return
	}
	player := r.deps.Sound
	if player == nil {
		sn := global.GetSoundNotifier()
		if sn == nil {
			return
		}
		player = sn
	}
	go func() {
		if err := player.PlayChime(); err != nil {
			r.log.Warn("Chime failed", "error", err)
		}
	}()
}

// Recent returns the last n recorded activations.
func (r *Runner) Recent(n int) ([]models.Activation, error) {
	if r.deps.History == nil {
		return nil, fmt.Errorf("activation history unavailable")
	}
	return r.deps.History.Recent(n)
}

// Close stops monitoring and releases the hotkey and history database.
func (r *Runner) Close() error {
	r.Stop()

	r.mu.Lock()
	hk := r.hotkeys
	r.mu.Unlock()
	if hk != nil {
		if err := hk.Unregister(); err != nil {
			r.log.Warn("Failed to unregister hotkey", "error", err)
		}
	}

	if r.deps.History != nil {
		return r.deps.History.Close()
	}
	return nil
}

func monitorLabel(m wm.Monitor) string {
	if m.Name != "" {
		return m.Name
	}
	return fmt.Sprintf("the display at %d,%d", m.Rect.X, m.Rect.Y)
}

func toActivation(res pip.Result) models.Activation {
	a := models.Activation{
		Timestamp:   res.At,
		Outcome:     res.Outcome.String(),
		SourceTitle: res.Source.Title,
		PiPWindow:   res.PiP.ID,
		Monitor:     res.Monitor.Name,
	}
	a.Target.X = res.Target.X
	a.Target.Y = res.Target.Y
	a.Target.Width = res.Target.Width
	a.Target.Height = res.Target.Height
	if res.Err != nil {
		a.Error = res.Err.Error()
	}
	return a
}

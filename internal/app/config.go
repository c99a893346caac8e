package app

import (
	"fmt"

	"pipdock/internal/input"
	"pipdock/internal/pip"
	"pipdock/pkg/config"
)

// settingsFrom turns a loaded configuration into controller settings.
func settingsFrom(cfg *config.Config) (pip.Settings, error) {
	chord, err := input.ParseChord(cfg.GetHotkey())
	if err != nil {
		return pip.Settings{}, fmt.Errorf("hotkey: %w", err)
	}

	return pip.Settings{
		SiteMarker:        cfg.GetSiteMarker(),
		PiPTitle:          cfg.GetPiPTitle(),
		BrowserSuffix:     cfg.GetBrowserSuffix(),
		BrowserProcesses:  cfg.GetBrowserProcesses(),
		Hotkey:            chord,
		Scale:             cfg.GetScale(),
		PollInterval:      cfg.GetPollInterval(),
		PreTriggerDelay:   cfg.GetPreTriggerDelay(),
		DiscoveryAttempts: cfg.GetDiscoveryAttempts(),
		DiscoveryInterval: cfg.GetDiscoveryInterval(),
		AlwaysOnTop:       cfg.GetAlwaysOnTop(),
		HideFromTaskbar:   cfg.GetHideFromTaskbar(),
		TargetMonitor:     cfg.GetTargetMonitor(),
	}, nil
}

// toggleChord returns the configured Start/Stop chord, if any.
func toggleChord(cfg *config.Config) (input.Chord, bool, error) {
	if cfg.GetToggleHotkey() == "" {
		return input.Chord{}, false, nil
	}
	c, err := input.ParseChord(cfg.GetToggleHotkey())
	if err != nil {
		return input.Chord{}, false, fmt.Errorf("toggle_hotkey: %w", err)
	}
	return c, true, nil
}

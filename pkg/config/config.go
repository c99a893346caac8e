package config

import (
	"time"

	"pipdock/pkg/logger"
)

// Config holds the application configuration.
type Config struct {
	// Configurable via JSON/YAML file (private fields to enforce immutability)
	siteMarker       string
	pipTitle         string
	browserSuffix    string
	browserProcesses []string
	hotkey           string
	scale            float64
	pollInterval     time.Duration
	preTriggerDelay  time.Duration
	discoveryTries   int
	discoveryWait    time.Duration
	alwaysOnTop      bool
	hideFromTaskbar  bool
	targetMonitor    string
	toggleHotkey     string
	notifyCommand    string
	sound            bool
	historyRetention time.Duration

	// Internal fields
	log  *logger.Logger
	path string
}

// New creates a new Config instance with the provided logger.
func New(log *logger.Logger) *Config {
	return &Config{
		log: log,
	}
}

// GetPath returns the file the configuration was loaded from, if any.
func (c *Config) GetPath() string {
	return c.path
}

// GetSiteMarker returns the title substring that marks a video tab.
func (c *Config) GetSiteMarker() string {
	return c.siteMarker
}

// GetPiPTitle returns the exact title of the browser's PiP window.
func (c *Config) GetPiPTitle() string {
	return c.pipTitle
}

// GetBrowserSuffix returns the title suffix browser windows carry.
func (c *Config) GetBrowserSuffix() string {
	return c.browserSuffix
}

// GetBrowserProcesses returns a copy of the owning-process allow-list.
func (c *Config) GetBrowserProcesses() []string {
	return append([]string(nil), c.browserProcesses...)
}

// GetHotkey returns the browser's PiP toggle chord.
func (c *Config) GetHotkey() string {
	return c.hotkey
}

// GetScale returns the fraction of the target monitor the PiP window covers.
func (c *Config) GetScale() float64 {
	return c.scale
}

func (c *Config) GetPollInterval() time.Duration {
	return c.pollInterval
}

func (c *Config) GetPreTriggerDelay() time.Duration {
	return c.preTriggerDelay
}

func (c *Config) GetDiscoveryAttempts() int {
	return c.discoveryTries
}

func (c *Config) GetDiscoveryInterval() time.Duration {
	return c.discoveryWait
}

func (c *Config) GetAlwaysOnTop() bool {
	return c.alwaysOnTop
}

func (c *Config) GetHideFromTaskbar() bool {
	return c.hideFromTaskbar
}

// GetTargetMonitor returns the preferred monitor name; empty means any
// secondary display.
func (c *Config) GetTargetMonitor() string {
	return c.targetMonitor
}

// GetToggleHotkey returns the global start/stop chord; empty disables it.
func (c *Config) GetToggleHotkey() string {
	return c.toggleHotkey
}

// GetNotifyCommand returns the notify command.
func (c *Config) GetNotifyCommand() string {
	return c.notifyCommand
}

func (c *Config) GetSound() bool {
	return c.sound
}

func (c *Config) GetHistoryRetention() time.Duration {
	return c.historyRetention
}

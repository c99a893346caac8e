package config

import (
	"time"

	"pipdock/pkg/logger"
)

const (
	DefaultSiteMarker    = "YouTube"
	DefaultPiPTitle      = "Picture in Picture"
	DefaultBrowserSuffix = " - Google Chrome"
	DefaultHotkey        = "alt+p"
)

// DefaultConfig creates a default configuration.
func DefaultConfig(log *logger.Logger) *Config {
	log.Debug("Creating default configuration")

	return &Config{
		siteMarker:       DefaultSiteMarker,
		pipTitle:         DefaultPiPTitle,
		browserSuffix:    DefaultBrowserSuffix,
		hotkey:           DefaultHotkey,
		scale:            0.75,
		pollInterval:     2 * time.Second,
		preTriggerDelay:  0,
		discoveryTries:   5,
		discoveryWait:    time.Second,
		alwaysOnTop:      true,
		hideFromTaskbar:  false,
		sound:            true,
		historyRetention: 7 * 24 * time.Hour,
		log:              log,
	}
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pipdock/internal/input"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks value ranges and chord syntax.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.siteMarker) == "" {
		return invalid("site_marker must not be empty")
	}
	if c.pipTitle == "" {
		return invalid("pip_title must not be empty")
	}
	if c.scale <= 0 || c.scale > 1 {
		return invalid("scale must be in (0, 1], got %v", c.scale)
	}
	if c.pollInterval < 100*time.Millisecond {
		return invalid("poll_interval must be at least 100ms, got %s", c.pollInterval)
	}
	if c.preTriggerDelay < 0 {
		return invalid("pre_trigger_delay must not be negative")
	}
	if c.discoveryTries < 1 {
		return invalid("discovery_attempts must be at least 1, got %d", c.discoveryTries)
	}
	if c.discoveryWait < 0 {
		return invalid("discovery_interval must not be negative")
	}
	if c.historyRetention < 0 {
		return invalid("history_retention must not be negative")
	}
	if _, err := input.ParseChord(c.hotkey); err != nil {
		return invalid("hotkey: %v", err)
	}
	if c.toggleHotkey != "" {
		if _, err := input.ParseChord(c.toggleHotkey); err != nil {
			return invalid("toggle_hotkey: %v", err)
		}
	}
	return nil
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pipdock/pkg/logger"
)

// Duration is a time.Duration written as a Go duration string ("2s", "500ms")
// in config files.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"2s\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// fileConfig is the on-disk shape of Config.
type fileConfig struct {
	SiteMarker        string   `json:"site_marker" yaml:"site_marker"`
	PiPTitle          string   `json:"pip_title" yaml:"pip_title"`
	BrowserSuffix     string   `json:"browser_suffix" yaml:"browser_suffix"`
	BrowserProcesses  []string `json:"browser_processes" yaml:"browser_processes"`
	Hotkey            string   `json:"hotkey" yaml:"hotkey"`
	Scale             float64  `json:"scale" yaml:"scale"`
	PollInterval      Duration `json:"poll_interval" yaml:"poll_interval"`
	PreTriggerDelay   Duration `json:"pre_trigger_delay" yaml:"pre_trigger_delay"`
	DiscoveryAttempts int      `json:"discovery_attempts" yaml:"discovery_attempts"`
	DiscoveryInterval Duration `json:"discovery_interval" yaml:"discovery_interval"`
	AlwaysOnTop       bool     `json:"always_on_top" yaml:"always_on_top"`
	HideFromTaskbar   bool     `json:"hide_from_taskbar" yaml:"hide_from_taskbar"`
	TargetMonitor     string   `json:"target_monitor" yaml:"target_monitor"`
	ToggleHotkey      string   `json:"toggle_hotkey" yaml:"toggle_hotkey"`
	NotifyCommand     string   `json:"notify_command" yaml:"notify_command"`
	Sound             bool     `json:"sound" yaml:"sound"`
	HistoryRetention  Duration `json:"history_retention" yaml:"history_retention"`
}

func (c *Config) toFile() fileConfig {
	return fileConfig{
		SiteMarker:        c.siteMarker,
		PiPTitle:          c.pipTitle,
		BrowserSuffix:     c.browserSuffix,
		BrowserProcesses:  c.GetBrowserProcesses(),
		Hotkey:            c.hotkey,
		Scale:             c.scale,
		PollInterval:      Duration(c.pollInterval),
		PreTriggerDelay:   Duration(c.preTriggerDelay),
		DiscoveryAttempts: c.discoveryTries,
		DiscoveryInterval: Duration(c.discoveryWait),
		AlwaysOnTop:       c.alwaysOnTop,
		HideFromTaskbar:   c.hideFromTaskbar,
		TargetMonitor:     c.targetMonitor,
		ToggleHotkey:      c.toggleHotkey,
		NotifyCommand:     c.notifyCommand,
		Sound:             c.sound,
		HistoryRetention:  Duration(c.historyRetention),
	}
}

func (c *Config) fromFile(f fileConfig) {
	c.siteMarker = f.SiteMarker
	c.pipTitle = f.PiPTitle
	c.browserSuffix = f.BrowserSuffix
	c.browserProcesses = append([]string(nil), f.BrowserProcesses...)
	c.hotkey = f.Hotkey
	c.scale = f.Scale
	c.pollInterval = time.Duration(f.PollInterval)
	c.preTriggerDelay = time.Duration(f.PreTriggerDelay)
	c.discoveryTries = f.DiscoveryAttempts
	c.discoveryWait = time.Duration(f.DiscoveryInterval)
	c.alwaysOnTop = f.AlwaysOnTop
	c.hideFromTaskbar = f.HideFromTaskbar
	c.targetMonitor = f.TargetMonitor
	c.toggleHotkey = f.ToggleHotkey
	c.notifyCommand = f.NotifyCommand
	c.sound = f.Sound
	c.historyRetention = time.Duration(f.HistoryRetention)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadFromFile loads the configuration from a JSON or YAML file, chosen by
// extension. Keys missing from the file keep their current values.
func (c *Config) LoadFromFile(path string, log *logger.Logger) error {
	log.Debug("Loading configuration from file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("Failed to read config file", err, "path", path)
		return err
	}
	log.Debug("Config file read successfully", "size_bytes", len(data))

	temp := c.toFile()
	if isYAML(path) {
		err = yaml.Unmarshal(data, &temp)
	} else {
		err = json.Unmarshal(data, &temp)
	}
	if err != nil {
		log.Error("Failed to parse config file", err, "path", path)
		return fmt.Errorf("parse %s: %w", path, err)
	}
	log.Debug("Config file parsed successfully")

	c.fromFile(temp)
	c.path = path

	return c.Validate()
}

// Marshal renders the configuration as YAML or JSON.
func (c *Config) Marshal(asYAML bool) ([]byte, error) {
	if asYAML {
		return yaml.Marshal(c.toFile())
	}
	return json.MarshalIndent(c.toFile(), "", "    ")
}

// Save writes the configuration to path in the format its extension implies.
func (c *Config) Save(path string) error {
	data, err := c.Marshal(isYAML(path))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// loadConfigFromPath loads the configuration from a file on top of defaults.
func loadConfigFromPath(path string, log *logger.Logger) (*Config, error) {
	config := DefaultConfig(log)
	if err := config.LoadFromFile(path, log); err != nil {
		return nil, err
	}
	return config, nil
}

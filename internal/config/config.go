// Package config provides YAML-based configuration loading for Switchboard.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Switchboard configuration, loaded from
// switchboard.yaml.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Relay    RelayConfig    `yaml:"relay"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Workflow WorkflowConfig `yaml:"workflow"`
	Announce AnnounceConfig `yaml:"announce"`
}

// StorageConfig selects where record stores live: a local SQLite file
// (default) or a MySQL-compatible server.
type StorageConfig struct {
	Driver   string `yaml:"driver"` // "sqlite" or "mysql"
	Path     string `yaml:"path"`   // sqlite file path
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
}

// RelayConfig holds settings for the streaming relay service.
type RelayConfig struct {
	Port           int `yaml:"port"`
	PollIntervalMS int `yaml:"poll_interval_ms"`
	CaptureLines   int `yaml:"capture_lines"`
}

// PollInterval returns the configured sampling period.
func (r RelayConfig) PollInterval() time.Duration {
	return time.Duration(r.PollIntervalMS) * time.Millisecond
}

// DispatchConfig holds settings for message delivery and name resolution.
type DispatchConfig struct {
	// AliasPrefixes are tried in order when resolving a short session name.
	AliasPrefixes []string `yaml:"alias_prefixes"`
	// DataKey is the session variable used as the single-slot data channel.
	DataKey string `yaml:"data_key"`
}

// WorkflowConfig holds settings for workflow replay.
type WorkflowConfig struct {
	SettleDelayMS int `yaml:"settle_delay_ms"`
}

// SettleDelay returns the pause between workflow steps.
func (w WorkflowConfig) SettleDelay() time.Duration {
	return time.Duration(w.SettleDelayMS) * time.Millisecond
}

// AnnounceConfig configures best-effort outbound notification hooks.
type AnnounceConfig struct {
	// Command is a shell command template, e.g.
	// "notify-send 'Switchboard' '{{.Payload}}'".
	Command string        `yaml:"command"`
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
}

// SlackConfig holds Slack credentials for the announce hook.
type SlackConfig struct {
	BotToken string `yaml:"bot_token"`
	Channel  string `yaml:"channel"`
}

// DiscordConfig holds Discord credentials for the announce hook.
type DiscordConfig struct {
	Token   string `yaml:"token"`
	Channel string `yaml:"channel"`
}

// Load reads a YAML config file from path and returns a validated Config.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Parse(nil)
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse: %w", err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "switchboard.db"
	}
	if c.Storage.Host == "" {
		c.Storage.Host = "127.0.0.1"
	}
	if c.Storage.Port == 0 {
		c.Storage.Port = 3306
	}
	if c.Storage.Database == "" {
		c.Storage.Database = "switchboard"
	}
	if c.Relay.Port == 0 {
		c.Relay.Port = 8700
	}
	if c.Relay.PollIntervalMS == 0 {
		c.Relay.PollIntervalMS = 500
	}
	if c.Relay.CaptureLines == 0 {
		c.Relay.CaptureLines = 50
	}
	if len(c.Dispatch.AliasPrefixes) == 0 {
		c.Dispatch.AliasPrefixes = []string{"sb-", "agent-"}
	}
	if c.Dispatch.DataKey == "" {
		c.Dispatch.DataKey = "SB_DATA"
	}
	if c.Workflow.SettleDelayMS == 0 {
		c.Workflow.SettleDelayMS = 1000
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Storage.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("storage.driver %q must be sqlite or mysql", c.Storage.Driver))
	}
	if c.Relay.Port < 0 || c.Relay.Port > 65535 {
		errs = append(errs, fmt.Sprintf("relay.port %d out of range", c.Relay.Port))
	}
	if c.Relay.PollIntervalMS < 0 {
		errs = append(errs, "relay.poll_interval_ms must be positive")
	}
	if c.Workflow.SettleDelayMS < 0 {
		errs = append(errs, "workflow.settle_delay_ms must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

package config

import (
	"strings"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Driver = %q, want sqlite", cfg.Storage.Driver)
	}
	if cfg.Storage.Path != "switchboard.db" {
		t.Errorf("Path = %q", cfg.Storage.Path)
	}
	if cfg.Relay.Port != 8700 {
		t.Errorf("Port = %d, want 8700", cfg.Relay.Port)
	}
	if got := cfg.Relay.PollInterval(); got != 500*time.Millisecond {
		t.Errorf("PollInterval = %v, want 500ms", got)
	}
	if got := cfg.Workflow.SettleDelay(); got != time.Second {
		t.Errorf("SettleDelay = %v, want 1s", got)
	}
	if cfg.Dispatch.DataKey != "SB_DATA" {
		t.Errorf("DataKey = %q", cfg.Dispatch.DataKey)
	}
	if len(cfg.Dispatch.AliasPrefixes) != 2 || cfg.Dispatch.AliasPrefixes[0] != "sb-" {
		t.Errorf("AliasPrefixes = %v", cfg.Dispatch.AliasPrefixes)
	}
}

func TestParse_Overrides(t *testing.T) {
	data := []byte(`
storage:
  driver: mysql
  host: db.local
  port: 3307
  database: sb_test
relay:
  port: 9000
  poll_interval_ms: 250
dispatch:
  alias_prefixes: ["x-"]
  data_key: SB_SLOT
workflow:
  settle_delay_ms: 50
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Storage.Driver != "mysql" || cfg.Storage.Host != "db.local" || cfg.Storage.Port != 3307 {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Relay.Port != 9000 || cfg.Relay.PollIntervalMS != 250 {
		t.Errorf("Relay = %+v", cfg.Relay)
	}
	if cfg.Dispatch.DataKey != "SB_SLOT" {
		t.Errorf("DataKey = %q", cfg.Dispatch.DataKey)
	}
	if cfg.Workflow.SettleDelayMS != 50 {
		t.Errorf("SettleDelayMS = %d", cfg.Workflow.SettleDelayMS)
	}
}

func TestParse_InvalidDriver(t *testing.T) {
	_, err := Parse([]byte("storage:\n  driver: mongo\n"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "storage.driver") {
		t.Errorf("error = %q", err)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("storage: ["))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.HasPrefix(err.Error(), "config: parse:") {
		t.Errorf("error = %q", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/switchboard.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Driver = %q, want sqlite", cfg.Storage.Driver)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Reader.WidthPct != nil || cfg.Reward.Base != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigParsesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[reader]
width = 0.8
threshold = 0.25
observer = "polling"
poll = "100ms"

[reward]
base = 20.0
multiplier = 2.0
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Reader.WidthPct == nil || *cfg.Reader.WidthPct != 0.8 {
		t.Fatalf("unexpected width %v", cfg.Reader.WidthPct)
	}
	if cfg.Reader.Threshold == nil || *cfg.Reader.Threshold != 0.25 {
		t.Fatalf("unexpected threshold %v", cfg.Reader.Threshold)
	}
	if cfg.Reader.Observer == nil || *cfg.Reader.Observer != "polling" {
		t.Fatalf("unexpected observer %v", cfg.Reader.Observer)
	}
	if cfg.Reader.Poll == nil || *cfg.Reader.Poll != "100ms" {
		t.Fatalf("unexpected poll %v", cfg.Reader.Poll)
	}
	if cfg.Reader.Debug != nil {
		t.Fatalf("expected debug unset")
	}
	if cfg.Reward.Base == nil || *cfg.Reward.Base != 20 || cfg.Reward.Multiplier == nil || *cfg.Reward.Multiplier != 2 {
		t.Fatalf("unexpected reward config %+v", cfg.Reward)
	}
}

func TestLoadConfigRejectsInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[reader\nwidth = "), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to decode config") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "tuiread", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "tuiread", "tuiread.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/state", "tuiread", "tuiread.log") {
		t.Fatalf("unexpected log path %q", got)
	}
}

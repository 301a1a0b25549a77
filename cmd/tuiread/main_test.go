package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuiread/internal/config"
	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/reader"
)

func validConfig() model.Config {
	return model.Config{
		WidthPct:     0.7,
		Threshold:    0.1,
		RewardBase:   50,
		RewardMult:   1.5,
		Observer:     reader.ObserverNative,
		PollInterval: time.Second,
	}
}

func TestValidateConfig(t *testing.T) {
	if err := validateConfig(validConfig()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	cases := map[string]func(*model.Config){
		"width":      func(c *model.Config) { c.WidthPct = 1.5 },
		"threshold":  func(c *model.Config) { c.Threshold = 0 },
		"observer":   func(c *model.Config) { c.Observer = "magic" },
		"poll":       func(c *model.Config) { c.PollInterval = 0 },
		"base":       func(c *model.Config) { c.RewardBase = -1 },
		"multiplier": func(c *model.Config) { c.RewardMult = 0 },
	}
	for name, mutate := range cases {
		cfg := validConfig()
		mutate(&cfg)
		err := validateConfig(cfg)
		if err == nil || !strings.Contains(err.Error(), "--"+name) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var lines []string
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		lines = append(lines, strings.TrimPrefix(line, "# "))
	}
	body := strings.Join(lines[2:], "\n")
	var cfg config.FileConfig
	if _, err := toml.Decode(body, &cfg); err != nil {
		t.Fatalf("uncommented template does not decode: %v\n%s", err, body)
	}
	if cfg.Reader.Observer == nil || *cfg.Reader.Observer != reader.ObserverNative {
		t.Fatalf("unexpected observer %v", cfg.Reader.Observer)
	}
	if cfg.Reader.Poll == nil || *cfg.Reader.Poll != "250ms" {
		t.Fatalf("unexpected poll %v", cfg.Reader.Poll)
	}
	if cfg.Reward.Base == nil || *cfg.Reward.Base != defaultBase {
		t.Fatalf("unexpected base %v", cfg.Reward.Base)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	cmd := &cobra.Command{}
	var width float64
	cmd.Flags().Float64Var(&width, "width", 0.7, "")
	fromFile := 0.5
	applyFloatConfig(cmd, "width", &width, &fromFile)
	if width != 0.5 {
		t.Fatalf("expected config value, got %v", width)
	}
	if err := cmd.Flags().Set("width", "0.9"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	applyFloatConfig(cmd, "width", &width, &fromFile)
	if width != 0.9 {
		t.Fatalf("expected flag to win, got %v", width)
	}
}

func TestApplyDurationConfig(t *testing.T) {
	cmd := &cobra.Command{}
	var poll time.Duration
	cmd.Flags().DurationVar(&poll, "poll", time.Second, "")
	bad := "soon"
	if err := applyDurationConfig(cmd, "poll", &poll, &bad); err == nil {
		t.Fatalf("expected parse error")
	}
	good := "100ms"
	if err := applyDurationConfig(cmd, "poll", &poll, &good); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if poll != 100*time.Millisecond {
		t.Fatalf("expected 100ms, got %v", poll)
	}
}

type memPrefs map[string]string

func (m memPrefs) Preference(_ context.Context, key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memPrefs) SetPreference(_ context.Context, key, value string) error {
	m[key] = value
	return nil
}

func TestUpdateSound(t *testing.T) {
	prefs := memPrefs{}
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	ctx := context.Background()

	if err := updateSound(ctx, cmd, prefs, nil); err != nil {
		t.Fatalf("status: %v", err)
	}
	if err := updateSound(ctx, cmd, prefs, []string{"off"}); err != nil {
		t.Fatalf("off: %v", err)
	}
	if got := out.String(); got != "sound: on\nsound: off\n" {
		t.Fatalf("unexpected output %q", got)
	}
	if prefs["soundEnabled"] != "false" {
		t.Fatalf("expected preference persisted, got %q", prefs["soundEnabled"])
	}
}

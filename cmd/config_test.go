// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml")); err == nil {
		t.Fatal("expected error for explicit missing file")
	}

	// Default-path lookup tolerates a missing file.
	t.Setenv("HOME", t.TempDir())
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig with defaults: %v", err)
	}
	if cfg.PollInterval != defaultPollInterval {
		t.Errorf("PollInterval = %s, want %s", cfg.PollInterval, defaultPollInterval)
	}
	if cfg.Listen != ":8880" {
		t.Errorf("Listen = %q, want :8880", cfg.Listen)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `username: me@example.com
broker: ssl://broker.test:18883
poll_interval: 30s
listen: ":9000"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Username != "me@example.com" {
		t.Errorf("Username = %q", cfg.Username)
	}
	if cfg.Broker != "ssl://broker.test:18883" {
		t.Errorf("Broker = %q", cfg.Broker)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %s, want 30s", cfg.PollInterval)
	}
	if cfg.Listen != ":9000" {
		t.Errorf("Listen = %q, want :9000", cfg.Listen)
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("username: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestConfig_ApplyFlags(t *testing.T) {
	origUser, origBase, origBroker := username, apiBase, broker
	defer func() { username, apiBase, broker = origUser, origBase, origBroker }()

	username = "flag@example.com"
	apiBase = "https://api.test/"
	broker = ""

	cfg := &Config{Username: "file@example.com", Broker: "ssl://file.test:18883"}
	cfg.applyFlags()

	if cfg.Username != "flag@example.com" {
		t.Errorf("Username = %q, flag should win", cfg.Username)
	}
	if cfg.APIBase != "https://api.test/" {
		t.Errorf("APIBase = %q", cfg.APIBase)
	}
	if cfg.Broker != "ssl://file.test:18883" {
		t.Errorf("Broker = %q, empty flag must not clear file value", cfg.Broker)
	}
}

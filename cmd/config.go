// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the YAML config file. Flags override file values; the password
// is usually supplied via EMBER_PASSWORD instead of being stored here.
type Config struct {
	Username string `yaml:"username"`
	Password string `yaml:"password,omitempty"`
	APIBase  string `yaml:"api_base,omitempty"`
	Broker   string `yaml:"broker,omitempty"`

	// PollInterval is how often the long-running commands refresh zone
	// snapshots from the HTTPS API.
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`

	// Listen is the serve command's bind address.
	Listen string `yaml:"listen,omitempty"`
}

const defaultPollInterval = 60 * time.Second

// defaultConfigPath is ~/.config/emberlink/config.yaml.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "emberlink", "config.yaml")
}

// LoadConfig reads the config file. An empty path falls back to the default
// location; a missing file at the default location is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		PollInterval: defaultPollInterval,
		Listen:       ":8880",
	}

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}
	if path == "" {
		return cfg, nil
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	return cfg, nil
}

// applyFlags overlays command-line flags onto the file config.
func (c *Config) applyFlags() {
	if username != "" {
		c.Username = username
	}
	if apiBase != "" {
		c.APIBase = apiBase
	}
	if broker != "" {
		c.Broker = broker
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/openember/emberlink/pkg/embercloud"
)

var (
	cfgPath  string
	username string
	apiBase  string
	broker   string
)

var rootCmd = &cobra.Command{
	Use:   "emberlink",
	Short: "EPH Ember zone controller toolkit",
	Long: `Emberlink - decode, monitor and control EPH Ember heating zones.

Connects to the Ember cloud over HTTPS for zone listings and schedules, and
to the MQTT broker for live point-data telemetry and commands.

Credentials: --username plus the EMBER_PASSWORD environment variable, or an
interactive prompt if the variable is unset. The --password flag is
intentionally not provided to avoid leaking credentials in shell history.
Both can also come from a YAML config file (--config, default
~/.config/emberlink/config.yaml).`,
	Version: "1.0.0",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Config file path")
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "Ember account email")
	rootCmd.PersistentFlags().StringVar(&apiBase, "api-base", "", "HTTPS API base URL override")
	rootCmd.PersistentFlags().StringVar(&broker, "broker", "", "MQTT broker URL override")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// getPassword retrieves the account password from the environment or an
// interactive prompt.
func getPassword() (string, error) {
	if pw := os.Getenv("EMBER_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Not a terminal; fall back to reading a line.
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %v", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// newCloudClient resolves credentials from flags, config file and
// environment, and builds the HTTPS client.
func newCloudClient() (*embercloud.Client, *Config, error) {
	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	cfg.applyFlags()

	if cfg.Username == "" {
		return nil, nil, fmt.Errorf("no username: use --username or a config file")
	}
	if cfg.Password == "" {
		cfg.Password, err = getPassword()
		if err != nil {
			return nil, nil, err
		}
	}

	var opts []embercloud.Option
	if cfg.APIBase != "" {
		opts = append(opts, embercloud.WithBaseURL(cfg.APIBase))
	}
	return embercloud.NewClient(cfg.Username, cfg.Password, opts...), cfg, nil
}

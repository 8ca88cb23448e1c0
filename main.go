// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors
//
// Emberlink - EPH Ember heating controller toolkit
//
// A CLI tool for decoding Ember point-data telemetry, reconciling zone
// state from the cloud API and MQTT broker, and sending zone commands.

package main

import (
	"fmt"
	"os"

	"github.com/openember/emberlink/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

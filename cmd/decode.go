// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openember/emberlink/pkg/pointwire"
)

var decodeCmd = &cobra.Command{
	Use:   "decode [base64-frame...]",
	Short: "Decode point-data frames offline",
	Long: `Decode base64 point-data frames without connecting to anything, for
protocol debugging. Frames are taken from the arguments, or read one per
line from stdin when no arguments are given.

Each record prints with its index name, type tag and interpreted value.
Unknown indices and type tags decode as opaque values; malformed or
truncated frames are reported without aborting the remaining input.`,
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}

func decodeOne(codec *pointwire.Codec, frame string) {
	updates, err := codec.DecodeBase64(frame)

	for _, u := range updates {
		fmt.Println(codec.FormatUpdate(u))
	}
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
	}
}

func runDecode(cmd *cobra.Command, args []string) error {
	codec := pointwire.NewDefaultCodec()

	if len(args) > 0 {
		for _, frame := range args {
			decodeOne(codec, frame)
		}
		return nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		decodeOne(codec, line)
	}
	return scanner.Err()
}

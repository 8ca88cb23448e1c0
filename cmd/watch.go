// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openember/emberlink/pkg/messenger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream live zone telemetry to stdout",
	Long: `Poll the zone list once, subscribe to every zone's telemetry topic and
print decoded point updates as they arrive.

Each update prints with timestamp, field name, index, type and interpreted
value. Snapshots keep refreshing in the background so schedule and mode
changes made elsewhere show up too.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	client, cfg, err := newCloudClient()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess := newSession(client, cfg, nil)
	if err := sess.poll(ctx); err != nil {
		return err
	}

	zones := sess.store.Zones()
	fmt.Printf("Emberlink - Telemetry Watch\n")
	fmt.Printf("Zones: %d, poll interval: %s\n", len(zones), cfg.PollInterval)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	m, err := sess.connectMessenger(ctx, func(d messenger.Delivery) {
		zoneID := sess.zoneIDForMAC(d.MAC)
		name := zoneID
		if z, ok := sess.store.Get(zoneID); ok && z.Name != "" {
			name = z.Name
		}
		for _, u := range d.Updates {
			fmt.Printf("%-14s %s\n", name, sess.codec.FormatUpdate(u))
		}
	})
	if err != nil {
		return err
	}
	defer m.Close()

	go sess.pollLoop(ctx)

	<-ctx.Done()
	m.Close()
	fmt.Printf("\n%s", m.Stats())
	return nil
}

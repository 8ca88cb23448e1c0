// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check schedules and report protocol anomalies",
	Long: `Poll every zone and report:
  - Schedule ordering violations (overlapping or inverted periods)
  - Out-of-range period bounds
  - Point indices with unconfirmed meaning seen on the zone

Violations are reported, never repaired; whether the backend should reject
or correct them is its own policy.

Exit codes:
  0 - No findings
  1 - At least one finding`,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	client, cfg, err := newCloudClient()
	if err != nil {
		return err
	}

	sess := newSession(client, cfg, nil)
	if err := sess.poll(cmd.Context()); err != nil {
		return err
	}

	findings := 0
	for _, id := range sess.store.Zones() {
		z, ok := sess.store.Get(id)
		if !ok {
			continue
		}

		var lines []string
		for _, v := range z.Schedule.Validate() {
			lines = append(lines, fmt.Sprintf("  schedule: %v", v))
		}

		unknown := make([]int, 0, len(z.Unknown))
		for idx := range z.Unknown {
			unknown = append(unknown, int(idx))
		}
		sort.Ints(unknown)
		for _, idx := range unknown {
			lines = append(lines, fmt.Sprintf("  point: %s idx=%d value=%d (meaning unconfirmed)",
				sess.codec.Registry().Name(uint8(idx)), idx, z.Unknown[uint8(idx)]))
		}

		if len(lines) == 0 {
			continue
		}
		findings += len(lines)
		fmt.Printf("%s (%s):\n", z.Name, z.ZoneID)
		for _, line := range lines {
			fmt.Println(line)
		}
	}

	if findings == 0 {
		fmt.Println("No findings")
		return nil
	}
	fmt.Printf("\n%d finding(s)\n", findings)
	return fmt.Errorf("audit found %d issue(s)", findings)
}

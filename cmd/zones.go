// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openember/emberlink/pkg/pointwire"
	"github.com/openember/emberlink/pkg/zonestate"
)

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "List zones and their current state",
	Long: `Poll the Ember cloud once and print a table of every zone: temperatures,
mode, boiler relay and boost state.`,
	RunE: runZones,
}

func init() {
	rootCmd.AddCommand(zonesCmd)
}

func deviceTypeName(dt int) string {
	switch dt {
	case pointwire.DeviceTypeThermostat:
		return "thermostat"
	case pointwire.DeviceTypeHotWater:
		return "hot-water"
	case pointwire.DeviceTypeProgrammer:
		return "programmer"
	case pointwire.DeviceTypeCombiBoiler:
		return "combi"
	case pointwire.DeviceTypeTRV:
		return "trv"
	default:
		return fmt.Sprintf("type %d", dt)
	}
}

func formatMode(z zonestate.ZoneState) string {
	if !z.ModeKnown {
		return "-"
	}
	return z.Mode.String()
}

func formatBoost(z zonestate.ZoneState) string {
	if !z.BoostActive {
		return "-"
	}
	if z.BoostHours > 0 {
		return fmt.Sprintf("%dh", z.BoostHours)
	}
	return "on"
}

func runZones(cmd *cobra.Command, args []string) error {
	client, cfg, err := newCloudClient()
	if err != nil {
		return err
	}

	sess := newSession(client, cfg, nil)
	if err := sess.poll(cmd.Context()); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDEVICE\tCURRENT\tTARGET\tMODE\tRELAY\tBOOST")
	for _, id := range sess.store.Zones() {
		z, ok := sess.store.Get(id)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1f°C\t%.1f°C\t%s\t%s\t%s\n",
			z.ZoneID, z.Name, deviceTypeName(z.DeviceType),
			z.CurrentTemperature, z.TargetTemperature,
			formatMode(z), z.RelayState, formatBoost(z))
	}
	return w.Flush()
}

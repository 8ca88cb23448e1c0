// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/openember/emberlink/pkg/messenger"
	"github.com/openember/emberlink/pkg/pointwire"
	"github.com/openember/emberlink/pkg/zonestate"
)

var (
	setBoostTemp float64
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Send a command to a zone",
}

var setTempCmd = &cobra.Command{
	Use:   "temp <zone> <degrees>",
	Short: "Set a zone's target temperature",
	Args:  cobra.ExactArgs(2),
	RunE:  runSetTemp,
}

var setModeCmd = &cobra.Command{
	Use:   "mode <zone> <auto|all-day|on|off>",
	Short: "Set a zone's operating mode",
	Args:  cobra.ExactArgs(2),
	RunE:  runSetMode,
}

var setBoostCmd = &cobra.Command{
	Use:   "boost <zone> <hours>",
	Short: "Start or cancel a boost",
	Long: `Start a boost for the given number of hours, or cancel with 0.

Hours are clamped to what the device supports: 3 for thermostats and
hot-water zones, 1 for programmers, combi boilers and TRVs. Use
--temperature to also send a boost setpoint.`,
	Args: cobra.ExactArgs(2),
	RunE: runSetBoost,
}

var setAdvanceCmd = &cobra.Command{
	Use:   "advance <zone> <on|off>",
	Short: "Activate or clear schedule advance",
	Args:  cobra.ExactArgs(2),
	RunE:  runSetAdvance,
}

func init() {
	rootCmd.AddCommand(setCmd)
	setCmd.AddCommand(setTempCmd, setModeCmd, setBoostCmd, setAdvanceCmd)
	setBoostCmd.Flags().Float64Var(&setBoostTemp, "temperature", 0, "Boost target temperature in °C")
}

// openZone polls once, resolves the zone and connects the messenger.
func openZone(cmd *cobra.Command, key string) (*session, *messenger.Messenger, zonestate.ZoneState, error) {
	client, cfg, err := newCloudClient()
	if err != nil {
		return nil, nil, zonestate.ZoneState{}, err
	}

	sess := newSession(client, cfg, nil)
	if err := sess.poll(cmd.Context()); err != nil {
		return nil, nil, zonestate.ZoneState{}, err
	}

	zone, err := sess.findZone(key)
	if err != nil {
		return nil, nil, zonestate.ZoneState{}, err
	}

	m, err := sess.connectMessenger(cmd.Context(), nil)
	if err != nil {
		return nil, nil, zonestate.ZoneState{}, err
	}
	return sess, m, zone, nil
}

func sendToZone(sess *session, m *messenger.Messenger, zone zonestate.ZoneState, cmds []pointwire.Command) error {
	addr, ok := sess.address(zone.ZoneID)
	if !ok {
		return fmt.Errorf("zone %s has no broker address", zone.ZoneID)
	}
	return m.SendCommands(addr, cmds)
}

func runSetTemp(cmd *cobra.Command, args []string) error {
	degC, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("temperature %q: %v", args[1], err)
	}

	sess, m, zone, err := openZone(cmd, args[0])
	if err != nil {
		return err
	}
	defer m.Close()

	c, err := pointwire.NewTargetTemperatureCommand(zone.DeviceType, zone.Mode, degC)
	if err != nil {
		return err
	}
	if err := sendToZone(sess, m, zone, []pointwire.Command{c}); err != nil {
		return err
	}
	fmt.Printf("%s: target temperature set to %.1f°C\n", zone.Name, degC)
	return nil
}

func runSetMode(cmd *cobra.Command, args []string) error {
	mode, err := pointwire.ParseZoneMode(args[1])
	if err != nil {
		return err
	}

	sess, m, zone, err := openZone(cmd, args[0])
	if err != nil {
		return err
	}
	defer m.Close()

	c, err := pointwire.NewModeCommand(zone.DeviceType, mode)
	if err != nil {
		return err
	}
	if err := sendToZone(sess, m, zone, []pointwire.Command{c}); err != nil {
		return err
	}
	fmt.Printf("%s: mode set to %s\n", zone.Name, mode)
	return nil
}

func runSetBoost(cmd *cobra.Command, args []string) error {
	hours, err := strconv.Atoi(args[1])
	if err != nil || hours < 0 {
		return fmt.Errorf("hours %q: want a non-negative integer", args[1])
	}

	sess, m, zone, err := openZone(cmd, args[0])
	if err != nil {
		return err
	}
	defer m.Close()

	var boostTemp *float64
	if cmd.Flags().Changed("temperature") {
		boostTemp = &setBoostTemp
	}

	cmds := pointwire.BoostCommands(zone.DeviceType, zone.Mode, hours, boostTemp, time.Now())
	if err := sendToZone(sess, m, zone, cmds); err != nil {
		return err
	}
	if hours == 0 {
		fmt.Printf("%s: boost cancelled\n", zone.Name)
	} else {
		fmt.Printf("%s: boost started (%d records sent)\n", zone.Name, len(cmds))
	}
	return nil
}

func runSetAdvance(cmd *cobra.Command, args []string) error {
	var active bool
	switch args[1] {
	case "on":
		active = true
	case "off":
	default:
		return fmt.Errorf("advance state %q: want on or off", args[1])
	}

	sess, m, zone, err := openZone(cmd, args[0])
	if err != nil {
		return err
	}
	defer m.Close()

	c, err := pointwire.NewAdvanceCommand(zone.DeviceType, active)
	if err != nil {
		return err
	}
	if err := sendToZone(sess, m, zone, []pointwire.Command{c}); err != nil {
		return err
	}
	fmt.Printf("%s: advance %s\n", zone.Name, args[1])
	return nil
}

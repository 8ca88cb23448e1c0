// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package pointwire

import "fmt"

// ZoneMode is the canonical operating mode of a zone. The wire value it maps
// to differs between device families.
type ZoneMode int

// Zone modes.
const (
	ModeAuto ZoneMode = iota
	ModeAllDay
	ModeOn
	ModeOff
)

// String returns the mode name.
func (m ZoneMode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeAllDay:
		return "all-day"
	case ModeOn:
		return "on"
	case ModeOff:
		return "off"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseZoneMode parses a mode name as accepted on the command line.
func ParseZoneMode(s string) (ZoneMode, error) {
	switch s {
	case "auto":
		return ModeAuto, nil
	case "all-day", "allday":
		return ModeAllDay, nil
	case "on":
		return ModeOn, nil
	case "off":
		return ModeOff, nil
	}
	return 0, fmt.Errorf("unknown zone mode %q", s)
}

// ModeFromWire maps a wire mode value to the canonical mode for the given
// device type. The extended families reuse value ranges with different
// meanings, so the device type is required.
func ModeFromWire(deviceType int, value int64) (ZoneMode, error) {
	switch value {
	case 0:
		return ModeAuto, nil
	case 1:
		switch deviceType {
		case DeviceTypeThermostat, DeviceTypeHotWater:
			return ModeAllDay, nil
		case DeviceTypeProgrammer, DeviceTypeTRV:
			return ModeOn, nil
		}
	case 2:
		switch deviceType {
		case DeviceTypeThermostat, DeviceTypeHotWater:
			return ModeOn, nil
		}
	case 3:
		switch deviceType {
		case DeviceTypeThermostat, DeviceTypeHotWater:
			return ModeOff, nil
		}
	case 4:
		switch deviceType {
		case DeviceTypeProgrammer, DeviceTypeCombiBoiler, DeviceTypeTRV:
			return ModeOff, nil
		}
	case 9:
		if deviceType == DeviceTypeCombiBoiler {
			return ModeAllDay, nil
		}
	case 10:
		if deviceType == DeviceTypeCombiBoiler {
			return ModeOn, nil
		}
	}
	return 0, fmt.Errorf("mode value %d not valid for device type %d", value, deviceType)
}

// ModeToWire maps a canonical mode to the wire value for the given device
// type, the inverse of ModeFromWire.
func ModeToWire(deviceType int, mode ZoneMode) (int64, error) {
	switch deviceType {
	case DeviceTypeProgrammer, DeviceTypeTRV:
		switch mode {
		case ModeAuto:
			return 0, nil
		case ModeOn:
			return 1, nil
		case ModeOff:
			return 4, nil
		}
	case DeviceTypeCombiBoiler:
		switch mode {
		case ModeAuto:
			return 0, nil
		case ModeAllDay:
			return 9, nil
		case ModeOn:
			return 10, nil
		case ModeOff:
			return 4, nil
		}
	default:
		switch mode {
		case ModeAuto:
			return 0, nil
		case ModeAllDay:
			return 1, nil
		case ModeOn:
			return 2, nil
		case ModeOff:
			return 3, nil
		}
	}
	return 0, fmt.Errorf("mode %s not supported by device type %d", mode, deviceType)
}

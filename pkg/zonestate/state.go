// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

// Package zonestate owns the canonical state of each heating zone. It merges
// decoded point-data batches arriving over MQTT with full zone snapshots from
// the polled HTTPS API and resolves conflicts by a fixed field-level source
// priority: telemetry is authoritative for live readings (current temperature,
// target temperature, relay state), polled snapshots are authoritative for
// schedule shape and mode. Timestamps are never compared across transports;
// their latency characteristics differ too much for recency to mean anything.
package zonestate

import (
	"time"

	"github.com/openember/emberlink/pkg/pointwire"
	"github.com/openember/emberlink/pkg/schedule"
)

// RelayState is the boiler relay position reported by the zone.
type RelayState int

// Relay states. RelayUnknown means no transport has reported the relay yet.
const (
	RelayUnknown RelayState = iota
	RelayOff
	RelayOn
)

// String returns the relay state name.
func (r RelayState) String() string {
	switch r {
	case RelayOff:
		return "off"
	case RelayOn:
		return "on"
	default:
		return "unknown"
	}
}

// ZoneState is the canonical per-zone record. Consumers only ever see deep
// copies; all mutation happens inside the Store's ingest operations.
type ZoneState struct {
	ZoneID string
	Name   string

	// DeviceType is the product family reported by the polled API (0 until
	// the first snapshot arrives). Point indices 7 and 8 change meaning
	// between the classic and extended families, so routing depends on it.
	DeviceType int

	CurrentTemperature float64
	TargetTemperature  float64
	Mode               pointwire.ZoneMode
	ModeKnown          bool
	RelayState         RelayState

	AdvanceActive bool

	BoostActive            bool
	BoostHours             int
	BoostTargetTemperature float64
	BoostStart             time.Time

	// AutoTargetTemperature is the schedule-driven setpoint reported by
	// extended devices alongside the manual one.
	AutoTargetTemperature float64

	// MinTemperature and MaxTemperature are the setpoint limits extended
	// devices report on indices 8 and 7.
	MinTemperature float64
	MaxTemperature float64

	Schedule schedule.Week

	// Unknown carries raw values for indices whose meaning is unconfirmed,
	// keyed by point index. Kept rather than dropped so newly decoded
	// indices survive a registry upgrade without data loss.
	Unknown map[uint8]int64

	LastUpdated time.Time
	LastSource  pointwire.Source

	// Revision increases by one on every ingest that changed a substantive
	// field. Re-applying an identical batch does not bump it.
	Revision uint64
}

// clone returns a deep copy safe to hand to consumers.
func (z ZoneState) clone() ZoneState {
	out := z
	if z.Unknown != nil {
		out.Unknown = make(map[uint8]int64, len(z.Unknown))
		for k, v := range z.Unknown {
			out.Unknown[k] = v
		}
	}
	return out
}

// Snapshot is the scalar-field view of one polled zone object. Pointer fields
// distinguish absent from zero: the aggregator never clears a field the
// snapshot does not carry.
type Snapshot struct {
	Name       string
	DeviceType int

	Mode               *pointwire.ZoneMode
	CurrentTemperature *float64
	TargetTemperature  *float64
	RelayState         *RelayState
	BoostActive        *bool

	Schedule *schedule.Week

	// Taken is when the snapshot was fetched.
	Taken time.Time
}

// extendedFamily reports whether the device type uses the extended point
// index layout (mode on 11, setpoints on 12/17). Unknown device types are
// routed as classic; classic-only indices do not collide with extended ones.
func extendedFamily(deviceType int) bool {
	switch deviceType {
	case pointwire.DeviceTypeProgrammer, pointwire.DeviceTypeCombiBoiler, pointwire.DeviceTypeTRV:
		return true
	}
	return false
}

// limitFamily reports whether indices 7 and 8 carry the setpoint limits.
// TRVs are extended but do not publish limits there.
func limitFamily(deviceType int) bool {
	return deviceType == pointwire.DeviceTypeProgrammer || deviceType == pointwire.DeviceTypeCombiBoiler
}

// modeDeviceType returns the device type to interpret mode wire values with,
// defaulting to the classic thermostat family before the first snapshot has
// reported a real one.
func modeDeviceType(deviceType int) int {
	if deviceType == 0 {
		return pointwire.DeviceTypeThermostat
	}
	return deviceType
}

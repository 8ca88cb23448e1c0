// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package embercloud

import (
	"fmt"
	"time"

	"github.com/openember/emberlink/pkg/pointwire"
	"github.com/openember/emberlink/pkg/schedule"
	"github.com/openember/emberlink/pkg/zonestate"
)

// decodeClock converts the backend's decimal clock form (173 is 17:30) to
// the ten-minute slot encoding used everywhere else.
func decodeClock(v int) (int, error) {
	hour := v / 10
	minute := (v % 10) * 10
	return schedule.EncodeClock(hour, minute)
}

// program converts one period, treating an unconfigured period as disabled.
func program(p *Program) (schedule.Period, string, error) {
	if p == nil || p.StartTime == nil || p.EndTime == nil {
		return schedule.Period{}, "", nil
	}
	start, err := decodeClock(*p.StartTime)
	if err != nil {
		return schedule.Period{}, "", fmt.Errorf("start time %d: %w", *p.StartTime, err)
	}
	end, err := decodeClock(*p.EndTime)
	if err != nil {
		return schedule.Period{}, "", fmt.Errorf("end time %d: %w", *p.EndTime, err)
	}
	return schedule.Period{Start: start, End: end}, p.PmName, nil
}

// Week converts the zone's deviceDays into a schedule week. Days absent from
// the payload stay zeroed (all periods disabled).
func (z *Zone) Week() (schedule.Week, error) {
	var week schedule.Week
	for i := range week {
		week[i].Weekday = time.Weekday(i)
	}

	for _, dd := range z.DeviceDays {
		if dd.DayType < 0 || dd.DayType > 6 {
			return week, fmt.Errorf("zone %s: day type %d out of range", z.ID(), dd.DayType)
		}
		day := &week[dd.DayType]
		for slot, p := range []*Program{dd.P1, dd.P2, dd.P3} {
			period, name, err := program(p)
			if err != nil {
				return week, fmt.Errorf("zone %s %s P%d: %w", z.ID(), day.Weekday, slot+1, err)
			}
			day.Periods[slot] = period
			day.Names[slot] = name
		}
	}
	return week, nil
}

// modeIndex returns the point index carrying the zone's mode.
func modeIndex(deviceType int) uint8 {
	switch deviceType {
	case pointwire.DeviceTypeProgrammer, pointwire.DeviceTypeCombiBoiler, pointwire.DeviceTypeTRV:
		return pointwire.IndexModeExt
	}
	return pointwire.IndexMode
}

// boilerIndex returns the point index carrying the boiler relay state.
func boilerIndex(deviceType int) uint8 {
	switch deviceType {
	case pointwire.DeviceTypeProgrammer, pointwire.DeviceTypeCombiBoiler:
		return pointwire.IndexBoilerExt
	}
	return pointwire.IndexBoilerState
}

// boostHoursIndex returns the point index carrying the boost hour count.
func boostHoursIndex(deviceType int) uint8 {
	switch deviceType {
	case pointwire.DeviceTypeProgrammer, pointwire.DeviceTypeCombiBoiler, pointwire.DeviceTypeTRV:
		return pointwire.IndexBoostHoursExt
	}
	return pointwire.IndexBoostHours
}

// Snapshot converts the zone into the aggregator's polled form. Scalars the
// payload does not carry are left nil so the aggregator never clears them.
// Schedule conversion failures drop only the schedule, not the scalars.
func (z *Zone) Snapshot(taken time.Time) (zonestate.Snapshot, error) {
	snap := zonestate.Snapshot{
		Name:       z.Name,
		DeviceType: z.DeviceType,
		Taken:      taken,
	}

	if raw, ok := z.pointValue(modeIndex(z.DeviceType)); ok {
		if mode, err := pointwire.ModeFromWire(z.DeviceType, raw); err == nil {
			snap.Mode = &mode
		}
	}
	if raw, ok := z.pointValue(pointwire.IndexCurrentTemp); ok {
		t := float64(raw) / 10
		snap.CurrentTemperature = &t
	}
	if raw, ok := z.pointValue(pointwire.IndexTargetTemp); ok {
		t := float64(raw) / 10
		snap.TargetTemperature = &t
	}
	if raw, ok := z.pointValue(boilerIndex(z.DeviceType)); ok {
		var relay zonestate.RelayState
		switch raw {
		case pointwire.BoilerValueOff:
			relay = zonestate.RelayOff
		case pointwire.BoilerValueOn:
			relay = zonestate.RelayOn
		}
		if relay != zonestate.RelayUnknown {
			snap.RelayState = &relay
		}
	}
	if raw, ok := z.pointValue(boostHoursIndex(z.DeviceType)); ok {
		active := raw > 0
		snap.BoostActive = &active
	}

	week, err := z.Week()
	if err != nil {
		return snap, err
	}
	snap.Schedule = &week
	return snap, nil
}

// PointUpdates converts the zone's pointDataList into decoded updates with
// the polled source, for display paths that want the raw field view. Entries
// whose index has no registered type are carried as opaque values.
func (z *Zone) PointUpdates(codec *pointwire.Codec, taken time.Time) []pointwire.PointUpdate {
	updates := make([]pointwire.PointUpdate, 0, len(z.PointDataList))

	for _, d := range z.PointDataList {
		idx, err := d.PointIndex.Int64()
		if err != nil || idx < 0 || idx > 255 {
			continue
		}
		raw, err := d.Value.Int64()
		if err != nil {
			continue
		}

		index := uint8(idx)
		u := pointwire.PointUpdate{
			Index:     index,
			Value:     pointwire.Value{Kind: pointwire.KindOpaque, Raw: raw},
			Timestamp: taken,
			Source:    pointwire.SourcePolled,
		}
		if entry, err := codec.Registry().Resolve(index); err == nil {
			if pt, err := codec.Types().Resolve(entry.Type); err == nil {
				u.Type = entry.Type
				u.Value = pt.FromRaw(raw)
			}
		}
		updates = append(updates, u)
	}
	return updates
}

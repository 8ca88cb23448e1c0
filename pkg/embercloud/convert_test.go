// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package embercloud

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/openember/emberlink/pkg/pointwire"
	"github.com/openember/emberlink/pkg/schedule"
	"github.com/openember/emberlink/pkg/zonestate"
)

func intPtr(v int) *int { return &v }

func datum(index uint8, value int64) PointDatum {
	return PointDatum{
		PointIndex: json.Number(strconv.Itoa(int(index))),
		Value:      json.Number(strconv.FormatInt(value, 10)),
	}
}

func TestWeek(t *testing.T) {
	z := Zone{
		ZoneID: "1",
		DeviceDays: []DeviceDay{
			{
				DayType: 1, // Monday
				P1:      &Program{StartTime: intPtr(70), EndTime: intPtr(82), PmName: "Morning"},
				P2:      &Program{StartTime: intPtr(173), EndTime: intPtr(220), PmName: "Evening"},
				P3:      &Program{StartTime: intPtr(0), EndTime: intPtr(0)},
			},
		},
	}

	week, err := z.Week()
	if err != nil {
		t.Fatalf("Week: %v", err)
	}

	mon := week[1]
	if mon.Weekday != time.Monday {
		t.Errorf("weekday = %v", mon.Weekday)
	}
	// 070 is 07:00 (slot 42), 082 is 08:20 (slot 50).
	if mon.Periods[0] != (schedule.Period{Start: 42, End: 50}) {
		t.Errorf("P1 = %+v", mon.Periods[0])
	}
	// 173 is 17:30 (slot 105), 220 is 22:00 (slot 132).
	if mon.Periods[1] != (schedule.Period{Start: 105, End: 132}) {
		t.Errorf("P2 = %+v", mon.Periods[1])
	}
	if mon.Periods[2].Enabled() {
		t.Error("P3 should be disabled")
	}
	if mon.Names[0] != "Morning" || mon.Names[1] != "Evening" {
		t.Errorf("names = %v", mon.Names)
	}

	// Days absent from the payload stay disabled but keep their weekday.
	if week[5].Weekday != time.Friday || week[5].Periods[0].Enabled() {
		t.Errorf("friday = %+v", week[5])
	}
}

func TestWeek_NilPeriodsDisabled(t *testing.T) {
	z := Zone{DeviceDays: []DeviceDay{{DayType: 0}}}
	week, err := z.Week()
	if err != nil {
		t.Fatalf("Week: %v", err)
	}
	for _, p := range week[0].Periods {
		if p.Enabled() {
			t.Errorf("period %+v should be disabled", p)
		}
	}
}

func TestWeek_BadDayType(t *testing.T) {
	z := Zone{ZoneID: "9", DeviceDays: []DeviceDay{{DayType: 7}}}
	if _, err := z.Week(); err == nil {
		t.Fatal("want error for day type 7")
	}
}

func TestSnapshot_ClassicZone(t *testing.T) {
	z := Zone{
		ZoneID:     "1",
		Name:       "Lounge",
		DeviceType: pointwire.DeviceTypeThermostat,
		PointDataList: []PointDatum{
			datum(pointwire.IndexCurrentTemp, 195),
			datum(pointwire.IndexTargetTemp, 210),
			datum(pointwire.IndexMode, 0),
			datum(pointwire.IndexBoilerState, 2),
			datum(pointwire.IndexBoostHours, 0),
		},
	}

	taken := time.Now()
	snap, err := z.Snapshot(taken)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if snap.Name != "Lounge" || snap.DeviceType != pointwire.DeviceTypeThermostat {
		t.Errorf("identity = %q / %d", snap.Name, snap.DeviceType)
	}
	if snap.CurrentTemperature == nil || *snap.CurrentTemperature != 19.5 {
		t.Errorf("current = %v", snap.CurrentTemperature)
	}
	if snap.TargetTemperature == nil || *snap.TargetTemperature != 21.0 {
		t.Errorf("target = %v", snap.TargetTemperature)
	}
	if snap.Mode == nil || *snap.Mode != pointwire.ModeAuto {
		t.Errorf("mode = %v", snap.Mode)
	}
	if snap.RelayState == nil || *snap.RelayState != zonestate.RelayOn {
		t.Errorf("relay = %v", snap.RelayState)
	}
	if snap.BoostActive == nil || *snap.BoostActive {
		t.Errorf("boost = %v", snap.BoostActive)
	}
	if snap.Schedule == nil {
		t.Error("schedule missing")
	}
}

func TestSnapshot_CombiUsesExtendedIndices(t *testing.T) {
	z := Zone{
		ZoneID:     "2",
		DeviceType: pointwire.DeviceTypeCombiBoiler,
		PointDataList: []PointDatum{
			datum(pointwire.IndexModeExt, 10), // on, in combi terms
			datum(pointwire.IndexBoilerExt, 1),
			datum(pointwire.IndexMode, 300), // max temp limit, not a mode
		},
	}

	snap, err := z.Snapshot(time.Now())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Mode == nil || *snap.Mode != pointwire.ModeOn {
		t.Errorf("mode = %v", snap.Mode)
	}
	if snap.RelayState == nil || *snap.RelayState != zonestate.RelayOff {
		t.Errorf("relay = %v", snap.RelayState)
	}
}

func TestSnapshot_AbsentScalarsNil(t *testing.T) {
	z := Zone{ZoneID: "3", DeviceType: pointwire.DeviceTypeThermostat}
	snap, err := z.Snapshot(time.Now())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.CurrentTemperature != nil || snap.TargetTemperature != nil ||
		snap.Mode != nil || snap.RelayState != nil || snap.BoostActive != nil {
		t.Errorf("scalars should be nil: %+v", snap)
	}
}

func TestPointUpdates(t *testing.T) {
	codec := pointwire.NewDefaultCodec()
	z := Zone{
		ZoneID: "1",
		PointDataList: []PointDatum{
			datum(pointwire.IndexCurrentTemp, 206),
			datum(99, 7),
		},
	}

	taken := time.Now()
	updates := z.PointUpdates(codec, taken)
	if len(updates) != 2 {
		t.Fatalf("updates = %+v", updates)
	}

	if updates[0].Index != pointwire.IndexCurrentTemp ||
		updates[0].Value.Kind != pointwire.KindScaledTemperature ||
		updates[0].Value.Temp != 20.6 {
		t.Errorf("update 0 = %+v", updates[0])
	}
	if updates[0].Source != pointwire.SourcePolled {
		t.Errorf("source = %v", updates[0].Source)
	}
	if updates[1].Index != 99 || updates[1].Value.Kind != pointwire.KindOpaque ||
		updates[1].Value.Raw != 7 {
		t.Errorf("update 1 = %+v", updates[1])
	}
}

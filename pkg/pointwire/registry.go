// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package pointwire

import "fmt"

// PointIndex describes the semantics of one numeric field index. Known is
// false for indices whose meaning is only partially reverse-engineered; their
// values are still decoded and carried, just without interpretation.
type PointIndex struct {
	// Index is the field identifier carried in each record.
	Index uint8

	// Name is the semantic label, e.g. "TargetTemperature".
	Name string

	// Type is the expected point type tag, used on the encode path.
	Type uint8

	// Known reports whether the index's meaning is confirmed.
	Known bool
}

// Registry maps point indices to their descriptors. Like TypeTable it is
// populated at construction and never mutated, so lookups are safe from any
// goroutine. Newly discovered indices are added here, not at runtime.
type Registry struct {
	points map[uint8]PointIndex
}

// NewRegistry returns the registry of indices observed across the known
// device families (3-18). Several indices are shared between families with
// different meanings; the classic-thermostat meaning names the entry and
// family-specific resolution goes through FunctionIndex.
func NewRegistry() *Registry {
	r := &Registry{points: make(map[uint8]PointIndex)}
	for _, p := range []PointIndex{
		{Index: IndexScheduleSum, Name: "ScheduleChecksum", Type: TagSmallInt, Known: false},
		{Index: IndexAdvanceActive, Name: "AdvanceActive", Type: TagSmallInt, Known: true},
		{Index: IndexCurrentTemp, Name: "CurrentTemperature", Type: TagTempRO, Known: true},
		{Index: IndexTargetTemp, Name: "TargetTemperature", Type: TagTempRW, Known: true},
		{Index: IndexMode, Name: "Mode", Type: TagSmallInt, Known: true},
		{Index: IndexBoostHours, Name: "BoostHours", Type: TagSmallInt, Known: true},
		{Index: IndexBoostTime, Name: "BoostTime", Type: TagTimestamp, Known: true},
		{Index: IndexBoilerState, Name: "BoilerState", Type: TagSmallInt, Known: true},
		{Index: IndexModeExt, Name: "ModeExtended", Type: TagSmallInt, Known: true},
		{Index: IndexManualSetTemp, Name: "ManualSetpoint", Type: TagTempRW, Known: true},
		{Index: IndexBoostHoursExt, Name: "BoostHoursExtended", Type: TagSmallInt, Known: true},
		{Index: IndexBoostTemp, Name: "BoostTemperature", Type: TagTempRW, Known: true},
		{Index: IndexBoostTimeExt, Name: "BoostTimeExtended", Type: TagTimestamp, Known: false},
		{Index: IndexStatusBitmap, Name: "StatusBitmap", Type: TagTimestamp, Known: false},
		{Index: IndexAutoSetTemp, Name: "AutoSetpoint", Type: TagTempRW, Known: true},
		{Index: IndexBoilerExt, Name: "BoilerStateExtended", Type: TagSmallInt, Known: false},
	} {
		r.points[p.Index] = p
	}
	return r
}

// Resolve looks up an index descriptor. ErrUnknownIndex is not fatal to
// decoding; callers that hit it treat the record as opaque.
func (r *Registry) Resolve(index uint8) (PointIndex, error) {
	p, ok := r.points[index]
	if !ok {
		return PointIndex{}, fmt.Errorf("index %d: %w", index, ErrUnknownIndex)
	}
	return p, nil
}

// Name returns the semantic label for an index, or a placeholder for
// unregistered ones.
func (r *Registry) Name(index uint8) string {
	if p, ok := r.points[index]; ok {
		return p.Name
	}
	return fmt.Sprintf("Point%d", index)
}

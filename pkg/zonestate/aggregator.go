// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package zonestate

import (
	"sort"
	"sync"
	"time"

	"github.com/openember/emberlink/pkg/pointwire"
)

// fields telemetry has reported at least once, tracked per zone so polled
// snapshots know which scalars they may still seed.
type fieldMask uint8

const (
	fieldCurrentTemp fieldMask = 1 << iota
	fieldTargetTemp
	fieldRelay
)

type record struct {
	mu            sync.Mutex
	state         ZoneState
	seenTelemetry fieldMask
}

// WatchFunc is called after an ingest that changed a zone, outside any lock.
type WatchFunc func(zoneID string, revision uint64)

// Store is the zone state aggregator. The outer map lock is held only long
// enough to find or create a zone record; all merging happens under the
// zone's own mutex, so ingests for different zones never block each other.
type Store struct {
	mu       sync.RWMutex
	zones    map[string]*record
	watchers []WatchFunc

	// now is swappable for tests.
	now func() time.Time
}

// NewStore returns an empty aggregator.
func NewStore() *Store {
	return &Store{
		zones: make(map[string]*record),
		now:   time.Now,
	}
}

// Watch registers a change callback. Callbacks fire after the ingest that
// bumped the revision has released the zone lock, so they may call Get.
func (s *Store) Watch(fn WatchFunc) {
	s.mu.Lock()
	s.watchers = append(s.watchers, fn)
	s.mu.Unlock()
}

func (s *Store) notify(zoneID string, revision uint64) {
	s.mu.RLock()
	watchers := s.watchers
	s.mu.RUnlock()
	for _, fn := range watchers {
		fn(zoneID, revision)
	}
}

// getOrCreate finds the zone record, implicitly creating it on first
// observation. Telemetry can arrive before the first polled snapshot, so
// creation from either transport path is the normal case, not an error.
func (s *Store) getOrCreate(zoneID string) *record {
	s.mu.RLock()
	r := s.zones[zoneID]
	s.mu.RUnlock()
	if r != nil {
		return r
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if r = s.zones[zoneID]; r == nil {
		r = &record{state: ZoneState{ZoneID: zoneID, Unknown: make(map[uint8]int64)}}
		s.zones[zoneID] = r
	}
	return r
}

// ApplyTelemetry merges one decoded point-data batch into the zone,
// creating it if unseen. The batch is applied atomically under the zone
// lock. Indices with unconfirmed meaning are retained in the Unknown map
// rather than dropped.
func (s *Store) ApplyTelemetry(zoneID string, updates []pointwire.PointUpdate) {
	if len(updates) == 0 {
		return
	}
	r := s.getOrCreate(zoneID)

	r.mu.Lock()
	changed := false
	for _, u := range updates {
		if r.applyPoint(u) {
			changed = true
		}
	}
	r.state.LastUpdated = s.now()
	r.state.LastSource = pointwire.SourceTelemetry
	if changed {
		r.state.Revision++
	}
	revision := r.state.Revision
	r.mu.Unlock()

	if changed {
		s.notify(zoneID, revision)
	}
}

// applyPoint routes one update into the state record and reports whether a
// substantive field changed. Caller holds the zone lock.
func (r *record) applyPoint(u pointwire.PointUpdate) bool {
	z := &r.state
	v := u.Value

	if v.Kind == pointwire.KindOpaque {
		return r.setUnknown(u.Index, v.Raw)
	}

	ext := extendedFamily(z.DeviceType)

	switch u.Index {
	case pointwire.IndexAdvanceActive:
		// Tag 1 decodes as an integer kind, so the flag comes off the raw
		// wire value rather than Value.Bool.
		return setBool(&z.AdvanceActive, v.Raw != 0)

	case pointwire.IndexCurrentTemp:
		r.seenTelemetry |= fieldCurrentTemp
		return setFloat(&z.CurrentTemperature, v.Temp)

	case pointwire.IndexTargetTemp:
		r.seenTelemetry |= fieldTargetTemp
		return setFloat(&z.TargetTemperature, v.Temp)

	case pointwire.IndexMode: // IndexMaxTempExt on programmers and combi boilers
		if ext {
			if limitFamily(z.DeviceType) {
				return setFloat(&z.MaxTemperature, v.Temp)
			}
			return r.setUnknown(u.Index, v.Raw)
		}
		return r.setMode(v.Raw, u.Index)

	case pointwire.IndexBoostHours: // IndexMinTempExt on programmers and combi boilers
		if ext {
			if limitFamily(z.DeviceType) {
				return setFloat(&z.MinTemperature, v.Temp)
			}
			return r.setUnknown(u.Index, v.Raw)
		}
		return r.setBoostHours(v.Raw)

	case pointwire.IndexBoostTime:
		return setTime(&z.BoostStart, v.Time)

	case pointwire.IndexBoilerState:
		r.seenTelemetry |= fieldRelay
		switch v.Raw {
		case pointwire.BoilerValueOff:
			return setRelay(&z.RelayState, RelayOff)
		case pointwire.BoilerValueOn:
			return setRelay(&z.RelayState, RelayOn)
		}
		return r.setUnknown(u.Index, v.Raw)

	case pointwire.IndexModeExt:
		return r.setMode(v.Raw, u.Index)

	case pointwire.IndexManualSetTemp:
		r.seenTelemetry |= fieldTargetTemp
		return setFloat(&z.TargetTemperature, v.Temp)

	case pointwire.IndexBoostHoursExt:
		return r.setBoostHours(v.Raw)

	case pointwire.IndexBoostTemp:
		return setFloat(&z.BoostTargetTemperature, v.Temp)

	case pointwire.IndexAutoSetTemp:
		changed := setFloat(&z.AutoTargetTemperature, v.Temp)
		if z.ModeKnown && z.Mode == pointwire.ModeAuto {
			r.seenTelemetry |= fieldTargetTemp
			if setFloat(&z.TargetTemperature, v.Temp) {
				changed = true
			}
		}
		return changed
	}

	// Unconfirmed indices (schedule checksum, status bitmap, extended
	// boiler and boost time) and anything not yet in the registry.
	return r.setUnknown(u.Index, v.Raw)
}

func (r *record) setMode(raw int64, index uint8) bool {
	mode, err := pointwire.ModeFromWire(modeDeviceType(r.state.DeviceType), raw)
	if err != nil {
		// Unmappable mode value for this family; keep the raw value
		// so it is not silently lost.
		return r.setUnknown(index, raw)
	}
	changed := !r.state.ModeKnown || r.state.Mode != mode
	r.state.Mode = mode
	r.state.ModeKnown = true
	return changed
}

func (r *record) setBoostHours(raw int64) bool {
	hours := int(raw)
	changed := r.state.BoostHours != hours || r.state.BoostActive != (hours > 0)
	r.state.BoostHours = hours
	r.state.BoostActive = hours > 0
	return changed
}

func (r *record) setUnknown(index uint8, raw int64) bool {
	prev, ok := r.state.Unknown[index]
	r.state.Unknown[index] = raw
	return !ok || prev != raw
}

func setFloat(dst *float64, v float64) bool {
	changed := *dst != v
	*dst = v
	return changed
}

func setBool(dst *bool, v bool) bool {
	changed := *dst != v
	*dst = v
	return changed
}

func setTime(dst *time.Time, v time.Time) bool {
	changed := !dst.Equal(v)
	*dst = v
	return changed
}

func setRelay(dst *RelayState, v RelayState) bool {
	changed := *dst != v
	*dst = v
	return changed
}

// ApplySnapshot merges one polled zone snapshot, creating the zone if
// unseen. The schedule and mode are adopted wholesale; current temperature,
// target temperature and relay state are adopted only while telemetry has
// never reported them. Fields absent from the snapshot are left untouched.
func (s *Store) ApplySnapshot(zoneID string, snap Snapshot) {
	r := s.getOrCreate(zoneID)

	r.mu.Lock()
	z := &r.state
	changed := false

	if snap.Name != "" && z.Name != snap.Name {
		z.Name = snap.Name
		changed = true
	}
	if snap.DeviceType != 0 && z.DeviceType != snap.DeviceType {
		z.DeviceType = snap.DeviceType
		changed = true
	}

	if snap.Mode != nil {
		if !z.ModeKnown || z.Mode != *snap.Mode {
			z.Mode = *snap.Mode
			z.ModeKnown = true
			changed = true
		}
	}
	if snap.Schedule != nil && z.Schedule != *snap.Schedule {
		z.Schedule = *snap.Schedule
		changed = true
	}

	if snap.CurrentTemperature != nil && r.seenTelemetry&fieldCurrentTemp == 0 {
		if setFloat(&z.CurrentTemperature, *snap.CurrentTemperature) {
			changed = true
		}
	}
	if snap.TargetTemperature != nil && r.seenTelemetry&fieldTargetTemp == 0 {
		if setFloat(&z.TargetTemperature, *snap.TargetTemperature) {
			changed = true
		}
	}
	if snap.RelayState != nil && r.seenTelemetry&fieldRelay == 0 {
		if setRelay(&z.RelayState, *snap.RelayState) {
			changed = true
		}
	}
	if snap.BoostActive != nil && z.BoostActive != *snap.BoostActive {
		z.BoostActive = *snap.BoostActive
		changed = true
	}

	z.LastUpdated = s.now()
	z.LastSource = pointwire.SourcePolled
	if changed {
		z.Revision++
	}
	revision := z.Revision
	r.mu.Unlock()

	if changed {
		s.notify(zoneID, revision)
	}
}

// Rekey moves a zone's record to a new ID. Telemetry arriving before the
// first polled snapshot is keyed by a transport address; once polling maps
// that address to the real zone ID, the accrued state moves across instead
// of stranding under the old key. When a record already exists under the
// new ID the stale old record is dropped, since the established record is
// the one both transports have been feeding. Reports whether the old
// record was migrated.
func (s *Store) Rekey(oldID, newID string) bool {
	if oldID == newID || oldID == "" || newID == "" {
		return false
	}

	s.mu.Lock()
	r, ok := s.zones[oldID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.zones, oldID)
	if _, exists := s.zones[newID]; exists {
		s.mu.Unlock()
		return false
	}
	s.zones[newID] = r
	s.mu.Unlock()

	r.mu.Lock()
	r.state.ZoneID = newID
	r.mu.Unlock()
	return true
}

// Get returns a deep-copied snapshot of the zone's state.
func (s *Store) Get(zoneID string) (ZoneState, bool) {
	s.mu.RLock()
	r := s.zones[zoneID]
	s.mu.RUnlock()
	if r == nil {
		return ZoneState{}, false
	}

	r.mu.Lock()
	state := r.state.clone()
	r.mu.Unlock()
	return state, true
}

// Zones returns the known zone IDs in sorted order.
func (s *Store) Zones() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.zones))
	for id := range s.zones {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Revision returns the zone's current revision counter, 0 for unseen zones.
func (s *Store) Revision(zoneID string) uint64 {
	s.mu.RLock()
	r := s.zones[zoneID]
	s.mu.RUnlock()
	if r == nil {
		return 0
	}

	r.mu.Lock()
	rev := r.state.Revision
	r.mu.Unlock()
	return rev
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

// Package schedule implements the Ember heating schedule encoding.
//
// The wire represents times of day as ten-minute slots: a day has 144 slots,
// and a schedule time is minutes-since-midnight divided by ten. Each day
// carries up to three periods (P1-P3) in fixed positions; a period whose
// start equals its end is disabled, which is a valid state and not an error.
package schedule

import (
	"errors"
	"fmt"
	"time"
)

// Slot granularity.
const (
	SlotMinutes = 10
	SlotsPerDay = 24 * 60 / SlotMinutes // 144

	// MaxEncoded is the highest valid encoded time (23:50).
	MaxEncoded = SlotsPerDay - 1

	// PeriodsPerDay is the fixed number of period slots per day.
	PeriodsPerDay = 3
)

// Codec errors.
var (
	// ErrInvalidGranularity is returned when a wall-clock time is not on a
	// ten-minute boundary. The codec never rounds; quantizing is the
	// caller's job.
	ErrInvalidGranularity = errors.New("time not on a 10-minute boundary")

	// ErrClockRange is returned for an out-of-range hour or minute.
	ErrClockRange = errors.New("clock time out of range")

	// ErrEncodedRange is returned for an encoded value outside [0,143].
	ErrEncodedRange = errors.New("encoded time out of range")
)

// EncodeClock converts a wall-clock time of day to its encoded slot number.
func EncodeClock(hour, minute int) (int, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%02d:%02d: %w", hour, minute, ErrClockRange)
	}
	if minute%SlotMinutes != 0 {
		return 0, fmt.Errorf("%02d:%02d: %w", hour, minute, ErrInvalidGranularity)
	}
	return (hour*60 + minute) / SlotMinutes, nil
}

// DecodeClock converts an encoded slot number back to hour and minute.
func DecodeClock(encoded int) (hour, minute int, err error) {
	if encoded < 0 || encoded > MaxEncoded {
		return 0, 0, fmt.Errorf("%d: %w", encoded, ErrEncodedRange)
	}
	m := encoded * SlotMinutes
	return m / 60, m % 60, nil
}

// FormatEncoded renders an encoded time as HH:MM, or "--:--" when out of
// range.
func FormatEncoded(encoded int) string {
	h, m, err := DecodeClock(encoded)
	if err != nil {
		return "--:--"
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// Period is one schedule period in encoded form. Start == End means the
// period is disabled; it keeps its positional slot either way.
type Period struct {
	Start int
	End   int
}

// Enabled reports whether the period is active. Disabled periods are a
// first-class state, not an error.
func (p Period) Enabled() bool {
	return p.Start != p.End
}

// InRange reports whether both bounds are valid encoded times.
func (p Period) InRange() bool {
	return p.Start >= 0 && p.Start <= MaxEncoded && p.End >= 0 && p.End <= MaxEncoded
}

// String renders the period for display.
func (p Period) String() string {
	if !p.Enabled() {
		return "disabled"
	}
	return fmt.Sprintf("%s-%s", FormatEncoded(p.Start), FormatEncoded(p.End))
}

// Day is one weekday's schedule. Period positions are fixed: P1 is always
// index 0 regardless of enabled state. Names carries the pmName labels from
// the polled API; they are opaque display metadata and never influence
// ordering or activation.
type Day struct {
	Weekday time.Weekday
	Periods [PeriodsPerDay]Period
	Names   [PeriodsPerDay]string
}

// Week is a full seven-day schedule indexed by time.Weekday (0 = Sunday).
type Week [7]Day

// ActiveAt reports whether any enabled period of the day covers the given
// encoded time.
func (d Day) ActiveAt(encoded int) bool {
	for _, p := range d.Periods {
		if p.Enabled() && p.Start <= encoded && encoded <= p.End {
			return true
		}
	}
	return false
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package schedule

import (
	"fmt"
	"time"
)

// Violation describes one schedule validation finding. It is reported, not
// repaired: whether overlapping periods should be rejected or silently
// corrected is backend policy the codec does not guess at, so the decoded
// data is still handed to the caller alongside the findings.
type Violation struct {
	Weekday time.Weekday

	// EarlierSlot and LaterSlot are the zero-based period positions of the
	// offending pair (or a single slot twice for a per-period finding).
	EarlierSlot int
	LaterSlot   int

	Earlier Period
	Later   Period

	// Reason distinguishes the finding type.
	Reason ViolationReason
}

// ViolationReason classifies a validation finding.
type ViolationReason int

// Violation reasons.
const (
	// ReasonOverlap: a later enabled period starts before the earlier one
	// ends. Adjacency (start == previous end) is permitted.
	ReasonOverlap ViolationReason = iota

	// ReasonInverted: an enabled period ends before it starts.
	ReasonInverted

	// ReasonOutOfRange: a bound is outside the encodable day.
	ReasonOutOfRange
)

// Error implements the error interface.
func (v Violation) Error() string {
	switch v.Reason {
	case ReasonInverted:
		return fmt.Sprintf("%s P%d: end %s before start %s",
			v.Weekday, v.EarlierSlot+1, FormatEncoded(v.Earlier.End), FormatEncoded(v.Earlier.Start))
	case ReasonOutOfRange:
		return fmt.Sprintf("%s P%d: bounds (%d,%d) outside 0-%d",
			v.Weekday, v.EarlierSlot+1, v.Earlier.Start, v.Earlier.End, MaxEncoded)
	default:
		return fmt.Sprintf("%s P%d %s overlaps P%d %s",
			v.Weekday, v.LaterSlot+1, v.Later, v.EarlierSlot+1, v.Earlier)
	}
}

// Validate checks a day's periods: every period must be in range, enabled
// periods must run forward, and consecutive enabled periods must not overlap
// (a later period may start exactly where the earlier one ends). Disabled
// periods are skipped for the ordering check but keep their positional slot.
func (d Day) Validate() []Violation {
	var findings []Violation

	for i, p := range d.Periods {
		if !p.InRange() {
			findings = append(findings, Violation{
				Weekday: d.Weekday, EarlierSlot: i, LaterSlot: i,
				Earlier: p, Later: p, Reason: ReasonOutOfRange,
			})
			continue
		}
		if p.Enabled() && p.End < p.Start {
			findings = append(findings, Violation{
				Weekday: d.Weekday, EarlierSlot: i, LaterSlot: i,
				Earlier: p, Later: p, Reason: ReasonInverted,
			})
		}
	}

	prev := -1
	for i, p := range d.Periods {
		if !p.Enabled() || !p.InRange() || p.End < p.Start {
			continue
		}
		if prev >= 0 && p.Start < d.Periods[prev].End {
			findings = append(findings, Violation{
				Weekday: d.Weekday, EarlierSlot: prev, LaterSlot: i,
				Earlier: d.Periods[prev], Later: p, Reason: ReasonOverlap,
			})
		}
		prev = i
	}

	return findings
}

// Validate checks all seven days and concatenates the findings.
func (w Week) Validate() []Violation {
	var findings []Violation
	for _, d := range w {
		findings = append(findings, d.Validate()...)
	}
	return findings
}

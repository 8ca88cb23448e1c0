// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package pointwire

import "time"

// Source identifies which transport produced a point update.
type Source int

// Transport sources.
const (
	SourceTelemetry Source = iota // push MQTT point data
	SourcePolled                  // derived from a polled HTTPS snapshot
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceTelemetry:
		return "telemetry"
	case SourcePolled:
		return "polled"
	default:
		return "unknown"
	}
}

// PointUpdate is one decoded field of a zone's state: the smallest unit the
// aggregator ingests. Updates are transient; a frame decodes to an ordered
// batch that is applied atomically.
type PointUpdate struct {
	// Index is the point index the value belongs to.
	Index uint8

	// Type is the wire type tag the value was decoded with.
	Type uint8

	// Value is the decoded value.
	Value Value

	// Timestamp is when the update was decoded (telemetry) or when the
	// snapshot was taken (polled).
	Timestamp time.Time

	// Source is the transport the update arrived over.
	Source Source
}

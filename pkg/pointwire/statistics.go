// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package pointwire

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Stats is one point-in-time view of frame decode counters.
type Stats struct {
	StartTime     time.Time `json:"startTime"`
	LastFrameTime time.Time `json:"lastFrameTime"`

	TotalFrames     uint64 `json:"totalFrames"`
	ValidFrames     uint64 `json:"validFrames"`
	MalformedFrames uint64 `json:"malformedFrames"`
	TruncatedFrames uint64 `json:"truncatedFrames"`
	UnknownTypes    uint64 `json:"unknownTypes"`
	EnvelopeErrors  uint64 `json:"envelopeErrors"`
	DecodedUpdates  uint64 `json:"decodedUpdates"`
	OpaqueUpdates   uint64 `json:"opaqueUpdates"`

	// Rates (calculated)
	FrameRate float64 `json:"frameRate"` // frames/sec
	ErrorRate float64 `json:"errorRate"` // errors/sec
}

// Statistics tracks frame statistics and error rates. Safe for concurrent
// use; the MQTT delivery path records while readers snapshot.
type Statistics struct {
	mu sync.Mutex
	s  Stats
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{s: Stats{StartTime: now, LastFrameTime: now}}
}

// Record updates statistics for one decoded frame.
func (t *Statistics) Record(updates []PointUpdate, decodeErr error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.s.TotalFrames++

	if decodeErr != nil {
		switch {
		case errors.Is(decodeErr, ErrMalformedFrame):
			t.s.MalformedFrames++
		case errors.Is(decodeErr, ErrTruncatedFrame):
			t.s.TruncatedFrames++
		case errors.Is(decodeErr, ErrUnknownType):
			t.s.UnknownTypes++
		default:
			t.s.EnvelopeErrors++
		}
		return
	}

	t.s.ValidFrames++
	t.s.DecodedUpdates += uint64(len(updates))
	for _, u := range updates {
		if u.Value.Kind == KindOpaque {
			t.s.OpaqueUpdates++
		}
	}
	t.s.LastFrameTime = time.Now()
}

// RecordEnvelopeError counts a payload that never reached the frame decoder.
func (t *Statistics) RecordEnvelopeError() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.TotalFrames++
	t.s.EnvelopeErrors++
}

// Snapshot returns a copy of the counters with rates calculated.
func (t *Statistics) Snapshot() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.s
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.TotalFrames) / elapsed
		errorCount := s.MalformedFrames + s.TruncatedFrames + s.UnknownTypes + s.EnvelopeErrors
		s.ErrorRate = float64(errorCount) / elapsed
	}
	return s
}

// Reset resets all statistics counters
func (t *Statistics) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	t.s = Stats{StartTime: now, LastFrameTime: now}
}

// String returns a formatted statistics summary
func (s Stats) String() string {
	var validPercent, malformedPercent, truncatedPercent, unknownPercent, envelopePercent float64
	if s.TotalFrames > 0 {
		validPercent = float64(s.ValidFrames) * 100.0 / float64(s.TotalFrames)
		malformedPercent = float64(s.MalformedFrames) * 100.0 / float64(s.TotalFrames)
		truncatedPercent = float64(s.TruncatedFrames) * 100.0 / float64(s.TotalFrames)
		unknownPercent = float64(s.UnknownTypes) * 100.0 / float64(s.TotalFrames)
		envelopePercent = float64(s.EnvelopeErrors) * 100.0 / float64(s.TotalFrames)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Frames:    %8d\n", s.TotalFrames)
	result += fmt.Sprintf("Valid Frames:    %8d (%.1f%%)\n", s.ValidFrames, validPercent)
	result += fmt.Sprintf("Point Updates:   %8d\n", s.DecodedUpdates)

	if s.OpaqueUpdates > 0 {
		result += fmt.Sprintf("  Opaque:           %5d\n", s.OpaqueUpdates)
	}
	if s.MalformedFrames > 0 {
		result += fmt.Sprintf("Malformed:       %8d (%.1f%%)\n", s.MalformedFrames, malformedPercent)
	}
	if s.TruncatedFrames > 0 {
		result += fmt.Sprintf("Truncated:       %8d (%.1f%%)\n", s.TruncatedFrames, truncatedPercent)
	}
	if s.UnknownTypes > 0 {
		result += fmt.Sprintf("Unknown Types:   %8d (%.1f%%)\n", s.UnknownTypes, unknownPercent)
	}
	if s.EnvelopeErrors > 0 {
		result += fmt.Sprintf("Envelope Errors: %8d (%.1f%%)\n", s.EnvelopeErrors, envelopePercent)
	}

	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package pointwire

import (
	"encoding/base64"
	"fmt"
	"time"
)

// Codec decodes and encodes point-data frames. It holds the two static
// registries and no mutable state, so a single Codec is safe for concurrent
// use from the MQTT delivery path and the polling path.
type Codec struct {
	types  *TypeTable
	points *Registry
}

// NewCodec builds a codec around the given tables.
func NewCodec(types *TypeTable, points *Registry) *Codec {
	return &Codec{types: types, points: points}
}

// NewDefaultCodec builds a codec with the standard Ember tables.
func NewDefaultCodec() *Codec {
	return NewCodec(NewTypeTable(), NewRegistry())
}

// Registry exposes the codec's index registry for semantic lookups.
func (c *Codec) Registry() *Registry {
	return c.points
}

// Types exposes the codec's type table.
func (c *Codec) Types() *TypeTable {
	return c.types
}

// DecodeFrame decodes a complete point-data payload into its ordered
// sequence of updates.
//
// Each record must start with the header sentinel; anything else fails with
// ErrMalformedFrame, without attempting to resynchronize. A record cut short
// by the end of the buffer fails with ErrTruncatedFrame. Either error aborts
// the whole frame: no partial batch is ever returned for those.
//
// Unregistered indices and unregistered type tags are not errors; both keep
// the record as an opaque value. An unregistered tag hides the value width,
// so its value runs to the next header sentinel and the remaining records
// decode normally. A value byte that happens to equal the sentinel ends the
// skip early; that matches the device's own framing recovery.
func (c *Codec) DecodeFrame(buf []byte) ([]PointUpdate, error) {
	now := time.Now()

	var updates []PointUpdate
	off := 0
	for off < len(buf) {
		if len(updates) >= MaxFrameRecords {
			return nil, fmt.Errorf("more than %d records: %w", MaxFrameRecords, ErrMalformedFrame)
		}
		if len(buf)-off < recordOverhead {
			return nil, fmt.Errorf("record header at offset %d: %w", off, ErrTruncatedFrame)
		}
		if buf[off] != HeaderByte {
			return nil, fmt.Errorf("offset %d: sentinel 0x%02X: %w", off, buf[off], ErrMalformedFrame)
		}

		index := buf[off+1]
		tag := buf[off+2]
		off += recordOverhead

		pt, err := c.types.Resolve(tag)
		if err != nil {
			// An unregistered tag hides the value width. Recover the way the
			// firmware's peers do: everything up to the next header sentinel
			// is the value, kept as an opaque record so the rest of the
			// frame still decodes.
			end := off
			for end < len(buf) && buf[end] != HeaderByte {
				end++
			}
			value := Value{Kind: KindOpaque}
			if width := end - off; width > 0 && width <= 8 {
				var raw uint64
				for _, x := range buf[off:end] {
					raw = raw<<8 | uint64(x)
				}
				value.Raw = int64(raw)
			}
			updates = append(updates, PointUpdate{
				Index:     index,
				Type:      tag,
				Value:     value,
				Timestamp: now,
				Source:    SourceTelemetry,
			})
			off = end
			continue
		}
		if len(buf)-off < pt.ByteWidth {
			return nil, fmt.Errorf("index %d value at offset %d: %w", index, off, ErrTruncatedFrame)
		}

		value, err := pt.Decode(buf[off : off+pt.ByteWidth])
		if err != nil {
			return nil, err
		}
		off += pt.ByteWidth

		// Unregistered indices degrade to opaque rather than being dropped,
		// so forward-compatible fields survive the trip to the aggregator.
		if _, err := c.points.Resolve(index); err != nil {
			value.Kind = KindOpaque
		}

		updates = append(updates, PointUpdate{
			Index:     index,
			Type:      tag,
			Value:     value,
			Timestamp: now,
			Source:    SourceTelemetry,
		})
	}
	return updates, nil
}

// DecodeBase64 decodes a base64-encoded point-data payload, the form the
// MQTT envelope carries.
func (c *Codec) DecodeBase64(s string) ([]PointUpdate, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("base64 point data: %w", err)
	}
	return c.DecodeFrame(raw)
}

// EncodeFrame builds an outbound control payload from the given commands,
// concatenating one [Header|Index|Type|Value] record per command in order.
// It is the exact structural inverse of DecodeFrame.
func (c *Codec) EncodeFrame(cmds []Command) ([]byte, error) {
	var out []byte
	for _, cmd := range cmds {
		pt, err := c.types.Resolve(cmd.Type)
		if err != nil {
			return nil, err
		}
		value, err := pt.Encode(cmd.Value)
		if err != nil {
			return nil, fmt.Errorf("command %s: %w", c.points.Name(cmd.Index), err)
		}
		out = append(out, HeaderByte, cmd.Index, cmd.Type)
		out = append(out, value...)
	}
	return out, nil
}

// EncodeBase64 encodes commands and renders the payload as base64 for the
// MQTT download envelope.
func (c *Codec) EncodeBase64(cmds []Command) (string, error) {
	raw, err := c.EncodeFrame(cmds)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package pointwire

import (
	"fmt"
	"time"
)

// PointType describes the wire encoding of one value type tag. Entries are
// immutable after registration; lookups go through TypeTable.Resolve.
type PointType struct {
	// Tag is the numeric type identifier carried in each record.
	Tag uint8

	// ByteWidth is the number of value bytes (1-4), big-endian on the wire.
	ByteWidth int

	// Signed selects sign extension on decode.
	Signed bool

	// Scale is the multiplier applied to the raw integer (0.1 for tenths of
	// a degree). 1 means the raw value is used directly.
	Scale float64

	// Kind is the semantic interpretation of decoded values.
	Kind Kind
}

// Decode interprets exactly ByteWidth bytes as this type's value.
func (t PointType) Decode(b []byte) (Value, error) {
	if len(b) != t.ByteWidth {
		return Value{}, fmt.Errorf("type %d: got %d value bytes, want %d: %w",
			t.Tag, len(b), t.ByteWidth, ErrTruncatedFrame)
	}

	var raw uint64
	for _, x := range b {
		raw = raw<<8 | uint64(x)
	}

	n := int64(raw)
	if t.Signed {
		shift := uint(64 - 8*t.ByteWidth)
		n = int64(raw<<shift) >> shift
	}

	return t.FromRaw(n), nil
}

// FromRaw interprets an already-decoded wire integer as a value of this
// type, for sources that deliver integers instead of bytes (the polled API's
// pointDataList carries the same fields as plain JSON numbers).
func (t PointType) FromRaw(n int64) Value {
	v := Value{Kind: t.Kind, Raw: n}
	switch t.Kind {
	case KindBoolean:
		v.Bool = n != 0
	case KindScaledTemperature:
		v.Temp = float64(n) * t.Scale
	case KindEpochTimestamp:
		if n != 0 {
			v.Time = time.Unix(n, 0)
		}
	}
	return v
}

// Encode is the exact inverse of Decode: it renders the value's raw integer
// as ByteWidth big-endian bytes. Values that do not fit the width fail with
// ErrValueRange rather than being silently truncated.
func (t PointType) Encode(v Value) ([]byte, error) {
	n := v.Raw

	if t.Signed {
		limit := int64(1) << uint(8*t.ByteWidth-1)
		if n < -limit || n >= limit {
			return nil, fmt.Errorf("type %d: %d: %w", t.Tag, n, ErrValueRange)
		}
	} else {
		if n < 0 || uint64(n) >= uint64(1)<<uint(8*t.ByteWidth) {
			return nil, fmt.Errorf("type %d: %d: %w", t.Tag, n, ErrValueRange)
		}
	}

	out := make([]byte, t.ByteWidth)
	u := uint64(n)
	for i := t.ByteWidth - 1; i >= 0; i-- {
		out[i] = byte(u)
		u >>= 8
	}
	return out, nil
}

// TypeTable maps type tags to their decode/encode rules. It is populated once
// and read-only afterwards; concurrent lookups need no synchronization.
type TypeTable struct {
	types map[uint8]PointType
}

// NewTypeTable returns a table holding the point types observed on the Ember
// wire protocol.
func NewTypeTable() *TypeTable {
	t := &TypeTable{types: make(map[uint8]PointType)}
	for _, pt := range []PointType{
		{Tag: TagSmallInt, ByteWidth: 1, Scale: 1, Kind: KindInteger},
		{Tag: TagTempRO, ByteWidth: 2, Signed: true, Scale: 0.1, Kind: KindScaledTemperature},
		{Tag: TagTempRW, ByteWidth: 2, Signed: true, Scale: 0.1, Kind: KindScaledTemperature},
		{Tag: TagTimestamp, ByteWidth: 4, Scale: 1, Kind: KindEpochTimestamp},
	} {
		t.types[pt.Tag] = pt
	}
	return t
}

// Resolve looks up a point type by tag.
func (t *TypeTable) Resolve(tag uint8) (PointType, error) {
	pt, ok := t.types[tag]
	if !ok {
		return PointType{}, fmt.Errorf("tag %d: %w", tag, ErrUnknownType)
	}
	return pt, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package pointwire

import (
	"fmt"
	"time"
)

// Kind classifies how a decoded point value is interpreted.
type Kind int

// Value kinds.
const (
	KindBoolean Kind = iota
	KindInteger
	KindScaledTemperature
	KindEpochTimestamp
	KindOpaque
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindScaledTemperature:
		return "temperature"
	case KindEpochTimestamp:
		return "timestamp"
	case KindOpaque:
		return "opaque"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a decoded point value. Raw always holds the integer read off the
// wire (sign-extended when the type is signed); the interpreted forms are
// populated according to Kind so downstream code never re-reads raw bytes.
type Value struct {
	Kind Kind

	// Raw is the wire integer before scaling.
	Raw int64

	// Bool is set for KindBoolean.
	Bool bool

	// Temp is degrees Celsius, set for KindScaledTemperature.
	Temp float64

	// Time is set for KindEpochTimestamp. Zero when Raw is 0.
	Time time.Time
}

// String renders the interpreted value.
func (v Value) String() string {
	switch v.Kind {
	case KindBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindScaledTemperature:
		return fmt.Sprintf("%.1f°C", v.Temp)
	case KindEpochTimestamp:
		if v.Time.IsZero() {
			return "unset"
		}
		return v.Time.UTC().Format(time.RFC3339)
	case KindOpaque:
		return fmt.Sprintf("0x%X", v.Raw)
	default:
		return fmt.Sprintf("%d", v.Raw)
	}
}

// BoolValue builds a boolean value.
func BoolValue(b bool) Value {
	v := Value{Kind: KindBoolean, Bool: b}
	if b {
		v.Raw = 1
	}
	return v
}

// IntValue builds an integer value.
func IntValue(n int64) Value {
	return Value{Kind: KindInteger, Raw: n}
}

// TempValue builds a scaled-temperature value from degrees Celsius. The wire
// carries tenths of a degree, so the raw form is rounded to one decimal.
func TempValue(degC float64) Value {
	var raw int64
	if degC >= 0 {
		raw = int64(degC*10 + 0.5)
	} else {
		raw = int64(degC*10 - 0.5)
	}
	return Value{Kind: KindScaledTemperature, Raw: raw, Temp: float64(raw) / 10}
}

// TimeValue builds an epoch-timestamp value.
func TimeValue(t time.Time) Value {
	if t.IsZero() {
		return Value{Kind: KindEpochTimestamp}
	}
	return Value{Kind: KindEpochTimestamp, Raw: t.Unix(), Time: t}
}

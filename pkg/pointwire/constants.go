// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

// Package pointwire implements the Ember point-data wire protocol.
//
// Point data is the binary telemetry format used by Ember zone controllers:
// a packed sequence of typed records, each carrying one field ("point") of a
// zone's state. Frames arrive base64-encoded over the MQTT upload topic and
// are sent back in the same layout on the download topic for control.
//
// Each record is laid out as [Header][Index][Type][Value...], where Header is
// always the sentinel byte 0x00, Index identifies the field, Type selects the
// value encoding, and the value width follows from the type.
package pointwire

// HeaderByte is the sentinel that starts every point record.
const HeaderByte = 0x00

// recordOverhead is the fixed per-record size before the value bytes.
const recordOverhead = 3 // header + index + type

// Point type tags observed on the wire.
const (
	TagSmallInt  uint8 = 1 // 1-byte unsigned integer / boolean
	TagTempRO    uint8 = 2 // 2-byte signed temperature in tenths, read-only
	TagTempRW    uint8 = 4 // 2-byte signed temperature in tenths, writable
	TagTimestamp uint8 = 5 // 4-byte unsigned Unix timestamp
)

// Point indices for the classic thermostat family (deviceType 2 and 4).
const (
	IndexAdvanceActive uint8 = 4
	IndexCurrentTemp   uint8 = 5
	IndexTargetTemp    uint8 = 6
	IndexMode          uint8 = 7
	IndexBoostHours    uint8 = 8
	IndexBoostTime     uint8 = 9
	IndexBoilerState   uint8 = 10
)

// Point indices for the extended family (deviceType 258, 514 and 773).
// Index 7 and 8 double as temperature limits on these devices.
const (
	IndexModeExt       uint8 = 11
	IndexManualSetTemp uint8 = 12
	IndexBoostHoursExt uint8 = 13
	IndexBoostTemp     uint8 = 14
	IndexBoostTimeExt  uint8 = 15
	IndexBoilerExt     uint8 = 18
	IndexAutoSetTemp   uint8 = 17
	IndexMaxTempExt    uint8 = 7
	IndexMinTempExt    uint8 = 8
)

// Partially reverse-engineered indices, carried as opaque values.
const (
	IndexScheduleSum  uint8 = 3  // believed schedule checksum / CRC
	IndexStatusBitmap uint8 = 16 // status bitmap, structure unknown
)

// Boiler relay values reported on IndexBoilerState.
const (
	BoilerValueOff = 1
	BoilerValueOn  = 2
)

// Device type families. The wire meaning of several indices and of the mode
// value depends on which family a zone belongs to.
const (
	DeviceTypeThermostat  = 2
	DeviceTypeHotWater    = 4
	DeviceTypeProgrammer  = 258
	DeviceTypeCombiBoiler = 514
	DeviceTypeTRV         = 773
)

// MaxFrameRecords bounds the number of records accepted from one frame.
// Observed frames carry at most a couple of dozen points; anything larger is
// treated as corrupt.
const MaxFrameRecords = 64

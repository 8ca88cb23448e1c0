// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package pointwire

import (
	"fmt"
	"time"
)

// Command is one outbound field write, encoded by Codec.EncodeFrame.
// Several commands may be bundled into a single frame and applied by the
// controller as one operation.
type Command struct {
	Index uint8
	Type  uint8
	Value Value
}

// Function identifies a zone operation independent of device family. The
// wire index a function maps to depends on the device type and, for one
// case, on the zone's current mode.
type Function int

// Zone functions.
const (
	FuncAdvanceActive Function = iota
	FuncCurrentTemp
	FuncTargetTempRead
	FuncTargetTempWrite
	FuncMode
	FuncBoostHours
	FuncBoostTime
	FuncBoilerState
	FuncBoostTemp
	FuncMaxTemp
	FuncMinTemp
)

// FunctionIndex resolves the point index for a function on the given device
// type. mode is only consulted for the target-temperature write path on the
// programmer family, whose setpoint index differs between auto and manual
// operation. The second return is false when the device does not expose the
// function.
func FunctionIndex(deviceType int, mode ZoneMode, fn Function) (uint8, bool) {
	extended := deviceType == DeviceTypeProgrammer ||
		deviceType == DeviceTypeCombiBoiler ||
		deviceType == DeviceTypeTRV

	switch fn {
	case FuncAdvanceActive:
		return IndexAdvanceActive, true
	case FuncCurrentTemp:
		return IndexCurrentTemp, true
	case FuncTargetTempRead:
		return IndexTargetTemp, true
	case FuncTargetTempWrite:
		switch deviceType {
		case DeviceTypeProgrammer:
			if mode == ModeAuto {
				return IndexAutoSetTemp, true
			}
			return IndexManualSetTemp, true
		case DeviceTypeCombiBoiler, DeviceTypeTRV:
			return IndexManualSetTemp, true
		default:
			return IndexTargetTemp, true
		}
	case FuncMode:
		if extended {
			return IndexModeExt, true
		}
		return IndexMode, true
	case FuncBoostHours:
		if extended {
			return IndexBoostHoursExt, true
		}
		return IndexBoostHours, true
	case FuncBoostTime:
		if extended {
			return IndexBoostTimeExt, true
		}
		return IndexBoostTime, true
	case FuncBoilerState:
		switch deviceType {
		case DeviceTypeProgrammer, DeviceTypeCombiBoiler:
			return IndexBoilerExt, true
		default:
			return IndexBoilerState, true
		}
	case FuncBoostTemp:
		return IndexBoostTemp, true
	case FuncMaxTemp:
		switch deviceType {
		case DeviceTypeProgrammer, DeviceTypeCombiBoiler:
			return IndexMaxTempExt, true
		}
		return 0, false
	case FuncMinTemp:
		switch deviceType {
		case DeviceTypeProgrammer, DeviceTypeCombiBoiler:
			return IndexMinTempExt, true
		}
		return 0, false
	}
	return 0, false
}

// NewTargetTemperatureCommand builds a setpoint write for the given device
// type. mode must be the zone's current mode (it selects the setpoint index
// on programmer devices).
func NewTargetTemperatureCommand(deviceType int, mode ZoneMode, degC float64) (Command, error) {
	index, ok := FunctionIndex(deviceType, mode, FuncTargetTempWrite)
	if !ok {
		return Command{}, fmt.Errorf("device type %d has no writable setpoint", deviceType)
	}
	return Command{Index: index, Type: TagTempRW, Value: TempValue(degC)}, nil
}

// NewModeCommand builds a mode write.
func NewModeCommand(deviceType int, mode ZoneMode) (Command, error) {
	value, err := ModeToWire(deviceType, mode)
	if err != nil {
		return Command{}, err
	}
	index, _ := FunctionIndex(deviceType, mode, FuncMode)
	return Command{Index: index, Type: TagSmallInt, Value: IntValue(value)}, nil
}

// NewAdvanceCommand builds an advance-active write. Only the classic family
// supports it.
func NewAdvanceCommand(deviceType int, active bool) (Command, error) {
	switch deviceType {
	case DeviceTypeThermostat, DeviceTypeHotWater:
	default:
		return Command{}, fmt.Errorf("device type %d does not support advance", deviceType)
	}
	return Command{Index: IndexAdvanceActive, Type: TagSmallInt, Value: BoolValue(active)}, nil
}

// BoostCommands builds the command bundle that starts (or, with hours == 0,
// cancels) a boost. Hours are clamped to the device family's maximum: 3 for
// the classic family, 1 for the extended one. For the extended family the
// boost timestamp is the intended end of the boost; the classic family sends
// the start time.
func BoostCommands(deviceType int, mode ZoneMode, hours int, boostTemp *float64, now time.Time) []Command {
	extended := deviceType == DeviceTypeProgrammer ||
		deviceType == DeviceTypeCombiBoiler ||
		deviceType == DeviceTypeTRV

	if extended && hours > 1 {
		hours = 1
	} else if hours > 3 {
		hours = 3
	}

	hoursIndex, _ := FunctionIndex(deviceType, mode, FuncBoostHours)
	timeIndex, _ := FunctionIndex(deviceType, mode, FuncBoostTime)

	cmds := []Command{
		{Index: hoursIndex, Type: TagSmallInt, Value: IntValue(int64(hours))},
	}
	if boostTemp != nil {
		cmds = append(cmds, Command{Index: IndexBoostTemp, Type: TagTempRW, Value: TempValue(*boostTemp)})
	}
	if hours > 0 {
		stamp := now
		if extended {
			stamp = now.Add(time.Duration(hours) * time.Hour)
		}
		cmds = append(cmds, Command{Index: timeIndex, Type: TagTimestamp, Value: TimeValue(stamp)})
	}
	return cmds
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package messenger

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// commandSerial is the fixed serial number the backend expects in command
// envelopes.
const commandSerial = 7870

// Envelope is the JSON wrapper carried on the point-data topics, both
// uplink and downlink.
type Envelope struct {
	Common Common `json:"common"`
	Data   Data   `json:"data"`
}

// Common is the envelope's routing block.
type Common struct {
	Serial    int    `json:"serial"`
	ProductID string `json:"productId"`
	UID       string `json:"uid"`

	// Timestamp is epoch milliseconds, as a string on the wire.
	Timestamp string `json:"timestamp"`
}

// Data carries the payload: the zone MAC and the base64 point-data frame.
type Data struct {
	MAC       string `json:"mac"`
	PointData string `json:"pointData"`
}

// ZoneAddress identifies a zone on the broker.
type ZoneAddress struct {
	ProductID string
	UID       string
	MAC       string
}

// uploadTopic is the telemetry topic for a zone.
func (a ZoneAddress) uploadTopic() string {
	return a.ProductID + "/" + a.UID + "/upload/pointdata"
}

// downloadTopic is the command topic for a zone.
func (a ZoneAddress) downloadTopic() string {
	return a.ProductID + "/" + a.UID + "/download/pointdata"
}

// commandEnvelope renders the downlink JSON for a base64 point-data payload.
func commandEnvelope(a ZoneAddress, pointData string, now time.Time) ([]byte, error) {
	env := Envelope{
		Common: Common{
			Serial:    commandSerial,
			ProductID: a.ProductID,
			UID:       a.UID,
			Timestamp: strconv.FormatInt(now.UnixMilli(), 10),
		},
		Data: Data{
			MAC:       a.MAC,
			PointData: pointData,
		},
	}
	buf, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode command envelope: %w", err)
	}
	return buf, nil
}

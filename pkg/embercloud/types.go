// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package embercloud

import (
	"encoding/json"
	"fmt"
)

// envelope is the wrapper every API response arrives in. A non-zero status
// is an application-level failure even when HTTP reports 200.
type envelope struct {
	Status    int             `json:"status"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// StatusError is a non-zero envelope status returned by an endpoint.
type StatusError struct {
	Endpoint string
	Status   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d", e.Endpoint, e.Status)
}

// loginData is the payload of appLogin/login and appLogin/refreshAccessToken.
type loginData struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// userData is the payload of user/selectUser.
type userData struct {
	ID json.Number `json:"id"`
}

// Home is one entry of homes/list.
type Home struct {
	GatewayID string `json:"gatewayid"`
	Name      string `json:"name"`
}

// PointDatum is one pointDataList entry: the same point index/value pairs
// the binary telemetry protocol carries, as JSON numbers. Both fields arrive
// as either numbers or strings depending on the backend version.
type PointDatum struct {
	PointIndex json.Number `json:"pointIndex"`
	Value      json.Number `json:"value"`
}

// Program is one schedule period of a device day. Times use the backend's
// decimal clock form: hour times ten plus tens-of-minutes, so 173 is 17:30.
// Nil times mean the period is not configured.
type Program struct {
	StartTime *int   `json:"startTime"`
	EndTime   *int   `json:"endTime"`
	PmName    string `json:"pmName"`
}

// DeviceDay is one weekday's programs. DayType is 0 for Sunday through 6 for
// Saturday.
type DeviceDay struct {
	DayType int      `json:"dayType"`
	P1      *Program `json:"p1"`
	P2      *Program `json:"p2"`
	P3      *Program `json:"p3"`
}

// Zone is one zone object of homesVT/zoneProgram.
type Zone struct {
	ZoneID     json.Number `json:"zoneid"`
	Name       string      `json:"name"`
	MAC        string      `json:"mac"`
	DeviceType int         `json:"deviceType"`
	ProductID  string      `json:"productId"`
	UID        string      `json:"uid"`

	PointDataList []PointDatum `json:"pointDataList"`
	DeviceDays    []DeviceDay  `json:"deviceDays"`
}

// ID returns the zone identifier as a string.
func (z *Zone) ID() string {
	return z.ZoneID.String()
}

// pointValue returns the raw integer for a point index, false when the zone
// does not carry it.
func (z *Zone) pointValue(index uint8) (int64, bool) {
	for _, d := range z.PointDataList {
		idx, err := d.PointIndex.Int64()
		if err != nil || idx != int64(index) {
			continue
		}
		v, err := d.Value.Int64()
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

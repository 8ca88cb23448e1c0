// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package messenger

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/openember/emberlink/pkg/pointwire"
)

var testZone = ZoneAddress{ProductID: "prod1", UID: "uid1", MAC: "AA:BB:CC:DD:EE:FF"}

func newTestMessenger(t *testing.T) (*Messenger, *[]Delivery, *[]error) {
	t.Helper()
	var deliveries []Delivery
	var failures []error

	m := New(pointwire.NewDefaultCodec(), Config{
		UserID: "12345",
		Token:  "tok",
		OnDelivery: func(d Delivery) {
			deliveries = append(deliveries, d)
		},
		OnError: func(_ string, err error) {
			failures = append(failures, err)
		},
	})
	return m, &deliveries, &failures
}

func telemetryEnvelope(t *testing.T, frame []byte) []byte {
	t.Helper()
	payload, err := json.Marshal(Envelope{
		Common: Common{ProductID: testZone.ProductID, UID: testZone.UID, Timestamp: "1767225600000"},
		Data:   Data{MAC: testZone.MAC, PointData: base64.StdEncoding.EncodeToString(frame)},
	})
	if err != nil {
		t.Fatal(err)
	}
	return payload
}

func TestHandlePayload_DeliversBatch(t *testing.T) {
	m, deliveries, failures := newTestMessenger(t)

	frame := []byte{0x00, 0x06, 0x02, 0x00, 0xCE}
	m.handlePayload(testZone.uploadTopic(), telemetryEnvelope(t, frame))

	if len(*failures) != 0 {
		t.Fatalf("failures = %v", *failures)
	}
	if len(*deliveries) != 1 {
		t.Fatalf("deliveries = %d", len(*deliveries))
	}

	d := (*deliveries)[0]
	if d.MAC != testZone.MAC || d.ProductID != testZone.ProductID || d.UID != testZone.UID {
		t.Errorf("delivery routing = %+v", d)
	}
	if len(d.Updates) != 1 {
		t.Fatalf("updates = %+v", d.Updates)
	}
	u := d.Updates[0]
	if u.Index != pointwire.IndexTargetTemp || u.Value.Temp != 20.6 {
		t.Errorf("update = %+v", u)
	}
	if u.Source != pointwire.SourceTelemetry {
		t.Errorf("source = %v", u.Source)
	}
}

func TestHandlePayload_TrimsNulPadding(t *testing.T) {
	m, deliveries, failures := newTestMessenger(t)

	payload := telemetryEnvelope(t, []byte{0x00, 0x05, 0x02, 0x00, 0xC3})
	payload = append(payload, 0x00, 0x00, 0x00)

	m.handlePayload(testZone.uploadTopic(), payload)
	if len(*failures) != 0 || len(*deliveries) != 1 {
		t.Fatalf("failures = %v, deliveries = %d", *failures, len(*deliveries))
	}
}

func TestHandlePayload_BadFrameNotDelivered(t *testing.T) {
	m, deliveries, failures := newTestMessenger(t)

	// Bad sentinel: the whole batch is dropped, nothing partial arrives.
	m.handlePayload(testZone.uploadTopic(), telemetryEnvelope(t, []byte{0x01, 0x06, 0x02, 0x00, 0xCE}))

	if len(*deliveries) != 0 {
		t.Fatalf("deliveries = %+v", *deliveries)
	}
	if len(*failures) != 1 || !errors.Is((*failures)[0], pointwire.ErrMalformedFrame) {
		t.Fatalf("failures = %v", *failures)
	}
}

func TestHandlePayload_BadJSON(t *testing.T) {
	m, deliveries, failures := newTestMessenger(t)
	m.handlePayload("t", []byte("{not json"))
	if len(*deliveries) != 0 || len(*failures) != 1 {
		t.Fatalf("deliveries = %d, failures = %v", len(*deliveries), *failures)
	}
}

func TestCommandEnvelope(t *testing.T) {
	now := time.UnixMilli(1767225600000)
	buf, err := commandEnvelope(testZone, "AAYCAM4=", now)
	if err != nil {
		t.Fatalf("commandEnvelope: %v", err)
	}

	var env Envelope
	if err := json.Unmarshal(buf, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Common.Serial != commandSerial {
		t.Errorf("serial = %d", env.Common.Serial)
	}
	if env.Common.Timestamp != "1767225600000" {
		t.Errorf("timestamp = %q", env.Common.Timestamp)
	}
	if env.Data.MAC != testZone.MAC || env.Data.PointData != "AAYCAM4=" {
		t.Errorf("data = %+v", env.Data)
	}
}

func TestTopics(t *testing.T) {
	if got := testZone.uploadTopic(); got != "prod1/uid1/upload/pointdata" {
		t.Errorf("upload topic = %q", got)
	}
	if got := testZone.downloadTopic(); got != "prod1/uid1/download/pointdata" {
		t.Errorf("download topic = %q", got)
	}
}

func TestClientID(t *testing.T) {
	m := New(pointwire.NewDefaultCodec(), Config{UserID: "987"})
	m.now = func() time.Time { return time.UnixMilli(1767225600000) }
	if got := m.clientID(); got != "987_1767225600000" {
		t.Errorf("clientID = %q", got)
	}

	anon := New(pointwire.NewDefaultCodec(), Config{})
	id := anon.clientID()
	if id == "" || strings.Contains(id, "_") {
		t.Errorf("anonymous clientID = %q, want bare UUID", id)
	}
}

func TestSendCommands_NotConnected(t *testing.T) {
	m := New(pointwire.NewDefaultCodec(), Config{})
	cmd, err := pointwire.NewTargetTemperatureCommand(pointwire.DeviceTypeThermostat, pointwire.ModeAuto, 19.5)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SendCommands(testZone, []pointwire.Command{cmd}); err == nil {
		t.Fatal("want error when not connected")
	}
}

func TestHandlePayload_UnknownTypeStillDelivered(t *testing.T) {
	m, deliveries, failures := newTestMessenger(t)

	// A newer-firmware record with an unregistered type tag must not
	// suppress the rest of the batch.
	frame := []byte{
		0x00, 0x05, 0x02, 0x00, 0xC3, // CurrentTemperature 19.5
		0x00, 0x0F, 0x09, 0xCE, // unknown tag 9
		0x00, 0x07, 0x01, 0x02, // Mode 2
	}
	m.handlePayload(testZone.uploadTopic(), telemetryEnvelope(t, frame))

	if len(*failures) != 0 {
		t.Fatalf("failures = %v", *failures)
	}
	if len(*deliveries) != 1 {
		t.Fatalf("deliveries = %d", len(*deliveries))
	}
	d := (*deliveries)[0]
	if len(d.Updates) != 3 {
		t.Fatalf("updates = %+v, want 3", d.Updates)
	}
	if d.Updates[1].Value.Kind != pointwire.KindOpaque || d.Updates[1].Value.Raw != 0xCE {
		t.Errorf("update 1 = %+v, want opaque raw 0xCE", d.Updates[1])
	}
	if d.Updates[2].Index != pointwire.IndexMode || d.Updates[2].Value.Raw != 2 {
		t.Errorf("update 2 = %+v, want mode 2", d.Updates[2])
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

// Package messenger is the MQTT transport for zone telemetry and commands.
// It subscribes to each zone's upload/pointdata topic, decodes the base64
// point-data frames out of the JSON envelopes and hands complete batches to
// a delivery callback. Outbound commands are encoded and published on the
// matching download topic.
package messenger

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/openember/emberlink/pkg/pointwire"
)

// DefaultBroker is the production broker, TLS on a non-standard port.
const DefaultBroker = "ssl://eu-base-mqtt.topband-cloud.com:18883"

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// Delivery is one decoded telemetry batch.
type Delivery struct {
	Topic     string
	MAC       string
	ProductID string
	UID       string
	Updates   []pointwire.PointUpdate
}

// Config configures a Messenger. UserID and Token come from the cloud
// client's messenger credentials.
type Config struct {
	// Broker defaults to DefaultBroker when empty.
	Broker string

	UserID string
	Token  string

	// OnDelivery receives decoded telemetry batches. Called from the MQTT
	// network goroutine.
	OnDelivery func(Delivery)

	// OnError receives messages that could not be decoded. Optional.
	OnError func(topic string, err error)

	Logger *slog.Logger
}

// Messenger is the MQTT client wrapper. It resubscribes to all registered
// topics on every reconnect.
type Messenger struct {
	cfg   Config
	codec *pointwire.Codec
	log   *slog.Logger
	stats *pointwire.Statistics

	mu     sync.Mutex
	client mqtt.Client
	topics map[string]struct{}

	// now is swappable for tests.
	now func() time.Time
}

// New builds a messenger around the given codec.
func New(codec *pointwire.Codec, cfg Config) *Messenger {
	if cfg.Broker == "" {
		cfg.Broker = DefaultBroker
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Messenger{
		cfg:    cfg,
		codec:  codec,
		log:    log,
		stats:  pointwire.NewStatistics(),
		topics: make(map[string]struct{}),
		now:    time.Now,
	}
}

// Stats reports frame decode counters for the life of the messenger.
func (m *Messenger) Stats() pointwire.Stats {
	return m.stats.Snapshot()
}

// clientID builds the broker client identifier: the account user ID plus
// epoch milliseconds, or a random UUID before the user ID is known.
func (m *Messenger) clientID() string {
	if m.cfg.UserID == "" {
		return uuid.NewString()
	}
	return m.cfg.UserID + "_" + strconv.FormatInt(m.now().UnixMilli(), 10)
}

// Connect establishes the broker session. Registered topics are subscribed
// on connect and again after every reconnect.
func (m *Messenger) Connect() error {
	opts := mqtt.NewClientOptions().
		AddBroker(m.cfg.Broker).
		SetClientID(m.clientID()).
		SetUsername("app/" + m.cfg.Token).
		SetPassword(m.cfg.Token).
		SetTLSConfig(&tls.Config{}).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		m.log.Info("connected to broker", "broker", m.cfg.Broker)
		m.mu.Lock()
		topics := make([]string, 0, len(m.topics))
		for topic := range m.topics {
			topics = append(topics, topic)
		}
		m.mu.Unlock()

		for _, topic := range topics {
			if token := client.Subscribe(topic, 0, m.onMessage); token.Wait() && token.Error() != nil {
				m.log.Error("subscribe failed", "topic", topic, "error", token.Error())
			} else {
				m.log.Debug("subscribed", "topic", topic)
			}
		}
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		m.log.Warn("broker connection lost", "error", err)
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("connect to %s: timeout", m.cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to %s: %w", m.cfg.Broker, err)
	}

	m.mu.Lock()
	m.client = client
	m.mu.Unlock()
	return nil
}

// Close disconnects from the broker. Safe to call when never connected.
func (m *Messenger) Close() {
	m.mu.Lock()
	client := m.client
	m.client = nil
	m.mu.Unlock()

	if client != nil && client.IsConnected() {
		client.Disconnect(250)
	}
}

// Subscribe registers a zone's telemetry topic. When already connected the
// subscription is issued immediately; either way it is replayed on
// reconnect.
func (m *Messenger) Subscribe(a ZoneAddress) error {
	topic := a.uploadTopic()

	m.mu.Lock()
	m.topics[topic] = struct{}{}
	client := m.client
	m.mu.Unlock()

	if client == nil || !client.IsConnected() {
		return nil
	}
	token := client.Subscribe(topic, 0, m.onMessage)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("subscribe %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	m.log.Debug("subscribed", "topic", topic)
	return nil
}

// SendCommands encodes the commands as one point-data frame and publishes
// it on the zone's download topic.
func (m *Messenger) SendCommands(a ZoneAddress, cmds []pointwire.Command) error {
	m.mu.Lock()
	client := m.client
	m.mu.Unlock()
	if client == nil {
		return fmt.Errorf("send to %s: not connected", a.MAC)
	}

	payload, err := m.codec.EncodeBase64(cmds)
	if err != nil {
		return fmt.Errorf("send to %s: %w", a.MAC, err)
	}
	msg, err := commandEnvelope(a, payload, m.now())
	if err != nil {
		return err
	}

	topic := a.downloadTopic()
	m.log.Debug("publishing command", "topic", topic, "records", len(cmds))

	token := client.Publish(topic, 0, false, msg)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// onMessage is the paho message handler.
func (m *Messenger) onMessage(_ mqtt.Client, msg mqtt.Message) {
	m.handlePayload(msg.Topic(), msg.Payload())
}

// handlePayload decodes one envelope. Decode failures go to the error
// callback; a batch is delivered whole or not at all.
func (m *Messenger) handlePayload(topic string, payload []byte) {
	// Some firmware versions NUL-pad the JSON.
	payload = bytes.TrimRight(payload, "\x00")

	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		m.stats.RecordEnvelopeError()
		m.fail(topic, fmt.Errorf("envelope: %w", err))
		return
	}
	if env.Data.PointData == "" {
		m.stats.RecordEnvelopeError()
		m.fail(topic, fmt.Errorf("envelope without point data"))
		return
	}

	updates, err := m.codec.DecodeBase64(env.Data.PointData)
	m.stats.Record(updates, err)
	if err != nil {
		m.fail(topic, err)
		return
	}

	if m.cfg.OnDelivery != nil {
		m.cfg.OnDelivery(Delivery{
			Topic:     topic,
			MAC:       env.Data.MAC,
			ProductID: env.Common.ProductID,
			UID:       env.Common.UID,
			Updates:   updates,
		})
	}
}

func (m *Messenger) fail(topic string, err error) {
	m.log.Warn("dropped message", "topic", topic, "error", err)
	if m.cfg.OnError != nil {
		m.cfg.OnError(topic, err)
	}
}

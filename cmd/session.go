// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/openember/emberlink/pkg/embercloud"
	"github.com/openember/emberlink/pkg/messenger"
	"github.com/openember/emberlink/pkg/pointwire"
	"github.com/openember/emberlink/pkg/zonestate"
)

// session wires the HTTPS client, the aggregator and the MQTT messenger
// together for the long-running commands. Polled snapshots keep the broker
// address book current; telemetry deliveries are routed to zones by MAC.
type session struct {
	client *embercloud.Client
	cfg    *Config
	codec  *pointwire.Codec
	store  *zonestate.Store
	log    *slog.Logger

	mu    sync.Mutex
	byMAC map[string]string
	addrs map[string]messenger.ZoneAddress
}

func newSession(client *embercloud.Client, cfg *Config, log *slog.Logger) *session {
	if log == nil {
		log = slog.Default()
	}
	return &session{
		client: client,
		cfg:    cfg,
		codec:  pointwire.NewDefaultCodec(),
		store:  zonestate.NewStore(),
		log:    log,
		byMAC:  make(map[string]string),
		addrs:  make(map[string]messenger.ZoneAddress),
	}
}

// poll fetches every zone once and feeds the aggregator. Schedule conversion
// failures degrade to a scalar-only snapshot rather than dropping the zone.
func (s *session) poll(ctx context.Context) error {
	zones, taken, err := s.client.Zones(ctx)
	if err != nil {
		return err
	}

	for i := range zones {
		z := &zones[i]
		snap, err := z.Snapshot(taken)
		if err != nil {
			s.log.Warn("zone schedule unusable", "zone", z.Name, "error", err)
		}

		// Telemetry that beat this poll accrued under the MAC; move it to
		// the real zone ID before the snapshot lands.
		if z.MAC != "" {
			s.store.Rekey(z.MAC, z.ID())
		}
		s.store.ApplySnapshot(z.ID(), snap)

		s.mu.Lock()
		if z.MAC != "" {
			s.byMAC[z.MAC] = z.ID()
		}
		s.addrs[z.ID()] = messenger.ZoneAddress{
			ProductID: z.ProductID,
			UID:       z.UID,
			MAC:       z.MAC,
		}
		s.mu.Unlock()
	}
	return nil
}

// pollLoop refreshes snapshots until the context ends.
func (s *session) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.poll(ctx); err != nil {
				s.log.Warn("poll failed", "error", err)
			}
		}
	}
}

// zoneIDForMAC resolves a telemetry delivery to a zone ID, falling back to
// the MAC itself for zones polling has not described yet.
func (s *session) zoneIDForMAC(mac string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byMAC[mac]; ok {
		return id
	}
	return mac
}

// address returns the broker address for a zone.
func (s *session) address(zoneID string) (messenger.ZoneAddress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.addrs[zoneID]
	return a, ok
}

// connectMessenger opens the broker session, routes deliveries into the
// aggregator and subscribes to every known zone. onDelivery, when set, runs
// after each batch has been applied.
func (s *session) connectMessenger(ctx context.Context, onDelivery func(messenger.Delivery)) (*messenger.Messenger, error) {
	userID, token, err := s.client.MessengerCredentials(ctx)
	if err != nil {
		return nil, err
	}

	m := messenger.New(s.codec, messenger.Config{
		Broker: s.cfg.Broker,
		UserID: userID,
		Token:  token,
		Logger: s.log,
		OnDelivery: func(d messenger.Delivery) {
			s.store.ApplyTelemetry(s.zoneIDForMAC(d.MAC), d.Updates)
			if onDelivery != nil {
				onDelivery(d)
			}
		},
		OnError: func(topic string, err error) {
			s.log.Warn("undecodable telemetry", "topic", topic, "error", err)
		},
	})
	if err := m.Connect(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	addrs := make([]messenger.ZoneAddress, 0, len(s.addrs))
	for _, a := range s.addrs {
		addrs = append(addrs, a)
	}
	s.mu.Unlock()

	for _, a := range addrs {
		if err := m.Subscribe(a); err != nil {
			m.Close()
			return nil, err
		}
	}
	return m, nil
}

// findZone resolves a zone by ID or case-insensitive name.
func (s *session) findZone(key string) (zonestate.ZoneState, error) {
	if z, ok := s.store.Get(key); ok {
		return z, nil
	}
	for _, id := range s.store.Zones() {
		z, ok := s.store.Get(id)
		if ok && strings.EqualFold(z.Name, key) {
			return z, nil
		}
	}
	return zonestate.ZoneState{}, fmt.Errorf("no zone %q", key)
}

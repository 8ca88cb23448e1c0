// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/openember/emberlink/pkg/messenger"
	"github.com/openember/emberlink/pkg/schedule"
	"github.com/openember/emberlink/pkg/zonestate"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve zone state as a JSON API",
	Long: `Run a local HTTP server over a live aggregator fed by both transports:
MQTT telemetry and periodic HTTPS snapshot polls.

Endpoints:
  GET /healthz                  liveness
  GET /api/zones                all zones
  GET /api/zones/{id}           one zone (by ID or name)
  GET /api/zones/{id}/schedule  weekly schedule with validation findings
  GET /api/stats                telemetry frame decode counters`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Bind address (default :8880)")
}

// apiZone is the JSON rendering of a zone.
type apiZone struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	DeviceType         int           `json:"deviceType"`
	CurrentTemperature float64       `json:"currentTemperature"`
	TargetTemperature  float64       `json:"targetTemperature"`
	Mode               string        `json:"mode,omitempty"`
	RelayState         string        `json:"relayState"`
	AdvanceActive      bool          `json:"advanceActive"`
	BoostActive        bool          `json:"boostActive"`
	BoostHours         int           `json:"boostHours,omitempty"`
	BoostStart         *time.Time    `json:"boostStart,omitempty"`
	Unknown            map[int]int64 `json:"unknownPoints,omitempty"`
	LastUpdated        time.Time     `json:"lastUpdated"`
	LastSource         string        `json:"lastSource"`
	Revision           uint64        `json:"revision"`
}

func renderZone(z zonestate.ZoneState) apiZone {
	out := apiZone{
		ID:                 z.ZoneID,
		Name:               z.Name,
		DeviceType:         z.DeviceType,
		CurrentTemperature: z.CurrentTemperature,
		TargetTemperature:  z.TargetTemperature,
		RelayState:         z.RelayState.String(),
		AdvanceActive:      z.AdvanceActive,
		BoostActive:        z.BoostActive,
		BoostHours:         z.BoostHours,
		LastUpdated:        z.LastUpdated,
		LastSource:         z.LastSource.String(),
		Revision:           z.Revision,
	}
	if z.ModeKnown {
		out.Mode = z.Mode.String()
	}
	if !z.BoostStart.IsZero() {
		t := z.BoostStart
		out.BoostStart = &t
	}
	if len(z.Unknown) > 0 {
		out.Unknown = make(map[int]int64, len(z.Unknown))
		for k, v := range z.Unknown {
			out.Unknown[int(k)] = v
		}
	}
	return out
}

// apiPeriod is the JSON rendering of one schedule period.
type apiPeriod struct {
	Name    string `json:"name,omitempty"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Enabled bool   `json:"enabled"`
}

type apiDay struct {
	Weekday string      `json:"weekday"`
	Periods []apiPeriod `json:"periods"`
}

type apiSchedule struct {
	ZoneID   string   `json:"zoneId"`
	Days     []apiDay `json:"days"`
	Findings []string `json:"findings,omitempty"`
}

func renderSchedule(z zonestate.ZoneState) apiSchedule {
	out := apiSchedule{ZoneID: z.ZoneID}
	for _, day := range z.Schedule {
		d := apiDay{Weekday: day.Weekday.String()}
		for i, p := range day.Periods {
			d.Periods = append(d.Periods, apiPeriod{
				Name:    day.Names[i],
				Start:   schedule.FormatEncoded(p.Start),
				End:     schedule.FormatEncoded(p.End),
				Enabled: p.Enabled(),
			})
		}
		out.Days = append(out.Days, d)
	}
	for _, v := range z.Schedule.Validate() {
		out.Findings = append(out.Findings, v.Error())
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func newRouter(sess *session, m *messenger.Messenger) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	r.HandleFunc("/api/stats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, m.Stats())
	}).Methods("GET")

	r.HandleFunc("/api/zones", func(w http.ResponseWriter, _ *http.Request) {
		zones := []apiZone{}
		for _, id := range sess.store.Zones() {
			if z, ok := sess.store.Get(id); ok {
				zones = append(zones, renderZone(z))
			}
		}
		writeJSON(w, http.StatusOK, zones)
	}).Methods("GET")

	r.HandleFunc("/api/zones/{id}", func(w http.ResponseWriter, req *http.Request) {
		z, err := sess.findZone(mux.Vars(req)["id"])
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, renderZone(z))
	}).Methods("GET")

	r.HandleFunc("/api/zones/{id}/schedule", func(w http.ResponseWriter, req *http.Request) {
		z, err := sess.findZone(mux.Vars(req)["id"])
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, renderSchedule(z))
	}).Methods("GET")

	return r
}

func runServe(cmd *cobra.Command, args []string) error {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	client, cfg, err := newCloudClient()
	if err != nil {
		return err
	}
	if serveListen != "" {
		cfg.Listen = serveListen
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess := newSession(client, cfg, log)
	if err := sess.poll(ctx); err != nil {
		return err
	}

	m, err := sess.connectMessenger(ctx, nil)
	if err != nil {
		return err
	}
	defer m.Close()

	go sess.pollLoop(ctx)

	server := &http.Server{
		Addr:    cfg.Listen,
		Handler: handlers.LoggingHandler(os.Stdout, newRouter(sess, m)),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Info("serving zone API", "listen", cfg.Listen, "zones", len(sess.store.Zones()))
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

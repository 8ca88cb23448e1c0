// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

// Package embercloud is the polled HTTPS client for the EPH Ember backend.
// It handles login and token refresh, lists homes and fetches per-gateway
// zone programs, and converts the polled JSON into the forms the rest of the
// system consumes: schedule weeks, aggregator snapshots and point updates.
package embercloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://eu-https.topband-cloud.com/ember-back/"

const (
	// tokenValidity is how long the backend honors an access token.
	tokenValidity = 1800 * time.Second

	// refreshWindow refreshes the token this long before it expires, so a
	// request issued right at the boundary does not race the expiry.
	refreshWindow = 30 * time.Second

	defaultTimeout = 10 * time.Second
)

// ErrAuthFailed is returned when login or token refresh does not yield a
// usable token.
var ErrAuthFailed = errors.New("authentication failed")

// Client talks to the Ember backend. It is safe for concurrent use; token
// state is guarded internally.
type Client struct {
	baseURL string
	hc      *http.Client
	log     *slog.Logger

	username string
	password string

	mu          sync.Mutex
	token       string
	refresh     string
	lastRefresh time.Time
	userID      string

	// now is swappable for tests.
	now func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API base, typically a test
// server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithLogger sets the structured logger. The default discards nothing and
// writes to slog's default handler.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient builds a client for the given account.
func NewClient(username, password string, opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		hc:       &http.Client{Timeout: defaultTimeout},
		log:      slog.Default(),
		username: username,
		password: password,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do issues one API request and unwraps the response envelope. A non-zero
// envelope status is returned as a StatusError.
func (c *Client) do(ctx context.Context, method, endpoint, authToken string, body any) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", endpoint, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", authToken)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: HTTP %d", endpoint, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", endpoint, err)
	}
	if env.Status != 0 {
		return nil, &StatusError{Endpoint: endpoint, Status: env.Status}
	}
	return &env, nil
}

// Login authenticates with username and password, replacing any token state.
func (c *Client) Login(ctx context.Context) error {
	env, err := c.do(ctx, http.MethodPost, "appLogin/login", "", map[string]string{
		"userName": c.username,
		"password": c.password,
	})
	if err != nil {
		return err
	}

	var data loginData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return fmt.Errorf("appLogin/login: decode data: %w", err)
	}
	if data.Token == "" {
		return fmt.Errorf("appLogin/login: %w", ErrAuthFailed)
	}

	c.mu.Lock()
	c.token = data.Token
	c.refresh = data.RefreshToken
	c.lastRefresh = c.now()
	c.mu.Unlock()

	c.log.Debug("logged in", "user", c.username)
	return nil
}

// refreshToken exchanges the refresh token for a new access token. Falls
// back to a full login when the refresh is rejected.
func (c *Client) refreshToken(ctx context.Context, refresh string) error {
	env, err := c.do(ctx, http.MethodGet, "appLogin/refreshAccessToken", refresh, nil)
	if err != nil {
		c.log.Debug("token refresh failed, logging in again", "error", err)
		return c.Login(ctx)
	}

	var data loginData
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Token == "" {
		return c.Login(ctx)
	}

	c.mu.Lock()
	c.token = data.Token
	c.refresh = data.RefreshToken
	c.lastRefresh = c.now()
	c.mu.Unlock()
	return nil
}

// authToken returns a valid access token, logging in or refreshing first
// when needed.
func (c *Client) authToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.token
	refresh := c.refresh
	expiresOn := c.lastRefresh.Add(tokenValidity)
	c.mu.Unlock()

	if token == "" {
		if err := c.Login(ctx); err != nil {
			return "", err
		}
	} else if c.now().Add(refreshWindow).After(expiresOn) {
		if err := c.refreshToken(ctx, refresh); err != nil {
			return "", err
		}
	}

	c.mu.Lock()
	token = c.token
	c.mu.Unlock()
	if token == "" {
		return "", ErrAuthFailed
	}
	return token, nil
}

// authorized issues an authenticated request.
func (c *Client) authorized(ctx context.Context, method, endpoint string, body any) (*envelope, error) {
	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, method, endpoint, token, body)
}

// UserID fetches and caches the numeric account ID (user/selectUser).
func (c *Client) UserID(ctx context.Context) (string, error) {
	c.mu.Lock()
	cached := c.userID
	c.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	env, err := c.authorized(ctx, http.MethodGet, "user/selectUser", nil)
	if err != nil {
		return "", err
	}
	var data userData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", fmt.Errorf("user/selectUser: decode data: %w", err)
	}
	if data.ID.String() == "" {
		return "", fmt.Errorf("user/selectUser: no user id in response")
	}

	c.mu.Lock()
	c.userID = data.ID.String()
	c.mu.Unlock()
	return data.ID.String(), nil
}

// MessengerCredentials returns the user ID and access token the MQTT
// messenger authenticates with.
func (c *Client) MessengerCredentials(ctx context.Context) (userID, token string, err error) {
	userID, err = c.UserID(ctx)
	if err != nil {
		return "", "", err
	}
	token, err = c.authToken(ctx)
	if err != nil {
		return "", "", err
	}
	return userID, token, nil
}

// Homes lists the homes on the account (homes/list).
func (c *Client) Homes(ctx context.Context) ([]Home, error) {
	env, err := c.authorized(ctx, http.MethodGet, "homes/list", nil)
	if err != nil {
		return nil, err
	}
	var homes []Home
	if err := json.Unmarshal(env.Data, &homes); err != nil {
		return nil, fmt.Errorf("homes/list: decode data: %w", err)
	}
	return homes, nil
}

// HomeDetails fetches the detail object for one gateway (homes/detail). The
// shape varies across backend versions, so the payload is returned raw.
func (c *Client) HomeDetails(ctx context.Context, gatewayID string) (json.RawMessage, error) {
	env, err := c.authorized(ctx, http.MethodPost, "homes/detail", map[string]string{
		"gateWayId": gatewayID,
	})
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// ZoneProgram fetches the zones and their schedules for one gateway
// (homesVT/zoneProgram). The returned time is the backend's snapshot
// timestamp.
func (c *Client) ZoneProgram(ctx context.Context, gatewayID string) ([]Zone, time.Time, error) {
	env, err := c.authorized(ctx, http.MethodPost, "homesVT/zoneProgram", map[string]string{
		"gateWayId": gatewayID,
	})
	if err != nil {
		return nil, time.Time{}, err
	}

	var zones []Zone
	if err := json.Unmarshal(env.Data, &zones); err != nil {
		return nil, time.Time{}, fmt.Errorf("homesVT/zoneProgram: decode data: %w", err)
	}

	taken := c.now()
	if env.Timestamp > 0 {
		taken = time.UnixMilli(env.Timestamp)
	}
	return zones, taken, nil
}

// Zones fetches the zone programs of every home on the account.
func (c *Client) Zones(ctx context.Context) ([]Zone, time.Time, error) {
	homes, err := c.Homes(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}

	var all []Zone
	var taken time.Time
	for _, home := range homes {
		zones, ts, err := c.ZoneProgram(ctx, home.GatewayID)
		if err != nil {
			return nil, time.Time{}, err
		}
		all = append(all, zones...)
		if ts.After(taken) {
			taken = ts
		}
	}
	return all, taken, nil
}

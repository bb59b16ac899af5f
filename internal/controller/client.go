// Package controller talks to a running controller's northbound
// interface: REST reachability and health, and the websocket
// notification stream consumed by the dashboard.
package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client defines the controller API surface the CLI depends on.
type Client interface {
	// IsListening reports whether the REST port accepts connections.
	IsListening(ctx context.Context) bool

	// Health fetches the diagstatus report.
	Health(ctx context.Context) (Health, error)

	// WaitReady polls until the controller reports an operational
	// status or ctx expires.
	WaitReady(ctx context.Context, interval time.Duration) error

	// SubscribeEvents streams controller notifications.
	SubscribeEvents(ctx context.Context) (<-chan Event, error)
}

// Health is the controller's aggregate service status.
type Health struct {
	Status     string    // e.g. OPERATIONAL
	Timestamp  time.Time //
	Components []Component
	Latency    time.Duration // round-trip of the health request
}

// Component is one internal service in the diagstatus report.
type Component struct {
	Service string
	Status  string
}

// Operational reports whether every component is serviceable.
func (h Health) Operational() bool {
	return strings.EqualFold(h.Status, "OPERATIONAL")
}

type httpClient struct {
	http  *http.Client
	base  string // e.g. http://127.0.0.1:8181
	wsURL string
	creds struct{ user, pass string }
	dial  func(ctx context.Context, network, addr string) (net.Conn, error)
}

// Options tune the client; zero values get defaults.
type Options struct {
	Timeout  time.Duration
	User     string
	Password string
}

// New builds a client for the controller at host:port.
func New(host string, port int, opts Options) Client {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	base := fmt.Sprintf("http://%s", net.JoinHostPort(host, strconv.Itoa(port)))
	c := &httpClient{
		http:  &http.Client{Timeout: opts.Timeout},
		base:  base,
		wsURL: deriveWS(base),
		dial:  (&net.Dialer{Timeout: opts.Timeout}).DialContext,
	}
	c.creds.user = opts.User
	c.creds.pass = opts.Password
	return c
}

func deriveWS(base string) string {
	if strings.HasPrefix(base, "https://") {
		return "wss://" + strings.TrimPrefix(base, "https://") + "/websocket"
	}
	return "ws://" + strings.TrimPrefix(base, "http://") + "/websocket"
}

func (c *httpClient) IsListening(ctx context.Context) bool {
	addr := strings.TrimPrefix(strings.TrimPrefix(c.base, "http://"), "https://")
	conn, err := c.dial(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func (c *httpClient) Health(ctx context.Context) (Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/diagstatus", nil)
	if err != nil {
		return Health{}, err
	}
	if c.creds.user != "" {
		req.SetBasicAuth(c.creds.user, c.creds.pass)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return Health{}, fmt.Errorf("controller unreachable: %w", err)
	}
	defer resp.Body.Close()
	latency := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		return Health{}, fmt.Errorf("diagstatus: status %s", resp.Status)
	}

	var payload struct {
		Timestamp  string `json:"timestamp"`
		SystemSvc  string `json:"systemReadyState"`
		Components []struct {
			Service string `json:"serviceName"`
			Status  string `json:"effectiveStatus"`
		} `json:"statusSummary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Health{}, fmt.Errorf("parse diagstatus: %w", err)
	}

	h := Health{Status: payload.SystemSvc, Latency: latency}
	if ts, err := time.Parse(time.RFC1123, payload.Timestamp); err == nil {
		h.Timestamp = ts
	}
	for _, comp := range payload.Components {
		h.Components = append(h.Components, Component{Service: comp.Service, Status: comp.Status})
	}
	// some releases spell readiness ACTIVE rather than OPERATIONAL
	if strings.EqualFold(h.Status, "ACTIVE") {
		h.Status = "OPERATIONAL"
	}
	return h, nil
}

func (c *httpClient) WaitReady(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if h, err := c.Health(ctx); err == nil && h.Operational() {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("controller not ready: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

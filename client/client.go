/*
Package client is the HTTP consumer of the trip CRUD backend.

PURPOSE:
  Wraps the JSON REST surface (GET /api/trips plus per-trip mutations)
  behind typed methods. Implements reschedule.TripUpdater so the drag
  controller commits through the same path everything else uses.

TIMEOUTS:
  Every request runs under a context deadline (default 10s). When the
  deadline fires the underlying request is aborted, so a stalled
  backend degrades into a surfaced error instead of wedging the UI.

SERIALIZATION:
  goccy/go-json, drop-in compatible with encoding/json struct tags.
*/
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/warp/trip-engine/calendar"
	"github.com/warp/trip-engine/trip"
)

// DefaultTimeout bounds any single backend request.
const DefaultTimeout = 10 * time.Second

// Client talks to the trip backend.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// New creates a client for the backend at baseURL (no trailing slash
// required).
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: DefaultTimeout,
	}
}

// WithTimeout overrides the per-request deadline.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.timeout = d
	}
	return c
}

// WithHTTPClient swaps the underlying transport, used in tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// FetchSnapshot loads the full employee + trip payload.
func (c *Client) FetchSnapshot(ctx context.Context) (trip.SnapshotPayload, error) {
	var payload trip.SnapshotPayload
	err := c.do(ctx, http.MethodGet, "/api/trips", nil, &payload)
	return payload, err
}

// =============================================================================
// MUTATIONS - each returns the single updated record
// =============================================================================

// CreateTrip creates a trip and returns the server's record.
func (c *Client) CreateTrip(ctx context.Context, raw trip.RawTrip) (trip.RawTrip, error) {
	var out trip.RawTrip
	err := c.do(ctx, http.MethodPost, "/api/trips", raw, &out)
	return out, err
}

// UpdateTripDates changes a trip's date span. Satisfies
// reschedule.TripUpdater.
func (c *Client) UpdateTripDates(ctx context.Context, id string, start, end calendar.Day) (trip.RawTrip, error) {
	body := map[string]string{
		"entry_date": start.String(),
		"exit_date":  end.String(),
	}
	var out trip.RawTrip
	err := c.do(ctx, http.MethodPut, "/api/trips/"+id, body, &out)
	return out, err
}

// UpdateTrip replaces a trip's editable fields.
func (c *Client) UpdateTrip(ctx context.Context, raw trip.RawTrip) (trip.RawTrip, error) {
	var out trip.RawTrip
	err := c.do(ctx, http.MethodPut, "/api/trips/"+raw.ID, raw, &out)
	return out, err
}

// DeleteTrip removes a trip.
func (c *Client) DeleteTrip(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/trips/"+id, nil, nil)
}

// DuplicateTrip clones a trip server-side and returns the clone.
func (c *Client) DuplicateTrip(ctx context.Context, id string) (trip.RawTrip, error) {
	var out trip.RawTrip
	err := c.do(ctx, http.MethodPost, "/api/trips/"+id+"/duplicate", nil, &out)
	return out, err
}

// =============================================================================
// TRANSPORT
// =============================================================================

// APIError is a non-2xx backend response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

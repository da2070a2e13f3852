package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/trip-engine/calendar"
	"github.com/warp/trip-engine/client"
	"github.com/warp/trip-engine/trip"
)

func TestFetchSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/trips", r.URL.Path)
		json.NewEncoder(w).Encode(trip.SnapshotPayload{
			Employees: []trip.Employee{{ID: "e1", Name: "Ada", Active: true}},
			Trips:     []trip.RawTrip{{ID: "t1", EmployeeID: "e1", EntryDate: "2025-06-01"}},
		})
	}))
	defer srv.Close()

	payload, err := client.New(srv.URL).FetchSnapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, payload.Employees, 1)
	assert.Len(t, payload.Trips, 1)
}

func TestUpdateTripDates_SendsCanonicalFields(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/trips/t1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(trip.RawTrip{
			ID: "t1", EmployeeID: "e1",
			EntryDate: gotBody["entry_date"], ExitDate: gotBody["exit_date"],
		})
	}))
	defer srv.Close()

	raw, err := client.New(srv.URL).UpdateTripDates(context.Background(), "t1",
		calendar.NewDay(2025, time.June, 4), calendar.NewDay(2025, time.June, 8))
	require.NoError(t, err)

	assert.Equal(t, "2025-06-04", gotBody["entry_date"])
	assert.Equal(t, "2025-06-08", gotBody["exit_date"])
	assert.Equal(t, "2025-06-04", raw.EntryDate)
}

func TestNon2xx_ReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := client.New(srv.URL).FetchSnapshot(context.Background())
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
}

func TestTimeout_AbortsStalledRequest(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	start := time.Now()
	_, err := client.New(srv.URL).WithTimeout(50 * time.Millisecond).FetchSnapshot(context.Background())
	elapsed := time.Since(start)

	require.Error(t, err, "a stalled backend must surface an error")
	assert.Less(t, elapsed, 2*time.Second, "the deadline must abort the request promptly")
}

func TestDeleteTrip_NoBodyExpected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"t1","deleted":true}`))
	}))
	defer srv.Close()

	err := client.New(srv.URL).DeleteTrip(context.Background(), "t1")
	assert.NoError(t, err)
}

func TestDuplicateTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/trips/t1/duplicate", r.URL.Path)
		json.NewEncoder(w).Encode(trip.RawTrip{ID: "trip-copy", EmployeeID: "e1", EntryDate: "2025-06-01"})
	}))
	defer srv.Close()

	raw, err := client.New(srv.URL).DuplicateTrip(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "trip-copy", raw.ID)
}

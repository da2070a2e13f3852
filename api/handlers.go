/*
handlers.go - HTTP API handlers for the trip backend

PURPOSE:
  Exposes the trip store and the compliance engine via REST. Handles
  HTTP request/response, JSON serialization, and delegates to domain
  logic.

ENDPOINTS:
  GET    /api/trips                      Full snapshot (employees + trips)
  POST   /api/trips                      Create trip
  PUT    /api/trips/{id}                 Update trip (returns updated record)
  DELETE /api/trips/{id}                 Delete trip
  POST   /api/trips/{id}/duplicate       Clone trip
  POST   /api/employees                  Create employee
  GET    /api/employees/{id}/compliance  Per-trip compliance report

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate by normalizing (a trip the engine cannot normalize is a
     400, never stored)
  3. Call store / engine
  4. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: validation errors, invalid input
  - 404: unknown trip or employee
  - 500: store errors

SEE ALSO:
  - dto.go: request/response data structures
  - server.go: router setup and middleware
*/
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/warp/trip-engine/compliance"
	"github.com/warp/trip-engine/store/sqlite"
	"github.com/warp/trip-engine/trip"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store
	Cfg   compliance.Config
	Log   logrus.FieldLogger

	// newID mints trip ids; swapped in tests for determinism.
	newID func() string
}

// NewHandler creates a handler over the given store.
func NewHandler(store *sqlite.Store, cfg compliance.Config, log logrus.FieldLogger) *Handler {
	return &Handler{
		Store: store,
		Cfg:   cfg,
		Log:   log,
		newID: func() string { return fmt.Sprintf("trip-%d", time.Now().UnixNano()) },
	}
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// GetSnapshot returns the full employee + trip payload.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	employees, err := h.Store.ListEmployees(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	records, err := h.Store.ListTrips(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list trips", err)
		return
	}

	payload := trip.SnapshotPayload{
		Employees: make([]trip.Employee, len(employees)),
		Trips:     make([]trip.RawTrip, len(records)),
	}
	for i, e := range employees {
		payload.Employees[i] = trip.Employee{ID: e.ID, Name: e.Name, Active: e.Active}
	}
	for i, t := range records {
		payload.Trips[i] = recordToRaw(t)
	}

	writeJSON(w, http.StatusOK, payload)
}

// =============================================================================
// TRIP MUTATIONS - each returns the single updated record
// =============================================================================

// CreateTrip stores a new trip from a raw record.
func (h *Handler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var raw trip.RawTrip
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	if raw.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}

	normalized := trip.Normalize(raw)
	if normalized == nil {
		writeError(w, http.StatusBadRequest, "No usable entry date", nil)
		return
	}
	if raw.ID == "" {
		raw.ID = h.newID()
		normalized.ID = raw.ID
	}

	record := normalizedToRecord(*normalized)
	if err := h.Store.SaveTrip(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save trip", err)
		return
	}

	writeJSON(w, http.StatusCreated, recordToRaw(record))
}

// UpdateTrip overlays the provided fields on the stored record,
// re-normalizes and replaces the row wholesale.
func (h *Handler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.Store.GetTrip(r.Context(), id)
	if err == sqlite.ErrNotFound {
		writeError(w, http.StatusNotFound, "Trip not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load trip", err)
		return
	}

	var patch trip.RawTrip
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	merged := overlay(recordToRaw(*existing), patch)
	normalized := trip.Normalize(merged)
	if normalized == nil {
		writeError(w, http.StatusBadRequest, "No usable entry date", nil)
		return
	}
	normalized.ID = id

	record := normalizedToRecord(*normalized)
	if err := h.Store.UpdateTrip(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update trip", err)
		return
	}

	writeJSON(w, http.StatusOK, recordToRaw(record))
}

// DeleteTrip removes a trip.
func (h *Handler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.Store.DeleteTrip(r.Context(), id)
	if err == sqlite.ErrNotFound {
		writeError(w, http.StatusNotFound, "Trip not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete trip", err)
		return
	}

	writeJSON(w, http.StatusOK, DeleteResponseDTO{ID: id, Deleted: true})
}

// DuplicateTrip clones a trip under a fresh id.
func (h *Handler) DuplicateTrip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	copyRecord, err := h.Store.DuplicateTrip(r.Context(), id, h.newID())
	if err == sqlite.ErrNotFound {
		writeError(w, http.StatusNotFound, "Trip not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to duplicate trip", err)
		return
	}

	writeJSON(w, http.StatusCreated, recordToRaw(*copyRecord))
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// CreateEmployee adds a roster entry.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var e trip.Employee
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	if e.ID == "" || e.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	record := sqlite.EmployeeRecord{ID: e.ID, Name: e.Name, Active: e.Active}
	if err := h.Store.SaveEmployee(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, e)
}

// GetCompliance returns one employee's per-trip compliance report.
func (h *Handler) GetCompliance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	records, err := h.Store.ListTripsByEmployee(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load trips", err)
		return
	}

	name := "Employee " + id
	employees, err := h.Store.ListEmployees(ctx)
	if err == nil {
		for _, e := range employees {
			if e.ID == id {
				name = e.Name
				break
			}
		}
	}

	raws := make([]trip.RawTrip, len(records))
	for i, t := range records {
		raws[i] = recordToRaw(t)
	}
	trips := trip.NormalizeAll(raws, h.Log)

	report := compliance.BuildReport(trip.Employee{ID: id, Name: name, Active: true}, trips, h.Cfg)
	writeJSON(w, http.StatusOK, ComplianceReportDTO{Report: report})
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func recordToRaw(t sqlite.TripRecord) trip.RawTrip {
	return trip.RawTrip{
		ID:           t.ID,
		EmployeeID:   t.EmployeeID,
		EmployeeName: t.EmployeeName,
		Country:      t.Country,
		EntryDate:    t.EntryDate,
		ExitDate:     t.ExitDate,
		JobRef:       t.JobRef,
		Purpose:      t.Purpose,
		Ghosted:      t.Ghosted,
	}
}

func normalizedToRecord(t trip.Trip) sqlite.TripRecord {
	return sqlite.TripRecord{
		ID:           t.ID,
		EmployeeID:   t.EmployeeID,
		EmployeeName: t.EmployeeName,
		Country:      t.Country,
		EntryDate:    t.Start.String(),
		ExitDate:     t.End.String(),
		JobRef:       t.JobRef,
		Purpose:      t.Purpose,
		Ghosted:      t.Ghosted,
	}
}

// overlay applies non-empty patch fields over a base record. The
// ghosted flag is taken from the patch as-is: it is a plain boolean on
// the wire, absent means false means unghost.
func overlay(base, patch trip.RawTrip) trip.RawTrip {
	out := base
	if patch.EmployeeID != "" {
		out.EmployeeID = patch.EmployeeID
	}
	if patch.EmployeeName != "" {
		out.EmployeeName = patch.EmployeeName
	}
	if patch.Country != "" {
		out.Country = patch.Country
	}
	if s, ok := firstNonEmpty(patch.EntryDate, patch.StartDate, patch.Start, patch.From); ok {
		out.EntryDate = s
	}
	if s, ok := firstNonEmpty(patch.ExitDate, patch.EndDate, patch.End, patch.To, patch.Until); ok {
		out.ExitDate = s
	}
	if patch.JobRef != "" {
		out.JobRef = patch.JobRef
	}
	if patch.Purpose != "" {
		out.Purpose = patch.Purpose
	}
	out.Ghosted = patch.Ghosted
	return out
}

func firstNonEmpty(candidates ...string) (string, bool) {
	for _, s := range candidates {
		if s != "" {
			return s, true
		}
	}
	return "", false
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are gone; nothing left to do but note it.
		logrus.WithError(err).Warn("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	dto := ErrorDTO{Error: message}
	if err != nil {
		dto.Details = err.Error()
	}
	writeJSON(w, status, dto)
}

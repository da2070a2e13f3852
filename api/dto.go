/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the trip CRUD surface. Requests reuse
  trip.RawTrip so every historical field alias stays accepted on the
  way in; the store's canonical dates go out under the entry_date /
  exit_date names.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

VALIDATION:
  Done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: uses these types
  - trip/types.go: RawTrip and SnapshotPayload
*/
package api

import "github.com/warp/trip-engine/compliance"

// ErrorDTO is the JSON error envelope.
type ErrorDTO struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// DeleteResponseDTO acknowledges a delete.
type DeleteResponseDTO struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// ComplianceReportDTO wraps an employee's compliance report.
type ComplianceReportDTO struct {
	Report compliance.Report `json:"report"`
}

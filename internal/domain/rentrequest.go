package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RentRequestStatus is the rent-request lifecycle state (spec §4.4.2,
// resolved per SPEC_FULL.md's Open Question #2 decision).
type RentRequestStatus string

const (
	RentRequestPending   RentRequestStatus = "PENDING"
	RentRequestReviewed  RentRequestStatus = "REVIEWED"
	RentRequestApproved  RentRequestStatus = "APPROVED"
	RentRequestRejected  RentRequestStatus = "REJECTED"
	RentRequestContacted RentRequestStatus = "CONTACTED"
	RentRequestConfirmed RentRequestStatus = "CONFIRMED"
	RentRequestCancelled RentRequestStatus = "CANCELLED"
)

// Terminal reports whether no further transitions are legal (GLOSSARY).
func (s RentRequestStatus) Terminal() bool {
	switch s {
	case RentRequestRejected, RentRequestConfirmed, RentRequestCancelled:
		return true
	default:
		return false
	}
}

// Blocking reports whether a rent-request in this status occupies the
// vehicle's calendar for the Conflict Detector (spec §4.2, Open Question #1:
// the unified detector's {APPROVED, CONFIRMED} set is authoritative).
func (s RentRequestStatus) Blocking() bool {
	return s == RentRequestApproved || s == RentRequestConfirmed
}

// rentRequestTransitions is the exhaustive legal-transition table resolving
// spec §4.4.2's Open Question #2 (documented in SPEC_FULL.md): APPROVED may
// move to CONFIRMED or CANCELLED; CANCELLED, CONFIRMED and REJECTED are
// terminal.
var rentRequestTransitions = map[RentRequestStatus][]RentRequestStatus{
	RentRequestPending:   {RentRequestReviewed, RentRequestApproved, RentRequestRejected, RentRequestContacted},
	RentRequestReviewed:  {RentRequestApproved, RentRequestRejected, RentRequestContacted},
	RentRequestContacted: {RentRequestApproved, RentRequestRejected},
	RentRequestApproved:  {RentRequestConfirmed, RentRequestCancelled},
	RentRequestRejected:  {},
	RentRequestConfirmed: {},
	RentRequestCancelled: {},
}

// CanTransitionRentRequest reports whether from -> to is legal.
func CanTransitionRentRequest(from, to RentRequestStatus) bool {
	for _, allowed := range rentRequestTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// VehicleSnapshot is captured at intake and immutable thereafter
// (spec §3 invariant).
type VehicleSnapshot struct {
	Make        string
	Model       string
	Year        int
	PricePerDay decimal.Decimal
	Currency    string
}

// RentRequest is the public-intake booking artifact (spec §3).
type RentRequest struct {
	ID           string
	RequestID    string // opaque public identifier, format REQ_<ts>_<rand>
	ClientName   string
	ClientEmail  string
	ClientPhone  string
	VehicleID    string
	Vehicle      VehicleSnapshot
	StartDate    time.Time
	EndDate      time.Time
	Message      string
	Status       RentRequestStatus
	AdminNotes   string
	ReviewedBy   *string
	ReviewedAt   *time.Time
	CreatedAt    time.Time
}

// StatusHistoryEntry is one append-only audit row (spec §3).
type StatusHistoryEntry struct {
	RequestID string
	OldStatus RentRequestStatus
	NewStatus RentRequestStatus
	ChangedBy string
	Notes     string
	ChangedAt time.Time
}

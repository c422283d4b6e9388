package store

import (
	"time"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/domain"
)

// ConflictingContract is the projection FindConflictingContracts and
// BulkFindConflicts return — just enough to build a conflict.Conflict
// without a second round-trip.
type ConflictingContract struct {
	ID             string
	ContractNumber string
	VehicleID      string
	StartDate      time.Time
	EndDate        time.Time
	Status         domain.ContractStatus
	ClientName     string
}

// ConflictingRequest is the rent-request analogue of ConflictingContract.
type ConflictingRequest struct {
	ID        string
	RequestID string
	VehicleID string
	StartDate time.Time
	EndDate   time.Time
	Status    domain.RentRequestStatus
	ClientName string
}

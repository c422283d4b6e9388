package conflict

import (
	"context"
	"fmt"
	"time"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/domain"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/store"
)

// PendingRequest is the slice of a rent-request ApprovabilityOf needs.
type PendingRequest struct {
	ID        string
	VehicleID string
	Status    domain.RentRequestStatus
	StartDate time.Time
	EndDate   time.Time
}

// Approvability is the per-request result of ApprovabilityOf.
type Approvability struct {
	Approvable bool
	Conflicts  []Conflict
}

// ApprovabilityOf implements the bulk variant of spec §4.2: filter to
// PENDING requests, fetch every potentially conflicting contract and
// rent-request in two round-trips, then resolve each pending request against
// its own vehicle's groups in memory (excluding itself).
func (d *Detector) ApprovabilityOf(ctx context.Context, requests []PendingRequest) (map[string]Approvability, error) {
	result := make(map[string]Approvability, len(requests))

	var pending []PendingRequest
	vehicleSet := make(map[string]struct{})
	var minStart, maxEnd time.Time
	for _, r := range requests {
		if r.Status != domain.RentRequestPending {
			result[r.ID] = Approvability{Approvable: false}
			continue
		}
		pending = append(pending, r)
		vehicleSet[r.VehicleID] = struct{}{}
		if minStart.IsZero() || r.StartDate.Before(minStart) {
			minStart = r.StartDate
		}
		if maxEnd.IsZero() || r.EndDate.After(maxEnd) {
			maxEnd = r.EndDate
		}
	}
	if len(pending) == 0 {
		return result, nil
	}

	vehicleIDs := make([]string, 0, len(vehicleSet))
	for id := range vehicleSet {
		vehicleIDs = append(vehicleIDs, id)
	}

	contracts, requestsByVehicle, err := d.store.BulkFindConflicts(ctx, vehicleIDs, minStart, maxEnd)
	if err != nil {
		return nil, fmt.Errorf("conflict: bulk find conflicts: %w", err)
	}

	contractsByVehicle := make(map[string][]store.ConflictingContract)
	for _, c := range contracts {
		contractsByVehicle[c.VehicleID] = append(contractsByVehicle[c.VehicleID], c)
	}
	requestsByVehicleIdx := make(map[string][]store.ConflictingRequest)
	for _, r := range requestsByVehicle {
		requestsByVehicleIdx[r.VehicleID] = append(requestsByVehicleIdx[r.VehicleID], r)
	}

	for _, r := range pending {
		var conflicts []Conflict
		for _, c := range contractsByVehicle[r.VehicleID] {
			if c.ID == r.ID {
				continue
			}
			if domain.Overlaps(r.StartDate, r.EndDate, c.StartDate, c.EndDate) {
				conflicts = append(conflicts, fromContractRow(c))
			}
		}
		for _, other := range requestsByVehicleIdx[r.VehicleID] {
			if other.ID == r.ID {
				continue
			}
			if domain.Overlaps(r.StartDate, r.EndDate, other.StartDate, other.EndDate) {
				conflicts = append(conflicts, fromRequestRow(other))
			}
		}
		result[r.ID] = Approvability{Approvable: len(conflicts) == 0, Conflicts: conflicts}
	}

	return result, nil
}
